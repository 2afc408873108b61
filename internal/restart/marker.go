package restart

import (
	"errors"
	"strings"

	"github.com/steveyegge/inirun/internal/config"
	"github.com/steveyegge/inirun/internal/envview"
)

// RestartID is the first marker field. A marker with any other first
// field is not ours.
const RestartID = "internal"

// unsetSentinel stands for an unset variable. A variable whose real
// value is "*" cannot be told apart from an unset one and comes back
// unset after a restart; that is an accepted limitation of the format.
const unsetSentinel = "*"

const markerFields = 5

// errUnencodable is returned when a marker field contains the field
// separator. Such a marker would not decode in the child, which would
// then restart again.
var errUnencodable = errors.New("restart marker field contains '|'")

// Marker is the decoded content of the marker variable.
type Marker struct {
	Version string // interpreter version of the original process
	State   config.SearchState
}

// EncodeMarker renders the marker value:
//
//	internal|<version>|<1 or 0>|<scan dir or *>|<primary or *>
func EncodeMarker(state config.SearchState, version string) string {
	scanned := "0"
	if state.ScannedFiles {
		scanned = "1"
	}
	return strings.Join([]string{
		RestartID,
		version,
		scanned,
		encodeVar(state.ScanDir),
		encodeVar(state.Primary),
	}, "|")
}

// DecodeMarker parses a marker value. It reports false for anything that
// is not a well-formed marker of ours; callers treat that as "not
// restarted", never as an error.
func DecodeMarker(s string) (Marker, bool) {
	fields := strings.Split(s, "|")
	if len(fields) != markerFields || fields[0] != RestartID {
		return Marker{}, false
	}
	var scanned bool
	switch fields[2] {
	case "1":
		scanned = true
	case "0":
	default:
		return Marker{}, false
	}
	return Marker{
		Version: fields[1],
		State: config.SearchState{
			ScanDir:      decodeVar(fields[3]),
			Primary:      decodeVar(fields[4]),
			ScannedFiles: scanned,
		},
	}, true
}

// checkEncodable rejects states whose marker would not decode.
func checkEncodable(state config.SearchState, version string) error {
	for _, s := range []string{version, state.ScanDir.Value, state.Primary.Value} {
		if strings.Contains(s, "|") {
			return errUnencodable
		}
	}
	return nil
}

func encodeVar(v envview.Var) string {
	if !v.Set {
		return unsetSentinel
	}
	return v.Value
}

func decodeVar(s string) envview.Var {
	if s == unsetSentinel {
		return envview.Unset
	}
	return envview.Value(s)
}
