package config

import (
	"crypto/sha256"
	"fmt"

	"github.com/steveyegge/inirun/internal/fsys"
)

// Revision computes a deterministic bundle hash over the given config
// files in load order. Load order matters because later fragments win,
// so the paths are not sorted. Unreadable files are skipped.
func Revision(fs fsys.FS, files []string) string {
	h := sha256.New()
	for _, path := range files {
		data, err := fs.ReadFile(path)
		if err != nil {
			continue
		}
		h.Write([]byte(path)) //nolint:errcheck // hash.Write never errors
		h.Write([]byte{0})    //nolint:errcheck // hash.Write never errors
		h.Write(data)         //nolint:errcheck // hash.Write never errors
		h.Write([]byte{0})    //nolint:errcheck // hash.Write never errors
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
