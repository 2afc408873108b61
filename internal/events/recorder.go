package events

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// FileRecorder appends events to a JSONL file. A mutex serializes
// writers in this process and a lock file next to the log serializes
// processes. Recording errors are written to stderr and never returned.
//
// A restarted child appends to the same file as its parent, so the
// sequence number is re-synchronized with the file under the lock before
// every write.
type FileRecorder struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	lock   *flock.Flock
	seq    uint64
	stderr io.Writer
}

// NewFileRecorder opens (or creates) the event log at path. Parent
// directories are created as needed.
func NewFileRecorder(path string, stderr io.Writer) (*FileRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating event log directory: %w", err)
	}
	maxSeq, err := ReadLatestSeq(path)
	if err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &FileRecorder{
		path:   path,
		file:   file,
		lock:   flock.New(path + ".lock"),
		seq:    maxSeq,
		stderr: stderr,
	}, nil
}

// Record appends an event to the log. It auto-fills Seq, PID and Ts (if
// zero). Errors are written to stderr, never returned.
func (r *FileRecorder) Record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.lock.Lock(); err != nil {
		fmt.Fprintf(r.stderr, "events: lock: %v\n", err) //nolint:errcheck // best-effort stderr
	} else {
		defer r.lock.Unlock() //nolint:errcheck // best-effort unlock
	}
	if latest, err := ReadLatestSeq(r.path); err == nil && latest > r.seq {
		r.seq = latest
	}
	r.seq++
	e.Seq = r.seq
	if e.Ts.IsZero() {
		e.Ts = time.Now()
	}
	if e.PID == 0 {
		e.PID = os.Getpid()
	}

	data, err := json.Marshal(e)
	if err != nil {
		fmt.Fprintf(r.stderr, "events: marshal: %v\n", err) //nolint:errcheck // best-effort stderr
		return
	}
	data = append(data, '\n')
	if _, err := r.file.Write(data); err != nil {
		fmt.Fprintf(r.stderr, "events: write: %v\n", err) //nolint:errcheck // best-effort stderr
	}
}

// List returns events matching the filter from the underlying file.
func (r *FileRecorder) List(filter Filter) ([]Event, error) {
	return ReadFiltered(r.path, filter)
}

// Close closes the underlying file.
func (r *FileRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Close()
}

// ReadLatestSeq returns the highest Seq in the events file, or 0 if
// the file is missing or empty.
func ReadLatestSeq(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading latest seq: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	var maxSeq uint64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Event
		if json.Unmarshal(scanner.Bytes(), &e) == nil && e.Seq > maxSeq {
			maxSeq = e.Seq
		}
	}
	if err := scanner.Err(); err != nil {
		return maxSeq, fmt.Errorf("scanning events: %w", err)
	}
	return maxSeq, nil
}
