package events

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"
)

func next(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestFollowDeliversExistingAndAppended(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	rec, err := NewFileRecorder(path, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	defer rec.Close() //nolint:errcheck // test cleanup
	rec.Record(Event{Type: RestartStarted, Subject: "debugger"})

	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan Event, 8)
	done := make(chan error, 1)
	go func() {
		done <- Follow(ctx, path, 0, func(e Event) { ch <- e })
	}()

	if e := next(t, ch); e.Seq != 1 || e.Type != RestartStarted {
		t.Errorf("first = %+v, want seq 1 %s", e, RestartStarted)
	}

	rec.Record(Event{Type: RestartCompleted, Subject: "debugger"})
	if e := next(t, ch); e.Seq != 2 || e.Type != RestartCompleted {
		t.Errorf("second = %+v, want seq 2 %s", e, RestartCompleted)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Follow: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Follow did not stop on cancel")
	}
}

func TestFollowSkipsUpToAfterSeq(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	rec, err := NewFileRecorder(path, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	defer rec.Close() //nolint:errcheck // test cleanup
	rec.Record(Event{Type: RestartStarted})
	rec.Record(Event{Type: RestartRestored})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := make(chan Event, 8)
	go Follow(ctx, path, 1, func(e Event) { ch <- e }) //nolint:errcheck // stopped by cancel

	if e := next(t, ch); e.Seq != 2 {
		t.Errorf("first delivered seq = %d, want 2", e.Seq)
	}
}

func TestFollowMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "events.jsonl")
	if err := Follow(context.Background(), path, 0, func(Event) {}); err == nil {
		t.Error("Follow on a missing directory should fail")
	}
}
