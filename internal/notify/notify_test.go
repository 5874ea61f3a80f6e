package notify

import (
	"bytes"
	"testing"
)

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	NewLog(&buf).Notify(LevelError, "Invalid email or password.")
	if buf.String() != "[error] Invalid email or password.\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Notify(LevelSuccess, "Folder created")
	r.Notify(LevelError, "boom")
	entries := r.Entries()
	if len(entries) != 2 || entries[1].Level != LevelError {
		t.Fatalf("unexpected entries %+v", entries)
	}
	r.Reset()
	if len(r.Entries()) != 0 {
		t.Fatalf("expected reset recorder")
	}
}
