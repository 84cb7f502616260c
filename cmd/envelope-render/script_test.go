package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-envelope/session"
)

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.json")
	content := `{"events": [
  {"type": "command", "command": "commitLayout"},
  {"type": "down", "x": 0.1, "y": 0.2},
  {"type": "Move", "x": 0.4, "y": 0.25},
  {"type": "up", "x": 0.9, "y": 0.2},
  {"type": "command", "command": "undo", "track": 1}
]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	events, err := loadScript(path)
	if err != nil {
		t.Fatalf("loadScript: %v", err)
	}
	want := []session.Event{
		session.Command{Kind: session.CmdCommitLayout},
		session.PointerDown{X: 0.1, Y: 0.2},
		session.PointerMove{X: 0.4, Y: 0.25},
		session.PointerUp{X: 0.9, Y: 0.2},
		session.Command{Kind: session.CmdUndo, Track: 1},
	}
	if len(events) != len(want) {
		t.Fatalf("events=%d, want %d", len(events), len(want))
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("event %d = %#v, want %#v", i, events[i], want[i])
		}
	}
}

func TestParseEventsRejectsUnknown(t *testing.T) {
	if _, err := parseEvents([]scriptEvent{{Type: "drag"}}); err == nil {
		t.Fatal("expected error for unknown type")
	}
	if _, err := parseEvents([]scriptEvent{{Type: "command", Command: "save"}}); err == nil {
		t.Fatal("expected error for unknown command")
	}
}
