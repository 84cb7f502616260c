package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/cwbudde/algo-envelope/session"
)

// scriptFile is a recorded list of input events.
type scriptFile struct {
	Events []scriptEvent `json:"events"`
}

type scriptEvent struct {
	Type    string  `json:"type"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Command string  `json:"command"`
	Track   int     `json:"track"`
}

func loadScript(path string) ([]session.Event, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f scriptFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	return parseEvents(f.Events)
}

func parseEvents(in []scriptEvent) ([]session.Event, error) {
	out := make([]session.Event, 0, len(in))
	for i, e := range in {
		switch strings.ToLower(e.Type) {
		case "down":
			out = append(out, session.PointerDown{X: e.X, Y: e.Y})
		case "move":
			out = append(out, session.PointerMove{X: e.X, Y: e.Y})
		case "up":
			out = append(out, session.PointerUp{X: e.X, Y: e.Y})
		case "command":
			k, err := session.ParseCommandKind(e.Command)
			if err != nil {
				return nil, fmt.Errorf("event %d: %w", i, err)
			}
			out = append(out, session.Command{Kind: k, Track: e.Track})
		default:
			return nil, fmt.Errorf("event %d: unknown type %q", i, e.Type)
		}
	}
	return out, nil
}
