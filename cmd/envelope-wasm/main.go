//go:build js && wasm

package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"math"
	"strings"
	"syscall/js"

	"github.com/cwbudde/algo-envelope/codec"
	"github.com/cwbudde/algo-envelope/layout"
	"github.com/cwbudde/algo-envelope/preset"
	"github.com/cwbudde/algo-envelope/session"
)

var globalSession *session.Session

func main() {
	// Keep program running
	c := make(chan struct{})

	// Export functions to JavaScript
	js.Global().Set("wasmInit", js.FuncOf(wasmInit))
	js.Global().Set("wasmPointer", js.FuncOf(wasmPointer))
	js.Global().Set("wasmCommand", js.FuncOf(wasmCommand))
	js.Global().Set("wasmState", js.FuncOf(wasmState))
	js.Global().Set("wasmProjections", js.FuncOf(wasmProjections))
	js.Global().Set("wasmSaveEnvelope", js.FuncOf(wasmSaveEnvelope))
	js.Global().Set("wasmLoadEnvelope", js.FuncOf(wasmLoadEnvelope))
	js.Global().Set("wasmRender", js.FuncOf(wasmRender))

	println("WASM envelope module loaded")
	<-c
}

func errValue(err error) any {
	if err == nil {
		return nil
	}
	return err.Error()
}

// wasmInit(presetJSON?) creates the session. Only generated tracks work in
// the browser.
func wasmInit(this js.Value, args []js.Value) any {
	p := preset.NewDefaultParams()
	if len(args) > 0 && args[0].Type() == js.TypeString && args[0].String() != "" {
		var f preset.File
		if err := json.Unmarshal([]byte(args[0].String()), &f); err != nil {
			return errValue(err)
		}
		if err := preset.ApplyFile(p, &f); err != nil {
			return errValue(err)
		}
	}
	tracks, err := p.BuildTracks()
	if err != nil {
		return errValue(err)
	}
	if globalSession != nil {
		globalSession.Close()
	}
	s, err := session.New(tracks, p.Session)
	if err != nil {
		return errValue(err)
	}
	globalSession = s
	println("Envelope session initialized with", s.Len(), "track(s)")
	return nil
}

// wasmPointer(kind, x, y) forwards "down", "move" or "up".
func wasmPointer(this js.Value, args []js.Value) any {
	if len(args) < 3 || globalSession == nil {
		return nil
	}
	x, y := args[1].Float(), args[2].Float()
	var ev session.Event
	switch strings.ToLower(args[0].String()) {
	case "down":
		ev = session.PointerDown{X: x, Y: y}
	case "move":
		ev = session.PointerMove{X: x, Y: y}
	case "up":
		ev = session.PointerUp{X: x, Y: y}
	default:
		return "unknown pointer event " + args[0].String()
	}
	return errValue(globalSession.Dispatch(context.Background(), ev))
}

// wasmCommand(name, track) dispatches a control command. Preview is not
// available here; use wasmRender and play the samples in JS.
func wasmCommand(this js.Value, args []js.Value) any {
	if len(args) < 1 || globalSession == nil {
		return nil
	}
	k, err := session.ParseCommandKind(args[0].String())
	if err != nil {
		return errValue(err)
	}
	track := 0
	if len(args) > 1 {
		track = args[1].Int()
	}
	return errValue(globalSession.Dispatch(context.Background(), session.Command{Kind: k, Track: track}))
}

// wasmState returns the phase, active track and band layout as JSON.
func wasmState(this js.Value, args []js.Value) any {
	if globalSession == nil {
		return nil
	}
	b, err := json.Marshal(struct {
		Phase  string        `json:"phase"`
		Active int           `json:"active"`
		Bands  []layout.Band `json:"bands"`
	}{
		Phase:  globalSession.Phase().String(),
		Active: globalSession.ActiveTrack(),
		Bands:  globalSession.Layout().Bands(),
	})
	if err != nil {
		return errValue(err)
	}
	return string(b)
}

// wasmProjections returns the three projection sets as a JSON string.
func wasmProjections(this js.Value, args []js.Value) any {
	if globalSession == nil {
		return nil
	}
	sets, err := globalSession.Projections()
	if err != nil {
		return errValue(err)
	}
	b, err := json.Marshal(sets)
	if err != nil {
		return errValue(err)
	}
	return string(b)
}

// wasmSaveEnvelope(track) returns the envelope CSV text.
func wasmSaveEnvelope(this js.Value, args []js.Value) any {
	if len(args) < 1 || globalSession == nil {
		return nil
	}
	var buf bytes.Buffer
	if err := globalSession.EncodeEnvelope(args[0].Int(), &buf); err != nil {
		return errValue(err)
	}
	return buf.String()
}

// wasmLoadEnvelope(track, csvText) restores an envelope.
func wasmLoadEnvelope(this js.Value, args []js.Value) any {
	if len(args) < 2 || globalSession == nil {
		return nil
	}
	i := args[0].Int()
	t, err := globalSession.Track(i)
	if err != nil {
		return errValue(err)
	}
	rows, err := codec.Decode(strings.NewReader(args[1].String()))
	if err != nil {
		return errValue(err)
	}
	env, err := codec.Restore(rows, t.Original.Len())
	if err != nil {
		return errValue(err)
	}
	return errValue(globalSession.RestoreEnvelope(i, env))
}

// wasmRender(track) returns the corrected modified audio as a Float32Array.
func wasmRender(this js.Value, args []js.Value) any {
	if len(args) < 1 || globalSession == nil {
		return nil
	}
	samples, _, err := globalSession.Render(args[0].Int())
	if err != nil {
		return errValue(err)
	}
	raw := make([]byte, 4*len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(float32(v)))
	}
	u8 := js.Global().Get("Uint8Array").New(len(raw))
	js.CopyBytesToJS(u8, raw)
	return js.Global().Get("Float32Array").New(u8.Get("buffer"))
}
