//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/blackboard/blackboard/internal/command"
	"github.com/blackboard/blackboard/internal/document"
	"github.com/blackboard/blackboard/internal/engine"
)

var (
	eng   *engine.Engine
	saver = &jsSaver{}
	dirty bool
)

// jsSaver hands persisted documents to a page callback registered with
// onSave. The page owns storage in the browser.
type jsSaver struct {
	fn js.Value
}

func (s *jsSaver) Save(doc *document.Document, immediate bool) {
	if s.fn.Type() != js.TypeFunction {
		return
	}
	data, err := document.Encode(doc)
	if err != nil {
		return
	}
	s.fn.Invoke(string(data), immediate)
}

func main() {
	eng = engine.NewEngine(engine.WithSaver(saver))
	eng.AddListener(func() { dirty = true })

	// Create the engine API object
	blackboardEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	blackboardEngine.Set("loadDocument", js.FuncOf(loadDocument))
	blackboardEngine.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	blackboardEngine.Set("dispatch", js.FuncOf(dispatch))

	// --- Queries (frontend ← engine) ---
	blackboardEngine.Set("getDocument", js.FuncOf(getDocument))
	blackboardEngine.Set("getSelection", js.FuncOf(getSelection))
	blackboardEngine.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	blackboardEngine.Set("getMarquee", js.FuncOf(getMarquee))
	blackboardEngine.Set("getView", js.FuncOf(getView))
	blackboardEngine.Set("hitTest", js.FuncOf(hitTest))
	blackboardEngine.Set("toWorld", js.FuncOf(toWorld))
	blackboardEngine.Set("getTool", js.FuncOf(getTool))
	blackboardEngine.Set("canUndo", js.FuncOf(canUndo))
	blackboardEngine.Set("canRedo", js.FuncOf(canRedo))

	// --- Callbacks ---
	blackboardEngine.Set("onChange", js.FuncOf(onChange))
	blackboardEngine.Set("offChange", js.FuncOf(offChange))
	blackboardEngine.Set("onSave", js.FuncOf(onSave))

	// Register on global scope
	js.Global().Set("blackboardEngine", blackboardEngine)

	// Signal that WASM is ready
	js.Global().Set("blackboardWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(err error) any {
	return js.ValueOf(map[string]any{"error": err.Error()})
}

func jsonString(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(string(data))
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(map[string]any{"error": "missing document JSON"})
	}

	doc, err := document.Decode([]byte(args[0].String()))
	eng.Load(doc)
	if err != nil {
		// the engine holds an empty board; report why
		return errorResult(err)
	}
	return js.ValueOf(map[string]any{"ok": true})
}

func loadSampleDocument(this js.Value, args []js.Value) any {
	eng.LoadSampleDocument()
	return js.ValueOf(map[string]any{"ok": true})
}

// dispatch runs one command given as JSON and returns a JSON string with
// its result and whether the scene changed.
func dispatch(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(map[string]any{"error": "missing command JSON"})
	}

	var cmd command.Command
	if err := json.Unmarshal([]byte(args[0].String()), &cmd); err != nil {
		return errorResult(err)
	}

	dirty = false
	result, err := command.Dispatch(eng, cmd)
	if err != nil {
		return errorResult(err)
	}
	return jsonString(map[string]any{"id": cmd.ID, "changed": dirty, "result": result})
}

// --- Query Handlers ---

func getDocument(this js.Value, args []js.Value) any {
	data, err := document.Encode(eng.Document())
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(string(data))
}

func getSelection(this js.Value, args []js.Value) any {
	ids := eng.Selected()
	if ids == nil {
		ids = []string{}
	}
	return jsonString(ids)
}

func getSelectionBounds(this js.Value, args []js.Value) any {
	b, ok := eng.SelectionBounds()
	if !ok {
		return js.Null()
	}
	return jsonString(b)
}

func getMarquee(this js.Value, args []js.Value) any {
	b, ok := eng.Marquee()
	if !ok {
		return js.Null()
	}
	return jsonString(b)
}

func getView(this js.Value, args []js.Value) any {
	return jsonString(eng.View())
}

// hitTest takes world coordinates.
func hitTest(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.HitTest(args[0].Float(), args[1].Float()))
}

func toWorld(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.Null()
	}
	x, y := eng.ToWorld(args[0].Float(), args[1].Float())
	return js.ValueOf([]any{x, y})
}

func getTool(this js.Value, args []js.Value) any {
	return js.ValueOf(string(eng.Tool()))
}

func canUndo(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.CanUndo())
}

func canRedo(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.CanRedo())
}

// --- Callbacks ---

func onChange(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeFunction {
		return js.Null()
	}
	fn := args[0]
	id := eng.AddListener(func() { fn.Invoke() })
	return js.ValueOf(int(id))
}

func offChange(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return nil
	}
	eng.RemoveListener(engine.ListenerID(args[0].Int()))
	return nil
}

func onSave(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		saver.fn = js.Undefined()
		return nil
	}
	saver.fn = args[0]
	return nil
}
