//go:build js && wasm

// Package jsdom binds scrollspy.Window and head.Head to the browser DOM.
package jsdom

import (
	"sync"
	"syscall/js"

	"github.com/eringen/guidepress/head"
)

// Window implements scrollspy.Window over the global window object.
type Window struct {
	win js.Value
	doc js.Value
}

// NewWindow returns a Window for the current page.
func NewWindow() *Window {
	g := js.Global()
	return &Window{win: g.Get("window"), doc: g.Get("document")}
}

// OffsetTop returns the element's distance from the top of the document.
func (w *Window) OffsetTop(id string) (float64, bool) {
	el := w.doc.Call("getElementById", id)
	if el.IsNull() || el.IsUndefined() {
		return 0, false
	}
	rect := el.Call("getBoundingClientRect")
	return rect.Get("top").Float() + w.ScrollY(), true
}

// ScrollY returns the vertical scroll position.
func (w *Window) ScrollY() float64 {
	return w.win.Get("scrollY").Float()
}

// OnScroll listens for passive scroll events.
func (w *Window) OnScroll(fn func()) func() {
	return w.listen("scroll", fn)
}

// OnResize listens for resize events.
func (w *Window) OnResize(fn func()) func() {
	return w.listen("resize", fn)
}

func (w *Window) listen(event string, fn func()) func() {
	cb := js.FuncOf(func(this js.Value, args []js.Value) any {
		fn()
		return nil
	})
	opts := map[string]any{"passive": true}
	w.win.Call("addEventListener", event, cb, opts)
	var once sync.Once
	return func() {
		once.Do(func() {
			w.win.Call("removeEventListener", event, cb, opts)
			cb.Release()
		})
	}
}

// RequestFrame schedules fn with requestAnimationFrame.
func (w *Window) RequestFrame(fn func()) func() {
	var cb js.Func
	var once sync.Once
	release := func() { once.Do(cb.Release) }
	cb = js.FuncOf(func(this js.Value, args []js.Value) any {
		release()
		fn()
		return nil
	})
	handle := w.win.Call("requestAnimationFrame", cb)
	return func() {
		w.win.Call("cancelAnimationFrame", handle)
		release()
	}
}

// ScrollTo starts a smooth scroll.
func (w *Window) ScrollTo(top float64) {
	w.win.Call("scrollTo", map[string]any{"top": top, "behavior": "smooth"})
}

// Head implements head.Head over document.head.
type Head struct {
	doc js.Value

	mu    sync.Mutex
	next  head.NodeID
	nodes map[head.NodeID]js.Value
}

// NewHead returns a Head for the current document.
func NewHead() *Head {
	return &Head{
		doc:   js.Global().Get("document"),
		nodes: make(map[head.NodeID]js.Value),
	}
}

// Append creates a <script> element and adds it to document.head.
func (h *Head) Append(typ, text string) (head.NodeID, error) {
	el := h.doc.Call("createElement", "script")
	el.Set("type", typ)
	el.Set("textContent", text)
	el.Call("setAttribute", head.MarkerAttr, "")
	h.doc.Get("head").Call("appendChild", el)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	h.nodes[h.next] = el
	return h.next, nil
}

// Remove detaches the element created for id.
func (h *Head) Remove(id head.NodeID) {
	h.mu.Lock()
	el, ok := h.nodes[id]
	delete(h.nodes, id)
	h.mu.Unlock()
	if ok {
		el.Call("remove")
	}
}

// Adopt registers existing head elements matching selector and returns
// their ids, so an Injector can take ownership of server-rendered nodes.
func (h *Head) Adopt(selector string) []head.NodeID {
	list := h.doc.Get("head").Call("querySelectorAll", selector)
	n := list.Get("length").Int()

	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]head.NodeID, 0, n)
	for i := 0; i < n; i++ {
		h.next++
		h.nodes[h.next] = list.Call("item", i)
		ids = append(ids, h.next)
	}
	return ids
}
