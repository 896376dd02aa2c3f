//go:build js && wasm

// guidespy is the browser half of a guide page: it keeps the page's JSON-LD
// in document.head across htmx navigations and drives the sticky table of
// contents. Build with GOOS=js GOARCH=wasm.
package main

import (
	"fmt"
	"strconv"
	"syscall/js"

	"github.com/eringen/guidepress/head"
	"github.com/eringen/guidepress/pageview"
	"github.com/eringen/guidepress/scrollspy"
	"github.com/eringen/guidepress/scrollspy/jsdom"
)

type consoleLogger struct{}

func (consoleLogger) Errorf(format string, args ...interface{}) {
	js.Global().Get("console").Call("warn", "guidespy: "+fmt.Sprintf(format, args...))
}

// guideView is the scroll-spy and click handling for one guide.
type guideView struct {
	ctrl        *scrollspy.Controller
	unsubscribe func()
	removeClick func()
}

func (v *guideView) Close() {
	v.removeClick()
	v.unsubscribe()
	v.ctrl.Dispose()
}

// domPage reads the live document.
type domPage struct{}

func (domPage) GraphsJSON() string {
	el := doc.Call("getElementById", scrollspy.GraphsID)
	if el.IsNull() {
		return ""
	}
	return el.Get("textContent").String()
}

func (domPage) Open() pageview.View {
	root := doc.Call("getElementById", scrollspy.RootID)
	if root.IsNull() {
		return nil
	}
	return openGuideView(root)
}

var (
	doc = js.Global().Get("document")
	win = jsdom.NewWindow()
)

func main() {
	heads := jsdom.NewHead()
	lc := pageview.New(domPage{}, head.NewInjector(heads, head.WithLogger(consoleLogger{})), scrollspy.PageID, consoleLogger{})

	// The first view's JSON-LD was rendered by the server.
	lc.Start(heads.Adopt("script[" + head.MarkerAttr + "]")...)

	body := doc.Get("body")
	body.Call("addEventListener", "htmx:beforeSwap", js.FuncOf(func(this js.Value, args []js.Value) any {
		lc.BeforeSwap(swapEvent(args))
		return nil
	}))
	body.Call("addEventListener", "htmx:afterSettle", js.FuncOf(func(this js.Value, args []js.Value) any {
		lc.AfterSettle(swapEvent(args))
		return nil
	}))
	body.Call("addEventListener", "htmx:historyRestore", js.FuncOf(func(this js.Value, args []js.Value) any {
		lc.HistoryRestore()
		return nil
	}))

	select {}
}

func swapEvent(args []js.Value) pageview.Swap {
	if len(args) == 0 {
		return pageview.Swap{}
	}
	detail := args[0].Get("detail")
	if detail.IsUndefined() || detail.IsNull() {
		return pageview.Swap{}
	}
	s := pageview.Swap{ShouldSwap: true}
	if v := detail.Get("shouldSwap"); v.Type() == js.TypeBoolean {
		s.ShouldSwap = v.Bool()
	}
	if target := detail.Get("target"); !target.IsUndefined() && !target.IsNull() {
		s.TargetID = target.Get("id").String()
	}
	return s
}

func openGuideView(root js.Value) *guideView {
	opts := scrollspy.Options{
		ActivationOffset: floatAttr(root, scrollspy.AttrActivationOffset),
		HeaderClearance:  floatAttr(root, scrollspy.AttrHeaderClearance),
	}
	ctrl := scrollspy.NewController(win, opts)

	unsubscribe := ctrl.Subscribe(highlight)
	ctrl.Register(readSections(root))
	highlight(ctrl.Active())

	click := js.FuncOf(func(this js.Value, args []js.Value) any {
		ev := args[0]
		link := ev.Get("target").Call("closest", "["+scrollspy.AttrTOCTarget+"]")
		if link.IsNull() {
			return nil
		}
		ev.Call("preventDefault")
		ctrl.ScrollTo(link.Call("getAttribute", scrollspy.AttrTOCTarget).String())
		return nil
	})
	root.Call("addEventListener", "click", click)

	return &guideView{
		ctrl:        ctrl,
		unsubscribe: unsubscribe,
		removeClick: func() {
			root.Call("removeEventListener", "click", click)
			click.Release()
		},
	}
}

func readSections(root js.Value) []scrollspy.Section {
	list := root.Call("querySelectorAll", "["+scrollspy.AttrSection+"]")
	n := list.Get("length").Int()
	sections := make([]scrollspy.Section, 0, n)
	for i := 0; i < n; i++ {
		el := list.Call("item", i)
		sections = append(sections, scrollspy.Section{
			ID:    el.Get("id").String(),
			Label: el.Call("getAttribute", scrollspy.AttrSection).String(),
		})
	}
	return sections
}

func highlight(active string) {
	links := doc.Call("querySelectorAll", "["+scrollspy.AttrTOCTarget+"]")
	n := links.Get("length").Int()
	for i := 0; i < n; i++ {
		link := links.Call("item", i)
		on := active != "" && link.Call("getAttribute", scrollspy.AttrTOCTarget).String() == active
		link.Get("classList").Call("toggle", scrollspy.CurrentClass, on)
		if on {
			link.Call("setAttribute", "aria-current", "location")
		} else {
			link.Call("removeAttribute", "aria-current")
		}
	}
}

func floatAttr(el js.Value, name string) float64 {
	v := el.Call("getAttribute", name)
	if v.IsNull() {
		return 0
	}
	f, err := strconv.ParseFloat(v.String(), 64)
	if err != nil {
		return 0
	}
	return f
}
