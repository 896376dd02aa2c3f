// Package pageview sequences browser page views across htmx navigations.
// Each view owns the JSON-LD nodes it mounted and the scroll-spy wired to
// its guide; a view ends when its content leaves the document, whether by
// a swap of the page container or a back/forward history restore.
package pageview

import (
	"encoding/json"

	"github.com/labstack/gommon/log"

	"github.com/eringen/guidepress/head"
)

// View is whatever a page view attached to the DOM besides head nodes.
type View interface {
	Close()
}

// Page reads the document as it currently stands.
type Page interface {
	// GraphsJSON returns the page's graphs as a JSON array, or "" when the
	// page carries none.
	GraphsJSON() string
	// Open wires the page in the DOM. It returns nil when there is nothing
	// to wire.
	Open() View
}

// Swap is the part of an htmx swap event the lifecycle acts on.
type Swap struct {
	TargetID   string
	ShouldSwap bool
}

// Lifecycle drives page views from htmx events. It is not safe for
// concurrent use; the browser delivers events on one thread.
type Lifecycle struct {
	page     Page
	injector *head.Injector
	target   string
	logger   head.Logger

	current View
}

// New returns a Lifecycle that swaps on the element with id target.
func New(page Page, injector *head.Injector, target string, logger head.Logger) *Lifecycle {
	if logger == nil {
		logger = log.New("pageview")
	}
	return &Lifecycle{page: page, injector: injector, target: target, logger: logger}
}

// Start opens the first view. Nodes the server rendered into the head are
// adopted rather than mounted again.
func (l *Lifecycle) Start(adopted ...head.NodeID) {
	l.injector.Adopt(adopted...)
	l.current = l.page.Open()
}

// BeforeSwap ends the current view when the page container is about to be
// replaced. Responses htmx will not swap, such as a 404, leave it alone.
func (l *Lifecycle) BeforeSwap(s Swap) {
	if s.TargetID != l.target || !s.ShouldSwap {
		return
	}
	l.end()
}

// AfterSettle starts a view for newly swapped content.
func (l *Lifecycle) AfterSettle(s Swap) {
	if s.TargetID != l.target {
		return
	}
	l.begin()
}

// HistoryRestore replaces the view after htmx restored a page from its
// history cache or refetched it. No swap events precede it.
func (l *Lifecycle) HistoryRestore() {
	l.begin()
}

// Active reports whether a view is open.
func (l *Lifecycle) Active() bool {
	return l.current != nil
}

func (l *Lifecycle) end() {
	if l.current != nil {
		l.current.Close()
		l.current = nil
	}
	l.injector.Dispose()
}

func (l *Lifecycle) begin() {
	l.end()
	l.injector.Mount(l.graphs()...)
	l.current = l.page.Open()
}

func (l *Lifecycle) graphs() []head.Graph {
	src := l.page.GraphsJSON()
	if src == "" {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(src), &raw); err != nil {
		l.logger.Errorf("decode graphs: %v", err)
		return nil
	}
	graphs := make([]head.Graph, len(raw))
	for i, r := range raw {
		graphs[i] = head.Raw(r)
	}
	return graphs
}
