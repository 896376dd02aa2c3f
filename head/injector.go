package head

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/labstack/gommon/log"
)

// Graph is one structured-data block. schema.Graph satisfies it.
type Graph interface {
	Marshal() ([]byte, error)
}

// Graphs converts a typed slice for Mount.
func Graphs[G Graph](gs []G) []Graph {
	out := make([]Graph, len(gs))
	for i, g := range gs {
		out[i] = g
	}
	return out
}

// Raw is an already serialized graph, such as one read back from the page.
type Raw []byte

// Marshal returns r unchanged if it is a JSON document.
func (r Raw) Marshal() ([]byte, error) {
	if !json.Valid(r) {
		return nil, errors.New("head: raw graph is not valid JSON")
	}
	return r, nil
}

// Logger receives serialization failures. echo.Logger satisfies it.
type Logger interface {
	Errorf(format string, args ...interface{})
}

// Injector mounts structured-data graphs into a Head for one page view.
// At most one Handle is live per Injector; mounting again releases the
// previous one first.
type Injector struct {
	head   Head
	logger Logger
	typ    string

	mu      sync.Mutex
	current *Handle
}

// InjectorOption configures an Injector.
type InjectorOption func(*Injector)

// WithLogger sets the logger used for skipped graphs.
func WithLogger(l Logger) InjectorOption {
	return func(i *Injector) {
		i.logger = l
	}
}

// WithScriptType overrides the script type (default application/ld+json).
func WithScriptType(typ string) InjectorOption {
	return func(i *Injector) {
		i.typ = typ
	}
}

// NewInjector returns an Injector writing to h.
func NewInjector(h Head, opts ...InjectorOption) *Injector {
	i := &Injector{head: h, typ: TypeLDJSON}
	for _, opt := range opts {
		opt(i)
	}
	if i.logger == nil {
		i.logger = log.New("head")
	}
	return i
}

// Mount releases any previously mounted graphs, then appends one script
// node per graph in order. A graph that cannot be serialized or appended
// is logged and skipped; the rest still mount.
func (i *Injector) Mount(graphs ...Graph) *Handle {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.current != nil {
		i.current.Dispose()
		i.current = nil
	}

	h := &Handle{head: i.head}
	for idx, g := range graphs {
		b, err := g.Marshal()
		if err != nil {
			i.logger.Errorf("head: skip graph %d: %v", idx, err)
			continue
		}
		id, err := i.head.Append(i.typ, string(b))
		if err != nil {
			i.logger.Errorf("head: append graph %d: %v", idx, err)
			continue
		}
		h.ids = append(h.ids, id)
	}
	i.current = h
	return h
}

// Adopt takes ownership of nodes that were already in the head, typically
// ones rendered by the server for the first page view, so the next Mount
// or Dispose removes them like any other injected node.
func (i *Injector) Adopt(ids ...NodeID) *Handle {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.current != nil {
		i.current.Dispose()
	}
	h := &Handle{head: i.head, ids: append([]NodeID(nil), ids...)}
	i.current = h
	return h
}

// Dispose releases the currently mounted graphs, if any.
func (i *Injector) Dispose() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.current != nil {
		i.current.Dispose()
		i.current = nil
	}
}

// Owned returns how many nodes the live handle holds.
func (i *Injector) Owned() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.current == nil {
		return 0
	}
	return i.current.Len()
}

// Handle is the release side of a Mount.
type Handle struct {
	head Head

	mu       sync.Mutex
	ids      []NodeID
	disposed bool
}

// Dispose removes every node this handle created. Calling it again is a no-op.
func (h *Handle) Dispose() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return
	}
	h.disposed = true
	for _, id := range h.ids {
		h.head.Remove(id)
	}
	h.ids = nil
}

// Len returns the number of nodes still held.
func (h *Handle) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.ids)
}
