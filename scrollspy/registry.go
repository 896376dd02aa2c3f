// Package scrollspy tracks which page section the reader is in and scrolls
// to sections on request.
//
// The browser is reached only through the Window interface, so the same
// controller runs under wasm (see package jsdom) and in tests.
package scrollspy

import "sort"

// Section is a named anchor on the page.
type Section struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Offset float64 `json:"-"` // pixels from document top, recomputed on layout change
}

// Layout resolves the live document offset of a section element.
type Layout interface {
	OffsetTop(id string) (float64, bool)
}

// Registry is the ordered list of sections for one page.
type Registry struct {
	registered []Section // registration order
	sections   []Section // laid out, ascending offset
}

// NewRegistry copies sections in document order. Empty ids are ignored and
// duplicate ids keep the first occurrence.
func NewRegistry(sections []Section) *Registry {
	r := &Registry{}
	seen := make(map[string]struct{}, len(sections))
	for _, s := range sections {
		if s.ID == "" {
			continue
		}
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		r.registered = append(r.registered, s)
	}
	r.sections = append([]Section(nil), r.registered...)
	r.reorder()
	return r
}

// Refresh recomputes every offset from l. Sections whose element is
// currently missing are left out until a later Refresh finds them again.
func (r *Registry) Refresh(l Layout) {
	laid := make([]Section, 0, len(r.registered))
	for _, s := range r.registered {
		off, ok := l.OffsetTop(s.ID)
		if !ok {
			continue
		}
		s.Offset = off
		laid = append(laid, s)
	}
	r.sections = laid
	r.reorder()
}

// reorder sorts by offset; equal offsets keep registration order so the
// later-registered section wins a tie in ActiveAt.
func (r *Registry) reorder() {
	sort.SliceStable(r.sections, func(i, j int) bool {
		return r.sections[i].Offset < r.sections[j].Offset
	})
}

// ActiveAt returns the id of the last section whose offset is at or above
// position, or "" when position is above the first section.
func (r *Registry) ActiveAt(position float64) string {
	i := sort.Search(len(r.sections), func(i int) bool {
		return r.sections[i].Offset > position
	})
	if i == 0 {
		return ""
	}
	return r.sections[i-1].ID
}

// Contains reports whether id is registered.
func (r *Registry) Contains(id string) bool {
	for _, s := range r.registered {
		if s.ID == id {
			return true
		}
	}
	return false
}

// Sections returns the laid-out sections in offset order.
func (r *Registry) Sections() []Section {
	out := make([]Section, len(r.sections))
	copy(out, r.sections)
	return out
}

// Len returns the number of laid-out sections.
func (r *Registry) Len() int {
	return len(r.sections)
}
