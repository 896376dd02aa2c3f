package scrollspy

// Scroller performs an animated scroll. The animation is not awaited.
type Scroller interface {
	ScrollTo(top float64)
}

// LayoutScroller is a Window without the event plumbing.
type LayoutScroller interface {
	Layout
	Scroller
}

// Navigator scrolls to registered sections, leaving room for a sticky header.
type Navigator struct {
	registry  *Registry
	win       LayoutScroller
	clearance float64
}

// NewNavigator returns a Navigator over the sections in r.
func NewNavigator(r *Registry, win LayoutScroller, clearance float64) *Navigator {
	return &Navigator{registry: r, win: win, clearance: clearance}
}

// ScrollTo requests a smooth scroll to the section with the given id. The
// offset is read from the live layout, not from the registry, since content
// above the section may have changed size. Ids that are not registered, or
// whose element is missing, are ignored.
func (n *Navigator) ScrollTo(id string) {
	if !n.registry.Contains(id) {
		return
	}
	off, ok := n.win.OffsetTop(id)
	if !ok {
		return
	}
	top := off - n.clearance
	if top < 0 {
		top = 0
	}
	n.win.ScrollTo(top)
}
