package scrollspy

import (
	"fmt"
	"sync"
)

// Default tuning, in CSS pixels.
const (
	DefaultActivationOffset = 150
	DefaultHeaderClearance  = 80
)

// Window is the slice of the browser the controller depends on.
type Window interface {
	Layout
	ScrollY() float64
	// OnScroll and OnResize register fn and return a function that
	// unregisters it synchronously.
	OnScroll(fn func()) (remove func())
	OnResize(fn func()) (remove func())
	// RequestFrame runs fn before the next repaint unless cancelled.
	RequestFrame(fn func()) (cancel func())
	// ScrollTo starts a smooth scroll to top and returns immediately.
	ScrollTo(top float64)
}

// Options tunes a Controller.
type Options struct {
	// ActivationOffset is added to the scroll position so a section turns
	// active slightly before its heading reaches the top of the viewport.
	ActivationOffset float64
	// HeaderClearance is subtracted from a section's offset when scrolling
	// to it, keeping the heading clear of a sticky header.
	HeaderClearance float64
}

func (o *Options) setDefaults() {
	if o.ActivationOffset == 0 {
		o.ActivationOffset = DefaultActivationOffset
	}
	if o.HeaderClearance == 0 {
		o.HeaderClearance = DefaultHeaderClearance
	}
}

// State is the controller lifecycle.
type State int

const (
	Uninitialized State = iota
	Ready
	Disposed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Disposed:
		return "disposed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Controller publishes the active section of one page view. It is the only
// writer of the active id; subscribers only read it.
type Controller struct {
	win  Window
	opts Options

	mu          sync.Mutex
	state       State
	registry    *Registry
	nav         *Navigator
	active      string
	subscribers map[int]func(string)
	nextSub     int

	removeScroll func()
	removeResize func()
	frame        *frameThrottle
}

// NewController returns an Uninitialized controller bound to win.
func NewController(win Window, opts Options) *Controller {
	opts.setDefaults()
	return &Controller{
		win:         win,
		opts:        opts,
		registry:    NewRegistry(nil),
		subscribers: make(map[int]func(string)),
	}
}

// Register installs the page's sections. The first call attaches the
// scroll and resize listeners; later calls swap the registry in place.
// Either way the active section is recomputed before Register returns.
// Register on a disposed controller does nothing.
func (c *Controller) Register(sections []Section) {
	c.mu.Lock()
	if c.state == Disposed {
		c.mu.Unlock()
		return
	}
	c.registry = NewRegistry(sections)
	c.nav = NewNavigator(c.registry, c.win, c.opts.HeaderClearance)
	if c.state == Uninitialized {
		c.attach()
		c.state = Ready
	}
	c.mu.Unlock()

	c.refresh()
}

// attach must be called with c.mu held.
func (c *Controller) attach() {
	c.frame = newFrameThrottle(c.win, func(relayout bool) {
		if relayout {
			c.refresh()
			return
		}
		c.update()
	})
	c.removeScroll = c.win.OnScroll(func() {
		c.frame.schedule(false)
	})
	c.removeResize = c.win.OnResize(func() {
		c.frame.schedule(true)
	})
}

// refresh recomputes offsets and then the active section.
func (c *Controller) refresh() {
	c.mu.Lock()
	if c.state != Ready {
		c.mu.Unlock()
		return
	}
	c.registry.Refresh(c.win)
	c.mu.Unlock()
	c.update()
}

// update recomputes the active section from the current scroll position
// and publishes it if it changed.
func (c *Controller) update() {
	c.mu.Lock()
	if c.state != Ready {
		c.mu.Unlock()
		return
	}
	next := c.registry.ActiveAt(c.win.ScrollY() + c.opts.ActivationOffset)
	if next == c.active {
		c.mu.Unlock()
		return
	}
	c.active = next
	subs := make([]func(string), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

// Subscribe registers fn to receive every change of the active id. It is
// not called with the current value; use Active for that.
func (c *Controller) Subscribe(fn func(active string)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

// Active returns the current section id, or "" if none is active.
func (c *Controller) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Sections returns the laid-out sections.
func (c *Controller) Sections() []Section {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Sections()
}

// ScrollTo smooth-scrolls to a registered section. Unknown ids and
// disposed controllers are ignored.
func (c *Controller) ScrollTo(id string) {
	c.mu.Lock()
	nav := c.nav
	ready := c.state == Ready
	c.mu.Unlock()
	if !ready || nav == nil {
		return
	}
	nav.ScrollTo(id)
}

// Dispose detaches every listener and cancels a pending frame. No
// subscriber is called after Dispose returns. Calling it again is a no-op.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Disposed {
		return
	}
	prev := c.state
	c.state = Disposed
	if prev == Uninitialized {
		return
	}
	c.removeScroll()
	c.removeResize()
	c.frame.stop()
	c.subscribers = map[int]func(string){}
}

// frameThrottle coalesces bursts of events into at most one callback per
// animation frame using a pending flag.
type frameThrottle struct {
	win Window
	run func(relayout bool)

	mu       sync.Mutex
	pending  bool
	relayout bool
	stopped  bool
	cancel   func()
}

func newFrameThrottle(win Window, run func(relayout bool)) *frameThrottle {
	return &frameThrottle{win: win, run: run}
}

// schedule queues a recompute for the next frame. A relayout request
// survives being merged into an already pending scroll update.
func (f *frameThrottle) schedule(relayout bool) {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return
	}
	f.relayout = f.relayout || relayout
	if f.pending {
		f.mu.Unlock()
		return
	}
	f.pending = true
	f.mu.Unlock()

	cancel := f.win.RequestFrame(f.fire)

	f.mu.Lock()
	if f.pending {
		f.cancel = cancel
	}
	f.mu.Unlock()
}

func (f *frameThrottle) fire() {
	f.mu.Lock()
	if f.stopped || !f.pending {
		f.mu.Unlock()
		return
	}
	relayout := f.relayout
	f.pending = false
	f.relayout = false
	f.cancel = nil
	f.mu.Unlock()

	f.run(relayout)
}

func (f *frameThrottle) stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	f.pending = false
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}
