package monitor

import (
	"sync"

	"github.com/wippyai/console-monitor/resource"
)

// Component is the managed object a Monitor owns alongside its handle.
// It holds no unmanaged state of its own; dropping it only marks it dropped.
type Component struct {
	mu      sync.Mutex
	calls   int
	dropped bool
}

var _ resource.Dropper = (*Component)(nil)

// NewComponent creates a live component.
func NewComponent() *Component {
	return &Component{}
}

// Drop releases the component. Only the first call has an effect.
func (c *Component) Drop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.dropped = true
}

// Dropped reports whether Drop has been called.
func (c *Component) Dropped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// Drops returns how many times Drop was called.
func (c *Component) Drops() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
