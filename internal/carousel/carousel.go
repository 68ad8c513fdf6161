// Package carousel tracks the active slide of a cyclic, single-active-item view.
package carousel

import "sync"

// SwipeThreshold is the horizontal displacement in logical pixels a swipe must
// exceed to navigate.
const SwipeThreshold = 50

// Action names a navigation request.
type Action string

const (
	ActionNext Action = "next"
	ActionPrev Action = "prev"
	ActionJump Action = "jump"
)

// Controller holds the active index over n items. The zero value has no items.
// Safe for concurrent use.
type Controller struct {
	mu    sync.Mutex
	n     int
	index int
}

// New returns a Controller over n items positioned at 0.
func New(n int) *Controller {
	c := &Controller{}
	c.Reset(n)
	return c
}

// Reset replaces the backing item count and moves to the first item.
func (c *Controller) Reset(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < 0 {
		n = 0
	}
	c.n = n
	c.index = 0
}

// Len returns the item count.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Index returns the active index. It is 0 when there are no items.
func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Active reports whether i is the active item. Exactly one i in [0, n) is active.
func (c *Controller) Active(i int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n > 0 && i == c.index
}

// Next advances cyclically.
func (c *Controller) Next() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.n > 0 {
		c.index = (c.index + 1) % c.n
	}
	return c.index
}

// Prev steps back cyclically.
func (c *Controller) Prev() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.n > 0 {
		c.index = (c.index - 1 + c.n) % c.n
	}
	return c.index
}

// JumpTo activates i. Out of range indices are ignored and report false.
func (c *Controller) JumpTo(i int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= c.n {
		return false
	}
	c.index = i
	return true
}

// Swipe navigates for a horizontal displacement dx: a leftward swipe (negative)
// moves next, a rightward swipe moves prev. It reports whether it navigated.
func (c *Controller) Swipe(dx float64) bool {
	switch {
	case dx < -SwipeThreshold:
		c.Next()
		return true
	case dx > SwipeThreshold:
		c.Prev()
		return true
	default:
		return false
	}
}

// Apply performs action and reports whether the index may have changed.
func (c *Controller) Apply(action Action, to int) bool {
	switch action {
	case ActionNext:
		c.Next()
		return true
	case ActionPrev:
		c.Prev()
		return true
	case ActionJump:
		return c.JumpTo(to)
	default:
		return false
	}
}

// Restore positions a Controller over n items at index, as carried by a request.
// Invalid indices fall back to 0.
func Restore(n, index int) *Controller {
	c := New(n)
	c.JumpTo(index)
	return c
}
