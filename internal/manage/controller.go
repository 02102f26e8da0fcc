package manage

import (
	"sync"

	"photo-gallery/internal/models"
)

// Controller owns the single admin draft. Its lock stands in for the one UI
// thread of a browser page: every event is reduced in full before the next.
type Controller struct {
	mu        sync.Mutex
	state     State
	listeners []func(State)
}

func NewController(photos []models.Photo) *Controller {
	return &Controller{state: NewState(photos)}
}

// OnChange registers fn to receive every state produced by a successful event.
// fn runs under the controller lock and must not dispatch.
func (c *Controller) OnChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Dispatch reduces e against the current draft.
func (c *Controller) Dispatch(e Event) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := Reduce(c.state, e)
	if err != nil {
		return c.state, err
	}
	c.state = next
	for _, fn := range c.listeners {
		fn(next)
	}
	return next, nil
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Export serializes the current draft.
func (c *Controller) Export() ([]byte, error) {
	return Export(c.Snapshot().Photos)
}
