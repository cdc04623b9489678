package mode

import (
	"sync/atomic"

	"wristmon-go/types"
)

// Controller holds the program state. Toggle may be called from the button
// context while State is read from the tick loop; both are single-word atomics.
type Controller struct {
	state atomic.Uint32
}

func New(initial types.ProgramState) *Controller {
	c := &Controller{}
	c.state.Store(uint32(initial) % types.NumProgramStates)
	return c
}

func (c *Controller) State() types.ProgramState {
	return types.ProgramState(c.state.Load())
}

// Toggle advances to (current+1) mod 2 and returns the new state.
func (c *Controller) Toggle() types.ProgramState {
	for {
		cur := c.state.Load()
		next := (cur + 1) % types.NumProgramStates
		if c.state.CompareAndSwap(cur, next) {
			return types.ProgramState(next)
		}
	}
}
