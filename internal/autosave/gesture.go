package autosave

import (
	"context"
	"sync"
)

// Gesture models drag editing as an explicit two-state machine: Idle, or
// Selecting with a fixed paint value. Pressing down on a slot enters
// Selecting and fixes the value every dragged-over slot receives; releasing
// returns to Idle and flushes immediately so the final drag state is
// persisted promptly instead of waiting out the debounce window.
type Gesture struct {
	coord *Coordinator

	mu        sync.Mutex
	selecting bool
	value     bool
}

// NewGesture wires a gesture state machine to a coordinator.
func NewGesture(coord *Coordinator) *Gesture {
	return &Gesture{coord: coord}
}

// Begin enters Selecting. value is the availability painted onto every slot
// the gesture passes over, fixed at press time: dragging from an available
// slot clears, dragging from a cleared slot marks. Begin while already
// Selecting restarts with the new value.
func (g *Gesture) Begin(date, slot string, value bool) {
	g.mu.Lock()
	g.selecting = true
	g.value = value
	g.mu.Unlock()

	g.coord.Toggle(date, slot, value)
}

// Over paints the gesture's value onto a slot. Ignored when Idle, so stray
// move events without a press are harmless.
func (g *Gesture) Over(date, slot string) {
	g.mu.Lock()
	selecting, value := g.selecting, g.value
	g.mu.Unlock()

	if !selecting {
		return
	}
	g.coord.Toggle(date, slot, value)
}

// End returns to Idle and flushes the batch immediately.
func (g *Gesture) End(ctx context.Context) error {
	g.mu.Lock()
	g.selecting = false
	g.mu.Unlock()

	return g.coord.Flush(ctx)
}

// Selecting reports whether a gesture is in progress.
func (g *Gesture) Selecting() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.selecting
}
