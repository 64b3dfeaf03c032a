package core

import (
	"fmt"
	"sync"

	"github.com/huangsam/swagent/schema"
)

// transitions lists the only legal moves. There is no rollback.
var transitions = map[schema.LifecycleState]schema.LifecycleState{
	schema.Installing: schema.Installed,
	schema.Installed:  schema.Activating,
	schema.Activating: schema.Activated,
}

// Lifecycle is the state machine of one worker instance.
type Lifecycle struct {
	mu    sync.RWMutex
	state schema.LifecycleState
}

// NewLifecycle returns a lifecycle in the installing state.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: schema.Installing}
}

// State returns the current state.
func (l *Lifecycle) State() schema.LifecycleState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Transition moves to next if that is the single legal successor of the current state.
func (l *Lifecycle) Transition(next schema.LifecycleState) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if want, ok := transitions[l.state]; !ok || want != next {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, l.state, next)
	}
	l.state = next
	return nil
}
