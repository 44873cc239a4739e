package detect

import (
	"sync"
	"sync/atomic"
)

// State is the detection pipeline state. There is exactly one State value
// per engine, owned by its StateMachine.
type State int32

const (
	StateOff State = iota
	StateLoading
	StateReady
	StateActive
	StateError
)

func (s State) String() string {
	switch s {
	case StateOff:
		return "off"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateActive:
		return "active"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// StateMachine guards the legal detection state transitions:
//
//	OFF ----startLoad----> LOADING --loadSucceeded--> READY <--> ACTIVE
//	                       LOADING --loadFailed-----> ERROR --retry--> LOADING
//
// READY never transitions back to OFF: once a model is loaded it stays
// loaded for the process lifetime. Illegal requests (a toggle while
// loading, a second startLoad while already loading) are no-ops; callers
// are expected to disable the corresponding controls instead of queueing.
//
// Current is safe from any goroutine; transitions are only ever invoked
// from the engine control loop.
type StateMachine struct {
	mu     sync.Mutex
	state  atomic.Int32
	reason string
}

// NewStateMachine creates a state machine in StateOff.
func NewStateMachine() *StateMachine {
	return &StateMachine{}
}

// Current returns the current state. Safe from any goroutine.
func (m *StateMachine) Current() State {
	return State(m.state.Load())
}

// Reason returns the human-readable reason attached to the last
// LoadFailed transition, or "" outside StateError.
func (m *StateMachine) Reason() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reason
}

// StartLoad moves OFF or ERROR to LOADING. A StartLoad while already
// LOADING is an idempotent no-op, which is what prevents double-load
// races. Returns true when the state changed.
func (m *StateMachine) StartLoad() bool {
	return m.transition(StateLoading, StateOff, StateError)
}

// LoadSucceeded moves LOADING to READY.
func (m *StateMachine) LoadSucceeded() bool {
	return m.transition(StateReady, StateLoading)
}

// LoadFailed moves LOADING to ERROR, recording the reason.
func (m *StateMachine) LoadFailed(reason string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if State(m.state.Load()) != StateLoading {
		return false
	}
	m.reason = reason
	m.state.Store(int32(StateError))
	return true
}

// ToggleOn moves READY to ACTIVE.
func (m *StateMachine) ToggleOn() bool {
	return m.transition(StateActive, StateReady)
}

// ToggleOff moves ACTIVE to READY.
func (m *StateMachine) ToggleOff() bool {
	return m.transition(StateReady, StateActive)
}

func (m *StateMachine) transition(to State, from ...State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := State(m.state.Load())
	for _, f := range from {
		if cur == f {
			if to != StateError {
				m.reason = ""
			}
			m.state.Store(int32(to))
			return true
		}
	}
	return false
}
