// Package app holds shared application state and the event mechanism
// the UI panels use to stay in sync without referencing each other.
package app

import (
	"sync"

	"brick-scout/internal/set"
)

// State is the application-level state shared by the UI: the loaded
// inventory and the event listeners. Detection state lives in the
// engine, not here.
type State struct {
	mu sync.RWMutex

	// Inventory is the currently loaded set, nil before the first load.
	Inventory *set.Inventory

	// InventoryPath is where the inventory was loaded from.
	InventoryPath string

	// ModelPath is the recognition model chosen by the user.
	ModelPath string

	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventInventoryLoaded EventType = iota
	EventModelChosen
	EventOrderingChanged
	EventDetectionSetChanged
	EventCountsChanged
	EventDetectionStateChanged
	EventStatus
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a new application state.
func NewState() *State {
	return &State{
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetInventory installs a freshly loaded set and emits the load event.
func (s *State) SetInventory(inv *set.Inventory, path string) {
	s.mu.Lock()
	s.Inventory = inv
	s.InventoryPath = path
	s.mu.Unlock()
	s.Emit(EventInventoryLoaded, inv)
}

// CurrentInventory returns the loaded inventory, nil before a load.
func (s *State) CurrentInventory() *set.Inventory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Inventory
}

// SetModelPath records the chosen model and emits the event.
func (s *State) SetModelPath(path string) {
	s.mu.Lock()
	s.ModelPath = path
	s.mu.Unlock()
	s.Emit(EventModelChosen, path)
}
