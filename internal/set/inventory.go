package set

import (
	"fmt"
	"sync"
	"time"
)

// Inventory is the loaded set: an ordered list of part types with their
// counters. Reads are safe from any goroutine; all mutation happens on
// the engine control loop (single-writer rule), the lock only protects
// readers from observing a half-applied update.
type Inventory struct {
	mu        sync.RWMutex
	Name      string
	SetNumber string
	parts     []*Part
	index     map[string]*Part
}

// NewInventory creates an empty inventory.
func NewInventory(name, setNumber string) *Inventory {
	return &Inventory{
		Name:      name,
		SetNumber: setNumber,
		index:     make(map[string]*Part),
	}
}

// Add appends a part, assigning its original position from insertion
// order. Duplicate part numbers merge their required quantities.
func (inv *Inventory) Add(partNumber, name, color string, required int) error {
	if partNumber == "" {
		return fmt.Errorf("part number must not be empty")
	}
	if required < 1 {
		return fmt.Errorf("part %s: required quantity must be positive, got %d", partNumber, required)
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if existing, ok := inv.index[partNumber]; ok {
		existing.Required += required
		return nil
	}
	p := &Part{
		PartNumber:       partNumber,
		Name:             name,
		Color:            color,
		Required:         required,
		OriginalPosition: len(inv.parts),
	}
	inv.parts = append(inv.parts, p)
	inv.index[partNumber] = p
	return nil
}

// Len returns the number of part types.
func (inv *Inventory) Len() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return len(inv.parts)
}

// Part returns a copy of the part with the given identity key.
func (inv *Inventory) Part(key string) (Part, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	p, ok := inv.index[key]
	if !ok {
		return Part{}, false
	}
	return *p, true
}

// Parts returns copies of all parts in original load order.
func (inv *Inventory) Parts() []Part {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make([]Part, len(inv.parts))
	for i, p := range inv.parts {
		out[i] = *p
	}
	return out
}

// Colors returns the identity-key -> color-name table, used to build the
// expected-color table for the color-consistency filter.
func (inv *Inventory) Colors() map[string]string {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make(map[string]string, len(inv.parts))
	for _, p := range inv.parts {
		out[p.PartNumber] = p.Color
	}
	return out
}

// AdjustFound changes a part's found counter by delta, clamped to
// [0, Required]. Returns the new count.
func (inv *Inventory) AdjustFound(key string, delta int) (int, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	p, ok := inv.index[key]
	if !ok {
		return 0, fmt.Errorf("unknown part %s", key)
	}
	n := p.Found + delta
	if n < 0 {
		n = 0
	}
	if n > p.Required {
		n = p.Required
	}
	p.Found = n
	if p.FullyFound() {
		p.DetectedNow = false
	}
	return n, nil
}

// SetManuallyMarked flags or unflags a part as manually found. Marking
// immediately clears DetectedNow so the part never shows as both.
func (inv *Inventory) SetManuallyMarked(key string, marked bool) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	p, ok := inv.index[key]
	if !ok {
		return fmt.Errorf("unknown part %s", key)
	}
	p.ManuallyMarked = marked
	if marked {
		p.DetectedNow = false
	}
	return nil
}

// ApplyDetections applies one stable detection set to the part flags.
// The set is the full current set, so the update is idempotent. Returns
// true when any DetectedNow flag changed. Excluded parts (manually
// marked or fully found) are never switched on, whatever the set says.
func (inv *Inventory) ApplyDetections(detected map[string]bool, entered map[string]time.Time) bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	changed := false
	for _, p := range inv.parts {
		want := detected[p.PartNumber] && !p.Excluded()
		if want != p.DetectedNow {
			p.DetectedNow = want
			changed = true
		}
		if at, ok := entered[p.PartNumber]; ok && want {
			p.LastDetectedAt = at
		}
	}
	return changed
}

// TotalRequired returns the total number of part instances in the set.
func (inv *Inventory) TotalRequired() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	n := 0
	for _, p := range inv.parts {
		n += p.Required
	}
	return n
}

// TotalFound returns the number of instances found so far.
func (inv *Inventory) TotalFound() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	n := 0
	for _, p := range inv.parts {
		n += p.Found
	}
	return n
}

// Complete reports whether every part is fully found.
func (inv *Inventory) Complete() bool {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	for _, p := range inv.parts {
		if !p.FullyFound() {
			return false
		}
	}
	return len(inv.parts) > 0
}
