// Package set provides the part inventory model: the checklist of parts
// in a loaded set, their found counters, manual marks and display order.
package set

import (
	"fmt"
	"time"
)

// Part is one tracked part type of the loaded inventory.
//
// Found and ManuallyMarked are mutated by user input; DetectedNow and
// LastDetectedAt are mutated only when a stability snapshot is applied.
// A manually marked part must never be flagged DetectedNow by the
// pipeline: it is excluded upstream, and ApplyDetections guards it again.
type Part struct {
	PartNumber string // identity key, stable across frames and sessions
	Name       string
	Color      string

	Required int
	Found    int

	ManuallyMarked bool
	DetectedNow    bool
	LastDetectedAt time.Time

	// OriginalPosition is the part's index in the inventory as loaded.
	// It is written once at load time and never mutated, so reordering
	// is always reversible.
	OriginalPosition int
}

// DisplayName returns "Color PartNumber" or the explicit name if set.
func (p *Part) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("%s %s", p.Color, p.PartNumber)
}

// FullyFound reports whether every required instance has been found.
func (p *Part) FullyFound() bool {
	return p.Found >= p.Required
}

// Remaining returns the number of instances still needed.
func (p *Part) Remaining() int {
	if p.Found >= p.Required {
		return 0
	}
	return p.Required - p.Found
}

// Excluded reports whether the part should be skipped by the detection
// tracker: manual marking and completion both take a part out of the
// "needs detecting" population.
func (p *Part) Excluded() bool {
	return p.ManuallyMarked || p.FullyFound()
}
