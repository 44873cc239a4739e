package set

import "sort"

// Reorder computes the display order for the part list: currently
// detected parts first, everything else after, each partition in original
// load order. The result is a list of identity keys.
//
// Properties relied on by the list widget:
//   - idempotent: the same detected flags always yield the same order, so
//     reapplying a snapshot never moves rows;
//   - reversible: OriginalPosition is never rewritten, so a part leaving
//     the detected set returns to its exact original relative place.
func Reorder(parts []Part) []string {
	sorted := make([]Part, len(parts))
	copy(sorted, parts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OriginalPosition < sorted[j].OriginalPosition
	})

	keys := make([]string, 0, len(sorted))
	for _, p := range sorted {
		if p.DetectedNow {
			keys = append(keys, p.PartNumber)
		}
	}
	for _, p := range sorted {
		if !p.DetectedNow {
			keys = append(keys, p.PartNumber)
		}
	}
	return keys
}

// SameOrder reports whether two orderings are identical.
func SameOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
