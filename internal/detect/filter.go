package detect

import (
	"image/color"
	"sort"
	"time"

	"brick-scout/pkg/colorutil"
)

// FilterCandidates applies the quality filter to raw detector output.
// Rules run in order: confidence cut, per-identity non-max suppression,
// size and aspect-ratio bounds, then the optional dominant-color check
// against expected (identity key -> expected color). The function is pure
// and deterministic: identical input always yields identical output, and
// the order of raw detections does not matter (they are sorted into a
// canonical order before suppression).
func FilterCandidates(raw []RawDetection, at time.Time, cfg QualityConfig, expected map[string]color.RGBA) []Candidate {
	if len(raw) == 0 {
		return nil
	}

	work := make([]RawDetection, 0, len(raw))
	for _, d := range raw {
		if d.Confidence >= cfg.Confidence {
			work = append(work, d)
		}
	}
	if len(work) == 0 {
		return nil
	}

	sortCanonical(work)
	work = suppressOverlaps(work, cfg.NMSIoU)

	out := make([]Candidate, 0, len(work))
	for _, d := range work {
		w, h := d.Box.Width, d.Box.Height
		if w < cfg.MinSizePx || h < cfg.MinSizePx || w > cfg.MaxSizePx || h > cfg.MaxSizePx {
			continue
		}
		ar := d.Box.AspectRatio()
		if ar < cfg.AspectRatioMin || ar > cfg.AspectRatioMax {
			continue
		}
		if cfg.ColorConsistency && d.Color.A != 0 {
			if want, ok := expected[d.Key]; ok {
				if colorutil.Similarity(d.Color, want) < cfg.ColorThreshold {
					continue
				}
			}
		}
		out = append(out, Candidate{
			Key:        d.Key,
			Box:        d.Box,
			Confidence: d.Confidence,
			At:         at,
		})
	}
	return out
}

// sortCanonical orders detections by confidence (descending) with key and
// position tie-breaks so suppression is independent of input order.
func sortCanonical(ds []RawDetection) {
	sort.SliceStable(ds, func(i, j int) bool {
		if ds[i].Confidence != ds[j].Confidence {
			return ds[i].Confidence > ds[j].Confidence
		}
		if ds[i].Key != ds[j].Key {
			return ds[i].Key < ds[j].Key
		}
		if ds[i].Box.X != ds[j].Box.X {
			return ds[i].Box.X < ds[j].Box.X
		}
		return ds[i].Box.Y < ds[j].Box.Y
	})
}

// suppressOverlaps performs greedy NMS per identity key: a detection is
// dropped when a higher-ranked detection of the same key overlaps it with
// IoU above the threshold. Input must already be in canonical order.
func suppressOverlaps(ds []RawDetection, iouThreshold float64) []RawDetection {
	if len(ds) <= 1 {
		return ds
	}
	kept := make([]RawDetection, 0, len(ds))
	suppressed := make([]bool, len(ds))
	for i := range ds {
		if suppressed[i] {
			continue
		}
		kept = append(kept, ds[i])
		for j := i + 1; j < len(ds); j++ {
			if suppressed[j] || ds[j].Key != ds[i].Key {
				continue
			}
			if ds[i].Box.IoU(ds[j].Box) > iouThreshold {
				suppressed[j] = true
			}
		}
	}
	return kept
}
