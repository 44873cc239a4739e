package detect

// QualityConfig controls the candidate filter. A value is validated once
// at the configuration boundary and then treated as immutable; the engine
// swaps whole snapshots atomically so an in-flight filter pass never sees
// a partially updated configuration.
type QualityConfig struct {
	// Confidence is the minimum detection confidence (0-1).
	Confidence float64

	// NMSIoU is the IoU threshold for per-identity non-max suppression (0-1).
	NMSIoU float64

	// MinSizePx / MaxSizePx bound the candidate box edge lengths in pixels.
	MinSizePx float64
	MaxSizePx float64

	// AspectRatioMin / AspectRatioMax bound width/height of the box.
	AspectRatioMin float64
	AspectRatioMax float64

	// ColorConsistency enables the dominant-color check against the
	// expected color for the identity key.
	ColorConsistency bool

	// ColorThreshold is the minimum 0-1 color similarity accepted when
	// ColorConsistency is on.
	ColorThreshold float64
}

// DefaultQualityConfig returns the filter defaults used at startup.
func DefaultQualityConfig() QualityConfig {
	return QualityConfig{
		Confidence:       0.5,
		NMSIoU:           0.45,
		MinSizePx:        20,
		MaxSizePx:        600,
		AspectRatioMin:   0.2,
		AspectRatioMax:   5.0,
		ColorConsistency: true,
		ColorThreshold:   0.75,
	}
}

// Validate checks all fields and returns a *FilterConfigError for the
// first out-of-range value.
func (c QualityConfig) Validate() error {
	if c.Confidence < 0 || c.Confidence > 1 {
		return &FilterConfigError{Field: "Confidence", Value: c.Confidence, Reason: "must be in [0,1]"}
	}
	if c.NMSIoU < 0 || c.NMSIoU > 1 {
		return &FilterConfigError{Field: "NMSIoU", Value: c.NMSIoU, Reason: "must be in [0,1]"}
	}
	if c.MinSizePx < 0 {
		return &FilterConfigError{Field: "MinSizePx", Value: c.MinSizePx, Reason: "must be >= 0"}
	}
	if c.MaxSizePx <= c.MinSizePx {
		return &FilterConfigError{Field: "MaxSizePx", Value: c.MaxSizePx, Reason: "must be greater than MinSizePx"}
	}
	if c.AspectRatioMin <= 0 {
		return &FilterConfigError{Field: "AspectRatioMin", Value: c.AspectRatioMin, Reason: "must be > 0"}
	}
	if c.AspectRatioMax < c.AspectRatioMin {
		return &FilterConfigError{Field: "AspectRatioMax", Value: c.AspectRatioMax, Reason: "must be >= AspectRatioMin"}
	}
	if c.ColorThreshold < 0 || c.ColorThreshold > 1 {
		return &FilterConfigError{Field: "ColorThreshold", Value: c.ColorThreshold, Reason: "must be in [0,1]"}
	}
	return nil
}
