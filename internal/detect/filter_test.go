package detect

import (
	"image/color"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brick-scout/pkg/geometry"
)

func det(key string, conf, x, y, w, h float64) RawDetection {
	return RawDetection{Key: key, Confidence: conf, Box: geometry.NewRect(x, y, w, h)}
}

func permissiveConfig() QualityConfig {
	return QualityConfig{
		Confidence:     0.5,
		NMSIoU:         0.45,
		MinSizePx:      1,
		MaxSizePx:      10000,
		AspectRatioMin: 0.01,
		AspectRatioMax: 100,
	}
}

func TestFilterConfidenceCut(t *testing.T) {
	t.Parallel()
	raw := []RawDetection{
		det("3001", 0.9, 0, 0, 50, 50),
		det("3022", 0.49, 100, 100, 50, 50),
		det("3003", 0.5, 200, 200, 50, 50), // boundary is inclusive
	}
	out := FilterCandidates(raw, time.Now(), permissiveConfig(), nil)
	require.Len(t, out, 2)
	assert.Equal(t, "3001", out[0].Key)
	assert.Equal(t, "3003", out[1].Key)
}

func TestFilterSuppressesOverlappingSameKey(t *testing.T) {
	t.Parallel()
	raw := []RawDetection{
		det("3001", 0.7, 0, 0, 100, 100),
		det("3001", 0.9, 5, 5, 100, 100), // higher confidence wins
	}
	out := FilterCandidates(raw, time.Now(), permissiveConfig(), nil)
	require.Len(t, out, 1)
	assert.Equal(t, 0.9, out[0].Confidence)
}

func TestFilterKeepsOverlappingDifferentKeys(t *testing.T) {
	t.Parallel()
	raw := []RawDetection{
		det("3001", 0.9, 0, 0, 100, 100),
		det("3022", 0.8, 5, 5, 100, 100),
	}
	out := FilterCandidates(raw, time.Now(), permissiveConfig(), nil)
	assert.Len(t, out, 2)
}

func TestFilterSizeBounds(t *testing.T) {
	t.Parallel()
	cfg := permissiveConfig()
	cfg.MinSizePx = 20
	cfg.MaxSizePx = 200

	raw := []RawDetection{
		det("tiny", 0.9, 0, 0, 10, 10),
		det("huge", 0.9, 0, 0, 500, 500),
		det("fits", 0.9, 0, 0, 100, 100),
	}
	out := FilterCandidates(raw, time.Now(), cfg, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "fits", out[0].Key)
}

func TestFilterAspectRatioBounds(t *testing.T) {
	t.Parallel()
	cfg := permissiveConfig()
	cfg.AspectRatioMin = 0.2
	cfg.AspectRatioMax = 5.0

	raw := []RawDetection{
		det("sliver", 0.9, 0, 0, 600, 10), // 60:1
		det("brick", 0.9, 0, 0, 80, 40),   // 2:1
	}
	out := FilterCandidates(raw, time.Now(), cfg, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "brick", out[0].Key)
}

func TestFilterColorConsistency(t *testing.T) {
	t.Parallel()
	cfg := permissiveConfig()
	cfg.ColorConsistency = true
	cfg.ColorThreshold = 0.9

	red := color.RGBA{R: 0xB4, A: 0xFF}
	blue := color.RGBA{B: 0xA8, A: 0xFF}
	expected := map[string]color.RGBA{"3001": red}

	match := det("3001", 0.9, 0, 0, 50, 50)
	match.Color = red
	mismatch := det("3001", 0.9, 200, 0, 50, 50)
	mismatch.Color = blue
	unsampled := det("3001", 0.9, 400, 0, 50, 50) // zero alpha: check skipped

	out := FilterCandidates(raw3(match, mismatch, unsampled), time.Now(), cfg, expected)
	require.Len(t, out, 2)
	for _, c := range out {
		assert.NotEqual(t, 200.0, c.Box.X, "color mismatch should have been dropped")
	}

	// Unknown expected color: check is skipped for the key.
	out = FilterCandidates(raw3(match, mismatch, unsampled), time.Now(), cfg, nil)
	assert.Len(t, out, 3)
}

func raw3(ds ...RawDetection) []RawDetection { return ds }

func TestFilterIsOrderIndependent(t *testing.T) {
	t.Parallel()
	raw := []RawDetection{
		det("3001", 0.9, 0, 0, 100, 100),
		det("3001", 0.7, 10, 10, 100, 100),
		det("3022", 0.8, 300, 300, 60, 40),
		det("3003", 0.85, 500, 10, 45, 45),
		det("3003", 0.6, 505, 12, 45, 45),
	}
	at := time.Unix(1700000000, 0)
	want := FilterCandidates(raw, at, permissiveConfig(), nil)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]RawDetection, len(raw))
		copy(shuffled, raw)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		got := FilterCandidates(shuffled, at, permissiveConfig(), nil)
		assert.Equal(t, want, got)
	}
}

func TestFilterEmptyInput(t *testing.T) {
	t.Parallel()
	assert.Nil(t, FilterCandidates(nil, time.Now(), permissiveConfig(), nil))
}

func TestQualityConfigValidate(t *testing.T) {
	t.Parallel()
	assert.NoError(t, DefaultQualityConfig().Validate())

	cases := []struct {
		name   string
		mutate func(*QualityConfig)
		field  string
	}{
		{"confidence above one", func(c *QualityConfig) { c.Confidence = 1.5 }, "Confidence"},
		{"negative confidence", func(c *QualityConfig) { c.Confidence = -0.1 }, "Confidence"},
		{"nms above one", func(c *QualityConfig) { c.NMSIoU = 2 }, "NMSIoU"},
		{"max below min size", func(c *QualityConfig) { c.MaxSizePx = c.MinSizePx - 1 }, "MaxSizePx"},
		{"zero aspect min", func(c *QualityConfig) { c.AspectRatioMin = 0 }, "AspectRatioMin"},
		{"aspect max below min", func(c *QualityConfig) { c.AspectRatioMax = 0.1 }, "AspectRatioMax"},
		{"color threshold above one", func(c *QualityConfig) { c.ColorThreshold = 1.1 }, "ColorThreshold"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultQualityConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var fce *FilterConfigError
			require.ErrorAs(t, err, &fce)
			assert.Equal(t, tc.field, fce.Field)
		})
	}
}
