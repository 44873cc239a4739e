package detect

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempModelFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.pb")
	require.NoError(t, os.WriteFile(path, []byte("not a real network"), 0o644))
	return path
}

func waitResult(t *testing.T, l *ModelLoader) LoadResult {
	t.Helper()
	select {
	case res := <-l.Results():
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("no load result delivered")
		return LoadResult{}
	}
}

func TestLoaderDeliversDetector(t *testing.T) {
	t.Parallel()
	want := &fakeDetector{}
	l := NewModelLoader(func(string) (Detector, error) { return want, nil })

	require.True(t, l.Start(tempModelFile(t)))
	res := waitResult(t, l)

	require.NoError(t, res.Err)
	assert.Same(t, want, res.Detector)
	assert.Equal(t, uint64(1), l.Loads())
}

func TestLoaderMissingFile(t *testing.T) {
	t.Parallel()
	l := NewModelLoader(func(string) (Detector, error) {
		t.Fatal("open must not be called for a missing file")
		return nil, nil
	})

	require.True(t, l.Start(filepath.Join(t.TempDir(), "nope.pb")))
	res := waitResult(t, l)

	require.Error(t, res.Err)
	var le *LoadError
	require.ErrorAs(t, res.Err, &le)
	assert.Equal(t, "model file not found", le.Reason)
}

func TestLoaderSecondStartIsNoOp(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	l := NewModelLoader(func(string) (Detector, error) {
		<-release
		return &fakeDetector{}, nil
	})

	path := tempModelFile(t)
	require.True(t, l.Start(path))
	assert.False(t, l.Start(path), "second start while in flight must be rejected")

	close(release)
	waitResult(t, l)
	assert.Equal(t, uint64(1), l.Loads())

	// A new load is allowed once the first finished.
	assert.True(t, l.Start(path))
	waitResult(t, l)
}

func TestLoaderRecoversFromBackendPanic(t *testing.T) {
	t.Parallel()
	l := NewModelLoader(func(string) (Detector, error) {
		panic("cv exception")
	})

	require.True(t, l.Start(tempModelFile(t)))
	res := waitResult(t, l)

	require.Error(t, res.Err)
	var le *LoadError
	require.ErrorAs(t, res.Err, &le)
	assert.Contains(t, le.Reason, "backend panic")
}

func TestLoaderNilDetectorIsAnError(t *testing.T) {
	t.Parallel()
	l := NewModelLoader(func(string) (Detector, error) { return nil, nil })

	require.True(t, l.Start(tempModelFile(t)))
	res := waitResult(t, l)
	require.Error(t, res.Err)
}
