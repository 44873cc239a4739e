package detect

import "fmt"

// LoadError reports a failed model load. It is always recoverable: the
// state machine moves to StateError and a retry is a legal transition.
type LoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load model %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("load model %s: %s", e.Path, e.Reason)
}

func (e *LoadError) Unwrap() error { return e.Err }

// CaptureFault reports a capture source failure mid-stream. It is handled
// locally by the capture loop and never changes the detection state.
type CaptureFault struct {
	Source string
	Err    error
}

func (e *CaptureFault) Error() string {
	return fmt.Sprintf("capture source %s: %v", e.Source, e.Err)
}

func (e *CaptureFault) Unwrap() error { return e.Err }

// FilterConfigError reports an out-of-range QualityConfig value. The
// offending snapshot is rejected and the previous one stays in effect.
type FilterConfigError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *FilterConfigError) Error() string {
	return fmt.Sprintf("quality config: %s = %g: %s", e.Field, e.Value, e.Reason)
}
