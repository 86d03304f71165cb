package reviewsense

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when a review has no letters left after
	// normalization.
	ErrEmptyInput = errors.New("reviewsense: empty input")

	// ErrMalformedLogits is returned by the calibrator for empty, non-finite
	// or mislabelled logit vectors.
	ErrMalformedLogits = errors.New("reviewsense: malformed logits")

	// ErrShapeMismatch is returned when a vector does not have the length a
	// model layer expects.
	ErrShapeMismatch = errors.New("reviewsense: shape mismatch")

	// ErrEncoderMismatch is returned when a classifier artifact was built for
	// a different embedder than the one it is paired with.
	ErrEncoderMismatch = errors.New("reviewsense: encoder mismatch")
)

// Stage names the pipeline step an InferenceError came from.
type Stage string

const (
	StageEmbed     Stage = "embed"
	StageClassify  Stage = "classify"
	StageCalibrate Stage = "calibrate"
)

// InferenceError wraps a failure inside the prediction pipeline.
type InferenceError struct {
	Stage Stage
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("reviewsense: %s failed: %v", e.Stage, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// IsInferenceError reports whether err came from the prediction pipeline
// rather than from input validation.
func IsInferenceError(err error) bool {
	var ie *InferenceError
	return errors.As(err, &ie)
}
