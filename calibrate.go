package reviewsense

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Softmax converts logits into probabilities that sum to 1. The maximum
// logit is subtracted before exponentiation, so large logits do not overflow.
func Softmax(logits []float64) ([]float64, error) {
	if len(logits) == 0 {
		return nil, fmt.Errorf("%w: no logits", ErrMalformedLogits)
	}
	for i, l := range logits {
		if math.IsNaN(l) || math.IsInf(l, 0) {
			return nil, fmt.Errorf("%w: logit %d is %v", ErrMalformedLogits, i, l)
		}
	}

	probs := make([]float64, len(logits))
	copy(probs, logits)
	floats.AddConst(-floats.Max(probs), probs)
	for i, v := range probs {
		probs[i] = math.Exp(v)
	}
	floats.Scale(1/floats.Sum(probs), probs)
	return probs, nil
}

// Calibrate turns logits into a Prediction. The label is the arg-max of the
// probabilities, the lowest index winning ties, and the confidence is its
// probability. The full distribution is returned alongside.
func Calibrate(logits []float64, labels []Label) (Prediction, []float64, error) {
	if len(logits) != len(labels) {
		return Prediction{}, nil, fmt.Errorf("%w: %d logits for %d labels",
			ErrMalformedLogits, len(logits), len(labels))
	}
	probs, err := Softmax(logits)
	if err != nil {
		return Prediction{}, nil, err
	}

	// floats.MaxIdx returns the first maximal index.
	best := floats.MaxIdx(probs)
	return Prediction{Label: labels[best], Confidence: probs[best]}, probs, nil
}
