package reviewsense

import (
	"errors"
	"math"
	"testing"
)

func TestSoftmax(t *testing.T) {
	tests := []struct {
		desc   string
		logits []float64
		argmax int
	}{
		{"ordinary", []float64{0.1, 2.3, -1}, 1},
		{"large logits", []float64{1000, 999, -1000}, 0},
		{"very negative", []float64{-1e6, -1e6 + 1, -1e6 + 2}, 2},
		{"single class", []float64{42}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			probs, err := Softmax(tt.logits)
			if err != nil {
				t.Fatalf("Softmax: %v", err)
			}
			var sum float64
			best := 0
			for i, p := range probs {
				if math.IsNaN(p) || p < 0 || p > 1 {
					t.Fatalf("probability %d = %v", i, p)
				}
				sum += p
				if p > probs[best] {
					best = i
				}
			}
			if math.Abs(sum-1) > 1e-6 {
				t.Errorf("sum = %v, want 1", sum)
			}
			if best != tt.argmax {
				t.Errorf("argmax = %d, want %d", best, tt.argmax)
			}
		})
	}
}

func TestSoftmaxMalformed(t *testing.T) {
	for _, logits := range [][]float64{
		nil,
		{},
		{1, math.NaN(), 0},
		{math.Inf(1), 0, 0},
		{0, math.Inf(-1)},
	} {
		if _, err := Softmax(logits); !errors.Is(err, ErrMalformedLogits) {
			t.Errorf("Softmax(%v) err = %v, want ErrMalformedLogits", logits, err)
		}
	}
}

func TestCalibrate(t *testing.T) {
	pred, probs, err := Calibrate([]float64{-1.2, 0.3, 2.5}, DefaultLabels)
	if err != nil {
		t.Fatalf("Calibrate: %v", err)
	}
	if pred.Label != Positive {
		t.Errorf("label = %s, want Positive", pred.Label)
	}
	if pred.Confidence != probs[2] {
		t.Errorf("confidence = %v, want the Positive probability %v", pred.Confidence, probs[2])
	}
	if pred.Confidence <= 1.0/3 || pred.Confidence > 1 {
		t.Errorf("confidence = %v, want in (1/3, 1]", pred.Confidence)
	}
}

func TestCalibrateTiesPickFirst(t *testing.T) {
	pred, _, err := Calibrate([]float64{0.7, 0.7, 0.7}, DefaultLabels)
	if err != nil {
		t.Fatalf("Calibrate: %v", err)
	}
	if pred.Label != Negative {
		t.Errorf("label = %s, want the first index (Negative)", pred.Label)
	}
	if math.Abs(pred.Confidence-1.0/3) > 1e-12 {
		t.Errorf("confidence = %v, want 1/3", pred.Confidence)
	}
}

func TestCalibrateLengthMismatch(t *testing.T) {
	if _, _, err := Calibrate([]float64{1, 2}, DefaultLabels); !errors.Is(err, ErrMalformedLogits) {
		t.Errorf("err = %v, want ErrMalformedLogits", err)
	}
}
