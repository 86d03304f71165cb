package reviewsense

import (
	"time"
)

// Label is a sentiment class emitted by the classifier.
type Label string

const (
	Negative Label = "Negative"
	Neutral  Label = "Neutral"
	Positive Label = "Positive"
)

// DefaultLabels is the index→label order the shipped artifacts were built
// with. Artifacts carry their own order; this is only used when building new
// ones.
var DefaultLabels = []Label{Negative, Neutral, Positive}

// Valid reports whether l is one of the known sentiment classes.
func (l Label) Valid() bool {
	switch l {
	case Negative, Neutral, Positive:
		return true
	}
	return false
}

// Prediction is the result of classifying one review.
type Prediction struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"` // probability of Label, 0.0-1.0
}

// SentencePrediction is the prediction for one segmented sentence of a review.
type SentencePrediction struct {
	Text  string `json:"text"`
	Start int    `json:"start"` // byte offset in the original text
	End   int    `json:"end"`
	Prediction
}

// Report is the detailed result of Predictor.Analyze.
type Report struct {
	Prediction

	Cleaned       string               `json:"cleaned"`
	Probabilities map[Label]float64    `json:"probabilities"`
	Sentences     []SentencePrediction `json:"sentences,omitempty"`
	Elapsed       time.Duration        `json:"-"`
	ElapsedMs     float64              `json:"elapsed_ms"`
}

// EmptyInputPolicy controls what the predictor does with text that has no
// letters left after normalization.
type EmptyInputPolicy string

const (
	EmptyError   EmptyInputPolicy = "error"   // return ErrEmptyInput
	EmptyNeutral EmptyInputPolicy = "neutral" // return {Neutral, 0}
)
