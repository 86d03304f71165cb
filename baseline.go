package reviewsense

// BaselineModelName is the name of the artifact written by BaselineModel.
const BaselineModelName = "lexical-baseline"

// BaselineModel returns a fixed-weight classifier for the lexical embedder
// with dim-wide vectors. It reads only the polarity slot: a ReLU layer splits
// polarity into its positive and negative parts, and the output layer favors
// Neutral while both parts are small.
//
// It lets the service run end to end without a trained artifact.
func BaselineModel(dim int) *Model {
	hidden := Layer{
		Weights:    make([]float64, 2*dim),
		Bias:       []float64{0, 0},
		Activation: ReLU,
	}
	hidden.Weights[featPolarity] = 1
	hidden.Weights[dim+featPolarity] = -1

	// Rows follow DefaultLabels: Negative, Neutral, Positive.
	output := Layer{
		Weights: []float64{
			-1, 6,
			-4, -4,
			6, -1,
		},
		Bias:       []float64{0, 1.5, 0},
		Activation: Identity,
	}

	return &Model{
		Name:     BaselineModelName,
		Embedder: LexicalEmbedderName,
		InputDim: dim,
		Labels:   append([]Label(nil), DefaultLabels...),
		Layers:   []Layer{hidden, output},
	}
}
