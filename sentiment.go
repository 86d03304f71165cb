package reviewsense

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Predictor classifies review text. It owns one embedder and one classifier
// artifact, both loaded before construction and never mutated afterwards, so
// a Predictor is safe for concurrent use.
//
//	p, err := reviewsense.New(embedder, model)
//	pred, err := p.Predict(ctx, "This phone is amazing!")
type Predictor struct {
	embedder Embedder
	model    *Model

	emptyInput       EmptyInputPolicy
	skipEncoderCheck bool
	serialize        bool
	logger           *slog.Logger

	mu sync.Mutex // held around inference when serialize is set
}

// An Option configures a Predictor.
type Option func(p *Predictor)

// WithEmptyInput sets what Predict does with text that normalizes to the
// empty string. The default is EmptyError.
func WithEmptyInput(policy EmptyInputPolicy) Option {
	return func(p *Predictor) {
		p.emptyInput = policy
	}
}

// WithSkipEncoderCheck allows pairing a model with an embedder whose name
// differs from the one recorded in the artifact. Dimensions are still checked.
func WithSkipEncoderCheck() Option {
	return func(p *Predictor) {
		p.skipEncoderCheck = true
	}
}

// WithSerializedInference runs one inference at a time, for embedders that
// are not safe for concurrent use.
func WithSerializedInference() Option {
	return func(p *Predictor) {
		p.serialize = true
	}
}

// WithLogger logs every prediction at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Predictor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Predictor from a loaded embedder and classifier.
func New(embedder Embedder, model *Model, opts ...Option) (*Predictor, error) {
	if embedder == nil {
		return nil, errors.New("reviewsense: nil embedder")
	}
	if model == nil {
		return nil, errors.New("reviewsense: nil model")
	}

	p := &Predictor{
		embedder:   embedder,
		model:      model,
		emptyInput: EmptyError,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}

	switch p.emptyInput {
	case EmptyError, EmptyNeutral:
	default:
		return nil, fmt.Errorf("reviewsense: unknown empty input policy %q", p.emptyInput)
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	if embedder.Dim() != model.InputDim {
		return nil, fmt.Errorf("%w: embedder %s produces %d dimensions, model %s expects %d",
			ErrEncoderMismatch, embedder.Name(), embedder.Dim(), model.Name, model.InputDim)
	}
	if !p.skipEncoderCheck && embedder.Name() != model.Embedder {
		return nil, fmt.Errorf("%w: model %s was built for %q, embedder is %q",
			ErrEncoderMismatch, model.Name, model.Embedder, embedder.Name())
	}
	return p, nil
}

// Predict classifies one review. Text that is empty after normalization
// yields ErrEmptyInput, or {Neutral, 0} under EmptyNeutral. Any failure past
// normalization is an *InferenceError.
func (p *Predictor) Predict(ctx context.Context, text string) (Prediction, error) {
	start := time.Now()

	cleaned := Normalize(text)
	if cleaned == "" {
		if p.emptyInput == EmptyNeutral {
			return Prediction{Label: Neutral, Confidence: 0}, nil
		}
		return Prediction{}, ErrEmptyInput
	}

	pred, _, err := p.infer(ctx, cleaned)
	if err != nil {
		p.logger.DebugContext(ctx, "prediction failed", "error", err)
		return Prediction{}, err
	}

	p.logger.DebugContext(ctx, "prediction completed",
		"label", pred.Label,
		"confidence", pred.Confidence,
		"elapsed_ms", float64(time.Since(start).Microseconds())/1000)
	return pred, nil
}

// infer runs embed → classify → calibrate on cleaned, non-empty text.
func (p *Predictor) infer(ctx context.Context, cleaned string) (Prediction, []float64, error) {
	if p.serialize {
		p.mu.Lock()
		defer p.mu.Unlock()
	}

	embedding, err := p.embedder.Embed(ctx, cleaned)
	if err != nil {
		return Prediction{}, nil, &InferenceError{Stage: StageEmbed, Err: err}
	}

	logits, err := p.model.Logits(embedding)
	if err != nil {
		return Prediction{}, nil, &InferenceError{Stage: StageClassify, Err: err}
	}

	pred, probs, err := Calibrate(logits, p.model.Labels)
	if err != nil {
		return Prediction{}, nil, &InferenceError{Stage: StageCalibrate, Err: err}
	}
	return pred, probs, nil
}

// Labels returns the classes the model can emit, in artifact order.
func (p *Predictor) Labels() []Label {
	return append([]Label(nil), p.model.Labels...)
}

// EmbedderName identifies the encoder in use.
func (p *Predictor) EmbedderName() string { return p.embedder.Name() }

// ModelName identifies the classifier artifact in use.
func (p *Predictor) ModelName() string { return p.model.Name }
