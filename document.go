package reviewsense

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"
)

// An AnalyzeOpt represents a setting that changes how Analyze builds a
// Report.
//
// For example, it might disable the per-sentence breakdown:
//
//	report, err := p.Analyze(ctx, "...", reviewsense.WithSegmentation(false))
type AnalyzeOpt func(opts *AnalyzeOpts)

// AnalyzeOpts controls the Analyze process:
type AnalyzeOpts struct {
	Segment bool          // If true, classify each sentence as well
	Timeout time.Duration // Processing timeout, 0 for none
}

var defaultAnalyzeOpts = AnalyzeOpts{
	Segment: true,
}

// WithSegmentation can enable (the default) or disable the sentence
// breakdown.
func WithSegmentation(include bool) AnalyzeOpt {
	return func(opts *AnalyzeOpts) {
		opts.Segment = include
	}
}

// WithTimeout bounds the whole analysis.
func WithTimeout(timeout time.Duration) AnalyzeOpt {
	return func(opts *AnalyzeOpts) {
		opts.Timeout = timeout
	}
}

// The punkt tokenizer decodes its English training data on construction.
var englishSegmenter = sync.OnceValues(func() (*sentences.DefaultSentenceTokenizer, error) {
	return english.NewSentenceTokenizer(nil)
})

// Analyze classifies a review like Predict and reports the cleaned text, the
// full probability distribution and the elapsed time. Reviews with more than
// one sentence also get a prediction per sentence; sentences with no letters
// are skipped.
func (p *Predictor) Analyze(ctx context.Context, text string, opts ...AnalyzeOpt) (*Report, error) {
	start := time.Now()

	base := defaultAnalyzeOpts
	for _, applyOpt := range opts {
		applyOpt(&base)
	}
	if base.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, base.Timeout)
		defer cancel()
	}

	report := &Report{Cleaned: Normalize(text)}
	if report.Cleaned == "" {
		if p.emptyInput == EmptyError {
			return nil, ErrEmptyInput
		}
		report.Prediction = Prediction{Label: Neutral, Confidence: 0}
		report.finish(start)
		return report, nil
	}

	pred, probs, err := p.infer(ctx, report.Cleaned)
	if err != nil {
		return nil, err
	}
	report.Prediction = pred
	report.Probabilities = make(map[Label]float64, len(probs))
	for i, prob := range probs {
		report.Probabilities[p.model.Labels[i]] = prob
	}

	if base.Segment {
		report.Sentences, err = p.analyzeSentences(ctx, text)
		if err != nil {
			return nil, err
		}
	}

	report.finish(start)
	p.logger.DebugContext(ctx, "analysis completed",
		"label", report.Label,
		"confidence", report.Confidence,
		"sentences", len(report.Sentences),
		"elapsed_ms", report.ElapsedMs)
	return report, nil
}

func (p *Predictor) analyzeSentences(ctx context.Context, text string) ([]SentencePrediction, error) {
	segmenter, err := englishSegmenter()
	if err != nil {
		return nil, fmt.Errorf("load sentence segmenter: %w", err)
	}

	segments := segmenter.Tokenize(text)
	if len(segments) < 2 {
		return nil, nil
	}

	var out []SentencePrediction
	for _, s := range segments {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		cleaned := Normalize(s.Text)
		if cleaned == "" {
			continue
		}
		pred, _, err := p.infer(ctx, cleaned)
		if err != nil {
			return nil, err
		}
		out = append(out, SentencePrediction{
			Text:       strings.TrimSpace(s.Text),
			Start:      s.Start,
			End:        s.End,
			Prediction: pred,
		})
	}
	return out, nil
}

func (r *Report) finish(start time.Time) {
	r.Elapsed = time.Since(start)
	r.ElapsedMs = float64(r.Elapsed.Microseconds()) / 1000
}
