package main

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/tsawler/reviewsense"
	"github.com/tsawler/reviewsense/config"
)

// loadPredictor loads the classifier artifact and prepares the embedder in
// parallel. Either failing aborts startup.
func loadPredictor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*reviewsense.Predictor, error) {
	var (
		embedder reviewsense.Embedder
		model    *reviewsense.Model
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := reviewsense.ModelFromDisk(cfg.Model.Path)
		if err != nil {
			return fmt.Errorf("load classifier: %w", err)
		}
		logger.Info("classifier loaded", "path", cfg.Model.Path, "model", m.String())
		model = m
		return nil
	})
	g.Go(func() error {
		e, err := newEmbedder(gctx, cfg.Embedder)
		if err != nil {
			return fmt.Errorf("load embedder: %w", err)
		}
		logger.Info("embedder ready", "embedder", e.Name(), "dim", e.Dim())
		embedder = e
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	opts := []reviewsense.Option{
		reviewsense.WithEmptyInput(reviewsense.EmptyInputPolicy(cfg.Model.EmptyInput)),
		reviewsense.WithLogger(logger),
	}
	if cfg.Model.SkipEncoderCheck {
		opts = append(opts, reviewsense.WithSkipEncoderCheck())
	}
	if cfg.Model.Serialize {
		opts = append(opts, reviewsense.WithSerializedInference())
	}
	return reviewsense.New(embedder, model, opts...)
}

func newEmbedder(ctx context.Context, cfg config.Embedder) (reviewsense.Embedder, error) {
	switch cfg.Kind {
	case config.EmbedderRemote:
		e := reviewsense.NewRemoteEmbedder(cfg.URL, cfg.Model, cfg.Dim,
			reviewsense.WithRemoteTimeout(cfg.Timeout),
			reviewsense.WithRemoteToken(cfg.Token))
		if err := e.Probe(ctx); err != nil {
			return nil, err
		}
		return e, nil
	default:
		lexicon, err := reviewsense.LoadLexicon(cfg.Lexicon)
		if err != nil {
			return nil, err
		}
		e, err := reviewsense.NewLexicalEmbedder(lexicon, cfg.Dim)
		if err != nil {
			return nil, err
		}
		return e, nil
	}
}
