package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tsawler/reviewsense"
	"github.com/tsawler/reviewsense/config"
	"github.com/tsawler/reviewsense/server"
)

func serveCmd(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config file")
	host := fs.String("host", "", "listen host (overrides config)")
	port := fs.Int("port", 0, "listen port (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg.Log, stderr)
	predictor, err := loadPredictor(ctx, cfg, logger)
	if err != nil {
		return err
	}

	handler := server.New(predictor, server.Options{
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		UI:           cfg.UI.Enabled,
		Logger:       logger,
	}).Handler()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", srv.Addr, "ui", cfg.UI.Enabled)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func predictCmd(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config file")
	analyze := fs.Bool("analyze", false, "print the full report with a sentence breakdown")
	if err := fs.Parse(args); err != nil {
		return err
	}

	text := strings.Join(fs.Args(), " ")
	if text == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	predictor, err := loadPredictor(ctx, cfg, newLogger(cfg.Log, stderr))
	if err != nil {
		return err
	}

	var out any
	if *analyze {
		out, err = predictor.Analyze(ctx, text)
	} else {
		out, err = predictor.Predict(ctx, text)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func seedCmd(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("o", "model/hybrid_sentiment.gob", "output artifact path")
	dim := fs.Int("dim", reviewsense.DefaultDim, "embedding dimension")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dim <= reviewsense.LexicalFeatures {
		return fmt.Errorf("-dim must be greater than %d", reviewsense.LexicalFeatures)
	}

	model := reviewsense.BaselineModel(*dim)
	if err := model.Write(*out); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s to %s\n", model, *out)
	return nil
}

func convertCmd(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "", "JSON weight dump")
	out := fs.String("o", "", "output artifact path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		return errors.New("-in and -o are required")
	}

	file, err := os.Open(*in)
	if err != nil {
		return err
	}
	defer file.Close()

	model, err := reviewsense.ModelFromJSON(file)
	if err != nil {
		return err
	}
	if err := model.Write(*out); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s to %s\n", model, *out)
	return nil
}

func inspectCmd(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("expected one artifact path")
	}

	model, err := reviewsense.ModelFromDisk(fs.Arg(0))
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "name:      %s\n", model.Name)
	fmt.Fprintf(stdout, "embedder:  %s\n", model.Embedder)
	fmt.Fprintf(stdout, "input dim: %d\n", model.InputDim)
	fmt.Fprintf(stdout, "labels:    %v\n", model.Labels)
	for i, layer := range model.Layers {
		fmt.Fprintf(stdout, "layer %d:   %d→%d %s\n", i, layer.Inputs(), layer.Outputs(), layer.Activation)
	}
	return nil
}
