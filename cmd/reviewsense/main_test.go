package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/reviewsense"
	"github.com/tsawler/reviewsense/config"
)

func runCmd(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func seedModel(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model", "baseline.gob")
	if _, stderr, code := runCmd(t, "", "seed", "-o", path); code != 0 {
		t.Fatalf("seed exited %d: %s", code, stderr)
	}
	return path
}

func TestUsage(t *testing.T) {
	if _, stderr, code := runCmd(t, ""); code != 2 || !strings.Contains(stderr, "usage:") {
		t.Errorf("no args: code %d, stderr %q", code, stderr)
	}
	if _, stderr, code := runCmd(t, "", "train"); code != 2 || !strings.Contains(stderr, `unknown command "train"`) {
		t.Errorf("unknown command: code %d, stderr %q", code, stderr)
	}
}

func TestSeedAndInspect(t *testing.T) {
	path := seedModel(t)

	stdout, stderr, code := runCmd(t, "", "inspect", path)
	if code != 0 {
		t.Fatalf("inspect exited %d: %s", code, stderr)
	}
	for _, want := range []string{"lexical-baseline", "lexical-v1", "input dim: 384", "[Negative Neutral Positive]"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("inspect output is missing %q:\n%s", want, stdout)
		}
	}
}

func TestPredictCommand(t *testing.T) {
	t.Setenv("REVIEWSENSE_MODEL_PATH", seedModel(t))

	stdout, stderr, code := runCmd(t, "", "predict", "Laggy", "performance,", "weak", "signal,", "and", "the", "speaker", "cracked.")
	if code != 0 {
		t.Fatalf("predict exited %d: %s", code, stderr)
	}

	var pred reviewsense.Prediction
	if err := json.Unmarshal([]byte(stdout), &pred); err != nil {
		t.Fatalf("decode %q: %v", stdout, err)
	}
	if pred.Label != reviewsense.Negative {
		t.Errorf("label = %q, want Negative", pred.Label)
	}
}

func TestPredictCommandStdin(t *testing.T) {
	t.Setenv("REVIEWSENSE_MODEL_PATH", seedModel(t))

	stdout, stderr, code := runCmd(t, "Battery lasts all weekend and the camera is flagship level.\n", "predict", "-analyze")
	if code != 0 {
		t.Fatalf("predict exited %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, `"label": "Positive"`) {
		t.Errorf("unexpected report:\n%s", stdout)
	}
	if !strings.Contains(stdout, `"cleaned": "battery lasts all weekend and the camera is flagship level"`) {
		t.Errorf("report does not carry the cleaned text:\n%s", stdout)
	}
}

func TestPredictCommandEmptyInput(t *testing.T) {
	t.Setenv("REVIEWSENSE_MODEL_PATH", seedModel(t))

	if _, stderr, code := runCmd(t, "", "predict", "123", "!!!"); code != 1 || !strings.Contains(stderr, "empty input") {
		t.Errorf("code %d, stderr %q; want exit 1 with an empty input error", code, stderr)
	}
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "dump.json")
	out := filepath.Join(dir, "converted.gob")

	dump := `{
  "name": "tiny",
  "embedder": "test",
  "input_dim": 2,
  "labels": ["Negative", "Neutral", "Positive"],
  "layers": [
    {"weights": [[1, 0], [0, 0], [0, 1]], "bias": [0, 0.5, 0], "activation": "identity"}
  ]
}`
	if err := os.WriteFile(in, []byte(dump), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, stderr, code := runCmd(t, "", "convert", "-in", in, "-o", out); code != 0 {
		t.Fatalf("convert exited %d: %s", code, stderr)
	}
	model, err := reviewsense.ModelFromDisk(out)
	if err != nil {
		t.Fatalf("ModelFromDisk: %v", err)
	}
	if model.Name != "tiny" || model.InputDim != 2 || len(model.Layers) != 1 {
		t.Errorf("converted model = %s", model)
	}
}

func TestLoadPredictorMissingArtifact(t *testing.T) {
	cfg := config.Default()
	cfg.Model.Path = filepath.Join(t.TempDir(), "missing.gob")

	_, err := loadPredictor(context.Background(), &cfg, newLogger(cfg.Log, &bytes.Buffer{}))
	if err == nil || !strings.Contains(err.Error(), "load classifier") {
		t.Errorf("err = %v, want a classifier load error", err)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.Log{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"k":"v"`) {
		t.Errorf("unexpected json log output: %s", out)
	}
}
