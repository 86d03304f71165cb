package reviewsense

import (
	"context"
	"errors"
	"math"
	"testing"
)

func newTestEmbedder(t *testing.T) *LexicalEmbedder {
	t.Helper()
	e, err := NewLexicalEmbedder(nil, DefaultDim)
	if err != nil {
		t.Fatalf("NewLexicalEmbedder: %v", err)
	}
	return e
}

func TestLexicalEmbedder(t *testing.T) {
	e := newTestEmbedder(t)
	if e.Name() != LexicalEmbedderName || e.Dim() != DefaultDim {
		t.Fatalf("embedder = %s/%d", e.Name(), e.Dim())
	}

	ctx := context.Background()
	text := Normalize("The camera is amazing but the battery drains fast.")

	a, err := e.Embed(ctx, text)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(a) != DefaultDim {
		t.Fatalf("len = %d, want %d", len(a), DefaultDim)
	}

	b, _ := e.Embed(ctx, text)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Embed is not deterministic at %d: %v != %v", i, a[i], b[i])
		}
	}

	var norm float64
	for _, v := range a[LexicalFeatures:] {
		norm += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-5 {
		t.Errorf("hashed block norm = %v, want 1", math.Sqrt(norm))
	}
}

func TestLexicalEmbedderEmptyText(t *testing.T) {
	vec, err := newTestEmbedder(t).Embed(context.Background(), "")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	for i, v := range vec {
		if v != 0 {
			t.Fatalf("slot %d = %v, want the zero vector", i, v)
		}
	}
}

func TestLexicalEmbedderSeparatesTexts(t *testing.T) {
	e := newTestEmbedder(t)
	ctx := context.Background()

	a, _ := e.Embed(ctx, "great screen")
	b, _ := e.Embed(ctx, "terrible screen")

	if a[featPolarity] <= 0 || b[featPolarity] >= 0 {
		t.Errorf("polarity slots = %v, %v; want positive then negative", a[featPolarity], b[featPolarity])
	}
}

func TestNewLexicalEmbedderTooSmall(t *testing.T) {
	if _, err := NewLexicalEmbedder(nil, LexicalFeatures); err == nil {
		t.Error("a dimension with no room for the hashed block should be rejected")
	}
}

func TestLexicalEmbedderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestEmbedder(t).Embed(ctx, "good"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
