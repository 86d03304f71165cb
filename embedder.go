package reviewsense

import (
	"context"
	"fmt"
)

// DefaultDim is the embedding width of all-MiniLM-L6-v2 and of the lexical
// embedder's default configuration.
const DefaultDim = 384

// LexicalEmbedderName identifies vectors produced by LexicalEmbedder.
// Classifier artifacts record it so they are never paired with another
// encoder.
const LexicalEmbedderName = "lexical-v1"

// Embedder maps normalized review text to a fixed-length dense vector.
// Implementations are constructed once and must be safe for concurrent
// read-only use, unless the Predictor is built WithSerializedInference.
type Embedder interface {
	// Name identifies the model behind the embedder.
	Name() string

	// Dim is the length of every vector Embed returns.
	Dim() int

	// Embed encodes one normalized text.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// LexicalEmbedder is an in-process encoder built from the review lexicon and
// a hashed bag of words. It needs no external model, so it is the default for
// local runs and tests.
type LexicalEmbedder struct {
	lexicon *Lexicon
	dim     int
}

// NewLexicalEmbedder creates a lexical embedder producing dim-length vectors.
// A nil lexicon selects the built-in one.
func NewLexicalEmbedder(lexicon *Lexicon, dim int) (*LexicalEmbedder, error) {
	if dim <= LexicalFeatures {
		return nil, fmt.Errorf("lexical embedder needs more than %d dimensions, got %d", LexicalFeatures, dim)
	}
	if lexicon == nil {
		lexicon = NewLexicon()
	}
	return &LexicalEmbedder{lexicon: lexicon, dim: dim}, nil
}

// Name implements Embedder.
func (e *LexicalEmbedder) Name() string { return LexicalEmbedderName }

// Dim implements Embedder.
func (e *LexicalEmbedder) Dim() int { return e.dim }

// Embed implements Embedder. Text is expected to be the output of Normalize.
// Empty text encodes to the zero vector.
func (e *LexicalEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	words := Words(text)
	buf := make([]float64, e.dim)
	lexicalFeatures(words, e.lexicon, buf[:LexicalFeatures])
	hashedBag(contentWords(words, e.lexicon), buf[LexicalFeatures:])

	vec := make([]float32, e.dim)
	for i, v := range buf {
		vec[i] = float32(v)
	}
	return vec, nil
}

var _ Embedder = (*LexicalEmbedder)(nil)
