package reviewsense

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultRemoteModel is the sentence-transformer the shipped classifier was
// trained on.
const DefaultRemoteModel = "sentence-transformers/all-MiniLM-L6-v2"

// RemoteEmbedder encodes text with a pretrained sentence-transformer served
// by a text-embeddings-inference compatible endpoint:
//
//	POST {endpoint}/embed  {"inputs": ["..."], "normalize": true}  → [[f32...]]
//	GET  {endpoint}/info                                            → {"model_id": "..."}
//
// It is safe for concurrent use.
type RemoteEmbedder struct {
	endpoint   string
	model      string
	dim        int
	token      string
	timeout    time.Duration
	httpClient *http.Client
}

// RemoteOption configures a RemoteEmbedder.
type RemoteOption func(*RemoteEmbedder)

// WithRemoteTimeout sets the per-request timeout of the default HTTP client.
func WithRemoteTimeout(timeout time.Duration) RemoteOption {
	return func(e *RemoteEmbedder) {
		e.timeout = timeout
	}
}

// WithRemoteToken sends token as a bearer credential.
func WithRemoteToken(token string) RemoteOption {
	return func(e *RemoteEmbedder) {
		e.token = token
	}
}

// WithHTTPClient replaces the HTTP client. The timeout option is ignored when
// a client is supplied.
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(e *RemoteEmbedder) {
		e.httpClient = client
	}
}

// NewRemoteEmbedder creates a client for the model served at endpoint.
// Nothing is contacted until Probe or Embed is called.
func NewRemoteEmbedder(endpoint, model string, dim int, opts ...RemoteOption) *RemoteEmbedder {
	e := &RemoteEmbedder{
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		dim:      dim,
		timeout:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.httpClient == nil {
		e.httpClient = &http.Client{Timeout: e.timeout}
	}
	return e
}

// Name implements Embedder.
func (e *RemoteEmbedder) Name() string { return e.model }

// Dim implements Embedder.
func (e *RemoteEmbedder) Dim() int { return e.dim }

// Embed implements Embedder.
func (e *RemoteEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(map[string]any{
		"inputs":    []string{text},
		"normalize": true,
		"truncate":  true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var vectors [][]float32
	if err := e.do(req, &vectors); err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedding server returned %d vectors for 1 input", len(vectors))
	}
	if len(vectors[0]) != e.dim {
		return nil, fmt.Errorf("%w: embedding has %d dimensions, want %d", ErrShapeMismatch, len(vectors[0]), e.dim)
	}
	return vectors[0], nil
}

// Probe checks that the endpoint serves the configured model with the
// configured width. It is meant to run once at startup; any error is fatal.
func (e *RemoteEmbedder) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.endpoint+"/info", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	var info struct {
		ModelID string `json:"model_id"`
	}
	if err := e.do(req, &info); err != nil {
		return fmt.Errorf("embedding server info: %w", err)
	}
	if info.ModelID != e.model {
		return fmt.Errorf("%w: embedding server runs %q, want %q", ErrEncoderMismatch, info.ModelID, e.model)
	}

	if _, err := e.Embed(ctx, "probe"); err != nil {
		return fmt.Errorf("embedding server probe: %w", err)
	}
	return nil
}

func (e *RemoteEmbedder) do(req *http.Request, out any) error {
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("embedding server error: status=%d, body=%s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var _ Embedder = (*RemoteEmbedder)(nil)
