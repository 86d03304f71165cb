// Package server exposes a reviewsense Predictor over HTTP: a JSON API and an
// interactive page.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tsawler/reviewsense"
)

// RootMessage is the liveness message served at GET /.
const RootMessage = "Hybrid ONNX Sentiment API is running!"

// Predictor is the part of *reviewsense.Predictor the server needs.
type Predictor interface {
	Predict(ctx context.Context, text string) (reviewsense.Prediction, error)
	Analyze(ctx context.Context, text string, opts ...reviewsense.AnalyzeOpt) (*reviewsense.Report, error)
	EmbedderName() string
	ModelName() string
}

// Options configures a Server.
type Options struct {
	MaxBodyBytes int64        // request body limit, 1 MiB when zero
	UI           bool         // serve the interactive page under /ui
	Logger       *slog.Logger // access and error log, discarded when nil
}

// Server routes HTTP requests to a Predictor.
type Server struct {
	predictor Predictor
	opts      Options
	logger    *slog.Logger
	mux       *http.ServeMux
}

// New creates a Server. The predictor must already be fully loaded.
func New(predictor Predictor, opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		predictor: predictor,
		opts:      opts,
		logger:    logger,
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("POST /predict", s.handlePredict)
	s.mux.HandleFunc("POST /analyze", s.handleAnalyze)

	if s.opts.UI {
		s.mux.HandleFunc("GET /ui", s.handleUI)
		s.mux.HandleFunc("POST /ui", s.handleUI)
		s.mux.Handle("GET /ui/static/", http.StripPrefix("/ui/", http.FileServerFS(assets)))
	}
}

// Handler returns the server's handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.withRequestID(s.withAccessLog(s.withRecovery(s.mux)))
}

type predictRequest struct {
	Text *string `json:"text"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": RootMessage})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	text, ok := s.decodeText(w, r)
	if !ok {
		return
	}

	pred, err := s.predictor.Predict(r.Context(), text)
	if err != nil {
		s.writeInferenceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	text, ok := s.decodeText(w, r)
	if !ok {
		return
	}

	report, err := s.predictor.Analyze(r.Context(), text)
	if err != nil {
		s.writeInferenceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// decodeText reads a {"text": "..."} body. On failure it writes the error
// response and returns false.
func (s *Server) decodeText(w http.ResponseWriter, r *http.Request) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)

	var req predictRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Detail: "request body too large"})
			return "", false
		}
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: "invalid request body: " + err.Error()})
		return "", false
	}
	if dec.More() {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: "invalid request body: trailing data after JSON object"})
		return "", false
	}
	if req.Text == nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: "field required: text"})
		return "", false
	}
	return *req.Text, true
}

func (s *Server) writeInferenceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, reviewsense.ErrEmptyInput) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: "empty input"})
		return
	}
	s.logger.ErrorContext(r.Context(), "inference failed",
		"request_id", RequestID(r.Context()),
		"error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "inference failed"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
