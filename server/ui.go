package server

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tsawler/reviewsense"
)

//go:embed templates static
var assets embed.FS

var pageTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"labelColor": labelColor,
}).ParseFS(assets, "templates/index.html"))

// Examples are the canned reviews the page offers as one-click input.
var Examples = []string{
	"Battery lasts all weekend and the camera is flagship level.",
	"It is okay, but the screen scratches easily and nothing stands out.",
	"Laggy performance, weak signal, and the speaker cracked on day two.",
}

const (
	warnBlank   = "Please enter a review before submitting."
	errNoLetter = "The review has no words left to analyze after cleaning. Try adding some text."
	errFailed   = "Something went wrong while analyzing this review. Please try again."
)

// uiState is everything the page renders. It lives for one request; the
// text round-trips through the form.
type uiState struct {
	Text     string
	Warning  string
	Error    string
	Result   *uiResult
	Examples []uiExample
	Encoder  string
	Model    string
}

type uiResult struct {
	Label      reviewsense.Label
	Confidence float64
	ElapsedMs  float64
}

type uiExample struct {
	Index int
	Short string
}

type intentKind int

const (
	intentLoad      intentKind = iota // page opened
	intentExample                     // example button pressed
	intentSubmit                      // analyze button pressed
	intentPredicted                   // prediction finished
	intentFailed                      // prediction failed
)

type intent struct {
	kind    intentKind
	text    string
	example int
	pred    reviewsense.Prediction
	elapsed time.Duration
	err     error
}

// command is a side effect requested by the reducer. The zero value means
// nothing to do.
type command struct {
	predict bool
	text    string
}

// reduce is the page's state machine. It never performs inference itself;
// a submit yields a predict command whose outcome comes back as an intent.
func reduce(s uiState, in intent) (uiState, command) {
	switch in.kind {
	case intentLoad:
		return uiState{}, command{}

	case intentExample:
		if in.example < 0 || in.example >= len(Examples) {
			return s, command{}
		}
		return uiState{Text: Examples[in.example]}, command{}

	case intentSubmit:
		s = uiState{Text: in.text}
		if strings.TrimSpace(in.text) == "" {
			s.Warning = warnBlank
			return s, command{}
		}
		return s, command{predict: true, text: in.text}

	case intentPredicted:
		s.Warning, s.Error = "", ""
		s.Result = &uiResult{
			Label:      in.pred.Label,
			Confidence: in.pred.Confidence,
			ElapsedMs:  float64(in.elapsed.Microseconds()) / 1000,
		}
		return s, command{}

	case intentFailed:
		s.Result = nil
		if errors.Is(in.err, reviewsense.ErrEmptyInput) {
			s.Error = errNoLetter
		} else {
			s.Error = errFailed
		}
		return s, command{}
	}
	return s, command{}
}

// intentFromRequest maps a page request onto an intent.
func intentFromRequest(r *http.Request) intent {
	if r.Method != http.MethodPost {
		return intent{kind: intentLoad}
	}
	if v := r.PostFormValue("example"); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			i = -1
		}
		return intent{kind: intentExample, example: i}
	}
	return intent{kind: intentSubmit, text: r.PostFormValue("text")}
}

func (s *Server) handleUI(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)

	state, cmd := reduce(uiState{}, intentFromRequest(r))
	if cmd.predict {
		start := time.Now()
		pred, err := s.predictor.Predict(r.Context(), cmd.text)
		elapsed := time.Since(start)
		if err != nil {
			if !errors.Is(err, reviewsense.ErrEmptyInput) {
				s.logger.ErrorContext(r.Context(), "inference failed",
					"request_id", RequestID(r.Context()),
					"error", err)
			}
			state, _ = reduce(state, intent{kind: intentFailed, err: err})
		} else {
			s.logger.InfoContext(r.Context(), "prediction completed",
				"request_id", RequestID(r.Context()),
				"elapsed_ms", float64(elapsed.Microseconds())/1000)
			state, _ = reduce(state, intent{kind: intentPredicted, pred: pred, elapsed: elapsed})
		}
	}

	state.Encoder = s.predictor.EmbedderName()
	state.Model = s.predictor.ModelName()
	for i, text := range Examples {
		state.Examples = append(state.Examples, uiExample{Index: i, Short: shorten(text, 28)})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, state); err != nil {
		s.logger.ErrorContext(r.Context(), "render page", "error", err)
	}
}

func labelColor(label reviewsense.Label) string {
	switch label {
	case reviewsense.Positive:
		return "#16a34a"
	case reviewsense.Neutral:
		return "#2563eb"
	case reviewsense.Negative:
		return "#dc2626"
	}
	return "#6b21a8"
}

func shorten(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n]) + "..."
}
