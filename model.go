package reviewsense

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Activation names the element-wise function applied after a layer.
type Activation string

// Supported activations.
const (
	Identity Activation = "identity"
	ReLU     Activation = "relu"
	Tanh     Activation = "tanh"
	Sigmoid  Activation = "sigmoid"
)

// A Layer is one dense layer: out = act(W·in + b).
//
// Weights is row-major with one row per output, so len(Weights) is
// len(Bias) times the layer's input width.
type Layer struct {
	Weights    []float64
	Bias       []float64
	Activation Activation
}

// Outputs is the layer's output width.
func (l Layer) Outputs() int { return len(l.Bias) }

// Inputs is the layer's input width.
func (l Layer) Inputs() int {
	if len(l.Bias) == 0 {
		return 0
	}
	return len(l.Weights) / len(l.Bias)
}

// A Model is the classifier artifact: a small feed-forward network mapping one
// embedding to one logit per label.
//
// The artifact records which encoder produced its training inputs and the
// order of its output labels, so a model can't silently be paired with the
// wrong embedder or a different index→label mapping.
type Model struct {
	Name     string
	Embedder string
	InputDim int
	Labels   []Label
	Layers   []Layer
}

// Logits runs the forward pass for one embedding.
func (m *Model) Logits(embedding []float32) ([]float64, error) {
	if len(embedding) != m.InputDim {
		return nil, fmt.Errorf("%w: embedding has %d dimensions, model expects %d",
			ErrShapeMismatch, len(embedding), m.InputDim)
	}
	if len(m.Layers) == 0 {
		return nil, fmt.Errorf("%w: model %q has no layers", ErrShapeMismatch, m.Name)
	}

	in := make([]float64, len(embedding))
	for i, v := range embedding {
		in[i] = float64(v)
	}
	x := mat.NewVecDense(len(in), in)

	for i, layer := range m.Layers {
		if layer.Inputs() != x.Len() || layer.Inputs()*layer.Outputs() != len(layer.Weights) {
			return nil, fmt.Errorf("%w: layer %d expects %d inputs, got %d",
				ErrShapeMismatch, i, layer.Inputs(), x.Len())
		}
		w := mat.NewDense(layer.Outputs(), layer.Inputs(), layer.Weights)
		b := mat.NewVecDense(layer.Outputs(), layer.Bias)

		y := mat.NewVecDense(layer.Outputs(), nil)
		y.MulVec(w, x)
		y.AddVec(y, b)
		activate(layer.Activation, y.RawVector().Data)
		x = y
	}

	logits := make([]float64, x.Len())
	copy(logits, x.RawVector().Data)
	return logits, nil
}

func activate(act Activation, v []float64) {
	switch act {
	case ReLU:
		for i, x := range v {
			if x < 0 {
				v[i] = 0
			}
		}
	case Tanh:
		for i, x := range v {
			v[i] = math.Tanh(x)
		}
	case Sigmoid:
		for i, x := range v {
			v[i] = 1 / (1 + math.Exp(-x))
		}
	}
}

// Validate checks that the layers chain from InputDim to one output per
// label, that labels are unique known classes and that every weight is finite.
func (m *Model) Validate() error {
	if m.InputDim <= 0 {
		return fmt.Errorf("model %q: input dimension must be positive, got %d", m.Name, m.InputDim)
	}
	if len(m.Labels) == 0 {
		return fmt.Errorf("model %q: no labels", m.Name)
	}
	seen := make(map[Label]bool, len(m.Labels))
	for _, label := range m.Labels {
		if label == "" {
			return fmt.Errorf("model %q: empty label", m.Name)
		}
		if !label.Valid() {
			return fmt.Errorf("model %q: unknown label %q", m.Name, label)
		}
		if seen[label] {
			return fmt.Errorf("model %q: duplicate label %q", m.Name, label)
		}
		seen[label] = true
	}
	if len(m.Layers) == 0 {
		return fmt.Errorf("model %q: no layers", m.Name)
	}

	width := m.InputDim
	for i, layer := range m.Layers {
		if layer.Outputs() == 0 {
			return fmt.Errorf("model %q: layer %d has no outputs", m.Name, i)
		}
		if len(layer.Weights) != width*layer.Outputs() {
			return fmt.Errorf("%w: model %q layer %d has %d weights, want %dx%d",
				ErrShapeMismatch, m.Name, i, len(layer.Weights), layer.Outputs(), width)
		}
		switch layer.Activation {
		case Identity, ReLU, Tanh, Sigmoid:
		default:
			return fmt.Errorf("model %q: layer %d has unknown activation %q", m.Name, i, layer.Activation)
		}
		if !finite(layer.Weights) || !finite(layer.Bias) {
			return fmt.Errorf("model %q: layer %d has non-finite parameters", m.Name, i)
		}
		width = layer.Outputs()
	}
	if width != len(m.Labels) {
		return fmt.Errorf("%w: model %q produces %d logits for %d labels",
			ErrShapeMismatch, m.Name, width, len(m.Labels))
	}
	return nil
}

// String summarizes the artifact, e.g. "baseline (lexical-v1) 384→2→3
// [Negative Neutral Positive]".
func (m *Model) String() string {
	dims := []string{fmt.Sprint(m.InputDim)}
	for _, layer := range m.Layers {
		dims = append(dims, fmt.Sprint(layer.Outputs()))
	}
	return fmt.Sprintf("%s (%s) %s %v", m.Name, m.Embedder, strings.Join(dims, "→"), m.Labels)
}

func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// ModelFromDisk loads and validates the gob artifact at path.
func ModelFromDisk(path string) (*Model, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}
	defer file.Close()
	return decodeModel(file, filepath.Base(path))
}

// ModelFromFS loads the artifact called name from filesys. If name is not a
// path inside filesys, the tree is searched for a file with that base name.
func ModelFromFS(filesys fs.FS, name string) (*Model, error) {
	location := name
	if _, err := fs.Stat(filesys, name); err != nil {
		location = ""
		err := fs.WalkDir(filesys, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			// Model located. Exit tree traversal
			if !d.IsDir() && d.Name() == path.Base(name) {
				location = p
				return fs.SkipAll
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("search for model %q: %w", name, err)
		}
		if location == "" {
			return nil, fmt.Errorf("model %q: %w", name, fs.ErrNotExist)
		}
	}

	file, err := filesys.Open(location)
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}
	defer file.Close()
	return decodeModel(file, path.Base(location))
}

func decodeModel(r io.Reader, source string) (*Model, error) {
	var m Model
	if err := gob.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", source, err)
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(source, filepath.Ext(source))
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Write saves the model as a gob artifact at path, creating parent
// directories as needed. The file is replaced atomically.
func (m *Model) Write(path string) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".model-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(m); err != nil {
		tmp.Close()
		return fmt.Errorf("encode model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// jsonModel is the weight dump layout exported from the training notebook.
// Weight matrices are nested, one inner array per output.
type jsonModel struct {
	Name     string      `json:"name"`
	Embedder string      `json:"embedder"`
	InputDim int         `json:"input_dim"`
	Labels   []Label     `json:"labels"`
	Layers   []jsonLayer `json:"layers"`
}

type jsonLayer struct {
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
	Activation Activation  `json:"activation"`
}

// ModelFromJSON imports a JSON weight dump. A missing activation means
// identity.
func ModelFromJSON(r io.Reader) (*Model, error) {
	var dump jsonModel
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&dump); err != nil {
		return nil, fmt.Errorf("decode weight dump: %w", err)
	}

	m := &Model{
		Name:     dump.Name,
		Embedder: dump.Embedder,
		InputDim: dump.InputDim,
		Labels:   dump.Labels,
	}
	for i, l := range dump.Layers {
		layer := Layer{Bias: l.Bias, Activation: l.Activation}
		if layer.Activation == "" {
			layer.Activation = Identity
		}
		if len(l.Weights) != len(l.Bias) {
			return nil, fmt.Errorf("%w: layer %d has %d weight rows and %d biases",
				ErrShapeMismatch, i, len(l.Weights), len(l.Bias))
		}
		for j, row := range l.Weights {
			if j > 0 && len(row) != len(l.Weights[0]) {
				return nil, fmt.Errorf("%w: layer %d row %d is ragged", ErrShapeMismatch, i, j)
			}
			layer.Weights = append(layer.Weights, row...)
		}
		m.Layers = append(m.Layers, layer)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
