package classifier

import (
	"encoding/json"
	"math"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Supported model types.
const (
	TypeLogisticRegression = "logistic_regression"
	TypeRandomForest       = "random_forest"
)

// ModelArtifact is the exported form of a trained classifier. Classes, when
// present, is the model's own label list indexed by output position.
type ModelArtifact struct {
	Type         string      `json:"type"`
	Classes      []string    `json:"classes,omitempty"`
	Coefficients [][]float64 `json:"coefficients,omitempty"`
	Intercepts   []float64   `json:"intercepts,omitempty"`
	Trees        []Tree      `json:"trees,omitempty"`
}

// Tree is one decision tree in flattened array form. Node 0 is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is a split when Feature >= 0 and a leaf otherwise. Leaf Value holds
// per-class counts or probabilities.
type Node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value,omitempty"`
}

// Encoders maps a categorical feature name to its fitted class list. The
// position of a category in the list is its code.
type Encoders map[string][]string

// Metadata describes the training-time feature layout and label vocabulary.
type Metadata struct {
	Features      []string `yaml:"features"`
	TargetClasses []string `yaml:"target_classes"`
	ModelType     string   `yaml:"model_type,omitempty"`
	TrainedAt     string   `yaml:"trained_at,omitempty"`
}

// predictor turns a feature vector into class probabilities.
type predictor interface {
	predictProba(x []float64) ([]float64, error)
	labels() []string
}

// loadModel reads and validates a model artifact.
func loadModel(path string) (predictor, error) {
	var a ModelArtifact
	if err := readJSON(path, &a); err != nil {
		return nil, eris.Wrap(err, "classifier: load model")
	}
	switch strings.ToLower(a.Type) {
	case TypeLogisticRegression:
		return newLogistic(a)
	case TypeRandomForest:
		return newForest(a)
	default:
		return nil, eris.Errorf("classifier: unsupported model type %q", a.Type)
	}
}

// LoadEncoders reads the fitted categorical encoders.
func LoadEncoders(path string) (Encoders, error) {
	var enc Encoders
	if err := readJSON(path, &enc); err != nil {
		return nil, eris.Wrap(err, "classifier: load encoders")
	}
	return enc, nil
}

// LoadMetadata reads the feature and label metadata.
func LoadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "classifier: read metadata")
	}
	var m Metadata
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrap(err, "classifier: parse metadata")
	}
	if len(m.Features) == 0 {
		return nil, eris.New("classifier: metadata lists no features")
	}
	if len(m.TargetClasses) == 0 {
		return nil, eris.New("classifier: metadata lists no target classes")
	}
	return &m, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return eris.Wrapf(err, "parse %s", path)
	}
	return nil
}

type logistic struct {
	coef      [][]float64
	intercept []float64
	classes   []string
}

func newLogistic(a ModelArtifact) (*logistic, error) {
	if len(a.Coefficients) == 0 {
		return nil, eris.New("classifier: logistic regression has no coefficients")
	}
	if len(a.Intercepts) != len(a.Coefficients) {
		return nil, eris.Errorf("classifier: %d intercepts for %d coefficient rows", len(a.Intercepts), len(a.Coefficients))
	}
	width := len(a.Coefficients[0])
	for i, row := range a.Coefficients {
		if len(row) != width {
			return nil, eris.Errorf("classifier: coefficient row %d has %d values, want %d", i, len(row), width)
		}
	}
	return &logistic{coef: a.Coefficients, intercept: a.Intercepts, classes: a.Classes}, nil
}

func (l *logistic) labels() []string { return l.classes }

// predictProba applies softmax over the class scores. A single coefficient
// row is the binary case and yields [1-p, p].
func (l *logistic) predictProba(x []float64) ([]float64, error) {
	if len(x) != len(l.coef[0]) {
		return nil, eris.Errorf("classifier: got %d features, model expects %d", len(x), len(l.coef[0]))
	}

	scores := make([]float64, len(l.coef))
	for k, row := range l.coef {
		s := l.intercept[k]
		for i, w := range row {
			s += w * x[i]
		}
		scores[k] = s
	}

	if len(scores) == 1 {
		p := 1 / (1 + math.Exp(-scores[0]))
		return []float64{1 - p, p}, nil
	}

	maxScore := scores[0]
	for _, s := range scores[1:] {
		maxScore = math.Max(maxScore, s)
	}
	var sum float64
	for k, s := range scores {
		scores[k] = math.Exp(s - maxScore)
		sum += scores[k]
	}
	for k := range scores {
		scores[k] /= sum
	}
	return scores, nil
}

type forest struct {
	trees    []Tree
	nClasses int
	classes  []string
}

func newForest(a ModelArtifact) (*forest, error) {
	if len(a.Trees) == 0 {
		return nil, eris.New("classifier: random forest has no trees")
	}
	n := 0
	for ti, t := range a.Trees {
		if len(t.Nodes) == 0 {
			return nil, eris.Errorf("classifier: tree %d is empty", ti)
		}
		for ni, node := range t.Nodes {
			if node.Feature < 0 {
				if n == 0 {
					n = len(node.Value)
				}
				if len(node.Value) == 0 || len(node.Value) != n {
					return nil, eris.Errorf("classifier: tree %d leaf %d has %d class values, want %d", ti, ni, len(node.Value), n)
				}
				continue
			}
			if node.Left <= ni || node.Right <= ni || node.Left >= len(t.Nodes) || node.Right >= len(t.Nodes) {
				return nil, eris.Errorf("classifier: tree %d node %d has invalid children", ti, ni)
			}
		}
	}
	return &forest{trees: a.Trees, nClasses: n, classes: a.Classes}, nil
}

func (f *forest) labels() []string { return f.classes }

// predictProba averages the normalized leaf distributions of every tree.
func (f *forest) predictProba(x []float64) ([]float64, error) {
	out := make([]float64, f.nClasses)
	for ti, t := range f.trees {
		i := 0
		for t.Nodes[i].Feature >= 0 {
			node := t.Nodes[i]
			if node.Feature >= len(x) {
				return nil, eris.Errorf("classifier: tree %d splits on feature %d of %d", ti, node.Feature, len(x))
			}
			if x[node.Feature] <= node.Threshold {
				i = node.Left
			} else {
				i = node.Right
			}
		}

		leaf := t.Nodes[i].Value
		var total float64
		for _, v := range leaf {
			total += v
		}
		if total <= 0 {
			continue
		}
		for k, v := range leaf {
			out[k] += v / total
		}
	}

	for k := range out {
		out[k] /= float64(len(f.trees))
	}
	return out, nil
}
