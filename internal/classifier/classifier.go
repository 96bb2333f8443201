// Package classifier wraps an optional pre-trained department classifier.
// The model, its categorical encoders and its feature metadata are loaded
// once; when any of them is missing the adapter reports itself unavailable
// and routing falls back to business rules.
package classifier

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/claim-router/internal/model"
)

// Prediction is the classifier's suggestion for one claim. Department is
// empty when there is no suggestion.
type Prediction struct {
	Department string   `json:"department"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons"`
}

// Classifier suggests a department for a claim. Predict never fails; an
// unusable model yields an empty department.
type Classifier interface {
	Predict(c model.ClaimRecord) Prediction
	Available() bool
}

// Paths locates the three model artifacts.
type Paths struct {
	Model    string
	Encoders string
	Metadata string
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithCacheTTL caches class probabilities per feature vector. A zero TTL
// disables the cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(a *Adapter) {
		if ttl > 0 {
			a.cache = gocache.New(ttl, 2*ttl)
		}
	}
}

// Adapter is the artifact-backed Classifier. All state is read-only after
// construction except the prediction cache, which is safe for concurrent
// use.
type Adapter struct {
	model    predictor
	encoders Encoders
	meta     *Metadata
	cache    *gocache.Cache
}

var _ Classifier = (*Adapter)(nil)

// Unavailable returns an adapter with no model.
func Unavailable() *Adapter {
	return &Adapter{}
}

// Open loads every artifact and fails on the first problem.
func Open(p Paths, opts ...Option) (*Adapter, error) {
	meta, err := LoadMetadata(p.Metadata)
	if err != nil {
		return nil, err
	}
	enc, err := LoadEncoders(p.Encoders)
	if err != nil {
		return nil, err
	}
	m, err := loadModel(p.Model)
	if err != nil {
		return nil, err
	}
	if labels := m.labels(); len(labels) > 0 && len(labels) != len(meta.TargetClasses) {
		zap.L().Warn("classifier: model labels differ from metadata target classes",
			zap.Int("model_labels", len(labels)),
			zap.Int("target_classes", len(meta.TargetClasses)),
		)
	}

	a := &Adapter{model: m, encoders: enc, meta: meta}
	for _, o := range opts {
		o(a)
	}
	return a, nil
}

// Load is Open that degrades to an unavailable adapter instead of failing.
func Load(p Paths, opts ...Option) *Adapter {
	a, err := Open(p, opts...)
	if err != nil {
		zap.L().Warn("classifier: model not loaded, using rule-based routing only",
			zap.String("model_path", p.Model),
			zap.Error(err),
		)
		return Unavailable()
	}
	zap.L().Info("classifier: model loaded",
		zap.String("model_path", p.Model),
		zap.Int("features", len(a.meta.Features)),
		zap.Strings("target_classes", a.meta.TargetClasses),
	)
	return a
}

// Available reports whether a model was loaded.
func (a *Adapter) Available() bool {
	return a != nil && a.model != nil
}

// Metadata returns the loaded feature metadata, or nil when unavailable.
func (a *Adapter) Metadata() *Metadata {
	if !a.Available() {
		return nil
	}
	return a.meta
}

// Predict suggests a department for c. Failures, including panics inside
// the model, are logged and reported as an unavailable prediction.
func (a *Adapter) Predict(c model.ClaimRecord) (p Prediction) {
	if !a.Available() {
		return unavailable()
	}

	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("classifier: prediction panicked",
				zap.String("claim_id", c.ClaimID),
				zap.Any("panic", r),
			)
			p = unavailable()
		}
	}()

	dept, confidence, err := a.predict(c)
	if err != nil {
		zap.L().Warn("classifier: prediction failed",
			zap.String("claim_id", c.ClaimID),
			zap.Error(err),
		)
		return unavailable()
	}

	return Prediction{
		Department: dept,
		Confidence: confidence,
		Reasons:    explain(c, dept, confidence),
	}
}

func (a *Adapter) predict(c model.ClaimRecord) (string, float64, error) {
	x := Vector(c, a.meta.Features, a.encoders)

	probs, err := a.probabilities(x)
	if err != nil {
		return "", 0, err
	}
	if len(probs) == 0 {
		return "", 0, eris.New("classifier: model returned no probabilities")
	}

	best := 0
	for k, p := range probs {
		if p > probs[best] {
			best = k
		}
	}

	dept, err := a.resolve(best)
	if err != nil {
		return "", 0, err
	}
	return dept, probs[best], nil
}

func (a *Adapter) probabilities(x []float64) ([]float64, error) {
	if a.cache == nil {
		return a.model.predictProba(x)
	}

	key := cacheKey(x)
	if v, ok := a.cache.Get(key); ok {
		return v.([]float64), nil
	}
	probs, err := a.model.predictProba(x)
	if err != nil {
		return nil, err
	}
	a.cache.SetDefault(key, probs)
	return probs, nil
}

// resolve maps an output index to a label, preferring the model's own
// label list over the metadata vocabulary.
func (a *Adapter) resolve(idx int) (string, error) {
	if labels := a.model.labels(); idx < len(labels) {
		return labels[idx], nil
	}
	if idx < len(a.meta.TargetClasses) {
		return a.meta.TargetClasses[idx], nil
	}
	return "", eris.Errorf("classifier: class index %d outside %d target classes", idx, len(a.meta.TargetClasses))
}

func cacheKey(x []float64) string {
	parts := make([]string, len(x))
	for i, v := range x {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, "|")
}

func unavailable() Prediction {
	return Prediction{Reasons: []string{ReasonUnavailable}}
}

// String implements fmt.Stringer for log fields.
func (p Prediction) String() string {
	if p.Department == "" {
		return "none"
	}
	return fmt.Sprintf("%s (%.2f)", p.Department, p.Confidence)
}
