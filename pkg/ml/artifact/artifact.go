package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// File names used when the model is stored as a directory of separate artifacts.
const (
	WeightsFile      = "weights.json"
	InterceptFile    = "intercept.json"
	FeatureOrderFile = "feature_order.json"
	ScalerFile       = "scaler.json"
)

// Scaler holds the parameters of a fitted column-wise standardization.
type Scaler struct {
	Columns []string  `json:"columns"`
	Mean    []float64 `json:"mean"`
	Scale   []float64 `json:"scale"`
}

// Model is the trained linear model. It is loaded once and never mutated.
type Model struct {
	Weights      []float64 `json:"weights"`
	Intercept    float64   `json:"intercept"`
	FeatureOrder []string  `json:"feature_order"`
	Scaler       Scaler    `json:"scaler"`
}

// Load reads a model from a single JSON bundle or from a directory holding
// weights.json, intercept.json, feature_order.json and scaler.json.
func Load(path string) (*Model, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var model Model
	if info.IsDir() {
		if err := readJSON(filepath.Join(path, WeightsFile), &model.Weights); err != nil {
			return nil, err
		}
		if err := readJSON(filepath.Join(path, InterceptFile), &model.Intercept); err != nil {
			return nil, err
		}
		if err := readJSON(filepath.Join(path, FeatureOrderFile), &model.FeatureOrder); err != nil {
			return nil, err
		}
		if err := readJSON(filepath.Join(path, ScalerFile), &model.Scaler); err != nil {
			return nil, err
		}
	} else if err := readJSON(path, &model); err != nil {
		return nil, err
	}

	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact %s: %w", path, err)
	}
	return &model, nil
}

func readJSON(path string, v interface{}) error {
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(content, v); err != nil {
		return fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (m *Model) Validate() error {
	if len(m.FeatureOrder) == 0 {
		return errors.New("artifact missing feature names")
	}
	if len(m.Weights) != len(m.FeatureOrder) {
		return fmt.Errorf("%d weights for %d features", len(m.Weights), len(m.FeatureOrder))
	}
	if !finite(m.Intercept) {
		return errors.New("intercept is not finite")
	}

	index := make(map[string]struct{}, len(m.FeatureOrder))
	for i, name := range m.FeatureOrder {
		if name == "" {
			return fmt.Errorf("feature %d has no name", i)
		}
		if _, dup := index[name]; dup {
			return fmt.Errorf("duplicate feature %q", name)
		}
		index[name] = struct{}{}
		if !finite(m.Weights[i]) {
			return fmt.Errorf("weight for %q is not finite", name)
		}
	}

	s := m.Scaler
	if len(s.Mean) != len(s.Columns) || len(s.Scale) != len(s.Columns) {
		return fmt.Errorf("scaler has %d columns, %d means, %d scales", len(s.Columns), len(s.Mean), len(s.Scale))
	}
	for i, col := range s.Columns {
		if _, ok := index[col]; !ok {
			return fmt.Errorf("scaler column %q not in feature order", col)
		}
		if !finite(s.Mean[i]) || !finite(s.Scale[i]) {
			return fmt.Errorf("scaler parameters for %q are not finite", col)
		}
	}
	return nil
}

// Standardize applies the scaler formula for column i. A zero scale marks a
// constant column and leaves the centred value unscaled.
func (s Scaler) Standardize(i int, value float64) float64 {
	scale := s.Scale[i]
	if scale == 0 {
		scale = 1
	}
	return (value - s.Mean[i]) / scale
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
