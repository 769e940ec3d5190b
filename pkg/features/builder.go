package features

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/synaptica-ai/afi-risk/pkg/clinical"
	"github.com/synaptica-ai/afi-risk/pkg/ml/artifact"
)

// MissingFeatureError lists model features that the submission did not provide.
type MissingFeatureError struct {
	Missing []string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("missing model features: %s", strings.Join(e.Missing, ", "))
}

// SchemaMismatchError lists scaler columns absent from the submission.
type SchemaMismatchError struct {
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("scaler columns not present in record: %s", strings.Join(e.Missing, ", "))
}

// ValueTypeError reports a numeric field that received a non-numeric value.
type ValueTypeError struct {
	Field string
	Value string
}

func (e *ValueTypeError) Error() string {
	return fmt.Sprintf("field %q expects a finite number, got %q", e.Field, e.Value)
}

func IsMissingFeature(err error) bool {
	var target *MissingFeatureError
	return errors.As(err, &target)
}

func IsSchemaMismatch(err error) bool {
	var target *SchemaMismatchError
	return errors.As(err, &target)
}

// Vector is the model-ready input aligned to the model's feature order.
// Display keeps the human readable pre-transform value of each feature.
type Vector struct {
	Names   []string  `json:"names"`
	Values  []float64 `json:"values"`
	Display []string  `json:"display"`
}

func (v Vector) Len() int { return len(v.Values) }

type Builder struct {
	fields  map[string]FieldSpec
	encoder *clinical.Encoder
	model   *artifact.Model
}

func NewBuilder(schema Schema, encoder *clinical.Encoder, model *artifact.Model) *Builder {
	fields := make(map[string]FieldSpec, len(schema))
	for _, f := range schema {
		fields[f.Name] = f
	}
	return &Builder{fields: fields, encoder: encoder, model: model}
}

// Build encodes, standardizes and reorders a record. It fails instead of
// substituting zeros for anything it cannot resolve.
func (b *Builder) Build(rec Record) (Vector, error) {
	values := make(map[string]float64, len(rec))
	display := make(map[string]string, len(rec))

	for _, name := range rec.names() {
		value := rec[name]
		encoded, shown, err := b.encode(name, value)
		if err != nil {
			return Vector{}, err
		}
		values[name] = encoded
		display[name] = shown
	}

	scaler := b.model.Scaler
	var unscaled []string
	for _, col := range scaler.Columns {
		if _, ok := values[col]; !ok {
			unscaled = append(unscaled, col)
		}
	}
	if len(unscaled) > 0 {
		return Vector{}, &SchemaMismatchError{Missing: unscaled}
	}
	for i, col := range scaler.Columns {
		values[col] = scaler.Standardize(i, values[col])
	}

	order := b.model.FeatureOrder
	vec := Vector{
		Names:   make([]string, len(order)),
		Values:  make([]float64, len(order)),
		Display: make([]string, len(order)),
	}
	var missing []string
	for i, name := range order {
		v, ok := values[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		vec.Names[i] = name
		vec.Values[i] = v
		vec.Display[i] = display[name]
	}
	if len(missing) > 0 {
		return Vector{}, &MissingFeatureError{Missing: missing}
	}
	return vec, nil
}

func (b *Builder) encode(name string, value Value) (float64, string, error) {
	spec, known := b.fields[name]
	if !known {
		spec = FieldSpec{Name: name, Kind: KindNumeric}
		if value.IsLabel() {
			if _, err := parseNumber(value.String()); err != nil {
				return 0, "", &clinical.UnknownCategoryError{Label: value.String()}
			}
		}
	}

	switch spec.Kind {
	case KindBinary:
		label, ok := value.Text()
		switch {
		case ok && label == spec.Positive:
			return 1, label, nil
		case ok && label == spec.Negative:
			return 0, label, nil
		}
		return 0, "", &clinical.UnknownCategoryError{Table: spec.Name, Label: value.String()}
	case KindCoded:
		label, ok := value.Text()
		if !ok {
			return 0, "", &clinical.UnknownCategoryError{Table: spec.Table, Label: value.String()}
		}
		code, err := b.encoder.Encode(spec.Table, label)
		if err != nil {
			return 0, "", err
		}
		return code, label, nil
	default:
		f, ok := value.Float()
		if !ok {
			parsed, err := parseNumber(value.String())
			if err != nil {
				return 0, "", &ValueTypeError{Field: name, Value: value.String()}
			}
			f = parsed
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, "", &ValueTypeError{Field: name, Value: value.String()}
		}
		return f, formatNumber(f), nil
	}
}

func parseNumber(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not finite", s)
	}
	return f, nil
}
