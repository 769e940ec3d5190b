package annotate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/synaptica-ai/afi-risk/pkg/clinical"
	"github.com/synaptica-ai/afi-risk/pkg/common/logger"
	"github.com/synaptica-ai/afi-risk/pkg/explain"
)

const (
	DefaultThreshold = 0.05

	StatusLow  = "low"
	StatusHigh = "high"

	genericHint = "May indicate clinical abnormality — suggest further diagnostic evaluation based on context."
)

// AnnotationParseError is returned when a display value that needs a range
// check is not a number. It only ever skips the affected row.
type AnnotationParseError struct {
	Feature string
	Value   string
	Err     error
}

func (e *AnnotationParseError) Error() string {
	return fmt.Sprintf("cannot parse %q value %q: %v", e.Feature, e.Value, e.Err)
}

func (e *AnnotationParseError) Unwrap() error { return e.Err }

type Annotation struct {
	Feature      string  `json:"feature"`
	Status       string  `json:"status,omitempty"`
	Value        string  `json:"value,omitempty"`
	Contribution float64 `json:"contribution"`
	Hint         string  `json:"hint"`
	Message      string  `json:"message"`
}

type Annotator struct {
	ranges           map[string]clinical.Range
	actionHints      map[string]string
	categoricalHints map[string]string
}

func New(cat clinical.Catalog) *Annotator {
	return &Annotator{
		ranges:           cat.ReferenceRanges,
		actionHints:      cat.ActionHints,
		categoricalHints: cat.CategoricalHints,
	}
}

// Annotate walks the table in its given order and emits a recommendation for
// every row whose contribution is below -threshold (risk-increasing) and that
// either lies outside its reference range or has a categorical hint.
func (a *Annotator) Annotate(table explain.Table, threshold float64) []Annotation {
	var out []Annotation
	for _, row := range table {
		if !(row.Contribution < -threshold) {
			continue
		}
		if r, ok := a.ranges[row.Feature]; ok {
			ann, err := a.rangeAnnotation(row, r)
			if err != nil {
				logger.Log.WithError(err).WithField("feature", row.Feature).Debug("skipping annotation")
				continue
			}
			if ann != nil {
				out = append(out, *ann)
			}
			continue
		}
		if hint, ok := a.categoricalHints[row.Feature]; ok {
			out = append(out, Annotation{
				Feature:      row.Feature,
				Value:        row.Display,
				Contribution: row.Contribution,
				Hint:         hint,
				Message:      fmt.Sprintf("%s contributed significantly → %s", row.Feature, hint),
			})
		}
	}
	return out
}

func (a *Annotator) rangeAnnotation(row explain.Row, r clinical.Range) (*Annotation, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(row.Display), 64)
	if err != nil {
		return nil, &AnnotationParseError{Feature: row.Feature, Value: row.Display, Err: err}
	}

	var status string
	switch {
	case value < r.Low:
		status = StatusLow
	case value > r.High:
		status = StatusHigh
	default:
		return nil, nil
	}

	hint, ok := a.actionHints[row.Feature]
	if !ok {
		hint = genericHint
	}
	return &Annotation{
		Feature:      row.Feature,
		Status:       status,
		Value:        row.Display,
		Contribution: row.Contribution,
		Hint:         hint,
		Message:      fmt.Sprintf("%s is %s (%s). %s", row.Feature, status, row.Display, hint),
	}, nil
}
