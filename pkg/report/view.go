package report

import (
	"strings"

	"github.com/synaptica-ai/afi-risk/pkg/explain"
)

// View selects how much model detail a report shows.
type View string

const (
	ModelView    View = "model"
	ClinicalView View = "clinical"
)

// ParseView accepts "model"/"clinical" (and the "Model View"/"Clinical View"
// spellings); anything else falls back to the model view.
func ParseView(s string) View {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, " view")
	if s == string(ClinicalView) {
		return ClinicalView
	}
	return ModelView
}

func (v View) Title() string {
	if v == ClinicalView {
		return "Key Clinical Contributors (Simplified View)"
	}
	return "Feature Contributions (Model View)"
}

// Row is the shape of one table row served to the presentation layer.
// RiskWeight is omitted in the clinical view.
type Row struct {
	Feature      string   `json:"feature"`
	InputValue   string   `json:"input_value"`
	RiskWeight   *float64 `json:"risk_weight,omitempty"`
	RiskImpact   string   `json:"risk_impact"`
	Contribution float64  `json:"contribution"`
}

// Shape keeps the table's order and drops the columns the view hides.
func Shape(table explain.Table, view View) []Row {
	rows := make([]Row, 0, len(table))
	for _, r := range table {
		row := Row{
			Feature:      r.Feature,
			InputValue:   r.Display,
			RiskImpact:   explain.FormatImpact(r.Contribution),
			Contribution: r.Contribution,
		}
		if view != ClinicalView {
			w := r.Weight
			row.RiskWeight = &w
		}
		rows = append(rows, row)
	}
	return rows
}

const (
	LegendIncreased = "Increased mortality risk"
	LegendReduced   = "Reduced mortality risk"

	SignFootnote   = "* Risk Impact reflects the model's contribution - negative values indicate increased mortality risk."
	WeightFootnote = "* Risk Weight reflects model sensitivity - higher absolute values indicate stronger influence."
	GeneratedNote  = "This is a computer-generated document; no signature is required."
	SignCaption    = "Negative Risk Impact indicates increased mortality risk. Positive indicates reduced risk."
)

// Footnotes lists the report footnotes for a view, in print order.
func Footnotes(view View) []string {
	notes := []string{SignFootnote}
	if view != ClinicalView {
		notes = append(notes, WeightFootnote)
	}
	return append(notes, GeneratedNote)
}
