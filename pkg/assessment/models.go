package assessment

import (
	"time"

	"github.com/synaptica-ai/afi-risk/pkg/annotate"
	"github.com/synaptica-ai/afi-risk/pkg/features"
	"github.com/synaptica-ai/afi-risk/pkg/report"
	"github.com/synaptica-ai/afi-risk/pkg/risk"
)

// Request is a submitted form: the display mode plus raw field values.
type Request struct {
	View   string          `json:"view,omitempty"`
	Inputs features.Record `json:"inputs"`
}

// Result is what the session store keeps for a submission. Raw inputs are
// not kept; the table's display column is all a report needs.
type Result struct {
	ID           string      `json:"id"`
	View         report.View `json:"view"`
	ModelVersion string      `json:"model_version"`
	CreatedAt    time.Time   `json:"created_at"`
	Evaluation
}

// Response is the JSON body for a result rendered in one view.
type Response struct {
	ID           string                `json:"id"`
	Score        float64               `json:"score"`
	Probability  float64               `json:"probability"`
	Tier         risk.Tier             `json:"tier"`
	Outcome      string                `json:"outcome"`
	View         report.View           `json:"view"`
	Table        []report.Row          `json:"table"`
	SignCaption  string                `json:"sign_caption"`
	Annotations  []annotate.Annotation `json:"annotations"`
	ModelVersion string                `json:"model_version"`
	CreatedAt    time.Time             `json:"created_at"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Stage Stage  `json:"stage,omitempty"`
}

// Render shapes r for view; the table is in contribution-ascending order so
// the most risk-increasing features come first.
func (r *Result) Render(view report.View) Response {
	annotations := r.Annotations
	if annotations == nil {
		annotations = []annotate.Annotation{}
	}
	return Response{
		ID:           r.ID,
		Score:        r.Score,
		Probability:  r.Probability,
		Tier:         r.Tier,
		Outcome:      r.Tier.Outcome(),
		View:         view,
		Table:        report.Shape(r.Table.ByContribution(), view),
		SignCaption:  report.SignCaption,
		Annotations:  annotations,
		ModelVersion: r.ModelVersion,
		CreatedAt:    r.CreatedAt,
	}
}

// ViewOr parses requested, falling back to the submitted view when it is empty.
func (r *Result) ViewOr(requested string) report.View {
	if requested != "" {
		return report.ParseView(requested)
	}
	if r.View == "" {
		return report.ModelView
	}
	return r.View
}

// Document builds the PDF report content for view.
func (r *Result) Document(view report.View, topN int) report.Document {
	return report.Document{
		Probability: r.Probability,
		Tier:        r.Tier,
		Table:       r.Table,
		View:        view,
		TopN:        topN,
		GeneratedAt: r.CreatedAt,
	}
}
