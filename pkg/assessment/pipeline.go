package assessment

import (
	"fmt"

	"github.com/synaptica-ai/afi-risk/pkg/annotate"
	"github.com/synaptica-ai/afi-risk/pkg/clinical"
	"github.com/synaptica-ai/afi-risk/pkg/explain"
	"github.com/synaptica-ai/afi-risk/pkg/features"
	"github.com/synaptica-ai/afi-risk/pkg/ml/artifact"
	"github.com/synaptica-ai/afi-risk/pkg/ml/linear"
	"github.com/synaptica-ai/afi-risk/pkg/risk"
)

// Evaluation is the output of one pipeline run.
type Evaluation struct {
	Score       float64               `json:"score"`
	Probability float64               `json:"probability"`
	Tier        risk.Tier             `json:"tier"`
	Table       explain.Table         `json:"table"`
	Annotations []annotate.Annotation `json:"annotations"`
}

// Pipeline runs encode, build, score, explain and annotate against a fixed
// model. It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	schema    features.Schema
	encoder   *clinical.Encoder
	builder   *features.Builder
	model     *artifact.Model
	bands     risk.Bands
	annotator *annotate.Annotator
	threshold float64
}

func NewPipeline(schema features.Schema, catalog clinical.Catalog, model *artifact.Model, bands risk.Bands, threshold float64) (*Pipeline, error) {
	if model == nil {
		return nil, fmt.Errorf("model artifact is required")
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact: %w", err)
	}
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid clinical catalog: %w", err)
	}
	if err := bands.Validate(); err != nil {
		return nil, err
	}
	if threshold < 0 {
		return nil, fmt.Errorf("annotation threshold must not be negative, got %v", threshold)
	}

	encoder := clinical.NewEncoder(catalog)
	for _, f := range schema {
		if f.Kind == features.KindCoded && !encoder.HasTable(f.Table) {
			return nil, fmt.Errorf("field %q refers to unknown code table %q", f.Name, f.Table)
		}
	}

	return &Pipeline{
		schema:    schema,
		encoder:   encoder,
		builder:   features.NewBuilder(schema, encoder, model),
		model:     model,
		bands:     bands,
		annotator: annotate.New(catalog),
		threshold: threshold,
	}, nil
}

// Evaluate scores rec. Any failure is a *PipelineError and nothing partial is returned.
func (p *Pipeline) Evaluate(rec features.Record) (*Evaluation, error) {
	vec, err := p.builder.Build(rec)
	if err != nil {
		return nil, &PipelineError{Stage: buildStage(err), Err: err}
	}

	result, err := linear.Score(vec.Values, p.model.Weights, p.model.Intercept)
	if err != nil {
		return nil, &PipelineError{Stage: StageScore, Err: err}
	}

	table, err := explain.Explain(vec, p.model.Weights)
	if err != nil {
		return nil, &PipelineError{Stage: StageExplain, Err: err}
	}

	return &Evaluation{
		Score:       result.Score,
		Probability: result.Probability,
		Tier:        p.bands.Classify(result.Probability),
		Table:       table,
		Annotations: p.annotator.Annotate(table, p.threshold),
	}, nil
}

// Form describes the input fields and the options each one accepts.
func (p *Pipeline) Form() []features.FormField {
	return p.schema.Form(p.encoder)
}

// Intercept is the model bias; Table.Sum() plus Intercept reconstructs Score.
func (p *Pipeline) Intercept() float64 {
	return p.model.Intercept
}
