package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/afi-risk/pkg/annotate"
	"github.com/synaptica-ai/afi-risk/pkg/clinical"
	"github.com/synaptica-ai/afi-risk/pkg/features"
	"github.com/synaptica-ai/afi-risk/pkg/ml/artifact"
	"github.com/synaptica-ai/afi-risk/pkg/ml/linear"
	"github.com/synaptica-ai/afi-risk/pkg/risk"
)

// testModel centres every numeric field on its form default so the default
// record scores intercept + Sex weight.
func testModel(schema features.Schema) *artifact.Model {
	m := &artifact.Model{Intercept: 1.5}
	for _, f := range schema {
		m.FeatureOrder = append(m.FeatureOrder, f.Name)
		switch {
		case f.Name == "Sex":
			m.Weights = append(m.Weights, 0.1)
		case f.Kind == features.KindNumeric:
			m.Weights = append(m.Weights, -0.3)
			m.Scaler.Columns = append(m.Scaler.Columns, f.Name)
			m.Scaler.Mean = append(m.Scaler.Mean, f.Bounds.Default)
			m.Scaler.Scale = append(m.Scaler.Scale, f.Bounds.Default/2)
		default:
			m.Weights = append(m.Weights, -0.5)
		}
	}
	return m
}

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	schema := features.DefaultSchema()
	p, err := NewPipeline(schema, clinical.DefaultCatalog(), testModel(schema), risk.DefaultBands(), annotate.DefaultThreshold)
	require.NoError(t, err)
	return p
}

func rowFor(t *testing.T, eval *Evaluation, feature string) int {
	t.Helper()
	for i, r := range eval.Table {
		if r.Feature == feature {
			return i
		}
	}
	t.Fatalf("feature %q not in table", feature)
	return -1
}

func TestDefaultRecordIsLowRiskWithBaselineCodes(t *testing.T) {
	p := newTestPipeline(t)
	schema := features.DefaultSchema()

	eval, err := p.Evaluate(schema.DefaultRecord())
	require.NoError(t, err)

	assert.InDelta(t, 1.6, eval.Score, 1e-12)
	assert.InDelta(t, linear.Sigmoid(1.6), eval.Probability, 1e-12)
	assert.Equal(t, risk.TierLow, eval.Tier)
	assert.Empty(t, eval.Annotations)

	for _, f := range schema {
		if f.Kind == features.KindCoded {
			assert.Zero(t, eval.Table[rowFor(t, eval, f.Name)].Value, f.Name)
		}
	}
}

func TestEvaluateReconstructsScore(t *testing.T) {
	p := newTestPipeline(t)
	rec := features.DefaultSchema().DefaultRecord()
	rec["Age"] = features.Number(81)
	rec["Platelet"] = features.Number(20000)
	rec["Renal"] = features.Label("AKI")
	rec["Circulation"] = features.Label("Unstable")

	eval, err := p.Evaluate(rec)
	require.NoError(t, err)

	assert.Len(t, eval.Table, len(features.DefaultSchema()))
	assert.InDelta(t, eval.Score, eval.Table.Sum()+p.Intercept(), 1e-9)

	seen := map[string]bool{}
	for i, r := range eval.Table {
		assert.False(t, seen[r.Feature], "duplicate %s", r.Feature)
		seen[r.Feature] = true
		if i > 0 {
			assert.GreaterOrEqual(t, eval.Table[i-1].AbsContribution, r.AbsContribution)
		}
	}
}

func TestDialysisDrivesHighRiskAndAnnotation(t *testing.T) {
	p := newTestPipeline(t)
	rec := features.DefaultSchema().DefaultRecord()
	rec["Renal"] = features.Label("Dialysis")

	eval, err := p.Evaluate(rec)
	require.NoError(t, err)

	assert.InDelta(t, -3.4, eval.Score, 1e-12)
	assert.Equal(t, risk.TierHigh, eval.Tier)
	assert.Equal(t, "Renal", eval.Table[0].Feature)
	assert.Equal(t, -5.0, eval.Table[0].Contribution)
	assert.Equal(t, "Dialysis", eval.Table[0].Display)

	require.Len(t, eval.Annotations, 1)
	assert.Equal(t, "Renal", eval.Annotations[0].Feature)
}

func TestEvaluateFailuresCarryStage(t *testing.T) {
	p := newTestPipeline(t)

	cases := []struct {
		name  string
		edit  func(features.Record)
		stage Stage
		check func(t *testing.T, err error)
	}{
		{
			name:  "unknown category",
			edit:  func(r features.Record) { r["Renal"] = features.Label("Kidney stones") },
			stage: StageEncode,
			check: func(t *testing.T, err error) { assert.True(t, clinical.IsUnknownCategory(err)) },
		},
		{
			name:  "non numeric value",
			edit:  func(r features.Record) { r["Hemoglobin"] = features.Label("low") },
			stage: StageEncode,
			check: func(t *testing.T, err error) {
				var typeErr *features.ValueTypeError
				assert.ErrorAs(t, err, &typeErr)
			},
		},
		{
			name:  "scaled column missing",
			edit:  func(r features.Record) { delete(r, "Age") },
			stage: StageBuild,
			check: func(t *testing.T, err error) { assert.True(t, features.IsSchemaMismatch(err)) },
		},
		{
			name:  "coded field missing",
			edit:  func(r features.Record) { delete(r, "ECHO") },
			stage: StageBuild,
			check: func(t *testing.T, err error) { assert.True(t, features.IsMissingFeature(err)) },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := features.DefaultSchema().DefaultRecord()
			tc.edit(rec)

			eval, err := p.Evaluate(rec)
			require.Error(t, err)
			assert.Nil(t, eval)
			assert.True(t, IsPipelineError(err))
			assert.Equal(t, tc.stage, StageOf(err))
			tc.check(t, err)
		})
	}
}

func TestNewPipelineRejectsBadConfiguration(t *testing.T) {
	schema := features.DefaultSchema()
	cat := clinical.DefaultCatalog()

	_, err := NewPipeline(schema, cat, nil, risk.DefaultBands(), 0.05)
	assert.Error(t, err)

	_, err = NewPipeline(schema, cat, testModel(schema), risk.Bands{Low: 0.3, Moderate: 0.6}, 0.05)
	assert.Error(t, err)

	_, err = NewPipeline(schema, cat, testModel(schema), risk.DefaultBands(), -1)
	assert.Error(t, err)

	bad := testModel(schema)
	bad.Weights = bad.Weights[1:]
	_, err = NewPipeline(schema, cat, bad, risk.DefaultBands(), 0.05)
	assert.Error(t, err)

	noEcho := clinical.DefaultCatalog()
	noEcho.Tables = noEcho.Tables[:len(noEcho.Tables)-1]
	_, err = NewPipeline(schema, noEcho, testModel(schema), risk.DefaultBands(), 0.05)
	assert.Error(t, err)
}
