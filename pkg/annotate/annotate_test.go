package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/afi-risk/pkg/clinical"
	"github.com/synaptica-ai/afi-risk/pkg/explain"
)

func row(feature, display string, contribution float64) explain.Row {
	abs := contribution
	if abs < 0 {
		abs = -abs
	}
	return explain.Row{Feature: feature, Display: display, Contribution: contribution, AbsContribution: abs}
}

func TestOutOfRangeBeyondThresholdIsAnnotatedOnce(t *testing.T) {
	a := New(clinical.DefaultCatalog())

	anns := a.Annotate(explain.Table{row("Hemoglobin", "9.5", -0.3)}, DefaultThreshold)
	require.Len(t, anns, 1)
	assert.Equal(t, "Hemoglobin", anns[0].Feature)
	assert.Equal(t, StatusLow, anns[0].Status)
	assert.Equal(t, "Hemoglobin is low (9.5). Suggests anemia or blood loss — consider CBC review and bleeding source.", anns[0].Message)
}

func TestContributionWithinThresholdIsNotAnnotated(t *testing.T) {
	a := New(clinical.DefaultCatalog())

	for _, c := range []float64{-0.05, -0.01, 0, 0.4} {
		anns := a.Annotate(explain.Table{row("Hemoglobin", "9.5", c)}, DefaultThreshold)
		assert.Empty(t, anns, "contribution %v", c)
	}
}

func TestInRangeValueIsNotAnnotated(t *testing.T) {
	a := New(clinical.DefaultCatalog())
	anns := a.Annotate(explain.Table{row("Sodium (mM/l)", "140", -2)}, DefaultThreshold)
	assert.Empty(t, anns)
}

func TestHighValueUsesGenericHintWhenNoneDefined(t *testing.T) {
	a := New(clinical.DefaultCatalog())
	anns := a.Annotate(explain.Table{row("CPK (U/L)", "850", -0.5)}, DefaultThreshold)
	require.Len(t, anns, 1)
	assert.Equal(t, StatusHigh, anns[0].Status)
	assert.Equal(t, genericHint, anns[0].Hint)
}

func TestCategoricalHint(t *testing.T) {
	a := New(clinical.DefaultCatalog())
	anns := a.Annotate(explain.Table{row("ECHO", "Severe TR", -1.2)}, DefaultThreshold)
	require.Len(t, anns, 1)
	assert.Empty(t, anns[0].Status)
	assert.Equal(t, "ECHO contributed significantly → Severe dysfunction indicates need for cardiology consult.", anns[0].Message)
}

func TestUnknownFeatureAndUnparseableValuesAreSkipped(t *testing.T) {
	a := New(clinical.DefaultCatalog())
	table := explain.Table{
		row("Age", "81", -3),
		row("Creatinine", "not measured", -1),
		row("Urea (mg/dL)", "120", -0.9),
	}
	anns := a.Annotate(table, DefaultThreshold)
	require.Len(t, anns, 1)
	assert.Equal(t, "Urea (mg/dL)", anns[0].Feature)
	assert.Equal(t, StatusHigh, anns[0].Status)
}

func TestAnnotationsFollowTableOrder(t *testing.T) {
	a := New(clinical.DefaultCatalog())
	table := explain.Table{
		row("Renal", "Dialysis", -4),
		row("Platelet", "20000", -2),
		row("pH", "7.1", -1),
	}
	anns := a.Annotate(table, DefaultThreshold)
	require.Len(t, anns, 3)
	assert.Equal(t, []string{"Renal", "Platelet", "pH"}, []string{anns[0].Feature, anns[1].Feature, anns[2].Feature})
}

func TestAnnotationParseError(t *testing.T) {
	a := New(clinical.DefaultCatalog())
	_, err := a.rangeAnnotation(row("AST", "n/a", -1), clinical.Range{Low: 0, High: 41})

	var perr *AnnotationParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "AST", perr.Feature)
}
