package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/afi-risk/pkg/explain"
	"github.com/synaptica-ai/afi-risk/pkg/risk"
)

func sampleTable() explain.Table {
	return explain.Table{
		{Feature: "Renal", Display: "Dialysis", Value: 10, Weight: -0.2, Contribution: -2, AbsContribution: 2},
		{Feature: "Hemoglobin", Display: "9.5", Value: 9.5, Weight: 0.1, Contribution: 0.95, AbsContribution: 0.95},
		{Feature: "Age", Display: "64", Value: 2.4, Weight: -0.25, Contribution: -0.6, AbsContribution: 0.6},
		{Feature: "ECHO", Display: "Normal", Value: 0, Weight: -0.1, Contribution: 0, AbsContribution: 0},
	}
}

func TestParseView(t *testing.T) {
	assert.Equal(t, ClinicalView, ParseView("clinical"))
	assert.Equal(t, ClinicalView, ParseView("Clinical View"))
	assert.Equal(t, ModelView, ParseView("Model View"))
	assert.Equal(t, ModelView, ParseView(""))
	assert.Equal(t, ModelView, ParseView("detailed"))
}

func TestShapeByView(t *testing.T) {
	model := Shape(sampleTable(), ModelView)
	require.Len(t, model, 4)
	assert.Equal(t, "Renal", model[0].Feature)
	require.NotNil(t, model[0].RiskWeight)
	assert.Equal(t, -0.2, *model[0].RiskWeight)
	assert.Equal(t, "-2.00", model[0].RiskImpact)
	assert.Equal(t, "+0.95", model[1].RiskImpact)

	clinical := Shape(sampleTable(), ClinicalView)
	for _, r := range clinical {
		assert.Nil(t, r.RiskWeight)
	}
}

func TestFootnotes(t *testing.T) {
	assert.Equal(t, []string{SignFootnote, WeightFootnote, GeneratedNote}, Footnotes(ModelView))
	assert.Equal(t, []string{SignFootnote, GeneratedNote}, Footnotes(ClinicalView))
}

func TestWritePDF(t *testing.T) {
	for _, view := range []View{ModelView, ClinicalView} {
		t.Run(string(view), func(t *testing.T) {
			var buf bytes.Buffer
			err := WritePDF(&buf, Document{
				Probability: 0.62,
				Tier:        risk.TierModerate,
				Table:       sampleTable(),
				View:        view,
				GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			})
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
		})
	}
}

func TestWritePDFPaginatesLongTables(t *testing.T) {
	var table explain.Table
	for i := 0; i < 120; i++ {
		c := float64(i%7) - 3
		table = append(table, explain.Row{Feature: "Feature with a fairly long descriptive name", Display: "1", Weight: 1, Contribution: c, AbsContribution: c * c})
	}
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, Document{Table: table, View: ModelView}))
	assert.Greater(t, buf.Len(), 0)
}

func TestWriteChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteChart(&buf, sampleTable()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	assert.Error(t, WriteChart(&bytes.Buffer{}, nil))
}
