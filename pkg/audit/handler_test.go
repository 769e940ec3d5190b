package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/afi-risk/pkg/common/models"
)

type memoryRecorder struct {
	logs []AssessmentLog
	err  error
}

func (m *memoryRecorder) Record(_ context.Context, log AssessmentLog) error {
	if m.err != nil {
		return m.err
	}
	m.logs = append(m.logs, log)
	return nil
}

func completedEvent() models.Event {
	payload := models.AssessmentCompleted{
		AssessmentID:    "0f8fad5b-d9cb-469f-a165-70867728950e",
		Probability:     0.22,
		Score:           -1.27,
		Tier:            "High Risk",
		ModelVersion:    "v3",
		TopContributors: []models.Contributor{{Feature: "Renal", Contribution: -5}},
		CompletedAt:     time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
	}
	return models.Event{ID: "evt", Type: models.EventAssessmentCompleted, Data: payload.Data()}
}

func TestHandlerRecordsCompletedAssessments(t *testing.T) {
	rec := &memoryRecorder{}
	require.NoError(t, Handler(rec)(context.Background(), completedEvent()))

	require.Len(t, rec.logs, 1)
	log := rec.logs[0]
	assert.Equal(t, "0f8fad5b-d9cb-469f-a165-70867728950e", log.ID.String())
	assert.Equal(t, "High Risk", log.Tier)
	assert.Equal(t, "v3", log.ModelVersion)
	assert.Equal(t, time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC), log.CreatedAt)

	top, err := log.Contributors()
	require.NoError(t, err)
	assert.Equal(t, []models.Contributor{{Feature: "Renal", Contribution: -5}}, top)
}

func TestHandlerDropsForeignAndMalformedEvents(t *testing.T) {
	rec := &memoryRecorder{}
	h := Handler(rec)

	assert.NoError(t, h(context.Background(), models.Event{Type: "something.else"}))

	bad := completedEvent()
	bad.Data["assessment_id"] = "not-a-uuid"
	assert.NoError(t, h(context.Background(), bad))

	assert.Empty(t, rec.logs)
}

func TestHandlerReturnsStorageErrors(t *testing.T) {
	rec := &memoryRecorder{err: errors.New("connection refused")}
	assert.Error(t, Handler(rec)(context.Background(), completedEvent()))
}
