package assessment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/afi-risk/pkg/common/models"
	"github.com/synaptica-ai/afi-risk/pkg/features"
)

type recordingPublisher struct {
	eventType string
	data      map[string]interface{}
	err       error
	calls     int
}

func (p *recordingPublisher) PublishEvent(_ context.Context, eventType string, _ string, data map[string]interface{}) error {
	p.calls++
	p.eventType = eventType
	p.data = data
	return p.err
}

func newTestService(t *testing.T, pub Publisher) (*Service, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore(time.Hour)
	return NewService(newTestPipeline(t), store, pub, "test-model", 5), store
}

func TestAssessStoresAndPublishes(t *testing.T) {
	pub := &recordingPublisher{}
	svc, store := newTestService(t, pub)

	rec := features.DefaultSchema().DefaultRecord()
	rec["Renal"] = features.Label("Dialysis")
	rec["Hemoglobin"] = features.Number(7.9)

	result, err := svc.Assess(context.Background(), Request{View: "clinical", Inputs: rec})
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, "test-model", result.ModelVersion)

	require.Equal(t, 1, pub.calls)
	assert.Equal(t, models.EventAssessmentCompleted, pub.eventType)
	assert.Equal(t, result.ID, pub.data["assessment_id"])

	var event models.AssessmentCompleted
	require.NoError(t, models.Event{Data: pub.data}.Decode(&event))
	require.Len(t, event.TopContributors, 5)
	assert.Equal(t, "Renal", event.TopContributors[0].Feature)

	keys := make([]string, 0, len(pub.data))
	for k := range pub.data {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"assessment_id", "probability", "score", "tier", "model_version", "top_contributors", "completed_at"}, keys)
}

func TestAssessFailureStoresNothing(t *testing.T) {
	pub := &recordingPublisher{}
	svc, store := newTestService(t, pub)

	rec := features.DefaultSchema().DefaultRecord()
	rec["ECHO"] = features.Label("Unremarkable")

	result, err := svc.Assess(context.Background(), Request{Inputs: rec})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, StageEncode, StageOf(err))
	assert.Zero(t, store.Len())
	assert.Zero(t, pub.calls)
}

func TestPublishFailureDoesNotFailAssessment(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc, _ := newTestService(t, pub)

	result, err := svc.Assess(context.Background(), Request{Inputs: features.DefaultSchema().DefaultRecord()})
	require.NoError(t, err)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, 1, pub.calls)
}

func TestGetAndResetRejectMalformedIDs(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.Get(context.Background(), "../etc")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Reset(context.Background(), "nope"), ErrNotFound)
}
