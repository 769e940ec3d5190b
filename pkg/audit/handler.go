package audit

import (
	"context"

	"github.com/synaptica-ai/afi-risk/pkg/common/logger"
	"github.com/synaptica-ai/afi-risk/pkg/common/models"
)

// Recorder persists assessment logs; *Repository satisfies it.
type Recorder interface {
	Record(ctx context.Context, log AssessmentLog) error
}

// Handler returns the event handler used by the audit worker. Events of other
// types and malformed payloads are acknowledged and dropped; storage errors
// are returned so the consumer retries the same message.
func Handler(rec Recorder) func(ctx context.Context, event models.Event) error {
	return func(ctx context.Context, event models.Event) error {
		if event.Type != models.EventAssessmentCompleted {
			logger.Log.WithField("event_type", event.Type).Debug("ignoring event")
			return nil
		}

		var completed models.AssessmentCompleted
		if err := event.Decode(&completed); err != nil {
			logger.Log.WithError(err).WithField("event_id", event.ID).Error("dropping malformed assessment event")
			return nil
		}
		row, err := NewAssessmentLog(completed)
		if err != nil {
			logger.Log.WithError(err).WithField("event_id", event.ID).Error("dropping malformed assessment event")
			return nil
		}

		if err := rec.Record(ctx, row); err != nil {
			return err
		}
		logger.Log.WithFields(map[string]interface{}{
			"assessment_id": completed.AssessmentID,
			"tier":          completed.Tier,
		}).Info("assessment audited")
		return nil
	}
}
