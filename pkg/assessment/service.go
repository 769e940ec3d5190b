package assessment

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/synaptica-ai/afi-risk/pkg/common/logger"
	"github.com/synaptica-ai/afi-risk/pkg/common/models"
	"github.com/synaptica-ai/afi-risk/pkg/features"
	"github.com/synaptica-ai/afi-risk/pkg/observability/metrics"
	"github.com/synaptica-ai/afi-risk/pkg/report"
)

// Publisher is the event bus side of the service; *kafka.Producer satisfies it.
type Publisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

type Service struct {
	pipeline     *Pipeline
	store        Store
	publisher    Publisher
	modelVersion string
	topN         int
	now          func() time.Time
}

// NewService wires the pipeline to session storage. publisher may be nil.
func NewService(pipeline *Pipeline, store Store, publisher Publisher, modelVersion string, topN int) *Service {
	if topN <= 0 {
		topN = report.DefaultTopN
	}
	return &Service{
		pipeline:     pipeline,
		store:        store,
		publisher:    publisher,
		modelVersion: modelVersion,
		topN:         topN,
		now:          time.Now,
	}
}

// Assess scores a submission and keeps the result for later rendering.
func (s *Service) Assess(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	eval, err := s.pipeline.Evaluate(req.Inputs)
	if err != nil {
		stage := StageOf(err)
		metrics.ObserveFailure(string(stage))
		logger.Log.WithFields(map[string]interface{}{
			"stage":  stage,
			"fields": len(req.Inputs),
		}).WithError(err).Warn("assessment rejected")
		return nil, err
	}

	result := &Result{
		ID:           uuid.New().String(),
		View:         report.ParseView(req.View),
		ModelVersion: s.modelVersion,
		CreatedAt:    s.now().UTC(),
		Evaluation:   *eval,
	}

	if err := s.store.Save(ctx, result); err != nil {
		return nil, fmt.Errorf("saving assessment: %w", err)
	}

	s.publish(ctx, result)

	latency := time.Since(start)
	metrics.ObserveAssessment(result.Tier, latency)
	logger.Log.WithFields(map[string]interface{}{
		"assessment_id": result.ID,
		"tier":          result.Tier,
		"probability":   result.Probability,
		"annotations":   len(result.Annotations),
		"latency_ms":    latency.Milliseconds(),
	}).Info("assessment completed")

	return result, nil
}

// publish is best effort: the assessment already succeeded.
func (s *Service) publish(ctx context.Context, result *Result) {
	if s.publisher == nil {
		return
	}
	event := CompletedEvent(result, s.topN)
	err := s.publisher.PublishEvent(ctx, models.EventAssessmentCompleted, models.SourceRiskService, event.Data())
	metrics.ObserveEvent(err == nil)
	if err != nil {
		logger.Log.WithError(err).WithField("assessment_id", result.ID).Warn("failed to publish assessment event")
	}
}

// CompletedEvent summarises result for the event bus without input values.
func CompletedEvent(result *Result, topN int) models.AssessmentCompleted {
	top := result.Table.Top(topN)
	contributors := make([]models.Contributor, 0, len(top))
	for _, r := range top {
		contributors = append(contributors, models.Contributor{Feature: r.Feature, Contribution: r.Contribution})
	}
	return models.AssessmentCompleted{
		AssessmentID:    result.ID,
		Probability:     result.Probability,
		Score:           result.Score,
		Tier:            string(result.Tier),
		ModelVersion:    result.ModelVersion,
		TopContributors: contributors,
		CompletedAt:     result.CreatedAt,
	}
}

func (s *Service) Get(ctx context.Context, id string) (*Result, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return s.store.Get(ctx, id)
}

// Reset drops a submission so the form starts over.
func (s *Service) Reset(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	logger.Log.WithField("assessment_id", id).Info("assessment reset")
	return nil
}

// Form lists the input fields the pipeline accepts.
func (s *Service) Form() []features.FormField {
	return s.pipeline.Form()
}

// WriteReport renders the PDF for id. An empty view uses the one chosen at submission.
func (s *Service) WriteReport(ctx context.Context, w io.Writer, id string, view string) error {
	result, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return report.WritePDF(w, result.Document(result.ViewOr(view), s.topN))
}

func (s *Service) WriteChart(ctx context.Context, w io.Writer, id string) error {
	result, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return report.WriteChart(w, result.Table)
}
