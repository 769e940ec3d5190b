package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/synaptica-ai/afi-risk/pkg/common/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssessmentLog is the persisted trace of one completed assessment.
type AssessmentLog struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey;column:id"`
	Probability     float64        `gorm:"column:probability"`
	Score           float64        `gorm:"column:score"`
	Tier            string         `gorm:"column:tier;index"`
	TopContributors datatypes.JSON `gorm:"column:top_contributors"`
	ModelVersion    string         `gorm:"column:model_version"`
	CreatedAt       time.Time      `gorm:"column:created_at;index"`
}

// TableName overrides gorm naming.
func (AssessmentLog) TableName() string {
	return "risk_assessments"
}

// Contributors decodes the stored top contributors.
func (l AssessmentLog) Contributors() ([]models.Contributor, error) {
	var out []models.Contributor
	if len(l.TopContributors) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(l.TopContributors, &out); err != nil {
		return nil, fmt.Errorf("decoding contributors of %s: %w", l.ID, err)
	}
	return out, nil
}

// NewAssessmentLog converts an event payload into a row.
func NewAssessmentLog(event models.AssessmentCompleted) (AssessmentLog, error) {
	id, err := uuid.Parse(event.AssessmentID)
	if err != nil {
		return AssessmentLog{}, fmt.Errorf("assessment id %q: %w", event.AssessmentID, err)
	}
	top, err := json.Marshal(event.TopContributors)
	if err != nil {
		return AssessmentLog{}, fmt.Errorf("encoding contributors: %w", err)
	}
	created := event.CompletedAt
	if created.IsZero() {
		created = time.Now()
	}
	return AssessmentLog{
		ID:              id,
		Probability:     event.Probability,
		Score:           event.Score,
		Tier:            event.Tier,
		TopContributors: datatypes.JSON(top),
		ModelVersion:    event.ModelVersion,
		CreatedAt:       created.UTC(),
	}, nil
}

// Repository handles assessment log queries.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&AssessmentLog{})
}

// Record inserts log; redelivered events with a known id are ignored.
func (r *Repository) Record(ctx context.Context, log AssessmentLog) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&log).Error
}

// Recent returns the most recent assessment logs up to limit.
func (r *Repository) Recent(ctx context.Context, limit int) ([]AssessmentLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []AssessmentLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
