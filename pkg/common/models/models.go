package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

// Decode converts the loosely typed event data into v.
func (e Event) Decode(v interface{}) error {
	raw, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("encoding event %s data: %w", e.ID, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding event %s data: %w", e.ID, err)
	}
	return nil
}

const (
	EventAssessmentCompleted = "assessment.completed"
	SourceRiskService        = "risk-service"
)

// Contributor is a feature and its signed contribution to the score.
type Contributor struct {
	Feature      string  `json:"feature"`
	Contribution float64 `json:"contribution"`
}

// AssessmentCompleted is published after every successful assessment.
// It never carries the submitted input values.
type AssessmentCompleted struct {
	AssessmentID    string        `json:"assessment_id"`
	Probability     float64       `json:"probability"`
	Score           float64       `json:"score"`
	Tier            string        `json:"tier"`
	ModelVersion    string        `json:"model_version"`
	TopContributors []Contributor `json:"top_contributors"`
	CompletedAt     time.Time     `json:"completed_at"`
}

// Data flattens the payload into the event bus data map.
func (a AssessmentCompleted) Data() map[string]interface{} {
	top := make([]map[string]interface{}, 0, len(a.TopContributors))
	for _, c := range a.TopContributors {
		top = append(top, map[string]interface{}{
			"feature":      c.Feature,
			"contribution": c.Contribution,
		})
	}
	return map[string]interface{}{
		"assessment_id":    a.AssessmentID,
		"probability":      a.Probability,
		"score":            a.Score,
		"tier":             a.Tier,
		"model_version":    a.ModelVersion,
		"top_contributors": top,
		"completed_at":     a.CompletedAt,
	}
}
