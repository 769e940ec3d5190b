package assessment

import (
	"errors"
	"fmt"

	"github.com/synaptica-ai/afi-risk/pkg/clinical"
	"github.com/synaptica-ai/afi-risk/pkg/features"
)

// Stage names the pipeline step that failed.
type Stage string

const (
	StageEncode  Stage = "encode"
	StageBuild   Stage = "build"
	StageScore   Stage = "score"
	StageExplain Stage = "explain"
)

var ErrNotFound = errors.New("assessment not found")

// PipelineError wraps a fatal error with the stage it came from. A pipeline
// that returns one produced no score and no table.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

func IsPipelineError(err error) bool {
	var pe *PipelineError
	return errors.As(err, &pe)
}

// StageOf reports the failing stage of err, or "" when err is not a pipeline error.
func StageOf(err error) Stage {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Stage
	}
	return ""
}

// buildStage splits builder failures into input encoding problems and
// model schema problems.
func buildStage(err error) Stage {
	var typeErr *features.ValueTypeError
	if clinical.IsUnknownCategory(err) || errors.As(err, &typeErr) {
		return StageEncode
	}
	return StageBuild
}
