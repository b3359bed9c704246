package domain

import (
	"errors"
	"fmt"
)

// Stage names a step of the analysis pipeline.
type Stage string

const (
	StageParse    Stage = "parse"
	StageExtract  Stage = "extract"
	StageEstimate Stage = "estimate"
	StageMatch    Stage = "match"
)

var (
	// ErrInvalidInput marks input the extractor cannot read, such as invalid UTF-8.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyDescription marks a project request with no description text.
	ErrEmptyDescription = errors.New("empty description")

	// ErrMissingStage marks a stage invoked without the output of the stage it depends on.
	ErrMissingStage = errors.New("missing upstream stage output")
)

// StageError identifies the stage and field that prevented a valid output
// from being built. Stages return it instead of a partially-initialized record.
type StageError struct {
	Stage Stage
	Field string
	Err   error
}

func (e *StageError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Field, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, field string, err error) error {
	return &StageError{Stage: stage, Field: field, Err: err}
}
