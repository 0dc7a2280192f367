package domain

import (
	"fmt"
	"strings"
)

// Stage is the position of a claim in the review workflow.
type Stage string

const (
	StagePending           Stage = "PENDING"
	StagePendingValidation Stage = "PENDING_VALIDATION"
	StageValidated         Stage = "VALIDATED"
	StageProcessed         Stage = "PROCESSED"
)

var stageOrder = map[Stage]int{
	StagePending:           0,
	StagePendingValidation: 1,
	StageValidated:         2,
	StageProcessed:         3,
}

// Stages returns the workflow stages in order.
func Stages() []Stage {
	return []Stage{StagePending, StagePendingValidation, StageValidated, StageProcessed}
}

// ParseStage validates a stage name.
func ParseStage(s string) (Stage, error) {
	stage := Stage(strings.TrimSpace(s))
	if !stage.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStage, s)
	}
	return stage, nil
}

// IsValid reports whether s is a known stage.
func (s Stage) IsValid() bool {
	_, ok := stageOrder[s]
	return ok
}

// IsTerminal reports whether no further transition is possible.
func (s Stage) IsTerminal() bool {
	return s == StageProcessed
}

// Confirmation carries the reviewer's checkboxes for a stage change.
type Confirmation struct {
	ValidatedViaPortal bool `json:"validatedViaPortal"`
	TemplatePasted     bool `json:"templatePasted"`
}

// TransitionTo checks that a claim at stage s may move to next.
// Moves are forward only, skipping stages is allowed. VALIDATED needs the
// portal confirmation and PROCESSED needs both confirmations.
func (s Stage) TransitionTo(next Stage, confirm Confirmation) error {
	if !next.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStage, next)
	}
	from, ok := stageOrder[s]
	if !ok {
		return fmt.Errorf("%w: unknown current stage %q", ErrInvalidStageTransition, s)
	}
	if stageOrder[next] <= from {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStageTransition, s, next)
	}

	switch next {
	case StageValidated:
		if !confirm.ValidatedViaPortal {
			return fmt.Errorf("%w: claim must be validated via the payer portal", ErrConfirmationRequired)
		}
	case StageProcessed:
		if !confirm.ValidatedViaPortal || !confirm.TemplatePasted {
			return fmt.Errorf("%w: claim must be validated via the payer portal and the template pasted", ErrConfirmationRequired)
		}
	}
	return nil
}
