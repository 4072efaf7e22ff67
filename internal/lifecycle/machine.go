package lifecycle

import (
	"fmt"
	"time"

	"github.com/exam-planner/backend/internal/authz"
	"github.com/exam-planner/backend/internal/models"
	appErrors "github.com/exam-planner/backend/pkg/errors"
)

// Duration bounds for a scheduled examination, in minutes.
const (
	MinDurationMinutes = 60
	MaxDurationMinutes = 300
)

// Decision is the outcome a coordinator records when reviewing a proposal.
type Decision string

const (
	DecisionAccept Decision = "ACCEPTED"
	DecisionReject Decision = "REJECTED"
)

// Assignment carries the scheduling details attached to an accepted exam.
type Assignment struct {
	RoomID          string
	AssistantID     *string
	StartTime       string
	DurationMinutes int
	Details         *string
}

// Transition describes a validated status change. The caller applies it to
// the stored exam; the machine itself never touches persistence.
type Transition struct {
	From models.ExamStatus
	To   models.ExamStatus

	// Assignment is set when the exam ends up scheduled (accept or edit).
	Assignment *Assignment

	// NewDate and ClearSchedule are set on reschedule: the exam moves back
	// to pending with a fresh date and its previous room, assistant and
	// start time wiped.
	NewDate       *time.Time
	ClearSchedule bool
}

// Review validates a coordinator decision on a pending proposal.
// Accepting requires a complete assignment; rejecting discards any.
func Review(actor models.UserRole, current models.ExamStatus, decision Decision, assignment *Assignment) (*Transition, error) {
	if !authz.IsPermitted(actor, authz.ActionReviewExam) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only course coordinators can review exam proposals")
	}
	if current != models.ExamStatusPending {
		return nil, invalidTransition(current, "review")
	}

	switch decision {
	case DecisionAccept:
		if assignment == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "accepting an exam requires room, assistant, start time and duration")
		}
		if err := validateAssignment(*assignment); err != nil {
			return nil, err
		}
		return &Transition{From: current, To: models.ExamStatusAccepted, Assignment: assignment}, nil
	case DecisionReject:
		return &Transition{From: current, To: models.ExamStatusRejected}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown review decision %q", decision))
	}
}

// Reschedule moves a rejected exam back to pending with a new proposed date.
// The previous scheduling details no longer apply and are cleared.
func Reschedule(actor models.UserRole, current models.ExamStatus, newDate time.Time) (*Transition, error) {
	if !authz.IsPermitted(actor, authz.ActionRescheduleExam) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only group leaders can reschedule rejected exams")
	}
	if current != models.ExamStatusRejected {
		return nil, invalidTransition(current, "reschedule")
	}
	date := newDate
	return &Transition{
		From:          current,
		To:            models.ExamStatusPending,
		NewDate:       &date,
		ClearSchedule: true,
	}, nil
}

// EditScheduled lets the secretary amend the details of an already accepted
// exam without changing its status.
func EditScheduled(actor models.UserRole, current models.ExamStatus, assignment Assignment) (*Transition, error) {
	if !authz.IsPermitted(actor, authz.ActionEditExam) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the secretariat can edit scheduled exams")
	}
	if current != models.ExamStatusAccepted {
		return nil, invalidTransition(current, "edit")
	}
	if err := validateAssignment(assignment); err != nil {
		return nil, err
	}
	return &Transition{From: current, To: models.ExamStatusAccepted, Assignment: &assignment}, nil
}

func validateAssignment(a Assignment) error {
	if a.RoomID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "roomId is required")
	}
	if a.AssistantID == nil || *a.AssistantID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "assistantId is required")
	}
	if a.StartTime == "" {
		return appErrors.Clone(appErrors.ErrValidation, "startTime is required")
	}
	if _, err := time.Parse("15:04", a.StartTime); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("startTime %q is not a valid HH:MM time", a.StartTime))
	}
	if a.DurationMinutes < MinDurationMinutes || a.DurationMinutes > MaxDurationMinutes {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf(
			"durationMinutes must be between %d and %d", MinDurationMinutes, MaxDurationMinutes))
	}
	return nil
}

func invalidTransition(current models.ExamStatus, action string) error {
	return appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf(
		"cannot %s an exam in status %s", action, current))
}
