package dto

import "github.com/exam-planner/backend/internal/models"

// ProposeExamRequest captures POST /exams payload from a group leader.
type ProposeExamRequest struct {
	CourseID string `json:"courseId" validate:"required"`
	Date     string `json:"date" validate:"required"`
}

// ReviewExamRequest captures the coordinator decision on a proposal.
// Room, assistant, start time and duration are required when the decision is
// ACCEPTED.
type ReviewExamRequest struct {
	Decision        string  `json:"decision" validate:"required,oneof=ACCEPTED REJECTED"`
	RoomID          *string `json:"roomId,omitempty"`
	AssistantID     *string `json:"assistantId,omitempty"`
	StartTime       *string `json:"startTime,omitempty"`
	DurationMinutes *int    `json:"durationMinutes,omitempty"`
	Details         *string `json:"details,omitempty"`
}

// RescheduleExamRequest captures a new date for a rejected proposal.
type RescheduleExamRequest struct {
	Date string `json:"date" validate:"required"`
}

// UpdateExamRequest captures a secretary edit of an accepted exam.
type UpdateExamRequest struct {
	Date            *string `json:"date,omitempty"`
	RoomID          string  `json:"roomId" validate:"required"`
	AssistantID     *string `json:"assistantId,omitempty"`
	StartTime       string  `json:"startTime" validate:"required"`
	DurationMinutes int     `json:"durationMinutes" validate:"required"`
	Details         *string `json:"details,omitempty"`
}

// ExamListQuery captures supported exam listing filters.
type ExamListQuery struct {
	CourseID string `form:"courseId"`
	GroupID  string `form:"groupId"`
	Status   string `form:"status"`
}

// ExamResponse is the wire representation of an exam with display names.
type ExamResponse struct {
	ID              string            `json:"id"`
	CourseID        string            `json:"courseId"`
	CourseName      string            `json:"courseName"`
	GroupID         string            `json:"groupId"`
	GroupName       string            `json:"groupName"`
	Date            string            `json:"date"`
	Kind            models.ExamKind   `json:"kind"`
	Status          models.ExamStatus `json:"status"`
	RoomID          *string           `json:"roomId,omitempty"`
	RoomName        *string           `json:"roomName,omitempty"`
	ProfessorName   *string           `json:"professorName,omitempty"`
	AssistantName   *string           `json:"assistantName,omitempty"`
	StartTime       *string           `json:"startTime,omitempty"`
	DurationMinutes *int              `json:"durationMinutes,omitempty"`
	Details         *string           `json:"details,omitempty"`
}

// NewExamResponse maps a joined exam row onto the wire shape.
func NewExamResponse(detail models.ExamDetail) ExamResponse {
	return ExamResponse{
		ID:              detail.ID,
		CourseID:        detail.CourseID,
		CourseName:      detail.CourseName,
		GroupID:         detail.GroupID,
		GroupName:       detail.GroupName,
		Date:            detail.ExamDate.Format("2006-01-02"),
		Kind:            detail.Kind,
		Status:          detail.Status,
		RoomID:          detail.RoomID,
		RoomName:        detail.RoomName,
		ProfessorName:   detail.ProfessorName,
		AssistantName:   detail.AssistantName,
		StartTime:       detail.StartTime,
		DurationMinutes: detail.DurationMinutes,
		Details:         detail.Details,
	}
}
