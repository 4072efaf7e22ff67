package dto

// SetExaminationMethodRequest captures the coordinator's choice of method.
type SetExaminationMethodRequest struct {
	Method string `json:"method" validate:"required,oneof=EXAM COLLOQUIUM"`
}

// UpdateCourseRequest captures a secretary edit of course metadata.
type UpdateCourseRequest struct {
	Name           *string  `json:"name,omitempty"`
	StudyYear      *int     `json:"studyYear,omitempty"`
	Specialization *string  `json:"specialization,omitempty"`
	CoordinatorID  *string  `json:"coordinatorId,omitempty"`
	AssistantIDs   []string `json:"assistantIds,omitempty"`
}

// CourseListQuery captures supported course listing filters.
type CourseListQuery struct {
	Specialization string `form:"specialization"`
	StudyYear      *int   `form:"studyYear"`
}
