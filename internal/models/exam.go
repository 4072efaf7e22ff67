package models

import "time"

// ExamKind distinguishes full exams from colloquia. A course's examination
// method selects which examination period applies to its proposals.
type ExamKind string

const (
	ExamKindExam       ExamKind = "EXAM"
	ExamKindColloquium ExamKind = "COLLOQUIUM"
)

// KnownExamKind reports whether the kind is one of the enumerated values.
func KnownExamKind(kind ExamKind) bool {
	return kind == ExamKindExam || kind == ExamKindColloquium
}

// ExamStatus captures the proposal lifecycle state of an exam.
type ExamStatus string

const (
	ExamStatusPending  ExamStatus = "PENDING"
	ExamStatusAccepted ExamStatus = "ACCEPTED"
	ExamStatusRejected ExamStatus = "REJECTED"
)

// Exam models a proposed or scheduled examination. One exam exists per
// (course, group) pair. Room, assistant, start time and duration are only
// populated once a coordinator accepts the proposal.
type Exam struct {
	ID              string     `db:"id" json:"id"`
	CourseID        string     `db:"course_id" json:"course_id"`
	GroupID         string     `db:"group_id" json:"group_id"`
	ExamDate        time.Time  `db:"exam_date" json:"exam_date"`
	Kind            ExamKind   `db:"kind" json:"kind"`
	Status          ExamStatus `db:"status" json:"status"`
	RoomID          *string    `db:"room_id" json:"room_id,omitempty"`
	ProfessorID     *string    `db:"professor_id" json:"professor_id,omitempty"`
	AssistantID     *string    `db:"assistant_id" json:"assistant_id,omitempty"`
	StartTime       *string    `db:"start_time" json:"start_time,omitempty"`
	DurationMinutes *int       `db:"duration_minutes" json:"duration_minutes,omitempty"`
	Details         *string    `db:"details" json:"details,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// ExamDetail joins display names onto an exam row for listings and exports.
type ExamDetail struct {
	Exam
	CourseName    string  `db:"course_name" json:"course_name"`
	GroupName     string  `db:"group_name" json:"group_name"`
	RoomName      *string `db:"room_name" json:"room_name,omitempty"`
	RoomBuilding  *string `db:"room_building" json:"room_building,omitempty"`
	ProfessorName *string `db:"professor_name" json:"professor_name,omitempty"`
	AssistantName *string `db:"assistant_name" json:"assistant_name,omitempty"`
}

// ExamFilter restricts exam listings.
type ExamFilter struct {
	CourseID      string
	GroupID       string
	CoordinatorID string
	Status        ExamStatus
}

// MissingExam names a course a group has not yet proposed an exam for.
type MissingExam struct {
	GroupID     string `db:"group_id" json:"group_id"`
	GroupName   string `db:"group_name" json:"group"`
	LeaderName  string `db:"leader_name" json:"leader,omitempty"`
	CourseName  string `db:"course_name" json:"course_name"`
	Coordinator string `db:"coordinator" json:"coordinator,omitempty"`
}
