package models

import "time"

// Course models a taught course. ExaminationMethod stays nil until the
// coordinator (or secretary) sets it; exams cannot be proposed before then.
type Course struct {
	ID                string    `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	StudyYear         *int      `db:"study_year" json:"study_year,omitempty"`
	Specialization    *string   `db:"specialization" json:"specialization,omitempty"`
	ExaminationMethod *ExamKind `db:"examination_method" json:"examination_method,omitempty"`
	CoordinatorID     string    `db:"coordinator_id" json:"coordinator_id"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// CourseDetail joins the coordinator name and assistant roster onto a course.
type CourseDetail struct {
	Course
	CoordinatorName string   `db:"coordinator_name" json:"coordinator_name"`
	AssistantIDs    []string `json:"assistant_ids,omitempty"`
}

// CourseFilter restricts course listings.
type CourseFilter struct {
	CoordinatorID  string
	Specialization string
	StudyYear      *int
}
