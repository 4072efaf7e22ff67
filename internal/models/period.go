package models

import "time"

// ExaminationPeriod bounds the dates on which exams of a given kind may be
// proposed. At most one period exists per kind; start never falls after end.
type ExaminationPeriod struct {
	ID        string    `db:"id" json:"id"`
	Kind      ExamKind  `db:"kind" json:"kind"`
	Start     time.Time `db:"period_start" json:"period_start"`
	End       time.Time `db:"period_end" json:"period_end"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
