package models

import "time"

// Group models a student group. Each group has at most one leader and a
// leader leads at most one group.
type Group struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	LeaderID       *string   `db:"leader_id" json:"leader_id,omitempty"`
	Specialization *string   `db:"specialization" json:"specialization,omitempty"`
	StudyYear      *int      `db:"study_year" json:"study_year,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
