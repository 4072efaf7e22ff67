package dto

// SyncReport summarises one synchronisation run against the university
// timetable service.
type SyncReport struct {
	ProfessorsCreated int      `json:"professorsCreated"`
	ProfessorsUpdated int      `json:"professorsUpdated"`
	CoursesCreated    int      `json:"coursesCreated"`
	CoursesUpdated    int      `json:"coursesUpdated"`
	Warnings          []string `json:"warnings,omitempty"`
}
