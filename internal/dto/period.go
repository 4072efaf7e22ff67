package dto

// PeriodRequest captures examination period create/update payloads.
type PeriodRequest struct {
	Kind  string `json:"kind" validate:"required,oneof=EXAM COLLOQUIUM"`
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}
