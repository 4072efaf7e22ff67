package dto

// RoomRequest captures room create/update payloads.
type RoomRequest struct {
	Name     string `json:"name" validate:"required"`
	Building string `json:"building" validate:"required"`
}
