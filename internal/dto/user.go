package dto

// CreateUserRequest captures the secretary's manual account creation payload.
type CreateUserRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=6"`
	FullName  string  `json:"fullName" validate:"required"`
	Role      string  `json:"role" validate:"required,oneof=ADMIN SECRETARY GROUP_LEADER COORDINATOR"`
	TeacherID *string `json:"teacherId,omitempty"`
	GroupID   *string `json:"groupId,omitempty"`
}

// UpdateUserRequest captures mutable user fields.
type UpdateUserRequest struct {
	FullName  *string `json:"fullName,omitempty"`
	Role      *string `json:"role,omitempty" validate:"omitempty,oneof=ADMIN SECRETARY GROUP_LEADER COORDINATOR"`
	TeacherID *string `json:"teacherId,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}

// ImportReport summarises the outcome of a bulk user import.
type ImportReport struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}
