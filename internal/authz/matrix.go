// Package authz defines the static role/action permission matrix. Every
// role-gated decision in the API goes through IsPermitted so authorization is
// declared once and testable without HTTP.
package authz

import "github.com/exam-planner/backend/internal/models"

// Action is a coarse-grained capability tag checked before dispatching an
// operation.
type Action string

const (
	ActionViewCourses          Action = "VIEW_COURSES"
	ActionEditCourse           Action = "EDIT_COURSE"
	ActionSetExaminationMethod Action = "SET_EXAMINATION_METHOD"
	ActionViewExams            Action = "VIEW_EXAMS"
	ActionProposeExam          Action = "PROPOSE_EXAM"
	ActionReviewExam           Action = "REVIEW_EXAM"
	ActionRescheduleExam       Action = "RESCHEDULE_EXAM"
	ActionEditExam             Action = "EDIT_EXAM"
	ActionViewPeriods          Action = "VIEW_PERIODS"
	ActionManagePeriods        Action = "MANAGE_PERIODS"
	ActionViewRooms            Action = "VIEW_ROOMS"
	ActionManageRooms          Action = "MANAGE_ROOMS"
	ActionViewProfessors       Action = "VIEW_PROFESSORS"
	ActionManageUsers          Action = "MANAGE_USERS"
	ActionResetDatabase        Action = "RESET_DATABASE"
	ActionSyncData             Action = "SYNC_DATA"
	ActionImportUsers          Action = "IMPORT_USERS"
	ActionExportData           Action = "EXPORT_DATA"
)

// matrix maps each action to the set of roles allowed to perform it.
var matrix = map[Action]map[models.UserRole]struct{}{
	ActionViewCourses:          roles(models.RoleCoordinator, models.RoleSecretary, models.RoleGroupLeader, models.RoleAdmin),
	ActionEditCourse:           roles(models.RoleSecretary),
	ActionSetExaminationMethod: roles(models.RoleCoordinator, models.RoleSecretary),
	ActionViewExams:            roles(models.RoleCoordinator, models.RoleSecretary, models.RoleGroupLeader),
	ActionProposeExam:          roles(models.RoleGroupLeader),
	ActionReviewExam:           roles(models.RoleCoordinator),
	ActionRescheduleExam:       roles(models.RoleGroupLeader),
	ActionEditExam:             roles(models.RoleSecretary),
	ActionViewPeriods:          roles(models.RoleAdmin, models.RoleSecretary, models.RoleCoordinator, models.RoleGroupLeader),
	ActionManagePeriods:        roles(models.RoleAdmin, models.RoleSecretary),
	ActionViewRooms:            roles(models.RoleCoordinator, models.RoleGroupLeader, models.RoleSecretary),
	ActionManageRooms:          roles(models.RoleSecretary),
	ActionViewProfessors:       roles(models.RoleCoordinator, models.RoleSecretary, models.RoleAdmin),
	ActionManageUsers:          roles(models.RoleSecretary, models.RoleAdmin),
	ActionResetDatabase:        roles(models.RoleAdmin, models.RoleSecretary),
	ActionSyncData:             roles(models.RoleSecretary),
	ActionImportUsers:          roles(models.RoleAdmin, models.RoleSecretary),
	ActionExportData:           roles(models.RoleSecretary),
}

// IsPermitted reports whether the role may perform the action. Unknown roles
// and unknown actions fail closed.
func IsPermitted(role models.UserRole, action Action) bool {
	allowed, ok := matrix[action]
	if !ok {
		return false
	}
	_, ok = allowed[role]
	return ok
}

// PermittedActions returns the actions the role may perform, useful for
// navigation payloads.
func PermittedActions(role models.UserRole) []Action {
	var actions []Action
	for action, allowed := range matrix {
		if _, ok := allowed[role]; ok {
			actions = append(actions, action)
		}
	}
	return actions
}

func roles(rs ...models.UserRole) map[models.UserRole]struct{} {
	set := make(map[models.UserRole]struct{}, len(rs))
	for _, r := range rs {
		set[r] = struct{}{}
	}
	return set
}
