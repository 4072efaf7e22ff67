package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/exam-planner/backend/internal/authz"
	"github.com/exam-planner/backend/internal/dto"
	"github.com/exam-planner/backend/internal/lifecycle"
	"github.com/exam-planner/backend/internal/models"
	appErrors "github.com/exam-planner/backend/pkg/errors"
	"github.com/exam-planner/backend/pkg/mailer"
)

type examRepository interface {
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	FindDetailByID(ctx context.Context, id string) (*models.ExamDetail, error)
	FindByCourseAndGroup(ctx context.Context, courseID, groupID string) (*models.Exam, error)
	List(ctx context.Context, filter models.ExamFilter) ([]models.ExamDetail, error)
	ListAcceptedOnDate(ctx context.Context, day time.Time, excludeID string) ([]models.Exam, error)
	Create(ctx context.Context, exam *models.Exam) error
	Update(ctx context.Context, exam *models.Exam) error
	ListMissing(ctx context.Context) ([]models.MissingExam, error)
}

type examCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type examGroupReader interface {
	FindByID(ctx context.Context, id string) (*models.Group, error)
	FindByLeader(ctx context.Context, leaderID string) (*models.Group, error)
}

type examPeriodReader interface {
	FindByKind(ctx context.Context, kind models.ExamKind) (*models.ExaminationPeriod, error)
}

type examRoomReader interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

type examUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// ExamService implements the proposal and scheduling flows.
type ExamService struct {
	exams     examRepository
	courses   examCourseReader
	groups    examGroupReader
	periods   examPeriodReader
	rooms     examRoomReader
	users     examUserReader
	validator *validator.Validate
	logger    *zap.Logger
	mailer    mailer.Mailer
}

// NewExamService constructs an ExamService instance.
func NewExamService(
	exams examRepository,
	courses examCourseReader,
	groups examGroupReader,
	periods examPeriodReader,
	rooms examRoomReader,
	users examUserReader,
	validate *validator.Validate,
	logger *zap.Logger,
	notifier mailer.Mailer,
) *ExamService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ExamService{
		exams:     exams,
		courses:   courses,
		groups:    groups,
		periods:   periods,
		rooms:     rooms,
		users:     users,
		validator: validate,
		logger:    logger,
		mailer:    notifier,
	}
}

const dayFormat = "2006-01-02"

// Propose registers a new exam proposal for the leader's group.
func (s *ExamService) Propose(ctx context.Context, claims *models.JWTClaims, req dto.ProposeExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid proposal payload")
	}
	if !authz.IsPermitted(claims.Role, authz.ActionProposeExam) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only group leaders can propose exams")
	}

	group, err := s.groups.FindByLeader(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "user does not lead a group")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve group")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if course.ExaminationMethod == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "the course has no examination method set yet")
	}

	date, err := time.Parse(dayFormat, req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("date %q is not a valid YYYY-MM-DD date", req.Date))
	}

	if err := s.validateAgainstPeriod(ctx, date, *course.ExaminationMethod); err != nil {
		return nil, err
	}

	if _, err := s.exams.FindByCourseAndGroup(ctx, course.ID, group.ID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an exam for this course and group already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing proposals")
	}

	professorID := course.CoordinatorID
	exam := &models.Exam{
		CourseID:    course.ID,
		GroupID:     group.ID,
		ExamDate:    date,
		Kind:        *course.ExaminationMethod,
		Status:      models.ExamStatusPending,
		ProfessorID: &professorID,
	}
	if err := s.exams.Create(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam")
	}

	s.notify(ctx, course.CoordinatorID,
		fmt.Sprintf("New exam proposal: %s", course.Name),
		fmt.Sprintf("Group %s proposed %s for %s on %s. The proposal awaits your review.",
			group.Name, course.Name, exam.Kind, date.Format(dayFormat)))

	return exam, nil
}

// Review applies a coordinator decision to a pending proposal. The exam is
// refetched so the decision always applies to current state.
func (s *ExamService) Review(ctx context.Context, claims *models.JWTClaims, examID string, req dto.ReviewExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	exam, course, err := s.loadExamWithCourse(ctx, examID)
	if err != nil {
		return nil, err
	}
	if course.CoordinatorID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the course coordinator can review this proposal")
	}

	var assignment *lifecycle.Assignment
	if req.Decision == string(lifecycle.DecisionAccept) {
		assignment = assignmentFromReview(req)
	}

	transition, err := lifecycle.Review(claims.Role, exam.Status, lifecycle.Decision(req.Decision), assignment)
	if err != nil {
		return nil, err
	}

	if transition.Assignment != nil {
		if err := s.checkAssignment(ctx, exam, *transition.Assignment); err != nil {
			return nil, err
		}
	}

	s.applyTransition(exam, transition)
	if err := s.exams.Update(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update exam")
	}

	s.notifyGroupLeader(ctx, exam,
		fmt.Sprintf("Exam proposal %s: %s", exam.Status, course.Name),
		fmt.Sprintf("Your proposal for %s on %s was %s.", course.Name, exam.ExamDate.Format(dayFormat), exam.Status))

	return exam, nil
}

// Reschedule moves a rejected proposal back to pending with a new date.
func (s *ExamService) Reschedule(ctx context.Context, claims *models.JWTClaims, examID string, req dto.RescheduleExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reschedule payload")
	}

	exam, course, err := s.loadExamWithCourse(ctx, examID)
	if err != nil {
		return nil, err
	}

	group, err := s.groups.FindByID(ctx, exam.GroupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	if group.LeaderID == nil || *group.LeaderID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the group leader can reschedule this exam")
	}

	date, err := time.Parse(dayFormat, req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("date %q is not a valid YYYY-MM-DD date", req.Date))
	}
	if err := s.validateAgainstPeriod(ctx, date, exam.Kind); err != nil {
		return nil, err
	}

	transition, err := lifecycle.Reschedule(claims.Role, exam.Status, date)
	if err != nil {
		return nil, err
	}

	s.applyTransition(exam, transition)
	if err := s.exams.Update(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update exam")
	}

	s.notify(ctx, course.CoordinatorID,
		fmt.Sprintf("Exam rescheduled: %s", course.Name),
		fmt.Sprintf("Group %s proposed a new date for %s: %s. The proposal awaits your review.",
			group.Name, course.Name, date.Format(dayFormat)))

	return exam, nil
}

// UpdateScheduled lets the secretary amend an accepted exam's details.
func (s *ExamService) UpdateScheduled(ctx context.Context, claims *models.JWTClaims, examID string, req dto.UpdateExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam update payload")
	}

	exam, course, err := s.loadExamWithCourse(ctx, examID)
	if err != nil {
		return nil, err
	}

	if req.Date != nil {
		date, err := time.Parse(dayFormat, *req.Date)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("date %q is not a valid YYYY-MM-DD date", *req.Date))
		}
		if err := s.validateAgainstPeriod(ctx, date, exam.Kind); err != nil {
			return nil, err
		}
		exam.ExamDate = date
	}

	assignment := lifecycle.Assignment{
		RoomID:          req.RoomID,
		AssistantID:     req.AssistantID,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Details:         req.Details,
	}
	transition, err := lifecycle.EditScheduled(claims.Role, exam.Status, assignment)
	if err != nil {
		return nil, err
	}

	if err := s.checkAssignment(ctx, exam, *transition.Assignment); err != nil {
		return nil, err
	}

	s.applyTransition(exam, transition)
	if err := s.exams.Update(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update exam")
	}

	s.notifyGroupLeader(ctx, exam,
		fmt.Sprintf("Exam updated: %s", course.Name),
		fmt.Sprintf("The secretariat updated the scheduled exam for %s on %s.",
			course.Name, exam.ExamDate.Format(dayFormat)))

	return exam, nil
}

// Get returns an exam with joined display names.
func (s *ExamService) Get(ctx context.Context, claims *models.JWTClaims, examID string) (*models.ExamDetail, error) {
	if !authz.IsPermitted(claims.Role, authz.ActionViewExams) {
		return nil, appErrors.ErrForbidden
	}
	detail, err := s.exams.FindDetailByID(ctx, examID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	return detail, nil
}

// List returns exams visible to the caller. Group leaders see their own
// group, coordinators see their own courses, staff see everything.
func (s *ExamService) List(ctx context.Context, claims *models.JWTClaims, query dto.ExamListQuery) ([]models.ExamDetail, error) {
	if !authz.IsPermitted(claims.Role, authz.ActionViewExams) {
		return nil, appErrors.ErrForbidden
	}

	filter := models.ExamFilter{
		CourseID: query.CourseID,
		GroupID:  query.GroupID,
		Status:   models.ExamStatus(query.Status),
	}

	switch claims.Role {
	case models.RoleGroupLeader:
		group, err := s.groups.FindByLeader(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return []models.ExamDetail{}, nil
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve group")
		}
		filter.GroupID = group.ID
	case models.RoleCoordinator:
		filter.CoordinatorID = claims.UserID
	}

	exams, err := s.exams.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}
	return exams, nil
}

// ListMissing reports (group, course) pairs without a proposal yet.
func (s *ExamService) ListMissing(ctx context.Context, claims *models.JWTClaims) ([]models.MissingExam, error) {
	if claims.Role != models.RoleSecretary && claims.Role != models.RoleAdmin {
		return nil, appErrors.ErrForbidden
	}
	missing, err := s.exams.ListMissing(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list missing exams")
	}
	return missing, nil
}

func (s *ExamService) loadExamWithCourse(ctx context.Context, examID string) (*models.Exam, *models.Course, error) {
	exam, err := s.exams.FindByID(ctx, examID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	course, err := s.courses.FindByID(ctx, exam.CourseID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return exam, course, nil
}

func (s *ExamService) validateAgainstPeriod(ctx context.Context, date time.Time, kind models.ExamKind) error {
	period, err := s.periods.FindByKind(ctx, kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			period = nil
		} else {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load examination period")
		}
	}
	return lifecycle.ValidateDate(date, period)
}

// checkAssignment verifies the room and assistant exist and that neither the
// room, the professor nor the assistant is double-booked at the requested
// time.
func (s *ExamService) checkAssignment(ctx context.Context, exam *models.Exam, a lifecycle.Assignment) error {
	if _, err := s.rooms.FindByID(ctx, a.RoomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "room not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}

	if a.AssistantID != nil && *a.AssistantID != "" {
		assistant, err := s.users.FindByID(ctx, *a.AssistantID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrValidation, "assistant not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assistant")
		}
		if assistant.Role != models.RoleCoordinator {
			return appErrors.Clone(appErrors.ErrValidation, "the assistant must be a teaching staff account")
		}
	}

	accepted, err := s.exams.ListAcceptedOnDate(ctx, exam.ExamDate, exam.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check schedule conflicts")
	}

	for _, other := range accepted {
		if other.StartTime == nil || other.DurationMinutes == nil {
			continue
		}
		if !timesOverlap(a.StartTime, a.DurationMinutes, *other.StartTime, *other.DurationMinutes) {
			continue
		}
		if other.RoomID != nil && *other.RoomID == a.RoomID {
			return appErrors.Clone(appErrors.ErrScheduleConflict, "the room is already booked at the requested time")
		}
		if exam.ProfessorID != nil && other.ProfessorID != nil && *other.ProfessorID == *exam.ProfessorID {
			return appErrors.Clone(appErrors.ErrScheduleConflict, "the professor already has an exam at the requested time")
		}
		if a.AssistantID != nil && other.AssistantID != nil && *other.AssistantID == *a.AssistantID {
			return appErrors.Clone(appErrors.ErrScheduleConflict, "the assistant already has an exam at the requested time")
		}
	}
	return nil
}

func (s *ExamService) applyTransition(exam *models.Exam, tr *lifecycle.Transition) {
	exam.Status = tr.To
	if tr.NewDate != nil {
		exam.ExamDate = *tr.NewDate
	}
	if tr.ClearSchedule {
		exam.RoomID = nil
		exam.AssistantID = nil
		exam.StartTime = nil
		exam.DurationMinutes = nil
	}
	if tr.Assignment != nil {
		roomID := tr.Assignment.RoomID
		startTime := tr.Assignment.StartTime
		duration := tr.Assignment.DurationMinutes
		exam.RoomID = &roomID
		exam.AssistantID = tr.Assignment.AssistantID
		exam.StartTime = &startTime
		exam.DurationMinutes = &duration
		if tr.Assignment.Details != nil {
			exam.Details = tr.Assignment.Details
		}
	}
}

func (s *ExamService) notify(ctx context.Context, userID, subject, body string) {
	if s.mailer == nil || userID == "" {
		return
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("notification recipient lookup failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	if err := s.mailer.Send(mailer.Message{To: user.Email, Subject: subject, Body: body}); err != nil {
		s.logger.Warn("notification delivery failed", zap.String("to", user.Email), zap.Error(err))
	}
}

func (s *ExamService) notifyGroupLeader(ctx context.Context, exam *models.Exam, subject, body string) {
	group, err := s.groups.FindByID(ctx, exam.GroupID)
	if err != nil || group.LeaderID == nil {
		return
	}
	s.notify(ctx, *group.LeaderID, subject, body)
}

func assignmentFromReview(req dto.ReviewExamRequest) *lifecycle.Assignment {
	a := &lifecycle.Assignment{
		AssistantID: req.AssistantID,
		Details:     req.Details,
	}
	if req.RoomID != nil {
		a.RoomID = *req.RoomID
	}
	if req.StartTime != nil {
		a.StartTime = *req.StartTime
	}
	if req.DurationMinutes != nil {
		a.DurationMinutes = *req.DurationMinutes
	}
	return a
}

// timesOverlap reports whether two [start, start+duration) intervals on the
// same day intersect. Unparseable times count as non-overlapping.
func timesOverlap(aStart string, aDuration int, bStart string, bDuration int) bool {
	a, err := time.Parse("15:04", aStart)
	if err != nil {
		return false
	}
	b, err := time.Parse("15:04", bStart)
	if err != nil {
		return false
	}
	aFrom := a.Hour()*60 + a.Minute()
	bFrom := b.Hour()*60 + b.Minute()
	return aFrom < bFrom+bDuration && bFrom < aFrom+aDuration
}
