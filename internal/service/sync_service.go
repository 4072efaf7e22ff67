package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/exam-planner/backend/internal/dto"
	"github.com/exam-planner/backend/internal/models"
	"github.com/exam-planner/backend/internal/upstream"
	"github.com/exam-planner/backend/pkg/config"
	appErrors "github.com/exam-planner/backend/pkg/errors"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type syncUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByTeacherID(ctx context.Context, teacherID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type syncCourseRepository interface {
	FindByName(ctx context.Context, name string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	ListAssistantIDs(ctx context.Context, courseID string) ([]string, error)
	ReplaceAssistants(ctx context.Context, courseID string, userIDs []string) error
}

type syncRoomRepository interface {
	FindByName(ctx context.Context, name string) (*models.Room, error)
	Create(ctx context.Context, room *models.Room) error
}

// timetableProfessor mirrors the roster payload of the university timetable
// service.
type timetableProfessor struct {
	ID        json.Number `json:"id"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"emailAddress"`
	Faculty   string      `json:"facultyName"`
}

// timetableActivity is one scheduled activity row from the per-professor
// course feed.
type timetableActivity struct {
	ID           json.Number `json:"id"`
	TopicName    string      `json:"topicLongName"`
	TypeShort    string      `json:"typeShortName"`
	RoomName     string      `json:"roomLongName"`
	RoomBuilding string      `json:"roomBuilding"`
}

// timetableGroupPair links an activity to the student cohort attending it.
type timetableGroupPair struct {
	ActivityID     json.Number `json:"id"`
	StudyYear      json.Number `json:"studyYear"`
	Specialization string      `json:"specializationShortName"`
	Faculty        string      `json:"facultyShortName"`
}

// SyncService pulls the professor roster and their courses from the
// university timetable service and upserts them locally. Coordinators are
// matched by teacher id, courses by name.
type SyncService struct {
	client  httpDoer
	users   syncUserRepository
	courses syncCourseRepository
	rooms   syncRoomRepository
	cache   *CacheService
	logger  *zap.Logger
	cfg     config.SyncConfig
}

// NewSyncService constructs a SyncService.
func NewSyncService(client httpDoer, users syncUserRepository, courses syncCourseRepository, rooms syncRoomRepository, cache *CacheService, cfg config.SyncConfig, logger *zap.Logger) *SyncService {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		client:  client,
		users:   users,
		courses: courses,
		rooms:   rooms,
		cache:   cache,
		logger:  logger,
		cfg:     cfg,
	}
}

// Run performs one full synchronisation pass. Per-professor failures are
// collected as warnings; only a failed roster fetch aborts the run.
func (s *SyncService) Run(ctx context.Context, actorID string) (*dto.SyncReport, error) {
	if s.cfg.ProfessorsURL == "" || s.cfg.CoursesURL == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "timetable sync is not configured")
	}

	professors, err := s.fetchProfessors(ctx)
	if err != nil {
		return nil, err
	}

	report := &dto.SyncReport{}
	for _, prof := range professors {
		if s.cfg.Faculty != "" && prof.Faculty != s.cfg.Faculty {
			continue
		}
		if prof.Email == "" || prof.ID.String() == "" {
			continue
		}
		user, err := s.upsertProfessor(ctx, prof, report)
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("professor %s: %s", prof.Email, appErrors.FromError(err).Message))
			continue
		}
		if err := s.syncCourses(ctx, user, report); err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("courses for %s: %s", prof.Email, err.Error()))
		}
	}

	if err := s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:    &actorID,
		Action:    models.AuditActionDataSync,
		Resource:  "sync",
		NewValues: []byte(fmt.Sprintf(`{"professorsCreated":%d,"coursesCreated":%d,"warnings":%d}`, report.ProfessorsCreated, report.CoursesCreated, len(report.Warnings))),
	}); err != nil {
		s.logger.Warn("failed to record sync audit log", zap.Error(err))
	}

	s.invalidateCaches(ctx)
	return report, nil
}

func (s *SyncService) fetchProfessors(ctx context.Context) ([]timetableProfessor, error) {
	body, classified := s.fetch(ctx, s.cfg.ProfessorsURL)
	if classified != nil {
		return nil, syncFetchError(*classified)
	}
	var professors []timetableProfessor
	if err := json.Unmarshal(body, &professors); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "unexpected roster payload")
	}
	return professors, nil
}

func (s *SyncService) upsertProfessor(ctx context.Context, prof timetableProfessor, report *dto.SyncReport) (*models.User, error) {
	teacherID := prof.ID.String()
	fullName := strings.TrimSpace(prof.FirstName + " " + prof.LastName)

	user, err := s.users.FindByTeacherID(ctx, teacherID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up professor")
	}
	if err == nil {
		changed := false
		if fullName != "" && user.FullName != fullName {
			user.FullName = fullName
			changed = true
		}
		email := strings.ToLower(prof.Email)
		if user.Email != email {
			user.Email = email
			changed = true
		}
		if changed {
			if err := s.users.Update(ctx, user); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update professor")
			}
			report.ProfessorsUpdated++
		}
		return user, nil
	}

	// Synced accounts start with an unusable random password.
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	user = &models.User{
		Email:        strings.ToLower(prof.Email),
		PasswordHash: string(hash),
		FullName:     fullName,
		Role:         models.RoleCoordinator,
		TeacherID:    &teacherID,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create professor")
	}
	report.ProfessorsCreated++
	return user, nil
}

func (s *SyncService) syncCourses(ctx context.Context, professor *models.User, report *dto.SyncReport) error {
	if professor.TeacherID == nil {
		return nil
	}
	url := fmt.Sprintf(s.cfg.CoursesURL, *professor.TeacherID)
	body, classified := s.fetch(ctx, url)
	if classified != nil {
		return errors.New(classified.Message)
	}

	// The feed is a two-element array: scheduled activities first, then
	// the cohort rows that carry year and specialization.
	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil || len(payload) < 2 {
		return errors.New("unexpected course payload")
	}
	var activities []timetableActivity
	var pairs []timetableGroupPair
	if err := json.Unmarshal(payload[0], &activities); err != nil {
		return errors.New("unexpected activity payload")
	}
	if err := json.Unmarshal(payload[1], &pairs); err != nil {
		return errors.New("unexpected cohort payload")
	}

	for _, activity := range activities {
		s.ensureRoom(ctx, activity)
		if activity.TopicName == "" || activity.TypeShort == "" {
			continue
		}
		year, specialization, ok := cohortFor(pairs, activity.ID.String())
		if !ok {
			continue
		}
		if err := s.upsertCourse(ctx, professor, activity, year, specialization, report); err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("course %s: %s", activity.TopicName, appErrors.FromError(err).Message))
		}
	}
	return nil
}

func (s *SyncService) upsertCourse(ctx context.Context, professor *models.User, activity timetableActivity, year int, specialization string, report *dto.SyncReport) error {
	course, err := s.courses.FindByName(ctx, activity.TopicName)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up course")
	}

	coordinates := activity.TypeShort == "curs" || activity.TypeShort == "pr"
	assists := activity.TypeShort == "lab" || activity.TypeShort == "sem"

	if errors.Is(err, sql.ErrNoRows) {
		if !coordinates {
			// An assistant activity cannot seed a course; the
			// coordinator's own feed will create it.
			return nil
		}
		course = &models.Course{
			Name:           activity.TopicName,
			StudyYear:      &year,
			Specialization: &specialization,
			CoordinatorID:  professor.ID,
		}
		if err := s.courses.Create(ctx, course); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
		}
		report.CoursesCreated++
		return nil
	}

	if coordinates && course.CoordinatorID != professor.ID {
		course.CoordinatorID = professor.ID
		if err := s.courses.Update(ctx, course); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
		}
		report.CoursesUpdated++
	}
	if assists {
		if err := s.addAssistant(ctx, course.ID, professor.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *SyncService) addAssistant(ctx context.Context, courseID, userID string) error {
	ids, err := s.courses.ListAssistantIDs(ctx, courseID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assistants")
	}
	for _, id := range ids {
		if id == userID {
			return nil
		}
	}
	ids = append(ids, userID)
	if err := s.courses.ReplaceAssistants(ctx, courseID, ids); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assistants")
	}
	return nil
}

func (s *SyncService) ensureRoom(ctx context.Context, activity timetableActivity) {
	if activity.RoomName == "" {
		return
	}
	if _, err := s.rooms.FindByName(ctx, activity.RoomName); err == nil {
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn("room lookup failed during sync", zap.String("room", activity.RoomName), zap.Error(err))
		return
	}
	room := &models.Room{Name: activity.RoomName, Building: activity.RoomBuilding}
	if err := s.rooms.Create(ctx, room); err != nil {
		s.logger.Warn("room create failed during sync", zap.String("room", activity.RoomName), zap.Error(err))
	}
}

// fetch performs one GET and classifies any failure.
func (s *SyncService) fetch(ctx context.Context, url string) ([]byte, *upstream.Classified) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		classified := upstream.Classify(0, nil, err)
		return nil, &classified
	}
	resp, err := s.client.Do(req)
	if err != nil {
		classified := upstream.Classify(0, nil, err)
		return nil, &classified
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		classified := upstream.Classify(0, nil, err)
		return nil, &classified
	}
	if resp.StatusCode != http.StatusOK {
		classified := upstream.Classify(resp.StatusCode, body, nil)
		return nil, &classified
	}
	return body, nil
}

func (s *SyncService) invalidateCaches(ctx context.Context) {
	for _, key := range []string{professorsCacheKey, roomsCacheKey} {
		if err := s.cache.Invalidate(ctx, key); err != nil {
			s.logger.Warn("failed to invalidate cache after sync", zap.String("key", key), zap.Error(err))
		}
	}
}

func syncFetchError(classified upstream.Classified) error {
	switch classified.Kind {
	case upstream.KindNetwork, upstream.KindServer:
		return appErrors.Clone(appErrors.ErrInternal, classified.Message)
	case upstream.KindAuth:
		return appErrors.Clone(appErrors.ErrInternal, "timetable service rejected our credentials")
	default:
		return appErrors.Clone(appErrors.ErrInternal, classified.Message)
	}
}

func cohortFor(pairs []timetableGroupPair, activityID string) (int, string, bool) {
	for _, pair := range pairs {
		if pair.ActivityID.String() != activityID {
			continue
		}
		year, err := pair.StudyYear.Int64()
		if err != nil || pair.Specialization == "" {
			continue
		}
		return int(year), pair.Specialization, true
	}
	return 0, "", false
}
