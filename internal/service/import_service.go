package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/exam-planner/backend/internal/dto"
	"github.com/exam-planner/backend/internal/models"
	appErrors "github.com/exam-planner/backend/pkg/errors"
	"github.com/exam-planner/backend/pkg/export"
)

type importUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type importGroupRepository interface {
	FindByName(ctx context.Context, name string) (*models.Group, error)
	Create(ctx context.Context, group *models.Group) error
	Update(ctx context.Context, group *models.Group) error
}

// requiredImportColumns are the header cells expected in the upload sheet.
var requiredImportColumns = []string{"name", "email", "groupName", "specialization", "year_of_study"}

// ImportService ingests group-leader accounts from an uploaded spreadsheet.
// Each row names a student and the group they lead; missing groups are
// created on the fly with the new user as leader.
type ImportService struct {
	users  importUserRepository
	groups importGroupRepository
	logger *zap.Logger
}

// NewImportService constructs an ImportService.
func NewImportService(users importUserRepository, groups importGroupRepository, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{users: users, groups: groups, logger: logger}
}

// ImportUsers parses an xlsx payload and creates group-leader accounts.
// Rows that cannot be imported are reported, not fatal.
func (s *ImportService) ImportUsers(ctx context.Context, actorID string, payload []byte) (*dto.ImportReport, error) {
	rows, err := export.ParseSheet(payload)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid file, upload an .xlsx workbook")
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "the workbook is empty")
	}

	columns, err := mapImportColumns(rows[0])
	if err != nil {
		return nil, err
	}

	report := &dto.ImportReport{}
	for i, row := range rows[1:] {
		line := i + 2
		if err := s.importRow(ctx, columns, row); err != nil {
			if errors.Is(err, errRowSkipped) {
				report.Skipped++
				continue
			}
			report.Errors = append(report.Errors, fmt.Sprintf("row %d: %s", line, appErrors.FromError(err).Message))
			continue
		}
		report.Created++
	}

	if err := s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:    &actorID,
		Action:    models.AuditActionUserImport,
		Resource:  "users",
		NewValues: []byte(fmt.Sprintf(`{"created":%d,"skipped":%d,"errors":%d}`, report.Created, report.Skipped, len(report.Errors))),
	}); err != nil {
		s.logger.Warn("failed to record user import audit log", zap.Error(err))
	}

	return report, nil
}

// errRowSkipped marks rows that already exist rather than failed.
var errRowSkipped = errors.New("row skipped")

func (s *ImportService) importRow(ctx context.Context, columns map[string]int, row []string) error {
	name := cellAt(row, columns["name"])
	email := strings.ToLower(cellAt(row, columns["email"]))
	groupName := cellAt(row, columns["groupName"])
	specialization := cellAt(row, columns["specialization"])
	yearRaw := cellAt(row, columns["year_of_study"])

	if name == "" || email == "" {
		return appErrors.Clone(appErrors.ErrValidation, "name and email are required")
	}
	if !strings.Contains(email, "@") {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid email %q", email))
	}
	if groupName == "" {
		return appErrors.Clone(appErrors.ErrValidation, "groupName is required")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return errRowSkipped
	} else if !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing users")
	}

	// Imported accounts get a throwaway password; leaders set their own
	// via the password change flow after first contact.
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     name,
		Role:         models.RoleGroupLeader,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	return s.attachGroup(ctx, user.ID, groupName, specialization, yearRaw)
}

func (s *ImportService) attachGroup(ctx context.Context, leaderID, groupName, specialization, yearRaw string) error {
	group, err := s.groups.FindByName(ctx, groupName)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up group")
		}
		group = &models.Group{Name: groupName, LeaderID: &leaderID}
		if specialization != "" {
			group.Specialization = &specialization
		}
		if year := parseStudyYear(yearRaw); year != nil {
			group.StudyYear = year
		}
		if err := s.groups.Create(ctx, group); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create group")
		}
		return nil
	}

	if group.LeaderID == nil {
		group.LeaderID = &leaderID
		if err := s.groups.Update(ctx, group); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign group leader")
		}
	}
	return nil
}

// TemplateWorkbook renders the blank sheet handed to secretaries as an
// import starting point.
func (s *ImportService) TemplateWorkbook() ([]byte, error) {
	dataset := export.Dataset{Headers: requiredImportColumns}
	return export.NewXLSXExporter().Render(dataset, "Users")
}

func mapImportColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, cell := range header {
		columns[strings.TrimSpace(cell)] = i
	}
	var missing []string
	for _, required := range requiredImportColumns {
		if _, ok := columns[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf(
			"the file must contain columns: %s", strings.Join(missing, ", ")))
	}
	return columns, nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseStudyYear(raw string) *int {
	if raw == "" {
		return nil
	}
	var year int
	if _, err := fmt.Sscanf(raw, "%d", &year); err != nil || year <= 0 {
		return nil
	}
	return &year
}
