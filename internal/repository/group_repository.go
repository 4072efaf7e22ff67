package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/exam-planner/backend/internal/models"
)

// GroupRepository provides database access for student groups.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository creates a new instance of GroupRepository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

const groupColumns = `id, name, leader_id, specialization, study_year, created_at, updated_at`

// List returns all groups ordered by name.
func (r *GroupRepository) List(ctx context.Context) ([]models.Group, error) {
	query := fmt.Sprintf(`SELECT %s FROM groups ORDER BY name`, groupColumns)
	var groups []models.Group
	if err := r.db.SelectContext(ctx, &groups, query); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// FindByID returns a group by identifier.
func (r *GroupRepository) FindByID(ctx context.Context, id string) (*models.Group, error) {
	query := fmt.Sprintf(`SELECT %s FROM groups WHERE id = $1 LIMIT 1`, groupColumns)
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find group by id: %w", err)
	}
	return &group, nil
}

// FindByLeader returns the group led by a user.
func (r *GroupRepository) FindByLeader(ctx context.Context, leaderID string) (*models.Group, error) {
	query := fmt.Sprintf(`SELECT %s FROM groups WHERE leader_id = $1 LIMIT 1`, groupColumns)
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, leaderID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find group by leader: %w", err)
	}
	return &group, nil
}

// FindByName returns a group by display name.
func (r *GroupRepository) FindByName(ctx context.Context, name string) (*models.Group, error) {
	query := fmt.Sprintf(`SELECT %s FROM groups WHERE LOWER(name) = LOWER($1) LIMIT 1`, groupColumns)
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find group by name: %w", err)
	}
	return &group, nil
}

// Create inserts a new group.
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if group.CreatedAt.IsZero() {
		group.CreatedAt = now
	}
	group.UpdatedAt = now

	const query = `INSERT INTO groups (id, name, leader_id, specialization, study_year, created_at, updated_at) VALUES (:id, :name, :leader_id, :specialization, :study_year, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, group); err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

// Update persists mutable group fields.
func (r *GroupRepository) Update(ctx context.Context, group *models.Group) error {
	group.UpdatedAt = time.Now().UTC()
	const query = `UPDATE groups SET name = :name, leader_id = :leader_id, specialization = :specialization, study_year = :study_year, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, group); err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	return nil
}
