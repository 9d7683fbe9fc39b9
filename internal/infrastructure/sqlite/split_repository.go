package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fitna/fitna/internal/workout/domain"
)

const splitColumns = `week_start, split_type, custom_plans, dirty, updated_at`

// splitRepository implements domain.SplitRepository using SQLite.
type splitRepository struct {
	db *sql.DB
}

func newSplitRepository(db *sql.DB) *splitRepository {
	return &splitRepository{db: db}
}

var _ domain.SplitRepository = (*splitRepository)(nil)

func scanSplit(scanner interface{ Scan(...any) error }) (*SplitModel, error) {
	var model SplitModel
	err := scanner.Scan(
		&model.WeekStart, &model.SplitType, &model.CustomPlans,
		&model.Dirty, &model.UpdatedAt,
	)
	return &model, err
}

// Save persists a split assignment keyed by its week start date.
func (r *splitRepository) Save(assignment *domain.SplitAssignment) error {
	model, err := toSplitModel(assignment)
	if err != nil {
		return fmt.Errorf("failed to encode split assignment: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO split_assignments (week_start, split_type, custom_plans, dirty, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(week_start) DO UPDATE SET
			split_type = excluded.split_type,
			custom_plans = excluded.custom_plans,
			dirty = excluded.dirty,
			updated_at = excluded.updated_at`,
		model.WeekStart, model.SplitType, model.CustomPlans,
		model.Dirty, model.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save split assignment: %w", err)
	}
	return nil
}

// FindByWeek retrieves the assignment for a week start key in YYYY-MM-DD form.
// Returns AssignmentNotFoundError if no assignment exists for that week.
func (r *splitRepository) FindByWeek(weekStart string) (*domain.SplitAssignment, error) {
	row := r.db.QueryRow(
		`SELECT `+splitColumns+` FROM split_assignments WHERE week_start = ?`,
		weekStart,
	)
	model, err := scanSplit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.AssignmentNotFoundError{WeekStart: weekStart}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find split assignment by week: %w", err)
	}
	return model.toDomain()
}

// ListDirty retrieves assignments pending upload.
func (r *splitRepository) ListDirty() ([]*domain.SplitAssignment, error) {
	rows, err := r.db.Query(`SELECT ` + splitColumns + ` FROM split_assignments WHERE dirty = 1 ORDER BY week_start DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list dirty split assignments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var assignments []*domain.SplitAssignment
	for rows.Next() {
		model, err := scanSplit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan split assignment row: %w", err)
		}
		assignment, err := model.toDomain()
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating split assignment rows: %w", err)
	}

	return assignments, nil
}

// MarkSynced clears the dirty flag for exactly the given week start keys.
func (r *splitRepository) MarkSynced(weekStarts []string) error {
	if len(weekStarts) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(weekStarts))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(weekStarts))
	for i, ws := range weekStarts {
		args[i] = ws
	}

	_, err := r.db.Exec(
		`UPDATE split_assignments SET dirty = 0 WHERE week_start IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to mark split assignments synced: %w", err)
	}
	return nil
}

// DeleteAll removes every split assignment record.
func (r *splitRepository) DeleteAll() error {
	if _, err := r.db.Exec(`DELETE FROM split_assignments`); err != nil {
		return fmt.Errorf("failed to delete all split assignments: %w", err)
	}
	return nil
}
