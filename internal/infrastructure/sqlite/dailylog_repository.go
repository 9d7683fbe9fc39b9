package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fitna/fitna/internal/workout/domain"
)

const dailyLogColumns = `date, meals, bodyweight, goals, dirty, updated_at`

// dailyLogRepository implements domain.DailyLogRepository using SQLite.
type dailyLogRepository struct {
	db *sql.DB
}

func newDailyLogRepository(db *sql.DB) *dailyLogRepository {
	return &dailyLogRepository{db: db}
}

var _ domain.DailyLogRepository = (*dailyLogRepository)(nil)

func scanDailyLog(scanner interface{ Scan(...any) error }) (*DailyLogModel, error) {
	var model DailyLogModel
	err := scanner.Scan(
		&model.Date, &model.Meals, &model.Bodyweight,
		&model.Goals, &model.Dirty, &model.UpdatedAt,
	)
	return &model, err
}

// Save persists a daily log keyed by its date.
func (r *dailyLogRepository) Save(log *domain.DailyLog) error {
	model, err := toDailyLogModel(log)
	if err != nil {
		return fmt.Errorf("failed to encode daily log: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO daily_logs (date, meals, bodyweight, goals, dirty, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			meals = excluded.meals,
			bodyweight = excluded.bodyweight,
			goals = excluded.goals,
			dirty = excluded.dirty,
			updated_at = excluded.updated_at`,
		model.Date, model.Meals, model.Bodyweight,
		model.Goals, model.Dirty, model.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save daily log: %w", err)
	}
	return nil
}

// FindByDate retrieves the log for a calendar date.
// Returns LogNotFoundError if no log exists for that date.
func (r *dailyLogRepository) FindByDate(date string) (*domain.DailyLog, error) {
	row := r.db.QueryRow(
		`SELECT `+dailyLogColumns+` FROM daily_logs WHERE date = ?`,
		date,
	)
	model, err := scanDailyLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.LogNotFoundError{Date: date}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find daily log by date: %w", err)
	}
	return model.toDomain()
}

// ListDirty retrieves logs pending upload.
func (r *dailyLogRepository) ListDirty() ([]*domain.DailyLog, error) {
	rows, err := r.db.Query(`SELECT ` + dailyLogColumns + ` FROM daily_logs WHERE dirty = 1 ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list dirty daily logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var logs []*domain.DailyLog
	for rows.Next() {
		model, err := scanDailyLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily log row: %w", err)
		}
		log, err := model.toDomain()
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily log rows: %w", err)
	}

	return logs, nil
}

// MarkSynced clears the dirty flag for exactly the given dates.
func (r *dailyLogRepository) MarkSynced(dates []string) error {
	if len(dates) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(dates))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(dates))
	for i, date := range dates {
		args[i] = date
	}

	_, err := r.db.Exec(
		`UPDATE daily_logs SET dirty = 0 WHERE date IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to mark daily logs synced: %w", err)
	}
	return nil
}

// DeleteAll removes every daily log record.
func (r *dailyLogRepository) DeleteAll() error {
	if _, err := r.db.Exec(`DELETE FROM daily_logs`); err != nil {
		return fmt.Errorf("failed to delete all daily logs: %w", err)
	}
	return nil
}
