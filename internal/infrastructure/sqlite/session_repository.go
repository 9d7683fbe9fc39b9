package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fitna/fitna/internal/workout/domain"
)

// sessionColumns is the list of columns to select for session queries.
const sessionColumns = `id, user_id, name, start_time, end_time, status, paused_at, total_paused_ms, activities, dirty, updated_at`

// sessionRepository implements domain.SessionRepository using SQLite.
type sessionRepository struct {
	db *sql.DB
}

// newSessionRepository creates a new sessionRepository instance.
func newSessionRepository(db *sql.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

// Ensure sessionRepository implements domain.SessionRepository.
var _ domain.SessionRepository = (*sessionRepository)(nil)

// scanSession scans a row into a SessionModel.
func scanSession(scanner interface{ Scan(...any) error }) (*SessionModel, error) {
	var model SessionModel
	err := scanner.Scan(
		&model.ID, &model.UserID, &model.Name,
		&model.StartTime, &model.EndTime, &model.Status,
		&model.PausedAt, &model.TotalPausedMs, &model.Activities,
		&model.Dirty, &model.UpdatedAt,
	)
	return &model, err
}

// Save persists a session keyed by its id. The upsert keeps put idempotent:
// re-saving the same record is safe, and a replayed pull overwrite replaces
// the row wholesale.
func (r *sessionRepository) Save(session *domain.Session) error {
	model, err := toSessionModel(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO sessions (id, user_id, name, start_time, end_time, status, paused_at, total_paused_ms, activities, dirty, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			name = excluded.name,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			status = excluded.status,
			paused_at = excluded.paused_at,
			total_paused_ms = excluded.total_paused_ms,
			activities = excluded.activities,
			dirty = excluded.dirty,
			updated_at = excluded.updated_at`,
		model.ID, model.UserID, model.Name,
		model.StartTime, model.EndTime, model.Status,
		model.PausedAt, model.TotalPausedMs, model.Activities,
		model.Dirty, model.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// FindByID retrieves a session by its id.
// Returns SessionNotFoundError if no matching session exists.
func (r *sessionRepository) FindByID(id string) (*domain.Session, error) {
	row := r.db.QueryRow(
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`,
		id,
	)
	model, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.SessionNotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session by id: %w", err)
	}
	return model.toDomain()
}

// Delete removes a session by id.
// Returns SessionNotFoundError if no matching session exists.
func (r *sessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.SessionNotFoundError{ID: id}
	}
	return nil
}

// ListAll retrieves all sessions ordered by start time descending.
func (r *sessionRepository) ListAll() ([]*domain.Session, error) {
	return r.list(`SELECT ` + sessionColumns + ` FROM sessions ORDER BY start_time DESC`)
}

// ListOpen retrieves sessions with no end time, newest first.
func (r *sessionRepository) ListOpen() ([]*domain.Session, error) {
	return r.list(`SELECT ` + sessionColumns + ` FROM sessions WHERE end_time IS NULL ORDER BY start_time DESC`)
}

// ListDirty retrieves sessions pending upload.
func (r *sessionRepository) ListDirty() ([]*domain.Session, error) {
	return r.list(`SELECT ` + sessionColumns + ` FROM sessions WHERE dirty = 1 ORDER BY start_time DESC`)
}

func (r *sessionRepository) list(query string, args ...any) ([]*domain.Session, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []*domain.Session
	for rows.Next() {
		model, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		session, err := model.toDomain()
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}

	return sessions, nil
}

// MarkSynced clears the dirty flag for exactly the given ids.
func (r *sessionRepository) MarkSynced(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	_, err := r.db.Exec(
		`UPDATE sessions SET dirty = 0 WHERE id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to mark sessions synced: %w", err)
	}
	return nil
}

// DeleteAll removes every session record.
func (r *sessionRepository) DeleteAll() error {
	if _, err := r.db.Exec(`DELETE FROM sessions`); err != nil {
		return fmt.Errorf("failed to delete all sessions: %w", err)
	}
	return nil
}
