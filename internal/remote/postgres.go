package remote

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitna/fitna/internal/log"
	"github.com/fitna/fitna/internal/workout/domain"
)

// Postgres implements Store on a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// NewPostgres connects a pool to the given DSN.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool, for tests.
func NewPostgresFromPool(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Ping reports whether the backend is reachable.
func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("remote unreachable: %w", err)
	}
	return nil
}

// Close releases the pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

const upsertSessionSQL = `INSERT INTO sessions (id, user_id, name, start_time, end_time, status, paused_at, total_paused_ms, activities, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	ON CONFLICT (id) DO UPDATE SET
		user_id = excluded.user_id,
		name = excluded.name,
		start_time = excluded.start_time,
		end_time = excluded.end_time,
		status = excluded.status,
		paused_at = excluded.paused_at,
		total_paused_ms = excluded.total_paused_ms,
		activities = excluded.activities,
		updated_at = excluded.updated_at`

// UpsertSessions sends all records in one batch. Keyed on id, so retries
// and overlap with previously synced rows are harmless.
func (p *Postgres) UpsertSessions(ctx context.Context, records []SessionRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		activities, err := json.Marshal(activitiesOrEmpty(r.Activities))
		if err != nil {
			return fmt.Errorf("failed to encode activities for session %s: %w", r.ID, err)
		}
		batch.Queue(upsertSessionSQL,
			r.ID, r.UserID, r.Name, r.StartTime, r.EndTime,
			r.Status, r.PausedAt, r.TotalPausedMs, activities, r.UpdatedAt,
		)
	}
	if err := p.sendBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to upsert sessions: %w", err)
	}
	log.Debug(log.CatRemote, "sessions upserted", "count", len(records))
	return nil
}

const upsertDailyLogSQL = `INSERT INTO daily_logs (user_id, date, meals, bodyweight, goals, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6)
	ON CONFLICT (user_id, date) DO UPDATE SET
		meals = excluded.meals,
		bodyweight = excluded.bodyweight,
		goals = excluded.goals,
		updated_at = excluded.updated_at`

// UpsertDailyLogs sends all records in one batch keyed on (user, date).
func (p *Postgres) UpsertDailyLogs(ctx context.Context, records []DailyLogRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		meals, err := json.Marshal(r.Meals)
		if err != nil {
			return fmt.Errorf("failed to encode meals for log %s: %w", r.Date, err)
		}
		goals, err := json.Marshal(r.Goals)
		if err != nil {
			return fmt.Errorf("failed to encode goals for log %s: %w", r.Date, err)
		}
		batch.Queue(upsertDailyLogSQL, r.UserID, r.Date, meals, r.Bodyweight, goals, r.UpdatedAt)
	}
	if err := p.sendBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to upsert daily logs: %w", err)
	}
	log.Debug(log.CatRemote, "daily logs upserted", "count", len(records))
	return nil
}

const upsertSplitSQL = `INSERT INTO split_assignments (user_id, week_start, split_type, custom_plans, updated_at)
	VALUES ($1,$2,$3,$4,$5)
	ON CONFLICT (user_id, week_start) DO UPDATE SET
		split_type = excluded.split_type,
		custom_plans = excluded.custom_plans,
		updated_at = excluded.updated_at`

// UpsertSplitAssignments sends all records in one batch keyed on
// (user, week start).
func (p *Postgres) UpsertSplitAssignments(ctx context.Context, records []SplitRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		var plans []byte
		if len(r.CustomPlans) > 0 {
			encoded, err := json.Marshal(r.CustomPlans)
			if err != nil {
				return fmt.Errorf("failed to encode plans for week %s: %w", r.WeekStart, err)
			}
			plans = encoded
		}
		batch.Queue(upsertSplitSQL, r.UserID, r.WeekStart, r.SplitType, plans, r.UpdatedAt)
	}
	if err := p.sendBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to upsert split assignments: %w", err)
	}
	log.Debug(log.CatRemote, "split assignments upserted", "count", len(records))
	return nil
}

func (p *Postgres) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	results := p.pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return results.Close()
}

// SessionsByUser fetches every session owned by the user.
func (p *Postgres) SessionsByUser(ctx context.Context, userID string) ([]SessionRecord, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, user_id, name, start_time, end_time, status, paused_at, total_paused_ms, activities, updated_at
		FROM sessions WHERE user_id = $1 ORDER BY start_time DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var r SessionRecord
		var activities []byte
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.StartTime, &r.EndTime, &r.Status, &r.PausedAt, &r.TotalPausedMs, &activities, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		if err := json.Unmarshal(activities, &r.Activities); err != nil {
			return nil, fmt.Errorf("failed to decode activities for session %s: %w", r.ID, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}
	return records, nil
}

// DailyLogsByUser fetches every daily log owned by the user.
func (p *Postgres) DailyLogsByUser(ctx context.Context, userID string) ([]DailyLogRecord, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT user_id, date, meals, bodyweight, goals, updated_at
		FROM daily_logs WHERE user_id = $1 ORDER BY date DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch daily logs: %w", err)
	}
	defer rows.Close()

	var records []DailyLogRecord
	for rows.Next() {
		var r DailyLogRecord
		var meals, goals []byte
		if err := rows.Scan(&r.UserID, &r.Date, &meals, &r.Bodyweight, &goals, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan daily log row: %w", err)
		}
		if err := json.Unmarshal(meals, &r.Meals); err != nil {
			return nil, fmt.Errorf("failed to decode meals for log %s: %w", r.Date, err)
		}
		if err := json.Unmarshal(goals, &r.Goals); err != nil {
			return nil, fmt.Errorf("failed to decode goals for log %s: %w", r.Date, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily log rows: %w", err)
	}
	return records, nil
}

// SplitAssignmentsByUser fetches every split assignment owned by the user.
func (p *Postgres) SplitAssignmentsByUser(ctx context.Context, userID string) ([]SplitRecord, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT user_id, week_start, split_type, custom_plans, updated_at
		FROM split_assignments WHERE user_id = $1 ORDER BY week_start DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch split assignments: %w", err)
	}
	defer rows.Close()

	var records []SplitRecord
	for rows.Next() {
		var r SplitRecord
		var plans []byte
		if err := rows.Scan(&r.UserID, &r.WeekStart, &r.SplitType, &plans, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan split assignment row: %w", err)
		}
		if len(plans) > 0 {
			if err := json.Unmarshal(plans, &r.CustomPlans); err != nil {
				return nil, fmt.Errorf("failed to decode plans for week %s: %w", r.WeekStart, err)
			}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating split assignment rows: %w", err)
	}
	return records, nil
}

// DeleteSession removes a session row. Missing rows are not an error; the
// row may never have been pushed.
func (p *Postgres) DeleteSession(ctx context.Context, id string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// SaveProfile upserts the user profile. Profile saves are synchronous from
// the caller's point of view, unlike the record sync.
func (p *Postgres) SaveProfile(ctx context.Context, profile UserProfile) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO profiles (id, email, full_name, onboarded, squat_max, bench_max, deadlift_max, bodyweight, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
			email = excluded.email,
			full_name = excluded.full_name,
			onboarded = excluded.onboarded,
			squat_max = excluded.squat_max,
			bench_max = excluded.bench_max,
			deadlift_max = excluded.deadlift_max,
			bodyweight = excluded.bodyweight,
			updated_at = excluded.updated_at`,
		profile.ID, profile.Email, profile.FullName, profile.Onboarded,
		profile.SquatMax, profile.BenchMax, profile.DeadliftMax, profile.Bodyweight,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func activitiesOrEmpty(activities []domain.Activity) []domain.Activity {
	if activities == nil {
		return []domain.Activity{}
	}
	return activities
}
