package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fitna/fitna/internal/infrastructure/sqlite"
	"github.com/fitna/fitna/internal/workout/domain"
)

// Builder accumulates workout fixtures and saves them through the
// repositories so persisted rows match what production writes.
type Builder struct {
	t        *testing.T
	db       *sqlite.DB
	sessions []sessionData
	logs     []logData
	splits   []splitData
}

// NewBuilder creates a builder for the given test store.
func NewBuilder(t *testing.T, db *sqlite.DB) *Builder {
	t.Helper()
	return &Builder{t: t, db: db}
}

// WithSession adds a workout session with optional configuration.
func (b *Builder) WithSession(id string, opts ...SessionOption) *Builder {
	data := defaultSession(id)
	for _, opt := range opts {
		opt(&data)
	}
	b.sessions = append(b.sessions, data)
	return b
}

// WithDailyLog adds a nutrition log for the given date.
func (b *Builder) WithDailyLog(date string, opts ...LogOption) *Builder {
	data := defaultLog(date)
	for _, opt := range opts {
		opt(&data)
	}
	b.logs = append(b.logs, data)
	return b
}

// WithSplit adds a split assignment for the given week start key.
func (b *Builder) WithSplit(weekStart string, opts ...SplitOption) *Builder {
	data := defaultSplit(weekStart)
	for _, opt := range opts {
		opt(&data)
	}
	b.splits = append(b.splits, data)
	return b
}

// Build persists all accumulated fixtures.
func (b *Builder) Build() {
	b.t.Helper()

	sessionRepo := b.db.SessionRepository()
	for _, data := range b.sessions {
		session := domain.ReconstituteSession(
			data.id, data.userID, data.name,
			data.startTime, data.endTime, data.activities,
			data.status, data.pausedAt, data.totalPaused,
			data.dirty, data.updatedAt,
		)
		require.NoError(b.t, sessionRepo.Save(session))
	}

	logRepo := b.db.DailyLogRepository()
	for _, data := range b.logs {
		log := domain.ReconstituteDailyLog(
			data.date, data.meals, data.bodyweight, data.goals,
			data.dirty, data.updatedAt,
		)
		require.NoError(b.t, logRepo.Save(log))
	}

	splitRepo := b.db.SplitRepository()
	for _, data := range b.splits {
		assignment := domain.ReconstituteSplitAssignment(
			data.weekStart, data.split, data.customPlans,
			data.dirty, data.updatedAt,
		)
		require.NoError(b.t, splitRepo.Save(assignment))
	}
}

// FixedTime is the reference instant fixtures default to.
var FixedTime = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
