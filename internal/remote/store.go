// Package remote talks to the shared relational backend. The local store is
// the source of truth; everything here is reconciliation traffic.
package remote

import (
	"context"
	"time"

	"github.com/fitna/fitna/internal/workout/domain"
)

// SessionRecord is a workout session in the remote schema.
type SessionRecord struct {
	ID            string
	UserID        string
	Name          string
	StartTime     time.Time
	EndTime       *time.Time
	Status        string
	PausedAt      *time.Time
	TotalPausedMs int64
	Activities    []domain.Activity
	UpdatedAt     time.Time
}

// NewSessionRecord translates a domain session for upload.
func NewSessionRecord(s *domain.Session) SessionRecord {
	return SessionRecord{
		ID:            s.ID(),
		UserID:        s.UserID(),
		Name:          s.Name(),
		StartTime:     s.StartTime(),
		EndTime:       s.EndTime(),
		Status:        string(s.Status()),
		PausedAt:      s.PausedAt(),
		TotalPausedMs: s.TotalPaused().Milliseconds(),
		Activities:    s.Activities(),
		UpdatedAt:     s.UpdatedAt(),
	}
}

// ToDomain reconstructs the session. Pulled rows come back clean.
func (r SessionRecord) ToDomain() *domain.Session {
	return domain.ReconstituteSession(
		r.ID, r.UserID, r.Name,
		r.StartTime, r.EndTime, r.Activities,
		domain.SessionStatus(r.Status), r.PausedAt,
		time.Duration(r.TotalPausedMs)*time.Millisecond,
		false, r.UpdatedAt,
	)
}

// DailyLogRecord is a nutrition log in the remote schema.
type DailyLogRecord struct {
	UserID     string
	Date       string
	Meals      []domain.Meal
	Bodyweight *float64
	Goals      domain.NutritionGoals
	UpdatedAt  time.Time
}

// NewDailyLogRecord translates a domain daily log for upload.
func NewDailyLogRecord(userID string, l *domain.DailyLog) DailyLogRecord {
	return DailyLogRecord{
		UserID:     userID,
		Date:       l.Date(),
		Meals:      l.Meals(),
		Bodyweight: l.Bodyweight(),
		Goals:      l.Goals(),
		UpdatedAt:  l.UpdatedAt(),
	}
}

// ToDomain reconstructs the daily log. Pulled rows come back clean.
func (r DailyLogRecord) ToDomain() *domain.DailyLog {
	return domain.ReconstituteDailyLog(r.Date, r.Meals, r.Bodyweight, r.Goals, false, r.UpdatedAt)
}

// SplitRecord is a weekly split assignment in the remote schema.
type SplitRecord struct {
	UserID      string
	WeekStart   string
	SplitType   string
	CustomPlans []domain.DayPlan
	UpdatedAt   time.Time
}

// NewSplitRecord translates a domain split assignment for upload.
func NewSplitRecord(userID string, a *domain.SplitAssignment) SplitRecord {
	return SplitRecord{
		UserID:      userID,
		WeekStart:   a.WeekStart(),
		SplitType:   string(a.Split()),
		CustomPlans: a.CustomPlans(),
		UpdatedAt:   a.UpdatedAt(),
	}
}

// ToDomain reconstructs the split assignment. Pulled rows come back clean.
func (r SplitRecord) ToDomain() *domain.SplitAssignment {
	return domain.ReconstituteSplitAssignment(r.WeekStart, domain.SplitType(r.SplitType), r.CustomPlans, false, r.UpdatedAt)
}

// UserProfile is the remote-only user record, saved synchronously from the
// onboarding and settings flows.
type UserProfile struct {
	ID          string
	Email       string
	FullName    string
	Onboarded   bool
	SquatMax    *float64
	BenchMax    *float64
	DeadliftMax *float64
	Bodyweight  *float64
	UpdatedAt   time.Time
}

// Store is the remote backend the sync engine reconciles against. Upserts
// are batched and idempotent: retrying a batch, or re-sending rows that
// already landed, is always safe.
type Store interface {
	Ping(ctx context.Context) error

	UpsertSessions(ctx context.Context, records []SessionRecord) error
	UpsertDailyLogs(ctx context.Context, records []DailyLogRecord) error
	UpsertSplitAssignments(ctx context.Context, records []SplitRecord) error

	SessionsByUser(ctx context.Context, userID string) ([]SessionRecord, error)
	DailyLogsByUser(ctx context.Context, userID string) ([]DailyLogRecord, error)
	SplitAssignmentsByUser(ctx context.Context, userID string) ([]SplitRecord, error)

	DeleteSession(ctx context.Context, id string) error
	SaveProfile(ctx context.Context, profile UserProfile) error
}
