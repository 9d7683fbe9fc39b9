package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fitna/fitna/internal/workout/domain"
)

// SessionModel represents the database row for the sessions table.
// Time values are epoch milliseconds to keep the precision the domain uses.
type SessionModel struct {
	ID            string
	UserID        string
	Name          string
	StartTime     int64
	EndTime       *int64
	Status        string
	PausedAt      *int64
	TotalPausedMs int64
	Activities    string // JSON encoded
	Dirty         bool
	UpdatedAt     int64
}

// toSessionModel converts a domain Session entity to a database SessionModel.
func toSessionModel(s *domain.Session) (*SessionModel, error) {
	activities := s.Activities()
	if activities == nil {
		activities = []domain.Activity{}
	}
	encoded, err := json.Marshal(activities)
	if err != nil {
		return nil, fmt.Errorf("encoding activities: %w", err)
	}

	m := &SessionModel{
		ID:            s.ID(),
		UserID:        s.UserID(),
		Name:          s.Name(),
		StartTime:     s.StartTime().UnixMilli(),
		Status:        string(s.Status()),
		TotalPausedMs: s.TotalPaused().Milliseconds(),
		Activities:    string(encoded),
		Dirty:         s.Dirty(),
		UpdatedAt:     s.UpdatedAt().UnixMilli(),
	}
	if s.EndTime() != nil {
		end := s.EndTime().UnixMilli()
		m.EndTime = &end
	}
	if s.PausedAt() != nil {
		paused := s.PausedAt().UnixMilli()
		m.PausedAt = &paused
	}
	return m, nil
}

// toDomain converts a database SessionModel to a domain Session entity.
func (m *SessionModel) toDomain() (*domain.Session, error) {
	var activities []domain.Activity
	if m.Activities != "" {
		if err := json.Unmarshal([]byte(m.Activities), &activities); err != nil {
			return nil, fmt.Errorf("decoding activities for session %s: %w", m.ID, err)
		}
	}

	var endTime *time.Time
	if m.EndTime != nil {
		t := time.UnixMilli(*m.EndTime)
		endTime = &t
	}
	var pausedAt *time.Time
	if m.PausedAt != nil {
		t := time.UnixMilli(*m.PausedAt)
		pausedAt = &t
	}

	return domain.ReconstituteSession(
		m.ID,
		m.UserID,
		m.Name,
		time.UnixMilli(m.StartTime),
		endTime,
		activities,
		domain.SessionStatus(m.Status),
		pausedAt,
		time.Duration(m.TotalPausedMs)*time.Millisecond,
		m.Dirty,
		time.UnixMilli(m.UpdatedAt),
	), nil
}

// DailyLogModel represents the database row for the daily_logs table.
type DailyLogModel struct {
	Date       string
	Meals      string // JSON encoded
	Bodyweight *float64
	Goals      string // JSON encoded
	Dirty      bool
	UpdatedAt  int64
}

func toDailyLogModel(l *domain.DailyLog) (*DailyLogModel, error) {
	meals, err := json.Marshal(l.Meals())
	if err != nil {
		return nil, fmt.Errorf("encoding meals: %w", err)
	}
	goals, err := json.Marshal(l.Goals())
	if err != nil {
		return nil, fmt.Errorf("encoding goals: %w", err)
	}
	return &DailyLogModel{
		Date:       l.Date(),
		Meals:      string(meals),
		Bodyweight: l.Bodyweight(),
		Goals:      string(goals),
		Dirty:      l.Dirty(),
		UpdatedAt:  l.UpdatedAt().UnixMilli(),
	}, nil
}

func (m *DailyLogModel) toDomain() (*domain.DailyLog, error) {
	var meals []domain.Meal
	if err := json.Unmarshal([]byte(m.Meals), &meals); err != nil {
		return nil, fmt.Errorf("decoding meals for %s: %w", m.Date, err)
	}
	var goals domain.NutritionGoals
	if err := json.Unmarshal([]byte(m.Goals), &goals); err != nil {
		return nil, fmt.Errorf("decoding goals for %s: %w", m.Date, err)
	}
	return domain.ReconstituteDailyLog(
		m.Date,
		meals,
		m.Bodyweight,
		goals,
		m.Dirty,
		time.UnixMilli(m.UpdatedAt),
	), nil
}

// SplitModel represents the database row for the split_assignments table.
type SplitModel struct {
	WeekStart   string
	SplitType   string
	CustomPlans *string // JSON encoded, nullable
	Dirty       bool
	UpdatedAt   int64
}

func toSplitModel(a *domain.SplitAssignment) (*SplitModel, error) {
	m := &SplitModel{
		WeekStart: a.WeekStart(),
		SplitType: string(a.Split()),
		Dirty:     a.Dirty(),
		UpdatedAt: a.UpdatedAt().UnixMilli(),
	}
	if plans := a.CustomPlans(); len(plans) > 0 {
		encoded, err := json.Marshal(plans)
		if err != nil {
			return nil, fmt.Errorf("encoding custom plans: %w", err)
		}
		s := string(encoded)
		m.CustomPlans = &s
	}
	return m, nil
}

func (m *SplitModel) toDomain() (*domain.SplitAssignment, error) {
	var plans []domain.DayPlan
	if m.CustomPlans != nil {
		if err := json.Unmarshal([]byte(*m.CustomPlans), &plans); err != nil {
			return nil, fmt.Errorf("decoding custom plans for week %s: %w", m.WeekStart, err)
		}
	}
	return domain.ReconstituteSplitAssignment(
		m.WeekStart,
		domain.SplitType(m.SplitType),
		plans,
		m.Dirty,
		time.UnixMilli(m.UpdatedAt),
	), nil
}
