// Package logbook manages daily nutrition and bodyweight records. A day's
// log does not exist until something reads or writes it; the first access
// materializes the default template and persists it.
package logbook

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fitna/fitna/internal/log"
	"github.com/fitna/fitna/internal/workout/domain"
)

// Notifier receives a nudge after every persisted mutation.
type Notifier interface {
	Notify()
}

// Logbook provides serialized access to daily logs.
type Logbook struct {
	mu       sync.Mutex
	repo     domain.DailyLogRepository
	notifier Notifier
	now      func() time.Time
}

// Option configures a Logbook.
type Option func(*Logbook)

// WithNotifier sets the sync notifier nudged after each mutation.
func WithNotifier(n Notifier) Option {
	return func(l *Logbook) { l.notifier = n }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Logbook) { l.now = now }
}

// New creates a Logbook backed by the given repository.
func New(repo domain.DailyLogRepository, opts ...Option) *Logbook {
	l := &Logbook{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Get returns the log for a YYYY-MM-DD date, creating and persisting the
// default template on first access.
func (l *Logbook) Get(date string) (*domain.DailyLog, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.getOrCreate(date)
}

// Today returns the log for the current local calendar day.
func (l *Logbook) Today() (*domain.DailyLog, error) {
	return l.Get(l.now().Local().Format("2006-01-02"))
}

// AddFood appends a food item to the given meal bucket, assigning it an id.
// The stored item is returned.
func (l *Logbook) AddFood(date string, meal domain.MealType, item domain.FoodItem) (domain.FoodItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	dayLog, err := l.getOrCreate(date)
	if err != nil {
		return domain.FoodItem{}, err
	}

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	dayLog.AddFoodItem(meal, item, l.now())
	if err := l.persist(dayLog); err != nil {
		return domain.FoodItem{}, err
	}
	log.Debug(log.CatLogbook, "food logged", "date", date, "meal", meal, "name", item.Name)
	return item, nil
}

// RemoveFood removes a food item from the given meal bucket. Unknown ids
// are a no-op.
func (l *Logbook) RemoveFood(date string, meal domain.MealType, itemID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	dayLog, err := l.getOrCreate(date)
	if err != nil {
		return err
	}
	dayLog.RemoveFoodItem(meal, itemID, l.now())
	return l.persist(dayLog)
}

// SetBodyweight records the day's bodyweight.
func (l *Logbook) SetBodyweight(date string, weight float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	dayLog, err := l.getOrCreate(date)
	if err != nil {
		return err
	}
	dayLog.SetBodyweight(weight, l.now())
	if err := l.persist(dayLog); err != nil {
		return err
	}
	log.Debug(log.CatLogbook, "bodyweight recorded", "date", date, "weight", weight)
	return nil
}

// SetGoals replaces the day's nutrition goals.
func (l *Logbook) SetGoals(date string, goals domain.NutritionGoals) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	dayLog, err := l.getOrCreate(date)
	if err != nil {
		return err
	}
	dayLog.SetGoals(goals, l.now())
	return l.persist(dayLog)
}

func (l *Logbook) getOrCreate(date string) (*domain.DailyLog, error) {
	dayLog, err := l.repo.FindByDate(date)
	if err == nil {
		return dayLog, nil
	}

	var notFound *domain.LogNotFoundError
	if !errors.As(err, &notFound) {
		return nil, fmt.Errorf("failed to load daily log: %w", err)
	}

	dayLog = domain.NewDailyLog(date, l.now())
	if err := l.persist(dayLog); err != nil {
		return nil, err
	}
	log.Debug(log.CatLogbook, "daily log materialized", "date", date)
	return dayLog, nil
}

func (l *Logbook) persist(dayLog *domain.DailyLog) error {
	if err := l.repo.Save(dayLog); err != nil {
		return fmt.Errorf("failed to persist daily log: %w", err)
	}
	if l.notifier != nil {
		l.notifier.Notify()
	}
	return nil
}
