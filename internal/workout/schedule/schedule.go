// Package schedule resolves which training split applies to a given week.
// Assignments are sparse; weeks without one inherit the most recent earlier
// assignment, up to a year back, before falling through to the default.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fitna/fitna/internal/cachemanager"
	"github.com/fitna/fitna/internal/log"
	"github.com/fitna/fitna/internal/workout/domain"
)

// maxCarryForwardWeeks bounds the backscan for an inherited assignment.
const maxCarryForwardWeeks = 52

// resolutionTTL is how long a resolved week stays cached.
const resolutionTTL = 10 * time.Minute

// Notifier receives a nudge after every persisted mutation.
type Notifier interface {
	Notify()
}

// Resolution is the effective plan for one week.
type Resolution struct {
	WeekStart   string
	Split       domain.SplitType
	Plans       []domain.DayPlan
	CarriedOver bool
}

// Scheduler answers "what split is this week" and records assignments.
type Scheduler struct {
	repo     domain.SplitRepository
	cache    cachemanager.CacheManager[string, Resolution]
	resolver *cachemanager.ReadThroughCache[string, Resolution, string]
	notifier Notifier
	now      func() time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithNotifier sets the sync notifier nudged after each mutation.
func WithNotifier(n Notifier) Option {
	return func(s *Scheduler) { s.notifier = n }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// New creates a Scheduler backed by the given repository.
func New(repo domain.SplitRepository, opts ...Option) *Scheduler {
	s := &Scheduler{
		repo:  repo,
		cache: cachemanager.NewInMemoryCacheManager[Resolution]("schedule", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resolver = cachemanager.NewReadThroughCache[string, Resolution, string](
		s.cache,
		func(ctx context.Context, weekStart string) (Resolution, error) {
			return s.resolve(weekStart)
		},
		false,
	)
	return s
}

// Resolve returns the effective plan for the week containing t.
func (s *Scheduler) Resolve(ctx context.Context, t time.Time) (Resolution, error) {
	return s.resolver.Get(ctx, domain.WeekKey(t), domain.WeekKey(t), resolutionTTL)
}

// ResolveWeek returns the effective plan for an explicit week start key.
func (s *Scheduler) ResolveWeek(ctx context.Context, weekStart string) (Resolution, error) {
	return s.resolver.Get(ctx, weekStart, weekStart, resolutionTTL)
}

func (s *Scheduler) resolve(weekStart string) (Resolution, error) {
	start, err := time.ParseInLocation("2006-01-02", weekStart, time.Local)
	if err != nil {
		return Resolution{}, fmt.Errorf("invalid week start %q: %w", weekStart, err)
	}

	for back := 0; back <= maxCarryForwardWeeks; back++ {
		key := domain.WeekKey(start.AddDate(0, 0, -7*back))
		assignment, err := s.repo.FindByWeek(key)
		if err != nil {
			var notFound *domain.AssignmentNotFoundError
			if errors.As(err, &notFound) {
				continue
			}
			return Resolution{}, err
		}
		if back > 0 {
			log.Debug(log.CatSched, "carried split forward", "week", weekStart, "from", key)
		}
		return Resolution{
			WeekStart:   weekStart,
			Split:       assignment.Split(),
			Plans:       plansFor(assignment),
			CarriedOver: back > 0,
		}, nil
	}

	return Resolution{
		WeekStart: weekStart,
		Split:     domain.SplitPPL,
		Plans:     DefaultWeek(domain.SplitPPL),
	}, nil
}

// plansFor prefers the assignment's custom plans over the generated week.
func plansFor(a *domain.SplitAssignment) []domain.DayPlan {
	if plans := a.CustomPlans(); len(plans) > 0 {
		return plans
	}
	return DefaultWeek(a.Split())
}

// Assign pins a split to the week containing t.
func (s *Scheduler) Assign(ctx context.Context, t time.Time, split domain.SplitType, customPlans []domain.DayPlan) (*domain.SplitAssignment, error) {
	if !split.IsValid() {
		return nil, fmt.Errorf("unknown split type %q", split)
	}

	weekStart := domain.WeekKey(t)
	assignment := domain.NewSplitAssignment(weekStart, split, customPlans, s.now())
	if err := s.repo.Save(assignment); err != nil {
		return nil, fmt.Errorf("failed to save split assignment: %w", err)
	}

	// Resolutions downstream of this week may now be stale.
	if err := s.cache.Flush(ctx); err != nil {
		log.Warn(log.CatSched, "failed to flush resolution cache", "error", err)
	}
	if s.notifier != nil {
		s.notifier.Notify()
	}
	log.Info(log.CatSched, "split assigned", "week", weekStart, "split", split)
	return assignment, nil
}

// FlushCache drops all cached resolutions. Used by the sign-out wipe.
func (s *Scheduler) FlushCache(ctx context.Context) error {
	return s.cache.Flush(ctx)
}

// DefaultWeek returns the generated seven day plan for a split.
func DefaultWeek(split domain.SplitType) []domain.DayPlan {
	switch split {
	case domain.SplitPPL:
		return []domain.DayPlan{
			{Day: 1, Focus: "Push", Exercises: []string{"Bench Press", "Overhead Press", "Tricep Extension"}},
			{Day: 2, Focus: "Pull", Exercises: []string{"Deadlift", "Pull-ups", "Bicep Curls"}},
			{Day: 3, Focus: "Legs", Exercises: []string{"Squats", "Leg Press", "Calf Raises"}},
			{Day: 4, Focus: "Rest", Exercises: []string{}},
			{Day: 5, Focus: "Push", Exercises: []string{"Incline DB Press", "Lateral Raises", "Dips"}},
			{Day: 6, Focus: "Pull", Exercises: []string{"Barbell Row", "Lat Pulldown", "Face Pulls"}},
			{Day: 7, Focus: "Legs", Exercises: []string{"Romanian Deadlift", "Leg Extensions", "Hamstring Curls"}},
		}
	case domain.SplitUpperLower:
		return []domain.DayPlan{
			{Day: 1, Focus: "Upper", Exercises: []string{"Bench Press", "Rows", "Shoulder Press"}},
			{Day: 2, Focus: "Lower", Exercises: []string{"Squats", "RDLs", "Calves"}},
			{Day: 3, Focus: "Rest", Exercises: []string{}},
			{Day: 4, Focus: "Upper", Exercises: []string{"Pull-ups", "Incline Press", "Arms"}},
			{Day: 5, Focus: "Lower", Exercises: []string{"Deadlift", "Leg Press", "Hamstrings"}},
			{Day: 6, Focus: "Rest", Exercises: []string{}},
			{Day: 7, Focus: "Rest", Exercises: []string{}},
		}
	default:
		return []domain.DayPlan{
			{Day: 1, Focus: "Full Body A", Exercises: []string{"Squat", "Bench Press", "Barbell Row"}},
			{Day: 2, Focus: "Rest", Exercises: []string{}},
			{Day: 3, Focus: "Full Body B", Exercises: []string{"Deadlift", "Overhead Press", "Pull-ups"}},
			{Day: 4, Focus: "Rest", Exercises: []string{}},
			{Day: 5, Focus: "Full Body A", Exercises: []string{"Front Squat", "Incline Press", "Cable Rows"}},
			{Day: 6, Focus: "Rest", Exercises: []string{}},
			{Day: 7, Focus: "Rest", Exercises: []string{}},
		}
	}
}
