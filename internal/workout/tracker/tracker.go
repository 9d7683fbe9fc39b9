// Package tracker owns the live workout session. At most one session is
// active at a time; every transition is persisted to the local store before
// the call returns.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fitna/fitna/internal/log"
	"github.com/fitna/fitna/internal/workout/domain"
)

// RemoteDeleter performs the best-effort remote removal on session deletes.
type RemoteDeleter interface {
	DeleteSession(ctx context.Context, id string) error
}

// Notifier receives a nudge after every persisted mutation so a sync pass
// can be scheduled.
type Notifier interface {
	Notify()
}

// Tracker is the session state machine. All operations serialize on an
// internal mutex and write through to the repository.
type Tracker struct {
	mu       sync.Mutex
	repo     domain.SessionRepository
	remote   RemoteDeleter
	notifier Notifier
	now      func() time.Time

	// current holds the live session, or a restored historical record
	// while it is being edited.
	current *domain.Session
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithRemote sets the remote deleter used by DeleteSession.
func WithRemote(r RemoteDeleter) Option {
	return func(t *Tracker) { t.remote = r }
}

// WithNotifier sets the sync notifier nudged after each mutation.
func WithNotifier(n Notifier) Option {
	return func(t *Tracker) { t.notifier = n }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New creates a Tracker backed by the given repository.
func New(repo domain.SessionRepository, opts ...Option) *Tracker {
	t := &Tracker{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// StartSession begins a new workout. Any open session found in the store is
// first closed by stamping its end time, so a crash that left a dangling
// active never produces two live sessions. A start time on a calendar day
// before today creates an already-completed historical session with a
// one hour default duration.
func (t *Tracker) StartSession(userID, name string, startOverride *time.Time, initial []domain.Activity) (*domain.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()

	if err := t.closeDangling(now); err != nil {
		return nil, err
	}

	start := now
	if startOverride != nil {
		start = *startOverride
	}

	session := domain.NewSession(uuid.NewString(), userID, name, start)
	for _, a := range initial {
		session.AddActivity(a, start)
	}

	if startOverride != nil && calendarDay(start).Before(calendarDay(now)) {
		// Back-dated historical log. Stamp a default duration and never
		// treat it as the live session.
		session.SetEndTime(start.Add(time.Hour), now)
		if err := t.persist(session); err != nil {
			return nil, err
		}
		log.Info(log.CatSession, "back-dated session logged", "id", session.ID(), "start", start.Format("2006-01-02"))
		return session, nil
	}

	if err := t.persist(session); err != nil {
		return nil, err
	}
	t.current = session
	log.Info(log.CatSession, "session started", "id", session.ID(), "name", name)
	return session, nil
}

// closeDangling stamps an end time on every open session left in the store.
func (t *Tracker) closeDangling(now time.Time) error {
	open, err := t.repo.ListOpen()
	if err != nil {
		return fmt.Errorf("failed to check for open sessions: %w", err)
	}
	for _, stale := range open {
		stale.Complete(now)
		if err := t.persist(stale); err != nil {
			return err
		}
		log.Warn(log.CatSession, "closed dangling session", "id", stale.ID())
	}
	if t.current != nil && !t.current.IsCompleted() {
		t.current = nil
	}
	return nil
}

// Current returns the session in the live/editing slot, or nil.
func (t *Tracker) Current() *domain.Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// LoadActive restores the open session from the store into the live slot,
// for process restarts mid-workout. Returns NoActiveSessionError when the
// store holds no open session.
func (t *Tracker) LoadActive() (*domain.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	open, err := t.repo.ListOpen()
	if err != nil {
		return nil, fmt.Errorf("failed to load active session: %w", err)
	}
	if len(open) == 0 {
		return nil, &domain.NoActiveSessionError{}
	}
	t.current = open[0]
	return t.current, nil
}

// Pause suspends the live session. Pausing an already paused session is a
// no-op.
func (t *Tracker) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	session, err := t.live()
	if err != nil {
		return err
	}
	session.Pause(t.now())
	if err := t.persist(session); err != nil {
		return err
	}
	log.Debug(log.CatSession, "session paused", "id", session.ID())
	return nil
}

// Resume continues a paused session, folding the open pause interval into
// the accumulated pause total. Resuming a session that is not paused is a
// no-op.
func (t *Tracker) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	session, err := t.live()
	if err != nil {
		return err
	}
	session.Resume(t.now())
	if err := t.persist(session); err != nil {
		return err
	}
	log.Debug(log.CatSession, "session resumed", "id", session.ID(), "total_paused", session.TotalPaused())
	return nil
}

// EndSession completes the live session and clears the live slot. An end
// time already present, from a historical edit, is never re-stamped.
func (t *Tracker) EndSession() (*domain.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	session, err := t.live()
	if err != nil {
		return nil, err
	}
	session.Complete(t.now())
	if err := t.persist(session); err != nil {
		return nil, err
	}
	t.current = nil
	log.Info(log.CatSession, "session ended", "id", session.ID(), "active", session.ActiveElapsed(t.now()))
	return session, nil
}

// AddActivity appends an activity to the session in the slot.
func (t *Tracker) AddActivity(a domain.Activity) error {
	return t.mutate(func(s *domain.Session, now time.Time) {
		s.AddActivity(a, now)
	})
}

// RemoveActivity removes an activity by id. Unknown ids are a no-op.
func (t *Tracker) RemoveActivity(activityID string) error {
	return t.mutate(func(s *domain.Session, now time.Time) {
		s.RemoveActivity(activityID, now)
	})
}

// UpdateActivity replaces the activity with a matching id.
func (t *Tracker) UpdateActivity(a domain.Activity) error {
	return t.mutate(func(s *domain.Session, now time.Time) {
		s.UpdateActivity(a, now)
	})
}

// Rename updates the display name of the session in the slot.
func (t *Tracker) Rename(name string) error {
	return t.mutate(func(s *domain.Session, now time.Time) {
		s.SetName(name, now)
	})
}

// UpdateStartTime edits the start time of the session in the slot.
// Accumulated pause time is left untouched.
func (t *Tracker) UpdateStartTime(start time.Time) error {
	return t.mutate(func(s *domain.Session, now time.Time) {
		s.SetStartTime(start, now)
	})
}

// UpdateEndTime edits the end time of the session in the slot.
// Accumulated pause time is left untouched.
func (t *Tracker) UpdateEndTime(end time.Time) error {
	return t.mutate(func(s *domain.Session, now time.Time) {
		s.SetEndTime(end, now)
	})
}

// Restore loads a historical record into the editing slot so past sessions
// can be corrected with the same mutation operations.
func (t *Tracker) Restore(id string) (*domain.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	session, err := t.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	t.current = session
	return session, nil
}

// DeleteSession removes a session. The remote delete is attempted first but
// is best effort; the local delete always proceeds and decides the outcome.
func (t *Tracker) DeleteSession(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.remote != nil {
		if err := t.remote.DeleteSession(ctx, id); err != nil {
			log.Warn(log.CatSession, "remote delete failed, continuing with local delete", "id", id, "error", err)
		}
	}

	if err := t.repo.Delete(id); err != nil {
		return err
	}
	if t.current != nil && t.current.ID() == id {
		t.current = nil
	}
	t.notify()
	log.Info(log.CatSession, "session deleted", "id", id)
	return nil
}

// live returns the session in the slot, which may be a restored historical
// record under edit.
func (t *Tracker) live() (*domain.Session, error) {
	if t.current == nil {
		return nil, &domain.NoActiveSessionError{}
	}
	return t.current, nil
}

func (t *Tracker) mutate(fn func(*domain.Session, time.Time)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	session, err := t.live()
	if err != nil {
		return err
	}
	fn(session, t.now())
	return t.persist(session)
}

func (t *Tracker) persist(session *domain.Session) error {
	if err := t.repo.Save(session); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	t.notify()
	return nil
}

func (t *Tracker) notify() {
	if t.notifier != nil {
		t.notifier.Notify()
	}
}

// calendarDay truncates an instant to its local calendar day.
func calendarDay(t time.Time) time.Time {
	year, month, day := t.Local().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}
