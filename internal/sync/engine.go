// Package sync reconciles the local store with the remote backend. The
// local store is always the source of truth for the running app; this
// engine pushes dirty records opportunistically, pulls wholesale on
// sign-in, and wipes everything on sign-out.
package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/fitna/fitna/internal/log"
	"github.com/fitna/fitna/internal/pubsub"
	"github.com/fitna/fitna/internal/remote"
	"github.com/fitna/fitna/internal/tracing"
	"github.com/fitna/fitna/internal/workout/domain"
)

// DefaultDebounce coalesces bursts of mutation nudges into one push pass.
const DefaultDebounce = 2 * time.Second

// CacheFlusher is anything holding derived per-user state that must go
// when the local data goes.
type CacheFlusher interface {
	FlushCache(ctx context.Context) error
}

// Engine runs the reconciliation passes. Push and pull serialize on one
// mutex so they never interleave.
type Engine struct {
	mu       gosync.Mutex
	sessions domain.SessionRepository
	logs     domain.DailyLogRepository
	splits   domain.SplitRepository
	store    remote.Store
	auth     remote.AuthProvider
	caches   []CacheFlusher
	tracer   trace.Tracer
	debounce time.Duration
	notifyCh chan struct{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithDebounce overrides the nudge coalescing window.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) { e.debounce = d }
}

// WithTracer sets the tracer for push/pull spans.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// WithCacheFlusher registers a cache to flush on the sign-out wipe.
func WithCacheFlusher(c CacheFlusher) Option {
	return func(e *Engine) { e.caches = append(e.caches, c) }
}

// New creates an Engine over the three local repositories and the remote
// store.
func New(
	sessions domain.SessionRepository,
	logs domain.DailyLogRepository,
	splits domain.SplitRepository,
	store remote.Store,
	auth remote.AuthProvider,
	opts ...Option,
) *Engine {
	e := &Engine{
		sessions: sessions,
		logs:     logs,
		splits:   splits,
		store:    store,
		auth:     auth,
		tracer:   noop.NewTracerProvider().Tracer("noop"),
		debounce: DefaultDebounce,
		notifyCh: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Notify schedules a push pass. Fire-and-forget; bursts coalesce behind
// the debounce window in Run.
func (e *Engine) Notify() {
	select {
	case e.notifyCh <- struct{}{}:
	default:
	}
}

// Run drives the engine until ctx is done: debounced pushes on Notify,
// pull-then-push on sign-in, wipe on sign-out.
func (e *Engine) Run(ctx context.Context, authEvents <-chan pubsub.Event[string]) {
	var (
		timer   *time.Timer
		pending bool
	)

	for {
		select {
		case <-e.notifyCh:
			if timer == nil {
				timer = time.NewTimer(e.debounce)
				pending = true
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(e.debounce)
				pending = true
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if pending {
				e.PushPending(ctx)
				pending = false
			}

		case event, ok := <-authEvents:
			if !ok {
				return
			}
			switch event.Type {
			case pubsub.SignedInEvent:
				if err := e.PullOnSignIn(ctx, event.Payload); err != nil {
					log.ErrorErr(log.CatSync, "pull on sign-in failed", err, "user", event.Payload)
				}
				e.PushPending(ctx)
			case pubsub.SignedOutEvent:
				if err := e.ClearAllLocalData(ctx); err != nil {
					log.ErrorErr(log.CatSync, "sign-out wipe incomplete", err)
				}
			}

		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// PushPending uploads all dirty records. Offline or signed-out it is a
// silent no-op. Each entity type pushes independently; a failure in one
// leaves its records dirty for the next trigger and never blocks the
// others.
func (e *Engine) PushPending(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	userID, ok := e.auth.CurrentUser()
	if !ok {
		log.Debug(log.CatSync, "push skipped, signed out")
		return
	}
	if err := e.store.Ping(ctx); err != nil {
		log.Debug(log.CatSync, "push skipped, remote unreachable", "error", err)
		return
	}

	ctx, span := e.tracer.Start(ctx, tracing.SpanPush,
		trace.WithAttributes(attribute.String(tracing.AttrUserID, userID)))
	defer span.End()

	e.pushSessions(ctx)
	e.pushDailyLogs(ctx, userID)
	e.pushSplits(ctx, userID)
}

func (e *Engine) pushSessions(ctx context.Context) {
	dirty, err := e.sessions.ListDirty()
	if err != nil {
		log.ErrorErr(log.CatSync, "failed to list dirty sessions", err)
		return
	}
	if len(dirty) == 0 {
		return
	}

	records := make([]remote.SessionRecord, len(dirty))
	ids := make([]string, len(dirty))
	for i, s := range dirty {
		records[i] = remote.NewSessionRecord(s)
		ids[i] = s.ID()
	}

	if err := e.store.UpsertSessions(ctx, records); err != nil {
		log.Warn(log.CatSync, "session push rejected, will retry on next trigger", "count", len(ids), "error", err)
		return
	}
	// Only now is it safe to stop re-sending these rows. A crash before
	// this line costs a redundant re-push, never data.
	if err := e.sessions.MarkSynced(ids); err != nil {
		log.ErrorErr(log.CatSync, "failed to mark sessions synced", err)
		return
	}
	log.Info(log.CatSync, "sessions pushed", "count", len(ids))
}

func (e *Engine) pushDailyLogs(ctx context.Context, userID string) {
	dirty, err := e.logs.ListDirty()
	if err != nil {
		log.ErrorErr(log.CatSync, "failed to list dirty daily logs", err)
		return
	}
	if len(dirty) == 0 {
		return
	}

	records := make([]remote.DailyLogRecord, len(dirty))
	dates := make([]string, len(dirty))
	for i, l := range dirty {
		records[i] = remote.NewDailyLogRecord(userID, l)
		dates[i] = l.Date()
	}

	if err := e.store.UpsertDailyLogs(ctx, records); err != nil {
		log.Warn(log.CatSync, "daily log push rejected, will retry on next trigger", "count", len(dates), "error", err)
		return
	}
	if err := e.logs.MarkSynced(dates); err != nil {
		log.ErrorErr(log.CatSync, "failed to mark daily logs synced", err)
		return
	}
	log.Info(log.CatSync, "daily logs pushed", "count", len(dates))
}

func (e *Engine) pushSplits(ctx context.Context, userID string) {
	dirty, err := e.splits.ListDirty()
	if err != nil {
		log.ErrorErr(log.CatSync, "failed to list dirty split assignments", err)
		return
	}
	if len(dirty) == 0 {
		return
	}

	records := make([]remote.SplitRecord, len(dirty))
	weeks := make([]string, len(dirty))
	for i, a := range dirty {
		records[i] = remote.NewSplitRecord(userID, a)
		weeks[i] = a.WeekStart()
	}

	if err := e.store.UpsertSplitAssignments(ctx, records); err != nil {
		log.Warn(log.CatSync, "split push rejected, will retry on next trigger", "count", len(weeks), "error", err)
		return
	}
	if err := e.splits.MarkSynced(weeks); err != nil {
		log.ErrorErr(log.CatSync, "failed to mark split assignments synced", err)
		return
	}
	log.Info(log.CatSync, "split assignments pushed", "count", len(weeks))
}

// PullOnSignIn fetches the user's remote records and writes them over the
// local copies, clean. Remote wins wholesale here: a fresh sign-in means
// the device is attaching to an existing account, so there is no merge.
func (e *Engine) PullOnSignIn(ctx context.Context, userID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, span := e.tracer.Start(ctx, tracing.SpanPull,
		trace.WithAttributes(attribute.String(tracing.AttrUserID, userID)))
	defer span.End()

	var errs []error

	sessions, err := e.store.SessionsByUser(ctx, userID)
	if err != nil {
		errs = append(errs, fmt.Errorf("pull sessions: %w", err))
	} else {
		for _, r := range sessions {
			if err := e.sessions.Save(r.ToDomain()); err != nil {
				errs = append(errs, fmt.Errorf("store pulled session %s: %w", r.ID, err))
			}
		}
		log.Info(log.CatSync, "sessions pulled", "count", len(sessions))
	}

	logs, err := e.store.DailyLogsByUser(ctx, userID)
	if err != nil {
		errs = append(errs, fmt.Errorf("pull daily logs: %w", err))
	} else {
		for _, r := range logs {
			if err := e.logs.Save(r.ToDomain()); err != nil {
				errs = append(errs, fmt.Errorf("store pulled log %s: %w", r.Date, err))
			}
		}
		log.Info(log.CatSync, "daily logs pulled", "count", len(logs))
	}

	splits, err := e.store.SplitAssignmentsByUser(ctx, userID)
	if err != nil {
		errs = append(errs, fmt.Errorf("pull split assignments: %w", err))
	} else {
		for _, r := range splits {
			if err := e.splits.Save(r.ToDomain()); err != nil {
				errs = append(errs, fmt.Errorf("store pulled split %s: %w", r.WeekStart, err))
			}
		}
		log.Info(log.CatSync, "split assignments pulled", "count", len(splits))
	}

	// Flush derived caches so resolutions reflect the pulled rows.
	for _, c := range e.caches {
		if err := c.FlushCache(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush cache: %w", err))
		}
	}

	return errors.Join(errs...)
}

// ClearAllLocalData wipes every table and registered cache. Runs on
// sign-out; a partial wipe would leak one user's records into the next
// session, so every step is attempted even after a failure.
func (e *Engine) ClearAllLocalData(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, span := e.tracer.Start(ctx, tracing.SpanWipe)
	defer span.End()

	var errs []error
	if err := e.sessions.DeleteAll(); err != nil {
		errs = append(errs, fmt.Errorf("wipe sessions: %w", err))
	}
	if err := e.logs.DeleteAll(); err != nil {
		errs = append(errs, fmt.Errorf("wipe daily logs: %w", err))
	}
	if err := e.splits.DeleteAll(); err != nil {
		errs = append(errs, fmt.Errorf("wipe split assignments: %w", err))
	}
	for _, c := range e.caches {
		if err := c.FlushCache(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush cache: %w", err))
		}
	}

	if len(errs) == 0 {
		log.Info(log.CatSync, "local data cleared")
	}
	return errors.Join(errs...)
}
