package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fitna/fitna/internal/testutil"
	"github.com/fitna/fitna/internal/workout/domain"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// countingNotifier records how many times a sync nudge fired.
type countingNotifier struct {
	count int
}

func (n *countingNotifier) Notify() { n.count++ }

// failingRemote always rejects the delete.
type failingRemote struct {
	calls int
}

func (r *failingRemote) DeleteSession(_ context.Context, _ string) error {
	r.calls++
	return errors.New("remote unavailable")
}

// localNoon keeps "earlier today" arithmetic on one calendar day in any
// time zone.
var localNoon = time.Date(2024, 3, 4, 12, 0, 0, 0, time.Local)

func setupTracker(t *testing.T) (*Tracker, domain.SessionRepository, *fakeClock, *countingNotifier) {
	t.Helper()
	db := testutil.NewTestDB(t)
	repo := db.SessionRepository()
	clock := &fakeClock{now: localNoon}
	notifier := &countingNotifier{}
	tr := New(repo, WithClock(clock.Now), WithNotifier(notifier))
	return tr, repo, clock, notifier
}

func TestTracker_StartSession_PersistsImmediately(t *testing.T) {
	tr, repo, _, notifier := setupTracker(t)

	session, err := tr.StartSession("user-1", "Push Day", nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, session.ID())
	require.Equal(t, domain.SessionStatusActive, session.Status())
	require.Nil(t, session.EndTime())
	require.True(t, session.Dirty())

	found, err := repo.FindByID(session.ID())
	require.NoError(t, err)
	require.Equal(t, "Push Day", found.Name())
	require.Equal(t, 1, notifier.count, "Start should fire one sync nudge")
	require.Same(t, session, tr.Current())
}

func TestTracker_StartSession_ClosesDanglingActive(t *testing.T) {
	tr, repo, clock, _ := setupTracker(t)

	first, err := tr.StartSession("user-1", "Push Day", nil, nil)
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)

	second, err := tr.StartSession("user-1", "Pull Day", nil, nil)
	require.NoError(t, err)

	healed, err := repo.FindByID(first.ID())
	require.NoError(t, err)
	require.NotNil(t, healed.EndTime(), "Dangling session should be closed")
	require.Equal(t, clock.Now().UnixMilli(), healed.EndTime().UnixMilli())

	open, err := repo.ListOpen()
	require.NoError(t, err)
	require.Len(t, open, 1, "Exactly one open session after healing")
	require.Equal(t, second.ID(), open[0].ID())
}

func TestTracker_StartSession_BackDatedIsCompleted(t *testing.T) {
	tr, repo, clock, _ := setupTracker(t)

	yesterday := clock.Now().Add(-26 * time.Hour)
	session, err := tr.StartSession("user-1", "Missed Log", &yesterday, nil)
	require.NoError(t, err)

	require.NotNil(t, session.EndTime(), "Back-dated session should be completed on creation")
	require.Equal(t, yesterday.Add(time.Hour).UnixMilli(), session.EndTime().UnixMilli())
	require.Nil(t, tr.Current(), "Back-dated session must not occupy the live slot")

	open, err := repo.ListOpen()
	require.NoError(t, err)
	require.Empty(t, open)
}

func TestTracker_StartSession_TodayOverrideStaysActive(t *testing.T) {
	tr, _, clock, _ := setupTracker(t)

	earlierToday := clock.Now().Add(-2 * time.Hour)
	session, err := tr.StartSession("user-1", "Morning Lift", &earlierToday, nil)
	require.NoError(t, err)
	require.Nil(t, session.EndTime())
	require.Same(t, session, tr.Current())
}

func TestTracker_StartSession_WithInitialActivities(t *testing.T) {
	tr, _, _, _ := setupTracker(t)

	initial := []domain.Activity{
		domain.NewWeightliftingActivity("act-1", "Squat", nil),
	}
	session, err := tr.StartSession("user-1", "Leg Day", nil, initial)
	require.NoError(t, err)
	require.Len(t, session.Activities(), 1)
	require.Equal(t, "Squat", session.Activities()[0].Name)
}

func TestTracker_PauseResumeAccounting(t *testing.T) {
	tr, repo, clock, _ := setupTracker(t)

	session, err := tr.StartSession("user-1", "Push Day", nil, nil)
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	require.NoError(t, tr.Pause())
	require.True(t, session.IsPaused())

	clock.Advance(2 * time.Minute)
	require.NoError(t, tr.Resume())
	require.Equal(t, 2*time.Minute, session.TotalPaused())
	require.Nil(t, session.PausedAt())

	// Pause state must survive the write-through.
	found, err := repo.FindByID(session.ID())
	require.NoError(t, err)
	require.Equal(t, 2*time.Minute, found.TotalPaused())
}

func TestTracker_Pause_NoLiveSession(t *testing.T) {
	tr, _, _, _ := setupTracker(t)

	err := tr.Pause()
	var noActive *domain.NoActiveSessionError
	require.ErrorAs(t, err, &noActive)
}

func TestTracker_EndSession_FullScenario(t *testing.T) {
	tr, repo, clock, _ := setupTracker(t)

	session, err := tr.StartSession("user-1", "Push Day", nil, nil)
	require.NoError(t, err)
	start := clock.Now()

	require.NoError(t, tr.AddActivity(domain.NewWeightliftingActivity("act-1", "Bench Press", []domain.Set{
		{ID: "set-1", Weight: 135, Reps: 5},
	})))

	clock.Advance(10 * time.Minute)
	require.NoError(t, tr.Pause())
	clock.Advance(2 * time.Minute)
	require.NoError(t, tr.Resume())
	clock.Advance(28 * time.Minute)

	ended, err := tr.EndSession()
	require.NoError(t, err)
	require.Same(t, session, ended)
	require.Nil(t, tr.Current(), "Live slot should clear after end")

	require.Equal(t, 2*time.Minute, ended.TotalPaused())
	require.Equal(t, start.Add(40*time.Minute).UnixMilli(), ended.EndTime().UnixMilli())
	require.Equal(t, 38*time.Minute, ended.ActiveElapsed(clock.Now()))
	require.Equal(t, 40*time.Minute, ended.TotalElapsed(clock.Now()))

	found, err := repo.FindByID(ended.ID())
	require.NoError(t, err)
	require.NotNil(t, found.EndTime())
}

func TestTracker_EndSession_WhilePaused_FoldsOpenInterval(t *testing.T) {
	tr, _, clock, _ := setupTracker(t)

	_, err := tr.StartSession("user-1", "Push Day", nil, nil)
	require.NoError(t, err)

	clock.Advance(20 * time.Minute)
	require.NoError(t, tr.Pause())
	clock.Advance(5 * time.Minute)

	ended, err := tr.EndSession()
	require.NoError(t, err)
	require.Equal(t, 5*time.Minute, ended.TotalPaused())
	require.Nil(t, ended.PausedAt())
	require.Equal(t, 20*time.Minute, ended.ActiveElapsed(clock.Now()))
}

func TestTracker_EndSession_NeverRestampsHistoricalEdit(t *testing.T) {
	tr, _, clock, _ := setupTracker(t)

	_, err := tr.StartSession("user-1", "Push Day", nil, nil)
	require.NoError(t, err)

	edited := clock.Now().Add(45 * time.Minute)
	require.NoError(t, tr.UpdateEndTime(edited))

	clock.Advance(3 * time.Hour)
	ended, err := tr.EndSession()
	require.NoError(t, err)
	require.Equal(t, edited.UnixMilli(), ended.EndTime().UnixMilli(), "Edited end time must survive EndSession")
}

func TestTracker_UpdateTimes_PreservePauseTotal(t *testing.T) {
	tr, _, clock, _ := setupTracker(t)

	session, err := tr.StartSession("user-1", "Push Day", nil, nil)
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	require.NoError(t, tr.Pause())
	clock.Advance(4 * time.Minute)
	require.NoError(t, tr.Resume())

	require.NoError(t, tr.UpdateStartTime(clock.Now().Add(-2*time.Hour)))
	require.Equal(t, 4*time.Minute, session.TotalPaused(), "Time edits must not recompute pause total")
}

func TestTracker_ActivityMutations_WriteThrough(t *testing.T) {
	tr, repo, _, _ := setupTracker(t)

	session, err := tr.StartSession("user-1", "Push Day", nil, nil)
	require.NoError(t, err)

	activity := domain.NewCardioActivity("act-1", "Row", 600, 2000)
	require.NoError(t, tr.AddActivity(activity))

	activity.Notes = "steady pace"
	require.NoError(t, tr.UpdateActivity(activity))

	found, err := repo.FindByID(session.ID())
	require.NoError(t, err)
	require.Len(t, found.Activities(), 1)
	require.Equal(t, "steady pace", found.Activities()[0].Notes)

	require.NoError(t, tr.RemoveActivity("act-1"))
	require.NoError(t, tr.RemoveActivity("no-such-id"), "Removing unknown id is a no-op")

	found, err = repo.FindByID(session.ID())
	require.NoError(t, err)
	require.Empty(t, found.Activities())
}

func TestTracker_LoadActive_ColdStart(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := db.SessionRepository()
	clock := &fakeClock{now: localNoon}

	testutil.NewBuilder(t, db).
		WithSession("sess-open", testutil.Named("Push Day")).
		Build()

	tr := New(repo, WithClock(clock.Now))
	session, err := tr.LoadActive()
	require.NoError(t, err)
	require.Equal(t, "sess-open", session.ID())
	require.Same(t, session, tr.Current())
}

func TestTracker_LoadActive_NoOpenSession(t *testing.T) {
	tr, _, _, _ := setupTracker(t)

	_, err := tr.LoadActive()
	var noActive *domain.NoActiveSessionError
	require.ErrorAs(t, err, &noActive)
}

func TestTracker_Restore_EditsHistoricalRecord(t *testing.T) {
	tr, repo, clock, _ := setupTracker(t)

	_, err := tr.StartSession("user-1", "Push Day", nil, nil)
	require.NoError(t, err)
	clock.Advance(time.Hour)
	ended, err := tr.EndSession()
	require.NoError(t, err)

	restored, err := tr.Restore(ended.ID())
	require.NoError(t, err)
	require.Equal(t, ended.ID(), restored.ID())

	require.NoError(t, tr.AddActivity(domain.NewMobilityActivity("act-1", "Stretch", 300, "cooldown")))

	found, err := repo.FindByID(ended.ID())
	require.NoError(t, err)
	require.Len(t, found.Activities(), 1)
}

func TestTracker_DeleteSession_LocalDeleteSurvivesRemoteFailure(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := db.SessionRepository()
	clock := &fakeClock{now: localNoon}
	remote := &failingRemote{}
	tr := New(repo, WithClock(clock.Now), WithRemote(remote))

	session, err := tr.StartSession("user-1", "Push Day", nil, nil)
	require.NoError(t, err)

	err = tr.DeleteSession(context.Background(), session.ID())
	require.NoError(t, err, "Local delete must succeed despite remote failure")
	require.Equal(t, 1, remote.calls)
	require.Nil(t, tr.Current(), "Deleting the live session clears the slot")

	_, err = repo.FindByID(session.ID())
	var notFound *domain.SessionNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestTracker_DeleteSession_NotFound(t *testing.T) {
	tr, _, _, _ := setupTracker(t)

	err := tr.DeleteSession(context.Background(), "no-such-session")
	var notFound *domain.SessionNotFoundError
	require.ErrorAs(t, err, &notFound)
}
