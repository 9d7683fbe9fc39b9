package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fitna/fitna/internal/infrastructure/sqlite"
	"github.com/fitna/fitna/internal/remote"
	"github.com/fitna/fitna/internal/testutil"
	"github.com/fitna/fitna/internal/workout/domain"
)

// fakeStore is an in-memory remote.Store with injectable failures.
type fakeStore struct {
	pingErr     error
	sessionErr  error
	logErr      error
	splitErr    error
	sessions    map[string]remote.SessionRecord
	logs        map[string]remote.DailyLogRecord
	splits      map[string]remote.SplitRecord
	deletedIDs  []string
	profileSave int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions: make(map[string]remote.SessionRecord),
		logs:     make(map[string]remote.DailyLogRecord),
		splits:   make(map[string]remote.SplitRecord),
	}
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) UpsertSessions(_ context.Context, records []remote.SessionRecord) error {
	if f.sessionErr != nil {
		return f.sessionErr
	}
	for _, r := range records {
		f.sessions[r.ID] = r
	}
	return nil
}

func (f *fakeStore) UpsertDailyLogs(_ context.Context, records []remote.DailyLogRecord) error {
	if f.logErr != nil {
		return f.logErr
	}
	for _, r := range records {
		f.logs[r.Date] = r
	}
	return nil
}

func (f *fakeStore) UpsertSplitAssignments(_ context.Context, records []remote.SplitRecord) error {
	if f.splitErr != nil {
		return f.splitErr
	}
	for _, r := range records {
		f.splits[r.WeekStart] = r
	}
	return nil
}

func (f *fakeStore) SessionsByUser(context.Context, string) ([]remote.SessionRecord, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	out := make([]remote.SessionRecord, 0, len(f.sessions))
	for _, r := range f.sessions {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) DailyLogsByUser(context.Context, string) ([]remote.DailyLogRecord, error) {
	if f.logErr != nil {
		return nil, f.logErr
	}
	out := make([]remote.DailyLogRecord, 0, len(f.logs))
	for _, r := range f.logs {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) SplitAssignmentsByUser(context.Context, string) ([]remote.SplitRecord, error) {
	if f.splitErr != nil {
		return nil, f.splitErr
	}
	out := make([]remote.SplitRecord, 0, len(f.splits))
	for _, r := range f.splits {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) DeleteSession(_ context.Context, id string) error {
	f.deletedIDs = append(f.deletedIDs, id)
	delete(f.sessions, id)
	return nil
}

func (f *fakeStore) SaveProfile(context.Context, remote.UserProfile) error {
	f.profileSave++
	return nil
}

// countingFlusher records wipe fan-out.
type countingFlusher struct {
	count int
}

func (c *countingFlusher) FlushCache(context.Context) error {
	c.count++
	return nil
}

type engineFixture struct {
	engine  *Engine
	db      *sqlite.DB
	store   *fakeStore
	auth    *remote.SessionAuth
	flusher *countingFlusher
}

func setupEngine(t *testing.T, opts ...Option) *engineFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	store := newFakeStore()
	auth := remote.NewSessionAuth()
	t.Cleanup(auth.Close)
	flusher := &countingFlusher{}

	opts = append(opts, WithCacheFlusher(flusher))
	engine := New(
		db.SessionRepository(), db.DailyLogRepository(), db.SplitRepository(),
		store, auth, opts...,
	)
	return &engineFixture{engine: engine, db: db, store: store, auth: auth, flusher: flusher}
}

func seedDirty(t *testing.T, db *sqlite.DB) {
	t.Helper()
	testutil.NewBuilder(t, db).
		WithSession("sess-1", testutil.Named("Push Day")).
		WithDailyLog("2024-03-04", testutil.Bodyweight(82.5)).
		WithSplit("2024-03-03").
		Build()
}

func TestEngine_PushPending_SignedOutIsSilentNoOp(t *testing.T) {
	f := setupEngine(t)
	seedDirty(t, f.db)

	f.engine.PushPending(context.Background())

	require.Empty(t, f.store.sessions, "Nothing should reach the remote while signed out")

	dirty, err := f.db.SessionRepository().ListDirty()
	require.NoError(t, err)
	require.Len(t, dirty, 1, "Records must stay dirty")
}

func TestEngine_PushPending_UnreachableIsSilentNoOp(t *testing.T) {
	f := setupEngine(t)
	seedDirty(t, f.db)
	f.auth.SignIn("user-1")
	f.store.pingErr = errors.New("network down")

	f.engine.PushPending(context.Background())

	require.Empty(t, f.store.sessions)
	dirty, err := f.db.SessionRepository().ListDirty()
	require.NoError(t, err)
	require.Len(t, dirty, 1)
}

func TestEngine_PushPending_MarksCleanOnlyAfterAccept(t *testing.T) {
	f := setupEngine(t)
	seedDirty(t, f.db)
	f.auth.SignIn("user-1")

	f.engine.PushPending(context.Background())

	require.Len(t, f.store.sessions, 1)
	require.Len(t, f.store.logs, 1)
	require.Len(t, f.store.splits, 1)
	require.Equal(t, "user-1", f.store.logs["2024-03-04"].UserID)

	dirtySessions, err := f.db.SessionRepository().ListDirty()
	require.NoError(t, err)
	require.Empty(t, dirtySessions)
	dirtyLogs, err := f.db.DailyLogRepository().ListDirty()
	require.NoError(t, err)
	require.Empty(t, dirtyLogs)
	dirtySplits, err := f.db.SplitRepository().ListDirty()
	require.NoError(t, err)
	require.Empty(t, dirtySplits)
}

func TestEngine_PushPending_TypesFailIndependently(t *testing.T) {
	f := setupEngine(t)
	seedDirty(t, f.db)
	f.auth.SignIn("user-1")
	f.store.sessionErr = errors.New("sessions table locked")

	f.engine.PushPending(context.Background())

	// Sessions stay dirty for the next trigger.
	dirtySessions, err := f.db.SessionRepository().ListDirty()
	require.NoError(t, err)
	require.Len(t, dirtySessions, 1)

	// The other types still made it through.
	require.Len(t, f.store.logs, 1)
	require.Len(t, f.store.splits, 1)
	dirtyLogs, err := f.db.DailyLogRepository().ListDirty()
	require.NoError(t, err)
	require.Empty(t, dirtyLogs)
}

func TestEngine_PushPending_RetrySucceedsAfterFailure(t *testing.T) {
	f := setupEngine(t)
	seedDirty(t, f.db)
	f.auth.SignIn("user-1")

	f.store.sessionErr = errors.New("transient")
	f.engine.PushPending(context.Background())
	require.Empty(t, f.store.sessions)

	f.store.sessionErr = nil
	f.engine.PushPending(context.Background())
	require.Len(t, f.store.sessions, 1)

	dirty, err := f.db.SessionRepository().ListDirty()
	require.NoError(t, err)
	require.Empty(t, dirty)
}

func TestEngine_PushPending_NothingDirtyPushesNothing(t *testing.T) {
	f := setupEngine(t)
	f.auth.SignIn("user-1")

	f.engine.PushPending(context.Background())

	require.Empty(t, f.store.sessions)
	require.Empty(t, f.store.logs)
	require.Empty(t, f.store.splits)
}

func TestEngine_PullOnSignIn_RemoteWins(t *testing.T) {
	f := setupEngine(t)

	// Local has a dirty edit the remote knows nothing about.
	testutil.NewBuilder(t, f.db).
		WithSession("sess-1", testutil.Named("Local Edit")).
		Build()

	// Remote holds the authoritative copy of the same record.
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	authoritative := domain.ReconstituteSession(
		"sess-1", "user-1", "Remote Copy", start, nil, nil,
		domain.SessionStatusActive, nil, 0, false, start,
	)
	f.store.sessions["sess-1"] = remote.NewSessionRecord(authoritative)
	f.store.logs["2024-02-28"] = remote.DailyLogRecord{
		UserID: "user-1", Date: "2024-02-28",
		Meals: []domain.Meal{{Type: domain.MealBreakfast, Items: []domain.FoodItem{}}},
		Goals: domain.DefaultNutritionGoals(), UpdatedAt: start,
	}

	require.NoError(t, f.engine.PullOnSignIn(context.Background(), "user-1"))

	local, err := f.db.SessionRepository().FindByID("sess-1")
	require.NoError(t, err)
	require.Equal(t, "Remote Copy", local.Name(), "Pull must overwrite the local copy")
	require.False(t, local.Dirty(), "Pulled records land clean")

	pulledLog, err := f.db.DailyLogRepository().FindByDate("2024-02-28")
	require.NoError(t, err)
	require.False(t, pulledLog.Dirty())

	require.Equal(t, 1, f.flusher.count, "Pull should flush derived caches")
}

func TestEngine_PullOnSignIn_PartialFailureStillPullsOtherTypes(t *testing.T) {
	f := setupEngine(t)
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	f.store.splits["2024-02-25"] = remote.SplitRecord{
		UserID: "user-1", WeekStart: "2024-02-25", SplitType: "PPL", UpdatedAt: start,
	}
	f.store.sessionErr = errors.New("sessions endpoint down")

	err := f.engine.PullOnSignIn(context.Background(), "user-1")
	require.Error(t, err)

	pulled, fetchErr := f.db.SplitRepository().FindByWeek("2024-02-25")
	require.NoError(t, fetchErr)
	require.Equal(t, domain.SplitPPL, pulled.Split())
}

func TestEngine_ClearAllLocalData(t *testing.T) {
	f := setupEngine(t)
	seedDirty(t, f.db)

	require.NoError(t, f.engine.ClearAllLocalData(context.Background()))

	sessions, err := f.db.SessionRepository().ListAll()
	require.NoError(t, err)
	require.Empty(t, sessions)

	_, err = f.db.DailyLogRepository().FindByDate("2024-03-04")
	var logNotFound *domain.LogNotFoundError
	require.ErrorAs(t, err, &logNotFound)

	_, err = f.db.SplitRepository().FindByWeek("2024-03-03")
	var splitNotFound *domain.AssignmentNotFoundError
	require.ErrorAs(t, err, &splitNotFound)

	require.Equal(t, 1, f.flusher.count, "Wipe must flush registered caches")
}

func TestEngine_Run_DebouncedNotifyTriggersPush(t *testing.T) {
	f := setupEngine(t, WithDebounce(20*time.Millisecond))
	seedDirty(t, f.db)
	f.auth.SignIn("user-1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		f.engine.Run(ctx, f.auth.Subscribe(ctx))
		close(done)
	}()

	// A burst of nudges should coalesce into one pass.
	for i := 0; i < 5; i++ {
		f.engine.Notify()
	}

	require.Eventually(t, func() bool {
		dirty, err := f.db.SessionRepository().ListDirty()
		return err == nil && len(dirty) == 0
	}, 2*time.Second, 10*time.Millisecond, "Dirty records should push after the debounce window")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on context cancellation")
	}
}

func TestEngine_Run_SignInPullsThenPushes(t *testing.T) {
	f := setupEngine(t, WithDebounce(10*time.Millisecond))
	seedDirty(t, f.db)

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	f.store.splits["2024-02-25"] = remote.SplitRecord{
		UserID: "user-1", WeekStart: "2024-02-25", SplitType: "FullBody", UpdatedAt: start,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.engine.Run(ctx, f.auth.Subscribe(ctx))

	f.auth.SignIn("user-1")

	require.Eventually(t, func() bool {
		// Pull landed the remote split locally...
		if _, err := f.db.SplitRepository().FindByWeek("2024-02-25"); err != nil {
			return false
		}
		// ...and the push that follows uploaded the local dirt.
		return len(f.store.sessions) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEngine_Run_SignOutWipes(t *testing.T) {
	f := setupEngine(t)
	seedDirty(t, f.db)
	f.auth.SignIn("user-1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.engine.Run(ctx, f.auth.Subscribe(ctx))

	f.auth.SignOut()

	require.Eventually(t, func() bool {
		sessions, err := f.db.SessionRepository().ListAll()
		return err == nil && len(sessions) == 0
	}, 2*time.Second, 10*time.Millisecond, "Sign-out should wipe local data")
}
