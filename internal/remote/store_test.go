package remote

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fitna/fitna/internal/pubsub"
	"github.com/fitna/fitna/internal/workout/domain"
)

func TestSessionRecord_RoundTrip(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	session := domain.NewSession("sess-1", "user-1", "Push Day", start)
	session.AddActivity(domain.NewWeightliftingActivity("act-1", "Bench Press", []domain.Set{
		{ID: "set-1", Weight: 135, Reps: 5},
	}), start)
	session.Pause(start.Add(10 * time.Minute))
	session.Resume(start.Add(12 * time.Minute))
	session.Complete(start.Add(40 * time.Minute))

	record := NewSessionRecord(session)
	require.Equal(t, "sess-1", record.ID)
	require.Equal(t, int64(120000), record.TotalPausedMs)
	require.NotNil(t, record.EndTime)

	back := record.ToDomain()
	require.Equal(t, session.ID(), back.ID())
	require.Equal(t, session.TotalPaused(), back.TotalPaused())
	require.Equal(t, session.EndTime().UnixMilli(), back.EndTime().UnixMilli())
	require.Len(t, back.Activities(), 1)
	require.False(t, back.Dirty(), "Pulled records must come back clean")
}

func TestDailyLogRecord_RoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	dayLog := domain.NewDailyLog("2024-03-04", now)
	dayLog.SetBodyweight(82.5, now)

	record := NewDailyLogRecord("user-1", dayLog)
	require.Equal(t, "user-1", record.UserID)
	require.Equal(t, "2024-03-04", record.Date)

	back := record.ToDomain()
	require.Equal(t, dayLog.Date(), back.Date())
	require.Len(t, back.Meals(), 4)
	require.Equal(t, 82.5, *back.Bodyweight())
	require.False(t, back.Dirty())
}

func TestSplitRecord_RoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	assignment := domain.NewSplitAssignment("2024-03-03", domain.SplitUpperLower, nil, now)

	record := NewSplitRecord("user-1", assignment)
	require.Equal(t, "UpperLower", record.SplitType)

	back := record.ToDomain()
	require.Equal(t, domain.SplitUpperLower, back.Split())
	require.False(t, back.Dirty())
}

func TestSessionAuth_SignInAndOut(t *testing.T) {
	auth := NewSessionAuth()
	defer auth.Close()

	_, ok := auth.CurrentUser()
	require.False(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := auth.Subscribe(ctx)

	auth.SignIn("user-1")

	user, ok := auth.CurrentUser()
	require.True(t, ok)
	require.Equal(t, "user-1", user)

	event := <-events
	require.Equal(t, pubsub.SignedInEvent, event.Type)
	require.Equal(t, "user-1", event.Payload)

	auth.SignOut()

	_, ok = auth.CurrentUser()
	require.False(t, ok)

	event = <-events
	require.Equal(t, pubsub.SignedOutEvent, event.Type)
	require.Equal(t, "user-1", event.Payload)
}

func TestSessionAuth_SignOutWhileSignedOutIsSilent(t *testing.T) {
	auth := NewSessionAuth()
	defer auth.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := auth.Subscribe(ctx)

	auth.SignOut()

	select {
	case event := <-events:
		t.Fatalf("unexpected event %v", event.Type)
	case <-time.After(50 * time.Millisecond):
	}
}
