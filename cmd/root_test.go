package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fitna/fitna/internal/workout/domain"
)

func TestParseTimeFlag(t *testing.T) {
	rfc, err := parseTimeFlag("2024-03-04T09:30:00Z")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC), rfc.UTC())

	local, err := parseTimeFlag("2024-03-04 09:30")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 4, 9, 30, 0, 0, time.Local), local)

	_, err = parseTimeFlag("yesterday-ish")
	require.ErrorContains(t, err, "unrecognized time")
}

func TestFormatDuration(t *testing.T) {
	require.Equal(t, "40m", formatDuration(40*time.Minute))
	require.Equal(t, "1h 5m", formatDuration(65*time.Minute))
	require.Equal(t, "0m", formatDuration(10*time.Second))
}

func TestParseMeal(t *testing.T) {
	for _, m := range domain.MealTypes() {
		parsed, err := parseMeal(string(m))
		require.NoError(t, err)
		require.Equal(t, m, parsed)
	}

	_, err := parseMeal("Elevenses")
	require.ErrorContains(t, err, "unknown meal")
}

func TestCurrentUserID(t *testing.T) {
	orig := cfg
	t.Cleanup(func() { cfg = orig })

	cfg.Auth.UserID = ""
	require.Equal(t, anonymousUser, currentUserID())

	cfg.Auth.UserID = "user-1"
	require.Equal(t, "user-1", currentUserID())
}
