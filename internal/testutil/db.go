// Package testutil provides fixture helpers for tests that need a seeded
// local store.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fitna/fitna/internal/infrastructure/sqlite"
)

// NewTestDB creates an in-memory store with migrations applied.
// The store is closed when the test completes.
func NewTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.NewInMemoryDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}
