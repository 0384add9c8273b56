// Package testutil provides test utilities for the riskgate project: an
// isolated in-memory database per test plus fixture builders for the domain
// types.
package testutil

import (
	"context"
	"testing"

	"github.com/finveil/riskgate/internal/storage"
)

// TestDB wraps an in-memory storage instance for one test.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database with migrations applied
// (including the seeded default rail, limit tiers and SCA threshold) and
// registers cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	return &TestDB{Storage: store, t: t}
}
