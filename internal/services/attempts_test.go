package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisuite/farmauth/internal/logging"
	"github.com/agrisuite/farmauth/internal/repositories/repomanager"
)

func newAttemptService(t *testing.T) (*AttemptService, *repomanager.InMemoryRepositoryManager) {
	t.Helper()
	m := repomanager.NewInMemoryRepositoryManager()
	return NewAttemptService(nil, m, logging.NewNopLogger()), m
}

func TestRecord_AppendsEntries(t *testing.T) {
	s, _ := newAttemptService(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, "test_farmer", "10.0.0.1", false, "invalid password"))
	require.NoError(t, s.Record(ctx, "test_farmer", "10.0.0.1", true, ""))

	n, err := s.RecentFailures(ctx, "test_farmer", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecentFailures_CountsOnlyFailuresForUsername(t *testing.T) {
	s, _ := newAttemptService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Record(ctx, "test_farmer", "10.0.0.1", false, "invalid password"))
	}
	require.NoError(t, s.Record(ctx, "other_farmer", "10.0.0.1", false, "invalid password"))
	require.NoError(t, s.Record(ctx, "test_farmer", "10.0.0.1", true, ""))

	n, err := s.RecentFailures(ctx, "test_farmer", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRecentFailuresByAddr(t *testing.T) {
	s, _ := newAttemptService(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, "one", "10.0.0.1", false, "invalid password"))
	require.NoError(t, s.Record(ctx, "two", "10.0.0.1", false, "invalid password"))
	require.NoError(t, s.Record(ctx, "three", "10.0.0.2", false, "invalid password"))

	n, err := s.RecentFailuresByAddr(ctx, "10.0.0.1", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRecentFailures_RespectsWindow(t *testing.T) {
	s, _ := newAttemptService(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, "test_farmer", "", false, "invalid password"))

	// age the recorded entry past a narrow window
	time.Sleep(15 * time.Millisecond)

	n, err := s.RecentFailures(ctx, "test_farmer", 5*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = s.RecentFailures(ctx, "test_farmer", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
