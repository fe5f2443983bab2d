package handoff

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/portfolio-contact/internal/dispatch"
	"github.com/Zachkp/portfolio-contact/pkg/logging"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "portfolio.db"), logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestHashIP(t *testing.T) {
	a := HashIP("203.0.113.7", "salt")
	assert.Len(t, a, 16)
	assert.Equal(t, a, HashIP("203.0.113.7", "salt"))
	assert.NotEqual(t, a, HashIP("203.0.113.7", "other"))
	assert.NotContains(t, a, "203")

	s1, err := NewSalt()
	require.NoError(t, err)
	s2, err := NewSalt()
	require.NoError(t, err)
	assert.Len(t, s1, 64)
	assert.NotEqual(t, s1, s2)
}

func TestRecordHandoffAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := WithClient(context.Background(), s.HashIP("198.51.100.1"))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.RecordHandoff(ctx, dispatch.Handoff{
		Channel: dispatch.Email, Strategy: dispatch.NativeNew, Environment: "desktop",
		FellBack: true, At: base,
	}))
	require.NoError(t, s.RecordHandoff(context.Background(), dispatch.Handoff{
		Channel: dispatch.WhatsApp, Strategy: dispatch.WebLinkNew, Environment: "mobile",
		At: base.Add(time.Minute),
	}))

	recs, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "whatsapp", recs[0].Channel)
	assert.Equal(t, "weblink-new", recs[0].Strategy)
	assert.Empty(t, recs[0].HashedIP)
	assert.False(t, recs[0].FellBack)

	assert.Equal(t, "email", recs[1].Channel)
	assert.True(t, recs[1].FellBack)
	assert.Equal(t, s.HashIP("198.51.100.1"), recs[1].HashedIP)
	assert.True(t, base.Equal(recs[1].CreatedAt))
}

func TestStats(t *testing.T) {
	s := openTestStore(t)
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.RecordVisit(ctx, "10.0.0.1", "ua", "/"))
	require.NoError(t, s.RecordVisit(ctx, "10.0.0.1", "ua", "/contact-form"))
	require.NoError(t, s.RecordVisit(ctx, "10.0.0.2", "ua", "/"))

	s.now = func() time.Time { return now.Add(-3 * 24 * time.Hour) }
	require.NoError(t, s.RecordVisit(ctx, "10.0.0.3", "ua", "/"))
	s.now = func() time.Time { return now.Add(-30 * 24 * time.Hour) }
	require.NoError(t, s.RecordVisit(ctx, "10.0.0.4", "ua", "/"))
	s.now = func() time.Time { return now }

	for _, h := range []dispatch.Handoff{
		{Channel: dispatch.Email, Strategy: dispatch.NativeNew, Environment: "desktop", FellBack: true},
		{Channel: dispatch.Email, Strategy: dispatch.WebmailNew, Environment: "webview"},
		{Channel: dispatch.SMS, Strategy: dispatch.NativeCurrent, Environment: "mobile"},
	} {
		require.NoError(t, s.RecordHandoff(ctx, h))
	}

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, stats.TotalVisits)
	assert.EqualValues(t, 4, stats.UniqueVisitors)
	assert.EqualValues(t, 3, stats.VisitsToday)
	assert.EqualValues(t, 4, stats.VisitsThisWeek)
	assert.EqualValues(t, 3, stats.TotalHandoffs)
	assert.EqualValues(t, 1, stats.Fallbacks)
	assert.Equal(t, map[string]int64{"email": 2, "sms": 1}, stats.ByChannel)
	assert.Equal(t, map[string]int64{"native-new": 1, "webmail-new": 1, "native-current": 1}, stats.ByStrategy)
	assert.Equal(t, map[string]int64{"desktop": 1, "webview": 1, "mobile": 1}, stats.ByEnvironment)
}

func TestCleanup(t *testing.T) {
	s := openTestStore(t)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	s.now = func() time.Time { return now.Add(-400 * 24 * time.Hour) }
	require.NoError(t, s.RecordVisit(ctx, "10.0.0.1", "ua", "/"))
	require.NoError(t, s.RecordHandoff(ctx, dispatch.Handoff{Channel: dispatch.Email, Strategy: dispatch.NativeNew, Environment: "desktop"}))

	s.now = func() time.Time { return now }
	require.NoError(t, s.RecordVisit(ctx, "10.0.0.2", "ua", "/"))

	removed, err := s.Cleanup(ctx, 365*24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalVisits)
	assert.EqualValues(t, 0, stats.TotalHandoffs)
}

func TestRecentDefaultsLimit(t *testing.T) {
	s := openTestStore(t)
	recs, err := s.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
