package eventlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/property-alarm/internal/domain/alarm"
)

// event builds a test event at second-offset seconds from a fixed base time.
func event(propertyID int64, seconds int) *domain.Event {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &domain.Property{ID: propertyID, Name: "Villa", Installed: true, BrandCode: "VIPER"}

	return domain.NewEvent(p, "bob", base.Add(time.Duration(seconds)*time.Second))
}

// TestRecentOrderingAndLimit verifies newest-first ordering and the n cap.
func TestRecentOrderingAndLimit(t *testing.T) {
	t.Parallel()

	l := NewLog()
	for _, offset := range []int{10, 40, 20, 30} {
		l.Append(event(1, offset))
	}

	recent := l.Recent(3)
	require.Len(t, recent, 3)
	require.True(t, recent[0].Timestamp.After(recent[1].Timestamp))
	require.True(t, recent[1].Timestamp.After(recent[2].Timestamp))
	require.Equal(t, 40, recent[0].Timestamp.Second())

	require.Len(t, l.Recent(100), 4)
	require.Empty(t, l.Recent(0))
}

// TestResolveActiveFor verifies per-property resolution and idempotency.
func TestResolveActiveFor(t *testing.T) {
	t.Parallel()

	l := NewLog()
	l.Append(event(1, 0))
	l.Append(event(1, 5))
	l.Append(event(2, 10))

	require.Equal(t, 2, l.ResolveActiveFor(1))
	require.Zero(t, l.ResolveActiveFor(1), "second resolution is a no-op")
	require.Zero(t, l.ResolveActiveFor(99), "unknown property is a no-op")

	for _, e := range l.Recent(10) {
		if e.PropertyID == 1 {
			require.True(t, e.Resolved)
		} else {
			require.False(t, e.Resolved)
		}
	}
}

// TestAppendIsolation verifies the log keeps its own copies.
func TestAppendIsolation(t *testing.T) {
	t.Parallel()

	l := NewLog()
	e := event(1, 0)
	l.Append(e)

	e.Resolved = true
	require.False(t, l.Recent(1)[0].Resolved)

	l.Recent(1)[0].Resolved = true
	require.False(t, l.Recent(1)[0].Resolved)
}
