// Package eventlog implements the append-only in-memory alarm event log
// used for auditing and "recent alarms" queries. Entries are never deleted;
// resolution only flips the Resolved flag.
package eventlog

import (
	"sort"
	"sync"

	domain "github.com/oshokin/property-alarm/internal/domain/alarm"
)

// Log is an append-only, mutex-guarded record of alarm events.
type Log struct {
	// mu protects events.
	mu sync.Mutex
	// events holds every recorded event in append order.
	events []*domain.Event
}

// NewLog creates an empty event log.
func NewLog() *Log {
	return &Log{}
}

// Append records an event.
func (l *Log) Append(e *domain.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, e.Clone())
}

// Recent returns up to n events ordered by timestamp, newest first.
func (l *Log) Recent(n int) []*domain.Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := make([]*domain.Event, 0, len(l.events))
	for _, e := range l.events {
		result = append(result, e.Clone())
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})

	if n >= 0 && len(result) > n {
		result = result[:n]
	}

	return result
}

// ResolveActiveFor marks every unresolved event for the property resolved
// and returns how many were flipped. Resolving with none active is a no-op.
func (l *Log) ResolveActiveFor(propertyID int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	resolved := 0

	for _, e := range l.events {
		if e.PropertyID == propertyID && !e.Resolved {
			e.Resolved = true
			resolved++
		}
	}

	return resolved
}
