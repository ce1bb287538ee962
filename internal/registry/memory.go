package registry

import (
	"context"
	"sync"

	domain "github.com/oshokin/property-alarm/internal/domain/alarm"
)

// Memory is a thread-safe in-memory Registry. It backs tests and, fed by a
// PresenceFeed, the production service.
type Memory struct {
	// mu protects all fields below.
	mu sync.RWMutex
	// actors indexes connected actors by id.
	actors map[string]Actor
	// order preserves connection order for stable listings.
	order []string
	// capabilities maps actor id to its granted capability set.
	capabilities map[string]map[string]struct{}
}

// NewMemory creates an empty in-memory registry.
func NewMemory() *Memory {
	return &Memory{
		actors:       make(map[string]Actor),
		capabilities: make(map[string]map[string]struct{}),
	}
}

// Upsert connects the actor or moves it to the given position.
func (m *Memory) Upsert(id string, pos domain.Position) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.actors[id]; !ok {
		m.order = append(m.order, id)
	}

	m.actors[id] = Actor{ID: id, Position: pos}
}

// Remove disconnects the actor. Its capabilities are kept so a reconnect
// does not lose grants.
func (m *Memory) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.actors[id]; !ok {
		return
	}

	delete(m.actors, id)

	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)

			break
		}
	}
}

// Grant adds capabilities to the actor.
func (m *Memory) Grant(id string, capabilities ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.capabilities[id]
	if !ok {
		set = make(map[string]struct{})
		m.capabilities[id] = set
	}

	for _, c := range capabilities {
		set[c] = struct{}{}
	}
}

// SetCapabilities replaces the actor's capability set.
func (m *Memory) SetCapabilities(id string, capabilities []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set := make(map[string]struct{}, len(capabilities))
	for _, c := range capabilities {
		set[c] = struct{}{}
	}

	m.capabilities[id] = set
}

// ListLiveActors returns connected actors in connection order.
func (m *Memory) ListLiveActors(_ context.Context) ([]Actor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Actor, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.actors[id])
	}

	return result, nil
}

// FindActor returns a connected actor by id.
func (m *Memory) FindActor(_ context.Context, id string) (Actor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.actors[id]

	return a, ok
}

// HasCapability reports whether the actor holds the named capability.
func (m *Memory) HasCapability(_ context.Context, actorID, capability string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.capabilities[actorID][capability]

	return ok
}
