package property

import (
	"fmt"
	"sync"
	"time"

	"github.com/oshokin/property-alarm/internal/catalog"
	domain "github.com/oshokin/property-alarm/internal/domain/alarm"
)

// Store holds every registered property for the lifetime of the process.
type Store struct {
	// mu protects all fields below.
	mu sync.RWMutex
	// byID indexes properties by id.
	byID map[int64]*domain.Property
	// order preserves registration order for stable iteration.
	order []int64
	// nextID is the next id to assign. Ids start at 1 and are never reused.
	nextID int64
}

// NewStore creates an empty property store.
func NewStore() *Store {
	return &Store{
		byID:   make(map[int64]*domain.Property),
		nextID: 1,
	}
}

// Register allocates the next id and inserts a property without an alarm.
// It always succeeds.
func (s *Store) Register(name string, pos domain.Position, ownerID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	s.byID[id] = &domain.Property{
		ID:       id,
		Name:     name,
		Position: pos,
		OwnerID:  ownerID,
	}
	s.order = append(s.order, id)

	return id
}

// Get returns a copy of the property with the given id.
func (s *Store) Get(id int64) (*domain.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("property %d: %w", id, domain.ErrNotFound)
	}

	return p.Clone(), nil
}

// SetOwner reassigns the property's owner.
func (s *Store) SetOwner(id int64, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("property %d: %w", id, domain.ErrNotFound)
	}

	p.OwnerID = ownerID

	return nil
}

// FindByOwner returns the first property owned by the given actor, in
// registration order. An owner holding several properties reaches only the
// first through owner-keyed operations; this is documented current behavior,
// not a single-property-per-owner guarantee.
func (s *Store) FindByOwner(ownerID string) (*domain.Property, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		if p := s.byID[id]; p.OwnerID == ownerID {
			return p.Clone(), true
		}
	}

	return nil, false
}

// Install fits the property with the given brand and arms it.
// Any prior trigger is cleared. Returns the resolved brand for confirmation
// messages.
func (s *Store) Install(id int64, brandCode string, now time.Time) (catalog.Brand, error) {
	brand, ok := catalog.Lookup(brandCode)
	if !ok {
		return catalog.Brand{}, fmt.Errorf("brand %q: %w", brandCode, domain.ErrUnknownBrand)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, found := s.byID[id]
	if !found {
		return catalog.Brand{}, fmt.Errorf("property %d: %w", id, domain.ErrNotFound)
	}

	installedAt := now.UTC()
	p.Installed = true
	p.BrandCode = catalog.Canonical(brandCode)
	p.Armed = true
	p.TriggeredAt = nil
	p.InstalledAt = &installedAt

	return brand, nil
}

// Uninstall removes the alarm entirely, returning the removed brand code.
func (s *Store) Uninstall(id int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return "", fmt.Errorf("property %d: %w", id, domain.ErrNotFound)
	}

	if !p.Installed {
		return "", fmt.Errorf("property %d: %w", id, domain.ErrNoAlarmInstalled)
	}

	oldBrand := p.BrandCode
	p.Installed = false
	p.BrandCode = ""
	p.Armed = false
	p.TriggeredAt = nil
	p.InstalledAt = nil

	return oldBrand, nil
}

// Disarm switches the alarm off and clears any active trigger.
// The alarm stays installed.
func (s *Store) Disarm(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("property %d: %w", id, domain.ErrNotFound)
	}

	p.Armed = false
	p.TriggeredAt = nil

	return nil
}

// TryTrigger applies the cooldown gate and, if it passes, advances the
// trigger timestamp in one step. It reports false when the trigger is
// suppressed: within the cooldown window, or the property is no longer an
// armed, installed alarm (a command may have raced the scanner). On success
// the returned snapshot carries the new TriggeredAt.
func (s *Store) TryTrigger(id int64, now time.Time) (*domain.Property, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, false, fmt.Errorf("property %d: %w", id, domain.ErrNotFound)
	}

	if !p.Installed || !p.Armed {
		return nil, false, nil
	}

	if p.TriggeredAt != nil && now.Sub(*p.TriggeredAt) < p.Cooldown() {
		return nil, false, nil
	}

	triggeredAt := now.UTC()
	p.TriggeredAt = &triggeredAt

	return p.Clone(), true, nil
}

// Snapshot returns copies of all properties in registration order.
func (s *Store) Snapshot() []*domain.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Property, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.byID[id].Clone())
	}

	return result
}
