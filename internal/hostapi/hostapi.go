// Package hostapi is the narrow view of the host platform's object model
// that rules are allowed to touch.
package hostapi

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"
)

var ErrObjectNotFound = errors.New("object not found")

// Identity is a governed identity.
type Identity struct {
	Name       string
	Manager    string
	Attributes map[string]any
}

func (i *Identity) clone() *Identity {
	c := *i
	c.Attributes = maps.Clone(i.Attributes)
	return &c
}

// ObjectStore reads and writes host objects. Implementations must be safe
// for concurrent use.
type ObjectStore interface {
	GetIdentity(ctx context.Context, name string) (*Identity, error)
	SaveIdentity(ctx context.Context, identity *Identity) error
}

// MemoryStore is an in-process ObjectStore. Values are copied on the way
// in and out.
type MemoryStore struct {
	mu         sync.RWMutex
	identities map[string]*Identity
}

// NewMemoryStore returns a store holding the given identities.
func NewMemoryStore(seed ...*Identity) *MemoryStore {
	s := &MemoryStore{identities: make(map[string]*Identity, len(seed))}
	for _, id := range seed {
		s.identities[id.Name] = id.clone()
	}
	return s
}

func (s *MemoryStore) GetIdentity(ctx context.Context, name string) (*Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.identities[name]
	if !ok {
		return nil, fmt.Errorf("identity %q: %w", name, ErrObjectNotFound)
	}
	return id.clone(), nil
}

func (s *MemoryStore) SaveIdentity(ctx context.Context, identity *Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(identity.Name) == "" {
		return errors.New("identity name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[identity.Name] = identity.clone()
	return nil
}

// Names lists the stored identities in order.
func (s *MemoryStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.identities))
	for n := range s.identities {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
