package storage

import (
	"errors"
	"fmt"

	"github.com/cuemby/iscsigw/pkg/types"
)

// SpecStore exposes a Store as keyed spec lookups.
// A missing spec is reported as (nil, nil); any other read error is returned.
type SpecStore struct {
	store Store
}

// NewSpecStore wraps a Store
func NewSpecStore(store Store) *SpecStore {
	return &SpecStore{store: store}
}

// Get returns the spec saved under serviceName, or nil if there is none
func (s *SpecStore) Get(serviceName string) (*types.ServiceSpec, error) {
	spec, err := s.store.GetSpec(serviceName)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read spec %s: %w", serviceName, err)
	}
	return spec, nil
}

// All returns every spec keyed by service name
func (s *SpecStore) All() (map[string]*types.ServiceSpec, error) {
	specs, err := s.store.ListSpecs()
	if err != nil {
		return nil, fmt.Errorf("failed to list specs: %w", err)
	}
	all := make(map[string]*types.ServiceSpec, len(specs))
	for _, spec := range specs {
		all[spec.ServiceName()] = spec
	}
	return all, nil
}

// Save persists spec under its service name
func (s *SpecStore) Save(spec *types.ServiceSpec) error {
	return s.store.SaveSpec(spec)
}
