// Package profile holds user payment preferences and per-user merchant memory
// in process memory.
package profile

import (
	"context"
	"strings"
	"sync"

	"github.com/Veraticus/qrpay/internal/model"
)

// Store is an in-memory ProfileStore.
type Store struct {
	profiles  map[string]model.UserProfile
	merchants map[string]map[string]struct{}
	defaults  model.UserProfile
	mu        sync.RWMutex
}

// NewStore creates a store that seeds new users with defaults. Empty default
// fields fall back to the package model defaults.
func NewStore(defaults model.UserProfile) *Store {
	defaults = model.ProfileUpdate{
		HomeCurrency:   defaults.HomeCurrency,
		PreferredCard:  defaults.PreferredCard,
		RiskPreference: defaults.RiskPreference,
	}.Apply(model.UserProfile{
		HomeCurrency:   model.DefaultHomeCurrency,
		PreferredCard:  model.DefaultPreferredCard,
		RiskPreference: model.DefaultRiskPreference,
	})
	defaults.HomeCurrency = strings.ToUpper(defaults.HomeCurrency)
	defaults.UserID = ""

	return &Store{
		profiles:  make(map[string]model.UserProfile),
		merchants: make(map[string]map[string]struct{}),
		defaults:  defaults,
	}
}

// Ensure returns the user's profile, creating it from defaults on first use.
func (s *Store) Ensure(_ context.Context, userID string) model.UserProfile {
	s.mu.RLock()
	p, ok := s.profiles[userID]
	s.mu.RUnlock()
	if ok {
		return p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(userID)
}

func (s *Store) ensureLocked(userID string) model.UserProfile {
	if p, ok := s.profiles[userID]; ok {
		return p
	}
	p := s.defaults
	p.UserID = userID
	s.profiles[userID] = p
	return p
}

// Get returns the stored profile without creating one.
func (s *Store) Get(_ context.Context, userID string) (model.UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	return p, ok
}

// Upsert merges update into the user's profile and returns the result.
func (s *Store) Upsert(_ context.Context, userID string, update model.ProfileUpdate) model.UserProfile {
	update.HomeCurrency = strings.ToUpper(strings.TrimSpace(update.HomeCurrency))
	update.PreferredCard = strings.TrimSpace(update.PreferredCard)
	update.RiskPreference = strings.ToLower(strings.TrimSpace(update.RiskPreference))

	s.mu.Lock()
	defer s.mu.Unlock()

	p := update.Apply(s.ensureLocked(userID))
	s.profiles[userID] = p
	return p
}

// RecordMerchant remembers that userID has paid merchantID.
func (s *Store) RecordMerchant(_ context.Context, userID, merchantID string) {
	if merchantID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen, ok := s.merchants[userID]
	if !ok {
		seen = make(map[string]struct{})
		s.merchants[userID] = seen
	}
	seen[merchantID] = struct{}{}
}

// HasSeenMerchant reports whether RecordMerchant was called for the pair.
func (s *Store) HasSeenMerchant(_ context.Context, userID, merchantID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.merchants[userID][merchantID]
	return ok
}
