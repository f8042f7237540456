package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/afroman-media/storefront-backend/internal/models"
)

const accessKeyPrefix = "premium_access:"

// AccessStore answers whether a user holds premium access. The local cached
// record is consulted first; the user_profiles flag is the source of truth
// and is only read on a cache miss.
type AccessStore struct {
	storage  Storage
	profiles ProfileFlags
	log      *slog.Logger
}

func NewAccessStore(storage Storage, profiles ProfileFlags, log *slog.Logger) *AccessStore {
	return &AccessStore{storage: storage, profiles: profiles, log: log}
}

func (s *AccessStore) key(userID string) string {
	return accessKeyPrefix + userID
}

// Has is the sole read entry point and is safe to call repeatedly. A valid
// cached record short-circuits without a remote call; an expired record is
// evicted before the remote flag is re-checked. Every failure on this path
// reads as no access: premium content stays locked on uncertainty.
func (s *AccessStore) Has(ctx context.Context, userID string) bool {
	if userID == "" {
		return false
	}

	stored, err := s.storage.Get(ctx, s.key(userID))
	if err != nil {
		s.log.Error("failed to read premium access cache", "user_id", userID, "error", err)
		return false
	}

	if stored != "" {
		var access models.PremiumAccess
		if err := json.Unmarshal([]byte(stored), &access); err != nil {
			s.log.Warn("discarding corrupt premium access document", "user_id", userID, "error", err)
			if err := s.storage.Delete(ctx, s.key(userID)); err != nil {
				s.log.Error("failed to evict corrupt premium access", "user_id", userID, "error", err)
			}
		} else if access.ExpiresAt != nil && access.ExpiresAt.Before(time.Now()) {
			s.log.Info("premium access expired", "user_id", userID)
			if err := s.storage.Delete(ctx, s.key(userID)); err != nil {
				s.log.Error("failed to evict expired premium access", "user_id", userID, "error", err)
				return false
			}
		} else {
			return true
		}
	}

	status, err := s.profiles.SubscriptionStatus(ctx, userID)
	if err != nil {
		s.log.Error("failed to check subscription status", "user_id", userID, "error", err)
		return false
	}
	if status != "active" {
		return false
	}

	access := models.PremiumAccess{
		UserID:    userID,
		GrantedAt: time.Now().UTC(),
		Type:      models.AccessSubscription,
	}
	if data, err := json.Marshal(access); err == nil {
		if err := s.storage.Set(ctx, s.key(userID), string(data), 0); err != nil {
			s.log.Error("failed to cache premium access", "user_id", userID, "error", err)
		}
	}
	return true
}

// Grant upserts the remote flag to active, then writes the local access
// record. This is the manual payment confirmation path: the caller
// self-attests that the hosted checkout completed, no receipt is verified.
func (s *AccessStore) Grant(ctx context.Context, userID string, email string, accessType models.AccessType) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	if accessType == "" {
		accessType = models.AccessLifetime
	}

	// Source of truth first: a remote failure must not leave a local grant
	// behind that Has would honor.
	if err := s.profiles.ActivateSubscription(ctx, userID, email); err != nil {
		return fmt.Errorf("failed to activate subscription: %w", err)
	}

	access := models.PremiumAccess{
		UserID:    userID,
		GrantedAt: time.Now().UTC(),
		Type:      accessType,
	}
	data, err := json.Marshal(access)
	if err != nil {
		return fmt.Errorf("failed to encode premium access: %w", err)
	}
	if err := s.storage.Set(ctx, s.key(userID), string(data), 0); err != nil {
		return fmt.Errorf("failed to store premium access: %w", err)
	}

	s.log.Info("premium access granted", "user_id", userID, "type", accessType)
	return nil
}

// Revoke deletes the local record and clears the remote flag.
func (s *AccessStore) Revoke(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}

	if err := s.storage.Delete(ctx, s.key(userID)); err != nil {
		return fmt.Errorf("failed to delete premium access: %w", err)
	}
	if err := s.profiles.DeactivateSubscription(ctx, userID); err != nil {
		return fmt.Errorf("failed to deactivate subscription: %w", err)
	}

	s.log.Info("premium access revoked", "user_id", userID)
	return nil
}
