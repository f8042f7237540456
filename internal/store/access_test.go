package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afroman-media/storefront-backend/internal/models"
)

func storeAccess(t *testing.T, storage *memoryStorage, access models.PremiumAccess) {
	t.Helper()
	data, err := json.Marshal(access)
	require.NoError(t, err)
	storage.data[accessKeyPrefix+access.UserID] = string(data)
}

func TestAccessValidCacheShortCircuits(t *testing.T) {
	storage := newMemoryStorage()
	storeAccess(t, storage, models.PremiumAccess{
		UserID:    "u1",
		GrantedAt: time.Now().UTC(),
		Type:      models.AccessLifetime,
	})

	// a remote failure proves the remote flag was never consulted
	profiles := newFakeProfiles()
	profiles.err = errStorageDown

	access := NewAccessStore(storage, profiles, discardLogger())
	assert.True(t, access.Has(context.Background(), "u1"))
}

func TestAccessExpiredCacheEvicted(t *testing.T) {
	storage := newMemoryStorage()
	expired := time.Now().Add(-time.Hour)
	storeAccess(t, storage, models.PremiumAccess{
		UserID:    "u1",
		GrantedAt: expired.Add(-24 * time.Hour),
		ExpiresAt: &expired,
		Type:      models.AccessSubscription,
	})

	access := NewAccessStore(storage, newFakeProfiles(), discardLogger())
	assert.False(t, access.Has(context.Background(), "u1"))

	// cache entry removed
	_, exists := storage.snapshot(accessKeyPrefix + "u1")
	assert.False(t, exists)
}

func TestAccessExpiredCacheFallsBackToActiveRemote(t *testing.T) {
	storage := newMemoryStorage()
	expired := time.Now().Add(-time.Minute)
	storeAccess(t, storage, models.PremiumAccess{
		UserID:    "u1",
		GrantedAt: time.Now().Add(-48 * time.Hour),
		ExpiresAt: &expired,
		Type:      models.AccessSubscription,
	})

	profiles := newFakeProfiles()
	profiles.status["u1"] = "active"

	access := NewAccessStore(storage, profiles, discardLogger())
	assert.True(t, access.Has(context.Background(), "u1"))

	// a fresh, unexpired record was written back
	raw, exists := storage.snapshot(accessKeyPrefix + "u1")
	require.True(t, exists)
	var cached models.PremiumAccess
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, models.AccessSubscription, cached.Type)
	assert.Nil(t, cached.ExpiresAt)
}

func TestAccessCacheMissPopulatesFromRemote(t *testing.T) {
	storage := newMemoryStorage()
	profiles := newFakeProfiles()
	profiles.status["u1"] = "active"

	access := NewAccessStore(storage, profiles, discardLogger())
	assert.True(t, access.Has(context.Background(), "u1"))

	raw, exists := storage.snapshot(accessKeyPrefix + "u1")
	require.True(t, exists)
	var cached models.PremiumAccess
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, "u1", cached.UserID)
	assert.Equal(t, models.AccessSubscription, cached.Type)
}

func TestAccessRemoteInactiveDenied(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.status["u1"] = "inactive"

	access := NewAccessStore(newMemoryStorage(), profiles, discardLogger())
	assert.False(t, access.Has(context.Background(), "u1"))
}

func TestAccessUnknownUserDenied(t *testing.T) {
	access := NewAccessStore(newMemoryStorage(), newFakeProfiles(), discardLogger())

	assert.False(t, access.Has(context.Background(), "stranger"))
	assert.False(t, access.Has(context.Background(), ""))
}

func TestAccessFailsClosedOnStorageError(t *testing.T) {
	storage := newMemoryStorage()
	storage.failGet = true
	profiles := newFakeProfiles()
	profiles.status["u1"] = "active"

	access := NewAccessStore(storage, profiles, discardLogger())
	assert.False(t, access.Has(context.Background(), "u1"))
}

func TestAccessFailsClosedOnRemoteError(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.err = errStorageDown

	access := NewAccessStore(newMemoryStorage(), profiles, discardLogger())
	assert.False(t, access.Has(context.Background(), "u1"))
}

func TestAccessCorruptCacheFallsBackToRemote(t *testing.T) {
	storage := newMemoryStorage()
	storage.data[accessKeyPrefix+"u1"] = "{not json"
	profiles := newFakeProfiles()
	profiles.status["u1"] = "active"

	access := NewAccessStore(storage, profiles, discardLogger())
	assert.True(t, access.Has(context.Background(), "u1"))

	// the corrupt blob was replaced by a fresh record
	raw, exists := storage.snapshot(accessKeyPrefix + "u1")
	require.True(t, exists)
	var cached models.PremiumAccess
	assert.NoError(t, json.Unmarshal([]byte(raw), &cached))
}

func TestAccessCorruptCacheEvictedWhenRemoteInactive(t *testing.T) {
	storage := newMemoryStorage()
	storage.data[accessKeyPrefix+"u1"] = "{not json"

	access := NewAccessStore(storage, newFakeProfiles(), discardLogger())
	assert.False(t, access.Has(context.Background(), "u1"))

	// the corrupt blob is gone, not re-parsed on the next call
	_, exists := storage.snapshot(accessKeyPrefix + "u1")
	assert.False(t, exists)
}

func TestGrantWithoutUserFails(t *testing.T) {
	storage := newMemoryStorage()
	access := NewAccessStore(storage, newFakeProfiles(), discardLogger())

	err := access.Grant(context.Background(), "", "", models.AccessLifetime)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Empty(t, storage.data)
}

func TestGrantWritesCacheAndRemoteFlag(t *testing.T) {
	ctx := context.Background()
	storage := newMemoryStorage()
	profiles := newFakeProfiles()
	access := NewAccessStore(storage, profiles, discardLogger())

	require.NoError(t, access.Grant(ctx, "u1", "u1@example.com", ""))

	raw, exists := storage.snapshot(accessKeyPrefix + "u1")
	require.True(t, exists)
	var cached models.PremiumAccess
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, models.AccessLifetime, cached.Type, "type defaults to lifetime")

	assert.Equal(t, []string{"u1"}, profiles.activated)
	assert.True(t, access.Has(ctx, "u1"))
}

func TestGrantSurfacesRemoteFailure(t *testing.T) {
	storage := newMemoryStorage()
	profiles := newFakeProfiles()
	profiles.err = errStorageDown
	access := NewAccessStore(storage, profiles, discardLogger())

	err := access.Grant(context.Background(), "u1", "u1@example.com", models.AccessLifetime)
	assert.Error(t, err)

	// a failed grant leaves no local record for Has to honor
	_, exists := storage.snapshot(accessKeyPrefix + "u1")
	assert.False(t, exists)
	assert.False(t, access.Has(context.Background(), "u1"))
}

func TestRevokeClearsCacheAndRemoteFlag(t *testing.T) {
	ctx := context.Background()
	storage := newMemoryStorage()
	profiles := newFakeProfiles()
	access := NewAccessStore(storage, profiles, discardLogger())

	require.NoError(t, access.Grant(ctx, "u1", "u1@example.com", models.AccessLifetime))
	require.NoError(t, access.Revoke(ctx, "u1"))

	_, exists := storage.snapshot(accessKeyPrefix + "u1")
	assert.False(t, exists)
	assert.Equal(t, []string{"u1"}, profiles.deactivated)
	assert.False(t, access.Has(ctx, "u1"))
}

func TestRevokeWithoutUserFails(t *testing.T) {
	access := NewAccessStore(newMemoryStorage(), newFakeProfiles(), discardLogger())
	assert.ErrorIs(t, access.Revoke(context.Background(), ""), ErrNotAuthenticated)
}
