package store

import (
	"context"
	"time"
)

// Storage is the string-valued key-value document store backing every
// per-user document. A missing key reads as "" with a nil error.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ProfileFlags is the remote source of truth for the entitlement flag.
// SubscriptionStatus returns "" when the user has no profile row.
type ProfileFlags interface {
	SubscriptionStatus(ctx context.Context, userID string) (string, error)
	ActivateSubscription(ctx context.Context, userID string, email string) error
	DeactivateSubscription(ctx context.Context, userID string) error
}
