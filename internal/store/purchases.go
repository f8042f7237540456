package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/afroman-media/storefront-backend/internal/models"
)

const purchasesKeyPrefix = "movie_purchases:"

// PurchaseStore keeps the per-user list of movie purchases as one JSON
// document. Read paths degrade to empty results; writes surface errors.
type PurchaseStore struct {
	storage Storage
	log     *slog.Logger
}

func NewPurchaseStore(storage Storage, log *slog.Logger) *PurchaseStore {
	return &PurchaseStore{storage: storage, log: log}
}

func (s *PurchaseStore) key(userID string) string {
	return purchasesKeyPrefix + userID
}

// List returns all recorded purchases, empty on any failure.
func (s *PurchaseStore) List(ctx context.Context, userID string) []models.Purchase {
	data, err := s.storage.Get(ctx, s.key(userID))
	if err != nil {
		s.log.Error("failed to read purchases", "user_id", userID, "error", err)
		return []models.Purchase{}
	}
	if data == "" {
		return []models.Purchase{}
	}

	var purchases []models.Purchase
	if err := json.Unmarshal([]byte(data), &purchases); err != nil {
		s.log.Error("failed to parse purchases document", "user_id", userID, "error", err)
		return []models.Purchase{}
	}
	return purchases
}

// Record appends a purchase for the movie. Recording an already purchased
// movie is a no-op.
func (s *PurchaseStore) Record(ctx context.Context, userID string, movieID string, price decimal.Decimal, paymentIntentID string) error {
	purchases := s.List(ctx, userID)
	for _, p := range purchases {
		if p.MovieID == movieID {
			s.log.Info("movie already purchased", "user_id", userID, "movie_id", movieID)
			return nil
		}
	}

	purchases = append(purchases, models.Purchase{
		MovieID:         movieID,
		PurchaseDate:    time.Now().UTC(),
		Price:           price,
		PaymentIntentID: paymentIntentID,
	})

	data, err := json.Marshal(purchases)
	if err != nil {
		return fmt.Errorf("failed to encode purchases: %w", err)
	}
	if err := s.storage.Set(ctx, s.key(userID), string(data), 0); err != nil {
		return fmt.Errorf("failed to persist purchases: %w", err)
	}

	s.log.Info("purchase recorded", "user_id", userID, "movie_id", movieID)
	return nil
}

// IsPurchased reports whether the movie appears in the purchase list,
// false on any failure.
func (s *PurchaseStore) IsPurchased(ctx context.Context, userID string, movieID string) bool {
	for _, p := range s.List(ctx, userID) {
		if p.MovieID == movieID {
			return true
		}
	}
	return false
}

// Details returns the purchase record for the movie, nil when absent.
func (s *PurchaseStore) Details(ctx context.Context, userID string, movieID string) *models.Purchase {
	for _, p := range s.List(ctx, userID) {
		if p.MovieID == movieID {
			return &p
		}
	}
	return nil
}

// Clear deletes the whole purchase list.
func (s *PurchaseStore) Clear(ctx context.Context, userID string) error {
	if err := s.storage.Delete(ctx, s.key(userID)); err != nil {
		return fmt.Errorf("failed to clear purchases: %w", err)
	}
	return nil
}
