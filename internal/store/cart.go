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

const cartKeyPrefix = "afroman_cart:"

// CartStore owns the per-user persisted cart document and exposes atomic
// read-modify-write operations over it. Each mutation rewrites the whole
// document, so two overlapping calls for the same user are last-writer-wins.
type CartStore struct {
	storage Storage
	log     *slog.Logger
}

func NewCartStore(storage Storage, log *slog.Logger) *CartStore {
	return &CartStore{storage: storage, log: log}
}

func (s *CartStore) key(userID string) string {
	return cartKeyPrefix + userID
}

// Get returns the persisted cart, or the empty cart when no document exists,
// the document fails to parse, or storage fails. It never fails outward.
func (s *CartStore) Get(ctx context.Context, userID string) models.Cart {
	data, err := s.storage.Get(ctx, s.key(userID))
	if err != nil {
		s.log.Error("failed to read cart", "user_id", userID, "error", err)
		return emptyCart()
	}
	if data == "" {
		return emptyCart()
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		s.log.Error("failed to parse cart document", "user_id", userID, "error", err)
		return emptyCart()
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return cart
}

// Add merges an item into the cart. An entry with the same
// (type, itemId, size, color) tuple has its quantity incremented; otherwise
// the item is appended under a freshly generated id.
func (s *CartStore) Add(ctx context.Context, userID string, item models.CartItem) error {
	cart := s.Get(ctx, userID)

	idx := -1
	for i, existing := range cart.Items {
		if existing.ItemID == item.ItemID && existing.Type == item.Type &&
			existing.Size == item.Size && existing.Color == item.Color {
			idx = i
			break
		}
	}

	if idx >= 0 {
		cart.Items[idx].Quantity += item.Quantity
	} else {
		item.ID = newCartItemID(&cart, item)
		cart.Items = append(cart.Items, item)
	}

	if err := s.save(ctx, userID, &cart); err != nil {
		return err
	}
	s.log.Info("item added to cart", "user_id", userID, "name", item.Name)
	return nil
}

// Remove filters out the entry with the given id. An absent id is still
// success: the cart ends in the requested state either way.
func (s *CartStore) Remove(ctx context.Context, userID string, cartItemID string) error {
	cart := s.Get(ctx, userID)

	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ID != cartItemID {
			kept = append(kept, item)
		}
	}
	cart.Items = kept

	return s.save(ctx, userID, &cart)
}

// UpdateQuantity sets an entry's quantity directly. A quantity of zero or
// less behaves as Remove. Returns ErrNotFound when the id is absent.
func (s *CartStore) UpdateQuantity(ctx context.Context, userID string, cartItemID string, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, userID, cartItemID)
	}

	cart := s.Get(ctx, userID)
	for i := range cart.Items {
		if cart.Items[i].ID == cartItemID {
			cart.Items[i].Quantity = quantity
			return s.save(ctx, userID, &cart)
		}
	}
	return ErrNotFound
}

// Clear deletes the persisted document entirely. A subsequent Get returns
// the empty cart.
func (s *CartStore) Clear(ctx context.Context, userID string) error {
	if err := s.storage.Delete(ctx, s.key(userID)); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Count returns the cart's total item count, 0 on any failure.
func (s *CartStore) Count(ctx context.Context, userID string) int {
	return s.Get(ctx, userID).TotalItems
}

func (s *CartStore) save(ctx context.Context, userID string, cart *models.Cart) error {
	recomputeTotals(cart)

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.storage.Set(ctx, s.key(userID), string(data), 0); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}

// newCartItemID generates an id unique within the cart. The nanosecond
// stamp alone can repeat under back-to-back adds, so it is bumped until
// no existing entry carries the same id.
func newCartItemID(cart *models.Cart, item models.CartItem) string {
	stamp := time.Now().UnixNano()
	for {
		id := fmt.Sprintf("%s_%s_%d", item.Type, item.ItemID, stamp)
		if !cartHasID(cart, id) {
			return id
		}
		stamp++
	}
}

func cartHasID(cart *models.Cart, id string) bool {
	for _, existing := range cart.Items {
		if existing.ID == id {
			return true
		}
	}
	return false
}

func recomputeTotals(cart *models.Cart) {
	items := 0
	price := decimal.Zero
	for _, item := range cart.Items {
		items += item.Quantity
		price = price.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	cart.TotalItems = items
	cart.TotalPrice = price
}

func emptyCart() models.Cart {
	return models.Cart{Items: []models.CartItem{}, TotalPrice: decimal.Zero}
}
