package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/afroman-media/storefront-backend/internal/auth"
	"github.com/afroman-media/storefront-backend/internal/checkout"
	"github.com/afroman-media/storefront-backend/internal/models"
	"github.com/afroman-media/storefront-backend/internal/store"
)

type CartHandler struct {
	carts *store.CartStore
	auth  *auth.Service
	links checkout.Links
}

func NewCartHandler(carts *store.CartStore, authService *auth.Service, links checkout.Links) *CartHandler {
	return &CartHandler{carts: carts, auth: authService, links: links}
}

// Cart handles GET /cart and DELETE /cart
func (h *CartHandler) Cart(w http.ResponseWriter, r *http.Request) {
	user, ok := resolveUser(w, r, h.auth)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.carts.Get(r.Context(), user.ID))
	case http.MethodDelete:
		if err := h.carts.Clear(r.Context(), user.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to clear cart")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	user, ok := resolveUser(w, r, h.auth)
	if !ok {
		return
	}

	var item models.CartItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	switch item.Type {
	case models.ItemMerchandise, models.ItemMovie, models.ItemSubscription:
	default:
		writeError(w, http.StatusBadRequest, "Valid item type is required")
		return
	}
	if item.ItemID == "" {
		writeError(w, http.StatusBadRequest, "itemId is required")
		return
	}
	if item.Price.IsNegative() {
		writeError(w, http.StatusBadRequest, "price must not be negative")
		return
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	if err := h.carts.Add(r.Context(), user.ID, item); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to add item to cart")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Item handles PUT /cart/items/{id} and DELETE /cart/items/{id}
func (h *CartHandler) Item(w http.ResponseWriter, r *http.Request) {
	user, ok := resolveUser(w, r, h.auth)
	if !ok {
		return
	}

	cartItemID := strings.TrimPrefix(r.URL.Path, "/cart/items/")
	if cartItemID == "" {
		writeError(w, http.StatusBadRequest, "Cart item id is required")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req models.UpdateQuantityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := h.carts.UpdateQuantity(r.Context(), user.ID, cartItemID, req.Quantity); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Cart item not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to update cart item")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case http.MethodDelete:
		if err := h.carts.Remove(r.Context(), user.ID, cartItemID); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to remove cart item")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// Count handles GET /cart/count
func (h *CartHandler) Count(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	user, ok := resolveUser(w, r, h.auth)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"count": h.carts.Count(r.Context(), user.ID)})
}

// Checkout handles POST /cart/checkout
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	user, ok := resolveUser(w, r, h.auth)
	if !ok {
		return
	}

	cart := h.carts.Get(r.Context(), user.ID)
	url, segment, err := checkout.Select(cart, h.links)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Please add items to your cart before checking out")
		return
	}

	writeJSON(w, http.StatusOK, models.CheckoutResponse{PaymentURL: url, Segment: segment})
}
