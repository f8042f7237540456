package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/afroman-media/storefront-backend/internal/auth"
	"github.com/afroman-media/storefront-backend/internal/models"
	"github.com/afroman-media/storefront-backend/internal/store"
)

type PurchaseHandler struct {
	purchases *store.PurchaseStore
	auth      *auth.Service
}

func NewPurchaseHandler(purchases *store.PurchaseStore, authService *auth.Service) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases, auth: authService}
}

// Purchases handles GET /purchases, POST /purchases and DELETE /purchases
func (h *PurchaseHandler) Purchases(w http.ResponseWriter, r *http.Request) {
	user, ok := resolveUser(w, r, h.auth)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.purchases.List(r.Context(), user.ID))
	case http.MethodPost:
		var req models.RecordPurchaseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.MovieID == "" {
			writeError(w, http.StatusBadRequest, "movieId is required")
			return
		}
		if req.Price.IsNegative() {
			writeError(w, http.StatusBadRequest, "price must not be negative")
			return
		}
		if err := h.purchases.Record(r.Context(), user.ID, req.MovieID, req.Price, req.PaymentIntentID); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to record purchase")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case http.MethodDelete:
		if err := h.purchases.Clear(r.Context(), user.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to clear purchases")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// Purchase handles GET /purchases/{movieId}
func (h *PurchaseHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	user, ok := resolveUser(w, r, h.auth)
	if !ok {
		return
	}

	movieID := strings.TrimPrefix(r.URL.Path, "/purchases/")
	if movieID == "" {
		writeError(w, http.StatusBadRequest, "Movie id is required")
		return
	}

	purchase := h.purchases.Details(r.Context(), user.ID, movieID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"purchased": purchase != nil,
		"purchase":  purchase,
	})
}
