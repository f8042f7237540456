package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/afroman-media/storefront-backend/internal/auth"
	"github.com/afroman-media/storefront-backend/internal/database"
	"github.com/afroman-media/storefront-backend/internal/models"
)

type OrderHandler struct {
	db   *database.DB
	auth *auth.Service
}

func NewOrderHandler(db *database.DB, authService *auth.Service) *OrderHandler {
	return &OrderHandler{db: db, auth: authService}
}

// Orders handles POST /orders and GET /orders
func (h *OrderHandler) Orders(w http.ResponseWriter, r *http.Request) {
	user, ok := resolveUser(w, r, h.auth)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req models.CreateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.MerchandiseID == "" {
			writeError(w, http.StatusBadRequest, "merchandise_id is required")
			return
		}
		if req.Quantity <= 0 {
			req.Quantity = 1
		}

		order, err := h.db.CreateMerchOrder(r.Context(), user.ID, req)
		if err != nil {
			if errors.Is(err, database.ErrInsufficientStock) {
				writeError(w, http.StatusConflict, "Insufficient stock")
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to create order")
			return
		}
		if order == nil {
			writeError(w, http.StatusNotFound, "Merchandise not found")
			return
		}
		writeJSON(w, http.StatusCreated, order)
	case http.MethodGet:
		orders, err := h.db.GetUserOrders(r.Context(), user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if orders == nil {
			orders = []models.MerchOrder{}
		}
		writeJSON(w, http.StatusOK, orders)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
