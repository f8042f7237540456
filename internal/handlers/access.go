package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/afroman-media/storefront-backend/internal/auth"
	"github.com/afroman-media/storefront-backend/internal/models"
	"github.com/afroman-media/storefront-backend/internal/store"
)

type AccessHandler struct {
	access *store.AccessStore
	auth   *auth.Service
}

func NewAccessHandler(access *store.AccessStore, authService *auth.Service) *AccessHandler {
	return &AccessHandler{access: access, auth: authService}
}

// Check handles GET /premium/access. An anonymous caller is not an error,
// it simply has no access.
func (h *AccessHandler) Check(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var userID string
	if user, err := h.auth.UserFromRequest(r); err == nil {
		userID = user.ID
	}

	writeJSON(w, http.StatusOK, map[string]bool{
		"hasAccess": h.access.Has(r.Context(), userID),
	})
}

// Confirm handles POST /premium/confirm, the manual payment confirmation.
func (h *AccessHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	user, ok := resolveUser(w, r, h.auth)
	if !ok {
		return
	}

	// Body is optional; the access type defaults to lifetime
	var req models.ConfirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	switch req.Type {
	case "", models.AccessLifetime, models.AccessSubscription:
	default:
		writeError(w, http.StatusBadRequest, "Valid access type is required")
		return
	}

	if err := h.access.Grant(r.Context(), user.ID, user.Email, req.Type); err != nil {
		if errors.Is(err, store.ErrNotAuthenticated) {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to activate premium access")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Revoke handles POST /premium/revoke
func (h *AccessHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	user, ok := resolveUser(w, r, h.auth)
	if !ok {
		return
	}

	if err := h.access.Revoke(r.Context(), user.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to revoke premium access")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
