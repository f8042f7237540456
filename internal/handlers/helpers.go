package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/afroman-media/storefront-backend/internal/auth"
	"github.com/afroman-media/storefront-backend/internal/models"
	"github.com/afroman-media/storefront-backend/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// resolveUser resolves the request's session, writing the error response on
// failure. A missing or invalid session is 401; a session-store fault is 500.
func resolveUser(w http.ResponseWriter, r *http.Request, a *auth.Service) (*models.SessionUser, bool) {
	user, err := a.UserFromRequest(r)
	if err != nil {
		if errors.Is(err, store.ErrNotAuthenticated) {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
		} else {
			writeError(w, http.StatusInternalServerError, "Session lookup failed")
		}
		return nil, false
	}
	return user, true
}
