package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/afroman-media/storefront-backend/internal/auth"
	"github.com/afroman-media/storefront-backend/internal/models"
	"github.com/afroman-media/storefront-backend/internal/store"
)

type DownloadHandler struct {
	downloads *store.DownloadStore
	auth      *auth.Service
}

func NewDownloadHandler(downloads *store.DownloadStore, authService *auth.Service) *DownloadHandler {
	return &DownloadHandler{downloads: downloads, auth: authService}
}

// Downloads handles GET /downloads, POST /downloads and DELETE /downloads
func (h *DownloadHandler) Downloads(w http.ResponseWriter, r *http.Request) {
	user, ok := resolveUser(w, r, h.auth)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.downloads.List(r.Context(), user.ID))
	case http.MethodPost:
		var movie models.Movie
		if err := json.NewDecoder(r.Body).Decode(&movie); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if movie.ID == "" {
			writeError(w, http.StatusBadRequest, "Movie id is required")
			return
		}
		if err := h.downloads.Save(r.Context(), user.ID, movie); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save download")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case http.MethodDelete:
		if err := h.downloads.Clear(r.Context(), user.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to clear downloads")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// Download handles DELETE /downloads/{movieId}
func (h *DownloadHandler) Download(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	user, ok := resolveUser(w, r, h.auth)
	if !ok {
		return
	}

	movieID := strings.TrimPrefix(r.URL.Path, "/downloads/")
	if movieID == "" {
		writeError(w, http.StatusBadRequest, "Movie id is required")
		return
	}

	if err := h.downloads.Delete(r.Context(), user.ID, movieID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete download")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
