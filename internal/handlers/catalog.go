package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/afroman-media/storefront-backend/internal/auth"
	"github.com/afroman-media/storefront-backend/internal/database"
	"github.com/afroman-media/storefront-backend/internal/models"
)

type CatalogHandler struct {
	db   *database.DB
	auth *auth.Service
}

func NewCatalogHandler(db *database.DB, authService *auth.Service) *CatalogHandler {
	return &CatalogHandler{db: db, auth: authService}
}

// Movies handles GET /movies and POST /movies
func (h *CatalogHandler) Movies(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		movies, err := h.db.GetAllMovies(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if movies == nil {
			movies = []models.Movie{}
		}
		writeJSON(w, http.StatusOK, movies)
	case http.MethodPost:
		if !h.requireAdmin(w, r) {
			return
		}
		req, ok := decodeMovieRequest(w, r)
		if !ok {
			return
		}
		movie, err := h.db.CreateMovie(r.Context(), *req)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to create movie")
			return
		}
		writeJSON(w, http.StatusCreated, movie)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// Movie handles GET/PUT/DELETE /movies/{id}
func (h *CatalogHandler) Movie(w http.ResponseWriter, r *http.Request) {
	movieID := strings.TrimPrefix(r.URL.Path, "/movies/")
	if movieID == "" {
		writeError(w, http.StatusBadRequest, "Movie id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		movie, err := h.db.GetMovieByID(r.Context(), movieID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if movie == nil {
			writeError(w, http.StatusNotFound, "Movie not found")
			return
		}
		writeJSON(w, http.StatusOK, movie)
	case http.MethodPut:
		if !h.requireAdmin(w, r) {
			return
		}
		req, ok := decodeMovieRequest(w, r)
		if !ok {
			return
		}
		movie, err := h.db.UpdateMovie(r.Context(), movieID, *req)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to update movie")
			return
		}
		if movie == nil {
			writeError(w, http.StatusNotFound, "Movie not found")
			return
		}
		writeJSON(w, http.StatusOK, movie)
	case http.MethodDelete:
		if !h.requireAdmin(w, r) {
			return
		}
		found, err := h.db.DeleteMovie(r.Context(), movieID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to delete movie")
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, "Movie not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// Merchandise handles GET /merchandise with an optional category filter
func (h *CatalogHandler) Merchandise(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var (
		items []models.Merchandise
		err   error
	)
	if category := r.URL.Query().Get("category"); category != "" {
		items, err = h.db.GetMerchandiseByCategory(r.Context(), category)
	} else {
		items, err = h.db.GetAllMerchandise(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if items == nil {
		items = []models.Merchandise{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *CatalogHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	user, ok := resolveUser(w, r, h.auth)
	if !ok {
		return false
	}
	if user.Role != "admin" {
		writeError(w, http.StatusForbidden, "Admin privileges required")
		return false
	}
	return true
}

func decodeMovieRequest(w http.ResponseWriter, r *http.Request) (*models.MovieRequest, bool) {
	var req models.MovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}

	if req.Title == "" || req.Description == "" || req.ThumbnailURL == "" {
		writeError(w, http.StatusBadRequest, "title, description and thumbnailUrl are required")
		return nil, false
	}
	if req.VideoURL == "" && req.YouTubeID == "" {
		writeError(w, http.StatusBadRequest, "Either videoUrl or youtubeId is required")
		return nil, false
	}
	if req.Duration <= 0 {
		writeError(w, http.StatusBadRequest, "Duration must be a positive number of seconds")
		return nil, false
	}
	if req.Price.IsNegative() {
		writeError(w, http.StatusBadRequest, "price must not be negative")
		return nil, false
	}
	if req.Category == "" {
		req.Category = models.CategoryMovie
	}
	switch req.Category {
	case models.CategoryMovie, models.CategoryProject, models.CategoryMusicVideo:
	default:
		writeError(w, http.StatusBadRequest, "Valid category is required")
		return nil, false
	}

	return &req, true
}
