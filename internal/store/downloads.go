package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/afroman-media/storefront-backend/internal/models"
)

const downloadsKeyPrefix = "downloaded_movies:"

// DownloadStore keeps the per-user list of downloaded movie snapshots as
// one JSON document, mirroring the failure split of the other stores.
type DownloadStore struct {
	storage Storage
	log     *slog.Logger
}

func NewDownloadStore(storage Storage, log *slog.Logger) *DownloadStore {
	return &DownloadStore{storage: storage, log: log}
}

func (s *DownloadStore) key(userID string) string {
	return downloadsKeyPrefix + userID
}

// List returns all downloaded movies, empty on any failure.
func (s *DownloadStore) List(ctx context.Context, userID string) []models.Movie {
	data, err := s.storage.Get(ctx, s.key(userID))
	if err != nil {
		s.log.Error("failed to read downloads", "user_id", userID, "error", err)
		return []models.Movie{}
	}
	if data == "" {
		return []models.Movie{}
	}

	var downloads []models.Movie
	if err := json.Unmarshal([]byte(data), &downloads); err != nil {
		s.log.Error("failed to parse downloads document", "user_id", userID, "error", err)
		return []models.Movie{}
	}
	return downloads
}

// Save records a movie snapshot as downloaded, stamping its local path.
// Saving an already downloaded movie is a no-op.
func (s *DownloadStore) Save(ctx context.Context, userID string, movie models.Movie) error {
	downloads := s.List(ctx, userID)
	for _, m := range downloads {
		if m.ID == movie.ID {
			return nil
		}
	}

	movie.DownloadedPath = "local://downloads/" + movie.ID
	downloads = append(downloads, movie)

	return s.save(ctx, userID, downloads)
}

// Delete removes one movie from the download list. An absent id is still
// success.
func (s *DownloadStore) Delete(ctx context.Context, userID string, movieID string) error {
	downloads := s.List(ctx, userID)
	kept := downloads[:0]
	for _, m := range downloads {
		if m.ID != movieID {
			kept = append(kept, m)
		}
	}
	return s.save(ctx, userID, kept)
}

// IsDownloaded reports whether the movie appears in the download list,
// false on any failure.
func (s *DownloadStore) IsDownloaded(ctx context.Context, userID string, movieID string) bool {
	for _, m := range s.List(ctx, userID) {
		if m.ID == movieID {
			return true
		}
	}
	return false
}

// Clear deletes the whole download list.
func (s *DownloadStore) Clear(ctx context.Context, userID string) error {
	if err := s.storage.Delete(ctx, s.key(userID)); err != nil {
		return fmt.Errorf("failed to clear downloads: %w", err)
	}
	return nil
}

func (s *DownloadStore) save(ctx context.Context, userID string, downloads []models.Movie) error {
	data, err := json.Marshal(downloads)
	if err != nil {
		return fmt.Errorf("failed to encode downloads: %w", err)
	}
	if err := s.storage.Set(ctx, s.key(userID), string(data), 0); err != nil {
		return fmt.Errorf("failed to persist downloads: %w", err)
	}
	return nil
}
