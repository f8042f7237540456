package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/afroman-media/storefront-backend/internal/models"
)

const movieColumns = `id, title, description, video_url, thumbnail_url, duration, category,
	 price, is_free, is_premium, is_new, youtube_id, created_at, updated_at`

func scanMovie(row interface {
	Scan(dest ...interface{}) error
}) (*models.Movie, error) {
	var m models.Movie
	err := row.Scan(&m.ID, &m.Title, &m.Description, &m.VideoURL, &m.ThumbnailURL,
		&m.Duration, &m.Category, &m.Price, &m.IsFree, &m.IsPremium, &m.IsNew,
		&m.YouTubeID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetAllMovies retrieves the full catalog, newest first
func (db *DB) GetAllMovies(ctx context.Context) ([]models.Movie, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+movieColumns+` FROM movies ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get movies: %w", err)
	}
	defer rows.Close()

	var movies []models.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		movies = append(movies, *m)
	}
	return movies, rows.Err()
}

// GetMovieByID retrieves a movie by ID
func (db *DB) GetMovieByID(ctx context.Context, id string) (*models.Movie, error) {
	m, err := scanMovie(db.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}
	return m, nil
}

// CreateMovie inserts a new catalog record. A YouTube id takes precedence
// over an explicit video URL, and a free movie always carries a zero price.
func (db *DB) CreateMovie(ctx context.Context, req models.MovieRequest) (*models.Movie, error) {
	videoURL, price := normalizeMovie(req)

	m, err := scanMovie(db.QueryRowContext(ctx,
		`INSERT INTO movies (title, description, video_url, thumbnail_url, duration, category,
		  price, is_free, is_premium, is_new, youtube_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE, $10)
		 RETURNING `+movieColumns,
		req.Title, req.Description, videoURL, req.ThumbnailURL, req.Duration, req.Category,
		price, req.IsFree, !req.IsFree, req.YouTubeID))
	if err != nil {
		return nil, fmt.Errorf("failed to create movie: %w", err)
	}
	return m, nil
}

// UpdateMovie rewrites an existing record, preserving its is_new flag.
// Returns nil when the id does not exist.
func (db *DB) UpdateMovie(ctx context.Context, id string, req models.MovieRequest) (*models.Movie, error) {
	videoURL, price := normalizeMovie(req)

	m, err := scanMovie(db.QueryRowContext(ctx,
		`UPDATE movies
		 SET title = $1, description = $2, video_url = $3, thumbnail_url = $4, duration = $5,
		     category = $6, price = $7, is_free = $8, is_premium = $9, youtube_id = $10,
		     updated_at = NOW()
		 WHERE id = $11
		 RETURNING `+movieColumns,
		req.Title, req.Description, videoURL, req.ThumbnailURL, req.Duration,
		req.Category, price, req.IsFree, !req.IsFree, req.YouTubeID, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update movie: %w", err)
	}
	return m, nil
}

// DeleteMovie removes a catalog record, reporting whether a row existed
func (db *DB) DeleteMovie(ctx context.Context, id string) (bool, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete movie: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete movie: %w", err)
	}
	return affected > 0, nil
}

func normalizeMovie(req models.MovieRequest) (videoURL string, price decimal.Decimal) {
	videoURL = req.VideoURL
	if req.YouTubeID != "" {
		videoURL = "https://www.youtube.com/watch?v=" + req.YouTubeID
	}
	price = req.Price
	if req.IsFree {
		price = decimal.Zero
	}
	return videoURL, price
}

const merchColumns = `id, name, description, price, image_url, category, sizes, colors,
	 stock_quantity, is_available, created_at, updated_at`

func scanMerchandise(row interface {
	Scan(dest ...interface{}) error
}) (*models.Merchandise, error) {
	var m models.Merchandise
	err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Price, &m.ImageURL, &m.Category,
		pq.Array(&m.Sizes), pq.Array(&m.Colors), &m.StockQuantity, &m.IsAvailable,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if m.Sizes == nil {
		m.Sizes = []string{}
	}
	if m.Colors == nil {
		m.Colors = []string{}
	}
	return &m, nil
}

// GetAllMerchandise retrieves available merchandise, newest first
func (db *DB) GetAllMerchandise(ctx context.Context) ([]models.Merchandise, error) {
	return db.queryMerchandise(ctx,
		`SELECT `+merchColumns+` FROM merchandise WHERE is_available ORDER BY created_at DESC`)
}

// GetMerchandiseByCategory retrieves available merchandise in one category
func (db *DB) GetMerchandiseByCategory(ctx context.Context, category string) ([]models.Merchandise, error) {
	return db.queryMerchandise(ctx,
		`SELECT `+merchColumns+` FROM merchandise
		 WHERE category = $1 AND is_available ORDER BY created_at DESC`, category)
}

// GetMerchandiseByID retrieves one merchandise record regardless of availability
func (db *DB) GetMerchandiseByID(ctx context.Context, id string) (*models.Merchandise, error) {
	m, err := scanMerchandise(db.QueryRowContext(ctx,
		`SELECT `+merchColumns+` FROM merchandise WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get merchandise: %w", err)
	}
	return m, nil
}

func (db *DB) queryMerchandise(ctx context.Context, query string, args ...interface{}) ([]models.Merchandise, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get merchandise: %w", err)
	}
	defer rows.Close()

	var items []models.Merchandise
	for rows.Next() {
		m, err := scanMerchandise(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan merchandise: %w", err)
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}
