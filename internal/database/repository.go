package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/afroman-media/storefront-backend/internal/models"
)

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

// ErrInsufficientStock is returned when an order asks for more units than
// the merchandise record holds.
var ErrInsufficientStock = errors.New("insufficient stock")

const profileColumns = `id, email, password_hash, role, subscription_status, subscription_date,
	 created_at, updated_at`

func scanProfile(row interface {
	Scan(dest ...interface{}) error
}) (*models.UserProfile, error) {
	var p models.UserProfile
	err := row.Scan(&p.ID, &p.Email, &p.PasswordHash, &p.Role, &p.SubscriptionStatus,
		&p.SubscriptionDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetUserProfileByID retrieves a profile by user id
func (db *DB) GetUserProfileByID(ctx context.Context, id string) (*models.UserProfile, error) {
	p, err := scanProfile(db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM user_profiles WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return p, nil
}

// GetUserProfileByEmail retrieves a profile by email
func (db *DB) GetUserProfileByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	p, err := scanProfile(db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM user_profiles WHERE email = $1`, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return p, nil
}

// CreateUserProfile inserts a new profile row
func (db *DB) CreateUserProfile(ctx context.Context, email, passwordHash, role string) (*models.UserProfile, error) {
	p, err := scanProfile(db.QueryRowContext(ctx,
		`INSERT INTO user_profiles (email, password_hash, role)
		 VALUES ($1, $2, $3)
		 RETURNING `+profileColumns,
		email, passwordHash, role))
	if err != nil {
		return nil, fmt.Errorf("failed to create user profile: %w", err)
	}
	return p, nil
}

// SubscriptionStatus returns the remote entitlement flag, "" when the user
// has no profile row
func (db *DB) SubscriptionStatus(ctx context.Context, userID string) (string, error) {
	var status string
	err := db.QueryRowContext(ctx,
		`SELECT subscription_status FROM user_profiles WHERE id = $1`, userID,
	).Scan(&status)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get subscription status: %w", err)
	}
	return status, nil
}

// ActivateSubscription upserts the profile's entitlement flag to active
func (db *DB) ActivateSubscription(ctx context.Context, userID string, email string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO user_profiles (id, email, subscription_status, subscription_date)
		 VALUES ($1, $2, 'active', NOW())
		 ON CONFLICT (id) DO UPDATE
		 SET subscription_status = 'active', subscription_date = NOW(), updated_at = NOW()`,
		userID, email)
	if err != nil {
		return fmt.Errorf("failed to activate subscription: %w", err)
	}
	return nil
}

// DeactivateSubscription clears the profile's entitlement flag
func (db *DB) DeactivateSubscription(ctx context.Context, userID string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE user_profiles
		 SET subscription_status = 'inactive', updated_at = NOW()
		 WHERE id = $1`,
		userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate subscription: %w", err)
	}
	return nil
}

// CreateMerchOrder validates stock and inserts a pending order within a
// transaction. Returns nil when the merchandise id does not exist.
func (db *DB) CreateMerchOrder(ctx context.Context, userID string, req models.CreateOrderRequest) (*models.MerchOrder, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	merch, err := scanMerchandise(tx.QueryRowContext(ctx,
		`SELECT `+merchColumns+` FROM merchandise WHERE id = $1 FOR UPDATE`,
		req.MerchandiseID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get merchandise: %w", err)
	}
	if merch.StockQuantity < req.Quantity {
		return nil, ErrInsufficientStock
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE merchandise
		 SET stock_quantity = stock_quantity - $1,
		  is_available = (stock_quantity - $1) > 0,
		  updated_at = NOW()
		 WHERE id = $2`,
		req.Quantity, req.MerchandiseID)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve stock: %w", err)
	}

	totalPrice := merch.Price.Mul(decimalFromInt(req.Quantity))

	var order models.MerchOrder
	err = tx.QueryRowContext(ctx,
		`INSERT INTO merch_orders (id, user_id, merchandise_id, quantity, size, color,
		  total_price, shipping_address, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending')
		 RETURNING id, user_id, merchandise_id, quantity, size, color, total_price, status,
		  shipping_address, created_at, updated_at`,
		uuid.NewString(), userID, req.MerchandiseID, req.Quantity, req.Size, req.Color,
		totalPrice, req.ShippingAddress,
	).Scan(&order.ID, &order.UserID, &order.MerchandiseID, &order.Quantity, &order.Size,
		&order.Color, &order.TotalPrice, &order.Status, &order.ShippingAddress,
		&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &order, nil
}

// GetUserOrders retrieves all orders for a user, newest first
func (db *DB) GetUserOrders(ctx context.Context, userID string) ([]models.MerchOrder, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, merchandise_id, quantity, size, color, total_price, status,
		  shipping_address, created_at, updated_at
		 FROM merch_orders
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	defer rows.Close()

	var orders []models.MerchOrder
	for rows.Next() {
		var o models.MerchOrder
		err := rows.Scan(&o.ID, &o.UserID, &o.MerchandiseID, &o.Quantity, &o.Size, &o.Color,
			&o.TotalPrice, &o.Status, &o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
