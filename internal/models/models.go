package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItemType discriminates which optional CartItem fields are meaningful
type CartItemType string

const (
	ItemMerchandise  CartItemType = "merchandise"
	ItemMovie        CartItemType = "movie"
	ItemSubscription CartItemType = "subscription"
)

// CartItem is a purchasable unit snapshotted into the cart at add time.
// Display fields are captured when the item is added and are not re-synced
// to later catalog changes.
type CartItem struct {
	ID          string          `json:"id"`
	Type        CartItemType    `json:"type"`
	ItemID      string          `json:"itemId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	Quantity    int             `json:"quantity"`

	// Merchandise specific
	Size     string `json:"size,omitempty"`
	Color    string `json:"color,omitempty"`
	Category string `json:"category,omitempty"`

	// Movie specific
	Duration int `json:"duration,omitempty"`

	// Subscription specific
	SubscriptionType string `json:"subscriptionType,omitempty"`
}

// Cart is the persisted per-user aggregate. TotalItems and TotalPrice are
// always recomputed from Items after a mutation, never stored independently.
type Cart struct {
	Items      []CartItem      `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// AccessType represents how premium access was granted
type AccessType string

const (
	AccessLifetime     AccessType = "lifetime"
	AccessSubscription AccessType = "subscription"
)

// PremiumAccess is the locally cached copy of the remote entitlement flag.
// A record with ExpiresAt in the past is invalid and is evicted on read.
type PremiumAccess struct {
	UserID    string     `json:"userId"`
	GrantedAt time.Time  `json:"grantedAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Type      AccessType `json:"type"`
}

// Purchase records a single movie purchase for a user
type Purchase struct {
	MovieID         string          `json:"movieId"`
	PurchaseDate    time.Time       `json:"purchaseDate"`
	Price           decimal.Decimal `json:"price"`
	PaymentIntentID string          `json:"paymentIntentId,omitempty"`
}

// MovieCategory represents valid catalog categories
type MovieCategory string

const (
	CategoryMovie      MovieCategory = "movie"
	CategoryProject    MovieCategory = "project"
	CategoryMusicVideo MovieCategory = "music-video"
)

// Movie is a catalog content record
type Movie struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	ThumbnailURL   string          `json:"thumbnailUrl"`
	VideoURL       string          `json:"videoUrl"`
	Duration       int             `json:"duration"`
	Category       MovieCategory   `json:"category"`
	Price          decimal.Decimal `json:"price"`
	IsFree         bool            `json:"isFree"`
	IsPremium      bool            `json:"isPremium"`
	IsNew          bool            `json:"isNew"`
	YouTubeID      string          `json:"youtubeId,omitempty"`
	DownloadedPath string          `json:"downloadedPath,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Merchandise is a catalog merchandise record
type Merchandise struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      string          `json:"image_url"`
	Category      string          `json:"category"`
	Sizes         []string        `json:"sizes"`
	Colors        []string        `json:"colors"`
	StockQuantity int             `json:"stock_quantity"`
	IsAvailable   bool            `json:"is_available"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OrderStatus represents valid merch order states
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// MerchOrder represents a merchandise order
type MerchOrder struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	MerchandiseID   string          `json:"merchandise_id"`
	Quantity        int             `json:"quantity"`
	Size            string          `json:"size,omitempty"`
	Color           string          `json:"color,omitempty"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Status          OrderStatus     `json:"status"`
	ShippingAddress string          `json:"shipping_address,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// UserProfile is a row in user_profiles, the source of truth for the
// subscription_status entitlement flag
type UserProfile struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	Role               string     `json:"role"`
	SubscriptionStatus string     `json:"subscription_status"`
	SubscriptionDate   *time.Time `json:"subscription_date,omitempty"`
	PasswordHash       string     `json:"-"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// SessionUser is the authenticated identity resolved from a bearer token
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// API Request/Response types

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInResponse struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type ConfirmPaymentRequest struct {
	Type AccessType `json:"type,omitempty"`
}

type CreateOrderRequest struct {
	MerchandiseID   string `json:"merchandise_id"`
	Quantity        int    `json:"quantity"`
	Size            string `json:"size,omitempty"`
	Color           string `json:"color,omitempty"`
	ShippingAddress string `json:"shipping_address,omitempty"`
}

type RecordPurchaseRequest struct {
	MovieID         string          `json:"movieId"`
	Price           decimal.Decimal `json:"price"`
	PaymentIntentID string          `json:"paymentIntentId,omitempty"`
}

type MovieRequest struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	VideoURL     string          `json:"videoUrl"`
	ThumbnailURL string          `json:"thumbnailUrl"`
	Duration     int             `json:"duration"`
	Category     MovieCategory   `json:"category"`
	Price        decimal.Decimal `json:"price"`
	IsFree       bool            `json:"isFree"`
	YouTubeID    string          `json:"youtubeId,omitempty"`
}

type CheckoutResponse struct {
	PaymentURL string `json:"payment_url"`
	Segment    string `json:"segment"`
}
