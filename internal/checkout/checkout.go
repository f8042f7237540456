package checkout

import (
	"errors"

	"github.com/afroman-media/storefront-backend/internal/models"
)

// ErrEmptyCart is returned when checkout is attempted with no items.
var ErrEmptyCart = errors.New("cart is empty")

const (
	SegmentPremium     = "premium"
	SegmentMerchandise = "merchandise"
)

// Links carries the two fixed hosted-checkout pages.
type Links struct {
	Premium     string
	Merchandise string
}

// Select picks the hosted checkout page for the cart's item mix. Premium
// content wins whenever a movie or subscription item is present. No
// line-item detail is handed off; completion is only learned through the
// manual confirmation path.
func Select(cart models.Cart, links Links) (url string, segment string, err error) {
	if len(cart.Items) == 0 {
		return "", "", ErrEmptyCart
	}

	for _, item := range cart.Items {
		if item.Type == models.ItemMovie || item.Type == models.ItemSubscription {
			return links.Premium, SegmentPremium, nil
		}
	}
	return links.Merchandise, SegmentMerchandise, nil
}
