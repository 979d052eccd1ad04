// Package mandate builds the AP2 mandate trio (intent, cart, payment) from a
// raw simulation request payload. Builders are pure transformations: they
// never touch storage and never talk to the connector.
package mandate

import (
	"time"

	"github.com/shopspring/decimal"
)

// IntentMandate captures the shopper's declared purchase intent.
type IntentMandate struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Constraints map[string]any `json:"constraints"`
	ExpiresAt   time.Time      `json:"expires_at"`
}

// CartItem is a single line of a cart mandate. Quantity is carried verbatim
// from the request, negative values included.
type CartItem struct {
	SKU       string          `json:"sku"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Metadata  map[string]any  `json:"metadata"`
}

// CartMandate holds the priced cart derived from the request payload.
// Totals always contains a "total" entry quantized to 2 decimal places.
type CartMandate struct {
	ID       string                     `json:"id"`
	IntentID string                     `json:"intent_id"`
	Items    []CartItem                 `json:"items"`
	Currency string                     `json:"currency"`
	Totals   map[string]decimal.Decimal `json:"totals"`
	Metadata map[string]any             `json:"metadata"`
}

// Total returns the computed cart total, or zero if it was never set.
func (c CartMandate) Total() decimal.Decimal {
	if t, ok := c.Totals["total"]; ok {
		return t
	}
	return decimal.Zero
}

// PaymentMandate authorizes payment of the cart total. Amount is always the
// computed cart total; an amount field inside Method is ignored so the
// declared amount can never diverge from the priced cart.
type PaymentMandate struct {
	ID          string          `json:"id"`
	IntentID    string          `json:"intent_id"`
	CartID      string          `json:"cart_id"`
	Method      map[string]any  `json:"method"`
	Amount      decimal.Decimal `json:"amount"`
	RequestedAt time.Time       `json:"requested_at"`
	Metadata    map[string]any  `json:"metadata"`
}
