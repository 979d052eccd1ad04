package mandate

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultDescription = "AP2 sandbox purchase"
	defaultTTLSeconds  = 3600
	defaultCurrency    = "USD"
	defaultSKU         = "unknown"
)

// BuildIntent derives an intent mandate from the request payload. Description
// and TTL fall back to defaults when the context omits them; price cap and
// supplier constraints pass through verbatim.
func BuildIntent(payload map[string]any) IntentMandate {
	ctx := Context(payload)

	description := stringValue(ctx["description"], defaultDescription)
	ttl := intValue(ctx["ttlSeconds"], defaultTTLSeconds)

	return IntentMandate{
		ID:          uuid.NewString(),
		Description: description,
		Constraints: map[string]any{
			"priceCap":         ctx["priceCap"],
			"allowedSuppliers": ctx["suppliers"],
			"ttlSeconds":       ttl,
		},
		ExpiresAt: time.Now().UTC().Add(time.Duration(ttl) * time.Second),
	}
}

// BuildCart prices the cart from the request payload. A missing or non-list
// items field is treated as empty, and an empty cart synthesizes exactly one
// zero-cost default item so the total is always computable. Cart-level keys
// other than items/currency pass through as metadata.
func BuildCart(intent IntentMandate, payload map[string]any) (CartMandate, error) {
	cartPayload := mapValue(payload["cart"])

	itemsInput, _ := cartPayload["items"].([]any)

	items := make([]CartItem, 0, len(itemsInput))
	for _, raw := range itemsInput {
		entry := mapValue(raw)

		qty, err := int64Value(entry["quantity"], 1)
		if err != nil {
			return CartMandate{}, fmt.Errorf("cart item quantity: %w", err)
		}
		price, err := decimalValue(entry["unitPrice"])
		if err != nil {
			return CartMandate{}, fmt.Errorf("cart item unitPrice: %w", err)
		}

		metadata := map[string]any{}
		for k, v := range entry {
			if k == "sku" || k == "quantity" || k == "unitPrice" {
				continue
			}
			metadata[k] = v
		}

		items = append(items, CartItem{
			SKU:       stringField(entry, "sku", defaultSKU),
			Quantity:  qty,
			UnitPrice: price,
			Metadata:  metadata,
		})
	}
	if len(items) == 0 {
		items = []CartItem{{SKU: defaultSKU, Quantity: 1, UnitPrice: decimal.Zero, Metadata: map[string]any{}}}
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity)))
	}

	metadata := map[string]any{}
	for k, v := range cartPayload {
		if k == "items" || k == "currency" {
			continue
		}
		metadata[k] = v
	}

	return CartMandate{
		ID:       uuid.NewString(),
		IntentID: intent.ID,
		Items:    items,
		Currency: stringValue(cartPayload["currency"], defaultCurrency),
		Totals:   map[string]decimal.Decimal{"total": total.Round(2)},
		Metadata: metadata,
	}, nil
}

// BuildPayment assembles the payment mandate. The amount is always the
// computed cart total.
func BuildPayment(intent IntentMandate, cart CartMandate, payload map[string]any) PaymentMandate {
	return PaymentMandate{
		ID:          uuid.NewString(),
		IntentID:    intent.ID,
		CartID:      cart.ID,
		Method:      Method(payload),
		Amount:      cart.Total(),
		RequestedAt: time.Now().UTC(),
		Metadata:    map[string]any{"context": Context(payload)},
	}
}

// Context extracts the request context map from a payload, never nil.
func Context(payload map[string]any) map[string]any {
	return mapValue(payload["context"])
}

// Method extracts the payment method map from a payload, accepting both the
// snake_case and camelCase spellings used by callers.
func Method(payload map[string]any) map[string]any {
	if m, ok := payload["payment_method"].(map[string]any); ok {
		return m
	}
	return mapValue(payload["paymentMethod"])
}
