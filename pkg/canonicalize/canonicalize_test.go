package canonicalize

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJCS_SortsKeys(t *testing.T) {
	out, err := JCS(map[string]any{"b": 1, "a": 2, "c": 3})
	require.NoError(t, err)
	assert.Equal(t, `{"a":2,"b":1,"c":3}`, string(out))
}

func TestJCS_NestedStructures(t *testing.T) {
	out, err := JCS(map[string]any{
		"outer": map[string]any{"z": "last", "a": "first"},
		"list":  []any{3, 1, 2},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"list":[3,1,2],"outer":{"a":"first","z":"last"}}`, string(out))
}

func TestJCS_NoHTMLEscaping(t *testing.T) {
	out, err := JCS(map[string]any{"url": "https://example.com/a?b=1&c=<2>"})
	require.NoError(t, err)
	assert.Contains(t, string(out), "&c=<2>")
}

func TestCanonicalHash_Deterministic(t *testing.T) {
	payload := map[string]any{
		"amount":    decimal.RequireFromString("20.00"),
		"timestamp": time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		"nested":    map[string]any{"x": "y"},
	}

	h1, err := CanonicalHash(payload)
	require.NoError(t, err)
	h2, err := CanonicalHash(payload)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestCanonicalHash_SensitiveToContent(t *testing.T) {
	base := map[string]any{"sku": "A", "quantity": 2}
	changed := map[string]any{"sku": "A", "quantity": 3}

	h1, err := CanonicalHash(base)
	require.NoError(t, err)
	h2, err := CanonicalHash(changed)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestCanonicalHash_DecimalSerializedAsString(t *testing.T) {
	// Decimal amounts must hash via their string form so precision survives
	// the round trip through stored JSON.
	s, err := JCSString(map[string]any{"amount": decimal.RequireFromString("10.50")})
	require.NoError(t, err)
	assert.Equal(t, `{"amount":"10.5"}`, s)
}

func TestHashBytes(t *testing.T) {
	// sha256 of the empty input is a fixed vector.
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		HashBytes(nil),
	)
}
