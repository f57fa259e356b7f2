package capture

import (
	"testing"

	cartdomain "github.com/smallbiznis/rescart/internal/cart/domain"
	"github.com/smallbiznis/rescart/internal/capture/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRequiredFields(t *testing.T) {
	_, err := Normalize(domain.RawEvent{CartToken: "t1"})
	assert.ErrorIs(t, err, domain.ErrMissingStoreDomain)

	_, err = Normalize(domain.RawEvent{StoreDomain: "shop.example.com"})
	assert.ErrorIs(t, err, cartdomain.ErrNoIdentifiers)
}

func TestNormalizeStructuredItems(t *testing.T) {
	event, err := Normalize(domain.RawEvent{
		StoreDomain: "Shop.Example.com",
		CartToken:   "t1",
		Items: []any{
			map[string]any{"sku": "A", "price": 10.0, "quantity": 2},
		},
		Total: 19.99,
	})
	require.NoError(t, err)

	assert.Equal(t, "shop.example.com", event.StoreDomain)
	require.Len(t, event.Items, 1)
	assert.Equal(t, cartdomain.CartItem{SKU: "A", Price: 10, Quantity: 2}, event.Items[0])
	require.NotNil(t, event.TotalHint)
	assert.Equal(t, 19.99, *event.TotalHint)
}

func TestNormalizeSerializedItems(t *testing.T) {
	event, err := Normalize(domain.RawEvent{
		StoreDomain: "shop.example.com",
		SessionID:   "s1",
		Items:       `[{"sku":"A","price":10,"quantity":2},{"sku":"B","price":5,"quantity":1}]`,
		Total:       "25",
	})
	require.NoError(t, err)

	require.Len(t, event.Items, 2)
	require.NotNil(t, event.TotalHint)
	assert.Equal(t, 25.0, *event.TotalHint)
}

func TestNormalizeMalformedItemsDegradesToAbsent(t *testing.T) {
	event, err := Normalize(domain.RawEvent{
		StoreDomain: "shop.example.com",
		CartToken:   "t1",
		Items:       `{"not":"a list"`,
		Total:       "not a number",
	})
	require.NoError(t, err, "a malformed item list must never reject the event")

	assert.Nil(t, event.Items)
	assert.Nil(t, event.TotalHint)
}

func TestNormalizeConsents(t *testing.T) {
	event, err := Normalize(domain.RawEvent{
		StoreDomain: "shop.example.com",
		CartToken:   "t1",
		Consents:    `{"sms":true}`,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"sms": true}, event.Consents)
}
