package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	statuses := []CartStatus{StatusActive, StatusAbandoned, StatusCheckoutCreated, StatusConverted}

	legal := map[CartStatus][]CartStatus{
		StatusActive:          {StatusActive, StatusAbandoned, StatusCheckoutCreated, StatusConverted},
		StatusAbandoned:       {StatusActive, StatusCheckoutCreated},
		StatusCheckoutCreated: {StatusConverted},
		StatusConverted:       {},
	}

	for from, targets := range legal {
		allowed := map[CartStatus]bool{}
		for _, to := range targets {
			allowed[to] = true
		}
		for _, to := range statuses {
			got := CanTransition(from, to)
			assert.Equalf(t, allowed[to], got, "%s -> %s", from, to)
		}
	}
}

func TestTransitionRejectedLeavesStatusUnchanged(t *testing.T) {
	cart := &Cart{Status: StatusConverted}

	err := cart.Transition(StatusActive)

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusConverted, cart.Status)
}

func TestComputeSubtotal(t *testing.T) {
	items := []CartItem{
		{SKU: "A", Price: 10, Quantity: 2},
		{SKU: "B", Price: 5, Quantity: 1},
		{SKU: "C", Price: 3},    // missing quantity counts as 1
		{SKU: "D", Quantity: 4}, // missing price counts as 0
	}

	assert.Equal(t, 28.0, ComputeSubtotal(items))
	assert.Equal(t, 0.0, ComputeSubtotal(nil))
}

func TestIdentityKeys(t *testing.T) {
	keys := IdentityKeys{Email: " Shopper@Example.COM ", CartToken: " t1 "}.Normalize()
	assert.Equal(t, "shopper@example.com", keys.Email)
	assert.Equal(t, "t1", keys.CartToken)
	assert.False(t, keys.Empty())
	assert.True(t, IdentityKeys{}.Empty())

	cart := &Cart{CustomerEmail: "shopper@example.com"}
	IdentityKeys{SessionID: "s1"}.ApplyTo(cart)
	assert.Equal(t, "shopper@example.com", cart.CustomerEmail, "absent keys must not clear captured fields")
	assert.Equal(t, "s1", cart.SessionID)
}
