package domain

import "strings"

// IdentityKeys is the per-event set of identifiers that can refer to one
// cart. Two carts belong to the same shopper when their key sets intersect
// on any non-empty member. The relation is derived per event, never stored.
type IdentityKeys struct {
	CartToken  string
	SessionID  string
	CustomerID string
	Email      string
	Phone      string
}

func (k IdentityKeys) Normalize() IdentityKeys {
	return IdentityKeys{
		CartToken:  strings.TrimSpace(k.CartToken),
		SessionID:  strings.TrimSpace(k.SessionID),
		CustomerID: strings.TrimSpace(k.CustomerID),
		Email:      strings.ToLower(strings.TrimSpace(k.Email)),
		Phone:      strings.TrimSpace(k.Phone),
	}
}

func (k IdentityKeys) Empty() bool {
	return k.CartToken == "" && k.SessionID == "" && k.CustomerID == "" && k.Email == "" && k.Phone == ""
}

// FromCart derives the key set currently held by a cart.
func FromCart(c *Cart) IdentityKeys {
	return IdentityKeys{
		CartToken:  c.CartToken,
		SessionID:  c.SessionID,
		CustomerID: c.CustomerID,
		Email:      c.CustomerEmail,
		Phone:      c.CustomerPhone,
	}
}

// ApplyTo copies every non-empty key onto the cart without clearing
// previously captured identity fields.
func (k IdentityKeys) ApplyTo(c *Cart) {
	if k.CartToken != "" {
		c.CartToken = k.CartToken
	}
	if k.SessionID != "" {
		c.SessionID = k.SessionID
	}
	if k.CustomerID != "" {
		c.CustomerID = k.CustomerID
	}
	if k.Email != "" {
		c.CustomerEmail = k.Email
	}
	if k.Phone != "" {
		c.CustomerPhone = k.Phone
	}
}
