package domain

// legalTransitions encodes the cart lifecycle. ACTIVE->ACTIVE covers content
// updates, ABANDONED->ACTIVE is reactivation, ACTIVE->CONVERTED covers orders
// that arrive before any checkout event was observed. CONVERTED is terminal.
var legalTransitions = map[CartStatus]map[CartStatus]bool{
	StatusActive: {
		StatusActive:          true,
		StatusAbandoned:       true,
		StatusCheckoutCreated: true,
		StatusConverted:       true,
	},
	StatusAbandoned: {
		StatusActive:          true,
		StatusCheckoutCreated: true,
	},
	StatusCheckoutCreated: {
		StatusConverted: true,
	},
	StatusConverted: {},
}

func CanTransition(from, to CartStatus) bool {
	targets, ok := legalTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// Transition mutates status after checking legality. Status is left
// unchanged on a rejected transition.
func (c *Cart) Transition(to CartStatus) error {
	if !CanTransition(c.Status, to) {
		return ErrInvalidTransition
	}
	c.Status = to
	return nil
}
