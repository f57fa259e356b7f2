package capture

import (
	"encoding/json"
	"strconv"
	"strings"

	cartdomain "github.com/smallbiznis/rescart/internal/cart/domain"
	"github.com/smallbiznis/rescart/internal/capture/domain"
)

// Normalize validates required fields and coerces the rest. A malformed item
// list or total never rejects the event; it degrades to absent.
func Normalize(raw domain.RawEvent) (domain.NormalizedEvent, error) {
	storeDomain := strings.ToLower(strings.TrimSpace(raw.StoreDomain))
	if storeDomain == "" {
		return domain.NormalizedEvent{}, domain.ErrMissingStoreDomain
	}

	keys := cartdomain.IdentityKeys{
		CartToken:  raw.CartToken,
		SessionID:  raw.SessionID,
		CustomerID: raw.CustomerID,
		Email:      raw.Email,
		Phone:      raw.Phone,
	}.Normalize()
	if keys.Empty() {
		return domain.NormalizedEvent{}, cartdomain.ErrNoIdentifiers
	}

	return domain.NormalizedEvent{
		StoreDomain: storeDomain,
		Keys:        keys,
		Items:       ParseItems(raw.Items),
		TotalHint:   parseTotal(raw.Total),
		Consents:    parseConsents(raw.Consents),
		Cleared:     raw.Cleared,
	}, nil
}

// ParseItems accepts a structured item sequence or a serialized JSON
// sequence. Anything unparseable yields nil.
func ParseItems(value any) []cartdomain.CartItem {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil
		}
		var items []cartdomain.CartItem
		if err := json.Unmarshal([]byte(v), &items); err != nil {
			return nil
		}
		return items
	case []cartdomain.CartItem:
		return v
	default:
		// Structured payloads decode through a JSON round trip so extra
		// fields are dropped rather than rejected.
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		var items []cartdomain.CartItem
		if err := json.Unmarshal(encoded, &items); err != nil {
			return nil
		}
		return items
	}
}

func parseTotal(value any) *float64 {
	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	case int64:
		f := float64(v)
		return &f
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil
		}
		return &f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

func parseConsents(value any) map[string]any {
	switch v := value.(type) {
	case nil:
		return nil
	case map[string]any:
		return v
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil
		}
		var consents map[string]any
		if err := json.Unmarshal([]byte(v), &consents); err != nil {
			return nil
		}
		return consents
	default:
		return nil
	}
}
