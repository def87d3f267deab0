package enums

import "fmt"

// CartEventType names a cart mutation emitted to the event stream.
type CartEventType string

const (
	CartEventLineAdded        CartEventType = "line_added"
	CartEventLineIncremented  CartEventType = "line_incremented"
	CartEventQuantityAdjusted CartEventType = "quantity_adjusted"
	CartEventLineRemoved      CartEventType = "line_removed"
	CartEventCleared          CartEventType = "cart_cleared"
)

var validCartEventTypes = []CartEventType{
	CartEventLineAdded,
	CartEventLineIncremented,
	CartEventQuantityAdjusted,
	CartEventLineRemoved,
	CartEventCleared,
}

// String implements fmt.Stringer.
func (c CartEventType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CartEventType.
func (c CartEventType) IsValid() bool {
	for _, candidate := range validCartEventTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartEventType converts raw input into a CartEventType.
func ParseCartEventType(value string) (CartEventType, error) {
	for _, candidate := range validCartEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart event type %q", value)
}
