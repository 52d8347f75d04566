package cart

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrItemNotFound    = errors.New("item not found in cart")
)

// QuantityError carries the rejected quantity and the ceiling in force.
type QuantityError struct {
	Quantity int
	Max      int
}

func (e *QuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d: must be between 0 and %d", e.Quantity, e.Max)
}

func (e *QuantityError) Is(target error) bool {
	return target == ErrInvalidQuantity
}
