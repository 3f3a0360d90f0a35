package order

import (
	"errors"
	"fmt"
)

// ErrInvalidSelection is returned when a selection carries malformed catalog
// data. Merge itself does not validate, so callers run this check before
// merging or submitting.
var ErrInvalidSelection = errors.New("invalid selection")

// ValidateSelections rejects selections with an empty product name, a
// negative price, or a non-positive quantity. A zero price is allowed: the
// catalog may carry complimentary items.
func ValidateSelections(selections []Selection) error {
	for i, sel := range selections {
		if sel.Product.Name == "" {
			return fmt.Errorf("%w: selection %d has an empty product name", ErrInvalidSelection, i)
		}
		if sel.Product.Price.IsNegative() {
			return fmt.Errorf("%w: product %q has a negative price", ErrInvalidSelection, sel.Product.Name)
		}
		if sel.Quantity <= 0 {
			return fmt.Errorf("%w: product %q has non-positive quantity %d", ErrInvalidSelection, sel.Product.Name, sel.Quantity)
		}
	}
	return nil
}
