package services

import (
	"errors"
	"fmt"

	domain "github.com/eventloft/api/internal/domain"
)

// ErrCartInvalidInput indicates the caller supplied invalid input.
var ErrCartInvalidInput = errors.New("cart service: invalid input")

// ErrCartUnavailable indicates the cart service cannot fulfil the request due to missing dependencies.
var ErrCartUnavailable = errors.New("cart service: unavailable")

// ErrCartItemNotFound indicates the referenced line is not in the cart.
var ErrCartItemNotFound = errors.New("cart service: item not found")

// ErrTicketTypeNotFound indicates the catalog has no such ticket type.
var ErrTicketTypeNotFound = errors.New("catalog service: ticket type not found")

// ErrCatalogUnavailable indicates the catalog backend cannot be reached.
var ErrCatalogUnavailable = errors.New("catalog service: unavailable")

// ErrDiscountNotFound indicates no discount carries the requested code.
var ErrDiscountNotFound = errors.New("discount service: not found")

// ErrDiscountUnavailable indicates the discount backend cannot be reached.
var ErrDiscountUnavailable = errors.New("discount service: unavailable")

// ErrCheckoutUnavailable indicates the submission could not be handed off.
var ErrCheckoutUnavailable = errors.New("checkout service: unavailable")

// RuleError rejects a single cart operation with a structured message the
// presentation layer can render. The cart is left untouched.
type RuleError struct {
	Message domain.CartMessage
}

// Error implements the error interface.
func (e *RuleError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message.TicketTypeID != "" {
		return fmt.Sprintf("cart rule %s: %s (%s)", e.Message.Code, e.Message.Text, e.Message.TicketTypeID)
	}
	return fmt.Sprintf("cart rule %s: %s", e.Message.Code, e.Message.Text)
}

// AsRuleError unwraps a RuleError when err carries one.
func AsRuleError(err error) (*RuleError, bool) {
	var ruleErr *RuleError
	if errors.As(err, &ruleErr) {
		return ruleErr, true
	}
	return nil, false
}

// ValidationFailedError aborts checkout when the cart no longer validates.
type ValidationFailedError struct {
	Result CartValidationResult
}

// Error implements the error interface.
func (e *ValidationFailedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("checkout service: cart validation failed with %d error(s)", len(e.Result.Errors))
}
