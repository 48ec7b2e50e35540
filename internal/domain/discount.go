package domain

import (
	"strings"
	"time"
)

// DiscountType selects how a discount's value is interpreted.
type DiscountType string

const (
	// DiscountPercentage values are basis points applied to eligible line totals.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixedAmount values are minor currency units taken off once.
	DiscountFixedAmount DiscountType = "fixed_amount"
)

// Discount is a catalog-managed price reduction. A blank Code marks an
// automatic discount applied without shopper input. Scoping fields narrow
// which cart lines are eligible; a discount with no scoping applies to the
// whole cart.
type Discount struct {
	ID    string
	Code  string
	Type  DiscountType
	Value int64

	EventID       string
	CategoryID    string
	TicketTypeIDs []string

	// QuantityAvailable is nil for unlimited redemptions.
	QuantityAvailable *int
	QuantitySold      int

	StartsAt time.Time
	EndsAt   time.Time
}

// IsAutomatic reports whether the discount applies without a shopper code.
func (d Discount) IsAutomatic() bool {
	return strings.TrimSpace(d.Code) == ""
}

// ActiveAt reports whether the discount can still be redeemed: inside its
// validity window and not exhausted.
func (d Discount) ActiveAt(now time.Time) bool {
	if !d.StartsAt.IsZero() && now.Before(d.StartsAt) {
		return false
	}
	if !d.EndsAt.IsZero() && now.After(d.EndsAt) {
		return false
	}
	if d.QuantityAvailable != nil && d.QuantitySold >= *d.QuantityAvailable {
		return false
	}
	return true
}

// DiscountCriteria is the immutable eligibility predicate derived from a
// discount's scoping fields. Deriving it once up front keeps per-item checks
// allocation free.
type DiscountCriteria struct {
	eventID       string
	categoryID    string
	ticketTypeIDs map[string]struct{}
}

// NewDiscountCriteria derives the matching predicate from a discount.
func NewDiscountCriteria(d Discount) DiscountCriteria {
	criteria := DiscountCriteria{
		eventID:    strings.TrimSpace(d.EventID),
		categoryID: strings.TrimSpace(d.CategoryID),
	}
	if len(d.TicketTypeIDs) > 0 {
		criteria.ticketTypeIDs = make(map[string]struct{}, len(d.TicketTypeIDs))
		for _, id := range d.TicketTypeIDs {
			if trimmed := strings.TrimSpace(id); trimmed != "" {
				criteria.ticketTypeIDs[trimmed] = struct{}{}
			}
		}
	}
	return criteria
}

// IsGlobal reports whether the criteria has no scoping and matches every line.
func (c DiscountCriteria) IsGlobal() bool {
	return c.eventID == "" && c.categoryID == "" && len(c.ticketTypeIDs) == 0
}

// Matches reports whether the cart line is eligible. Every present scope must
// hold; absent scopes always pass.
func (c DiscountCriteria) Matches(item CartItem) bool {
	if c.eventID != "" && item.EventID != c.eventID {
		return false
	}
	if c.categoryID != "" && item.CategoryID != c.categoryID {
		return false
	}
	if len(c.ticketTypeIDs) > 0 {
		if _, ok := c.ticketTypeIDs[item.TicketTypeID]; !ok {
			return false
		}
	}
	return true
}

// EligibleSubtotal sums the line totals of matching items.
func (c DiscountCriteria) EligibleSubtotal(items []CartItem) int64 {
	var subtotal int64
	for _, item := range items {
		if c.Matches(item) {
			subtotal += item.TotalPrice
		}
	}
	return subtotal
}
