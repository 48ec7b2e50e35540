package domain

import (
	"strings"
	"time"
)

// FeePolicy controls how service fees are derived from the cart subtotal.
// The percentage component rounds half-up; the fixed component is added once
// per non-empty cart.
type FeePolicy struct {
	ServiceFeeBps int64
	FixedFee      int64
}

// DefaultFeePolicy charges 3% of the subtotal plus a 1.00 handling fee.
var DefaultFeePolicy = FeePolicy{ServiceFeeBps: 300, FixedFee: 100}

// Fee computes the service fee for a subtotal. Empty carts carry no fee.
func (p FeePolicy) Fee(subtotal int64) int64 {
	if subtotal <= 0 {
		return 0
	}
	return PercentOf(subtotal, p.ServiceFeeBps) + p.FixedFee
}

// ItemAvailability records the stock and per-order limits observed the last
// time the item was checked against the catalog.
type ItemAvailability struct {
	Remaining   *int
	MinPerOrder int
	MaxPerOrder int
	CheckedAt   time.Time
}

// CartItem is a single ticket-type line in a cart. TicketTypeID is unique
// within a cart; adding the same ticket type again merges quantities.
type CartItem struct {
	TicketTypeID string
	Name         string
	EventID      string
	EventTitle   string
	CategoryID   string
	UnitPrice    int64
	Quantity     int
	TotalPrice   int64
	Availability ItemAvailability
}

// DiscountSource identifies where an applied discount came from.
type DiscountSource string

const (
	DiscountSourcePromotion DiscountSource = "promotion"
	DiscountSourceCode      DiscountSource = "discount_code"
	DiscountSourceAutomatic DiscountSource = "automatic"
)

// AppliedDiscount captures the discount currently reflected in cart totals.
type AppliedDiscount struct {
	Code   string
	Source DiscountSource
	Amount int64
}

// CartTotals is the derived money summary of a cart.
type CartTotals struct {
	Subtotal int64 `json:"subtotal"`
	Fees     int64 `json:"fees"`
	Discount int64 `json:"discount"`
	Total    int64 `json:"total"`
}

// Cart is the mutable per-shopper aggregate. All mutation happens through
// methods so the item list stays normalised and totals stay consistent.
type Cart struct {
	Key       string
	SessionID string
	UserID    string
	Items     []CartItem
	PromoCode string
	Discount  *AppliedDiscount
	Totals    CartTotals
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AddItem merges the given line into the cart. Re-adding an existing ticket
// type accumulates its quantity; a new ticket type is appended preserving
// insertion order.
func (c *Cart) AddItem(item CartItem) {
	item.TicketTypeID = strings.TrimSpace(item.TicketTypeID)
	if item.TicketTypeID == "" || item.Quantity <= 0 {
		return
	}
	if idx := c.indexOfItem(item.TicketTypeID); idx >= 0 {
		existing := &c.Items[idx]
		existing.Quantity += item.Quantity
		existing.Name = item.Name
		existing.EventID = item.EventID
		existing.EventTitle = item.EventTitle
		existing.CategoryID = item.CategoryID
		existing.UnitPrice = item.UnitPrice
		existing.Availability = item.Availability
		existing.TotalPrice = existing.UnitPrice * int64(existing.Quantity)
		return
	}
	item.TotalPrice = item.UnitPrice * int64(item.Quantity)
	c.Items = append(c.Items, item)
}

// RemoveItem drops the line for the ticket type. It reports whether a line
// was removed; removing an absent line is a no-op.
func (c *Cart) RemoveItem(ticketTypeID string) bool {
	idx := c.indexOfItem(strings.TrimSpace(ticketTypeID))
	if idx < 0 {
		return false
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	return true
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero or
// less removes the line. It reports whether the cart changed.
func (c *Cart) UpdateQuantity(ticketTypeID string, quantity int) bool {
	if quantity <= 0 {
		return c.RemoveItem(ticketTypeID)
	}
	idx := c.indexOfItem(strings.TrimSpace(ticketTypeID))
	if idx < 0 {
		return false
	}
	item := &c.Items[idx]
	item.Quantity = quantity
	item.TotalPrice = item.UnitPrice * int64(quantity)
	return true
}

// ItemByTicketType returns a copy of the line for the ticket type.
func (c *Cart) ItemByTicketType(ticketTypeID string) (CartItem, bool) {
	idx := c.indexOfItem(strings.TrimSpace(ticketTypeID))
	if idx < 0 {
		return CartItem{}, false
	}
	return c.Items[idx], true
}

// BaseTotals derives subtotal and fees without touching the stored totals.
// Discount resolution needs these figures before the final recompute.
func (c *Cart) BaseTotals(policy FeePolicy) (subtotal, fees int64) {
	for _, item := range c.Items {
		subtotal += item.TotalPrice
	}
	return subtotal, policy.Fee(subtotal)
}

// CalculateTotals recomputes the money summary from the item list, the fee
// policy, and the applied discount. The discount is clamped to the chargeable
// amount and the total never goes negative.
func (c *Cart) CalculateTotals(policy FeePolicy) {
	subtotal, fees := c.BaseTotals(policy)

	var discount int64
	if c.Discount != nil {
		discount = ClampDiscount(c.Discount.Amount, subtotal+fees)
		c.Discount.Amount = discount
	}

	total := subtotal + fees - discount
	if total < 0 {
		total = 0
	}

	c.Totals = CartTotals{
		Subtotal: subtotal,
		Fees:     fees,
		Discount: discount,
		Total:    total,
	}
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// TotalItemCount sums the quantities across all lines.
func (c *Cart) TotalItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// Clone returns a deep copy safe to hand outside the owning lock.
func (c *Cart) Clone() Cart {
	out := *c
	if len(c.Items) > 0 {
		out.Items = make([]CartItem, len(c.Items))
		copy(out.Items, c.Items)
		for i := range out.Items {
			if rem := c.Items[i].Availability.Remaining; rem != nil {
				value := *rem
				out.Items[i].Availability.Remaining = &value
			}
		}
	}
	if c.Discount != nil {
		discount := *c.Discount
		out.Discount = &discount
	}
	return out
}

func (c *Cart) indexOfItem(ticketTypeID string) int {
	if ticketTypeID == "" {
		return -1
	}
	for i, item := range c.Items {
		if item.TicketTypeID == ticketTypeID {
			return i
		}
	}
	return -1
}
