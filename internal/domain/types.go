package domain

import (
	"strings"
	"time"
)

// TicketTypeSnapshot is the catalog view of a ticket type at a point in time.
// Quantity and sale-window fields drive validation; price and labels are
// denormalised onto cart items when the snapshot is added to a cart.
type TicketTypeSnapshot struct {
	ID         string
	Name       string
	EventID    string
	EventTitle string
	CategoryID string

	UnitPrice int64

	OnSale       bool
	SaleStartsAt time.Time
	SaleEndsAt   time.Time

	// RemainingQuantity is nil when the ticket type has unlimited stock.
	RemainingQuantity *int

	MinPerOrder int
	MaxPerOrder int

	RetrievedAt time.Time
}

// OnSaleAt reports whether the ticket type can be sold at the given instant.
// The flag gates sales outright; the window only applies when its bounds are set.
func (t TicketTypeSnapshot) OnSaleAt(now time.Time) bool {
	if !t.OnSale {
		return false
	}
	if !t.SaleStartsAt.IsZero() && now.Before(t.SaleStartsAt) {
		return false
	}
	if !t.SaleEndsAt.IsZero() && now.After(t.SaleEndsAt) {
		return false
	}
	return true
}

// MessageSeverity distinguishes blocking problems from advisory notices.
type MessageSeverity string

const (
	SeverityError   MessageSeverity = "error"
	SeverityWarning MessageSeverity = "warning"
)

// MessageCode enumerates every cart feedback message the engine can emit.
type MessageCode string

const (
	MsgTicketNotOnSale      MessageCode = "TICKET_NOT_ON_SALE"
	MsgQuantityBelowMinimum MessageCode = "QUANTITY_BELOW_MINIMUM"
	MsgQuantityAboveMaximum MessageCode = "QUANTITY_ABOVE_MAXIMUM"
	MsgTicketOutOfStock     MessageCode = "TICKET_OUT_OF_STOCK"
	MsgQuantityReducedStock MessageCode = "QUANTITY_REDUCED_STOCK"
	MsgInvalidPromoCode     MessageCode = "INVALID_PROMO_CODE"
	MsgPromoNotApplicable   MessageCode = "PROMO_NOT_APPLICABLE"
	MsgEmptyCart            MessageCode = "EMPTY_CART"
)

// CartMessage is a structured, renderable validation outcome tied to a cart
// or one of its items.
type CartMessage struct {
	Code         MessageCode
	Severity     MessageSeverity
	TicketTypeID string
	Text         string
	Params       map[string]any
}

// NewCartError builds a blocking message for the given ticket type.
func NewCartError(code MessageCode, ticketTypeID, text string, params map[string]any) CartMessage {
	return CartMessage{
		Code:         code,
		Severity:     SeverityError,
		TicketTypeID: strings.TrimSpace(ticketTypeID),
		Text:         text,
		Params:       cloneParams(params),
	}
}

// NewCartWarning builds an advisory message for the given ticket type.
func NewCartWarning(code MessageCode, ticketTypeID, text string, params map[string]any) CartMessage {
	return CartMessage{
		Code:         code,
		Severity:     SeverityWarning,
		TicketTypeID: strings.TrimSpace(ticketTypeID),
		Text:         text,
		Params:       cloneParams(params),
	}
}

func cloneParams(params map[string]any) map[string]any {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}

// CheckoutLine is one finalized order line handed to the order-creation service.
type CheckoutLine struct {
	TicketTypeID string `json:"ticketTypeId"`
	Name         string `json:"name"`
	EventID      string `json:"eventId"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int64  `json:"unitPrice"`
	TotalPrice   int64  `json:"totalPrice"`
}

// CheckoutSubmission is the message published when a validated cart is
// handed off for order creation.
type CheckoutSubmission struct {
	ID          string         `json:"id"`
	CartKey     string         `json:"cartKey"`
	SessionID   string         `json:"sessionId,omitempty"`
	UserID      string         `json:"userId,omitempty"`
	Lines       []CheckoutLine `json:"lines"`
	Totals      CartTotals     `json:"totals"`
	PromoCode   string         `json:"promoCode,omitempty"`
	SubmittedAt time.Time      `json:"submittedAt"`
}
