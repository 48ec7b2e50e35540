package services

import (
	"context"
	"strings"

	domain "github.com/eventloft/api/internal/domain"
)

// CartKey identifies the cart a request operates on. A signed-in shopper is
// keyed by user ID; anonymous shoppers fall back to their session ID.
type CartKey struct {
	SessionID string
	UserID    string
}

// NewCartKey normalises the raw identity values into a key.
func NewCartKey(sessionID, userID string) CartKey {
	return CartKey{
		SessionID: strings.TrimSpace(sessionID),
		UserID:    strings.TrimSpace(userID),
	}
}

// Resolve returns the storage key, preferring the user identity.
func (k CartKey) Resolve() string {
	if k.UserID != "" {
		return "user:" + k.UserID
	}
	if k.SessionID != "" {
		return "session:" + k.SessionID
	}
	return ""
}

// IsZero reports whether the key carries no identity at all.
func (k CartKey) IsZero() bool {
	return k.UserID == "" && k.SessionID == ""
}

// AddItemCommand adds a quantity of one ticket type to a cart.
type AddItemCommand struct {
	Key          CartKey
	TicketTypeID string
	Quantity     int
}

// UpdateItemCommand sets the quantity of an existing cart line.
// A quantity of zero or less removes the line without validation.
type UpdateItemCommand struct {
	Key          CartKey
	TicketTypeID string
	Quantity     int
}

// CartValidationResult is the outcome of re-checking a cart against the
// live catalog. Errors block checkout; warnings describe adjustments that
// were applied automatically.
type CartValidationResult struct {
	Cart       domain.Cart
	Errors     []domain.CartMessage
	Warnings   []domain.CartMessage
	HasChanges bool
}

// IsValid reports whether the cart can proceed to checkout.
func (r CartValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// CartService is the single entry point the presentation layer uses to
// operate on carts. Every call returns a detached copy of the committed
// cart state.
type CartService interface {
	GetCart(ctx context.Context, key CartKey) (domain.Cart, error)
	AddItem(ctx context.Context, cmd AddItemCommand) (domain.Cart, error)
	UpdateItem(ctx context.Context, cmd UpdateItemCommand) (domain.Cart, error)
	RemoveItem(ctx context.Context, key CartKey, ticketTypeID string) (domain.Cart, error)
	ClearCart(ctx context.Context, key CartKey) (domain.Cart, error)
	ValidateCart(ctx context.Context, key CartKey) (CartValidationResult, error)
	ApplyPromoCode(ctx context.Context, key CartKey, code string) (domain.Cart, error)
	MergeSessionCart(ctx context.Context, sessionID, userID string) (domain.Cart, error)
}

// CatalogService serves ticket-type snapshots, caching reads briefly to keep
// hot ticket types from hammering the backend.
type CatalogService interface {
	// GetTicketType returns a possibly cached snapshot.
	GetTicketType(ctx context.Context, ticketTypeID string) (domain.TicketTypeSnapshot, error)
	// RefreshTicketType bypasses the cache for stock-sensitive checks.
	RefreshTicketType(ctx context.Context, ticketTypeID string) (domain.TicketTypeSnapshot, error)
	// EventTicketTypes lists the ticket types currently attached to an event.
	EventTicketTypes(ctx context.Context, eventID string) ([]domain.TicketTypeSnapshot, error)
}

// DiscountResolver evaluates catalog-managed discounts against cart contents.
type DiscountResolver interface {
	// ResolveCode finds the discount carrying the shopper-entered code.
	ResolveCode(ctx context.Context, code string) (domain.Discount, error)
	// AmountFor computes the discount amount for the given cart lines.
	// Zero means the discount does not apply to any line.
	AmountFor(discount domain.Discount, items []domain.CartItem) int64
	// BestAutomatic picks the codeless discount worth the most for the cart,
	// or nil when none applies.
	BestAutomatic(ctx context.Context, items []domain.CartItem) (*domain.AppliedDiscount, error)
}

// PromotionKind selects the formula behind a built-in promotion code.
type PromotionKind string

const (
	PromotionPercentSubtotal PromotionKind = "percent_subtotal"
	PromotionWaiveFees       PromotionKind = "waive_fees"
	PromotionFixedAmount     PromotionKind = "fixed_amount"
)

// Promotion is one of the fixed, code-activated storefront promotions.
type Promotion struct {
	Code  string
	Kind  PromotionKind
	Value int64
}

// PromotionService owns the closed set of built-in promotion codes.
type PromotionService interface {
	Lookup(code string) (Promotion, bool)
	DiscountFor(promotion Promotion, subtotal, fees int64) int64
}

// CheckoutPublisher hands a finalized submission to the order-creation service.
type CheckoutPublisher interface {
	PublishCheckout(ctx context.Context, submission domain.CheckoutSubmission) (string, error)
}

// CheckoutService validates a cart and publishes it for order creation.
type CheckoutService interface {
	Submit(ctx context.Context, key CartKey) (domain.CheckoutSubmission, error)
}
