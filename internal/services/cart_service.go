package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/eventloft/api/internal/domain"
)

var (
	errCartStoreRequired      = errors.New("cart service: store is required")
	errCartCatalogRequired    = errors.New("cart service: catalog is required")
	errCartPromotionsRequired = errors.New("cart service: promotions are required")
)

// CartServiceDeps wires the store, catalog, and discount dependencies for
// cart operations.
type CartServiceDeps struct {
	Store      *CartStore
	Catalog    CatalogService
	Discounts  DiscountResolver
	Promotions PromotionService

	// FeePolicy defaults to the standard 3% + 1.00 schedule when zero.
	FeePolicy domain.FeePolicy
	// AutomaticDiscounts enables codeless discounts on every repricing pass.
	AutomaticDiscounts bool

	Clock  func() time.Time
	Logger func(context.Context, string, map[string]any)
}

type cartService struct {
	store      *CartStore
	catalog    CatalogService
	discounts  DiscountResolver
	promotions PromotionService
	fees       domain.FeePolicy
	autoOffers bool
	now        func() time.Time
	logger     func(context.Context, string, map[string]any)
}

// NewCartService constructs a CartService enforcing dependency validation.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Store == nil {
		return nil, errCartStoreRequired
	}
	if deps.Catalog == nil {
		return nil, errCartCatalogRequired
	}
	if deps.Promotions == nil {
		return nil, errCartPromotionsRequired
	}

	fees := deps.FeePolicy
	if fees == (domain.FeePolicy{}) {
		fees = domain.DefaultFeePolicy
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &cartService{
		store:      deps.Store,
		catalog:    deps.Catalog,
		discounts:  deps.Discounts,
		promotions: deps.Promotions,
		fees:       fees,
		autoOffers: deps.AutomaticDiscounts && deps.Discounts != nil,
		now:        func() time.Time { return clock().UTC() },
		logger:     logger,
	}, nil
}

// GetCart returns the cart for the key, creating an empty one on first touch.
func (s *cartService) GetCart(ctx context.Context, key CartKey) (domain.Cart, error) {
	if key.IsZero() {
		return domain.Cart{}, ErrCartInvalidInput
	}
	return s.store.WithCart(ctx, key, func(cart *domain.Cart) error {
		return s.reprice(ctx, cart)
	})
}

// AddItem validates the requested quantity against a live catalog snapshot
// and merges the line into the cart. The first failed check rejects the
// whole operation.
func (s *cartService) AddItem(ctx context.Context, cmd AddItemCommand) (domain.Cart, error) {
	ticketTypeID := strings.TrimSpace(cmd.TicketTypeID)
	if cmd.Key.IsZero() || ticketTypeID == "" || cmd.Quantity <= 0 {
		return domain.Cart{}, ErrCartInvalidInput
	}

	snapshot, err := s.catalog.GetTicketType(ctx, ticketTypeID)
	if err != nil {
		return domain.Cart{}, err
	}

	return s.store.WithCart(ctx, cmd.Key, func(cart *domain.Cart) error {
		quantity := cmd.Quantity
		if existing, ok := cart.ItemByTicketType(ticketTypeID); ok {
			quantity += existing.Quantity
		}
		if msg := checkQuantity(snapshot, quantity, s.now()); msg != nil {
			return &RuleError{Message: *msg}
		}
		cart.AddItem(itemFromSnapshot(snapshot, cmd.Quantity, s.now()))
		return s.reprice(ctx, cart)
	})
}

// UpdateItem sets the quantity of an existing line. Zero or negative
// quantities remove the line without validation; increases re-run the full
// check ladder against a live snapshot.
func (s *cartService) UpdateItem(ctx context.Context, cmd UpdateItemCommand) (domain.Cart, error) {
	ticketTypeID := strings.TrimSpace(cmd.TicketTypeID)
	if cmd.Key.IsZero() || ticketTypeID == "" {
		return domain.Cart{}, ErrCartInvalidInput
	}

	if cmd.Quantity <= 0 {
		return s.RemoveItem(ctx, cmd.Key, ticketTypeID)
	}

	snapshot, err := s.catalog.GetTicketType(ctx, ticketTypeID)
	if err != nil {
		return domain.Cart{}, err
	}

	return s.store.WithCart(ctx, cmd.Key, func(cart *domain.Cart) error {
		if _, ok := cart.ItemByTicketType(ticketTypeID); !ok {
			return fmt.Errorf("%w: %s", ErrCartItemNotFound, ticketTypeID)
		}
		if msg := checkQuantity(snapshot, cmd.Quantity, s.now()); msg != nil {
			return &RuleError{Message: *msg}
		}
		cart.UpdateQuantity(ticketTypeID, cmd.Quantity)
		return s.reprice(ctx, cart)
	})
}

// RemoveItem drops a line from the cart. Removing an absent line is a no-op.
func (s *cartService) RemoveItem(ctx context.Context, key CartKey, ticketTypeID string) (domain.Cart, error) {
	trimmed := strings.TrimSpace(ticketTypeID)
	if key.IsZero() || trimmed == "" {
		return domain.Cart{}, ErrCartInvalidInput
	}

	return s.store.WithCart(ctx, key, func(cart *domain.Cart) error {
		if !cart.RemoveItem(trimmed) {
			return nil
		}
		return s.reprice(ctx, cart)
	})
}

// ClearCart empties the cart while preserving its identity.
func (s *cartService) ClearCart(ctx context.Context, key CartKey) (domain.Cart, error) {
	if key.IsZero() {
		return domain.Cart{}, ErrCartInvalidInput
	}

	return s.store.WithCart(ctx, key, func(cart *domain.Cart) error {
		cart.Items = nil
		cart.PromoCode = ""
		cart.Discount = nil
		cart.CalculateTotals(s.fees)
		return nil
	})
}

// ValidateCart re-checks every line against fresh catalog snapshots. Lines
// that went off sale are removed with an error; quantities above the
// remaining stock are clamped with a warning. The cart never becomes
// invalid as a whole; all findings are accumulated.
func (s *cartService) ValidateCart(ctx context.Context, key CartKey) (CartValidationResult, error) {
	if key.IsZero() {
		return CartValidationResult{}, ErrCartInvalidInput
	}

	var (
		errorsList []domain.CartMessage
		warnings   []domain.CartMessage
		changed    bool
	)

	cart, err := s.store.WithCart(ctx, key, func(cart *domain.Cart) error {
		now := s.now()
		lines := make([]domain.CartItem, len(cart.Items))
		copy(lines, cart.Items)

		for _, line := range lines {
			snapshot, err := s.catalog.RefreshTicketType(ctx, line.TicketTypeID)
			if errors.Is(err, ErrTicketTypeNotFound) {
				cart.RemoveItem(line.TicketTypeID)
				errorsList = append(errorsList, domain.NewCartError(
					domain.MsgTicketNotOnSale, line.TicketTypeID,
					fmt.Sprintf("%s is no longer on sale", line.Name), nil))
				changed = true
				continue
			}
			if err != nil {
				return err
			}

			if !snapshot.OnSaleAt(now) {
				cart.RemoveItem(line.TicketTypeID)
				errorsList = append(errorsList, domain.NewCartError(
					domain.MsgTicketNotOnSale, line.TicketTypeID,
					fmt.Sprintf("%s is no longer on sale", snapshot.Name), nil))
				changed = true
				continue
			}

			if snapshot.RemainingQuantity != nil && *snapshot.RemainingQuantity < line.Quantity {
				remaining := *snapshot.RemainingQuantity
				if remaining <= 0 {
					cart.RemoveItem(line.TicketTypeID)
					errorsList = append(errorsList, domain.NewCartError(
						domain.MsgTicketOutOfStock, line.TicketTypeID,
						fmt.Sprintf("%s is sold out", snapshot.Name), nil))
					changed = true
					continue
				}
				cart.UpdateQuantity(line.TicketTypeID, remaining)
				warnings = append(warnings, domain.NewCartWarning(
					domain.MsgQuantityReducedStock, line.TicketTypeID,
					fmt.Sprintf("quantity of %s reduced to remaining stock", snapshot.Name),
					map[string]any{"requested": line.Quantity, "available": remaining}))
				changed = true
			}

			if refreshItemFromSnapshot(cart, line.TicketTypeID, snapshot, now) {
				changed = true
			}
		}

		return s.reprice(ctx, cart)
	})
	if err != nil {
		return CartValidationResult{}, err
	}

	return CartValidationResult{
		Cart:       cart,
		Errors:     errorsList,
		Warnings:   warnings,
		HasChanges: changed,
	}, nil
}

// ApplyPromoCode applies a promotion or discount code to the cart. A blank
// code clears any applied code. Built-in promotions are checked before
// catalog discount codes.
func (s *cartService) ApplyPromoCode(ctx context.Context, key CartKey, code string) (domain.Cart, error) {
	if key.IsZero() {
		return domain.Cart{}, ErrCartInvalidInput
	}
	normalized := strings.ToUpper(strings.TrimSpace(code))

	return s.store.WithCart(ctx, key, func(cart *domain.Cart) error {
		if normalized == "" {
			cart.PromoCode = ""
			cart.Discount = nil
			return s.reprice(ctx, cart)
		}

		subtotal, fees := cart.BaseTotals(s.fees)

		if promotion, ok := s.promotions.Lookup(normalized); ok {
			amount := s.promotions.DiscountFor(promotion, subtotal, fees)
			if amount <= 0 {
				return &RuleError{Message: domain.NewCartError(
					domain.MsgPromoNotApplicable, "",
					fmt.Sprintf("%s does not apply to this cart", normalized), nil)}
			}
			cart.PromoCode = normalized
			cart.Discount = &domain.AppliedDiscount{Code: normalized, Source: domain.DiscountSourcePromotion, Amount: amount}
			cart.CalculateTotals(s.fees)
			s.logger(ctx, "cart.promotion_applied", map[string]any{"cartKey": cart.Key, "code": normalized})
			return nil
		}

		if s.discounts == nil {
			return &RuleError{Message: invalidPromoMessage(normalized)}
		}

		discount, err := s.discounts.ResolveCode(ctx, normalized)
		if errors.Is(err, ErrDiscountNotFound) {
			return &RuleError{Message: invalidPromoMessage(normalized)}
		}
		if err != nil {
			return err
		}
		if !discount.ActiveAt(s.now()) {
			return &RuleError{Message: invalidPromoMessage(normalized)}
		}

		amount := s.discounts.AmountFor(discount, cart.Items)
		if amount <= 0 {
			return &RuleError{Message: domain.NewCartError(
				domain.MsgPromoNotApplicable, "",
				fmt.Sprintf("%s does not apply to any item in this cart", normalized), nil)}
		}

		cart.PromoCode = normalized
		cart.Discount = &domain.AppliedDiscount{Code: normalized, Source: domain.DiscountSourceCode, Amount: amount}
		cart.CalculateTotals(s.fees)
		s.logger(ctx, "cart.discount_applied", map[string]any{"cartKey": cart.Key, "code": normalized})
		return nil
	})
}

// MergeSessionCart folds an anonymous session cart into the signed-in user's
// cart. Quantities for shared ticket types add up; the session cart is
// dropped afterwards.
func (s *cartService) MergeSessionCart(ctx context.Context, sessionID, userID string) (domain.Cart, error) {
	session := strings.TrimSpace(sessionID)
	user := strings.TrimSpace(userID)
	if session == "" || user == "" {
		return domain.Cart{}, ErrCartInvalidInput
	}

	sessionCart, ok := s.store.Take(NewCartKey(session, ""))
	userKey := NewCartKey(session, user)

	return s.store.WithCart(ctx, userKey, func(cart *domain.Cart) error {
		if !ok {
			return s.reprice(ctx, cart)
		}
		for _, item := range sessionCart.Items {
			cart.AddItem(item)
		}
		if cart.PromoCode == "" && sessionCart.PromoCode != "" {
			cart.PromoCode = sessionCart.PromoCode
		}
		s.logger(ctx, "cart.session_merged", map[string]any{
			"sessionID": session,
			"cartKey":   cart.Key,
			"items":     len(sessionCart.Items),
		})
		return s.reprice(ctx, cart)
	})
}

// reprice re-derives the applied discount and recomputes totals. Discount
// backend outages keep the previously applied amount rather than failing the
// mutation that triggered the repricing.
func (s *cartService) reprice(ctx context.Context, cart *domain.Cart) error {
	subtotal, fees := cart.BaseTotals(s.fees)

	switch {
	case cart.PromoCode != "":
		if promotion, ok := s.promotions.Lookup(cart.PromoCode); ok {
			amount := s.promotions.DiscountFor(promotion, subtotal, fees)
			if amount > 0 {
				cart.Discount = &domain.AppliedDiscount{Code: cart.PromoCode, Source: domain.DiscountSourcePromotion, Amount: amount}
			} else {
				cart.PromoCode = ""
				cart.Discount = nil
			}
			break
		}
		if s.discounts == nil {
			cart.PromoCode = ""
			cart.Discount = nil
			break
		}
		discount, err := s.discounts.ResolveCode(ctx, cart.PromoCode)
		switch {
		case errors.Is(err, ErrDiscountNotFound):
			cart.PromoCode = ""
			cart.Discount = nil
		case err != nil:
			s.logger(ctx, "cart.reprice_discount_failed", map[string]any{
				"cartKey": cart.Key,
				"code":    cart.PromoCode,
				"error":   err.Error(),
			})
		default:
			amount := int64(0)
			if discount.ActiveAt(s.now()) {
				amount = s.discounts.AmountFor(discount, cart.Items)
			}
			if amount > 0 {
				cart.Discount = &domain.AppliedDiscount{Code: cart.PromoCode, Source: domain.DiscountSourceCode, Amount: amount}
			} else {
				cart.PromoCode = ""
				cart.Discount = nil
			}
		}

	case s.autoOffers:
		applied, err := s.discounts.BestAutomatic(ctx, cart.Items)
		if err != nil {
			s.logger(ctx, "cart.reprice_automatic_failed", map[string]any{
				"cartKey": cart.Key,
				"error":   err.Error(),
			})
		} else {
			cart.Discount = applied
		}

	default:
		cart.Discount = nil
	}

	cart.CalculateTotals(s.fees)
	return nil
}

// checkQuantity runs the ordered validation ladder for a requested quantity.
// The first failing check wins.
func checkQuantity(snapshot domain.TicketTypeSnapshot, quantity int, now time.Time) *domain.CartMessage {
	if !snapshot.OnSaleAt(now) {
		msg := domain.NewCartError(domain.MsgTicketNotOnSale, snapshot.ID,
			fmt.Sprintf("%s is not on sale", snapshot.Name), nil)
		return &msg
	}
	if snapshot.MinPerOrder > 0 && quantity < snapshot.MinPerOrder {
		msg := domain.NewCartError(domain.MsgQuantityBelowMinimum, snapshot.ID,
			fmt.Sprintf("%s requires at least %d per order", snapshot.Name, snapshot.MinPerOrder),
			map[string]any{"minimum": snapshot.MinPerOrder, "requested": quantity})
		return &msg
	}
	if snapshot.MaxPerOrder > 0 && quantity > snapshot.MaxPerOrder {
		msg := domain.NewCartError(domain.MsgQuantityAboveMaximum, snapshot.ID,
			fmt.Sprintf("%s allows at most %d per order", snapshot.Name, snapshot.MaxPerOrder),
			map[string]any{"maximum": snapshot.MaxPerOrder, "requested": quantity})
		return &msg
	}
	if snapshot.RemainingQuantity != nil && quantity > *snapshot.RemainingQuantity {
		msg := domain.NewCartError(domain.MsgTicketOutOfStock, snapshot.ID,
			fmt.Sprintf("only %d of %s remain", *snapshot.RemainingQuantity, snapshot.Name),
			map[string]any{"available": *snapshot.RemainingQuantity, "requested": quantity})
		return &msg
	}
	return nil
}

func itemFromSnapshot(snapshot domain.TicketTypeSnapshot, quantity int, now time.Time) domain.CartItem {
	item := domain.CartItem{
		TicketTypeID: snapshot.ID,
		Name:         snapshot.Name,
		EventID:      snapshot.EventID,
		EventTitle:   snapshot.EventTitle,
		CategoryID:   snapshot.CategoryID,
		UnitPrice:    snapshot.UnitPrice,
		Quantity:     quantity,
		Availability: domain.ItemAvailability{
			MinPerOrder: snapshot.MinPerOrder,
			MaxPerOrder: snapshot.MaxPerOrder,
			CheckedAt:   now,
		},
	}
	if snapshot.RemainingQuantity != nil {
		remaining := *snapshot.RemainingQuantity
		item.Availability.Remaining = &remaining
	}
	return item
}

// refreshItemFromSnapshot re-syncs a line's denormalised fields and reports
// whether anything price-relevant changed.
func refreshItemFromSnapshot(cart *domain.Cart, ticketTypeID string, snapshot domain.TicketTypeSnapshot, now time.Time) bool {
	for i := range cart.Items {
		if cart.Items[i].TicketTypeID != ticketTypeID {
			continue
		}
		item := &cart.Items[i]
		changed := item.UnitPrice != snapshot.UnitPrice || item.Name != snapshot.Name

		item.Name = snapshot.Name
		item.EventID = snapshot.EventID
		item.EventTitle = snapshot.EventTitle
		item.CategoryID = snapshot.CategoryID
		item.UnitPrice = snapshot.UnitPrice
		item.TotalPrice = item.UnitPrice * int64(item.Quantity)
		item.Availability = domain.ItemAvailability{
			MinPerOrder: snapshot.MinPerOrder,
			MaxPerOrder: snapshot.MaxPerOrder,
			CheckedAt:   now,
		}
		if snapshot.RemainingQuantity != nil {
			remaining := *snapshot.RemainingQuantity
			item.Availability.Remaining = &remaining
		}
		return changed
	}
	return false
}

func invalidPromoMessage(code string) domain.CartMessage {
	return domain.NewCartError(domain.MsgInvalidPromoCode, "",
		fmt.Sprintf("%s is not a valid code", code), nil)
}
