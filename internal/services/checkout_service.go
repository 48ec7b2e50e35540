package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/eventloft/api/internal/domain"
)

var (
	errCheckoutCartsRequired     = errors.New("checkout service: cart service is required")
	errCheckoutPublisherRequired = errors.New("checkout service: publisher is required")
)

// CheckoutServiceDeps wires the collaborators for checkout submission.
type CheckoutServiceDeps struct {
	Carts     CartService
	Publisher CheckoutPublisher

	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(context.Context, string, map[string]any)
}

type checkoutService struct {
	carts     CartService
	publisher CheckoutPublisher
	now       func() time.Time
	newID     func() string
	logger    func(context.Context, string, map[string]any)
}

// NewCheckoutService constructs a CheckoutService enforcing dependency validation.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Carts == nil {
		return nil, errCheckoutCartsRequired
	}
	if deps.Publisher == nil {
		return nil, errCheckoutPublisherRequired
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := deps.IDGenerator
	if newID == nil {
		entropy := ulid.Monotonic(rand.New(rand.NewSource(clock().UnixNano())), 0)
		newID = func() string {
			return ulid.MustNew(ulid.Timestamp(clock()), entropy).String()
		}
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &checkoutService{
		carts:     deps.Carts,
		publisher: deps.Publisher,
		now:       func() time.Time { return clock().UTC() },
		newID:     newID,
		logger:    logger,
	}, nil
}

// Submit re-validates the cart, publishes a submission for order creation,
// and empties the cart on success. A cart that fails validation aborts with
// the full validation result so the shopper can review the changes.
func (s *checkoutService) Submit(ctx context.Context, key CartKey) (domain.CheckoutSubmission, error) {
	if key.IsZero() {
		return domain.CheckoutSubmission{}, ErrCartInvalidInput
	}

	result, err := s.carts.ValidateCart(ctx, key)
	if err != nil {
		return domain.CheckoutSubmission{}, err
	}
	if result.Cart.IsEmpty() {
		return domain.CheckoutSubmission{}, &RuleError{Message: domain.NewCartError(
			domain.MsgEmptyCart, "", "cart is empty", nil)}
	}
	if !result.IsValid() || result.HasChanges {
		return domain.CheckoutSubmission{}, &ValidationFailedError{Result: result}
	}

	cart := result.Cart
	submission := domain.CheckoutSubmission{
		ID:          s.newID(),
		CartKey:     cart.Key,
		SessionID:   cart.SessionID,
		UserID:      cart.UserID,
		Lines:       make([]domain.CheckoutLine, 0, len(cart.Items)),
		Totals:      cart.Totals,
		PromoCode:   cart.PromoCode,
		SubmittedAt: s.now(),
	}
	for _, item := range cart.Items {
		submission.Lines = append(submission.Lines, domain.CheckoutLine{
			TicketTypeID: item.TicketTypeID,
			Name:         item.Name,
			EventID:      item.EventID,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			TotalPrice:   item.TotalPrice,
		})
	}

	messageID, err := s.publisher.PublishCheckout(ctx, submission)
	if err != nil {
		s.logger(ctx, "checkout.publish_failed", map[string]any{
			"submissionId": submission.ID,
			"cartKey":      cart.Key,
			"error":        err.Error(),
		})
		return domain.CheckoutSubmission{}, fmt.Errorf("%w: %v", ErrCheckoutUnavailable, err)
	}

	s.logger(ctx, "checkout.submitted", map[string]any{
		"submissionId": submission.ID,
		"cartKey":      cart.Key,
		"messageId":    messageID,
		"lines":        len(submission.Lines),
		"total":        submission.Totals.Total,
	})

	// The order-creation service owns the submission from here on. Failing to
	// clear the cart leaves stale state behind but must not fail the checkout.
	if _, err := s.carts.ClearCart(ctx, key); err != nil {
		s.logger(ctx, "checkout.cart_clear_failed", map[string]any{
			"submissionId": submission.ID,
			"cartKey":      cart.Key,
			"error":        err.Error(),
		})
	}

	return submission, nil
}
