package services

import (
	"context"
	"errors"
	"testing"

	domain "github.com/eventloft/api/internal/domain"
)

type fakePublisher struct {
	published []domain.CheckoutSubmission
	err       error
}

func (p *fakePublisher) PublishCheckout(_ context.Context, submission domain.CheckoutSubmission) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.published = append(p.published, submission)
	return "msg-1", nil
}

func newTestCheckoutService(t *testing.T, carts CartService, publisher CheckoutPublisher) CheckoutService {
	t.Helper()
	svc, err := NewCheckoutService(CheckoutServiceDeps{
		Carts:       carts,
		Publisher:   publisher,
		Clock:       fixedClock(testTime),
		IDGenerator: func() string { return "sub-1" },
	})
	if err != nil {
		t.Fatalf("NewCheckoutService: %v", err)
	}
	return svc
}

func TestCheckoutSubmitPublishesAndClears(t *testing.T) {
	repo := newFakeTicketTypeRepo(onSaleSnapshot("tt-1", 5000))
	carts, _ := newTestCartService(t, repo, nil, false)
	key := NewCartKey("", "user-1")

	if _, err := carts.AddItem(context.Background(), AddItemCommand{Key: key, TicketTypeID: "tt-1", Quantity: 2}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := carts.ApplyPromoCode(context.Background(), key, "PROMO10"); err != nil {
		t.Fatalf("ApplyPromoCode: %v", err)
	}

	publisher := &fakePublisher{}
	svc := newTestCheckoutService(t, carts, publisher)

	submission, err := svc.Submit(context.Background(), key)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if submission.ID != "sub-1" {
		t.Fatalf("ID = %q, want sub-1", submission.ID)
	}
	if submission.CartKey != "user:user-1" {
		t.Fatalf("CartKey = %q", submission.CartKey)
	}
	if len(submission.Lines) != 1 || submission.Lines[0].Quantity != 2 {
		t.Fatalf("Lines = %+v", submission.Lines)
	}
	if submission.PromoCode != "PROMO10" || submission.Totals.Total != 9400 {
		t.Fatalf("totals = %+v promo = %q", submission.Totals, submission.PromoCode)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("published = %d, want 1", len(publisher.published))
	}

	cart, err := carts.GetCart(context.Background(), key)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatalf("cart not cleared after submit: %+v", cart.Items)
	}
}

func TestCheckoutSubmitEmptyCart(t *testing.T) {
	carts, _ := newTestCartService(t, newFakeTicketTypeRepo(), nil, false)
	svc := newTestCheckoutService(t, carts, &fakePublisher{})

	_, err := svc.Submit(context.Background(), NewCartKey("sess-1", ""))
	ruleErr, ok := AsRuleError(err)
	if !ok || ruleErr.Message.Code != domain.MsgEmptyCart {
		t.Fatalf("err = %v, want empty-cart RuleError", err)
	}
}

func TestCheckoutSubmitAbortsWhenCartChanged(t *testing.T) {
	snapshot := onSaleSnapshot("tt-1", 2000)
	repo := newFakeTicketTypeRepo(snapshot)
	carts, _ := newTestCartService(t, repo, nil, false)
	key := NewCartKey("sess-1", "")

	if _, err := carts.AddItem(context.Background(), AddItemCommand{Key: key, TicketTypeID: "tt-1", Quantity: 5}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	// Stock shrank since the cart was built; the shopper has to confirm the
	// clamped quantity before checking out again.
	snapshot.RemainingQuantity = intPtr(3)
	repo.put(snapshot)

	publisher := &fakePublisher{}
	svc := newTestCheckoutService(t, carts, publisher)

	_, err := svc.Submit(context.Background(), key)
	var failed *ValidationFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("err = %v, want ValidationFailedError", err)
	}
	if len(failed.Result.Warnings) != 1 {
		t.Fatalf("warnings = %+v", failed.Result.Warnings)
	}
	if len(publisher.published) != 0 {
		t.Fatalf("published despite validation failure")
	}

	// The clamp already persisted, so a retry succeeds.
	if _, err := svc.Submit(context.Background(), key); err != nil {
		t.Fatalf("retry Submit: %v", err)
	}
}

func TestCheckoutSubmitPublisherOutage(t *testing.T) {
	repo := newFakeTicketTypeRepo(onSaleSnapshot("tt-1", 2000))
	carts, _ := newTestCartService(t, repo, nil, false)
	key := NewCartKey("sess-1", "")

	if _, err := carts.AddItem(context.Background(), AddItemCommand{Key: key, TicketTypeID: "tt-1", Quantity: 1}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	svc := newTestCheckoutService(t, carts, &fakePublisher{err: errors.New("broker down")})

	_, err := svc.Submit(context.Background(), key)
	if !errors.Is(err, ErrCheckoutUnavailable) {
		t.Fatalf("err = %v, want ErrCheckoutUnavailable", err)
	}

	// The cart survives a failed hand-off.
	cart, err := carts.GetCart(context.Background(), key)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if cart.IsEmpty() {
		t.Fatalf("cart lost after failed publish")
	}
}
