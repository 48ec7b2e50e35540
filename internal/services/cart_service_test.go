package services

import (
	"context"
	"errors"
	"testing"

	domain "github.com/eventloft/api/internal/domain"
)

func TestCartServiceAddItemComputesTotals(t *testing.T) {
	repo := newFakeTicketTypeRepo(onSaleSnapshot("tt-1", 5000))
	svc, _ := newTestCartService(t, repo, nil, false)
	key := NewCartKey("sess-1", "")

	cart, err := svc.AddItem(context.Background(), AddItemCommand{Key: key, TicketTypeID: "tt-1", Quantity: 2})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if cart.Totals.Subtotal != 10000 {
		t.Fatalf("Subtotal = %d, want 10000", cart.Totals.Subtotal)
	}
	if cart.Totals.Fees != 400 {
		t.Fatalf("Fees = %d, want 400", cart.Totals.Fees)
	}
	if cart.Totals.Total != 10400 {
		t.Fatalf("Total = %d, want 10400", cart.Totals.Total)
	}
	if cart.Items[0].Name == "" || cart.Items[0].EventID != "evt-1" {
		t.Fatalf("denormalised fields missing: %+v", cart.Items[0])
	}
}

func TestCartServiceAddItemMergesQuantities(t *testing.T) {
	repo := newFakeTicketTypeRepo(onSaleSnapshot("tt-1", 2500))
	svc, _ := newTestCartService(t, repo, nil, false)
	key := NewCartKey("sess-1", "")

	if _, err := svc.AddItem(context.Background(), AddItemCommand{Key: key, TicketTypeID: "tt-1", Quantity: 2}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	cart, err := svc.AddItem(context.Background(), AddItemCommand{Key: key, TicketTypeID: "tt-1", Quantity: 3})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if len(cart.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(cart.Items))
	}
	if cart.Items[0].Quantity != 5 || cart.Items[0].TotalPrice != 12500 {
		t.Fatalf("line = %+v, want quantity 5 total 12500", cart.Items[0])
	}
}

func TestCartServiceAddItemChecksRunInOrder(t *testing.T) {
	offSale := onSaleSnapshot("tt-offsale", 1000)
	offSale.OnSale = false
	offSale.MinPerOrder = 4
	offSale.RemainingQuantity = intPtr(0)

	limited := onSaleSnapshot("tt-limited", 1000)
	limited.MinPerOrder = 2
	limited.MaxPerOrder = 4
	limited.RemainingQuantity = intPtr(3)

	repo := newFakeTicketTypeRepo(offSale, limited)
	svc, _ := newTestCartService(t, repo, nil, false)
	key := NewCartKey("sess-1", "")

	cases := []struct {
		name         string
		ticketTypeID string
		quantity     int
		wantCode     domain.MessageCode
	}{
		{"off sale wins over everything", "tt-offsale", 1, domain.MsgTicketNotOnSale},
		{"below minimum before stock", "tt-limited", 1, domain.MsgQuantityBelowMinimum},
		{"above maximum before stock", "tt-limited", 5, domain.MsgQuantityAboveMaximum},
		{"stock checked last", "tt-limited", 4, domain.MsgTicketOutOfStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddItem(context.Background(), AddItemCommand{Key: key, TicketTypeID: tc.ticketTypeID, Quantity: tc.quantity})
			ruleErr, ok := AsRuleError(err)
			if !ok {
				t.Fatalf("err = %v, want RuleError", err)
			}
			if ruleErr.Message.Code != tc.wantCode {
				t.Fatalf("code = %q, want %q", ruleErr.Message.Code, tc.wantCode)
			}
		})
	}
}

func TestCartServiceAddItemValidatesMergedQuantity(t *testing.T) {
	snapshot := onSaleSnapshot("tt-1", 1000)
	snapshot.MaxPerOrder = 4
	repo := newFakeTicketTypeRepo(snapshot)
	svc, _ := newTestCartService(t, repo, nil, false)
	key := NewCartKey("sess-1", "")

	if _, err := svc.AddItem(context.Background(), AddItemCommand{Key: key, TicketTypeID: "tt-1", Quantity: 3}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	_, err := svc.AddItem(context.Background(), AddItemCommand{Key: key, TicketTypeID: "tt-1", Quantity: 2})
	ruleErr, ok := AsRuleError(err)
	if !ok || ruleErr.Message.Code != domain.MsgQuantityAboveMaximum {
		t.Fatalf("err = %v, want above-maximum RuleError", err)
	}

	// The rejected merge left the cart untouched.
	cart, err := svc.GetCart(context.Background(), key)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if cart.Items[0].Quantity != 3 {
		t.Fatalf("quantity = %d, want 3", cart.Items[0].Quantity)
	}
}

func TestCartServiceAddItemUnknownTicketType(t *testing.T) {
	svc, _ := newTestCartService(t, newFakeTicketTypeRepo(), nil, false)

	_, err := svc.AddItem(context.Background(), AddItemCommand{Key: NewCartKey("sess-1", ""), TicketTypeID: "tt-ghost", Quantity: 1})
	if !errors.Is(err, ErrTicketTypeNotFound) {
		t.Fatalf("err = %v, want ErrTicketTypeNotFound", err)
	}
}

func TestCartServiceUpdateItem(t *testing.T) {
	repo := newFakeTicketTypeRepo(onSaleSnapshot("tt-1", 2000))
	svc, _ := newTestCartService(t, repo, nil, false)
	key := NewCartKey("sess-1", "")

	if _, err := svc.AddItem(context.Background(), AddItemCommand{Key: key, TicketTypeID: "tt-1", Quantity: 2}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	cart, err := svc.UpdateItem(context.Background(), UpdateItemCommand{Key: key, TicketTypeID: "tt-1", Quantity: 5})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if cart.Items[0].Quantity != 5 || cart.Totals.Subtotal != 10000 {
		t.Fatalf("cart = %+v", cart.Totals)
	}

	cart, err = svc.UpdateItem(context.Background(), UpdateItemCommand{Key: key, TicketTypeID: "tt-1", Quantity: 0})
	if err != nil {
		t.Fatalf("UpdateItem to zero: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatalf("zero quantity kept the line: %+v", cart.Items)
	}
	if cart.Totals.Total != 0 {
		t.Fatalf("empty cart Total = %d, want 0", cart.Totals.Total)
	}
}

func TestCartServiceUpdateItemMissingLine(t *testing.T) {
	repo := newFakeTicketTypeRepo(onSaleSnapshot("tt-1", 2000))
	svc, _ := newTestCartService(t, repo, nil, false)

	_, err := svc.UpdateItem(context.Background(), UpdateItemCommand{Key: NewCartKey("sess-1", ""), TicketTypeID: "tt-1", Quantity: 2})
	if !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("err = %v, want ErrCartItemNotFound", err)
	}
}

func TestCartServiceRemoveAbsentLineIsNoOp(t *testing.T) {
	svc, _ := newTestCartService(t, newFakeTicketTypeRepo(), nil, false)

	cart, err := svc.RemoveItem(context.Background(), NewCartKey("sess-1", ""), "tt-nothere")
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatalf("cart not empty: %+v", cart.Items)
	}
}

func TestCartServiceClearCartKeepsIdentity(t *testing.T) {
	repo := newFakeTicketTypeRepo(onSaleSnapshot("tt-1", 2000))
	svc, _ := newTestCartService(t, repo, nil, false)
	key := NewCartKey("sess-1", "")

	if _, err := svc.AddItem(context.Background(), AddItemCommand{Key: key, TicketTypeID: "tt-1", Quantity: 2}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := svc.ApplyPromoCode(context.Background(), key, "PROMO10"); err != nil {
		t.Fatalf("ApplyPromoCode: %v", err)
	}

	cart, err := svc.ClearCart(context.Background(), key)
	if err != nil {
		t.Fatalf("ClearCart: %v", err)
	}
	if !cart.IsEmpty() || cart.PromoCode != "" || cart.Discount != nil {
		t.Fatalf("cart not cleared: %+v", cart)
	}
	if cart.Key != "session:sess-1" {
		t.Fatalf("identity lost: %q", cart.Key)
	}
}

func TestCartServiceApplyPromotion(t *testing.T) {
	repo := newFakeTicketTypeRepo(onSaleSnapshot("tt-1", 5000))
	svc, _ := newTestCartService(t, repo, nil, false)
	key := NewCartKey("sess-1", "")

	if _, err := svc.AddItem(context.Background(), AddItemCommand{Key: key, TicketTypeID: "tt-1", Quantity: 2}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	// Subtotal 100.00, fees 4.00. PROMO10 takes 10.00 off.
	cart, err := svc.ApplyPromoCode(context.Background(), key, "promo10")
	if err != nil {
		t.Fatalf("ApplyPromoCode: %v", err)
	}
	if cart.PromoCode != "PROMO10" {
		t.Fatalf("PromoCode = %q, want PROMO10", cart.PromoCode)
	}
	if cart.Discount == nil || cart.Discount.Amount != 1000 || cart.Discount.Source != domain.DiscountSourcePromotion {
		t.Fatalf("Discount = %+v", cart.Discount)
	}
	if cart.Totals.Total != 9400 {
		t.Fatalf("Total = %d, want 9400", cart.Totals.Total)
	}

	// FREEFEE replaces the previous code and waives exactly the fees.
	cart, err = svc.ApplyPromoCode(context.Background(), key, "FREEFEE")
	if err != nil {
		t.Fatalf("ApplyPromoCode FREEFEE: %v", err)
	}
	if cart.Totals.Discount != cart.Totals.Fees {
		t.Fatalf("Discount = %d, Fees = %d", cart.Totals.Discount, cart.Totals.Fees)
	}
	if cart.Totals.Total != 10000 {
		t.Fatalf("Total = %d, want 10000", cart.Totals.Total)
	}

	// Blank code clears.
	cart, err = svc.ApplyPromoCode(context.Background(), key, "")
	if err != nil {
		t.Fatalf("ApplyPromoCode clear: %v", err)
	}
	if cart.PromoCode != "" || cart.Discount != nil {
		t.Fatalf("code not cleared: %+v", cart)
	}
	if cart.Totals.Total != 10400 {
		t.Fatalf("Total = %d, want 10400", cart.Totals.Total)
	}
}

func TestCartServiceApplyUnknownCode(t *testing.T) {
	repo := newFakeTicketTypeRepo(onSaleSnapshot("tt-1", 5000))
	svc, _ := newTestCartService(t, repo, newFakeDiscountRepo(), false)
	key := NewCartKey("sess-1", "")

	if _, err := svc.AddItem(context.Background(), AddItemCommand{Key: key, TicketTypeID: "tt-1", Quantity: 1}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	_, err := svc.ApplyPromoCode(context.Background(), key, "BOGUS")
	ruleErr, ok := AsRuleError(err)
	if !ok || ruleErr.Message.Code != domain.MsgInvalidPromoCode {
		t.Fatalf("err = %v, want invalid-promo RuleError", err)
	}

	// The failed apply left no code behind.
	cart, err := svc.GetCart(context.Background(), key)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if cart.PromoCode != "" || cart.Discount != nil {
		t.Fatalf("failed apply leaked: %+v", cart)
	}
}

func TestCartServiceApplyDiscountCode(t *testing.T) {
	repo := newFakeTicketTypeRepo(onSaleSnapshot("tt-1", 5000))
	starts, ends := activeWindow()
	discountRepo := newFakeDiscountRepo(domain.Discount{
		ID: "disc-1", Code: "SPRING20", Type: domain.DiscountPercentage, Value: 2000,
		StartsAt: starts, EndsAt: ends,
	})
	svc, _ := newTestCartService(t, repo, discountRepo, false)
	key := NewCartKey("sess-1", "")

	if _, err := svc.AddItem(context.Background(), AddItemCommand{Key: key, TicketTypeID: "tt-1", Quantity: 2}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	cart, err := svc.ApplyPromoCode(context.Background(), key, "spring20")
	if err != nil {
		t.Fatalf("ApplyPromoCode: %v", err)
	}
	if cart.Discount == nil || cart.Discount.Source != domain.DiscountSourceCode {
		t.Fatalf("Discount = %+v", cart.Discount)
	}
	// 20% of 100.00 eligible subtotal.
	if cart.Discount.Amount != 2000 {
		t.Fatalf("Amount = %d, want 2000", cart.Discount.Amount)
	}
	if cart.Totals.Total != 8400 {
		t.Fatalf("Total = %d, want 8400", cart.Totals.Total)
	}
}

func TestCartServiceApplyInapplicableDiscount(t *testing.T) {
	repo := newFakeTicketTypeRepo(onSaleSnapshot("tt-1", 5000))
	starts, ends := activeWindow()
	discountRepo := newFakeDiscountRepo(domain.Discount{
		ID: "disc-other", Code: "THEATRE5", Type: domain.DiscountFixedAmount, Value: 500,
		CategoryID: "cat-theatre", StartsAt: starts, EndsAt: ends,
	})
	svc, _ := newTestCartService(t, repo, discountRepo, false)
	key := NewCartKey("sess-1", "")

	if _, err := svc.AddItem(context.Background(), AddItemCommand{Key: key, TicketTypeID: "tt-1", Quantity: 1}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	_, err := svc.ApplyPromoCode(context.Background(), key, "THEATRE5")
	ruleErr, ok := AsRuleError(err)
	if !ok || ruleErr.Message.Code != domain.MsgPromoNotApplicable {
		t.Fatalf("err = %v, want promo-not-applicable RuleError", err)
	}
}

func TestCartServiceRepriceDropsStaleCode(t *testing.T) {
	repo := newFakeTicketTypeRepo(onSaleSnapshot("tt-1", 5000))
	svc, _ := newTestCartService(t, repo, nil, false)
	key := NewCartKey("sess-1", "")

	if _, err := svc.AddItem(context.Background(), AddItemCommand{Key: key, TicketTypeID: "tt-1", Quantity: 1}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := svc.ApplyPromoCode(context.Background(), key, "FIX5"); err != nil {
		t.Fatalf("ApplyPromoCode: %v", err)
	}

	// Removing the only line leaves nothing for FIX5 to discount, so the
	// repricing pass drops the code.
	cart, err := svc.RemoveItem(context.Background(), key, "tt-1")
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if cart.PromoCode != "" || cart.Discount != nil {
		t.Fatalf("stale code survived: %+v", cart)
	}
	if cart.Totals.Total != 0 {
		t.Fatalf("Total = %d, want 0", cart.Totals.Total)
	}
}

func TestCartServiceAutomaticDiscount(t *testing.T) {
	repo := newFakeTicketTypeRepo(onSaleSnapshot("tt-1", 5000))
	starts, ends := activeWindow()
	discountRepo := newFakeDiscountRepo(domain.Discount{
		ID: "auto-1", Type: domain.DiscountPercentage, Value: 500,
		StartsAt: starts, EndsAt: ends,
	})
	svc, _ := newTestCartService(t, repo, discountRepo, true)
	key := NewCartKey("sess-1", "")

	cart, err := svc.AddItem(context.Background(), AddItemCommand{Key: key, TicketTypeID: "tt-1", Quantity: 2})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if cart.Discount == nil || cart.Discount.Source != domain.DiscountSourceAutomatic {
		t.Fatalf("Discount = %+v, want automatic", cart.Discount)
	}
	if cart.Discount.Amount != 500 {
		t.Fatalf("Amount = %d, want 500", cart.Discount.Amount)
	}

	// A shopper-entered code takes precedence over the automatic discount.
	cart, err = svc.ApplyPromoCode(context.Background(), key, "PROMO10")
	if err != nil {
		t.Fatalf("ApplyPromoCode: %v", err)
	}
	if cart.Discount == nil || cart.Discount.Source != domain.DiscountSourcePromotion {
		t.Fatalf("Discount = %+v, want promotion", cart.Discount)
	}
}

func TestCartServiceValidateCartClampsToStock(t *testing.T) {
	snapshot := onSaleSnapshot("tt-1", 2000)
	repo := newFakeTicketTypeRepo(snapshot)
	svc, _ := newTestCartService(t, repo, nil, false)
	key := NewCartKey("sess-1", "")

	if _, err := svc.AddItem(context.Background(), AddItemCommand{Key: key, TicketTypeID: "tt-1", Quantity: 5}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	// Stock dropped to 2 behind the cart's back.
	snapshot.RemainingQuantity = intPtr(2)
	repo.put(snapshot)

	result, err := svc.ValidateCart(context.Background(), key)
	if err != nil {
		t.Fatalf("ValidateCart: %v", err)
	}
	if !result.IsValid() {
		t.Fatalf("clamping should stay valid, errors = %+v", result.Errors)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Code != domain.MsgQuantityReducedStock {
		t.Fatalf("warnings = %+v", result.Warnings)
	}
	if !result.HasChanges {
		t.Fatalf("HasChanges = false")
	}
	if result.Cart.Items[0].Quantity != 2 {
		t.Fatalf("quantity = %d, want 2", result.Cart.Items[0].Quantity)
	}
	if result.Cart.Totals.Subtotal != 4000 {
		t.Fatalf("Subtotal = %d, want 4000", result.Cart.Totals.Subtotal)
	}
}

func TestCartServiceValidateCartRemovesDeadLines(t *testing.T) {
	onSale := onSaleSnapshot("tt-keep", 1500)
	gone := onSaleSnapshot("tt-gone", 2500)
	soldOut := onSaleSnapshot("tt-soldout", 3500)
	repo := newFakeTicketTypeRepo(onSale, gone, soldOut)
	svc, _ := newTestCartService(t, repo, nil, false)
	key := NewCartKey("sess-1", "")

	for _, id := range []string{"tt-keep", "tt-gone", "tt-soldout"} {
		if _, err := svc.AddItem(context.Background(), AddItemCommand{Key: key, TicketTypeID: id, Quantity: 1}); err != nil {
			t.Fatalf("AddItem %s: %v", id, err)
		}
	}

	repo.remove("tt-gone")
	soldOut.RemainingQuantity = intPtr(0)
	repo.put(soldOut)

	result, err := svc.ValidateCart(context.Background(), key)
	if err != nil {
		t.Fatalf("ValidateCart: %v", err)
	}
	if result.IsValid() {
		t.Fatalf("expected errors")
	}
	if len(result.Errors) != 2 {
		t.Fatalf("errors = %+v, want 2", result.Errors)
	}
	codes := map[domain.MessageCode]bool{}
	for _, msg := range result.Errors {
		codes[msg.Code] = true
	}
	if !codes[domain.MsgTicketNotOnSale] || !codes[domain.MsgTicketOutOfStock] {
		t.Fatalf("codes = %+v", codes)
	}
	if len(result.Cart.Items) != 1 || result.Cart.Items[0].TicketTypeID != "tt-keep" {
		t.Fatalf("surviving items = %+v", result.Cart.Items)
	}
}

func TestCartServiceValidateCartPicksUpPriceChanges(t *testing.T) {
	snapshot := onSaleSnapshot("tt-1", 2000)
	repo := newFakeTicketTypeRepo(snapshot)
	svc, _ := newTestCartService(t, repo, nil, false)
	key := NewCartKey("sess-1", "")

	if _, err := svc.AddItem(context.Background(), AddItemCommand{Key: key, TicketTypeID: "tt-1", Quantity: 2}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	snapshot.UnitPrice = 2500
	repo.put(snapshot)

	result, err := svc.ValidateCart(context.Background(), key)
	if err != nil {
		t.Fatalf("ValidateCart: %v", err)
	}
	if !result.HasChanges {
		t.Fatalf("price change not flagged")
	}
	if result.Cart.Items[0].UnitPrice != 2500 || result.Cart.Totals.Subtotal != 5000 {
		t.Fatalf("cart = %+v", result.Cart.Totals)
	}
}

func TestCartServiceValidateCartAbortsOnOutage(t *testing.T) {
	repo := newFakeTicketTypeRepo(onSaleSnapshot("tt-1", 2000))
	svc, _ := newTestCartService(t, repo, nil, false)
	key := NewCartKey("sess-1", "")

	if _, err := svc.AddItem(context.Background(), AddItemCommand{Key: key, TicketTypeID: "tt-1", Quantity: 1}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	repo.err = unavailableErr("backend down")
	_, err := svc.ValidateCart(context.Background(), key)
	if !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("err = %v, want ErrCatalogUnavailable", err)
	}
}

func TestCartServiceMergeSessionCart(t *testing.T) {
	repo := newFakeTicketTypeRepo(onSaleSnapshot("tt-1", 2000), onSaleSnapshot("tt-2", 3000))
	svc, store := newTestCartService(t, repo, nil, false)

	sessionKey := NewCartKey("sess-1", "")
	if _, err := svc.AddItem(context.Background(), AddItemCommand{Key: sessionKey, TicketTypeID: "tt-1", Quantity: 2}); err != nil {
		t.Fatalf("AddItem session: %v", err)
	}
	if _, err := svc.ApplyPromoCode(context.Background(), sessionKey, "PROMO10"); err != nil {
		t.Fatalf("ApplyPromoCode session: %v", err)
	}

	userKey := NewCartKey("", "user-1")
	if _, err := svc.AddItem(context.Background(), AddItemCommand{Key: userKey, TicketTypeID: "tt-1", Quantity: 1}); err != nil {
		t.Fatalf("AddItem user: %v", err)
	}
	if _, err := svc.AddItem(context.Background(), AddItemCommand{Key: userKey, TicketTypeID: "tt-2", Quantity: 1}); err != nil {
		t.Fatalf("AddItem user: %v", err)
	}

	cart, err := svc.MergeSessionCart(context.Background(), "sess-1", "user-1")
	if err != nil {
		t.Fatalf("MergeSessionCart: %v", err)
	}

	if len(cart.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(cart.Items))
	}
	merged, ok := cart.ItemByTicketType("tt-1")
	if !ok || merged.Quantity != 3 {
		t.Fatalf("merged line = %+v, want quantity 3", merged)
	}
	if cart.PromoCode != "PROMO10" {
		t.Fatalf("session promo not adopted: %q", cart.PromoCode)
	}
	if _, ok := store.Snapshot(sessionKey); ok {
		t.Fatalf("session cart survived the merge")
	}
}

func TestCartServiceMergeWithoutSessionCart(t *testing.T) {
	svc, _ := newTestCartService(t, newFakeTicketTypeRepo(), nil, false)

	cart, err := svc.MergeSessionCart(context.Background(), "sess-none", "user-1")
	if err != nil {
		t.Fatalf("MergeSessionCart: %v", err)
	}
	if !cart.IsEmpty() || cart.Key != "user:user-1" {
		t.Fatalf("cart = %+v", cart)
	}
}

func TestCartServiceRejectsInvalidInput(t *testing.T) {
	svc, _ := newTestCartService(t, newFakeTicketTypeRepo(), nil, false)
	ctx := context.Background()

	if _, err := svc.GetCart(ctx, CartKey{}); !errors.Is(err, ErrCartInvalidInput) {
		t.Fatalf("GetCart: %v", err)
	}
	if _, err := svc.AddItem(ctx, AddItemCommand{Key: NewCartKey("s", ""), TicketTypeID: "", Quantity: 1}); !errors.Is(err, ErrCartInvalidInput) {
		t.Fatalf("AddItem empty id: %v", err)
	}
	if _, err := svc.AddItem(ctx, AddItemCommand{Key: NewCartKey("s", ""), TicketTypeID: "tt-1", Quantity: 0}); !errors.Is(err, ErrCartInvalidInput) {
		t.Fatalf("AddItem zero quantity: %v", err)
	}
	if _, err := svc.MergeSessionCart(ctx, "", "user-1"); !errors.Is(err, ErrCartInvalidInput) {
		t.Fatalf("MergeSessionCart: %v", err)
	}
}
