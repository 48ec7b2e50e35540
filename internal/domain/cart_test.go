package domain

import (
	"testing"
	"time"
)

func testItem(ticketTypeID string, unitPrice int64, quantity int) CartItem {
	return CartItem{
		TicketTypeID: ticketTypeID,
		Name:         "General Admission",
		EventID:      "evt_1",
		EventTitle:   "Summer Live",
		UnitPrice:    unitPrice,
		Quantity:     quantity,
	}
}

func TestAddItemMergesSameTicketType(t *testing.T) {
	cart := Cart{}
	cart.AddItem(testItem("tt_1", 2500, 2))
	cart.AddItem(testItem("tt_1", 2500, 3))

	if len(cart.Items) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(cart.Items))
	}
	item := cart.Items[0]
	if item.Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", item.Quantity)
	}
	if item.TotalPrice != 12500 {
		t.Fatalf("expected line total 12500, got %d", item.TotalPrice)
	}
}

func TestAddItemPreservesInsertionOrder(t *testing.T) {
	cart := Cart{}
	cart.AddItem(testItem("tt_b", 1000, 1))
	cart.AddItem(testItem("tt_a", 2000, 1))
	cart.AddItem(testItem("tt_b", 1000, 1))

	if len(cart.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(cart.Items))
	}
	if cart.Items[0].TicketTypeID != "tt_b" || cart.Items[1].TicketTypeID != "tt_a" {
		t.Fatalf("unexpected order: %s, %s", cart.Items[0].TicketTypeID, cart.Items[1].TicketTypeID)
	}
}

func TestRemoveItem(t *testing.T) {
	cart := Cart{}
	cart.AddItem(testItem("tt_1", 1000, 1))

	if !cart.RemoveItem("tt_1") {
		t.Fatal("expected removal of existing line")
	}
	if cart.RemoveItem("tt_missing") {
		t.Fatal("removing an absent line must be a no-op")
	}
	if !cart.IsEmpty() {
		t.Fatal("cart should be empty after removal")
	}
}

func TestUpdateQuantity(t *testing.T) {
	cart := Cart{}
	cart.AddItem(testItem("tt_1", 1500, 2))

	if !cart.UpdateQuantity("tt_1", 4) {
		t.Fatal("expected quantity update to apply")
	}
	if cart.Items[0].TotalPrice != 6000 {
		t.Fatalf("expected line total 6000, got %d", cart.Items[0].TotalPrice)
	}

	// Zero and negative quantities remove the line.
	if !cart.UpdateQuantity("tt_1", 0) {
		t.Fatal("expected zero quantity to remove the line")
	}
	if !cart.IsEmpty() {
		t.Fatal("cart should be empty")
	}
}

func TestCalculateTotalsFeeFormula(t *testing.T) {
	cart := Cart{}
	cart.AddItem(testItem("tt_1", 2500, 4)) // subtotal 100.00

	cart.CalculateTotals(DefaultFeePolicy)

	if cart.Totals.Subtotal != 10000 {
		t.Fatalf("subtotal = %d, want 10000", cart.Totals.Subtotal)
	}
	if cart.Totals.Fees != 400 {
		t.Fatalf("fees = %d, want 400 (3%% + 1.00)", cart.Totals.Fees)
	}
	if cart.Totals.Total != 10400 {
		t.Fatalf("total = %d, want 10400", cart.Totals.Total)
	}
}

func TestCalculateTotalsEmptyCart(t *testing.T) {
	cart := Cart{}
	cart.CalculateTotals(DefaultFeePolicy)

	if cart.Totals != (CartTotals{}) {
		t.Fatalf("empty cart totals must all be zero, got %+v", cart.Totals)
	}
}

func TestCalculateTotalsClampsDiscount(t *testing.T) {
	cart := Cart{}
	cart.AddItem(testItem("tt_1", 1000, 1)) // subtotal 10.00, fees 1.30
	cart.Discount = &AppliedDiscount{Code: "BIG", Source: DiscountSourceCode, Amount: 99999}

	cart.CalculateTotals(DefaultFeePolicy)

	if cart.Totals.Discount != 1130 {
		t.Fatalf("discount should clamp to subtotal+fees (1130), got %d", cart.Totals.Discount)
	}
	if cart.Totals.Total != 0 {
		t.Fatalf("total should floor at zero, got %d", cart.Totals.Total)
	}
}

func TestFeePolicyRoundingBoundary(t *testing.T) {
	// 18.50 * 3% = 0.555 -> rounds to 0.56, plus the 1.00 fixed fee.
	policy := DefaultFeePolicy
	if got := policy.Fee(1850); got != 156 {
		t.Fatalf("Fee(1850) = %d, want 156", got)
	}
	if got := policy.Fee(0); got != 0 {
		t.Fatalf("empty subtotal must carry no fee, got %d", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	remaining := 7
	cart := Cart{
		Key:       "user:u1",
		CreatedAt: time.Now().UTC(),
		Discount:  &AppliedDiscount{Code: "PROMO10", Source: DiscountSourcePromotion, Amount: 500},
	}
	item := testItem("tt_1", 1000, 2)
	item.Availability.Remaining = &remaining
	cart.AddItem(item)

	clone := cart.Clone()
	clone.Items[0].Quantity = 99
	*clone.Items[0].Availability.Remaining = 0
	clone.Discount.Amount = 0

	if cart.Items[0].Quantity != 2 {
		t.Fatal("clone mutation leaked into original items")
	}
	if *cart.Items[0].Availability.Remaining != 7 {
		t.Fatal("clone mutation leaked into availability pointer")
	}
	if cart.Discount.Amount != 500 {
		t.Fatal("clone mutation leaked into discount")
	}
}

func TestTotalItemCount(t *testing.T) {
	cart := Cart{}
	cart.AddItem(testItem("tt_1", 1000, 2))
	cart.AddItem(testItem("tt_2", 2000, 3))

	if got := cart.TotalItemCount(); got != 5 {
		t.Fatalf("TotalItemCount = %d, want 5", got)
	}
}
