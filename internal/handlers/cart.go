package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/eventloft/api/internal/domain"
	"github.com/eventloft/api/internal/platform/httpx"
	"github.com/eventloft/api/internal/services"
)

// CartHandlers exposes the storefront cart endpoints.
type CartHandlers struct {
	carts    services.CartService
	checkout services.CheckoutService
}

const maxCartBodySize = 16 * 1024

const (
	headerUserID    = "X-User-ID"
	headerSessionID = "X-Session-ID"
)

// NewCartHandlers constructs handlers delegating to the cart and checkout services.
func NewCartHandlers(carts services.CartService, checkout services.CheckoutService) *CartHandlers {
	return &CartHandlers{
		carts:    carts,
		checkout: checkout,
	}
}

// Routes wires the /cart endpoints onto the provided router.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.getCart)
	r.Delete("/", h.clearCart)
	r.Post("/items", h.addItem)
	r.Patch("/items/{ticketTypeID}", h.updateItem)
	r.Delete("/items/{ticketTypeID}", h.removeItem)
	r.Post("/validate", h.validateCart)
	r.Post("/promo", h.applyPromoCode)
	r.Post("/merge", h.mergeSessionCart)
	r.Post("/checkout", h.submitCheckout)
}

func (h *CartHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key, ok := h.cartKey(ctx, w, r)
	if !ok {
		return
	}

	cart, err := h.carts.GetCart(ctx, key)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, cartResponse{Cart: buildCartPayload(cart)})
}

func (h *CartHandlers) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key, ok := h.cartKey(ctx, w, r)
	if !ok {
		return
	}

	cart, err := h.carts.ClearCart(ctx, key)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, cartResponse{Cart: buildCartPayload(cart)})
}

func (h *CartHandlers) addItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key, ok := h.cartKey(ctx, w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if !decodeRequest(ctx, w, r, &req) {
		return
	}
	if strings.TrimSpace(req.TicketTypeID) == "" || req.Quantity <= 0 {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "ticketTypeId and a positive quantity are required", http.StatusBadRequest))
		return
	}

	cart, err := h.carts.AddItem(ctx, services.AddItemCommand{
		Key:          key,
		TicketTypeID: req.TicketTypeID,
		Quantity:     req.Quantity,
	})
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, cartResponse{Cart: buildCartPayload(cart)})
}

func (h *CartHandlers) updateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key, ok := h.cartKey(ctx, w, r)
	if !ok {
		return
	}

	var req updateItemRequest
	if !decodeRequest(ctx, w, r, &req) {
		return
	}
	if req.Quantity == nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "quantity is required", http.StatusBadRequest))
		return
	}

	cart, err := h.carts.UpdateItem(ctx, services.UpdateItemCommand{
		Key:          key,
		TicketTypeID: chi.URLParam(r, "ticketTypeID"),
		Quantity:     *req.Quantity,
	})
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, cartResponse{Cart: buildCartPayload(cart)})
}

func (h *CartHandlers) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key, ok := h.cartKey(ctx, w, r)
	if !ok {
		return
	}

	cart, err := h.carts.RemoveItem(ctx, key, chi.URLParam(r, "ticketTypeID"))
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, cartResponse{Cart: buildCartPayload(cart)})
}

func (h *CartHandlers) validateCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key, ok := h.cartKey(ctx, w, r)
	if !ok {
		return
	}

	result, err := h.carts.ValidateCart(ctx, key)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildValidationPayload(result))
}

func (h *CartHandlers) applyPromoCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key, ok := h.cartKey(ctx, w, r)
	if !ok {
		return
	}

	var req promoCodeRequest
	if !decodeRequest(ctx, w, r, &req) {
		return
	}

	cart, err := h.carts.ApplyPromoCode(ctx, key, req.Code)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, cartResponse{Cart: buildCartPayload(cart)})
}

func (h *CartHandlers) mergeSessionCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := strings.TrimSpace(r.Header.Get(headerUserID))
	sessionID := strings.TrimSpace(r.Header.Get(headerSessionID))
	if userID == "" || sessionID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "merge requires both a session and a signed-in user", http.StatusBadRequest))
		return
	}

	cart, err := h.carts.MergeSessionCart(ctx, sessionID, userID)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, cartResponse{Cart: buildCartPayload(cart)})
}

func (h *CartHandlers) submitCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout is unavailable", http.StatusServiceUnavailable))
		return
	}
	key, ok := h.cartKey(ctx, w, r)
	if !ok {
		return
	}

	submission, err := h.checkout.Submit(ctx, key)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusAccepted, checkoutResponse{Submission: submission})
}

func (h *CartHandlers) cartKey(ctx context.Context, w http.ResponseWriter, r *http.Request) (services.CartKey, bool) {
	key := services.NewCartKey(r.Header.Get(headerSessionID), r.Header.Get(headerUserID))
	if key.IsZero() {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "a session or user identity header is required", http.StatusBadRequest))
		return services.CartKey{}, false
	}
	return key, true
}

func decodeRequest(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) bool {
	body, err := readLimitedBody(r, maxCartBodySize)
	if err != nil {
		switch {
		case errors.Is(err, errBodyTooLarge):
			httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		}
		return false
	}
	if err := json.Unmarshal(body, out); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return false
	}
	return true
}

func writeCartError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	if ruleErr, ok := services.AsRuleError(err); ok {
		httpx.WriteError(ctx, w, httpx.NewError(string(ruleErr.Message.Code), ruleErr.Message.Text, http.StatusUnprocessableEntity).
			WithDetails(ruleDetails(ruleErr.Message)))
		return
	}

	var failed *services.ValidationFailedError
	if errors.As(err, &failed) {
		httpx.WriteError(ctx, w, httpx.NewError("cart_validation_failed", "cart changed during validation; review and retry", http.StatusUnprocessableEntity).
			WithDetails(map[string]any{"validation": buildValidationPayload(failed.Result)}))
		return
	}

	switch {
	case errors.Is(err, services.ErrCartInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrTicketTypeNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("ticket_type_not_found", "ticket type not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCartItemNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("cart_item_not_found", "item is not in the cart", http.StatusNotFound))
	case errors.Is(err, services.ErrCatalogUnavailable),
		errors.Is(err, services.ErrDiscountUnavailable),
		errors.Is(err, services.ErrCheckoutUnavailable),
		errors.Is(err, services.ErrCartUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "a downstream dependency is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("cart_error", "cart operation failed", http.StatusInternalServerError))
	}
}

func ruleDetails(msg domain.CartMessage) map[string]any {
	details := map[string]any{}
	if msg.TicketTypeID != "" {
		details["ticketTypeId"] = msg.TicketTypeID
	}
	if len(msg.Params) > 0 {
		details["params"] = msg.Params
	}
	return details
}

func buildCartPayload(cart domain.Cart) cartPayload {
	payload := cartPayload{
		Key:        cart.Key,
		ItemsCount: cart.TotalItemCount(),
		Items:      buildCartItems(cart.Items),
		Totals:     cart.Totals,
	}
	if cart.PromoCode != "" {
		payload.PromoCode = cart.PromoCode
	}
	if cart.Discount != nil {
		payload.Discount = &cartDiscountPayload{
			Code:   cart.Discount.Code,
			Source: string(cart.Discount.Source),
			Amount: cart.Discount.Amount,
		}
	}
	if !cart.UpdatedAt.IsZero() {
		payload.UpdatedAt = formatTime(cart.UpdatedAt)
	}
	return payload
}

func buildCartItems(items []domain.CartItem) []cartItemPayload {
	if len(items) == 0 {
		return []cartItemPayload{}
	}

	payload := make([]cartItemPayload, 0, len(items))
	for _, item := range items {
		entry := cartItemPayload{
			TicketTypeID: item.TicketTypeID,
			Name:         item.Name,
			EventID:      item.EventID,
			EventTitle:   item.EventTitle,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			TotalPrice:   item.TotalPrice,
		}
		if item.Availability.Remaining != nil {
			remaining := *item.Availability.Remaining
			entry.Remaining = &remaining
		}
		payload = append(payload, entry)
	}
	return payload
}

func buildValidationPayload(result services.CartValidationResult) validationPayload {
	return validationPayload{
		Cart:       buildCartPayload(result.Cart),
		Valid:      result.IsValid(),
		HasChanges: result.HasChanges,
		Errors:     buildMessagePayloads(result.Errors),
		Warnings:   buildMessagePayloads(result.Warnings),
	}
}

func buildMessagePayloads(messages []domain.CartMessage) []cartMessagePayload {
	if len(messages) == 0 {
		return []cartMessagePayload{}
	}
	payload := make([]cartMessagePayload, 0, len(messages))
	for _, msg := range messages {
		payload = append(payload, cartMessagePayload{
			Code:         string(msg.Code),
			Severity:     string(msg.Severity),
			TicketTypeID: msg.TicketTypeID,
			Message:      msg.Text,
			Params:       msg.Params,
		})
	}
	return payload
}

type cartResponse struct {
	Cart cartPayload `json:"cart"`
}

type cartPayload struct {
	Key        string               `json:"key"`
	ItemsCount int                  `json:"itemsCount"`
	Items      []cartItemPayload    `json:"items"`
	PromoCode  string               `json:"promoCode,omitempty"`
	Discount   *cartDiscountPayload `json:"discount,omitempty"`
	Totals     domain.CartTotals    `json:"totals"`
	UpdatedAt  string               `json:"updatedAt,omitempty"`
}

type cartItemPayload struct {
	TicketTypeID string `json:"ticketTypeId"`
	Name         string `json:"name"`
	EventID      string `json:"eventId"`
	EventTitle   string `json:"eventTitle,omitempty"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int64  `json:"unitPrice"`
	TotalPrice   int64  `json:"totalPrice"`
	Remaining    *int   `json:"remaining,omitempty"`
}

type cartDiscountPayload struct {
	Code   string `json:"code"`
	Source string `json:"source"`
	Amount int64  `json:"amount"`
}

type validationPayload struct {
	Cart       cartPayload          `json:"cart"`
	Valid      bool                 `json:"valid"`
	HasChanges bool                 `json:"hasChanges"`
	Errors     []cartMessagePayload `json:"errors"`
	Warnings   []cartMessagePayload `json:"warnings"`
}

type cartMessagePayload struct {
	Code         string         `json:"code"`
	Severity     string         `json:"severity"`
	TicketTypeID string         `json:"ticketTypeId,omitempty"`
	Message      string         `json:"message"`
	Params       map[string]any `json:"params,omitempty"`
}

type checkoutResponse struct {
	Submission domain.CheckoutSubmission `json:"submission"`
}

type addItemRequest struct {
	TicketTypeID string `json:"ticketTypeId"`
	Quantity     int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity"`
}

type promoCodeRequest struct {
	Code string `json:"code"`
}
