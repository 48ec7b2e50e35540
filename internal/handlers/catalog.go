package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	domain "github.com/eventloft/api/internal/domain"
	"github.com/eventloft/api/internal/platform/httpx"
	"github.com/eventloft/api/internal/services"
)

// CatalogHandlers exposes read-only event catalog endpoints.
type CatalogHandlers struct {
	catalog services.CatalogService
}

// NewCatalogHandlers constructs handlers delegating to the catalog service.
func NewCatalogHandlers(catalog services.CatalogService) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog}
}

// Routes wires the /events endpoints onto the provided router.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/{eventID}/ticket-types", h.listTicketTypes)
}

func (h *CatalogHandlers) listTicketTypes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog is unavailable", http.StatusServiceUnavailable))
		return
	}

	snapshots, err := h.catalog.EventTicketTypes(ctx, chi.URLParam(r, "eventID"))
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	payload := ticketTypesResponse{TicketTypes: make([]ticketTypePayload, 0, len(snapshots))}
	for _, snapshot := range snapshots {
		payload.TicketTypes = append(payload.TicketTypes, buildTicketTypePayload(snapshot))
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

func writeCatalogError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrTicketTypeNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("ticket_type_not_found", "ticket type not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCatalogUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog backend is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("catalog_error", "catalog lookup failed", http.StatusInternalServerError))
	}
}

func buildTicketTypePayload(snapshot domain.TicketTypeSnapshot) ticketTypePayload {
	payload := ticketTypePayload{
		ID:          snapshot.ID,
		Name:        snapshot.Name,
		EventID:     snapshot.EventID,
		EventTitle:  snapshot.EventTitle,
		UnitPrice:   snapshot.UnitPrice,
		OnSale:      snapshot.OnSale,
		MinPerOrder: snapshot.MinPerOrder,
		MaxPerOrder: snapshot.MaxPerOrder,
	}
	if snapshot.RemainingQuantity != nil {
		remaining := *snapshot.RemainingQuantity
		payload.Remaining = &remaining
	}
	if !snapshot.SaleStartsAt.IsZero() {
		payload.SaleStartsAt = formatTime(snapshot.SaleStartsAt)
	}
	if !snapshot.SaleEndsAt.IsZero() {
		payload.SaleEndsAt = formatTime(snapshot.SaleEndsAt)
	}
	return payload
}

type ticketTypesResponse struct {
	TicketTypes []ticketTypePayload `json:"ticketTypes"`
}

type ticketTypePayload struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	EventID      string `json:"eventId"`
	EventTitle   string `json:"eventTitle,omitempty"`
	UnitPrice    int64  `json:"unitPrice"`
	OnSale       bool   `json:"onSale"`
	SaleStartsAt string `json:"saleStartsAt,omitempty"`
	SaleEndsAt   string `json:"saleEndsAt,omitempty"`
	Remaining    *int   `json:"remaining,omitempty"`
	MinPerOrder  int    `json:"minPerOrder,omitempty"`
	MaxPerOrder  int    `json:"maxPerOrder,omitempty"`
}
