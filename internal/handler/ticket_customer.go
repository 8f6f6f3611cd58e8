package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avakarimi/mechanic-shop-api/internal/middleware"
	"github.com/avakarimi/mechanic-shop-api/internal/service"
)

// TicketHandler serves all ticket endpoints.  Customer-facing methods
// live in this file; the mechanic-facing workflow (updates,
// assignments, part attachments, deletion) is in ticket_mechanic.go.
type TicketHandler struct {
	Svc   *service.TicketService
	Cache *middleware.CacheBuster
}

func NewTicketHandler(svc *service.TicketService, cache *middleware.CacheBuster) *TicketHandler {
	return &TicketHandler{Svc: svc, Cache: cache}
}

// Create opens a new ticket for the authenticated customer.  The owner
// is always the caller; a customer_id in the body is ignored.
func (h *TicketHandler) Create(c echo.Context) error {
	customerID, ok := subjectID(c)
	if !ok {
		return nil
	}
	var req service.CreateTicketInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	detail, err := h.Svc.Create(ctx, customerID, req)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, detail)
}

// MyTickets lists the caller's tickets, newest first.
func (h *TicketHandler) MyTickets(c echo.Context) error {
	customerID, ok := subjectID(c)
	if !ok {
		return nil
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	details, err := h.Svc.ListForCustomer(ctx, customerID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, details)
}

// GetOwn returns one of the caller's tickets.  Tickets owned by other
// customers yield 403, never a peek at their contents.
func (h *TicketHandler) GetOwn(c echo.Context) error {
	customerID, ok := subjectID(c)
	if !ok {
		return nil
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	detail, err := h.Svc.GetForCustomer(ctx, id, customerID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}
