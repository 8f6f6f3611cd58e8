package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avakarimi/mechanic-shop-api/internal/service"
)

// List returns one page of all tickets.  Mechanic role.
func (h *TicketHandler) List(c echo.Context) error {
	page, perPage := pageParams(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	details, total, err := h.Svc.List(ctx, page, perPage)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":    details,
		"page":     page,
		"per_page": perPage,
		"total":    total,
	})
}

// Update applies partial ticket changes (status, priority, estimate,
// vehicle info, issue description).
func (h *TicketHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req service.UpdateTicketInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	detail, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

type assignMechanicReq struct {
	MechanicID uint64 `json:"mechanic_id"`
}

// AssignMechanic adds a mechanic to a ticket.  Without a mechanic_id
// in the body the caller assigns themselves.  Assigning twice is a
// no-op.
func (h *TicketHandler) AssignMechanic(c echo.Context) error {
	self, ok := subjectID(c)
	if !ok {
		return nil
	}
	ticketID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req assignMechanicReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	mechanicID := req.MechanicID
	if mechanicID == 0 {
		mechanicID = self
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	detail, err := h.Svc.AssignMechanic(ctx, ticketID, mechanicID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// RemoveMechanic detaches a mechanic from a ticket.  Removing a
// mechanic who is not assigned is a no-op.
func (h *TicketHandler) RemoveMechanic(c echo.Context) error {
	ticketID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	mechanicID, err := pathID(c, "mechanicID")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid mechanic id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	detail, err := h.Svc.RemoveMechanic(ctx, ticketID, mechanicID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

type attachPartReq struct {
	PartID   uint64 `json:"part_id"`
	Quantity int    `json:"quantity"`
}

// AttachPart consumes stock and adds the part's cost to the ticket.
// Quantity defaults to 1.  Attaching an already-attached part is a
// no-op.
func (h *TicketHandler) AttachPart(c echo.Context) error {
	ticketID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req attachPartReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.PartID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "part_id required"})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	detail, err := h.Svc.AttachPart(ctx, ticketID, req.PartID, req.Quantity)
	if err != nil {
		return writeDomainError(c, err)
	}
	h.Cache.Purge(ctx) // stock changed; cached catalog entries are stale
	return c.JSON(http.StatusOK, detail)
}

// DetachPart removes the association only; stock and accumulated cost
// stay as they are.
func (h *TicketHandler) DetachPart(c echo.Context) error {
	ticketID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	partID, err := pathID(c, "partID")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid part id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	detail, err := h.Svc.DetachPart(ctx, ticketID, partID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// Delete removes a ticket if its status allows it (open or cancelled
// only).
func (h *TicketHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Svc.Delete(ctx, id); err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
