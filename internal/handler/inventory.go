package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/avakarimi/mechanic-shop-api/internal/middleware"
	"github.com/avakarimi/mechanic-shop-api/internal/model"
	"github.com/avakarimi/mechanic-shop-api/internal/repository"
	"github.com/avakarimi/mechanic-shop-api/internal/service"
)

// InventoryHandler serves the public parts catalog and the
// mechanic-role inventory management routes.
type InventoryHandler struct {
	Parts *repository.InventoryRepo
	Cache *middleware.CacheBuster
}

func NewInventoryHandler(p *repository.InventoryRepo, cache *middleware.CacheBuster) *InventoryHandler {
	return &InventoryHandler{Parts: p, Cache: cache}
}

type partReq struct {
	PartName      string  `json:"part_name"`
	PartNumber    *string `json:"part_number"`
	Description   string  `json:"description"`
	Quantity      int     `json:"quantity"`
	Price         float64 `json:"price"`
	Category      string  `json:"category"`
	Supplier      string  `json:"supplier"`
	MinStockLevel int     `json:"min_stock_level"`
}

// List returns all parts ordered by name.  Public, cached.
func (h *InventoryHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	parts, err := h.Parts.List(ctx)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, parts)
}

// Get returns one part by id.  Public, cached.
func (h *InventoryHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Parts.GetByID(ctx, id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// ListLowStock returns parts below their reorder threshold.  Mechanic
// role.
func (h *InventoryHandler) ListLowStock(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	parts, err := h.Parts.ListLowStock(ctx)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, parts)
}

// Create adds a new part to the inventory.
func (h *InventoryHandler) Create(c echo.Context) error {
	var req partReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if verr := service.ValidatePartInput(req.PartName, req.Price); verr != nil {
		return writeDomainError(c, verr)
	}
	if req.Quantity < 0 || req.MinStockLevel < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": map[string]string{
			"quantity": "quantity and min_stock_level must not be negative",
		}})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p := model.Part{
		PartName:      strings.TrimSpace(req.PartName),
		PartNumber:    trimPtr(req.PartNumber),
		Description:   strings.TrimSpace(req.Description),
		Quantity:      req.Quantity,
		Price:         req.Price,
		Category:      strings.TrimSpace(req.Category),
		Supplier:      strings.TrimSpace(req.Supplier),
		MinStockLevel: req.MinStockLevel,
	}
	id, err := h.Parts.Create(ctx, p)
	if err != nil {
		return writeDomainError(c, err)
	}
	h.Cache.Purge(ctx)

	created, err := h.Parts.GetByID(ctx, id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// Update replaces a part's mutable attributes.
func (h *InventoryHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req partReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if verr := service.ValidatePartInput(req.PartName, req.Price); verr != nil {
		return writeDomainError(c, verr)
	}
	if req.Quantity < 0 || req.MinStockLevel < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": map[string]string{
			"quantity": "quantity and min_stock_level must not be negative",
		}})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Parts.GetByID(ctx, id)
	if err != nil {
		return writeDomainError(c, err)
	}
	p.PartName = strings.TrimSpace(req.PartName)
	p.PartNumber = trimPtr(req.PartNumber)
	p.Description = strings.TrimSpace(req.Description)
	p.Quantity = req.Quantity
	p.Price = req.Price
	p.Category = strings.TrimSpace(req.Category)
	p.Supplier = strings.TrimSpace(req.Supplier)
	p.MinStockLevel = req.MinStockLevel

	if err := h.Parts.Update(ctx, p); err != nil {
		return writeDomainError(c, err)
	}
	h.Cache.Purge(ctx)

	updated, err := h.Parts.GetByID(ctx, id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// Archive zeroes a part's stock while keeping the row so historical
// tickets keep resolving.
func (h *InventoryHandler) Archive(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Parts.Archive(ctx, id); err != nil {
		return writeDomainError(c, err)
	}
	h.Cache.Purge(ctx)

	p, err := h.Parts.GetByID(ctx, id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Delete removes a part entirely.  Association rows cascade; ticket
// totals keep the cost already accumulated.
func (h *InventoryHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Parts.Delete(ctx, id); err != nil {
		return writeDomainError(c, err)
	}
	h.Cache.Purge(ctx)
	return c.NoContent(http.StatusNoContent)
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
