package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/avakarimi/mechanic-shop-api/internal/repository"
	"github.com/avakarimi/mechanic-shop-api/internal/service"
)

// CustomerHandler serves customer profile endpoints and the
// mechanic-facing customer directory.
type CustomerHandler struct {
	Customers *repository.CustomerRepo
}

func NewCustomerHandler(cu *repository.CustomerRepo) *CustomerHandler {
	return &CustomerHandler{Customers: cu}
}

type updateCustomerReq struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

// UpdateMe applies partial profile changes for the authenticated
// customer.  Absent fields keep their values; email changes re-check
// uniqueness.
func (h *CustomerHandler) UpdateMe(c echo.Context) error {
	id, ok := subjectID(c)
	if !ok {
		return nil
	}
	var req updateCustomerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cu, err := h.Customers.GetByID(ctx, id)
	if err != nil {
		return writeDomainError(c, err)
	}

	fields := map[string]string{}
	if req.FirstName != nil {
		if strings.TrimSpace(*req.FirstName) == "" {
			fields["first_name"] = "first_name must not be empty"
		} else {
			cu.FirstName = strings.TrimSpace(*req.FirstName)
		}
	}
	if req.LastName != nil {
		if strings.TrimSpace(*req.LastName) == "" {
			fields["last_name"] = "last_name must not be empty"
		} else {
			cu.LastName = strings.TrimSpace(*req.LastName)
		}
	}
	if req.Email != nil {
		if !service.ValidEmail(*req.Email) {
			fields["email"] = "email is not a valid address"
		} else {
			cu.Email = strings.TrimSpace(*req.Email)
		}
	}
	if req.Phone != nil {
		cu.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		cu.Address = strings.TrimSpace(*req.Address)
	}
	if len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
	}

	if err := h.Customers.Update(ctx, cu); err != nil {
		return writeDomainError(c, err)
	}
	cu, err = h.Customers.GetByID(ctx, id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, cu)
}

// DeleteMe soft-deletes the authenticated customer.  The row and its
// tickets remain; the account just stops authenticating.
func (h *CustomerHandler) DeleteMe(c echo.Context) error {
	id, ok := subjectID(c)
	if !ok {
		return nil
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Customers.SoftDelete(ctx, id); err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// List returns one page of customers with pagination metadata.
// Mechanic-facing.
func (h *CustomerHandler) List(c echo.Context) error {
	page, perPage := pageParams(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	customers, total, err := h.Customers.List(ctx, page, perPage)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":    customers,
		"page":     page,
		"per_page": perPage,
		"total":    total,
	})
}

// Get returns a single customer by id.  Mechanic-facing.
func (h *CustomerHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cu, err := h.Customers.GetByID(ctx, id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, cu)
}
