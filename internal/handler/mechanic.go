package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/avakarimi/mechanic-shop-api/internal/middleware"
	"github.com/avakarimi/mechanic-shop-api/internal/repository"
	"github.com/avakarimi/mechanic-shop-api/internal/service"
)

// MechanicHandler serves the public mechanic directory and the
// mechanic-role CRUD routes.  Mutations purge the response cache so
// the cached directory never outlives a write by more than the TTL.
type MechanicHandler struct {
	Mechanics *repository.MechanicRepo
	Cache     *middleware.CacheBuster
}

func NewMechanicHandler(m *repository.MechanicRepo, cache *middleware.CacheBuster) *MechanicHandler {
	return &MechanicHandler{Mechanics: m, Cache: cache}
}

type updateMechanicReq struct {
	FirstName       *string  `json:"first_name"`
	LastName        *string  `json:"last_name"`
	Email           *string  `json:"email"`
	Specialization  *string  `json:"specialization"`
	YearsExperience *int     `json:"years_experience"`
	HourlyRate      *float64 `json:"hourly_rate"`
	IsActive        *bool    `json:"is_active"`
}

// List returns all mechanics.  Public, cached.
func (h *MechanicHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	mechanics, err := h.Mechanics.List(ctx)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, mechanics)
}

// Get returns one mechanic by id.  Public, cached.
func (h *MechanicHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Mechanics.GetByID(ctx, id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// UpdateMe updates the authenticated mechanic's own profile.
func (h *MechanicHandler) UpdateMe(c echo.Context) error {
	id, ok := subjectID(c)
	if !ok {
		return nil
	}
	return h.update(c, id)
}

// Update updates any mechanic by id.  Mechanic role.
func (h *MechanicHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	return h.update(c, id)
}

func (h *MechanicHandler) update(c echo.Context, id uint64) error {
	var req updateMechanicReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Mechanics.GetByID(ctx, id)
	if err != nil {
		return writeDomainError(c, err)
	}

	fields := map[string]string{}
	if req.FirstName != nil {
		if strings.TrimSpace(*req.FirstName) == "" {
			fields["first_name"] = "first_name must not be empty"
		} else {
			m.FirstName = strings.TrimSpace(*req.FirstName)
		}
	}
	if req.LastName != nil {
		if strings.TrimSpace(*req.LastName) == "" {
			fields["last_name"] = "last_name must not be empty"
		} else {
			m.LastName = strings.TrimSpace(*req.LastName)
		}
	}
	if req.Email != nil {
		if !service.ValidEmail(*req.Email) {
			fields["email"] = "email is not a valid address"
		} else {
			m.Email = strings.TrimSpace(*req.Email)
		}
	}
	if req.Specialization != nil {
		m.Specialization = strings.TrimSpace(*req.Specialization)
	}
	if req.YearsExperience != nil {
		if *req.YearsExperience < 0 {
			fields["years_experience"] = "years_experience must not be negative"
		} else {
			m.YearsExperience = *req.YearsExperience
		}
	}
	if req.HourlyRate != nil {
		if *req.HourlyRate < 0 {
			fields["hourly_rate"] = "hourly_rate must not be negative"
		} else {
			m.HourlyRate = *req.HourlyRate
		}
	}
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}
	if len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
	}

	if err := h.Mechanics.Update(ctx, m); err != nil {
		return writeDomainError(c, err)
	}
	h.Cache.Purge(ctx)

	m, err = h.Mechanics.GetByID(ctx, id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// Delete removes a mechanic.  Ticket assignments disappear with the
// row via cascade; a mechanic cannot delete themselves to keep at
// least the acting session coherent.
func (h *MechanicHandler) Delete(c echo.Context) error {
	self, ok := subjectID(c)
	if !ok {
		return nil
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if id == self {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot delete own account"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Mechanics.Delete(ctx, id); err != nil {
		return writeDomainError(c, err)
	}
	h.Cache.Purge(ctx)
	return c.NoContent(http.StatusNoContent)
}
