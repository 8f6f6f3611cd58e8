package handler

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avakarimi/mechanic-shop-api/internal/config"
	"github.com/avakarimi/mechanic-shop-api/internal/middleware"
	"github.com/avakarimi/mechanic-shop-api/internal/model"
	"github.com/avakarimi/mechanic-shop-api/internal/repository"
	"github.com/avakarimi/mechanic-shop-api/internal/service"
	"github.com/avakarimi/mechanic-shop-api/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints.  Customers
// and mechanics register and log in through separate routes but share
// the token machinery; the role baked into the JWT decides which
// protected route groups accept the session.
type AuthHandler struct {
	Cfg       config.Config
	Customers *repository.CustomerRepo
	Mechanics *repository.MechanicRepo
	Tokens    *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, cu *repository.CustomerRepo, me *repository.MechanicRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Customers: cu, Mechanics: me, Tokens: t}
}

// ----- DTOs -----

type registerCustomerReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

type registerMechanicReq struct {
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	Specialization  string  `json:"specialization"`
	YearsExperience int     `json:"years_experience"`
	HourlyRate      float64 `json:"hourly_rate"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type subjectPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResp struct {
	User    subjectPart `json:"user"`
	Access  tokenPart   `json:"access"`
	Refresh tokenPart   `json:"refresh"`
}

// RegisterCustomer creates a customer account and returns a token pair
// immediately.
func (h *AuthHandler) RegisterCustomer(c echo.Context) error {
	var req registerCustomerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if verr := service.ValidateAccountInput(req.FirstName, req.LastName, req.Email, req.Password); verr != nil {
		return writeDomainError(c, verr)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	uid, err := h.Customers.Create(ctx,
		strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName),
		req.Email, strings.TrimSpace(req.Phone), strings.TrimSpace(req.Address),
		req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return writeDomainError(c, err)
	}
	return h.issuePair(c, http.StatusCreated, uid, strings.ToLower(strings.TrimSpace(req.Email)), utils.RoleCustomer)
}

// LoginCustomer verifies credentials against the customers table.  A
// soft-deleted account cannot log in.
func (h *AuthHandler) LoginCustomer(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cu, err := h.Customers.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return writeDomainError(c, err)
	}
	if !cu.IsActive || !utils.VerifyPassword(cu.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	return h.issuePair(c, http.StatusOK, cu.ID, cu.Email, utils.RoleCustomer)
}

// RegisterMechanic creates a mechanic account.  The route sits behind
// the tighter rate limit bucket; any authenticated party hitting it
// still goes through full validation.
func (h *AuthHandler) RegisterMechanic(c echo.Context) error {
	var req registerMechanicReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if verr := service.ValidateAccountInput(req.FirstName, req.LastName, req.Email, req.Password); verr != nil {
		return writeDomainError(c, verr)
	}
	fields := map[string]string{}
	if req.YearsExperience < 0 {
		fields["years_experience"] = "years_experience must not be negative"
	}
	if req.HourlyRate < 0 {
		fields["hourly_rate"] = "hourly_rate must not be negative"
	}
	if len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	m := model.Mechanic{
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		Email:           req.Email,
		Specialization:  strings.TrimSpace(req.Specialization),
		YearsExperience: req.YearsExperience,
		HourlyRate:      req.HourlyRate,
	}
	uid, err := h.Mechanics.Create(ctx, m, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return writeDomainError(c, err)
	}
	return h.issuePair(c, http.StatusCreated, uid, strings.ToLower(strings.TrimSpace(req.Email)), utils.RoleMechanic)
}

// LoginMechanic verifies credentials against the mechanics table.
func (h *AuthHandler) LoginMechanic(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Mechanics.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return writeDomainError(c, err)
	}
	if !m.IsActive || !utils.VerifyPassword(m.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	return h.issuePair(c, http.StatusOK, m.ID, m.Email, utils.RoleMechanic)
}

// Refresh validates a refresh token by hash, revokes it and issues a
// fresh pair (rotation).
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := reqCtx(c)
	defer cancel()

	subID, role, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	email, err := h.subjectEmail(c, subID, role)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	return h.issuePair(c, http.StatusOK, subID, email, role)
}

// RefreshAccess returns a new access token without rotating the
// refresh token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := reqCtx(c)
	defer cancel()

	subID, role, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, subID, role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout revokes the presented refresh token.  The endpoint does not
// require a JWT; possession of the refresh token is sufficient.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated subject's profile based on the role
// claim.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := subjectID(c)
	if !ok {
		return nil
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	switch middleware.Role(c) {
	case utils.RoleCustomer:
		cu, err := h.Customers.GetByID(ctx, id)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(http.StatusOK, cu)
	case utils.RoleMechanic:
		m, err := h.Mechanics.GetByID(ctx, id)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(http.StatusOK, m)
	}
	return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
}

func (h *AuthHandler) subjectEmail(c echo.Context, id uint64, role string) (string, error) {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if role == utils.RoleMechanic {
		m, err := h.Mechanics.GetByID(ctx, id)
		return m.Email, err
	}
	cu, err := h.Customers.GetByID(ctx, id)
	return cu.Email, err
}

// issuePair signs an access token, mints and stores a refresh token
// and writes the standard auth response.
func (h *AuthHandler) issuePair(c echo.Context, status int, id uint64, email, role string) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, id, role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Tokens.StoreRefresh(ctx, id, role, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	return c.JSON(status, authResp{
		User:    subjectPart{ID: id, Email: email, Role: role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}
