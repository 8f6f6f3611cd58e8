package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avakarimi/mechanic-shop-api/internal/utils"
)

const testSecret = "unit-test-secret"

func doRequest(t *testing.T, mw []echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	require.NoError(t, h(c))
	return rec, c
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	access, err := utils.NewAccessToken(testSecret, 7, utils.RoleCustomer, 5)
	require.NoError(t, err)

	rec, c := doRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "Bearer "+access.Token)
	assert.Equal(t, http.StatusOK, rec.Code)

	id, ok := SubjectID(c)
	require.True(t, ok)
	assert.Equal(t, uint64(7), id)
	assert.Equal(t, utils.RoleCustomer, Role(c))
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	rec, _ := doRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsForgedToken(t *testing.T) {
	access, err := utils.NewAccessToken("another-secret", 7, utils.RoleCustomer, 5)
	require.NoError(t, err)

	rec, _ := doRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "Bearer "+access.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	mechanicOnly := []echo.MiddlewareFunc{JWTAuth(testSecret), RequireRole(utils.RoleMechanic)}

	access, err := utils.NewAccessToken(testSecret, 7, utils.RoleCustomer, 5)
	require.NoError(t, err)
	rec, _ := doRequest(t, mechanicOnly, "Bearer "+access.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	access, err = utils.NewAccessToken(testSecret, 8, utils.RoleMechanic, 5)
	require.NoError(t, err)
	rec, _ = doRequest(t, mechanicOnly, "Bearer "+access.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleWithoutAuth(t *testing.T) {
	rec, _ := doRequest(t, []echo.MiddlewareFunc{RequireRole(utils.RoleMechanic)}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
