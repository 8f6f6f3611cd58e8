package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avakarimi/mechanic-shop-api/internal/repository"
	"github.com/avakarimi/mechanic-shop-api/internal/service"
)

func recordDomainError(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, writeDomainError(c, err))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestWriteDomainErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{sql.ErrNoRows, http.StatusNotFound},
		{repository.ErrForbidden, http.StatusForbidden},
		{repository.ErrEmailExists, http.StatusConflict},
		{repository.ErrPartNameExists, http.StatusConflict},
		{repository.ErrPartNumberExists, http.StatusConflict},
		{repository.ErrInsufficientStock, http.StatusBadRequest},
		{repository.ErrInvalidState, http.StatusBadRequest},
		{errors.New("driver crashed"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec, body := recordDomainError(t, tc.err)
		assert.Equal(t, tc.status, rec.Code, "error %v", tc.err)
		assert.NotEmpty(t, body["error"], "error %v", tc.err)
	}
}

func TestWriteDomainErrorConflictBodies(t *testing.T) {
	_, body := recordDomainError(t, repository.ErrEmailExists)
	assert.Equal(t, "email already exists", body["error"])

	_, body = recordDomainError(t, repository.ErrPartNameExists)
	assert.Equal(t, "part name already exists", body["error"])
}

func TestWriteDomainErrorValidationFields(t *testing.T) {
	verr := &service.ValidationError{Fields: map[string]string{"email": "email is required"}}
	rec, body := recordDomainError(t, verr)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	fields, ok := body["fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "email is required", fields["email"])
}

func TestWriteDomainErrorHidesInternals(t *testing.T) {
	_, body := recordDomainError(t, errors.New("dial tcp 10.0.0.5:3306: connection refused"))
	assert.Equal(t, "internal error", body["error"])
}
