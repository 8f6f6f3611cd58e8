package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAccountInput(t *testing.T) {
	assert.Nil(t, ValidateAccountInput("Ada", "Nguyen", "ada@example.com", "secret1"))

	verr := ValidateAccountInput("", "  ", "not-an-email", "short")
	require.NotNil(t, verr)
	assert.Contains(t, verr.Fields, "first_name")
	assert.Contains(t, verr.Fields, "last_name")
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")

	verr = ValidateAccountInput("Ada", "Nguyen", "", "secret1")
	require.NotNil(t, verr)
	assert.Equal(t, "email is required", verr.Fields["email"])
}

func TestValidatePartInput(t *testing.T) {
	assert.Nil(t, ValidatePartInput("brake pad", 19.99))
	assert.Nil(t, ValidatePartInput("free sample", 0))

	verr := ValidatePartInput("  ", -1)
	require.NotNil(t, verr)
	assert.Contains(t, verr.Fields, "part_name")
	assert.Contains(t, verr.Fields, "price")

	verr = ValidatePartInput(strings.Repeat("x", MaxPartNameLen+1), MaxPartPrice+1)
	require.NotNil(t, verr)
	assert.Contains(t, verr.Fields, "part_name")
	assert.Contains(t, verr.Fields, "price")
}

func TestValidationErrorMessage(t *testing.T) {
	verr := &ValidationError{Fields: map[string]string{"email": "email is required"}}
	assert.Contains(t, verr.Error(), "email: email is required")
}
