package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateKey(t *testing.T) {
	// The MySQL driver surfaces duplicate-entry violations as error
	// 1062; both uniqueness conflicts (email, part name/number) ride
	// on this detection.
	dup := fmt.Errorf("Error 1062 (23000): Duplicate entry 'ada@example.com' for key 'customers.uq_customers_email'")
	assert.True(t, isDuplicateKey(dup))

	wrapped := fmt.Errorf("insert customer: %w", dup)
	assert.True(t, isDuplicateKey(wrapped))

	assert.False(t, isDuplicateKey(nil))
	assert.False(t, isDuplicateKey(errors.New("Error 1452 (23000): Cannot add or update a child row")))
	assert.False(t, isDuplicateKey(errors.New("connection refused")))
}
