package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	got := dsn("shop", "s3cret", "db.internal", "3306", "mechanic_shop")
	assert.Equal(t,
		"shop:s3cret@tcp(db.internal:3306)/mechanic_shop?charset=utf8mb4&parseTime=true&loc=UTC",
		got)
}

func TestDSNWithoutPassword(t *testing.T) {
	got := dsn("root", "", "localhost", "3306", "mechanic_shop")
	assert.Equal(t,
		"root@tcp(localhost:3306)/mechanic_shop?charset=utf8mb4&parseTime=true&loc=UTC",
		got)
}
