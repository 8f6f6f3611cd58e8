// Package database opens the MySQL pool behind the shop's tables
// (customers, mechanics, inventory, service tickets and their
// association tables) and bootstraps the schema at startup.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to the shop database and verifies the connection with
// a short ping.  maxConns bounds both open and idle connections; part
// attachment holds row locks inside its transaction, so the pool is
// kept deliberately modest rather than unbounded.
func Open(user, pass, host, port, name string, maxConns int) (*sql.DB, error) {
	if maxConns < 1 {
		maxConns = 25
	}

	db, err := sql.Open("mysql", dsn(user, pass, host, port, name))
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// dsn builds the driver connection string.  parseTime maps DATETIME
// columns onto time.Time and loc=UTC keeps every timestamp in UTC,
// matching how the schema stores created_at/updated_at.
func dsn(user, pass, host, port, name string) string {
	auth := user
	if pass != "" {
		auth = user + ":" + pass
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)
}
