package database

import (
	"context"
	"database/sql"
)

// schema holds the DDL for every table the API uses.  Statements are
// idempotent (CREATE TABLE IF NOT EXISTS) so EnsureSchema can run on
// every startup.  The two association tables carry composite primary
// keys only: a row is nothing but the link between a ticket and a
// mechanic or part.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		first_name    VARCHAR(100)    NOT NULL,
		last_name     VARCHAR(100)    NOT NULL,
		email         VARCHAR(120)    NOT NULL,
		password_hash VARCHAR(255)    NOT NULL,
		phone         VARCHAR(20)     NOT NULL DEFAULT '',
		address       TEXT,
		is_active     BOOLEAN         NOT NULL DEFAULT TRUE,
		created_at    DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_customers_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS mechanics (
		id               BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		first_name       VARCHAR(100)    NOT NULL,
		last_name        VARCHAR(100)    NOT NULL,
		email            VARCHAR(120)    NOT NULL,
		password_hash    VARCHAR(255)    NOT NULL,
		specialization   VARCHAR(100)    NOT NULL DEFAULT '',
		years_experience INT             NOT NULL DEFAULT 0,
		hourly_rate      DOUBLE          NOT NULL DEFAULT 0,
		is_active        BOOLEAN         NOT NULL DEFAULT TRUE,
		created_at       DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at       DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_mechanics_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS inventory (
		id              BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		part_name       VARCHAR(255)    NOT NULL,
		part_number     VARCHAR(100)    NULL,
		description     TEXT,
		quantity        INT             NOT NULL DEFAULT 0,
		price           DOUBLE          NOT NULL DEFAULT 0,
		category        VARCHAR(100)    NOT NULL DEFAULT '',
		supplier        VARCHAR(200)    NOT NULL DEFAULT '',
		min_stock_level INT             NOT NULL DEFAULT 5,
		created_at      DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at      DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_inventory_part_name (part_name),
		UNIQUE KEY uq_inventory_part_number (part_number)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS service_tickets (
		id                BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		customer_id       BIGINT UNSIGNED NOT NULL,
		vehicle_info      VARCHAR(200)    NOT NULL DEFAULT '',
		issue_description TEXT            NOT NULL,
		status            VARCHAR(20)     NOT NULL DEFAULT 'open',
		priority          VARCHAR(20)     NOT NULL DEFAULT 'medium',
		estimated_hours   DOUBLE          NOT NULL DEFAULT 0,
		total_cost        DOUBLE          NOT NULL DEFAULT 0,
		created_at        DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at        DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_service_tickets_customer (customer_id),
		CONSTRAINT fk_ticket_customer FOREIGN KEY (customer_id) REFERENCES customers (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS service_mechanic (
		ticket_id   BIGINT UNSIGNED NOT NULL,
		mechanic_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (ticket_id, mechanic_id),
		CONSTRAINT fk_sm_ticket FOREIGN KEY (ticket_id) REFERENCES service_tickets (id) ON DELETE CASCADE,
		CONSTRAINT fk_sm_mechanic FOREIGN KEY (mechanic_id) REFERENCES mechanics (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS ticket_inventory (
		ticket_id BIGINT UNSIGNED NOT NULL,
		part_id   BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (ticket_id, part_id),
		CONSTRAINT fk_ti_ticket FOREIGN KEY (ticket_id) REFERENCES service_tickets (id) ON DELETE CASCADE,
		CONSTRAINT fk_ti_part FOREIGN KEY (part_id) REFERENCES inventory (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		subject_id BIGINT UNSIGNED NOT NULL,
		role       VARCHAR(20)     NOT NULL,
		token_hash CHAR(64)        NOT NULL,
		expires_at DATETIME        NOT NULL,
		revoked_at DATETIME        NULL,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		KEY idx_refresh_tokens_subject (subject_id, role)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates any missing tables.  It is safe to call on
// every startup.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
