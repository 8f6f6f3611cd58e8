package model

import "time"

// Customer represents a shop client as stored in the `customers`
// table.  A customer owns zero or more service tickets via
// service_tickets.customer_id.  Password hashes are never serialized;
// the json:"-" tag keeps them out of every response body.
//
// Fields:
//  ID           – primary key identifier.
//  FirstName    – customer first name.
//  LastName     – customer last name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password (never serialized).
//  Phone        – optional contact phone.
//  Address      – optional mailing address.
//  IsActive     – false once the account is soft-deleted.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Customer struct {
	ID           uint64    `json:"id"`             // customers.id
	FirstName    string    `json:"first_name"`     // customers.first_name
	LastName     string    `json:"last_name"`      // customers.last_name
	Email        string    `json:"email"`          // customers.email
	PasswordHash string    `json:"-"`              // customers.password_hash
	Phone        string    `json:"phone"`          // customers.phone
	Address      string    `json:"address"`        // customers.address
	IsActive     bool      `json:"is_active"`      // customers.is_active
	CreatedAt    time.Time `json:"created_at"`     // customers.created_at
	UpdatedAt    time.Time `json:"updated_at"`     // customers.updated_at
}
