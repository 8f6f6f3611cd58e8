package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/avakarimi/mechanic-shop-api/internal/model"
	"github.com/avakarimi/mechanic-shop-api/internal/utils"
)

// CustomerRepo provides CRUD operations for the customers table.
// Customers are soft-deleted: Delete flips is_active to false so that
// historical service tickets keep a valid owner.
type CustomerRepo struct{ DB *sql.DB }

func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{DB: db} }

const customerCols = "id,first_name,last_name,email,password_hash,phone,address,is_active,created_at,updated_at"

func scanCustomer(row interface{ Scan(...any) error }) (model.Customer, error) {
	var c model.Customer
	var address sql.NullString
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.PasswordHash,
		&c.Phone, &address, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	c.Address = address.String
	return c, err
}

// Create inserts a customer and returns its ID.  Emails are normalized
// to lower case before insert; duplicate-key failures surface as
// ErrEmailExists.
func (r *CustomerRepo) Create(ctx context.Context, first, last, email, phone, address, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO customers (first_name, last_name, email, password_hash, phone, address) VALUES (?,?,?,?,?,?)",
		first, last, email, hash, phone, address)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a customer by normalized email.
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (model.Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanCustomer(r.DB.QueryRowContext(ctx,
		"SELECT "+customerCols+" FROM customers WHERE email=? LIMIT 1", email))
}

// GetByID fetches a customer by id.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint64) (model.Customer, error) {
	return scanCustomer(r.DB.QueryRowContext(ctx,
		"SELECT "+customerCols+" FROM customers WHERE id=? LIMIT 1", id))
}

// List returns one page of customers plus the total row count for
// pagination metadata.  Pages are 1-based.
func (r *CustomerRepo) List(ctx context.Context, page, perPage int) ([]model.Customer, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}
	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM customers").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+customerCols+" FROM customers ORDER BY id LIMIT ? OFFSET ?",
		perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	customers := make([]model.Customer, 0, perPage)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// Update applies profile changes.  Email changes re-check uniqueness;
// empty fields keep their current value.
func (r *CustomerRepo) Update(ctx context.Context, c model.Customer) error {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	_, err := r.DB.ExecContext(ctx,
		"UPDATE customers SET first_name=?, last_name=?, email=?, phone=?, address=? WHERE id=?",
		c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.ID)
	if err != nil && isDuplicateKey(err) {
		return ErrEmailExists
	}
	return err
}

// SoftDelete marks the account inactive.  The row and its tickets are
// kept for referential integrity.
func (r *CustomerRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE customers SET is_active=FALSE WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// isDuplicateKey reports whether err is a MySQL 1062 duplicate-entry error.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
