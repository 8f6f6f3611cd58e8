package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/avakarimi/mechanic-shop-api/internal/model"
	"github.com/avakarimi/mechanic-shop-api/internal/utils"
)

// MechanicRepo provides CRUD operations for the mechanics table.
type MechanicRepo struct{ DB *sql.DB }

func NewMechanicRepo(db *sql.DB) *MechanicRepo { return &MechanicRepo{DB: db} }

const mechanicCols = "id,first_name,last_name,email,password_hash,specialization,years_experience,hourly_rate,is_active,created_at,updated_at"

func scanMechanic(row interface{ Scan(...any) error }) (model.Mechanic, error) {
	var m model.Mechanic
	err := row.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.PasswordHash,
		&m.Specialization, &m.YearsExperience, &m.HourlyRate, &m.IsActive,
		&m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// Create inserts a mechanic and returns its ID.  Duplicate emails
// surface as ErrEmailExists.
func (r *MechanicRepo) Create(ctx context.Context, m model.Mechanic, password string, cost int) (uint64, error) {
	email := strings.ToLower(strings.TrimSpace(m.Email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO mechanics (first_name, last_name, email, password_hash, specialization, years_experience, hourly_rate) VALUES (?,?,?,?,?,?,?)",
		m.FirstName, m.LastName, email, hash, m.Specialization, m.YearsExperience, m.HourlyRate)
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

// GetByEmail fetches a mechanic by normalized email.
func (r *MechanicRepo) GetByEmail(ctx context.Context, email string) (model.Mechanic, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanMechanic(r.DB.QueryRowContext(ctx,
		"SELECT "+mechanicCols+" FROM mechanics WHERE email=? LIMIT 1", email))
}

// GetByID fetches a mechanic by id.
func (r *MechanicRepo) GetByID(ctx context.Context, id uint64) (model.Mechanic, error) {
	return scanMechanic(r.DB.QueryRowContext(ctx,
		"SELECT "+mechanicCols+" FROM mechanics WHERE id=? LIMIT 1", id))
}

// List returns all mechanics ordered by id.  The roster is small
// enough that pagination is not worth the trouble here; the response
// cache in front of the listing endpoint absorbs repeated reads.
func (r *MechanicRepo) List(ctx context.Context) ([]model.Mechanic, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+mechanicCols+" FROM mechanics ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	mechanics := make([]model.Mechanic, 0)
	for rows.Next() {
		m, err := scanMechanic(rows)
		if err != nil {
			return nil, err
		}
		mechanics = append(mechanics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return mechanics, nil
}

// Update applies profile changes to a mechanic.
func (r *MechanicRepo) Update(ctx context.Context, m model.Mechanic) error {
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	_, err := r.DB.ExecContext(ctx,
		"UPDATE mechanics SET first_name=?, last_name=?, email=?, specialization=?, years_experience=?, hourly_rate=?, is_active=? WHERE id=?",
		m.FirstName, m.LastName, m.Email, m.Specialization, m.YearsExperience, m.HourlyRate, m.IsActive, m.ID)
	if err != nil && isDuplicateKey(err) {
		return ErrEmailExists
	}
	return err
}

// Delete removes a mechanic.  Association rows in service_mechanic go
// with it via ON DELETE CASCADE; tickets themselves are untouched.
func (r *MechanicRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM mechanics WHERE id=?", id)
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
