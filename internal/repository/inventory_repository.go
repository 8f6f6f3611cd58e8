package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/avakarimi/mechanic-shop-api/internal/model"
)

// InventoryRepo provides CRUD operations for the inventory table.
// Part names are unique (exact match); the optional part number is
// unique when present.  Stock consumption during ticket attachment is
// handled by TicketRepo inside its transaction, not here.
type InventoryRepo struct{ DB *sql.DB }

func NewInventoryRepo(db *sql.DB) *InventoryRepo { return &InventoryRepo{DB: db} }

const partCols = "id,part_name,part_number,description,quantity,price,category,supplier,min_stock_level,created_at,updated_at"

func scanPart(row interface{ Scan(...any) error }) (model.Part, error) {
	var p model.Part
	var partNumber, description sql.NullString
	err := row.Scan(&p.ID, &p.PartName, &partNumber, &description, &p.Quantity,
		&p.Price, &p.Category, &p.Supplier, &p.MinStockLevel, &p.CreatedAt, &p.UpdatedAt)
	if partNumber.Valid {
		n := partNumber.String
		p.PartNumber = &n
	}
	p.Description = description.String
	return p, err
}

// Create inserts a part and returns its ID.  Duplicate part names and
// part numbers are reported with distinct sentinels so handlers can
// produce precise conflict messages.
func (r *InventoryRepo) Create(ctx context.Context, p model.Part) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO inventory (part_name, part_number, description, quantity, price, category, supplier, min_stock_level) VALUES (?,?,?,?,?,?,?,?)",
		p.PartName, p.PartNumber, p.Description, p.Quantity, p.Price, p.Category, p.Supplier, p.MinStockLevel)
	if err != nil {
		if isDuplicateKey(err) {
			if strings.Contains(err.Error(), "part_number") {
				return 0, ErrPartNumberExists
			}
			return 0, ErrPartNameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a part by id.
func (r *InventoryRepo) GetByID(ctx context.Context, id uint64) (model.Part, error) {
	return scanPart(r.DB.QueryRowContext(ctx,
		"SELECT "+partCols+" FROM inventory WHERE id=? LIMIT 1", id))
}

// List returns all parts ordered by name.
func (r *InventoryRepo) List(ctx context.Context) ([]model.Part, error) {
	return r.queryParts(ctx, "SELECT "+partCols+" FROM inventory ORDER BY part_name")
}

// ListLowStock returns parts whose quantity has fallen below their
// min_stock_level, for reorder reporting.
func (r *InventoryRepo) ListLowStock(ctx context.Context) ([]model.Part, error) {
	return r.queryParts(ctx,
		"SELECT "+partCols+" FROM inventory WHERE quantity < min_stock_level ORDER BY part_name")
}

func (r *InventoryRepo) queryParts(ctx context.Context, query string, args ...any) ([]model.Part, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	parts := make([]model.Part, 0)
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return parts, nil
}

// Update applies changes to a part's metadata, stock and price.
func (r *InventoryRepo) Update(ctx context.Context, p model.Part) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE inventory SET part_name=?, part_number=?, description=?, quantity=?, price=?, category=?, supplier=?, min_stock_level=? WHERE id=?",
		p.PartName, p.PartNumber, p.Description, p.Quantity, p.Price, p.Category, p.Supplier, p.MinStockLevel, p.ID)
	if err != nil && isDuplicateKey(err) {
		if strings.Contains(err.Error(), "part_number") {
			return ErrPartNumberExists
		}
		return ErrPartNameExists
	}
	return err
}

// Archive zeroes a part's stock and bumps updated_at even when the
// quantity was already zero.  Archived parts stay listed so historical
// tickets keep resolving.
func (r *InventoryRepo) Archive(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE inventory SET quantity=0, updated_at=CURRENT_TIMESTAMP WHERE id=?", id)
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

// Delete removes a part.  Association rows cascade; tickets keep their
// accumulated total_cost since derived cost is never reversed.
func (r *InventoryRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM inventory WHERE id=?", id)
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
