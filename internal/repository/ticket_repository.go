package repository

import (
	"context"
	"database/sql"

	"github.com/avakarimi/mechanic-shop-api/internal/model"
)

// TicketRepo provides CRUD and association operations for service
// tickets.  Multi-step mutations (part attach in particular) run in a
// single transaction: association insert, stock decrement and cost
// increment commit together or not at all.
type TicketRepo struct{ DB *sql.DB }

func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{DB: db} }

const ticketCols = "id,customer_id,vehicle_info,issue_description,status,priority,estimated_hours,total_cost,created_at,updated_at"

func scanTicket(row interface{ Scan(...any) error }) (model.ServiceTicket, error) {
	var t model.ServiceTicket
	err := row.Scan(&t.ID, &t.CustomerID, &t.VehicleInfo, &t.IssueDescription,
		&t.Status, &t.Priority, &t.EstimatedHours, &t.TotalCost, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// Create inserts a ticket and any initial mechanic assignments in one
// transaction.  Mechanic ids that do not resolve are skipped rather
// than errored; the INSERT ... SELECT only produces a row when the
// mechanic exists.  The generated id and timestamps are read back onto
// the provided record.
func (r *TicketRepo) Create(ctx context.Context, t *model.ServiceTicket, mechanicIDs []uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO service_tickets (customer_id, vehicle_info, issue_description, status, priority, estimated_hours) VALUES (?,?,?,?,?,?)",
		t.CustomerID, t.VehicleInfo, t.IssueDescription, t.Status, t.Priority, t.EstimatedHours)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)

	for _, mid := range mechanicIDs {
		_, err := tx.ExecContext(ctx,
			"INSERT IGNORE INTO service_mechanic (ticket_id, mechanic_id) SELECT ?, id FROM mechanics WHERE id=?",
			t.ID, mid)
		if err != nil {
			return err
		}
	}

	created, err := scanTicket(tx.QueryRowContext(ctx,
		"SELECT "+ticketCols+" FROM service_tickets WHERE id=?", t.ID))
	if err != nil {
		return err
	}
	*t = created
	return tx.Commit()
}

// GetByID fetches a ticket by id.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (model.ServiceTicket, error) {
	return scanTicket(r.DB.QueryRowContext(ctx,
		"SELECT "+ticketCols+" FROM service_tickets WHERE id=? LIMIT 1", id))
}

// ListByCustomer returns all tickets owned by the given customer,
// newest first.
func (r *TicketRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]model.ServiceTicket, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+ticketCols+" FROM service_tickets WHERE customer_id=? ORDER BY created_at DESC, id DESC",
		customerID)
	if err != nil {
		return nil, err
	}
	return collectTickets(rows)
}

// List returns one page of all tickets plus the total count, newest
// first.  Used by mechanic-facing listings.
func (r *TicketRepo) List(ctx context.Context, page, perPage int) ([]model.ServiceTicket, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}
	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM service_tickets").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+ticketCols+" FROM service_tickets ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	tickets, err := collectTickets(rows)
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

func collectTickets(rows *sql.Rows) ([]model.ServiceTicket, error) {
	defer rows.Close()
	tickets := make([]model.ServiceTicket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}

// Update writes the mutable ticket fields.  total_cost is deliberately
// absent: derived cost only moves through AttachPart.
func (r *TicketRepo) Update(ctx context.Context, t model.ServiceTicket) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE service_tickets SET vehicle_info=?, issue_description=?, status=?, priority=?, estimated_hours=? WHERE id=?",
		t.VehicleInfo, t.IssueDescription, t.Status, t.Priority, t.EstimatedHours, t.ID)
	return err
}

// Delete removes a ticket.  Association rows go with it through
// ON DELETE CASCADE.  Status gating happens in the service layer.
func (r *TicketRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM service_tickets WHERE id=?", id)
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

// Mechanics returns the mechanics assigned to a ticket, ordered by id.
func (r *TicketRepo) Mechanics(ctx context.Context, ticketID uint64) ([]model.Mechanic, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT m.id,m.first_name,m.last_name,m.email,m.password_hash,m.specialization,m.years_experience,m.hourly_rate,m.is_active,m.created_at,m.updated_at
		 FROM service_mechanic sm
		 JOIN mechanics m ON m.id = sm.mechanic_id
		 WHERE sm.ticket_id = ?
		 ORDER BY m.id`, ticketID)
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

// Parts returns the inventory parts attached to a ticket, ordered by id.
func (r *TicketRepo) Parts(ctx context.Context, ticketID uint64) ([]model.Part, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT p.id,p.part_name,p.part_number,p.description,p.quantity,p.price,p.category,p.supplier,p.min_stock_level,p.created_at,p.updated_at
		 FROM ticket_inventory ti
		 JOIN inventory p ON p.id = ti.part_id
		 WHERE ti.ticket_id = ?
		 ORDER BY p.id`, ticketID)
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

// MechanicAssigned reports whether the mechanic is already on the
// ticket.  Membership is by primary key pair, not object identity.
func (r *TicketRepo) MechanicAssigned(ctx context.Context, ticketID, mechanicID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM service_mechanic WHERE ticket_id=? AND mechanic_id=? LIMIT 1",
		ticketID, mechanicID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AssignMechanic inserts the association row.  A concurrent duplicate
// insert is absorbed: assignment is idempotent.
func (r *TicketRepo) AssignMechanic(ctx context.Context, ticketID, mechanicID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO service_mechanic (ticket_id, mechanic_id) VALUES (?,?)",
		ticketID, mechanicID)
	if err != nil && isDuplicateKey(err) {
		return nil
	}
	return err
}

// RemoveMechanic deletes the association row.  Removing a mechanic who
// is not assigned is a no-op, not an error.
func (r *TicketRepo) RemoveMechanic(ctx context.Context, ticketID, mechanicID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM service_mechanic WHERE ticket_id=? AND mechanic_id=?",
		ticketID, mechanicID)
	return err
}

// PartAttached reports whether the part is already on the ticket.
func (r *TicketRepo) PartAttached(ctx context.Context, ticketID, partID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM ticket_inventory WHERE ticket_id=? AND part_id=? LIMIT 1",
		ticketID, partID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AttachPart performs the three-way mutation atomically: decrement the
// part's stock, increment the ticket's total cost, insert the
// association row.  The stock decrement is a compare-and-swap so two
// concurrent attachments of the same part cannot drive the quantity
// negative; losing the swap returns ErrInsufficientStock.  If the
// association row turns out to already exist (a concurrent attach won
// the race) the whole transaction rolls back and the call reports
// success, preserving attach idempotence without double-consuming
// stock.
func (r *TicketRepo) AttachPart(ctx context.Context, ticketID, partID uint64, quantity int, cost float64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE inventory SET quantity = quantity - ? WHERE id = ? AND quantity >= ?",
		quantity, partID, quantity)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientStock
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE service_tickets SET total_cost = total_cost + ? WHERE id = ?",
		cost, ticketID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO ticket_inventory (ticket_id, part_id) VALUES (?,?)",
		ticketID, partID); err != nil {
		if isDuplicateKey(err) {
			return nil // lost the race; rollback undoes stock and cost
		}
		return err
	}
	return tx.Commit()
}

// DetachPart removes the association row only.  Stock and accumulated
// cost are deliberately not reversed; derived cost is append-only.
func (r *TicketRepo) DetachPart(ctx context.Context, ticketID, partID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM ticket_inventory WHERE ticket_id=? AND part_id=?",
		ticketID, partID)
	return err
}
