// Package service implements the service-ticket lifecycle: creation,
// status updates, the many-to-many associations with mechanics and
// inventory parts, derived-cost bookkeeping and the status-gated
// deletion rule.  It sits between the HTTP handlers and the
// repositories so the rules are testable without a database.
package service

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"time"

	"github.com/avakarimi/mechanic-shop-api/internal/model"
	"github.com/avakarimi/mechanic-shop-api/internal/queue"
	"github.com/avakarimi/mechanic-shop-api/internal/repository"
)

// TicketStore is the persistence surface the service needs for
// tickets and their associations.  *repository.TicketRepo satisfies
// it; tests plug in an in-memory fake.
type TicketStore interface {
	Create(ctx context.Context, t *model.ServiceTicket, mechanicIDs []uint64) error
	GetByID(ctx context.Context, id uint64) (model.ServiceTicket, error)
	ListByCustomer(ctx context.Context, customerID uint64) ([]model.ServiceTicket, error)
	List(ctx context.Context, page, perPage int) ([]model.ServiceTicket, int, error)
	Update(ctx context.Context, t model.ServiceTicket) error
	Delete(ctx context.Context, id uint64) error
	Mechanics(ctx context.Context, ticketID uint64) ([]model.Mechanic, error)
	Parts(ctx context.Context, ticketID uint64) ([]model.Part, error)
	MechanicAssigned(ctx context.Context, ticketID, mechanicID uint64) (bool, error)
	AssignMechanic(ctx context.Context, ticketID, mechanicID uint64) error
	RemoveMechanic(ctx context.Context, ticketID, mechanicID uint64) error
	PartAttached(ctx context.Context, ticketID, partID uint64) (bool, error)
	AttachPart(ctx context.Context, ticketID, partID uint64, quantity int, cost float64) error
	DetachPart(ctx context.Context, ticketID, partID uint64) error
}

// CustomerDirectory resolves customer ids. *repository.CustomerRepo
// satisfies it.
type CustomerDirectory interface {
	GetByID(ctx context.Context, id uint64) (model.Customer, error)
}

// MechanicDirectory resolves mechanic ids. *repository.MechanicRepo
// satisfies it.
type MechanicDirectory interface {
	GetByID(ctx context.Context, id uint64) (model.Mechanic, error)
}

// PartDirectory resolves part ids. *repository.InventoryRepo
// satisfies it.
type PartDirectory interface {
	GetByID(ctx context.Context, id uint64) (model.Part, error)
}

// EventPublisher pushes completed-ticket events to the broker.  A nil
// publisher disables eventing; publish failures are logged, never
// surfaced to the API caller.
type EventPublisher interface {
	PublishTicketCompleted(ctx context.Context, ev queue.TicketCompletedEvent) error
}

// TicketService bundles the collaborators behind the ticket endpoints.
type TicketService struct {
	Store     TicketStore
	Customers CustomerDirectory
	Mechanics MechanicDirectory
	Parts     PartDirectory
	Events    EventPublisher
}

func NewTicketService(store TicketStore, customers CustomerDirectory, mechanics MechanicDirectory, parts PartDirectory, events EventPublisher) *TicketService {
	return &TicketService{Store: store, Customers: customers, Mechanics: mechanics, Parts: parts, Events: events}
}

// TicketDetail is the serialized ticket view: the ticket row plus the
// related mechanics and parts, each in their own serialized form.
type TicketDetail struct {
	model.ServiceTicket
	Mechanics []model.Mechanic `json:"mechanics"`
	Inventory []model.Part     `json:"inventory"`
}

// CreateTicketInput is the payload for ticket creation.  CustomerID is
// absent on purpose: it is always forced to the authenticated caller.
type CreateTicketInput struct {
	VehicleInfo      string   `json:"vehicle_info"`
	IssueDescription string   `json:"issue_description"`
	Status           string   `json:"status"`
	Priority         string   `json:"priority"`
	EstimatedHours   float64  `json:"estimated_hours"`
	MechanicIDs      []uint64 `json:"mechanic_ids"`
}

// UpdateTicketInput carries partial ticket updates; nil fields keep
// their current values.
type UpdateTicketInput struct {
	VehicleInfo      *string  `json:"vehicle_info"`
	IssueDescription *string  `json:"issue_description"`
	Status           *string  `json:"status"`
	Priority         *string  `json:"priority"`
	EstimatedHours   *float64 `json:"estimated_hours"`
}

// Create validates the input, forces ownership to customerID and
// persists the ticket.  Mechanic ids that do not resolve are silently
// skipped.  A ticket can never be created without a resolvable
// customer.
func (s *TicketService) Create(ctx context.Context, customerID uint64, in CreateTicketInput) (*TicketDetail, error) {
	errs := fieldErrors{}
	issue := strings.TrimSpace(in.IssueDescription)
	switch {
	case issue == "":
		errs["issue_description"] = "issue_description is required"
	case len(issue) > MaxIssueLen:
		errs["issue_description"] = "issue_description is too long"
	}
	status := in.Status
	if status == "" {
		status = model.StatusOpen
	}
	if !model.ValidStatus(status) {
		errs["status"] = "status must be one of open, in_progress, completed, cancelled"
	}
	priority := in.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !model.ValidPriority(priority) {
		errs["priority"] = "priority must be one of low, medium, high, urgent"
	}
	if in.EstimatedHours < 0 {
		errs["estimated_hours"] = "estimated_hours must not be negative"
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	customer, err := s.Customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if !customer.IsActive {
		return nil, repository.ErrForbidden
	}

	ticket := model.ServiceTicket{
		CustomerID:       customerID,
		VehicleInfo:      strings.TrimSpace(in.VehicleInfo),
		IssueDescription: issue,
		Status:           status,
		Priority:         priority,
		EstimatedHours:   in.EstimatedHours,
	}
	if err := s.Store.Create(ctx, &ticket, in.MechanicIDs); err != nil {
		return nil, err
	}
	return s.detail(ctx, ticket)
}

// Get loads a ticket with its associations.
func (s *TicketService) Get(ctx context.Context, ticketID uint64) (*TicketDetail, error) {
	ticket, err := s.Store.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, ticket)
}

// GetForCustomer loads a ticket and enforces ownership: a customer may
// only read their own tickets.
func (s *TicketService) GetForCustomer(ctx context.Context, ticketID, customerID uint64) (*TicketDetail, error) {
	ticket, err := s.Store.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.CustomerID != customerID {
		return nil, repository.ErrForbidden
	}
	return s.detail(ctx, ticket)
}

// ListForCustomer returns all of a customer's tickets, associations
// included, newest first.
func (s *TicketService) ListForCustomer(ctx context.Context, customerID uint64) ([]TicketDetail, error) {
	tickets, err := s.Store.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, tickets)
}

// List returns one page of all tickets with associations plus the
// total count.  Mechanic-facing.
func (s *TicketService) List(ctx context.Context, page, perPage int) ([]TicketDetail, int, error) {
	tickets, total, err := s.Store.List(ctx, page, perPage)
	if err != nil {
		return nil, 0, err
	}
	details, err := s.details(ctx, tickets)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// Update applies partial changes.  Status transitions are free-form;
// the only hard gate in the lifecycle is deletion.  A transition into
// completed publishes a ticket.completed event.
func (s *TicketService) Update(ctx context.Context, ticketID uint64, in UpdateTicketInput) (*TicketDetail, error) {
	ticket, err := s.Store.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	errs := fieldErrors{}
	if in.Status != nil && !model.ValidStatus(*in.Status) {
		errs["status"] = "status must be one of open, in_progress, completed, cancelled"
	}
	if in.Priority != nil && !model.ValidPriority(*in.Priority) {
		errs["priority"] = "priority must be one of low, medium, high, urgent"
	}
	if in.IssueDescription != nil {
		issue := strings.TrimSpace(*in.IssueDescription)
		if issue == "" {
			errs["issue_description"] = "issue_description must not be empty"
		} else if len(issue) > MaxIssueLen {
			errs["issue_description"] = "issue_description is too long"
		}
	}
	if in.EstimatedHours != nil && *in.EstimatedHours < 0 {
		errs["estimated_hours"] = "estimated_hours must not be negative"
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	wasCompleted := ticket.Status == model.StatusCompleted
	if in.VehicleInfo != nil {
		ticket.VehicleInfo = strings.TrimSpace(*in.VehicleInfo)
	}
	if in.IssueDescription != nil {
		ticket.IssueDescription = strings.TrimSpace(*in.IssueDescription)
	}
	if in.Status != nil {
		ticket.Status = *in.Status
	}
	if in.Priority != nil {
		ticket.Priority = *in.Priority
	}
	if in.EstimatedHours != nil {
		ticket.EstimatedHours = *in.EstimatedHours
	}

	if err := s.Store.Update(ctx, ticket); err != nil {
		return nil, err
	}
	detail, err := s.detail(ctx, ticket)
	if err != nil {
		return nil, err
	}
	if !wasCompleted && ticket.Status == model.StatusCompleted {
		s.publishCompleted(ctx, detail)
	}
	return detail, nil
}

// Delete removes a ticket.  Deletion is only permitted while the
// ticket is open or cancelled; in_progress and completed tickets are
// protected.
func (s *TicketService) Delete(ctx context.Context, ticketID uint64) error {
	ticket, err := s.Store.GetByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if ticket.Status != model.StatusOpen && ticket.Status != model.StatusCancelled {
		return repository.ErrInvalidState
	}
	return s.Store.Delete(ctx, ticketID)
}

// AssignMechanic attaches a mechanic to a ticket, idempotently.
// Membership is tested by primary key; assigning an already-assigned
// mechanic is a no-op that returns the same ticket view.
func (s *TicketService) AssignMechanic(ctx context.Context, ticketID, mechanicID uint64) (*TicketDetail, error) {
	ticket, err := s.Store.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Mechanics.GetByID(ctx, mechanicID); err != nil {
		return nil, err
	}
	assigned, err := s.Store.MechanicAssigned(ctx, ticketID, mechanicID)
	if err != nil {
		return nil, err
	}
	if !assigned {
		if err := s.Store.AssignMechanic(ctx, ticketID, mechanicID); err != nil {
			return nil, err
		}
	}
	return s.detail(ctx, ticket)
}

// RemoveMechanic detaches a mechanic from a ticket.  Removing a
// mechanic who is not assigned is a no-op, not an error.
func (s *TicketService) RemoveMechanic(ctx context.Context, ticketID, mechanicID uint64) (*TicketDetail, error) {
	ticket, err := s.Store.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Mechanics.GetByID(ctx, mechanicID); err != nil {
		return nil, err
	}
	assigned, err := s.Store.MechanicAssigned(ctx, ticketID, mechanicID)
	if err != nil {
		return nil, err
	}
	if assigned {
		if err := s.Store.RemoveMechanic(ctx, ticketID, mechanicID); err != nil {
			return nil, err
		}
	}
	return s.detail(ctx, ticket)
}

// AttachPart puts quantity units of a part on the ticket: stock is
// decremented and the ticket's total cost grows by price times
// quantity, atomically.  Attaching a part that is already associated
// is a no-op and consumes no stock; the association carries no
// quantity of its own.
func (s *TicketService) AttachPart(ctx context.Context, ticketID, partID uint64, quantity int) (*TicketDetail, error) {
	if quantity <= 0 {
		return nil, (fieldErrors{"quantity": "quantity must be positive"}).err()
	}
	ticket, err := s.Store.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	part, err := s.Parts.GetByID(ctx, partID)
	if err != nil {
		return nil, err
	}
	attached, err := s.Store.PartAttached(ctx, ticketID, partID)
	if err != nil {
		return nil, err
	}
	if !attached {
		if part.Quantity < quantity {
			return nil, repository.ErrInsufficientStock
		}
		cost := part.Price * float64(quantity)
		if err := s.Store.AttachPart(ctx, ticketID, partID, quantity, cost); err != nil {
			return nil, err
		}
	}
	return s.detail(ctx, ticket)
}

// DetachPart removes the part association only.  Stock and accumulated
// cost are not reversed.  Detaching a part that is not attached is a
// no-op.
func (s *TicketService) DetachPart(ctx context.Context, ticketID, partID uint64) (*TicketDetail, error) {
	ticket, err := s.Store.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Parts.GetByID(ctx, partID); err != nil {
		return nil, err
	}
	if err := s.Store.DetachPart(ctx, ticketID, partID); err != nil {
		return nil, err
	}
	return s.detail(ctx, ticket)
}

// detail re-reads the ticket row and loads both association lists.
func (s *TicketService) detail(ctx context.Context, ticket model.ServiceTicket) (*TicketDetail, error) {
	// Re-read so mutations done after the initial load (cost
	// increments, timestamps) show up in the response.
	current, err := s.Store.GetByID(ctx, ticket.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			current = ticket
		} else {
			return nil, err
		}
	}
	mechanics, err := s.Store.Mechanics(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	parts, err := s.Store.Parts(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	return &TicketDetail{ServiceTicket: current, Mechanics: mechanics, Inventory: parts}, nil
}

func (s *TicketService) details(ctx context.Context, tickets []model.ServiceTicket) ([]TicketDetail, error) {
	out := make([]TicketDetail, 0, len(tickets))
	for _, t := range tickets {
		d, err := s.detail(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

func (s *TicketService) publishCompleted(ctx context.Context, d *TicketDetail) {
	if s.Events == nil {
		return
	}
	ev := queue.TicketCompletedEvent{
		TicketID:    d.ID,
		CustomerID:  d.CustomerID,
		VehicleInfo: d.VehicleInfo,
		TotalCost:   d.TotalCost,
		CompletedAt: time.Now().UTC().Format(time.RFC3339),
	}
	for _, m := range d.Mechanics {
		ev.Mechanics = append(ev.Mechanics, m.FirstName+" "+m.LastName)
	}
	for _, p := range d.Inventory {
		ev.Parts = append(ev.Parts, p.PartName)
	}
	if err := s.Events.PublishTicketCompleted(ctx, ev); err != nil {
		log.Printf("ticket %d: publish completed event failed: %v", d.ID, err)
	}
}
