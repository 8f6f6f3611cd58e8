package model

import "time"

// Service ticket status values.  Transitions between statuses are
// unconstrained; only deletion is gated (a ticket may be deleted only
// while open or cancelled).
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Service ticket priority values.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// ValidStatus reports whether s is one of the four ticket statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ValidPriority reports whether p is one of the four ticket priorities.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ServiceTicket is the central work-order entity, stored in the
// `service_tickets` table.  Every ticket belongs to exactly one
// customer (customer_id is NOT NULL and enforced again at creation
// time) and carries zero or more mechanics and parts through the
// service_mechanic and ticket_inventory association tables.
//
// TotalCost is derived: it only grows through part attachments and is
// never edited directly.
//
// Fields:
//  ID               – primary key identifier.
//  CustomerID       – owning customer (required, non-null).
//  VehicleInfo      – make/model/plate description of the vehicle.
//  IssueDescription – what the customer reported (required).
//  Status           – open | in_progress | completed | cancelled.
//  Priority         – low | medium | high | urgent.
//  EstimatedHours   – mechanic estimate, never negative.
//  TotalCost        – accumulated part cost in dollars, never negative.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type ServiceTicket struct {
	ID               uint64    `json:"id"`                // service_tickets.id
	CustomerID       uint64    `json:"customer_id"`       // service_tickets.customer_id
	VehicleInfo      string    `json:"vehicle_info"`      // service_tickets.vehicle_info
	IssueDescription string    `json:"issue_description"` // service_tickets.issue_description
	Status           string    `json:"status"`            // service_tickets.status
	Priority         string    `json:"priority"`          // service_tickets.priority
	EstimatedHours   float64   `json:"estimated_hours"`   // service_tickets.estimated_hours
	TotalCost        float64   `json:"total_cost"`        // service_tickets.total_cost
	CreatedAt        time.Time `json:"created_at"`        // service_tickets.created_at
	UpdatedAt        time.Time `json:"updated_at"`        // service_tickets.updated_at
}
