// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketCompletedEvent is published when a service ticket transitions
// into the completed status. It carries enough information for
// downstream consumers to log or notify without querying the primary
// database.
type TicketCompletedEvent struct {
	TicketID    uint64   `json:"ticket_id"`
	CustomerID  uint64   `json:"customer_id"`
	VehicleInfo string   `json:"vehicle_info"`
	Mechanics   []string `json:"mechanics"`
	Parts       []string `json:"parts"`
	TotalCost   float64  `json:"total_cost"`
	CompletedAt string   `json:"completed_at"`
}
