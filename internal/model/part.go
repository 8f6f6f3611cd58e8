package model

import "time"

// Part describes a stocked inventory part as stored in the
// `inventory` table.  Parts are attached to service tickets through
// the ticket_inventory association table.  Attaching a part consumes
// stock (decrements Quantity) and adds Price times the requested
// quantity to the ticket's total cost.
//
// Fields:
//  ID            – primary key identifier.
//  PartName      – human readable name, unique across the inventory.
//  PartNumber    – optional manufacturer part number, unique when set.
//  Description   – optional free-form description.
//  Quantity      – units currently in stock (never negative).
//  Price         – unit price in dollars (never negative).
//  Category      – optional category label (e.g. "brakes").
//  Supplier      – optional supplier name.
//  MinStockLevel – reorder threshold; quantities below this show up
//                  in the low-stock listing.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type Part struct {
	ID            uint64    `json:"id"`              // inventory.id
	PartName      string    `json:"part_name"`       // inventory.part_name
	PartNumber    *string   `json:"part_number"`     // inventory.part_number (nullable)
	Description   string    `json:"description"`     // inventory.description
	Quantity      int       `json:"quantity"`        // inventory.quantity
	Price         float64   `json:"price"`           // inventory.price
	Category      string    `json:"category"`        // inventory.category
	Supplier      string    `json:"supplier"`        // inventory.supplier
	MinStockLevel int       `json:"min_stock_level"` // inventory.min_stock_level
	CreatedAt     time.Time `json:"created_at"`      // inventory.created_at
	UpdatedAt     time.Time `json:"updated_at"`      // inventory.updated_at
}
