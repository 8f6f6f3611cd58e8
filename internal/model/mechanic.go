package model

import "time"

// Mechanic represents a staff member as stored in the `mechanics`
// table.  Mechanics are linked to service tickets through the
// service_mechanic association table (many-to-many, no extra
// attributes on the link).
//
// Fields:
//  ID              – primary key identifier.
//  FirstName       – mechanic first name.
//  LastName        – mechanic last name.
//  Email           – unique email address.
//  PasswordHash    – bcrypt hashed password (never serialized).
//  Specialization  – free-form area of expertise (e.g. "brakes").
//  YearsExperience – years on the job.
//  HourlyRate      – billing rate in dollars per hour.
//  IsActive        – whether the mechanic is currently employed.
//  CreatedAt       – timestamp of creation.
//  UpdatedAt       – timestamp of last update.
type Mechanic struct {
	ID              uint64    `json:"id"`               // mechanics.id
	FirstName       string    `json:"first_name"`       // mechanics.first_name
	LastName        string    `json:"last_name"`        // mechanics.last_name
	Email           string    `json:"email"`            // mechanics.email
	PasswordHash    string    `json:"-"`                // mechanics.password_hash
	Specialization  string    `json:"specialization"`   // mechanics.specialization
	YearsExperience int       `json:"years_experience"` // mechanics.years_experience
	HourlyRate      float64   `json:"hourly_rate"`      // mechanics.hourly_rate
	IsActive        bool      `json:"is_active"`        // mechanics.is_active
	CreatedAt       time.Time `json:"created_at"`       // mechanics.created_at
	UpdatedAt       time.Time `json:"updated_at"`       // mechanics.updated_at
}
