// Package models defines the core domain models: companies, the sheets that
// back their event collections, events and attendee registrations.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Status marks a company or event as open or closed for registrations.
type Status string

const (
	StatusEnabled  Status = "enabled"
	StatusDisabled Status = "disabled"
)

// Company defines the domain model for a tenant company.
type Company struct {
	// ID is a timestamp-based token assigned at creation.
	ID string
	// Name is the company's display name. It doubles as the name of the
	// sheet backing the company's events, so renaming a company renames
	// the sheet.
	Name string
	// Username is the login name, unique among non-deleted companies.
	Username string
	// PasswordHash is the bcrypt hash of the company's password.
	PasswordHash string
	// ImageURL points to the company logo on the content host.
	ImageURL string
	// Status controls whether the company accepts registrations.
	Status Status
	// Deleted marks a soft-deleted company.
	Deleted bool
	// SheetID references the sheet holding the company's events.
	SheetID uint
	// CreatedAt records the timestamp when the company was created.
	CreatedAt time.Time
	// UpdatedAt records the timestamp when the company was last updated.
	UpdatedAt time.Time
}

// CompanyUpdate represents the fields that can be updated for a Company.
// Pointer types are used to allow partial updates.
type CompanyUpdate struct {
	// ID is the unique identifier for the company to update.
	ID string
	// Name is the new display name. Changing it renames the backing sheet.
	Name *string
	// Username is the new login name.
	Username *string
	// PasswordHash replaces the stored hash. Set only when the caller
	// supplied a new password.
	PasswordHash *string
	// ImageURL is the new logo URL.
	ImageURL *string
	// Status is the updated enabled/disabled state.
	Status *Status
	// Deleted toggles the soft-delete flag. Setting it to false restores
	// the company.
	Deleted *bool
}

// Sheet is a named collection backing one company's events.
type Sheet struct {
	ID        uint
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Event is a registration campaign belonging to a company's sheet.
type Event struct {
	ID        uuid.UUID
	SheetID   uint
	Name      string
	ImageURL  string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EventUpdate represents the fields that can be updated for an Event.
type EventUpdate struct {
	ID       uuid.UUID
	Name     *string
	ImageURL *string
	Status   *Status
}

// EventInfo is an Event together with listing metadata.
type EventInfo struct {
	Event
	// Registrations is the number of attendees registered so far.
	Registrations int64
	// CompanyStatus echoes the owning company's status.
	CompanyStatus Status
}

// Registration is one attendee's submitted record for an event.
type Registration struct {
	ID       uuid.UUID
	EventID  uuid.UUID
	Name     string
	Email    string
	WhatsApp string
	Age      int
	Gender   string
	// CreatedAt is the submission timestamp echoed back to the attendee.
	CreatedAt time.Time
}
