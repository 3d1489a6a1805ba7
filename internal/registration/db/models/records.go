// Package models contains the persistence records for the application,
// configured to work using GORM as the ORM.
package models

import (
	"time"

	"github.com/gartstein/eventreg/internal/registration/models"
	"github.com/google/uuid"
)

// Company is the database record for a tenant company. The primary key is
// the timestamp token assigned at creation; updates are addressed by it,
// never by row position.
type Company struct {
	ID           string `gorm:"size:32;primaryKey"`
	Name         string `gorm:"size:255;uniqueIndex"`
	Username     string `gorm:"size:255;index"`
	PasswordHash string `gorm:"size:128"`
	ImageURL     string `gorm:"size:1024"`
	Status       string `gorm:"size:16;default:enabled"`
	Deleted      bool   `gorm:"index"`
	SheetID      uint   `gorm:"index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Sheet is the named collection backing one company's events. Its name is
// kept in lockstep with the company name except after a soft delete, when
// it carries the "-deleted" suffix.
type Sheet struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:255;uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Event is the database record for a registration campaign. Names are
// unique within a sheet.
type Event struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	SheetID   uint      `gorm:"index:idx_sheet_event,unique"`
	Name      string    `gorm:"size:255;index:idx_sheet_event,unique"`
	ImageURL  string    `gorm:"size:1024"`
	Status    string    `gorm:"size:16;default:enabled"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Registration is the database record for one attendee submission. The
// unique indexes on (event, email) and (event, whatsapp) are the storage
// side of the at-most-one-registration rule.
type Registration struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventID   uuid.UUID `gorm:"type:uuid;index:idx_event_email,unique;index:idx_event_whatsapp,unique"`
	Name      string    `gorm:"size:255"`
	Email     string    `gorm:"size:255;index:idx_event_email,unique"`
	WhatsApp  string    `gorm:"column:whatsapp;size:32;index:idx_event_whatsapp,unique"`
	Age       int
	Gender    string `gorm:"size:32"`
	CreatedAt time.Time
}

// CompanyFromDomain converts a domain Company into its database record.
func CompanyFromDomain(c *models.Company) *Company {
	return &Company{
		ID:           c.ID,
		Name:         c.Name,
		Username:     c.Username,
		PasswordHash: c.PasswordHash,
		ImageURL:     c.ImageURL,
		Status:       string(c.Status),
		Deleted:      c.Deleted,
		SheetID:      c.SheetID,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// ToDomain converts the record into a domain Company. An empty status
// column defaults to enabled.
func (c *Company) ToDomain() *models.Company {
	status := models.Status(c.Status)
	if status == "" {
		status = models.StatusEnabled
	}
	return &models.Company{
		ID:           c.ID,
		Name:         c.Name,
		Username:     c.Username,
		PasswordHash: c.PasswordHash,
		ImageURL:     c.ImageURL,
		Status:       status,
		Deleted:      c.Deleted,
		SheetID:      c.SheetID,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// ToDomain converts the record into a domain Sheet.
func (s *Sheet) ToDomain() *models.Sheet {
	return &models.Sheet{
		ID:        s.ID,
		Name:      s.Name,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// EventFromDomain converts a domain Event into its database record.
func EventFromDomain(e *models.Event) *Event {
	return &Event{
		ID:        e.ID,
		SheetID:   e.SheetID,
		Name:      e.Name,
		ImageURL:  e.ImageURL,
		Status:    string(e.Status),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// ToDomain converts the record into a domain Event.
func (e *Event) ToDomain() *models.Event {
	status := models.Status(e.Status)
	if status == "" {
		status = models.StatusEnabled
	}
	return &models.Event{
		ID:        e.ID,
		SheetID:   e.SheetID,
		Name:      e.Name,
		ImageURL:  e.ImageURL,
		Status:    status,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// RegistrationFromDomain converts a domain Registration into its record.
func RegistrationFromDomain(r *models.Registration) *Registration {
	return &Registration{
		ID:        r.ID,
		EventID:   r.EventID,
		Name:      r.Name,
		Email:     r.Email,
		WhatsApp:  r.WhatsApp,
		Age:       r.Age,
		Gender:    r.Gender,
		CreatedAt: r.CreatedAt,
	}
}

// ToDomain converts the record into a domain Registration.
func (r *Registration) ToDomain() *models.Registration {
	return &models.Registration{
		ID:        r.ID,
		EventID:   r.EventID,
		Name:      r.Name,
		Email:     r.Email,
		WhatsApp:  r.WhatsApp,
		Age:       r.Age,
		Gender:    r.Gender,
		CreatedAt: r.CreatedAt,
	}
}
