// Package controller implements the core business logic (service layer)
// for managing companies, events and attendee registrations, orchestrating
// repository operations and sending relevant events.
package controller

import (
	"context"

	"github.com/gartstein/eventreg/internal/registration/events"
	"github.com/gartstein/eventreg/internal/registration/models"
	"github.com/google/uuid"
)

type EventProducer interface {
	Produce(eventType events.EventType, key string, payload interface{})
}

// ImageUploader stores image bytes on the content host and returns the
// public URL.
type ImageUploader interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}

// Image is an attendee- or admin-supplied image pending upload.
type Image struct {
	Name string
	Data []byte
}

// Repository defines the storage interface for companies, sheets, events
// and registrations.
type Repository interface {
	CreateCompanyWithSheet(ctx context.Context, company *models.Company) error
	GetCompany(ctx context.Context, id string) (*models.Company, error)
	GetCompanyByName(ctx context.Context, name string) (*models.Company, error)
	GetCompanyByUsername(ctx context.Context, username string) (*models.Company, error)
	ListCompanies(ctx context.Context, includeDeleted bool) ([]*models.Company, error)
	UsernameTaken(ctx context.Context, username, excludeID string) (bool, error)
	UpdateCompany(ctx context.Context, update *models.CompanyUpdate) error
	SoftDeleteCompany(ctx context.Context, id string) (*models.Company, error)
	GetSheetByName(ctx context.Context, name string) (*models.Sheet, error)
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	GetEventByName(ctx context.Context, sheetID uint, name string) (*models.Event, error)
	ListEventsBySheet(ctx context.Context, sheetID uint) ([]*models.Event, error)
	UpdateEvent(ctx context.Context, update *models.EventUpdate) error
	CreateRegistration(ctx context.Context, reg *models.Registration) error
	HasRegistration(ctx context.Context, eventID uuid.UUID, email, whatsapp string) (bool, error)
	CountRegistrations(ctx context.Context, eventID uuid.UUID) (int64, error)
	Close() error
}
