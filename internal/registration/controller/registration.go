package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	e "github.com/gartstein/eventreg/internal/registration/errors"
	"github.com/gartstein/eventreg/internal/registration/events"
	"github.com/gartstein/eventreg/internal/registration/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegistrationService handles the public event listing and registration
// flow, plus event management for authenticated companies.
type RegistrationService struct {
	repo     Repository
	producer EventProducer
	uploader ImageUploader
	logger   *zap.Logger
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(repo Repository, producer EventProducer, uploader ImageUploader, logger *zap.Logger) *RegistrationService {
	return &RegistrationService{
		repo:     repo,
		producer: producer,
		uploader: uploader,
		logger:   logger.Named("registration_service"),
	}
}

// ListEvents returns the events of the named company with registration
// counts. Disabled companies are rejected; companies whose sheet no longer
// resolves (soft-deleted) report not found.
func (s *RegistrationService) ListEvents(ctx context.Context, companyName string) ([]*models.EventInfo, error) {
	company, sheet, err := s.resolveCompany(ctx, companyName)
	if err != nil {
		return nil, err
	}

	eventsList, err := s.repo.ListEventsBySheet(ctx, sheet.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	infos := make([]*models.EventInfo, 0, len(eventsList))
	for _, event := range eventsList {
		count, err := s.repo.CountRegistrations(ctx, event.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count registrations: %w", err)
		}
		infos = append(infos, &models.EventInfo{
			Event:         *event,
			Registrations: count,
			CompanyStatus: company.Status,
		})
	}
	return infos, nil
}

// Register submits one attendee registration for the named company's event.
// The duplicate check scans before insert; a concurrent duplicate that slips
// past it is caught by the storage layer's unique indexes and reported with
// the same message.
func (s *RegistrationService) Register(ctx context.Context, companyName, eventName string, reg *models.Registration) (*models.Registration, error) {
	_, sheet, err := s.resolveCompany(ctx, companyName)
	if err != nil {
		return nil, err
	}

	event, err := s.repo.GetEventByName(ctx, sheet.ID, eventName)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, e.NotFound("Event not found")
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event.Status == models.StatusDisabled {
		return nil, e.Forbidden("Event is disabled")
	}

	taken, err := s.repo.HasRegistration(ctx, event.ID, reg.Email, reg.WhatsApp)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing registrations: %w", err)
	}
	if taken {
		return nil, e.Duplicate("You are already registered for this event")
	}

	reg.ID = uuid.New()
	reg.EventID = event.ID
	reg.CreatedAt = time.Now().UTC()

	if err := s.repo.CreateRegistration(ctx, reg); err != nil {
		if errors.Is(err, e.ErrDuplicate) {
			return nil, e.Duplicate("You are already registered for this event")
		}
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}

	registered := *reg
	go func() {
		s.producer.Produce(events.RegistrationCreated, registered.ID.String(), &registered)
	}()
	return reg, nil
}

// CreateEvent adds an event to the company's sheet. Company-scoped: the
// companyID comes from the authenticated identity.
func (s *RegistrationService) CreateEvent(ctx context.Context, companyID string, event *models.Event, image *Image) (*models.Event, error) {
	if event.Name == "" {
		return nil, e.InvalidInput("Event name is required")
	}

	company, err := s.repo.GetCompany(ctx, companyID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, e.NotFound("Company not found")
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	if company.Deleted {
		return nil, e.Forbidden("Company is deleted")
	}

	event.ID = uuid.New()
	event.SheetID = company.SheetID
	if event.Status == "" {
		event.Status = models.StatusEnabled
	}
	if url := s.uploadImage(ctx, image); url != "" {
		event.ImageURL = url
	}

	if err := s.repo.CreateEvent(ctx, event); err != nil {
		if errors.Is(err, e.ErrDuplicate) {
			return nil, e.Duplicate("Event already exists")
		}
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

// UpdateEvent applies a partial update to one of the company's own events.
func (s *RegistrationService) UpdateEvent(ctx context.Context, companyID string, update *models.EventUpdate, image *Image) (*models.Event, error) {
	company, err := s.repo.GetCompany(ctx, companyID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, e.NotFound("Company not found")
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	existing, err := s.repo.GetEvent(ctx, update.ID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, e.NotFound("Event not found")
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if existing.SheetID != company.SheetID {
		return nil, e.Forbidden("Event belongs to another company")
	}

	if url := s.uploadImage(ctx, image); url != "" {
		update.ImageURL = &url
	}

	if err := s.repo.UpdateEvent(ctx, update); err != nil {
		switch {
		case errors.Is(err, e.ErrNotFound):
			return nil, e.NotFound("Event not found")
		case errors.Is(err, e.ErrDuplicate):
			return nil, e.Duplicate("Event already exists")
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return s.repo.GetEvent(ctx, update.ID)
}

// resolveCompany finds the company by display name and the sheet backing
// its events. After a soft delete the sheet carries the "-deleted" suffix,
// so the lookup by the original name fails with not found.
func (s *RegistrationService) resolveCompany(ctx context.Context, companyName string) (*models.Company, *models.Sheet, error) {
	if companyName == "" {
		return nil, nil, e.InvalidInput("Company name is required")
	}

	company, err := s.repo.GetCompanyByName(ctx, companyName)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, nil, e.NotFound("Company not found")
		}
		return nil, nil, fmt.Errorf("failed to get company: %w", err)
	}
	if company.Status == models.StatusDisabled {
		return nil, nil, e.Forbidden("Company is disabled")
	}

	sheet, err := s.repo.GetSheetByName(ctx, company.Name)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, nil, e.NotFound("Event not found")
		}
		return nil, nil, fmt.Errorf("failed to get sheet: %w", err)
	}
	return company, sheet, nil
}

// uploadImage mirrors the company service behavior: failures are logged and
// the write proceeds without an image.
func (s *RegistrationService) uploadImage(ctx context.Context, image *Image) string {
	if image == nil || len(image.Data) == 0 {
		return ""
	}
	url, err := s.uploader.Upload(ctx, image.Name, image.Data)
	if err != nil {
		s.logger.Error("Image upload failed, continuing without image", zap.Error(err))
		return ""
	}
	return url
}
