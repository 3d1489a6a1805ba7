package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/gartstein/eventreg/internal/pkg/utils"
	"github.com/gartstein/eventreg/internal/registration/auth"
	e "github.com/gartstein/eventreg/internal/registration/errors"
	"github.com/gartstein/eventreg/internal/registration/events"
	"github.com/gartstein/eventreg/internal/registration/models"
	"go.uber.org/zap"
)

// CompanyService provides methods to manage tenant companies via repository
// operations and event production.
type CompanyService struct {
	repo     Repository
	producer EventProducer
	uploader ImageUploader
	logger   *zap.Logger
}

// NewCompanyService constructs a CompanyService with a repository, an event
// producer, an image uploader, and a logger.
func NewCompanyService(repo Repository, producer EventProducer, uploader ImageUploader, logger *zap.Logger) *CompanyService {
	return &CompanyService{
		repo:     repo,
		producer: producer,
		uploader: uploader,
		logger:   logger.Named("company_service"),
	}
}

// CreateCompany adds a new Company after validating input data, ensures the
// username is unique among non-deleted companies, uploads the optional logo,
// and creates the company row together with its backing sheet.
func (s *CompanyService) CreateCompany(ctx context.Context, company *models.Company, password string, image *Image) (*models.Company, error) {
	if company.Name == "" || company.Username == "" || password == "" {
		return nil, e.InvalidInput("Name, username and password are required")
	}

	taken, err := s.repo.UsernameTaken(ctx, company.Username, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check username existence: %w", err)
	}
	if taken {
		return nil, e.Duplicate("Username already exists")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	company.ID = utils.NewID()
	company.PasswordHash = hash
	if company.Status == "" {
		company.Status = models.StatusEnabled
	}
	company.ImageURL = s.uploadImage(ctx, image)

	if err := s.repo.CreateCompanyWithSheet(ctx, company); err != nil {
		if errors.Is(err, e.ErrDuplicate) {
			return nil, e.Duplicate("Company name already exists")
		}
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	go func() {
		s.producer.Produce(events.CompanyCreated, company.ID, sanitize(company))
	}()
	return company, nil
}

// ListCompanies returns all companies. Soft-deleted companies are excluded
// unless includeDeleted is set.
func (s *CompanyService) ListCompanies(ctx context.Context, includeDeleted bool) ([]*models.Company, error) {
	companies, err := s.repo.ListCompanies(ctx, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

// UpdateCompany modifies the specified Company fields. The password is
// re-hashed only when provided; a name change cascades to a sheet rename in
// the storage layer. Setting deleted=false restores a soft-deleted company
// without renaming its sheet back.
func (s *CompanyService) UpdateCompany(ctx context.Context, update *models.CompanyUpdate, password string, image *Image) (*models.Company, error) {
	if update.ID == "" {
		return nil, e.InvalidInput("Company id is required")
	}

	existing, err := s.repo.GetCompany(ctx, update.ID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, e.NotFound("Company not found")
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	if update.Username != nil && *update.Username != existing.Username {
		taken, err := s.repo.UsernameTaken(ctx, *update.Username, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check username existence: %w", err)
		}
		if taken {
			return nil, e.Duplicate("Username already exists")
		}
	}

	if password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		update.PasswordHash = &hash
	}

	if url := s.uploadImage(ctx, image); url != "" {
		update.ImageURL = &url
	}

	restored := update.Deleted != nil && !*update.Deleted && existing.Deleted

	if err := s.repo.UpdateCompany(ctx, update); err != nil {
		switch {
		case errors.Is(err, e.ErrNotFound):
			return nil, e.NotFound("Company not found")
		case errors.Is(err, e.ErrDuplicate):
			return nil, e.Duplicate("Company name already exists")
		}
		return nil, fmt.Errorf("failed to update company: %w", err)
	}

	updated, err := s.repo.GetCompany(ctx, update.ID)
	if err != nil {
		s.logger.Error("Failed to get company after update",
			zap.Error(err),
			zap.String("company_id", update.ID),
		)
		return nil, err
	}

	eventType := events.CompanyUpdated
	if restored {
		eventType = events.CompanyRestored
	}
	go func() {
		s.producer.Produce(eventType, updated.ID, sanitize(updated))
	}()
	return updated, nil
}

// DeleteCompany soft-deletes a Company: the row is flagged deleted and the
// backing sheet is renamed to "{name}-deleted".
func (s *CompanyService) DeleteCompany(ctx context.Context, id string) (*models.Company, error) {
	if id == "" {
		return nil, e.InvalidInput("Company id is required")
	}

	deleted, err := s.repo.SoftDeleteCompany(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, e.NotFound("Company not found")
		}
		return nil, fmt.Errorf("failed to delete company: %w", err)
	}

	go func() {
		s.producer.Produce(events.CompanyDeleted, deleted.ID, sanitize(deleted))
	}()
	return deleted, nil
}

// Authenticate verifies a company's credentials for the tenant login.
func (s *CompanyService) Authenticate(ctx context.Context, username, password string) (*models.Company, error) {
	company, err := s.repo.GetCompanyByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, e.Unauthorized("Invalid username or password")
		}
		return nil, fmt.Errorf("failed to look up company: %w", err)
	}

	if err := auth.CheckPassword(company.PasswordHash, password); err != nil {
		return nil, e.Unauthorized("Invalid username or password")
	}
	if company.Status == models.StatusDisabled {
		return nil, e.Forbidden("Company is disabled")
	}
	return company, nil
}

// uploadImage sends the image to the content host. Upload failures are
// logged and swallowed: the write proceeds with an empty image URL.
func (s *CompanyService) uploadImage(ctx context.Context, image *Image) string {
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

// sanitize strips credentials before a company leaves the service boundary.
func sanitize(company *models.Company) *models.Company {
	clean := *company
	clean.PasswordHash = ""
	return &clean
}
