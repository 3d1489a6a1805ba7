package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/gartstein/eventreg/internal/pkg/utils"
	records "github.com/gartstein/eventreg/internal/registration/db/models"
	e "github.com/gartstein/eventreg/internal/registration/errors"
	"github.com/gartstein/eventreg/internal/registration/models"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func NewRepository(cfg *Config) (*Repository, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
	return NewRepositoryWithDialector(postgres.Open(dsn))
}

// NewRepositoryWithDialector opens the repository on the given GORM
// dialector. Tests use it to run against in-memory SQLite.
func NewRepositoryWithDialector(dialector gorm.Dialector) (*Repository, error) {
	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&records.Company{},
		&records.Sheet{},
		&records.Event{},
		&records.Registration{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) CreateCompany(ctx context.Context, company *models.Company) error {
	result := r.db.WithContext(ctx).Create(records.CompanyFromDomain(company))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return e.ErrDuplicate
		}
		return result.Error
	}
	return nil
}

// CreateCompanyWithSheet creates the company row together with its backing
// sheet, named after the company, in one transaction.
func (r *Repository) CreateCompanyWithSheet(ctx context.Context, company *models.Company) error {
	return r.WithTransaction(ctx, func(repo *Repository) error {
		sheet, err := repo.CreateSheet(ctx, company.Name)
		if err != nil {
			return err
		}
		company.SheetID = sheet.ID
		return repo.CreateCompany(ctx, company)
	})
}

// SoftDeleteCompany marks the company deleted and renames its sheet to
// "{name}-deleted", so event lookups by the original name stop resolving.
// Already-deleted companies are returned unchanged.
func (r *Repository) SoftDeleteCompany(ctx context.Context, id string) (*models.Company, error) {
	var deleted *models.Company
	err := r.WithTransaction(ctx, func(repo *Repository) error {
		company, err := repo.GetCompany(ctx, id)
		if err != nil {
			return err
		}
		if company.Deleted {
			deleted = company
			return nil
		}
		if err := repo.UpdateCompany(ctx, &models.CompanyUpdate{
			ID:      id,
			Deleted: utils.Ptr(true),
		}); err != nil {
			return err
		}
		if err := repo.RenameSheet(ctx, company.SheetID, company.Name+"-deleted"); err != nil {
			return err
		}
		deleted, err = repo.GetCompany(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (r *Repository) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	var company records.Company
	result := r.db.WithContext(ctx).First(&company, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return company.ToDomain(), nil
}

func (r *Repository) GetCompanyByName(ctx context.Context, name string) (*models.Company, error) {
	var company records.Company
	result := r.db.WithContext(ctx).First(&company, "name = ?", name)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return company.ToDomain(), nil
}

// GetCompanyByUsername looks up a non-deleted company by login name.
func (r *Repository) GetCompanyByUsername(ctx context.Context, username string) (*models.Company, error) {
	var company records.Company
	result := r.db.WithContext(ctx).
		First(&company, "username = ? AND deleted = ?", username, false)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return company.ToDomain(), nil
}

// ListCompanies returns all companies, excluding soft-deleted ones unless
// includeDeleted is set.
func (r *Repository) ListCompanies(ctx context.Context, includeDeleted bool) ([]*models.Company, error) {
	var rows []records.Company
	query := r.db.WithContext(ctx).Order("created_at ASC")
	if !includeDeleted {
		query = query.Where("deleted = ?", false)
	}
	if result := query.Find(&rows); result.Error != nil {
		return nil, result.Error
	}
	companies := make([]*models.Company, 0, len(rows))
	for i := range rows {
		companies = append(companies, rows[i].ToDomain())
	}
	return companies, nil
}

// UsernameTaken reports whether a non-deleted company other than excludeID
// already uses the given username.
func (r *Repository) UsernameTaken(ctx context.Context, username, excludeID string) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&records.Company{}).
		Where("username = ? AND deleted = ?", username, false)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	result := query.Limit(1).Count(&count)
	return count > 0, result.Error
}

// UpdateCompany applies a partial update addressed by primary key. When the
// name changes, the backing sheet is renamed in the same transaction, since
// the name doubles as the sheet identifier.
func (r *Repository) UpdateCompany(ctx context.Context, update *models.CompanyUpdate) error {
	fields := map[string]interface{}{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Username != nil {
		fields["username"] = *update.Username
	}
	if update.PasswordHash != nil {
		fields["password_hash"] = *update.PasswordHash
	}
	if update.ImageURL != nil {
		fields["image_url"] = *update.ImageURL
	}
	if update.Status != nil {
		fields["status"] = string(*update.Status)
	}
	if update.Deleted != nil {
		fields["deleted"] = *update.Deleted
	}
	if len(fields) == 0 {
		return nil
	}

	return r.WithTransaction(ctx, func(repo *Repository) error {
		var renameTo string
		var sheetID uint
		if update.Name != nil {
			company, err := repo.GetCompany(ctx, update.ID)
			if err != nil {
				return err
			}
			if company.Name != *update.Name {
				renameTo = *update.Name
				sheetID = company.SheetID
			}
		}

		result := repo.db.WithContext(ctx).Model(&records.Company{}).
			Where("id = ?", update.ID).
			Updates(fields)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
				return e.ErrDuplicate
			}
			return result.Error
		}
		if result.RowsAffected == 0 {
			return e.ErrNotFound
		}

		if renameTo != "" {
			return repo.RenameSheet(ctx, sheetID, renameTo)
		}
		return nil
	})
}

func (r *Repository) CreateSheet(ctx context.Context, name string) (*models.Sheet, error) {
	sheet := records.Sheet{Name: name}
	result := r.db.WithContext(ctx).Create(&sheet)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, e.ErrDuplicate
		}
		return nil, result.Error
	}
	return sheet.ToDomain(), nil
}

func (r *Repository) GetSheetByName(ctx context.Context, name string) (*models.Sheet, error) {
	var sheet records.Sheet
	result := r.db.WithContext(ctx).First(&sheet, "name = ?", name)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return sheet.ToDomain(), nil
}

// RenameSheet updates a sheet's name by primary key.
func (r *Repository) RenameSheet(ctx context.Context, id uint, name string) error {
	result := r.db.WithContext(ctx).Model(&records.Sheet{}).
		Where("id = ?", id).
		Update("name", name)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return e.ErrDuplicate
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) CreateEvent(ctx context.Context, event *models.Event) error {
	result := r.db.WithContext(ctx).Create(records.EventFromDomain(event))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return e.ErrDuplicate
		}
		return result.Error
	}
	return nil
}

func (r *Repository) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event records.Event
	result := r.db.WithContext(ctx).First(&event, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return event.ToDomain(), nil
}

func (r *Repository) GetEventByName(ctx context.Context, sheetID uint, name string) (*models.Event, error) {
	var event records.Event
	result := r.db.WithContext(ctx).
		First(&event, "sheet_id = ? AND name = ?", sheetID, name)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return event.ToDomain(), nil
}

func (r *Repository) ListEventsBySheet(ctx context.Context, sheetID uint) ([]*models.Event, error) {
	var rows []records.Event
	result := r.db.WithContext(ctx).
		Where("sheet_id = ?", sheetID).
		Order("created_at ASC").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	events := make([]*models.Event, 0, len(rows))
	for i := range rows {
		events = append(events, rows[i].ToDomain())
	}
	return events, nil
}

func (r *Repository) UpdateEvent(ctx context.Context, update *models.EventUpdate) error {
	fields := map[string]interface{}{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.ImageURL != nil {
		fields["image_url"] = *update.ImageURL
	}
	if update.Status != nil {
		fields["status"] = string(*update.Status)
	}
	if len(fields) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).Model(&records.Event{}).
		Where("id = ?", update.ID).
		Updates(fields)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return e.ErrDuplicate
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) CreateRegistration(ctx context.Context, reg *models.Registration) error {
	result := r.db.WithContext(ctx).Create(records.RegistrationFromDomain(reg))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return e.ErrDuplicate
		}
		return result.Error
	}
	return nil
}

// HasRegistration reports whether the event already has a registration with
// the given email or whatsapp number.
func (r *Repository) HasRegistration(ctx context.Context, eventID uuid.UUID, email, whatsapp string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&records.Registration{}).
		Where("event_id = ? AND (email = ? OR whatsapp = ?)", eventID, email, whatsapp).
		Limit(1).
		Count(&count)
	return count > 0, result.Error
}

func (r *Repository) CountRegistrations(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&records.Registration{}).
		Where("event_id = ?", eventID).
		Count(&count)
	return count, result.Error
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
