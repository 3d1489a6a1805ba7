// Package handlers provides the HTTP surface of the service, bridging the
// transport layer and business logic and translating between JSON payloads
// and domain models.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gartstein/eventreg/internal/registration/auth"
	"github.com/gartstein/eventreg/internal/registration/controller"
	"github.com/gartstein/eventreg/internal/registration/models"
	"github.com/gartstein/eventreg/internal/registration/validation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CompanyController defines the business logic interface the company
// endpoints invoke.
type CompanyController interface {
	CreateCompany(ctx context.Context, company *models.Company, password string, image *controller.Image) (*models.Company, error)
	ListCompanies(ctx context.Context, includeDeleted bool) ([]*models.Company, error)
	UpdateCompany(ctx context.Context, update *models.CompanyUpdate, password string, image *controller.Image) (*models.Company, error)
	DeleteCompany(ctx context.Context, id string) (*models.Company, error)
	Authenticate(ctx context.Context, username, password string) (*models.Company, error)
}

// RegistrationController defines the business logic interface the event and
// registration endpoints invoke.
type RegistrationController interface {
	ListEvents(ctx context.Context, companyName string) ([]*models.EventInfo, error)
	Register(ctx context.Context, companyName, eventName string, reg *models.Registration) (*models.Registration, error)
	CreateEvent(ctx context.Context, companyID string, event *models.Event, image *controller.Image) (*models.Event, error)
	UpdateEvent(ctx context.Context, companyID string, update *models.EventUpdate, image *controller.Image) (*models.Event, error)
}

// Handler maps HTTP requests to the controllers.
type Handler struct {
	companies     CompanyController
	registrations RegistrationController
	jwtSecret     string
	logger        *zap.Logger
}

// NewHandler constructs a Handler with the given controllers and logger.
func NewHandler(companies CompanyController, registrations RegistrationController, jwtSecret string, logger *zap.Logger) *Handler {
	return &Handler{
		companies:     companies,
		registrations: registrations,
		jwtSecret:     jwtSecret,
		logger:        logger.Named("http_handler"),
	}
}

type registerRequest struct {
	CompanyName string `json:"companyName" validate:"required"`
	EventName   string `json:"eventName" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,form_email"`
	WhatsApp    string `json:"whatsapp" validate:"required,whatsapp"`
	Age         int    `json:"age" validate:"required,min=15,max=100"`
	Gender      string `json:"gender" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type companyCreateRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	Image    string `json:"image"`
}

type companyUpdateRequest struct {
	ID       string  `json:"id"`
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	Image    *string `json:"image"`
	Status   *string `json:"status"`
	Deleted  *bool   `json:"deleted"`
}

type eventCreateRequest struct {
	Name   string `json:"name"`
	Image  string `json:"image"`
	Status string `json:"status"`
}

type eventUpdateRequest struct {
	ID     string  `json:"id"`
	Name   *string `json:"name"`
	Image  *string `json:"image"`
	Status *string `json:"status"`
}

// ListEvents handles GET /api/events?company=<name>.
func (h *Handler) ListEvents(c *gin.Context) {
	infos, err := h.registrations.ListEvents(c.Request.Context(), c.Query("company"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	events := make([]eventResponse, 0, len(infos))
	for _, info := range infos {
		events = append(events, eventInfoToResponse(info))
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// Register handles POST /api/events/register.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.MsgFieldsRequired})
		return
	}
	if err := validation.Validate(c.Request.Context(), req); err != nil {
		h.respondError(c, err)
		return
	}

	reg := &models.Registration{
		Name:     req.Name,
		Email:    req.Email,
		WhatsApp: req.WhatsApp,
		Age:      req.Age,
		Gender:   req.Gender,
	}
	created, err := h.registrations.Register(c.Request.Context(), req.CompanyName, req.EventName, reg)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Registration successful",
		"registration": gin.H{
			"name":      created.Name,
			"email":     created.Email,
			"timestamp": created.CreatedAt.Format(time.RFC3339),
		},
	})
}

// CompanyLogin handles POST /api/login for tenant companies.
func (h *Handler) CompanyLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	company, err := h.companies.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	token, err := auth.GenerateToken(company.ID, auth.RoleCompany, h.jwtSecret)
	if err != nil {
		h.logger.Error("Failed to sign token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"company": companyToResponse(company),
	})
}

// ListCompanies handles GET /api/companies (admin only).
func (h *Handler) ListCompanies(c *gin.Context) {
	includeDeleted := c.Query("deleted") == "true"
	companies, err := h.companies.ListCompanies(c.Request.Context(), includeDeleted)
	if err != nil {
		h.respondError(c, err)
		return
	}

	responses := make([]companyResponse, 0, len(companies))
	for _, company := range companies {
		responses = append(responses, companyToResponse(company))
	}
	c.JSON(http.StatusOK, gin.H{"companies": responses})
}

// CreateCompany handles POST /api/companies (admin only).
func (h *Handler) CreateCompany(c *gin.Context) {
	var req companyCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}

	image, err := decodeImage(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image data"})
		return
	}

	company := &models.Company{
		Name:     req.Name,
		Username: req.Username,
	}
	created, err := h.companies.CreateCompany(c.Request.Context(), company, req.Password, image)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"company": companyToResponse(created)})
}

// UpdateCompany handles PUT /api/companies (admin only).
func (h *Handler) UpdateCompany(c *gin.Context) {
	var req companyUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}

	update := &models.CompanyUpdate{
		ID:       req.ID,
		Name:     req.Name,
		Username: req.Username,
		Deleted:  req.Deleted,
	}
	if req.Status != nil {
		status, ok := parseStatus(*req.Status)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		update.Status = &status
	}

	var image *controller.Image
	if req.Image != nil {
		var err error
		image, err = decodeImage(*req.Image)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image data"})
			return
		}
	}

	password := ""
	if req.Password != nil {
		password = *req.Password
	}

	updated, err := h.companies.UpdateCompany(c.Request.Context(), update, password, image)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": companyToResponse(updated)})
}

// DeleteCompany handles DELETE /api/companies?id=<id> (admin only).
func (h *Handler) DeleteCompany(c *gin.Context) {
	deleted, err := h.companies.DeleteCompany(c.Request.Context(), c.Query("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Company deleted",
		"company": companyToResponse(deleted),
	})
}

// CreateEvent handles POST /api/events (company only).
func (h *Handler) CreateEvent(c *gin.Context) {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req eventCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}

	image, err := decodeImage(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image data"})
		return
	}

	event := &models.Event{Name: req.Name}
	if req.Status != "" {
		status, ok := parseStatus(req.Status)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		event.Status = status
	}

	created, err := h.registrations.CreateEvent(c.Request.Context(), identity.Subject, event, image)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"event": eventToResponse(created)})
}

// UpdateEvent handles PUT /api/events (company only).
func (h *Handler) UpdateEvent(c *gin.Context) {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req eventUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	update := &models.EventUpdate{
		ID:   id,
		Name: req.Name,
	}
	if req.Status != nil {
		status, ok := parseStatus(*req.Status)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		update.Status = &status
	}

	var image *controller.Image
	if req.Image != nil {
		image, err = decodeImage(*req.Image)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image data"})
			return
		}
	}

	updated, err := h.registrations.UpdateEvent(c.Request.Context(), identity.Subject, update, image)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": eventToResponse(updated)})
}
