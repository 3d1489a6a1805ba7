package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/gartstein/eventreg/internal/registration/controller"
	e "github.com/gartstein/eventreg/internal/registration/errors"
	"github.com/gartstein/eventreg/internal/registration/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const internalErrorMessage = "Internal server error"

// companyResponse is the JSON shape for a company. The password hash never
// leaves the service.
type companyResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Image    string `json:"image"`
	Status   string `json:"status"`
	Deleted  bool   `json:"deleted"`
}

// eventResponse is the JSON shape for an event listing entry.
type eventResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Image         string `json:"image"`
	Registrations int64  `json:"registrations"`
	Status        string `json:"status"`
	CompanyStatus string `json:"companyStatus,omitempty"`
}

func companyToResponse(company *models.Company) companyResponse {
	return companyResponse{
		ID:       company.ID,
		Name:     company.Name,
		Username: company.Username,
		Image:    company.ImageURL,
		Status:   string(company.Status),
		Deleted:  company.Deleted,
	}
}

func eventToResponse(event *models.Event) eventResponse {
	return eventResponse{
		ID:     event.ID.String(),
		Name:   event.Name,
		Image:  event.ImageURL,
		Status: string(event.Status),
	}
}

func eventInfoToResponse(info *models.EventInfo) eventResponse {
	resp := eventToResponse(&info.Event)
	resp.Registrations = info.Registrations
	resp.CompanyStatus = string(info.CompanyStatus)
	return resp
}

// parseStatus normalizes a status string from a request payload.
func parseStatus(value string) (models.Status, bool) {
	switch models.Status(value) {
	case models.StatusEnabled, models.StatusDisabled:
		return models.Status(value), true
	default:
		return "", false
	}
}

// decodeImage turns an optional base64 payload (raw or data URL) into an
// Image for the content host. An empty payload yields nil.
func decodeImage(payload string) (*controller.Image, error) {
	if payload == "" {
		return nil, nil
	}

	name := "upload.png"
	data := payload
	if strings.HasPrefix(payload, "data:") {
		header, rest, ok := strings.Cut(payload, ",")
		if !ok {
			return nil, errors.New("malformed data URL")
		}
		data = rest
		if strings.Contains(header, "image/jpeg") {
			name = "upload.jpg"
		}
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}
	return &controller.Image{Name: name, Data: decoded}, nil
}

// respondError maps domain errors to HTTP statuses. Unexpected errors are
// logged and reported with a generic message.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, e.ErrInvalidInput), errors.Is(err, e.ErrDuplicate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, e.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, e.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, e.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
	}
}
