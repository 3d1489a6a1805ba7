package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gartstein/eventreg/internal/registration/auth"
	"github.com/gartstein/eventreg/internal/registration/controller"
	e "github.com/gartstein/eventreg/internal/registration/errors"
	"github.com/gartstein/eventreg/internal/registration/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testSecret = "test-secret"

// stubCompanies implements CompanyController with overridable funcs.
type stubCompanies struct {
	createCompany func(context.Context, *models.Company, string, *controller.Image) (*models.Company, error)
	listCompanies func(context.Context, bool) ([]*models.Company, error)
	updateCompany func(context.Context, *models.CompanyUpdate, string, *controller.Image) (*models.Company, error)
	deleteCompany func(context.Context, string) (*models.Company, error)
	authenticate  func(context.Context, string, string) (*models.Company, error)
}

func (s *stubCompanies) CreateCompany(ctx context.Context, c *models.Company, password string, image *controller.Image) (*models.Company, error) {
	return s.createCompany(ctx, c, password, image)
}

func (s *stubCompanies) ListCompanies(ctx context.Context, includeDeleted bool) ([]*models.Company, error) {
	return s.listCompanies(ctx, includeDeleted)
}

func (s *stubCompanies) UpdateCompany(ctx context.Context, u *models.CompanyUpdate, password string, image *controller.Image) (*models.Company, error) {
	return s.updateCompany(ctx, u, password, image)
}

func (s *stubCompanies) DeleteCompany(ctx context.Context, id string) (*models.Company, error) {
	return s.deleteCompany(ctx, id)
}

func (s *stubCompanies) Authenticate(ctx context.Context, username, password string) (*models.Company, error) {
	return s.authenticate(ctx, username, password)
}

// stubRegistrations implements RegistrationController with overridable funcs.
type stubRegistrations struct {
	listEvents  func(context.Context, string) ([]*models.EventInfo, error)
	register    func(context.Context, string, string, *models.Registration) (*models.Registration, error)
	createEvent func(context.Context, string, *models.Event, *controller.Image) (*models.Event, error)
	updateEvent func(context.Context, string, *models.EventUpdate, *controller.Image) (*models.Event, error)
}

func (s *stubRegistrations) ListEvents(ctx context.Context, companyName string) ([]*models.EventInfo, error) {
	return s.listEvents(ctx, companyName)
}

func (s *stubRegistrations) Register(ctx context.Context, companyName, eventName string, reg *models.Registration) (*models.Registration, error) {
	return s.register(ctx, companyName, eventName, reg)
}

func (s *stubRegistrations) CreateEvent(ctx context.Context, companyID string, event *models.Event, image *controller.Image) (*models.Event, error) {
	return s.createEvent(ctx, companyID, event, image)
}

func (s *stubRegistrations) UpdateEvent(ctx context.Context, companyID string, update *models.EventUpdate, image *controller.Image) (*models.Event, error) {
	return s.updateEvent(ctx, companyID, update, image)
}

func setupRouter(t *testing.T, companies CompanyController, registrations RegistrationController) *gin.Engine {
	logger := zaptest.NewLogger(t)
	handler := NewHandler(companies, registrations, testSecret, logger)
	server := NewServer(0, logger)
	server.RegisterRoutes(handler)
	return server.Engine()
}

func doJSON(router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "error body should be JSON")
	return body["error"]
}

func validRegisterPayload() map[string]interface{} {
	return map[string]interface{}{
		"companyName": "Acme",
		"eventName":   "Launch",
		"name":        "Alice",
		"email":       "alice@example.com",
		"whatsapp":    "628123456789",
		"age":         25,
		"gender":      "female",
	}
}

func TestRegisterValidationMessages(t *testing.T) {
	registrations := &stubRegistrations{
		register: func(_ context.Context, _, _ string, reg *models.Registration) (*models.Registration, error) {
			reg.CreatedAt = time.Now()
			return reg, nil
		},
	}
	router := setupRouter(t, &stubCompanies{}, registrations)

	tests := []struct {
		name     string
		mutate   func(map[string]interface{})
		expected string
	}{
		{
			name:     "missing name",
			mutate:   func(p map[string]interface{}) { delete(p, "name") },
			expected: "All fields are required",
		},
		{
			name:     "missing age",
			mutate:   func(p map[string]interface{}) { delete(p, "age") },
			expected: "All fields are required",
		},
		{
			name:     "invalid email",
			mutate:   func(p map[string]interface{}) { p["email"] = "not-an-email" },
			expected: "Invalid email format",
		},
		{
			name:     "email with whitespace",
			mutate:   func(p map[string]interface{}) { p["email"] = "a b@example.com" },
			expected: "Invalid email format",
		},
		{
			name:     "whatsapp too short",
			mutate:   func(p map[string]interface{}) { p["whatsapp"] = "12345" },
			expected: "Invalid WhatsApp number format",
		},
		{
			name:     "whatsapp with letters",
			mutate:   func(p map[string]interface{}) { p["whatsapp"] = "62812345678x" },
			expected: "Invalid WhatsApp number format",
		},
		{
			name:     "age below minimum",
			mutate:   func(p map[string]interface{}) { p["age"] = 14 },
			expected: "Invalid age",
		},
		{
			name:     "age above maximum",
			mutate:   func(p map[string]interface{}) { p["age"] = 101 },
			expected: "Invalid age",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validRegisterPayload()
			tt.mutate(payload)

			w := doJSON(router, http.MethodPost, "/api/events/register", payload, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.expected, errorMessage(t, w))
		})
	}
}

func TestRegisterSuccess(t *testing.T) {
	submitted := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	registrations := &stubRegistrations{
		register: func(_ context.Context, companyName, eventName string, reg *models.Registration) (*models.Registration, error) {
			assert.Equal(t, "Acme", companyName)
			assert.Equal(t, "Launch", eventName)
			reg.ID = uuid.New()
			reg.CreatedAt = submitted
			return reg, nil
		},
	}
	router := setupRouter(t, &stubCompanies{}, registrations)

	w := doJSON(router, http.MethodPost, "/api/events/register", validRegisterPayload(), "")
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Success      bool   `json:"success"`
		Message      string `json:"message"`
		Registration struct {
			Name      string `json:"name"`
			Email     string `json:"email"`
			Timestamp string `json:"timestamp"`
		} `json:"registration"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Registration successful", body.Message)
	assert.Equal(t, "Alice", body.Registration.Name)
	assert.Equal(t, "alice@example.com", body.Registration.Email)
	assert.Equal(t, submitted.Format(time.RFC3339), body.Registration.Timestamp)
}

func TestRegisterControllerErrors(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"duplicate registration", e.Duplicate("You are already registered for this event"), http.StatusBadRequest},
		{"company disabled", e.Forbidden("Company is disabled"), http.StatusForbidden},
		{"event disabled", e.Forbidden("Event is disabled"), http.StatusForbidden},
		{"event not found", e.NotFound("Event not found"), http.StatusNotFound},
		{"company not found", e.NotFound("Company not found"), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registrations := &stubRegistrations{
				register: func(_ context.Context, _, _ string, _ *models.Registration) (*models.Registration, error) {
					return nil, tt.err
				},
			}
			router := setupRouter(t, &stubCompanies{}, registrations)

			w := doJSON(router, http.MethodPost, "/api/events/register", validRegisterPayload(), "")
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.err.Error(), errorMessage(t, w))
		})
	}
}

func TestListEvents(t *testing.T) {
	registrations := &stubRegistrations{
		listEvents: func(_ context.Context, companyName string) ([]*models.EventInfo, error) {
			assert.Equal(t, "Acme", companyName)
			return []*models.EventInfo{
				{
					Event:         models.Event{ID: uuid.New(), Name: "Launch", Status: models.StatusEnabled},
					Registrations: 3,
					CompanyStatus: models.StatusEnabled,
				},
			}, nil
		},
	}
	router := setupRouter(t, &stubCompanies{}, registrations)

	w := doJSON(router, http.MethodGet, "/api/events?company=Acme", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Events []eventResponse `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Events, 1)
	assert.Equal(t, "Launch", body.Events[0].Name)
	assert.Equal(t, int64(3), body.Events[0].Registrations)
	assert.Equal(t, "enabled", body.Events[0].CompanyStatus)
}

func TestCompanyLogin(t *testing.T) {
	account := &models.Company{ID: "comp-1", Name: "Acme", Username: "acme", Status: models.StatusEnabled}

	t.Run("missing credentials", func(t *testing.T) {
		router := setupRouter(t, &stubCompanies{}, &stubRegistrations{})
		w := doJSON(router, http.MethodPost, "/api/login", map[string]string{"username": "acme"}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Username and password are required", errorMessage(t, w))
	})

	t.Run("invalid credentials", func(t *testing.T) {
		companies := &stubCompanies{
			authenticate: func(_ context.Context, _, _ string) (*models.Company, error) {
				return nil, e.Unauthorized("Invalid username or password")
			},
		}
		router := setupRouter(t, companies, &stubRegistrations{})
		w := doJSON(router, http.MethodPost, "/api/login",
			map[string]string{"username": "acme", "password": "wrong"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid username or password", errorMessage(t, w))
	})

	t.Run("disabled company", func(t *testing.T) {
		companies := &stubCompanies{
			authenticate: func(_ context.Context, _, _ string) (*models.Company, error) {
				return nil, e.Forbidden("Company is disabled")
			},
		}
		router := setupRouter(t, companies, &stubRegistrations{})
		w := doJSON(router, http.MethodPost, "/api/login",
			map[string]string{"username": "acme", "password": "secret"}, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Company is disabled", errorMessage(t, w))
	})

	t.Run("successful login returns usable token", func(t *testing.T) {
		companies := &stubCompanies{
			authenticate: func(_ context.Context, username, password string) (*models.Company, error) {
				assert.Equal(t, "acme", username)
				assert.Equal(t, "secret", password)
				return account, nil
			},
		}
		router := setupRouter(t, companies, &stubRegistrations{})
		w := doJSON(router, http.MethodPost, "/api/login",
			map[string]string{"username": "acme", "password": "secret"}, "")
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Token   string          `json:"token"`
			Company companyResponse `json:"company"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, account.ID, body.Company.ID)

		identity, err := auth.ValidateToken(body.Token, testSecret)
		require.NoError(t, err, "issued token should validate")
		assert.Equal(t, account.ID, identity.Subject)
		assert.Equal(t, auth.RoleCompany, identity.Role)
	})
}

func TestCompaniesRoutesRequireAdmin(t *testing.T) {
	companies := &stubCompanies{
		listCompanies: func(_ context.Context, _ bool) ([]*models.Company, error) {
			return nil, nil
		},
	}
	router := setupRouter(t, companies, &stubRegistrations{})

	t.Run("no token", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/companies", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/companies", nil, "not-a-token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("company token", func(t *testing.T) {
		token, err := auth.GenerateToken("comp-1", auth.RoleCompany, testSecret)
		require.NoError(t, err)
		w := doJSON(router, http.MethodGet, "/api/companies", nil, token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin token", func(t *testing.T) {
		token, err := auth.GenerateToken("admin", auth.RoleAdmin, testSecret)
		require.NoError(t, err)
		w := doJSON(router, http.MethodGet, "/api/companies", nil, token)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestListCompanies(t *testing.T) {
	var requestedDeleted bool
	companies := &stubCompanies{
		listCompanies: func(_ context.Context, includeDeleted bool) ([]*models.Company, error) {
			requestedDeleted = includeDeleted
			return []*models.Company{
				{ID: "a", Name: "Active", Status: models.StatusEnabled},
			}, nil
		},
	}
	router := setupRouter(t, companies, &stubRegistrations{})
	token, err := auth.GenerateToken("admin", auth.RoleAdmin, testSecret)
	require.NoError(t, err)

	w := doJSON(router, http.MethodGet, "/api/companies", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, requestedDeleted)

	var body struct {
		Companies []companyResponse `json:"companies"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Companies, 1)
	assert.Equal(t, "Active", body.Companies[0].Name)

	w = doJSON(router, http.MethodGet, "/api/companies?deleted=true", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, requestedDeleted)
}

func TestCreateCompany(t *testing.T) {
	token, err := auth.GenerateToken("admin", auth.RoleAdmin, testSecret)
	require.NoError(t, err)

	t.Run("successful creation", func(t *testing.T) {
		companies := &stubCompanies{
			createCompany: func(_ context.Context, c *models.Company, password string, _ *controller.Image) (*models.Company, error) {
				assert.Equal(t, "secret123", password)
				c.ID = "comp-new"
				c.Status = models.StatusEnabled
				return c, nil
			},
		}
		router := setupRouter(t, companies, &stubRegistrations{})

		w := doJSON(router, http.MethodPost, "/api/companies",
			map[string]string{"name": "Acme", "username": "acme", "password": "secret123"}, token)
		require.Equal(t, http.StatusCreated, w.Code)

		var body struct {
			Company companyResponse `json:"company"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "comp-new", body.Company.ID)
		assert.Equal(t, "Acme", body.Company.Name)
	})

	t.Run("duplicate username", func(t *testing.T) {
		companies := &stubCompanies{
			createCompany: func(_ context.Context, _ *models.Company, _ string, _ *controller.Image) (*models.Company, error) {
				return nil, e.Duplicate("Username already exists")
			},
		}
		router := setupRouter(t, companies, &stubRegistrations{})

		w := doJSON(router, http.MethodPost, "/api/companies",
			map[string]string{"name": "Acme", "username": "acme", "password": "secret123"}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Username already exists", errorMessage(t, w))
	})

	t.Run("invalid image payload", func(t *testing.T) {
		router := setupRouter(t, &stubCompanies{}, &stubRegistrations{})

		w := doJSON(router, http.MethodPost, "/api/companies",
			map[string]string{"name": "Acme", "username": "acme", "password": "x", "image": "%%%not-base64%%%"}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid image data", errorMessage(t, w))
	})
}

func TestUpdateCompany(t *testing.T) {
	token, err := auth.GenerateToken("admin", auth.RoleAdmin, testSecret)
	require.NoError(t, err)

	t.Run("invalid status", func(t *testing.T) {
		router := setupRouter(t, &stubCompanies{}, &stubRegistrations{})
		w := doJSON(router, http.MethodPut, "/api/companies",
			map[string]interface{}{"id": "comp-1", "status": "paused"}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid status", errorMessage(t, w))
	})

	t.Run("successful update", func(t *testing.T) {
		companies := &stubCompanies{
			updateCompany: func(_ context.Context, u *models.CompanyUpdate, _ string, _ *controller.Image) (*models.Company, error) {
				assert.Equal(t, "comp-1", u.ID)
				require.NotNil(t, u.Status)
				assert.Equal(t, models.StatusDisabled, *u.Status)
				return &models.Company{ID: u.ID, Name: "Acme", Status: models.StatusDisabled}, nil
			},
		}
		router := setupRouter(t, companies, &stubRegistrations{})

		w := doJSON(router, http.MethodPut, "/api/companies",
			map[string]interface{}{"id": "comp-1", "status": "disabled"}, token)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Company companyResponse `json:"company"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "disabled", body.Company.Status)
	})

	t.Run("company not found", func(t *testing.T) {
		companies := &stubCompanies{
			updateCompany: func(_ context.Context, _ *models.CompanyUpdate, _ string, _ *controller.Image) (*models.Company, error) {
				return nil, e.NotFound("Company not found")
			},
		}
		router := setupRouter(t, companies, &stubRegistrations{})

		w := doJSON(router, http.MethodPut, "/api/companies",
			map[string]interface{}{"id": "missing"}, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Company not found", errorMessage(t, w))
	})
}

func TestDeleteCompany(t *testing.T) {
	token, err := auth.GenerateToken("admin", auth.RoleAdmin, testSecret)
	require.NoError(t, err)

	companies := &stubCompanies{
		deleteCompany: func(_ context.Context, id string) (*models.Company, error) {
			if id == "" {
				return nil, e.InvalidInput("Company id is required")
			}
			return &models.Company{ID: id, Name: "Gone", Deleted: true}, nil
		},
	}
	router := setupRouter(t, companies, &stubRegistrations{})

	t.Run("successful delete", func(t *testing.T) {
		w := doJSON(router, http.MethodDelete, "/api/companies?id=comp-1", nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Success bool            `json:"success"`
			Message string          `json:"message"`
			Company companyResponse `json:"company"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, "Company deleted", body.Message)
		assert.True(t, body.Company.Deleted)
	})

	t.Run("missing id", func(t *testing.T) {
		w := doJSON(router, http.MethodDelete, "/api/companies", nil, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Company id is required", errorMessage(t, w))
	})
}

func TestEventManagementRoutes(t *testing.T) {
	companyToken, err := auth.GenerateToken("comp-1", auth.RoleCompany, testSecret)
	require.NoError(t, err)

	t.Run("create requires company token", func(t *testing.T) {
		router := setupRouter(t, &stubCompanies{}, &stubRegistrations{})
		w := doJSON(router, http.MethodPost, "/api/events", map[string]string{"name": "Launch"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("admin token rejected for event management", func(t *testing.T) {
		adminToken, err := auth.GenerateToken("admin", auth.RoleAdmin, testSecret)
		require.NoError(t, err)
		router := setupRouter(t, &stubCompanies{}, &stubRegistrations{})
		w := doJSON(router, http.MethodPost, "/api/events", map[string]string{"name": "Launch"}, adminToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("create passes the authenticated company", func(t *testing.T) {
		registrations := &stubRegistrations{
			createEvent: func(_ context.Context, companyID string, event *models.Event, _ *controller.Image) (*models.Event, error) {
				assert.Equal(t, "comp-1", companyID)
				event.ID = uuid.New()
				event.Status = models.StatusEnabled
				return event, nil
			},
		}
		router := setupRouter(t, &stubCompanies{}, registrations)

		w := doJSON(router, http.MethodPost, "/api/events", map[string]string{"name": "Launch"}, companyToken)
		require.Equal(t, http.StatusCreated, w.Code)

		var body struct {
			Event eventResponse `json:"event"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Launch", body.Event.Name)
	})

	t.Run("update rejects malformed event id", func(t *testing.T) {
		router := setupRouter(t, &stubCompanies{}, &stubRegistrations{})
		w := doJSON(router, http.MethodPut, "/api/events",
			map[string]string{"id": "not-a-uuid"}, companyToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid event ID", errorMessage(t, w))
	})

	t.Run("update of a foreign event is forbidden", func(t *testing.T) {
		registrations := &stubRegistrations{
			updateEvent: func(_ context.Context, _ string, _ *models.EventUpdate, _ *controller.Image) (*models.Event, error) {
				return nil, e.Forbidden("Event belongs to another company")
			},
		}
		router := setupRouter(t, &stubCompanies{}, registrations)

		w := doJSON(router, http.MethodPut, "/api/events",
			map[string]string{"id": uuid.NewString()}, companyToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Event belongs to another company", errorMessage(t, w))
	})
}
