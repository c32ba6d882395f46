package webserver_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sondeolabs/convoca/internal/i18n"
	"github.com/sondeolabs/convoca/internal/model"
	"github.com/sondeolabs/convoca/internal/notification"
	"github.com/sondeolabs/convoca/internal/webserver"
	"github.com/sondeolabs/convoca/internal/webserver/infrastructure"
	"gorm.io/gorm"
)

func TestAuthentication(t *testing.T) {
	db := infrastructure.Connect("file::memory:")
	app := bootstrapApp(t, db)

	addUser(t, db, "ana@company.test", "secret", model.RoleEmployee, "company-1", "Engineering")

	t.Run("Request without a token is rejected", func(t *testing.T) {
		response := doRequest(t, app, http.MethodGet, "/invitations", "", nil)
		if response.StatusCode != http.StatusUnauthorized {
			t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, response.StatusCode)
		}
	})

	t.Run("Sign in with wrong password is rejected", func(t *testing.T) {
		response := doRequest(t, app, http.MethodPost, "/sessions", "", map[string]interface{}{
			"email":    "ana@company.test",
			"password": "wrong",
		})
		if response.StatusCode != http.StatusUnauthorized {
			t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, response.StatusCode)
		}
	})

	t.Run("Sign in with correct credentials grants access", func(t *testing.T) {
		token := login(t, app, "ana@company.test", "secret")

		response := doRequest(t, app, http.MethodGet, "/invitations", token, nil)
		if response.StatusCode != http.StatusOK {
			t.Errorf("Expected status %d, got %d", http.StatusOK, response.StatusCode)
		}
	})
}

func bootstrapApp(t *testing.T, db *gorm.DB) *fiber.App {
	t.Helper()

	translator, err := i18n.NewTranslator(notification.TranslationsFS(), "en")
	if err != nil {
		t.Fatalf("Unexpected error building translator: %v", err)
	}

	cfg := webserver.Config{
		Version:           "test",
		JwtSecret:         []byte("top-secret"),
		BaseURL:           "example.com",
		SessionTimeout:    time.Hour,
		MinPasswordLength: 5,
	}

	controllers := webserver.SetupControllers(cfg, db, notification.NewComposer(translator))
	return webserver.New(cfg, controllers)
}

func addUser(t *testing.T, db *gorm.DB, email, password string, role int, companyID, department string) *model.User {
	t.Helper()

	user := &model.User{
		Uuid:       uuid.NewString(),
		CompanyID:  companyID,
		Name:       "Test User",
		Email:      email,
		Password:   model.Hash(password),
		Role:       role,
		Department: department,
		Locale:     "en",
	}
	repository := &model.UserRepository{DB: db}
	if err := repository.Create(user); err != nil {
		t.Fatalf("Unexpected error creating user: %v", err)
	}
	return user
}

func addCampaign(t *testing.T, db *gorm.DB, companyID string, kind model.CampaignKind) *model.Campaign {
	t.Helper()

	campaign := &model.Campaign{
		UUID:      uuid.NewString(),
		CompanyID: companyID,
		Name:      "Spring Climate Survey",
		Kind:      kind,
		StartsAt:  time.Now().UTC(),
	}
	repository := &model.CampaignRepository{DB: db}
	if err := repository.Create(campaign); err != nil {
		t.Fatalf("Unexpected error creating campaign: %v", err)
	}
	return campaign
}

func addInvitation(t *testing.T, db *gorm.DB, campaignID, companyID, email string, status model.Status) *model.Invitation {
	t.Helper()

	invitation := &model.Invitation{
		UUID:           uuid.NewString(),
		CampaignID:     campaignID,
		CompanyID:      companyID,
		RecipientEmail: email,
		Token:          uuid.NewString(),
		Status:         status,
		ExpiresAt:      time.Now().UTC().Add(14 * 24 * time.Hour),
	}
	repository := &model.InvitationRepository{DB: db}
	if err := repository.Create(invitation); err != nil {
		t.Fatalf("Unexpected error creating invitation: %v", err)
	}
	return invitation
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()

	response := doRequest(t, app, http.MethodPost, "/sessions", "", map[string]interface{}{
		"email":    email,
		"password": password,
	})
	if response.StatusCode != http.StatusOK {
		t.Fatalf("Expected successful sign in, got status %d", response.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
	}
	decode(t, response, &body)
	return body.Token
}

func doRequest(t *testing.T, app *fiber.App, method, url, token string, payload interface{}) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Unexpected error encoding request body: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("Unexpected error building request: %v", err)
	}
	if payload != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	response, err := app.Test(req)
	if err != nil {
		t.Fatalf("Unexpected error performing request: %v", err)
	}
	return response
}

func decode(t *testing.T, response *http.Response, target interface{}) {
	t.Helper()

	defer response.Body.Close()
	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		t.Fatalf("Unexpected error decoding response: %v", err)
	}
}
