package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/kgjournal/internal/db"
	"github.com/terraincognita07/kgjournal/internal/identity"
	"github.com/terraincognita07/kgjournal/internal/logging"
	"github.com/terraincognita07/kgjournal/internal/models"
	"github.com/terraincognita07/kgjournal/internal/services"
	"github.com/terraincognita07/kgjournal/internal/tokens"
	"github.com/terraincognita07/kgjournal/internal/trigger"
)

const (
	testSecretKey = "test-secret-key"
	testPassword  = "StrongPass1!"
)

func newTestApp(t *testing.T) (*fiber.App, *Handler) {
	t.Helper()
	return newTestAppWithOptions(t, nil)
}

func newTestAppWithOptions(t *testing.T, configure func(*HandlerOptions)) (*fiber.App, *Handler) {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "kgjournal-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	options := HandlerOptions{
		SecretKey:      testSecretKey,
		Location:       time.UTC,
		Logger:         logging.Discard(),
		Identity:       identity.DefaultConfig(trigger.SetCompanyIDName),
		Issuer:         tokens.NewIssuer([]byte(testSecretKey), "kgjournal-test", time.Hour),
		TokenTrigger:   trigger.SetCompanyID(logging.Discard()),
		TriggerTimeout: time.Second,
		UserPoolID:     "test-pool",
	}
	if configure != nil {
		configure(&options)
	}

	handler, err := NewHandler(database, options)
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler})
	RegisterRoutes(app, handler)
	return app, handler
}

func createTestUser(t *testing.T, handler *Handler, email string, attributes map[string]string, groups ...string) models.User {
	t.Helper()

	user, err := handler.authService.CreateUser(services.NewUser{
		Email:         email,
		Password:      testPassword,
		Attributes:    attributes,
		Groups:        groups,
		EmailVerified: true,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func doJSON(t *testing.T, app *fiber.App, method string, path string, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	if token != "" {
		request.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("%s %s read body failed: %v", method, path, err)
	}
	return response, payload
}

func loginToken(t *testing.T, app *fiber.App, email string) string {
	t.Helper()

	response, body := doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    email,
		"password": testPassword,
	})
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected login status 200, got %d: %s", response.StatusCode, body)
	}

	payload := struct {
		Token string `json:"token"`
	}{}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if payload.Token == "" {
		t.Fatal("expected token in login response")
	}
	return payload.Token
}

func decodeObject(t *testing.T, body []byte) map[string]any {
	t.Helper()

	payload := map[string]any{}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode response body %q: %v", body, err)
	}
	return payload
}

func readAPIError(t *testing.T, body []byte) string {
	t.Helper()

	message, _ := decodeObject(t, body)["error"].(string)
	return message
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}
