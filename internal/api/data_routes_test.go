package api

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/kgjournal/internal/models"
)

type journalUsers struct {
	one   string
	two   string
	admin string
	oneID string
}

func signInJournalUsers(t *testing.T, app *fiber.App, handler *Handler) journalUsers {
	t.Helper()

	one := createTestUser(t, handler, "u1@example.com", nil)
	createTestUser(t, handler, "u2@example.com", nil)
	createTestUser(t, handler, "admin@example.com", nil, models.GroupAdmin)
	return journalUsers{
		one:   loginToken(t, app, "u1@example.com"),
		two:   loginToken(t, app, "u2@example.com"),
		admin: loginToken(t, app, "admin@example.com"),
		oneID: one.ID,
	}
}

func createJournalEntry(t *testing.T, app *fiber.App, token string, title string) map[string]any {
	t.Helper()

	response, body := doJSON(t, app, http.MethodPost, "/api/data/journal/JournalEntry", token, fiber.Map{
		"entryType":  "FOOD",
		"title":      title,
		"occurredAt": "2025-03-03T08:15:00+02:00",
		"tags":       []string{"dairy", "breakfast"},
	})
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected create status 201, got %d: %s", response.StatusCode, body)
	}
	return decodeObject(t, body)
}

func TestOwnerAdminAndOtherUserAccess(t *testing.T) {
	t.Parallel()

	app, handler := newTestApp(t)
	users := signInJournalUsers(t, app, handler)

	entry := createJournalEntry(t, app, users.one, "Yogurt")
	if entry["ownerId"] != users.oneID {
		t.Fatalf("expected owner stamped from caller, got %v", entry["ownerId"])
	}
	if entry["occurredAt"] != "2025-03-03T06:15:00Z" {
		t.Fatalf("expected normalized datetime, got %v", entry["occurredAt"])
	}
	path := "/api/data/journal/JournalEntry/" + entry["id"].(string)

	response, body := doJSON(t, app, http.MethodPut, path, users.two, fiber.Map{"title": "Hijacked"})
	if response.StatusCode != http.StatusForbidden {
		t.Fatalf("expected other user update status 403, got %d", response.StatusCode)
	}
	if message := readAPIError(t, body); message != "access denied" {
		t.Fatalf("expected access denied, got %q", message)
	}

	response, _ = doJSON(t, app, http.MethodGet, path, users.two, nil)
	if response.StatusCode != http.StatusForbidden {
		t.Fatalf("expected other user read status 403, got %d", response.StatusCode)
	}

	response, body = doJSON(t, app, http.MethodPut, path, users.admin, fiber.Map{"title": "Greek yogurt"})
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected admin update status 200, got %d: %s", response.StatusCode, body)
	}
	if title := decodeObject(t, body)["title"]; title != "Greek yogurt" {
		t.Fatalf("expected admin update to persist, got %v", title)
	}

	response, body = doJSON(t, app, http.MethodGet, path, users.one, nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected owner read status 200, got %d", response.StatusCode)
	}
	if title := decodeObject(t, body)["title"]; title != "Greek yogurt" {
		t.Fatalf("expected owner to see admin change, got %v", title)
	}
}

func TestListReturnsOnlyReadableRecords(t *testing.T) {
	t.Parallel()

	app, handler := newTestApp(t)
	users := signInJournalUsers(t, app, handler)
	createJournalEntry(t, app, users.one, "Oats")
	createJournalEntry(t, app, users.one, "Rice")
	createJournalEntry(t, app, users.two, "Eggs")

	counts := map[string]int{users.one: 2, users.two: 1, users.admin: 3}
	for token, expected := range counts {
		response, body := doJSON(t, app, http.MethodGet, "/api/data/journal/JournalEntry", token, nil)
		if response.StatusCode != http.StatusOK {
			t.Fatalf("expected list status 200, got %d", response.StatusCode)
		}
		items, _ := decodeObject(t, body)["items"].([]any)
		if len(items) != expected {
			t.Fatalf("expected %d items, got %d", expected, len(items))
		}
	}
}

func TestIdentityPoolCallerIsReadOnly(t *testing.T) {
	t.Parallel()

	app, handler := newTestApp(t)
	users := signInJournalUsers(t, app, handler)
	entry := createJournalEntry(t, app, users.one, "Toast")

	console, err := handler.authService.IssueServiceToken("data-console")
	if err != nil {
		t.Fatalf("IssueServiceToken() unexpected error: %v", err)
	}

	response, _ := doJSON(t, app, http.MethodGet, "/api/data/journal/JournalEntry/"+entry["id"].(string), console, nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected identity-pool read status 200, got %d", response.StatusCode)
	}

	response, _ = doJSON(t, app, http.MethodDelete, "/api/data/journal/JournalEntry/"+entry["id"].(string), console, nil)
	if response.StatusCode != http.StatusForbidden {
		t.Fatalf("expected identity-pool delete status 403, got %d", response.StatusCode)
	}

	response, _ = doJSON(t, app, http.MethodPost, "/api/data/journal/JournalEntry", console, fiber.Map{
		"ownerId":    users.oneID,
		"entryType":  "FOOD",
		"title":      "Injected",
		"occurredAt": "2025-03-03T08:15:00Z",
	})
	if response.StatusCode != http.StatusForbidden {
		t.Fatalf("expected identity-pool create status 403, got %d", response.StatusCode)
	}
}

func TestCreateRejectsInvalidPayloads(t *testing.T) {
	t.Parallel()

	app, handler := newTestApp(t)
	users := signInJournalUsers(t, app, handler)
	entry := createJournalEntry(t, app, users.one, "Shrimp")

	response, body := doJSON(t, app, http.MethodPost, "/api/data/journal/SymptomEntry", users.one, fiber.Map{
		"journalEntryId": entry["id"],
		"symptomType":    "SKIN",
		"severity":       "CATASTROPHIC",
		"onsetMinutes":   15,
	})
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", response.StatusCode, body)
	}
	if field := decodeObject(t, body)["field"]; field != "severity" {
		t.Fatalf("expected severity field error, got %v", field)
	}

	response, _ = doJSON(t, app, http.MethodPost, "/api/data/journal/JournalEntry", users.one, fiber.Map{
		"entryType": "FOOD",
	})
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected missing required fields status 400, got %d", response.StatusCode)
	}

	response, _ = doJSON(t, app, http.MethodPost, "/api/data/journal/JournalEntry", users.one, fiber.Map{
		"ownerId":    "someone-else",
		"entryType":  "FOOD",
		"title":      "Not mine",
		"occurredAt": "2025-03-03T08:15:00Z",
	})
	if response.StatusCode != http.StatusForbidden {
		t.Fatalf("expected foreign owner status 403, got %d", response.StatusCode)
	}
}

func TestCreateRejectsIDTakenByAnotherModel(t *testing.T) {
	t.Parallel()

	app, handler := newTestApp(t)
	users := signInJournalUsers(t, app, handler)

	response, body := doJSON(t, app, http.MethodPost, "/api/data/journal/Intervention", users.one, fiber.Map{
		"id":        "shared",
		"name":      "Zinc",
		"startDate": "2025-01-01T00:00:00Z",
	})
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected intervention status 201, got %d: %s", response.StatusCode, body)
	}

	response, body = doJSON(t, app, http.MethodPost, "/api/data/journal/JournalEntry", users.one, fiber.Map{
		"id":         "shared",
		"entryType":  "FOOD",
		"title":      "Collides",
		"occurredAt": "2025-03-03T08:15:00Z",
	})
	if response.StatusCode != http.StatusConflict {
		t.Fatalf("expected status 409 for an id used by another model, got %d: %s", response.StatusCode, body)
	}
}

func TestRelationsResolveBothDirections(t *testing.T) {
	t.Parallel()

	app, handler := newTestApp(t)
	users := signInJournalUsers(t, app, handler)
	entry := createJournalEntry(t, app, users.one, "Peanuts")
	entryID := entry["id"].(string)

	response, body := doJSON(t, app, http.MethodPost, "/api/data/journal/SymptomEntry", users.one, fiber.Map{
		"journalEntryId": entryID,
		"symptomType":    "SKIN",
		"severity":       "MODERATE",
		"onsetMinutes":   20,
	})
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected symptom create status 201, got %d: %s", response.StatusCode, body)
	}
	symptomID := decodeObject(t, body)["id"].(string)

	response, body = doJSON(t, app, http.MethodGet, "/api/data/journal/JournalEntry/"+entryID+"/symptoms", users.one, nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected hasMany status 200, got %d", response.StatusCode)
	}
	if string(body) == "null" || len(body) < 3 {
		t.Fatalf("expected one child, got %s", body)
	}

	response, body = doJSON(t, app, http.MethodGet, "/api/data/journal/SymptomEntry/"+symptomID+"/journalEntry", users.one, nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected belongsTo status 200, got %d", response.StatusCode)
	}
	if title := decodeObject(t, body)["title"]; title != "Peanuts" {
		t.Fatalf("expected parent entry, got %v", title)
	}

	response, _ = doJSON(t, app, http.MethodGet, "/api/data/journal/SymptomEntry/"+symptomID+"/unknown", users.one, nil)
	if response.StatusCode != http.StatusNotFound {
		t.Fatalf("expected unknown relation status 404, got %d", response.StatusCode)
	}
}

func TestDanglingParentResolvesToNull(t *testing.T) {
	t.Parallel()

	app, handler := newTestApp(t)
	users := signInJournalUsers(t, app, handler)

	response, body := doJSON(t, app, http.MethodPost, "/api/data/journal/SymptomEntry", users.one, fiber.Map{
		"journalEntryId": "does-not-exist",
		"symptomType":    "GI",
		"severity":       "MILD",
		"onsetMinutes":   5,
	})
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected dangling reference to be accepted, got %d: %s", response.StatusCode, body)
	}
	symptomID := decodeObject(t, body)["id"].(string)

	response, body = doJSON(t, app, http.MethodGet, "/api/data/journal/SymptomEntry/"+symptomID+"/journalEntry", users.one, nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", response.StatusCode)
	}
	if string(body) != "null" {
		t.Fatalf("expected null parent, got %s", body)
	}
}

func TestUnknownSchemaModelAndRecord(t *testing.T) {
	t.Parallel()

	app, handler := newTestApp(t)
	users := signInJournalUsers(t, app, handler)

	for _, path := range []string{
		"/api/data/nope/JournalEntry",
		"/api/data/journal/Nope",
		"/api/data/journal/JournalEntry/missing-id",
	} {
		response, _ := doJSON(t, app, http.MethodGet, path, users.one, nil)
		if response.StatusCode != http.StatusNotFound {
			t.Fatalf("GET %s expected status 404, got %d", path, response.StatusCode)
		}
	}
}

func TestDeleteReturnsRemovedRecord(t *testing.T) {
	t.Parallel()

	app, handler := newTestApp(t)
	users := signInJournalUsers(t, app, handler)
	entry := createJournalEntry(t, app, users.one, "Coffee")
	path := "/api/data/journal/JournalEntry/" + entry["id"].(string)

	response, body := doJSON(t, app, http.MethodDelete, path, users.one, nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected delete status 200, got %d", response.StatusCode)
	}
	if title := decodeObject(t, body)["title"]; title != "Coffee" {
		t.Fatalf("expected deleted document in response, got %v", title)
	}

	response, _ = doJSON(t, app, http.MethodGet, path, users.one, nil)
	if response.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404 after delete, got %d", response.StatusCode)
	}
}

func TestExposureSchemaSharesOwnershipRules(t *testing.T) {
	t.Parallel()

	app, handler := newTestApp(t)
	users := signInJournalUsers(t, app, handler)

	response, body := doJSON(t, app, http.MethodPost, "/api/data/exposure/FoodExposure", users.one, fiber.Map{
		"exposureType": "ENVIRONMENT",
		"name":         "Pollen",
		"exposedAt":    "2025-04-01T10:00:00Z",
	})
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected create status 201, got %d: %s", response.StatusCode, body)
	}
	path := "/api/data/exposure/FoodExposure/" + decodeObject(t, body)["id"].(string)

	response, _ = doJSON(t, app, http.MethodGet, path, users.two, nil)
	if response.StatusCode != http.StatusForbidden {
		t.Fatalf("expected other user status 403, got %d", response.StatusCode)
	}
	response, _ = doJSON(t, app, http.MethodGet, path, users.admin, nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected admin status 200, got %d", response.StatusCode)
	}
}

func TestSchemasEndpointDescribesModels(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t)

	response, body := doJSON(t, app, http.MethodGet, "/api/schemas", "", nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", response.StatusCode)
	}
	schemas, _ := decodeObject(t, body)["schemas"].([]any)
	if len(schemas) != 2 {
		t.Fatalf("expected two schemas, got %d", len(schemas))
	}

	response, body = doJSON(t, app, http.MethodGet, "/api/schemas/journal/SymptomEntry", "", nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", response.StatusCode)
	}
	policy, _ := decodeObject(t, body)["policy"].([]any)
	if len(policy) != 4 {
		t.Fatalf("expected model and schema rules, got %d", len(policy))
	}
}
