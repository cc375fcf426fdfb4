package schema

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func journalModel(t *testing.T, name string) *Model {
	t.Helper()
	model, err := Default().Resolve("journal", name)
	if err != nil {
		t.Fatalf("Resolve(%s) unexpected error: %v", name, err)
	}
	return model
}

func validSymptom() map[string]any {
	return map[string]any{
		"ownerId":        "u1",
		"journalEntryId": "e-1",
		"symptomType":    "GI",
		"severity":       "MODERATE",
		"onsetMinutes":   float64(45),
	}
}

func requireValidationError(t *testing.T, err error) *ValidationError {
	t.Helper()
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	return validationErr
}

func TestValidateNormalizesCompleteDocument(t *testing.T) {
	t.Parallel()

	entry := journalModel(t, "JournalEntry")
	normalized, err := entry.Validate(map[string]any{
		"ownerId":            "u1",
		"entryType":          "FOOD",
		"title":              "Oat porridge",
		"occurredAt":         "2025-03-03T08:15:00+02:00",
		"temperatureCelsius": float64(21.5),
		"airQualityIndex":    float64(42),
		"tags":               []any{"breakfast", "gluten"},
		"notes":              nil,
	})
	if err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	if normalized["occurredAt"] != "2025-03-03T06:15:00Z" {
		t.Fatalf("unexpected occurredAt %v", normalized["occurredAt"])
	}
	if normalized["airQualityIndex"] != int64(42) {
		t.Fatalf("expected integer airQualityIndex, got %#v", normalized["airQualityIndex"])
	}
	if normalized["temperatureCelsius"] != 21.5 {
		t.Fatalf("unexpected temperatureCelsius %#v", normalized["temperatureCelsius"])
	}
	if !reflect.DeepEqual(normalized["tags"], []any{"breakfast", "gluten"}) {
		t.Fatalf("unexpected tags %#v", normalized["tags"])
	}
	if _, ok := normalized["notes"]; ok {
		t.Fatal("expected null notes to be dropped")
	}
}

func TestValidateRejectsSeverityOutsideEnum(t *testing.T) {
	t.Parallel()

	document := validSymptom()
	document["severity"] = "CATASTROPHIC"

	_, err := journalModel(t, "SymptomEntry").Validate(document)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	validationErr := requireValidationError(t, err)
	if validationErr.Field != "severity" {
		t.Fatalf("unexpected field %q", validationErr.Field)
	}
	if !strings.Contains(validationErr.Reason, "MILD, MODERATE, SEVERE") {
		t.Fatalf("unexpected reason %q", validationErr.Reason)
	}
}

func TestValidateRequiresFields(t *testing.T) {
	t.Parallel()

	for _, field := range []string{"ownerId", "journalEntryId", "symptomType", "severity", "onsetMinutes"} {
		document := validSymptom()
		delete(document, field)

		_, err := journalModel(t, "SymptomEntry").Validate(document)
		validationErr := requireValidationError(t, err)
		if validationErr.Field != field || validationErr.Reason != "is required" {
			t.Fatalf("%s: unexpected validation error %#v", field, validationErr)
		}
	}
}

func TestValidateRejectsEmptyOwner(t *testing.T) {
	t.Parallel()

	document := validSymptom()
	document["ownerId"] = "  "
	if _, err := journalModel(t, "SymptomEntry").Validate(document); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestValidateTypeChecks(t *testing.T) {
	t.Parallel()

	cases := map[string]any{
		"onsetMinutes":        float64(1.5),
		"durationMinutes":     "ten",
		"temperatureChange":   true,
		"breathingDifficulty": "yes",
		"notes":               float64(3),
	}
	for field, value := range cases {
		document := validSymptom()
		document[field] = value
		if _, err := journalModel(t, "SymptomEntry").Validate(document); !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", field, err)
		}
	}
}

func TestValidateRejectsUnknownAndRelationshipFields(t *testing.T) {
	t.Parallel()

	document := validSymptom()
	document["mood"] = "fine"
	if _, err := journalModel(t, "SymptomEntry").Validate(document); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown field, got %v", err)
	}

	document = validSymptom()
	document["journalEntry"] = map[string]any{"id": "e-1"}
	_, err := journalModel(t, "SymptomEntry").Validate(document)
	validationErr := requireValidationError(t, err)
	if !strings.Contains(validationErr.Reason, "relationship") {
		t.Fatalf("unexpected reason %q", validationErr.Reason)
	}
}

func TestValidateAppliesDefaults(t *testing.T) {
	t.Parallel()

	normalized, err := journalModel(t, "Intervention").Validate(map[string]any{
		"ownerId":   "u1",
		"name":      "Magnesium",
		"startDate": "2025-01-01T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	if normalized["active"] != true {
		t.Fatalf("expected active to default to true, got %#v", normalized["active"])
	}
}

func TestValidateRejectsMalformedDatetimeAndListItems(t *testing.T) {
	t.Parallel()

	intervention := journalModel(t, "Intervention")
	documents := map[string]map[string]any{
		"bad datetime":    {"ownerId": "u1", "name": "Zinc", "startDate": "yesterday"},
		"mixed tag items": {"ownerId": "u1", "name": "Zinc", "startDate": "2025-01-01T00:00:00Z", "tags": []any{"a", float64(1)}},
		"tags not a list": {"ownerId": "u1", "name": "Zinc", "startDate": "2025-01-01T00:00:00Z", "tags": "a"},
	}
	for name, document := range documents {
		if _, err := intervention.Validate(document); !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", name, err)
		}
	}
}
