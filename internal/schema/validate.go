package schema

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var ErrValidation = errors.New("validation failed")

type ValidationError struct {
	Model  string
	Field  string
	Reason string
}

func (err *ValidationError) Error() string {
	if err.Field == "" {
		return fmt.Sprintf("%s: %s", err.Model, err.Reason)
	}
	return fmt.Sprintf("%s.%s %s", err.Model, err.Field, err.Reason)
}

func (err *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (model *Model) invalid(field string, reason string, args ...any) error {
	return &ValidationError{Model: model.Name, Field: field, Reason: fmt.Sprintf(reason, args...)}
}

// Validate checks a complete document against the model and returns a
// normalized copy: defaults applied, null optionals dropped, integers stored as
// int64 and datetimes rewritten as RFC 3339 UTC.
func (model *Model) Validate(document map[string]any) (map[string]any, error) {
	for name := range document {
		if _, ok := model.Field(name); ok {
			continue
		}
		if _, ok := model.Relation(name); ok {
			return nil, model.invalid(name, "is a relationship and cannot be written")
		}
		return nil, model.invalid(name, "is not a field of %s", model.Name)
	}

	normalized := make(map[string]any, len(model.Fields))
	for _, field := range model.Fields {
		value, present := document[field.Name]
		if !present || value == nil {
			if field.Default != nil {
				normalized[field.Name] = field.Default
				continue
			}
			if field.IsRequired && field.Name != PrimaryKey {
				return nil, model.invalid(field.Name, "is required")
			}
			continue
		}

		coerced, err := model.coerce(field, value)
		if err != nil {
			return nil, err
		}
		if field.IsRequired && field.Kind == KindString {
			if text, _ := coerced.(string); strings.TrimSpace(text) == "" {
				return nil, model.invalid(field.Name, "must not be empty")
			}
		}
		normalized[field.Name] = coerced
	}
	return normalized, nil
}

func (model *Model) coerce(field Field, value any) (any, error) {
	if !field.IsList {
		return model.coerceScalar(field, value)
	}

	items, ok := value.([]any)
	if !ok {
		if texts, isTexts := value.([]string); isTexts {
			items = make([]any, 0, len(texts))
			for _, item := range texts {
				items = append(items, item)
			}
		} else {
			return nil, model.invalid(field.Name, "must be a list")
		}
	}
	coerced := make([]any, 0, len(items))
	for _, item := range items {
		if item == nil {
			return nil, model.invalid(field.Name, "must not contain null")
		}
		element, err := model.coerceScalar(field, item)
		if err != nil {
			return nil, err
		}
		coerced = append(coerced, element)
	}
	return coerced, nil
}

func (model *Model) coerceScalar(field Field, value any) (any, error) {
	switch field.Kind {
	case KindID:
		text, ok := value.(string)
		if !ok || strings.TrimSpace(text) == "" {
			return nil, model.invalid(field.Name, "must be a non-empty id")
		}
		return text, nil
	case KindString:
		text, ok := value.(string)
		if !ok {
			return nil, model.invalid(field.Name, "must be a string")
		}
		return text, nil
	case KindBoolean:
		flag, ok := value.(bool)
		if !ok {
			return nil, model.invalid(field.Name, "must be a boolean")
		}
		return flag, nil
	case KindFloat:
		number, ok := toFloat(value)
		if !ok {
			return nil, model.invalid(field.Name, "must be a number")
		}
		return number, nil
	case KindInteger:
		number, ok := toFloat(value)
		if !ok || number != math.Trunc(number) || math.Abs(number) > math.MaxInt32 {
			return nil, model.invalid(field.Name, "must be an integer")
		}
		return int64(number), nil
	case KindDateTime:
		text, ok := value.(string)
		if !ok {
			return nil, model.invalid(field.Name, "must be an RFC 3339 datetime")
		}
		parsed, err := time.Parse(time.RFC3339, text)
		if err != nil {
			return nil, model.invalid(field.Name, "must be an RFC 3339 datetime")
		}
		return parsed.UTC().Format(time.RFC3339Nano), nil
	case KindEnum:
		text, ok := value.(string)
		enum, known := model.schema.enum(field.Enum)
		if !ok || !known || !enum.Contains(text) {
			return nil, model.invalid(field.Name, "must be one of %s", strings.Join(enum.Values, ", "))
		}
		return text, nil
	default:
		return nil, model.invalid(field.Name, "has unsupported type %s", field.Kind)
	}
}

func (schema *Schema) enum(name string) (Enum, bool) {
	if schema == nil {
		return Enum{}, false
	}
	return schema.Enum(name)
}

func toFloat(value any) (float64, bool) {
	switch number := value.(type) {
	case float64:
		return number, true
	case float32:
		return float64(number), true
	case int:
		return float64(number), true
	case int64:
		return float64(number), true
	case int32:
		return float64(number), true
	default:
		return 0, false
	}
}
