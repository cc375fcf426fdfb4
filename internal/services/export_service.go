package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/kgjournal/internal/authz"
	"github.com/terraincognita07/kgjournal/internal/schema"
)

const exportDateLayout = "2006-01-02"

type ExportRecordReader interface {
	Registry() *schema.Registry
	List(principal authz.Principal, schemaName string, modelName string) ([]map[string]any, error)
	ListReadableByOwner(principal authz.Principal, ownerID string) (map[string][]map[string]any, error)
}

// ExportSink stores a finished export and returns where it went.
type ExportSink interface {
	Put(ctx context.Context, name string, contentType string, body []byte) (string, error)
}

type ExportService struct {
	records ExportRecordReader
}

type ExportDocument struct {
	ExportedAt  string                      `json:"exported_at"`
	Owner       string                      `json:"owner"`
	Total       int                         `json:"total"`
	Collections map[string][]map[string]any `json:"collections"`
}

func NewExportService(records ExportRecordReader) *ExportService {
	return &ExportService{records: records}
}

// BuildJSON collects every record owned by ownerID that the caller may read.
func (service *ExportService) BuildJSON(principal authz.Principal, ownerID string, now time.Time) (ExportDocument, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		ownerID = principal.Subject
	}
	collections, err := service.records.ListReadableByOwner(principal, ownerID)
	if err != nil {
		return ExportDocument{}, err
	}

	total := 0
	for _, documents := range collections {
		total += len(documents)
	}
	return ExportDocument{
		ExportedAt:  now.UTC().Format(time.RFC3339),
		Owner:       ownerID,
		Total:       total,
		Collections: collections,
	}, nil
}

func (service *ExportService) MarshalJSON(document ExportDocument) ([]byte, error) {
	return json.MarshalIndent(document, "", "  ")
}

// BuildCSV renders one model as a table: id, ownerId, the declared fields in
// order, then the timestamps. List values are joined with "; ".
func (service *ExportService) BuildCSV(principal authz.Principal, schemaName string, modelName string) ([]byte, error) {
	model, err := service.records.Registry().Resolve(schemaName, modelName)
	if err != nil {
		return nil, err
	}
	documents, err := service.records.List(principal, schemaName, model.Name)
	if err != nil {
		return nil, err
	}

	headers := []string{schema.PrimaryKey, schema.OwnerField}
	for _, field := range model.Fields {
		if field.Name == schema.PrimaryKey || field.Name == schema.OwnerField {
			continue
		}
		headers = append(headers, field.Name)
	}
	headers = append(headers, "createdAt", "updatedAt")

	var output bytes.Buffer
	writer := csv.NewWriter(&output)
	if err := writer.Write(headers); err != nil {
		return nil, err
	}
	for _, document := range documents {
		row := make([]string, 0, len(headers))
		for _, header := range headers {
			row = append(row, csvCell(document[header]))
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return output.Bytes(), nil
}

// WriteJSON builds the export and hands it to sink.
func (service *ExportService) WriteJSON(ctx context.Context, sink ExportSink, principal authz.Principal, ownerID string, now time.Time) (string, error) {
	document, err := service.BuildJSON(principal, ownerID, now)
	if err != nil {
		return "", err
	}
	body, err := service.MarshalJSON(document)
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}
	return sink.Put(ctx, ExportFilename(document.Owner, now, "json"), "application/json", body)
}

func ExportFilename(ownerID string, now time.Time, extension string) string {
	owner := strings.Map(func(char rune) rune {
		switch {
		case char >= 'a' && char <= 'z', char >= 'A' && char <= 'Z', char >= '0' && char <= '9', char == '-':
			return char
		default:
			return '_'
		}
	}, ownerID)
	if owner == "" {
		owner = "all"
	}
	return fmt.Sprintf("kgjournal-export-%s-%s.%s", owner, now.UTC().Format(exportDateLayout), extension)
}

func csvCell(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		if typed {
			return "Yes"
		}
		return "No"
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(typed, 10)
	case []any:
		parts := make([]string, 0, len(typed))
		for _, item := range typed {
			parts = append(parts, csvCell(item))
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(typed)
	}
}
