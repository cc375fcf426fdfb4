package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/kgjournal/internal/authz"
	"github.com/terraincognita07/kgjournal/internal/logging"
	"github.com/terraincognita07/kgjournal/internal/models"
	"github.com/terraincognita07/kgjournal/internal/schema"
)

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrRecordExists     = errors.New("record already exists")
	ErrUnknownRelation  = errors.New("unknown relation")
	ErrRecordIDMismatch = errors.New("record id mismatch")
)

// readOnlyFields are returned in documents but never accepted from clients.
var readOnlyFields = []string{schema.PrimaryKey, "createdAt", "updatedAt"}

type RecordRepository interface {
	Create(record *models.Record) error
	Save(record *models.Record) error
	Delete(record *models.Record) error
	FindByID(schemaName string, modelName string, recordID string) (models.Record, bool, error)
	ExistsByID(recordID string) (bool, error)
	List(schemaName string, modelName string) ([]models.Record, error)
	ListByOwner(schemaName string, modelName string, ownerID string) ([]models.Record, error)
	ListByParent(schemaName string, modelName string, parentID string) ([]models.Record, error)
	ListAllByOwner(ownerID string) ([]models.Record, error)
}

// RecordService is the generated data API: CRUD and relationship reads for
// every declared model, authorized per record.
type RecordService struct {
	registry *schema.Registry
	records  RecordRepository
	logger   *slog.Logger
	now      func() time.Time
}

func NewRecordService(registry *schema.Registry, records RecordRepository, logger *slog.Logger) *RecordService {
	return &RecordService{
		registry: registry,
		records:  records,
		logger:   logging.OrDiscard(logger),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (service *RecordService) Registry() *schema.Registry {
	return service.registry
}

func (service *RecordService) Create(principal authz.Principal, schemaName string, modelName string, payload map[string]any) (map[string]any, error) {
	model, err := service.registry.Resolve(schemaName, modelName)
	if err != nil {
		return nil, err
	}

	document := copyDocument(payload)
	recordID, err := clientRecordID(model, document)
	if err != nil {
		return nil, err
	}
	stripReadOnlyFields(document)
	if value, present := document[schema.OwnerField]; !present || value == nil {
		if principal.Subject != "" {
			document[schema.OwnerField] = principal.Subject
		}
	}

	normalized, err := model.Validate(document)
	if err != nil {
		return nil, err
	}
	ownerID, _ := normalized[schema.OwnerField].(string)
	if err := model.Policy().Authorize(principal, authz.Create, authz.Resource{Model: model.Name, OwnerID: ownerID}); err != nil {
		return nil, err
	}

	if recordID == "" {
		recordID = uuid.NewString()
	} else {
		exists, err := service.records.ExistsByID(recordID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: %s %s", ErrRecordExists, model.Name, recordID)
		}
	}

	now := service.now()
	record := models.Record{
		ID:        recordID,
		Schema:    schemaName,
		Model:     model.Name,
		OwnerID:   ownerID,
		ParentID:  parentReference(model, normalized),
		Data:      normalized,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := service.records.Create(&record); err != nil {
		return nil, err
	}
	service.logger.Debug("record created", "schema", schemaName, "model", model.Name, "id", record.ID, "owner", ownerID)
	return record.Document(), nil
}

func (service *RecordService) Get(principal authz.Principal, schemaName string, modelName string, recordID string) (map[string]any, error) {
	model, record, err := service.load(schemaName, modelName, recordID)
	if err != nil {
		return nil, err
	}
	if err := model.Policy().Authorize(principal, authz.Read, resourceOf(model, record)); err != nil {
		return nil, err
	}
	return record.Document(), nil
}

// List returns every record of the model the caller may read.
func (service *RecordService) List(principal authz.Principal, schemaName string, modelName string) ([]map[string]any, error) {
	model, err := service.registry.Resolve(schemaName, modelName)
	if err != nil {
		return nil, err
	}

	records, err := service.readable(principal, model, func() ([]models.Record, error) {
		return service.records.List(schemaName, model.Name)
	}, func(ownerID string) ([]models.Record, error) {
		return service.records.ListByOwner(schemaName, model.Name, ownerID)
	})
	if err != nil {
		return nil, err
	}
	return documents(records), nil
}

// Update merges patch into the stored document. A nil value removes the field.
// The merged document is validated as a whole.
func (service *RecordService) Update(principal authz.Principal, schemaName string, modelName string, recordID string, patch map[string]any) (map[string]any, error) {
	model, record, err := service.load(schemaName, modelName, recordID)
	if err != nil {
		return nil, err
	}
	policy := model.Policy()
	if err := policy.Authorize(principal, authz.Update, resourceOf(model, record)); err != nil {
		return nil, err
	}

	changes := copyDocument(patch)
	patchID, err := clientRecordID(model, changes)
	if err != nil {
		return nil, err
	}
	if patchID != "" && patchID != record.ID {
		return nil, fmt.Errorf("%w: body id %q does not match %q", ErrRecordIDMismatch, patchID, record.ID)
	}
	stripReadOnlyFields(changes)

	merged := copyDocument(record.Data)
	for name, value := range changes {
		if value == nil {
			delete(merged, name)
			continue
		}
		merged[name] = value
	}

	normalized, err := model.Validate(merged)
	if err != nil {
		return nil, err
	}
	ownerID, _ := normalized[schema.OwnerField].(string)
	if ownerID != record.OwnerID {
		if err := policy.Authorize(principal, authz.Update, authz.Resource{Model: model.Name, OwnerID: ownerID}); err != nil {
			return nil, err
		}
	}

	record.OwnerID = ownerID
	record.ParentID = parentReference(model, normalized)
	record.Data = normalized
	record.UpdatedAt = service.now()
	if err := service.records.Save(&record); err != nil {
		return nil, err
	}
	return record.Document(), nil
}

func (service *RecordService) Delete(principal authz.Principal, schemaName string, modelName string, recordID string) (map[string]any, error) {
	model, record, err := service.load(schemaName, modelName, recordID)
	if err != nil {
		return nil, err
	}
	if err := model.Policy().Authorize(principal, authz.Delete, resourceOf(model, record)); err != nil {
		return nil, err
	}
	if err := service.records.Delete(&record); err != nil {
		return nil, err
	}
	service.logger.Debug("record deleted", "schema", schemaName, "model", model.Name, "id", record.ID)
	return record.Document(), nil
}

// Related resolves a relationship field. hasMany yields the readable children;
// belongsTo yields the parent document or nil when the reference dangles.
func (service *RecordService) Related(principal authz.Principal, schemaName string, modelName string, recordID string, relationName string) (any, error) {
	model, record, err := service.load(schemaName, modelName, recordID)
	if err != nil {
		return nil, err
	}
	if err := model.Policy().Authorize(principal, authz.Read, resourceOf(model, record)); err != nil {
		return nil, err
	}

	relation, ok := model.Relation(relationName)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownRelation, model.Name, relationName)
	}
	target, err := service.registry.Resolve(schemaName, relation.Target)
	if err != nil {
		return nil, err
	}

	switch relation.Kind {
	case schema.HasMany:
		children, err := service.readable(principal, target, func() ([]models.Record, error) {
			return service.records.ListByParent(schemaName, target.Name, record.ID)
		}, func(ownerID string) ([]models.Record, error) {
			all, err := service.records.ListByParent(schemaName, target.Name, record.ID)
			if err != nil {
				return nil, err
			}
			owned := make([]models.Record, 0, len(all))
			for _, child := range all {
				if child.OwnerID == ownerID {
					owned = append(owned, child)
				}
			}
			return owned, nil
		})
		if err != nil {
			return nil, err
		}
		return documents(children), nil
	default:
		reference, _ := record.Data[relation.ReferenceField].(string)
		if reference == "" {
			return nil, nil
		}
		parent, found, err := service.records.FindByID(schemaName, target.Name, reference)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, nil
		}
		if !target.Policy().Evaluate(principal, authz.Read, resourceOf(target, parent)).Allowed {
			return nil, nil
		}
		return parent.Document(), nil
	}
}

// ListReadableByOwner returns every record owned by ownerID across all
// schemas that the caller may read, grouped as schema/model.
func (service *RecordService) ListReadableByOwner(principal authz.Principal, ownerID string) (map[string][]map[string]any, error) {
	records, err := service.records.ListAllByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]map[string]any)
	for _, record := range records {
		model, err := service.registry.Resolve(record.Schema, record.Model)
		if err != nil {
			service.logger.Warn("skipping record of undeclared model", "schema", record.Schema, "model", record.Model, "id", record.ID)
			continue
		}
		if !model.Policy().Evaluate(principal, authz.Read, resourceOf(model, record)).Allowed {
			continue
		}
		key := record.Schema + "/" + record.Model
		grouped[key] = append(grouped[key], record.Document())
	}
	return grouped, nil
}

func (service *RecordService) load(schemaName string, modelName string, recordID string) (*schema.Model, models.Record, error) {
	model, err := service.registry.Resolve(schemaName, modelName)
	if err != nil {
		return nil, models.Record{}, err
	}
	recordID = strings.TrimSpace(recordID)
	if recordID == "" {
		return nil, models.Record{}, fmt.Errorf("%w: %s with empty id", ErrRecordNotFound, model.Name)
	}
	record, found, err := service.records.FindByID(schemaName, model.Name, recordID)
	if err != nil {
		return nil, models.Record{}, err
	}
	if !found {
		return nil, models.Record{}, fmt.Errorf("%w: %s %s", ErrRecordNotFound, model.Name, recordID)
	}
	return model, record, nil
}

// readable applies the model policy to a listing. Callers granted read on
// every record get the full listing, owners get their own records and anyone
// else gets nothing.
func (service *RecordService) readable(principal authz.Principal, model *schema.Model, all func() ([]models.Record, error), owned func(ownerID string) ([]models.Record, error)) ([]models.Record, error) {
	policy := model.Policy()
	if policy.GrantsRegardlessOfOwner(principal, authz.Read, model.Name) {
		return all()
	}
	if strings.TrimSpace(principal.Subject) == "" {
		return []models.Record{}, nil
	}

	candidates, err := owned(principal.Subject)
	if err != nil {
		return nil, err
	}
	visible := make([]models.Record, 0, len(candidates))
	for _, record := range candidates {
		if policy.Evaluate(principal, authz.Read, resourceOf(model, record)).Allowed {
			visible = append(visible, record)
		}
	}
	return visible, nil
}

func resourceOf(model *schema.Model, record models.Record) authz.Resource {
	return authz.Resource{Model: model.Name, OwnerID: record.OwnerID}
}

func parentReference(model *schema.Model, document map[string]any) string {
	field, ok := model.ParentReference()
	if !ok {
		return ""
	}
	reference, _ := document[field].(string)
	return reference
}

func clientRecordID(model *schema.Model, document map[string]any) (string, error) {
	value, present := document[schema.PrimaryKey]
	if !present || value == nil {
		return "", nil
	}
	recordID, ok := value.(string)
	if !ok || strings.TrimSpace(recordID) == "" {
		return "", &schema.ValidationError{Model: model.Name, Field: schema.PrimaryKey, Reason: "must be a non-empty string"}
	}
	return strings.TrimSpace(recordID), nil
}

func stripReadOnlyFields(document map[string]any) {
	for _, name := range readOnlyFields {
		delete(document, name)
	}
}

func copyDocument(document map[string]any) map[string]any {
	copied := make(map[string]any, len(document))
	for name, value := range document {
		copied[name] = value
	}
	return copied
}

func documents(records []models.Record) []map[string]any {
	result := make([]map[string]any, 0, len(records))
	for index := range records {
		result = append(result, records[index].Document())
	}
	return result
}
