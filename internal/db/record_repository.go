package db

import (
	"github.com/terraincognita07/kgjournal/internal/models"
	"gorm.io/gorm"
)

type RecordRepository struct {
	database *gorm.DB
}

func NewRecordRepository(database *gorm.DB) *RecordRepository {
	return &RecordRepository{database: database}
}

func (repo *RecordRepository) modelQuery(schemaName string, modelName string) *gorm.DB {
	return repo.database.Model(&models.Record{}).Where("schema_name = ? AND model = ?", schemaName, modelName)
}

func (repo *RecordRepository) Create(record *models.Record) error {
	return repo.database.Create(record).Error
}

func (repo *RecordRepository) Save(record *models.Record) error {
	return repo.database.Save(record).Error
}

func (repo *RecordRepository) Delete(record *models.Record) error {
	return repo.database.Delete(record).Error
}

// FindByID returns found=false rather than an error when no row matches.
func (repo *RecordRepository) FindByID(schemaName string, modelName string, recordID string) (models.Record, bool, error) {
	record := models.Record{}
	result := repo.modelQuery(schemaName, modelName).Where("id = ?", recordID).Limit(1).Find(&record)
	if result.Error != nil {
		return models.Record{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Record{}, false, nil
	}
	return record, true, nil
}

// ExistsByID reports whether any record of any model already uses recordID.
// Ids are unique across the whole table.
func (repo *RecordRepository) ExistsByID(recordID string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.Record{}).Where("id = ?", recordID).Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *RecordRepository) List(schemaName string, modelName string) ([]models.Record, error) {
	records := make([]models.Record, 0)
	if err := repo.modelQuery(schemaName, modelName).Order("created_at ASC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (repo *RecordRepository) ListByOwner(schemaName string, modelName string, ownerID string) ([]models.Record, error) {
	records := make([]models.Record, 0)
	if err := repo.modelQuery(schemaName, modelName).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (repo *RecordRepository) ListByParent(schemaName string, modelName string, parentID string) ([]models.Record, error) {
	records := make([]models.Record, 0)
	if err := repo.modelQuery(schemaName, modelName).
		Where("parent_id = ?", parentID).
		Order("created_at ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (repo *RecordRepository) ListAllByOwner(ownerID string) ([]models.Record, error) {
	records := make([]models.Record, 0)
	if err := repo.database.
		Where("owner_id = ?", ownerID).
		Order("schema_name ASC, model ASC, created_at ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
