package models

import "time"

type Record struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	Schema    string         `gorm:"column:schema_name;not null;index:idx_records_model" json:"-"`
	Model     string         `gorm:"not null;index:idx_records_model" json:"-"`
	OwnerID   string         `gorm:"not null;index" json:"-"`
	ParentID  string         `gorm:"index" json:"-"`
	Data      map[string]any `gorm:"serializer:json" json:"-"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Document flattens the record into the shape the data API returns.
func (record *Record) Document() map[string]any {
	document := make(map[string]any, len(record.Data)+4)
	for key, value := range record.Data {
		document[key] = value
	}
	document["id"] = record.ID
	document["ownerId"] = record.OwnerID
	document["createdAt"] = record.CreatedAt.UTC().Format(time.RFC3339Nano)
	document["updatedAt"] = record.UpdatedAt.UTC().Format(time.RFC3339Nano)
	return document
}
