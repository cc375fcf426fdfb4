package models

import "time"

type Company struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null;index" json:"name"`
	Domain       string    `json:"domain"`
	ContactEmail string    `json:"contactEmail"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
}
