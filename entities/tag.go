package entities

import (
	"github.com/google/uuid"
)

type Tag struct {
	ID    uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name  string    `gorm:"uniqueIndex" json:"name"`
	Color string    `gorm:"uniqueIndex" json:"color"` // hex string, e.g. #49B64E
	Slug  string    `gorm:"uniqueIndex" json:"slug"`

	Timestamp
}
