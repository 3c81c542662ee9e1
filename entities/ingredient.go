package entities

import (
	"github.com/google/uuid"
)

type Ingredient struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name            string    `gorm:"uniqueIndex:idx_name_measurement_unit" json:"name"`
	MeasurementUnit string    `gorm:"uniqueIndex:idx_name_measurement_unit" json:"measurement_unit"`

	Timestamp
}
