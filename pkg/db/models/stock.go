package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Stock is the on-hand quantity of one medicine at one pharmacy. Version is
// bumped on every write and guards conditional updates.
type Stock struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	PharmacyID uuid.UUID `gorm:"column:pharmacy_id;type:uuid;not null;uniqueIndex:ux_stocks_pharmacy_medicine"`
	MedicineID uuid.UUID `gorm:"column:medicine_id;type:uuid;not null;uniqueIndex:ux_stocks_pharmacy_medicine;index"`
	Quantity   int       `gorm:"column:quantity;not null;default:0;check:chk_stocks_quantity,quantity >= 0"`
	Version    int64     `gorm:"column:version;not null;default:1"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Pharmacy *Pharmacy `gorm:"foreignKey:PharmacyID;constraint:OnDelete:CASCADE"`
	Medicine *Medicine `gorm:"foreignKey:MedicineID;constraint:OnDelete:CASCADE"`
}

func (s *Stock) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Version == 0 {
		s.Version = 1
	}
	return nil
}
