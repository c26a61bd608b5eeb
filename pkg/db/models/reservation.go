package models

import (
	"time"

	"github.com/angelmondragon/medfinder-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reservation is a user's request to hold a quantity of a medicine at a pharmacy.
type Reservation struct {
	ID              uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	UserID          uuid.UUID               `gorm:"column:user_id;type:uuid;not null;index"`
	PharmacyID      uuid.UUID               `gorm:"column:pharmacy_id;type:uuid;not null"`
	MedicineID      uuid.UUID               `gorm:"column:medicine_id;type:uuid;not null"`
	Quantity        int                     `gorm:"column:quantity;not null;check:chk_reservations_quantity,quantity > 0"`
	Status          enums.ReservationStatus `gorm:"column:status;type:text;not null;index"`
	RejectionReason *string                 `gorm:"column:rejection_reason;type:text"`
	Version         int64                   `gorm:"column:version;not null;default:1"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`

	User     *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Pharmacy *Pharmacy `gorm:"foreignKey:PharmacyID;constraint:OnDelete:RESTRICT"`
	Medicine *Medicine `gorm:"foreignKey:MedicineID;constraint:OnDelete:RESTRICT"`
}

func (r *Reservation) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = enums.ReservationStatusPending
	}
	if r.Version == 0 {
		r.Version = 1
	}
	return nil
}
