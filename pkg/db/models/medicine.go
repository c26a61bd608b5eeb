package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Medicine is the catalog entry searched by name, category, and ingredient.
type Medicine struct {
	ID               uuid.UUID     `gorm:"column:id;type:uuid;primaryKey"`
	Name             string        `gorm:"column:name;type:text;not null;index"`
	Category         string        `gorm:"column:category;type:text;not null;index"`
	ActiveIngredient string        `gorm:"column:active_ingredient;type:text;not null;index"`
	TrendingScore    int           `gorm:"column:trending_score;not null;default:0"`
	Tags             []MedicineTag `gorm:"foreignKey:MedicineID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time     `gorm:"column:created_at;autoCreateTime"`
}

func (m *Medicine) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// MedicineTag is a free-form search label attached to a medicine.
type MedicineTag struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	MedicineID uuid.UUID `gorm:"column:medicine_id;type:uuid;not null;index"`
	Tag        string    `gorm:"column:tag;type:text;not null"`
}

func (t *MedicineTag) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
