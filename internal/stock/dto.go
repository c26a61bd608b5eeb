package stock

import (
	"time"

	"github.com/angelmondragon/medfinder-backend/pkg/db/models"
	"github.com/angelmondragon/medfinder-backend/pkg/enums"
	"github.com/google/uuid"
)

// UpdateStockInput is the admin request to overwrite a stock quantity.
type UpdateStockInput struct {
	PharmacyID uuid.UUID `json:"pharmacy_id" validate:"required"`
	MedicineID uuid.UUID `json:"medicine_id" validate:"required"`
	Quantity   *int      `json:"quantity" validate:"required,gte=0"`
}

// EntryDTO is one stock row as shown on the admin stock screen.
type EntryDTO struct {
	ID           uuid.UUID          `json:"id"`
	PharmacyID   uuid.UUID          `json:"pharmacy_id"`
	PharmacyName string             `json:"pharmacy_name"`
	MedicineID   uuid.UUID          `json:"medicine_id"`
	MedicineName string             `json:"medicine_name"`
	Quantity     int                `json:"quantity"`
	Availability enums.Availability `json:"availability"`
	Version      int64              `json:"version"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

func entryFromModel(row models.Stock) EntryDTO {
	entry := EntryDTO{
		ID:           row.ID,
		PharmacyID:   row.PharmacyID,
		MedicineID:   row.MedicineID,
		Quantity:     row.Quantity,
		Availability: enums.AvailabilityFor(row.Quantity),
		Version:      row.Version,
		UpdatedAt:    row.UpdatedAt,
	}
	if row.Pharmacy != nil {
		entry.PharmacyName = row.Pharmacy.Name
	}
	if row.Medicine != nil {
		entry.MedicineName = row.Medicine.Name
	}
	return entry
}
