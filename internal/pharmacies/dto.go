package pharmacies

import (
	"github.com/angelmondragon/medfinder-backend/pkg/db/models"
	"github.com/angelmondragon/medfinder-backend/pkg/enums"
	"github.com/google/uuid"
)

// PharmacyDTO is the public shape of a pharmacy with its stock lines.
type PharmacyDTO struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Stocks    []StockLineDTO `json:"stocks"`
}

// StockLineDTO is one medicine's quantity at a pharmacy.
type StockLineDTO struct {
	MedicineID   uuid.UUID          `json:"medicine_id"`
	MedicineName string             `json:"medicine_name"`
	Quantity     int                `json:"quantity"`
	Availability enums.Availability `json:"availability"`
}

// FromModel maps a pharmacy with preloaded stocks into its DTO.
func FromModel(p *models.Pharmacy) *PharmacyDTO {
	if p == nil {
		return nil
	}
	stocks := make([]StockLineDTO, 0, len(p.Stocks))
	for _, s := range p.Stocks {
		line := StockLineDTO{
			MedicineID:   s.MedicineID,
			Quantity:     s.Quantity,
			Availability: enums.AvailabilityFor(s.Quantity),
		}
		if s.Medicine != nil {
			line.MedicineName = s.Medicine.Name
		}
		stocks = append(stocks, line)
	}
	return &PharmacyDTO{
		ID:        p.ID,
		Name:      p.Name,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Stocks:    stocks,
	}
}
