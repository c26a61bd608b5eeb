package medicines

import (
	"github.com/angelmondragon/medfinder-backend/pkg/db/models"
	"github.com/angelmondragon/medfinder-backend/pkg/enums"
	"github.com/angelmondragon/medfinder-backend/pkg/types"
	"github.com/google/uuid"
)

const (
	MessageNoMatch    = "No matching medicine found."
	MessageOutOfStock = "All matching medicines are out of stock."

	maxAlternatives = 3
)

// SearchInput captures a stock search request.
type SearchInput struct {
	Keyword     string
	InStockOnly bool
	SortOrder   enums.SortOrder
	Origin      *types.GeoPoint
}

// SearchResultItem is one (medicine, pharmacy) stock line.
type SearchResultItem struct {
	MedicineID       uuid.UUID          `json:"medicine_id"`
	MedicineName     string             `json:"medicine_name"`
	Category         string             `json:"category"`
	ActiveIngredient string             `json:"active_ingredient"`
	PharmacyID       uuid.UUID          `json:"pharmacy_id"`
	PharmacyName     string             `json:"pharmacy_name"`
	Latitude         float64            `json:"latitude"`
	Longitude        float64            `json:"longitude"`
	Quantity         int                `json:"quantity"`
	Availability     enums.Availability `json:"availability"`
	DistanceKm       *float64           `json:"distance_km,omitempty"`
}

// SearchResult is the full search response.
type SearchResult struct {
	Results      []SearchResultItem `json:"results"`
	Alternatives []Alternative      `json:"alternatives"`
	Message      *string            `json:"message,omitempty"`
}

// Alternative is a suggested substitute medicine.
type Alternative struct {
	MedicineID       uuid.UUID `json:"medicine_id"`
	Name             string    `json:"name"`
	Category         string    `json:"category"`
	ActiveIngredient string    `json:"active_ingredient"`
	TrendingScore    int       `json:"trending_score"`
}

// AlternativesInput resolves the base medicine by id, or by keyword when no id is given.
type AlternativesInput struct {
	MedicineID *uuid.UUID
	Keyword    string
}

func toAlternative(m models.Medicine) Alternative {
	return Alternative{
		MedicineID:       m.ID,
		Name:             m.Name,
		Category:         m.Category,
		ActiveIngredient: m.ActiveIngredient,
		TrendingScore:    m.TrendingScore,
	}
}
