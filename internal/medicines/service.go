package medicines

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/angelmondragon/medfinder-backend/pkg/db/models"
	"github.com/angelmondragon/medfinder-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/medfinder-backend/pkg/errors"
	"github.com/angelmondragon/medfinder-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes stock search and alternative suggestions.
type Service interface {
	Search(ctx context.Context, input SearchInput) (*SearchResult, error)
	Alternatives(ctx context.Context, input AlternativesInput) ([]Alternative, error)
}

type service struct {
	repo Repository
}

// NewService builds the medicines service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("medicines repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Search(ctx context.Context, input SearchInput) (*SearchResult, error) {
	keyword := strings.TrimSpace(input.Keyword)
	if keyword == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "keyword is required").
			WithDetails([]string{"keyword is required"})
	}
	if input.SortOrder == "" {
		input.SortOrder = enums.SortOrderHighestStock
	}

	matches, err := s.repo.SearchByName(ctx, keyword)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search medicines")
	}

	result := &SearchResult{Results: []SearchResultItem{}, Alternatives: []Alternative{}}
	if len(matches) == 0 {
		alternatives, err := s.alternativesFor(ctx, nil)
		if err != nil {
			return nil, err
		}
		result.Alternatives = alternatives
		result.Message = messagePtr(MessageNoMatch)
		return result, nil
	}

	byID := make(map[uuid.UUID]models.Medicine, len(matches))
	ids := make([]uuid.UUID, 0, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
		ids = append(ids, m.ID)
	}

	stocks, err := s.repo.ListStocksForMedicines(ctx, ids, input.InStockOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock for medicines")
	}

	nearest := input.SortOrder == enums.SortOrderNearest && input.Origin != nil
	for _, stock := range stocks {
		if input.InStockOnly && stock.Quantity <= 0 {
			continue
		}
		medicine, ok := byID[stock.MedicineID]
		if !ok || stock.Pharmacy == nil {
			continue
		}
		item := SearchResultItem{
			MedicineID:       medicine.ID,
			MedicineName:     medicine.Name,
			Category:         medicine.Category,
			ActiveIngredient: medicine.ActiveIngredient,
			PharmacyID:       stock.Pharmacy.ID,
			PharmacyName:     stock.Pharmacy.Name,
			Latitude:         stock.Pharmacy.Latitude,
			Longitude:        stock.Pharmacy.Longitude,
			Quantity:         stock.Quantity,
			Availability:     enums.AvailabilityFor(stock.Quantity),
		}
		if nearest {
			d := input.Origin.DistanceKm(types.GeoPoint{Lat: stock.Pharmacy.Latitude, Lng: stock.Pharmacy.Longitude})
			item.DistanceKm = &d
		}
		result.Results = append(result.Results, item)
	}

	if nearest {
		sortByDistance(result.Results)
	} else {
		sortByQuantity(result.Results)
	}

	if len(result.Results) == 0 || allOutOfStock(result.Results) {
		base := matches[0]
		alternatives, err := s.alternativesFor(ctx, &base)
		if err != nil {
			return nil, err
		}
		result.Alternatives = alternatives
		if len(result.Results) == 0 {
			result.Message = messagePtr(MessageNoMatch)
		} else {
			result.Message = messagePtr(MessageOutOfStock)
		}
	}

	return result, nil
}

func (s *service) Alternatives(ctx context.Context, input AlternativesInput) ([]Alternative, error) {
	var base *models.Medicine
	switch {
	case input.MedicineID != nil && *input.MedicineID != uuid.Nil:
		found, err := s.repo.FindByID(ctx, *input.MedicineID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load base medicine")
		}
		base = found
	case strings.TrimSpace(input.Keyword) != "":
		matches, err := s.repo.SearchByName(ctx, strings.TrimSpace(input.Keyword))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve base medicine")
		}
		if len(matches) > 0 {
			base = &matches[0]
		}
	}
	return s.alternativesFor(ctx, base)
}

// alternativesFor ranks same-category or same-ingredient medicines first and
// pads with the global trending list. The base never appears in the result.
func (s *service) alternativesFor(ctx context.Context, base *models.Medicine) ([]Alternative, error) {
	alternatives := make([]Alternative, 0, maxAlternatives)
	exclude := []uuid.UUID{}

	if base != nil {
		exclude = append(exclude, base.ID)
		related, err := s.repo.ListRelated(ctx, *base, maxAlternatives)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load related medicines")
		}
		for _, m := range related {
			alternatives = append(alternatives, toAlternative(m))
			exclude = append(exclude, m.ID)
		}
	}

	if len(alternatives) < maxAlternatives {
		fallback, err := s.repo.ListTopTrending(ctx, exclude, maxAlternatives-len(alternatives))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trending medicines")
		}
		for _, m := range fallback {
			alternatives = append(alternatives, toAlternative(m))
		}
	}

	return alternatives, nil
}

func sortByDistance(items []SearchResultItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].DistanceKm, items[j].DistanceKm
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}

func sortByQuantity(items []SearchResultItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Quantity > items[j].Quantity
	})
}

func allOutOfStock(items []SearchResultItem) bool {
	for _, item := range items {
		if item.Quantity > 0 {
			return false
		}
	}
	return true
}

func messagePtr(msg string) *string {
	return &msg
}
