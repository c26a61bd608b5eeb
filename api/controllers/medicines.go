package controllers

import (
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/angelmondragon/medfinder-backend/api/responses"
	"github.com/angelmondragon/medfinder-backend/api/validators"
	"github.com/angelmondragon/medfinder-backend/internal/medicines"
	"github.com/angelmondragon/medfinder-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/medfinder-backend/pkg/errors"
	"github.com/angelmondragon/medfinder-backend/pkg/logger"
	"github.com/angelmondragon/medfinder-backend/pkg/types"
)

const maxKeywordLength = 200

// MedicinesSearch handles GET /medicines/search.
// Query: keyword (required), inStockOnly, sortBy (HighestStock|Nearest), latitude, longitude.
func MedicinesSearch(svc medicines.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := parseSearchInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Search(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func parseSearchInput(r *http.Request) (medicines.SearchInput, error) {
	var details []string
	q := r.URL.Query()

	keyword := validators.NormalizeText(q.Get("keyword"))
	if msg := keywordProblem(keyword); msg != "" {
		details = append(details, msg)
	}

	inStockOnly, err := validators.ParseQueryBool(r, "inStockOnly", false)
	if err != nil {
		details = append(details, detailsOf(err)...)
	}

	sortRaw := q.Get("sortBy")
	if sortRaw == "" {
		sortRaw = q.Get("sortOrder")
	}
	sortOrder, err := enums.ParseSortOrder(sortRaw)
	if err != nil {
		details = append(details, fmt.Sprintf("sortBy must be one of [%s %s]", enums.SortOrderHighestStock, enums.SortOrderNearest))
	}

	lat, err := validators.ParseQueryFloat(r, "latitude", -90, 90)
	if err != nil {
		details = append(details, detailsOf(err)...)
	}
	lng, err := validators.ParseQueryFloat(r, "longitude", -180, 180)
	if err != nil {
		details = append(details, detailsOf(err)...)
	}

	if sortOrder == enums.SortOrderNearest {
		if lat == nil && q.Get("latitude") == "" {
			details = append(details, "latitude is required when sorting by Nearest")
		}
		if lng == nil && q.Get("longitude") == "" {
			details = append(details, "longitude is required when sorting by Nearest")
		}
	}

	if len(details) > 0 {
		return medicines.SearchInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid search request").WithDetails(details)
	}

	input := medicines.SearchInput{
		Keyword:     keyword,
		InStockOnly: inStockOnly,
		SortOrder:   sortOrder,
	}
	if lat != nil && lng != nil {
		input.Origin = &types.GeoPoint{Lat: *lat, Lng: *lng}
	}
	return input, nil
}

// MedicineAlternatives handles GET /medicines/{medicineId}/alternatives.
func MedicineAlternatives(svc medicines.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "medicineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		alternatives, err := svc.Alternatives(r.Context(), medicines.AlternativesInput{MedicineID: &id})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, alternatives)
	}
}

// MedicineAlternativesByKeyword handles GET /medicines/alternatives?keyword=.
func MedicineAlternativesByKeyword(svc medicines.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keyword := validators.NormalizeText(r.URL.Query().Get("keyword"))
		if msg := keywordProblem(keyword); msg != "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid request parameter").WithDetails([]string{msg}))
			return
		}

		alternatives, err := svc.Alternatives(r.Context(), medicines.AlternativesInput{Keyword: keyword})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, alternatives)
	}
}

func keywordProblem(keyword string) string {
	switch {
	case keyword == "":
		return "keyword is required"
	case utf8.RuneCountInString(keyword) > maxKeywordLength:
		return fmt.Sprintf("keyword must be at most %d characters", maxKeywordLength)
	}
	return ""
}

func detailsOf(err error) []string {
	if typed := pkgerrors.As(err); typed != nil {
		if details, ok := typed.Details().([]string); ok {
			return details
		}
		return []string{typed.Message()}
	}
	return []string{err.Error()}
}
