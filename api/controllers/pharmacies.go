package controllers

import (
	"net/http"

	"github.com/angelmondragon/medfinder-backend/api/responses"
	"github.com/angelmondragon/medfinder-backend/api/validators"
	"github.com/angelmondragon/medfinder-backend/internal/pharmacies"
	"github.com/angelmondragon/medfinder-backend/pkg/logger"
)

func PharmaciesList(svc pharmacies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func PharmacyGet(svc pharmacies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "pharmacyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pharmacy, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pharmacy)
	}
}
