package controllers

import (
	"net/http"

	"github.com/angelmondragon/medfinder-backend/api/responses"
	"github.com/angelmondragon/medfinder-backend/api/validators"
	"github.com/angelmondragon/medfinder-backend/internal/reservations"
	"github.com/angelmondragon/medfinder-backend/internal/stock"
	"github.com/angelmondragon/medfinder-backend/pkg/logger"
)

// AdminPendingReservations lists the approval queue.
func AdminPendingReservations(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListPending(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AdminStockList(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.ListEntries(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

// AdminStockUpdate overwrites (or creates) the quantity for a pharmacy/medicine pair.
func AdminStockUpdate(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body stock.UpdateStockInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.UpdateStock(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}
