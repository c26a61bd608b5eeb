package reservations

import (
	"time"

	"github.com/angelmondragon/medfinder-backend/internal/realtime"
	"github.com/angelmondragon/medfinder-backend/pkg/db/models"
	"github.com/angelmondragon/medfinder-backend/pkg/enums"
	"github.com/google/uuid"
)

const maxRejectionReasonLength = 500

// CreateReservationInput is the data a user submits to reserve stock.
type CreateReservationInput struct {
	UserID     uuid.UUID `json:"-"`
	PharmacyID uuid.UUID `json:"pharmacy_id" validate:"required"`
	MedicineID uuid.UUID `json:"medicine_id" validate:"required"`
	Quantity   int       `json:"quantity" validate:"required,gt=0"`
}

// RejectReservationInput carries the admin's reason for rejecting.
type RejectReservationInput struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// ReservationDTO is the public reservation shape.
type ReservationDTO struct {
	ID              uuid.UUID               `json:"id"`
	UserID          uuid.UUID               `json:"user_id"`
	PharmacyID      uuid.UUID               `json:"pharmacy_id"`
	PharmacyName    string                  `json:"pharmacy_name"`
	MedicineID      uuid.UUID               `json:"medicine_id"`
	MedicineName    string                  `json:"medicine_name"`
	Quantity        int                     `json:"quantity"`
	Status          enums.ReservationStatus `json:"status"`
	RejectionReason *string                 `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// PendingReservationDTO adds the requesting user to a reservation for the admin queue.
type PendingReservationDTO struct {
	ReservationDTO
	UserFullName string `json:"user_full_name"`
	UserEmail    string `json:"user_email"`
}

// FromModel maps a reservation, using empty names for unresolved relations.
func FromModel(r *models.Reservation) *ReservationDTO {
	if r == nil {
		return nil
	}
	dto := &ReservationDTO{
		ID:              r.ID,
		UserID:          r.UserID,
		PharmacyID:      r.PharmacyID,
		MedicineID:      r.MedicineID,
		Quantity:        r.Quantity,
		Status:          r.Status,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.Pharmacy != nil {
		dto.PharmacyName = r.Pharmacy.Name
	}
	if r.Medicine != nil {
		dto.MedicineName = r.Medicine.Name
	}
	return dto
}

func pendingFromModel(r *models.Reservation) PendingReservationDTO {
	out := PendingReservationDTO{ReservationDTO: *FromModel(r)}
	if r.User != nil {
		out.UserFullName = r.User.FullName
		out.UserEmail = r.User.Email
	}
	return out
}

func updatedEvent(r *models.Reservation) realtime.ReservationUpdatedEvent {
	return realtime.ReservationUpdatedEvent{
		ReservationID:   r.ID,
		UserID:          r.UserID,
		PharmacyID:      r.PharmacyID,
		MedicineID:      r.MedicineID,
		Quantity:        r.Quantity,
		Status:          r.Status,
		RejectionReason: r.RejectionReason,
		UpdatedAt:       r.UpdatedAt,
	}
}
