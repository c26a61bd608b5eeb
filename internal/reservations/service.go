package reservations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/angelmondragon/medfinder-backend/internal/realtime"
	"github.com/angelmondragon/medfinder-backend/internal/stock"
	"github.com/angelmondragon/medfinder-backend/pkg/db/models"
	"github.com/angelmondragon/medfinder-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/medfinder-backend/pkg/errors"
	"github.com/angelmondragon/medfinder-backend/pkg/logger"
	"github.com/angelmondragon/medfinder-backend/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	operationCreate  = "create"
	operationApprove = "approve"
	operationReject  = "reject"
)

const (
	msgReservationNotFound     = "Reservation not found"
	msgInsufficientAtCreate    = "Insufficient stock for reservation"
	msgInsufficientAtApproval  = "Insufficient stock at approval"
	msgApprovalConflict        = "Reservation approval conflict, please retry"
	msgOnlyPendingApprovable   = "Only pending reservations can be approved"
	msgOnlyPendingRejectable   = "Only pending reservations can be rejected"
	msgRejectionReasonRequired = "Rejection reason is required"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the reservation ledger: creation, approval, rejection and the
// read views over reservations.
type Service interface {
	Create(ctx context.Context, input CreateReservationInput) (*ReservationDTO, error)
	Approve(ctx context.Context, reservationID uuid.UUID) (*ReservationDTO, error)
	Reject(ctx context.Context, reservationID uuid.UUID, reason string) (*ReservationDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]ReservationDTO, error)
	ListPending(ctx context.Context) ([]PendingReservationDTO, error)
}

// ServiceParams bundles the dependencies of the reservation ledger.
type ServiceParams struct {
	TxRunner  txRunner
	Repo      Repository
	StockRepo stock.Repository
	Notifier  realtime.Notifier
	Metrics   *metrics.LedgerMetrics
	Logger    *logger.Logger
}

type service struct {
	tx       txRunner
	repo     Repository
	stocks   stock.Repository
	notifier realtime.Notifier
	metrics  *metrics.LedgerMetrics
	logg     *logger.Logger
}

// NewService builds the reservation ledger.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("reservation repository required")
	}
	if params.StockRepo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	notifier := params.Notifier
	if notifier == nil {
		notifier = realtime.NopNotifier{}
	}
	return &service{
		tx:       params.TxRunner,
		repo:     params.Repo,
		stocks:   params.StockRepo,
		notifier: notifier,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateReservationInput) (result *ReservationDTO, err error) {
	defer s.observe(ctx, operationCreate, time.Now(), &err)

	if errs := validateCreate(input); len(errs) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid reservation").WithDetails(errs)
	}

	row, err := s.stocks.Find(ctx, input.PharmacyID, input.MedicineID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock")
	}
	if row == nil || row.Quantity < input.Quantity {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, msgInsufficientAtCreate)
	}

	reservation := &models.Reservation{
		UserID:     input.UserID,
		PharmacyID: input.PharmacyID,
		MedicineID: input.MedicineID,
		Quantity:   input.Quantity,
		Status:     enums.ReservationStatusPending,
	}
	if err := s.repo.Create(ctx, reservation); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reservation")
	}
	return FromModel(reservation), nil
}

func validateCreate(input CreateReservationInput) []string {
	var errs []string
	if input.UserID == uuid.Nil {
		errs = append(errs, "user_id is required")
	}
	if input.PharmacyID == uuid.Nil {
		errs = append(errs, "pharmacy_id is required")
	}
	if input.MedicineID == uuid.Nil {
		errs = append(errs, "medicine_id is required")
	}
	if input.Quantity <= 0 {
		errs = append(errs, "quantity must be greater than zero")
	}
	return errs
}

// Approve decrements stock and flips the reservation to Approved in one
// transaction. Notifications go out only after the commit.
func (s *service) Approve(ctx context.Context, reservationID uuid.UUID) (result *ReservationDTO, err error) {
	ctx = s.logg.WithReservationID(ctx, reservationID.String())
	defer s.observe(ctx, operationApprove, time.Now(), &err)

	var (
		approved  *models.Reservation
		remaining int
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		stocks := s.stocks.WithTx(tx)

		reservation, err := s.loadReservation(ctx, repo, reservationID)
		if err != nil {
			return err
		}
		if reservation.Status != enums.ReservationStatusPending {
			return pkgerrors.New(pkgerrors.CodeInvalidStatusTransition, msgOnlyPendingApprovable)
		}

		row, err := stocks.Find(ctx, reservation.PharmacyID, reservation.MedicineID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock")
		}
		if row == nil || row.Quantity < reservation.Quantity {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, msgInsufficientAtApproval)
		}

		decremented, err := stocks.Decrement(ctx, row.ID, row.Version, reservation.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
		}
		if !decremented {
			return s.lostDecrement(ctx, repo, stocks, reservation)
		}

		moved, err := repo.Transition(ctx, reservation.ID, reservation.Version, enums.ReservationStatusApproved, nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve reservation")
		}
		if !moved {
			return s.lostTransition(ctx, repo, reservation.ID, msgOnlyPendingApprovable, true)
		}

		reservation.Status = enums.ReservationStatusApproved
		reservation.RejectionReason = nil
		reservation.Version++
		reservation.UpdatedAt = time.Now().UTC()
		approved = reservation
		remaining = row.Quantity - reservation.Quantity
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.StockUpdated(ctx, realtime.StockUpdatedEvent{
		PharmacyID: approved.PharmacyID,
		MedicineID: approved.MedicineID,
		Quantity:   remaining,
	})
	s.notifier.ReservationUpdated(ctx, updatedEvent(approved))
	return FromModel(approved), nil
}

func (s *service) Reject(ctx context.Context, reservationID uuid.UUID, reason string) (result *ReservationDTO, err error) {
	ctx = s.logg.WithReservationID(ctx, reservationID.String())
	defer s.observe(ctx, operationReject, time.Now(), &err)

	trimmed := strings.TrimSpace(reason)
	switch {
	case trimmed == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgRejectionReasonRequired).
			WithDetails([]string{"reason is required"})
	case utf8.RuneCountInString(reason) > maxRejectionReasonLength:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason too long").
			WithDetails([]string{fmt.Sprintf("reason must be at most %d characters", maxRejectionReasonLength)})
	}

	reservation, err := s.loadReservation(ctx, s.repo, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.Status != enums.ReservationStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidStatusTransition, msgOnlyPendingRejectable)
	}

	moved, err := s.repo.Transition(ctx, reservation.ID, reservation.Version, enums.ReservationStatusRejected, &reason)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject reservation")
	}
	if !moved {
		return nil, s.lostTransition(ctx, s.repo, reservation.ID, msgOnlyPendingRejectable, false)
	}

	reservation.Status = enums.ReservationStatusRejected
	reservation.RejectionReason = &reason
	reservation.Version++
	reservation.UpdatedAt = time.Now().UTC()

	s.notifier.ReservationUpdated(ctx, updatedEvent(reservation))
	return FromModel(reservation), nil
}

func (s *service) loadReservation(ctx context.Context, repo Repository, id uuid.UUID) (*models.Reservation, error) {
	reservation, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgReservationNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
	}
	return reservation, nil
}

// lostDecrement classifies a version-checked stock decrement that matched no
// row. The row is read again so a competing approval that drained the stock
// surfaces as insufficient stock rather than a retryable conflict.
func (s *service) lostDecrement(ctx context.Context, repo Repository, stocks stock.Repository, reservation *models.Reservation) error {
	row, err := stocks.Find(ctx, reservation.PharmacyID, reservation.MedicineID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload stock")
	}
	if row == nil || row.Quantity < reservation.Quantity {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, msgInsufficientAtApproval)
	}
	return s.lostTransition(ctx, repo, reservation.ID, msgOnlyPendingApprovable, true)
}

// lostTransition classifies a conditional status update that matched no row.
// A reservation that already left Pending is a status error; one that is
// still pending only had its version move, which approval reports as a
// retryable conflict.
func (s *service) lostTransition(ctx context.Context, repo Repository, id uuid.UUID, statusMsg string, conflictIfPending bool) error {
	current, err := s.loadReservation(ctx, repo, id)
	if err != nil {
		return err
	}
	if current.Status == enums.ReservationStatusPending && conflictIfPending {
		return pkgerrors.New(pkgerrors.CodeApprovalConflict, msgApprovalConflict)
	}
	return pkgerrors.New(pkgerrors.CodeInvalidStatusTransition, statusMsg)
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]ReservationDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations")
	}
	out := make([]ReservationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) ListPending(ctx context.Context) ([]PendingReservationDTO, error) {
	rows, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending reservations")
	}
	out := make([]PendingReservationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, pendingFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) observe(ctx context.Context, operation string, started time.Time, errp *error) {
	outcome := metrics.OutcomeFor(*errp)
	s.metrics.ObserveOperation(operation, outcome, time.Since(started))

	switch outcome {
	case metrics.OutcomeSuccess:
		s.logg.Info(s.logg.WithField(ctx, "operation", operation), "reservation "+operation+" succeeded")
	case metrics.OutcomeError:
		s.logg.Error(s.logg.WithField(ctx, "operation", operation), "reservation "+operation+" failed", *errp)
	default:
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"operation": operation,
			"outcome":   outcome,
		}), (*errp).Error())
	}
}
