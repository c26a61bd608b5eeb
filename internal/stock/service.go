package stock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/angelmondragon/medfinder-backend/internal/realtime"
	"github.com/angelmondragon/medfinder-backend/pkg/db"
	"github.com/angelmondragon/medfinder-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/medfinder-backend/pkg/errors"
	"github.com/angelmondragon/medfinder-backend/pkg/logger"
	"github.com/angelmondragon/medfinder-backend/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxUpdateAttempts = 3

// Service exposes the admin stock surface.
type Service interface {
	UpdateStock(ctx context.Context, input UpdateStockInput) (*EntryDTO, error)
	ListEntries(ctx context.Context) ([]EntryDTO, error)
}

type service struct {
	repo     Repository
	notifier realtime.Notifier
	metrics  *metrics.LedgerMetrics
	logg     *logger.Logger
}

// ServiceParams bundles the dependencies of the stock service.
type ServiceParams struct {
	Repo     Repository
	Notifier realtime.Notifier
	Metrics  *metrics.LedgerMetrics
	Logger   *logger.Logger
}

// NewService builds the stock service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
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
		repo:     params.Repo,
		notifier: notifier,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

func (s *service) UpdateStock(ctx context.Context, input UpdateStockInput) (*EntryDTO, error) {
	entry, err := s.updateStock(ctx, input)
	s.metrics.IncStockUpdate(metrics.OutcomeFor(err))
	if err != nil {
		return nil, err
	}

	s.notifier.StockUpdated(ctx, realtime.StockUpdatedEvent{
		PharmacyID: entry.PharmacyID,
		MedicineID: entry.MedicineID,
		Quantity:   entry.Quantity,
	})
	return entry, nil
}

func (s *service) updateStock(ctx context.Context, input UpdateStockInput) (*EntryDTO, error) {
	if input.Quantity == nil || *input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid stock quantity").
			WithDetails([]string{"quantity must be zero or greater"})
	}
	quantity := *input.Quantity

	if err := s.ensureExists(ctx, input.PharmacyID, input.MedicineID); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		row, err := s.repo.Find(ctx, input.PharmacyID, input.MedicineID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = &models.Stock{
				PharmacyID: input.PharmacyID,
				MedicineID: input.MedicineID,
				Quantity:   quantity,
			}
			if err := s.repo.Insert(ctx, row); err != nil {
				if db.IsUniqueViolation(err, "") {
					continue
				}
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert stock")
			}
			entry := entryFromModel(*row)
			return &entry, nil
		case err != nil:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock")
		}

		updated, err := s.repo.SetQuantity(ctx, row.ID, row.Version, quantity)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock")
		}
		if updated {
			row.Quantity = quantity
			row.Version++
			row.UpdatedAt = time.Now().UTC()
			entry := entryFromModel(*row)
			return &entry, nil
		}
		s.logg.Debug(s.logg.WithField(ctx, "attempt", attempt), "stock version moved, retrying update")
	}

	s.logg.Warn(s.logg.WithStockLine(ctx, input.PharmacyID.String(), input.MedicineID.String()), "stock update gave up after repeated version conflicts")
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "Stock was modified concurrently, please retry")
}

func (s *service) ensureExists(ctx context.Context, pharmacyID, medicineID uuid.UUID) error {
	ok, err := s.repo.PharmacyExists(ctx, pharmacyID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check pharmacy")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Pharmacy not found")
	}
	ok, err = s.repo.MedicineExists(ctx, medicineID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check medicine")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Medicine not found")
	}
	return nil
}

func (s *service) ListEntries(ctx context.Context) ([]EntryDTO, error) {
	rows, err := s.repo.ListEntries(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock")
	}
	entries := make([]EntryDTO, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, entryFromModel(row))
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].PharmacyName != entries[j].PharmacyName {
			return entries[i].PharmacyName < entries[j].PharmacyName
		}
		return entries[i].MedicineName < entries[j].MedicineName
	})
	return entries, nil
}
