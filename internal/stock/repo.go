package stock

import (
	"context"
	"time"

	"github.com/angelmondragon/medfinder-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository owns the stocks table. Every write is conditioned on the row
// version read immediately before it.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Find(ctx context.Context, pharmacyID, medicineID uuid.UUID) (*models.Stock, error)
	Insert(ctx context.Context, row *models.Stock) error
	SetQuantity(ctx context.Context, id uuid.UUID, expectedVersion int64, quantity int) (bool, error)
	Decrement(ctx context.Context, id uuid.UUID, expectedVersion int64, by int) (bool, error)
	PharmacyExists(ctx context.Context, id uuid.UUID) (bool, error)
	MedicineExists(ctx context.Context, id uuid.UUID) (bool, error)
	ListEntries(ctx context.Context) ([]models.Stock, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a stock repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Find(ctx context.Context, pharmacyID, medicineID uuid.UUID) (*models.Stock, error) {
	var row models.Stock
	err := r.db.WithContext(ctx).
		Where("pharmacy_id = ? AND medicine_id = ?", pharmacyID, medicineID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) Insert(ctx context.Context, row *models.Stock) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) SetQuantity(ctx context.Context, id uuid.UUID, expectedVersion int64, quantity int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Stock{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]any{
			"quantity":   quantity,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Decrement subtracts by from the row when the version still matches and the
// quantity covers it.
func (r *repository) Decrement(ctx context.Context, id uuid.UUID, expectedVersion int64, by int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Stock{}).
		Where("id = ? AND version = ? AND quantity >= ?", id, expectedVersion, by).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity - ?", by),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) PharmacyExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, &models.Pharmacy{}, id)
}

func (r *repository) MedicineExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, &models.Medicine{}, id)
}

func (r *repository) exists(ctx context.Context, model any, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ListEntries(ctx context.Context) ([]models.Stock, error) {
	var rows []models.Stock
	err := r.db.WithContext(ctx).
		Preload("Pharmacy").
		Preload("Medicine").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
