package pharmacies

import (
	"context"

	"github.com/angelmondragon/medfinder-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository loads pharmacies together with their stock lines.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Pharmacy, error)
	List(ctx context.Context) ([]models.Pharmacy, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a pharmacy repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) withStocks(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Stocks", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("quantity DESC").Order("id ASC")
		}).
		Preload("Stocks.Medicine")
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Pharmacy, error) {
	var pharmacy models.Pharmacy
	if err := r.withStocks(ctx).Where("id = ?", id).First(&pharmacy).Error; err != nil {
		return nil, err
	}
	return &pharmacy, nil
}

func (r *repository) List(ctx context.Context) ([]models.Pharmacy, error) {
	var pharmacies []models.Pharmacy
	if err := r.withStocks(ctx).Order("name ASC").Order("id ASC").Find(&pharmacies).Error; err != nil {
		return nil, err
	}
	return pharmacies, nil
}

func (r *repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Pharmacy{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
