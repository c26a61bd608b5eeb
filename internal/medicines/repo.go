package medicines

import (
	"context"
	"strings"

	"github.com/angelmondragon/medfinder-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the read access search and alternatives need.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Medicine, error)
	SearchByName(ctx context.Context, keyword string) ([]models.Medicine, error)
	ListStocksForMedicines(ctx context.Context, medicineIDs []uuid.UUID, inStockOnly bool) ([]models.Stock, error)
	ListRelated(ctx context.Context, base models.Medicine, limit int) ([]models.Medicine, error)
	ListTopTrending(ctx context.Context, exclude []uuid.UUID, limit int) ([]models.Medicine, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a medicines repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Medicine, error) {
	var medicine models.Medicine
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&medicine).Error; err != nil {
		return nil, err
	}
	return &medicine, nil
}

func (r *repository) SearchByName(ctx context.Context, keyword string) ([]models.Medicine, error) {
	pattern := "%" + escapeLike(strings.ToLower(keyword)) + "%"
	var medicines []models.Medicine
	err := r.db.WithContext(ctx).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern).
		Order("name ASC").
		Order("id ASC").
		Find(&medicines).Error
	if err != nil {
		return nil, err
	}
	return medicines, nil
}

// ListStocksForMedicines returns stock rows with their pharmacy preloaded.
// Rows whose pharmacy no longer resolves come back with a nil Pharmacy.
func (r *repository) ListStocksForMedicines(ctx context.Context, medicineIDs []uuid.UUID, inStockOnly bool) ([]models.Stock, error) {
	if len(medicineIDs) == 0 {
		return nil, nil
	}
	query := r.db.WithContext(ctx).
		Preload("Pharmacy").
		Where("medicine_id IN ?", medicineIDs)
	if inStockOnly {
		query = query.Where("quantity > 0")
	}
	var stocks []models.Stock
	if err := query.Order("id ASC").Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

func (r *repository) ListRelated(ctx context.Context, base models.Medicine, limit int) ([]models.Medicine, error) {
	var medicines []models.Medicine
	err := r.db.WithContext(ctx).
		Where("id <> ?", base.ID).
		Where("(category = ? OR active_ingredient = ?)", base.Category, base.ActiveIngredient).
		Order("trending_score DESC").
		Order("name ASC").
		Limit(limit).
		Find(&medicines).Error
	if err != nil {
		return nil, err
	}
	return medicines, nil
}

func (r *repository) ListTopTrending(ctx context.Context, exclude []uuid.UUID, limit int) ([]models.Medicine, error) {
	query := r.db.WithContext(ctx)
	if len(exclude) > 0 {
		query = query.Where("id NOT IN ?", exclude)
	}
	var medicines []models.Medicine
	err := query.
		Order("trending_score DESC").
		Order("name ASC").
		Limit(limit).
		Find(&medicines).Error
	if err != nil {
		return nil, err
	}
	return medicines, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
