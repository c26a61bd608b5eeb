package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/medfinder-backend/internal/users"
	"github.com/angelmondragon/medfinder-backend/pkg/config"
	"github.com/angelmondragon/medfinder-backend/pkg/db/models"
	"github.com/angelmondragon/medfinder-backend/pkg/logger"
	"github.com/angelmondragon/medfinder-backend/pkg/security"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Seeder loads the demo catalog and accounts. Every section is skipped when
// its table already holds rows, so repeated runs are harmless.
type Seeder struct {
	tx          txRunner
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
}

// NewSeeder builds a seeder over the provided transaction runner.
func NewSeeder(tx txRunner, passwordCfg config.PasswordConfig, logg *logger.Logger) (*Seeder, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Seeder{tx: tx, passwordCfg: passwordCfg, logg: logg}, nil
}

// Run seeds users, pharmacies, medicines and the stock grid in one transaction.
func (s *Seeder) Run(ctx context.Context) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.seedUsers(ctx, tx); err != nil {
			return err
		}
		pharmacies, err := s.seedPharmacies(ctx, tx)
		if err != nil {
			return err
		}
		medicines, err := s.seedMedicines(ctx, tx)
		if err != nil {
			return err
		}
		return s.seedStocks(ctx, tx, pharmacies, medicines)
	})
}

func (s *Seeder) seedUsers(ctx context.Context, tx *gorm.DB) error {
	repo := users.NewRepository(tx)
	for _, u := range defaultUsers {
		if _, err := repo.FindByEmail(ctx, u.Email); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("lookup seed user %s: %w", u.Email, err)
		}
		hash, err := security.HashPassword(u.Password, s.passwordCfg)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}
		if _, err := repo.Create(ctx, users.CreateUserDTO{
			Email:        u.Email,
			PasswordHash: hash,
			FullName:     u.FullName,
			Role:         u.Role,
		}); err != nil {
			return fmt.Errorf("create seed user %s: %w", u.Email, err)
		}
		s.logg.Info(s.logg.WithField(ctx, "email", u.Email), "seeded user")
	}
	return nil
}

// seedPharmacies returns nil when pharmacies already exist.
func (s *Seeder) seedPharmacies(ctx context.Context, tx *gorm.DB) ([]models.Pharmacy, error) {
	if exists, err := hasRows(ctx, tx, &models.Pharmacy{}); err != nil || exists {
		return nil, err
	}
	rows := make([]models.Pharmacy, 0, len(defaultPharmacies))
	for _, p := range defaultPharmacies {
		rows = append(rows, models.Pharmacy{Name: p.Name, Latitude: p.Latitude, Longitude: p.Longitude})
	}
	if err := tx.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("create seed pharmacies: %w", err)
	}
	s.logg.Info(s.logg.WithField(ctx, "count", len(rows)), "seeded pharmacies")
	return rows, nil
}

// seedMedicines returns nil when medicines already exist.
func (s *Seeder) seedMedicines(ctx context.Context, tx *gorm.DB) ([]models.Medicine, error) {
	if exists, err := hasRows(ctx, tx, &models.Medicine{}); err != nil || exists {
		return nil, err
	}
	rows := make([]models.Medicine, 0, len(defaultMedicines))
	for _, m := range defaultMedicines {
		rows = append(rows, models.Medicine{
			Name:             m.Name,
			Category:         m.Category,
			ActiveIngredient: m.ActiveIngredient,
			TrendingScore:    m.TrendingScore,
			Tags: []models.MedicineTag{
				{Tag: tagFor(m.Category)},
				{Tag: tagFor(m.ActiveIngredient)},
			},
		})
	}
	if err := tx.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("create seed medicines: %w", err)
	}
	s.logg.Info(s.logg.WithField(ctx, "count", len(rows)), "seeded medicines")
	return rows, nil
}

func (s *Seeder) seedStocks(ctx context.Context, tx *gorm.DB, pharmacies []models.Pharmacy, medicines []models.Medicine) error {
	if exists, err := hasRows(ctx, tx, &models.Stock{}); err != nil || exists {
		return err
	}
	if len(pharmacies) == 0 {
		if err := tx.WithContext(ctx).Order("name ASC").Find(&pharmacies).Error; err != nil {
			return fmt.Errorf("load pharmacies: %w", err)
		}
	}
	if len(medicines) == 0 {
		if err := tx.WithContext(ctx).Order("name ASC").Find(&medicines).Error; err != nil {
			return fmt.Errorf("load medicines: %w", err)
		}
	}
	if len(pharmacies) == 0 || len(medicines) == 0 {
		return nil
	}

	rows := make([]models.Stock, 0, len(pharmacies)*len(medicines))
	for i, p := range pharmacies {
		for j, m := range medicines {
			rows = append(rows, models.Stock{
				PharmacyID: p.ID,
				MedicineID: m.ID,
				Quantity:   (i + j) % stockGridModulus,
			})
		}
	}
	if err := tx.WithContext(ctx).CreateInBatches(&rows, 100).Error; err != nil {
		return fmt.Errorf("create seed stock: %w", err)
	}
	s.logg.Info(s.logg.WithField(ctx, "count", len(rows)), "seeded stock")
	return nil
}

func hasRows(ctx context.Context, tx *gorm.DB, model any) (bool, error) {
	var count int64
	if err := tx.WithContext(ctx).Model(model).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
