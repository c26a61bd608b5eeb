package pharmacies

import (
	"context"
	"testing"

	"github.com/angelmondragon/medfinder-backend/pkg/db/models"
	"github.com/angelmondragon/medfinder-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/medfinder-backend/pkg/errors"
	"github.com/angelmondragon/medfinder-backend/pkg/migrate"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:pharmacies_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := migrate.AutoMigrateModels(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seed(t *testing.T, db *gorm.DB) (models.Pharmacy, models.Pharmacy) {
	t.Helper()
	cityCare := models.Pharmacy{Name: "City Care", Latitude: 30.0444, Longitude: 31.2357}
	greenCross := models.Pharmacy{Name: "Green Cross", Latitude: 29.9792, Longitude: 31.1342}
	for _, p := range []*models.Pharmacy{&cityCare, &greenCross} {
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("seed pharmacy: %v", err)
		}
	}
	aspirin := models.Medicine{Name: "Aspirin", Category: "Pain Relief", ActiveIngredient: "Acetylsalicylic acid"}
	coldAway := models.Medicine{Name: "ColdAway", Category: "Cold & Flu", ActiveIngredient: "Paracetamol"}
	for _, m := range []*models.Medicine{&aspirin, &coldAway} {
		if err := db.Create(m).Error; err != nil {
			t.Fatalf("seed medicine: %v", err)
		}
	}
	for _, s := range []models.Stock{
		{PharmacyID: cityCare.ID, MedicineID: aspirin.ID, Quantity: 3},
		{PharmacyID: cityCare.ID, MedicineID: coldAway.ID, Quantity: 0},
	} {
		s := s
		if err := db.Create(&s).Error; err != nil {
			t.Fatalf("seed stock: %v", err)
		}
	}
	return cityCare, greenCross
}

func TestServiceGetIncludesStockLines(t *testing.T) {
	db := newTestDB(t)
	cityCare, _ := seed(t, db)
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	got, err := svc.Get(context.Background(), cityCare.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "City Care" || len(got.Stocks) != 2 {
		t.Fatalf("unexpected pharmacy %+v", got)
	}
	if got.Stocks[0].MedicineName != "Aspirin" || got.Stocks[0].Quantity != 3 {
		t.Fatalf("expected highest stock first, got %+v", got.Stocks[0])
	}
	if got.Stocks[1].Availability != enums.AvailabilityOutOfStock {
		t.Fatalf("expected zero line to be out of stock, got %s", got.Stocks[1].Availability)
	}
}

func TestServiceGetNotFound(t *testing.T) {
	svc, err := NewService(NewRepository(newTestDB(t)))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	_, err = svc.Get(context.Background(), uuid.New())
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceListReturnsEveryPharmacy(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	got, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 pharmacies, got %d", len(got))
	}
	if got[0].Name != "City Care" || got[1].Name != "Green Cross" {
		t.Fatalf("unexpected order %s, %s", got[0].Name, got[1].Name)
	}
	if got[1].Stocks == nil || len(got[1].Stocks) != 0 {
		t.Fatalf("expected empty stock list for Green Cross, got %v", got[1].Stocks)
	}
}

func TestRepositoryExists(t *testing.T) {
	db := newTestDB(t)
	cityCare, _ := seed(t, db)
	repo := NewRepository(db)

	ok, err := repo.Exists(context.Background(), cityCare.ID)
	if err != nil || !ok {
		t.Fatalf("expected pharmacy to exist, ok=%v err=%v", ok, err)
	}
	ok, err = repo.Exists(context.Background(), uuid.New())
	if err != nil || ok {
		t.Fatalf("expected unknown pharmacy to be missing, ok=%v err=%v", ok, err)
	}
}
