package seed

import (
	"context"
	"io"
	"testing"

	"github.com/angelmondragon/medfinder-backend/pkg/config"
	"github.com/angelmondragon/medfinder-backend/pkg/db"
	"github.com/angelmondragon/medfinder-backend/pkg/db/models"
	"github.com/angelmondragon/medfinder-backend/pkg/enums"
	"github.com/angelmondragon/medfinder-backend/pkg/logger"
	"github.com/angelmondragon/medfinder-backend/pkg/migrate"
	"github.com/angelmondragon/medfinder-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:seed_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := migrate.AutoMigrateModels(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func newTestSeeder(t *testing.T, conn *gorm.DB) *Seeder {
	t.Helper()
	pw := config.PasswordConfig{ArgonMemoryKB: 8192, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
	s, err := NewSeeder(db.Wrap(conn), pw, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("NewSeeder: %v", err)
	}
	return s
}

func count(t *testing.T, conn *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := conn.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestSeederPopulatesCatalog(t *testing.T) {
	conn := newTestDB(t)
	if err := newTestSeeder(t, conn).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := count(t, conn, &models.User{}); got != 2 {
		t.Fatalf("expected 2 users, got %d", got)
	}
	if got := count(t, conn, &models.Pharmacy{}); got != 3 {
		t.Fatalf("expected 3 pharmacies, got %d", got)
	}
	if got := count(t, conn, &models.Medicine{}); got != 20 {
		t.Fatalf("expected 20 medicines, got %d", got)
	}
	if got := count(t, conn, &models.MedicineTag{}); got != 40 {
		t.Fatalf("expected 40 tags, got %d", got)
	}
	if got := count(t, conn, &models.Stock{}); got != 60 {
		t.Fatalf("expected 60 stock rows, got %d", got)
	}

	var admin models.User
	if err := conn.Where("email = ?", "admin@mf.local").First(&admin).Error; err != nil {
		t.Fatalf("load admin: %v", err)
	}
	if admin.Role != enums.UserRoleAdmin {
		t.Fatalf("expected admin role, got %s", admin.Role)
	}
	ok, err := security.VerifyPassword("Admin123!", admin.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("expected seeded admin password to verify, ok=%v err=%v", ok, err)
	}

	var maxQty int
	if err := conn.Model(&models.Stock{}).Select("MAX(quantity)").Scan(&maxQty).Error; err != nil {
		t.Fatalf("max quantity: %v", err)
	}
	if maxQty != 11 {
		t.Fatalf("expected grid max 11, got %d", maxQty)
	}

	var tags []models.MedicineTag
	var coldAway models.Medicine
	if err := conn.Where("name = ?", "ColdAway").First(&coldAway).Error; err != nil {
		t.Fatalf("load ColdAway: %v", err)
	}
	if err := conn.Where("medicine_id = ?", coldAway.ID).Order("tag ASC").Find(&tags).Error; err != nil {
		t.Fatalf("load tags: %v", err)
	}
	if len(tags) != 2 || tags[0].Tag != "cold&flu" || tags[1].Tag != "paracetamol" {
		t.Fatalf("unexpected tags %+v", tags)
	}
}

func TestSeederIsIdempotent(t *testing.T) {
	conn := newTestDB(t)
	s := newTestSeeder(t, conn)
	for i := 0; i < 2; i++ {
		if err := s.Run(context.Background()); err != nil {
			t.Fatalf("Run #%d: %v", i+1, err)
		}
	}
	if got := count(t, conn, &models.Stock{}); got != 60 {
		t.Fatalf("expected 60 stock rows after rerun, got %d", got)
	}
	if got := count(t, conn, &models.User{}); got != 2 {
		t.Fatalf("expected 2 users after rerun, got %d", got)
	}
}

func TestTagFor(t *testing.T) {
	if got := tagFor("Benzoyl Peroxide"); got != "benzoylperoxide" {
		t.Fatalf("unexpected tag %q", got)
	}
}
