package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/medfinder-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func assertContains(t *testing.T, content string, checks []string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestStocksMigrationContainsConstraints(t *testing.T) {
	assertContains(t, readMigration(t, "create_stocks"), []string{
		"CREATE TABLE IF NOT EXISTS stocks",
		"version BIGINT NOT NULL DEFAULT 1",
		"FOREIGN KEY (pharmacy_id) REFERENCES pharmacies(id) ON DELETE CASCADE",
		"FOREIGN KEY (medicine_id) REFERENCES medicines(id) ON DELETE CASCADE",
		"CHECK (quantity >= 0)",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_stocks_pharmacy_medicine ON stocks (pharmacy_id, medicine_id)",
		"DROP TABLE IF EXISTS stocks",
	})
}

func TestReservationsMigrationContainsConstraints(t *testing.T) {
	assertContains(t, readMigration(t, "create_reservations"), []string{
		"CREATE TABLE IF NOT EXISTS reservations",
		"FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE",
		"FOREIGN KEY (pharmacy_id) REFERENCES pharmacies(id) ON DELETE RESTRICT",
		"FOREIGN KEY (medicine_id) REFERENCES medicines(id) ON DELETE RESTRICT",
		"CHECK (quantity > 0)",
		"CHECK (status IN ('Pending', 'Approved', 'Rejected'))",
		"CHECK ((status = 'Rejected') = (rejection_reason IS NOT NULL))",
		"DROP TABLE IF EXISTS reservations",
	})
}

func TestMedicinesMigrationCascadesTags(t *testing.T) {
	assertContains(t, readMigration(t, "create_medicines"), []string{
		"CREATE TABLE IF NOT EXISTS medicines",
		"trending_score INTEGER NOT NULL DEFAULT 0",
		"FOREIGN KEY (medicine_id) REFERENCES medicines(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS medicine_tags",
	})
}

func TestUsersMigrationEnforcesUniqueEmail(t *testing.T) {
	assertContains(t, readMigration(t, "create_users"), []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_users_email ON users (lower(email))",
		"CHECK (role IN ('Admin', 'User'))",
	})
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestValidateDirRejectsBadName(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Stock Audit!")
	if err != nil {
		t.Fatalf("CreateSQLMigration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_stock_audit.sql") {
		t.Fatalf("unexpected migration path %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}
}

func TestEmbeddedMigrationsMatchDirectory(t *testing.T) {
	entries, err := migrate.Embedded.ReadDir(migrate.EmbeddedDir)
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	onDisk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(entries) != len(onDisk) {
		t.Fatalf("embedded %d migrations, disk has %d", len(entries), len(onDisk))
	}
}

func TestValidateFSAcceptsEmbeddedMigrations(t *testing.T) {
	if err := migrate.ValidateFS(migrate.Embedded, migrate.EmbeddedDir); err != nil {
		t.Fatalf("ValidateFS: %v", err)
	}
}

func TestValidateDirRejectsDuplicateVersion(t *testing.T) {
	dir := t.TempDir()
	body := []byte("-- +goose Up\n-- +goose Down\n")
	for _, name := range []string{"20260301090000_a.sql", "20260301090000_b.sql"} {
		if err := os.WriteFile(filepath.Join(dir, name), body, 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := migrate.ValidateDir(dir); err == nil || !strings.Contains(err.Error(), "duplicate migration version") {
		t.Fatalf("expected duplicate version error, got %v", err)
	}
}
