package users

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/medfinder-backend/pkg/db"
	"github.com/angelmondragon/medfinder-backend/pkg/enums"
	"github.com/angelmondragon/medfinder-backend/pkg/migrate"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:users_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := migrate.AutoMigrateModels(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func TestRepositoryCreateNormalizesEmail(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{Email: "  Jane@Example.COM ", PasswordHash: "hash", FullName: " Jane Doe "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.Email != "jane@example.com" || user.FullName != "Jane Doe" {
		t.Fatalf("unexpected normalized user %+v", user)
	}
	if user.Role != enums.UserRoleUser {
		t.Fatalf("expected default role User, got %s", user.Role)
	}

	found, err := repo.FindByEmail(ctx, "JANE@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if found.ID != user.ID {
		t.Fatalf("expected %s, got %s", user.ID, found.ID)
	}
}

func TestRepositoryRejectsDuplicateEmail(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	if _, err := repo.Create(ctx, CreateUserDTO{Email: "dup@mf.local", PasswordHash: "hash", FullName: "One"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := repo.Create(ctx, CreateUserDTO{Email: "DUP@mf.local", PasswordHash: "hash", FullName: "Two"})
	if !db.IsUniqueViolation(err, "") {
		t.Fatalf("expected unique violation, got %v", err)
	}
}

func TestRepositoryUpdates(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{Email: "admin@mf.local", PasswordHash: "old", FullName: "Admin", Role: enums.UserRoleAdmin})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	if err := repo.UpdateLastLogin(ctx, user.ID, at); err != nil {
		t.Fatalf("UpdateLastLogin: %v", err)
	}
	if err := repo.UpdatePasswordHash(ctx, user.ID, "new"); err != nil {
		t.Fatalf("UpdatePasswordHash: %v", err)
	}

	reloaded, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if reloaded.PasswordHash != "new" || reloaded.LastLoginAt == nil || !reloaded.LastLoginAt.Equal(at) {
		t.Fatalf("unexpected reloaded user %+v", reloaded)
	}
	if reloaded.Role != enums.UserRoleAdmin {
		t.Fatalf("expected admin role, got %s", reloaded.Role)
	}

	count, err := repo.Count(ctx)
	if err != nil || count != 1 {
		t.Fatalf("expected one user, got %d (%v)", count, err)
	}
}
