package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/scancart-backend/pkg/config"
	"github.com/angelmondragon/scancart-backend/pkg/db"
	"github.com/angelmondragon/scancart-backend/pkg/enums"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))

	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_cart_blobs.sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS cart_blobs",
		`"key" TEXT PRIMARY KEY`,
		"DROP TABLE IF EXISTS cart_blobs",
	} {
		require.Contains(t, string(data), sub)
	}
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "create_things.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	err := ValidateDir(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid migration filename")

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_things.sql"), []byte("-- +goose Up\n"), 0o644))
	err = ValidateDir(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "-- +goose Down")

	dir = t.TempDir()
	body := []byte("-- +goose Up\n-- +goose Down\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_a.sql"), body, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_b.sql"), body, 0o644))
	err = ValidateDir(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate migration version")
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Cart Index!")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_cart_index.sql"), path)
	require.NoError(t, ValidateDir(dir))

	_, err = CreateSQLMigration(dir, "!!!")
	require.Error(t, err)
}

func TestCreateSQLMigrationRefusesToOverwrite(t *testing.T) {
	fixed := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	prev := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = prev })

	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "cart_index")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "20260302093000_cart_index.sql"), path)

	_, err = CreateSQLMigration(dir, "cart index")
	require.ErrorContains(t, err, "already exists")
}

func TestRunUpOnSQLite(t *testing.T) {
	ctx := context.Background()
	client, err := db.New(ctx, enums.StoreDriverSQLite, config.DBConfig{DSN: "file:migrate_run?mode=memory&cache=shared"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	sqlDB, err := client.SQLDB()
	require.NoError(t, err)

	require.NoError(t, Run(ctx, sqlDB, enums.StoreDriverSQLite, "", "up"))
	require.True(t, client.DB().Migrator().HasTable("cart_blobs"))

	require.NoError(t, MigrateToVersion(ctx, sqlDB, enums.StoreDriverSQLite, "", "0"))
	require.False(t, client.DB().Migrator().HasTable("cart_blobs"))
}

func TestRunRejectsNonSQLDriver(t *testing.T) {
	ctx := context.Background()
	client, err := db.New(ctx, enums.StoreDriverSQLite, config.DBConfig{DSN: "file:migrate_reject?mode=memory&cache=shared"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	sqlDB, err := client.SQLDB()
	require.NoError(t, err)
	require.Error(t, Run(ctx, sqlDB, enums.StoreDriverMemory, "", "up"))
	require.Error(t, Run(ctx, nil, enums.StoreDriverSQLite, "", "up"))
}
