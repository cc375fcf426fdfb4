package db

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestOpenSQLiteAppliesEmbeddedMigrationsOnCleanDatabase(t *testing.T) {
	database, err := OpenSQLite(filepath.Join(t.TempDir(), "kgjournal-clean.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() unexpected error: %v", err)
	}
	closeOnCleanup(t, database)

	for _, table := range []string{"users", "companies", "records", "schema_migrations"} {
		if !database.Migrator().HasTable(table) {
			t.Fatalf("expected table %s to exist", table)
		}
	}

	var applied int64
	if err := database.Table("schema_migrations").Count(&applied).Error; err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	if applied != 2 {
		t.Fatalf("expected 2 applied migrations, got %d", applied)
	}
}

func TestOpenSQLiteIsIdempotentOnReopen(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "kgjournal-reopen.db")

	first, err := OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("first OpenSQLite() unexpected error: %v", err)
	}
	sqlDB, _ := first.DB()
	_ = sqlDB.Close()

	second, err := OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("second OpenSQLite() unexpected error: %v", err)
	}
	closeOnCleanup(t, second)
}

func TestApplyMigrationsRunsOnlyPendingInVersionOrder(t *testing.T) {
	database, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "kgjournal-order.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	closeOnCleanup(t, database)

	files := fstest.MapFS{
		"010_second.sql": {Data: []byte("INSERT INTO probe(value) VALUES ('second')")},
		"002_first.sql":  {Data: []byte("CREATE TABLE probe (value TEXT); INSERT INTO probe(value) VALUES ('first');")},
		"README.md":      {Data: []byte("ignored")},
	}
	if err := applyMigrations(database, files); err != nil {
		t.Fatalf("applyMigrations() unexpected error: %v", err)
	}
	if err := applyMigrations(database, files); err != nil {
		t.Fatalf("second applyMigrations() unexpected error: %v", err)
	}

	values := make([]string, 0)
	if err := database.Table("probe").Order("rowid").Pluck("value", &values).Error; err != nil {
		t.Fatalf("read probe: %v", err)
	}
	if len(values) != 2 || values[0] != "first" || values[1] != "second" {
		t.Fatalf("probe values = %#v, want [first second]", values)
	}
}

func TestReadMigrationsRejectsDuplicateVersions(t *testing.T) {
	files := fstest.MapFS{
		"001_a.sql": {Data: []byte("SELECT 1")},
		"1_b.sql":   {Data: []byte("SELECT 2")},
	}
	if _, err := readMigrations(files); err == nil {
		t.Fatal("expected duplicate version error")
	}
}

func closeOnCleanup(t *testing.T, database *gorm.DB) {
	t.Helper()
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
}
