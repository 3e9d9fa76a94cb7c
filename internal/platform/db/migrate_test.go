package db

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMigrations_SortedByVersion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "010_later.sql", "SELECT 10;")
	writeFile(t, dir, "001_core.sql", "SELECT 1;")
	writeFile(t, dir, "002_indexes.sql", "SELECT 2;")

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("loaded %d migrations, want 3", len(migrations))
	}
	for i, want := range []int{1, 2, 10} {
		if migrations[i].Version != want {
			t.Errorf("migration %d has version %d, want %d", i, migrations[i].Version, want)
		}
	}
	if migrations[0].SQL != "SELECT 1;" {
		t.Errorf("migration content %q", migrations[0].SQL)
	}
}

func TestLoadMigrations_SkipsNonMigrationFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "001_core.sql", "SELECT 1;")
	writeFile(t, dir, "README.md", "not a migration")
	writeFile(t, dir, "notes.sql", "no version prefix")
	writeFile(t, dir, "abc_bad.sql", "non-numeric prefix")

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migrations) != 1 {
		t.Fatalf("loaded %d migrations, want 1", len(migrations))
	}
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	m := NewMigrator(nil, "/does/not/exist")
	if _, err := m.LoadMigrations(); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
