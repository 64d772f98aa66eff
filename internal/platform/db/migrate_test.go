package db

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMigrations_SortsAndSkips(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"002_billing.sql": "CREATE TABLE b (id int);",
		"001_core.sql":    "CREATE TABLE a (id int);",
		"notes.txt":       "not a migration",
		"README.sql":      "no numeric prefix",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[1].Version != 2 {
		t.Errorf("expected versions [1 2], got [%d %d]", migrations[0].Version, migrations[1].Version)
	}
	if migrations[0].Name != "001_core.sql" {
		t.Errorf("unexpected first migration: %s", migrations[0].Name)
	}
}

// Treatment and billing history must survive patient deletion, so their
// patient_id columns may not reference patient(id) at all: a cascade would
// wipe the retained rows the moment the patient row goes away.
func TestCoreSchema_HistoryTablesKeepNoPatientFK(t *testing.T) {
	m := NewMigrator(nil, filepath.Join("..", "..", "..", "migrations"))
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("load migrations: %v", err)
	}
	if len(migrations) == 0 || migrations[0].Name != "001_core.sql" {
		t.Fatalf("expected 001_core.sql as first migration")
	}
	schema := migrations[0].SQL

	for _, table := range []string{"treatment_record", "billing"} {
		block := tableDefinition(t, schema, table)
		for _, line := range strings.Split(block, "\n") {
			if !strings.Contains(line, "patient_id") {
				continue
			}
			if strings.Contains(line, "REFERENCES patient") {
				t.Errorf("%s.patient_id must not reference patient: %s", table, strings.TrimSpace(line))
			}
			if !strings.Contains(line, "NOT NULL") {
				t.Errorf("%s.patient_id must stay NOT NULL: %s", table, strings.TrimSpace(line))
			}
		}
	}
}

func tableDefinition(t *testing.T, schema, table string) string {
	t.Helper()
	marker := "CREATE TABLE IF NOT EXISTS " + table + " ("
	start := strings.Index(schema, marker)
	if start < 0 {
		t.Fatalf("table %s not found in schema", table)
	}
	rest := schema[start:]
	end := strings.Index(rest, ");")
	if end < 0 {
		t.Fatalf("unterminated definition for table %s", table)
	}
	return rest[:end]
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	m := NewMigrator(nil, "/nonexistent/migrations")
	if _, err := m.LoadMigrations(); err == nil {
		t.Error("expected error for missing directory")
	}
}
