package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestMigrationFiles(t *testing.T) {
	files, err := MigrationFiles()
	if err != nil {
		t.Fatalf("MigrationFiles() error = %v", err)
	}
	want := []string{"001_progress.sql", "002_analyses.sql"}
	if len(files) != len(want) {
		t.Fatalf("MigrationFiles() = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("file %d = %s, want %s", i, files[i], want[i])
		}
	}
}

func TestMigrateAppliesPending(t *testing.T) {
	pool, mockSQL := newMockPool(t)

	mockSQL.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockSQL.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("001_progress.sql"))
	mockSQL.ExpectBegin()
	mockSQL.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS analyses")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockSQL.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations (version) VALUES ($1)")).
		WithArgs("002_analyses.sql").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockSQL.ExpectCommit()

	applied, err := pool.Migrate(context.Background())
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if len(applied) != 1 || applied[0] != "002_analyses.sql" {
		t.Errorf("Migrate() applied %v, want [002_analyses.sql]", applied)
	}
	if err := mockSQL.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
