package db

import (
	"strings"
	"testing"
)

func TestRenderMigrationSubstitutesTimezone(t *testing.T) {
	stmt := "CREATE INDEX i ON t (((timezone('{{timezone}}', ts))::date));"

	got, err := renderMigration(stmt, "Asia/Makassar")
	if err != nil {
		t.Fatalf("renderMigration: %v", err)
	}
	if !strings.Contains(got, "timezone('Asia/Makassar', ts)") {
		t.Fatalf("placeholder not rendered: %s", got)
	}
	if strings.Contains(got, "{{timezone}}") {
		t.Fatalf("placeholder left behind: %s", got)
	}
}

func TestRenderMigrationWithoutPlaceholder(t *testing.T) {
	stmt := "CREATE TABLE plain (id INT);"

	got, err := renderMigration(stmt, "")
	if err != nil {
		t.Fatalf("renderMigration: %v", err)
	}
	if got != stmt {
		t.Fatalf("statement changed: %s", got)
	}
}

func TestRenderMigrationRejectsUnsafeTimezone(t *testing.T) {
	stmt := "SELECT timezone('{{timezone}}', now());"

	for _, tz := range []string{"", "x'; DROP TABLE users; --", `a"b`} {
		if _, err := renderMigration(stmt, tz); err == nil {
			t.Fatalf("expected error for timezone %q", tz)
		}
	}
}
