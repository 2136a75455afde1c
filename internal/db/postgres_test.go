package db_test

import (
	"testing"

	"github.com/clipqa/annotation-service/internal/db"
)

func TestMigrationURL(t *testing.T) {
	tests := []struct{ in, want string }{
		{"postgres://u:p@h:5432/annotations", "pgx5://u:p@h:5432/annotations"},
		{"postgresql://u@h/annotations?sslmode=disable", "pgx5://u@h/annotations?sslmode=disable"},
		{"pgx5://h/annotations", "pgx5://h/annotations"},
		{"h/annotations", "pgx5://h/annotations"},
	}
	for _, tc := range tests {
		if got := db.MigrationURL(tc.in); got != tc.want {
			t.Fatalf("MigrationURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
