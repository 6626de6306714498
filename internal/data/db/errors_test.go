package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "gorm duplicated", err: fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), want: true},
		{name: "pg unique", err: fmt.Errorf("wrap: %w", &pgconn.PgError{Code: "23505"}), want: true},
		{name: "pg fk", err: &pgconn.PgError{Code: "23503"}, want: false},
		{name: "other", err: errors.New("boom"), want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsUniqueViolation(tc.err); got != tc.want {
				t.Fatalf("IsUniqueViolation: want=%v got=%v", tc.want, got)
			}
		})
	}
}

func TestPostgresDSNDefaultsSSLMode(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "quidz"}
	want := "postgres://u:p@db:5432/quidz?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Fatalf("DSN: want=%q got=%q", want, got)
	}
}
