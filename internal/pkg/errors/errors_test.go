package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(ErrNotFound) {
		t.Fatalf("sentinel should classify as not found")
	}
	if !IsNotFound(fmt.Errorf("load run: %w", gorm.ErrRecordNotFound)) {
		t.Fatalf("wrapped gorm.ErrRecordNotFound should classify as not found")
	}
	if IsNotFound(fmt.Errorf("boom")) {
		t.Fatalf("unrelated error classified as not found")
	}
	if IsNotFound(nil) {
		t.Fatalf("nil classified as not found")
	}
}

func TestIsConflict(t *testing.T) {
	if !IsConflict(ErrConflict) {
		t.Fatalf("sentinel should classify as conflict")
	}
	dup := fmt.Errorf("insert record: %w", &pgconn.PgError{Code: "23505"})
	if !IsConflict(dup) {
		t.Fatalf("unique violation should classify as conflict")
	}
	if IsConflict(&pgconn.PgError{Code: "40001"}) {
		t.Fatalf("serialization failure is not a conflict")
	}
}

func TestIsRetryable(t *testing.T) {
	retryable := []error{
		ErrUnavailable,
		context.DeadlineExceeded,
		fmt.Errorf("claim run: %w", context.Canceled),
		&pgconn.PgError{Code: "40001"},
		&pgconn.PgError{Code: "40P01"},
		&pgconn.PgError{Code: "55P03"},
		fmt.Errorf("deadlock detected"),
	}
	for _, err := range retryable {
		if !IsRetryable(err) {
			t.Fatalf("expected retryable: %v", err)
		}
	}

	if IsRetryable(nil) {
		t.Fatalf("nil classified as retryable")
	}
	if IsRetryable(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("unique violation classified as retryable")
	}
	if IsRetryable(fmt.Errorf("missing run")) {
		t.Fatalf("plain error classified as retryable")
	}
}
