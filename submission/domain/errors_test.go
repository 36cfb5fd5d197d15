package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestValidationError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &ValidationError{Field: "email", Kind: KindTooLong})

	if !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong")
	}
	if errors.Is(err, ErrEmpty) || errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected only ErrTooLong to match")
	}
	if got := err.Error(); got != "wrapped: email: TooLong" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestStoreError_UnwrapAndIs(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(&StoreError{Op: OpInsertEmail, Kind: StoreConnectivity, Err: cause})

	if !errors.Is(err, ErrStore) {
		t.Fatalf("expected ErrStore")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable via Unwrap")
	}
	if got := err.Error(); got != "insert_email: connectivity error: connection refused" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestTimestampIsRFC3339UTC(t *testing.T) {
	loc := time.FixedZone("X", 2*3600)
	got := Timestamp(time.Date(2024, 1, 2, 3, 4, 5, 0, loc))
	if got != "2024-01-02T01:04:05Z" {
		t.Fatalf("unexpected timestamp %q", got)
	}
}
