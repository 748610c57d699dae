package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError(t *testing.T) {
	t.Run("Error message formatting", func(t *testing.T) {
		err := NewValidationError("dealerId", "cannot be empty", "")
		expected := "validation failed: field=dealerId, reason=cannot be empty, value="
		if err.Error() != expected {
			t.Errorf("expected %q, got %q", expected, err.Error())
		}
	})

	t.Run("errors.As conversion", func(t *testing.T) {
		err := NewValidationError("quantity", "must be positive", -5)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatal("errors.As should convert to ValidationError")
		}
		if ve.Field != "quantity" || ve.Reason != "must be positive" {
			t.Errorf("error fields not correctly preserved")
		}
	})

	t.Run("detected through wrapping", func(t *testing.T) {
		err := fmt.Errorf("submit: %w", NewValidationError("items", "empty", nil))
		if !errors.Is(err, &ValidationError{}) || !IsValidationError(err) {
			t.Error("wrapped ValidationError should still be detected")
		}
	})
}

func TestInsufficientStockError(t *testing.T) {
	t.Run("Error message uses product name when known", func(t *testing.T) {
		err := NewInsufficientStockError("p-001", "RTX 4090", "wh-main", 7, 3)
		expected := "insufficient stock: product=RTX 4090, warehouse=wh-main, requested=7, available=3"
		if err.Error() != expected {
			t.Errorf("expected %q, got %q", expected, err.Error())
		}
	})

	t.Run("Error message falls back to id", func(t *testing.T) {
		err := NewInsufficientStockError("p-001", "", "wh-main", 1, 0)
		expected := "insufficient stock: product=p-001, warehouse=wh-main, requested=1, available=0"
		if err.Error() != expected {
			t.Errorf("expected %q, got %q", expected, err.Error())
		}
	})

	t.Run("errors.As conversion", func(t *testing.T) {
		var ise *InsufficientStockError
		if !errors.As(NewInsufficientStockError("p-9", "X", "wh-main", 4, 2), &ise) {
			t.Fatal("errors.As should convert to InsufficientStockError")
		}
		if ise.Available != 2 || ise.ProductID != "p-9" {
			t.Errorf("unexpected fields: %+v", ise)
		}
	})
}

func TestNotFoundAndConflictErrors(t *testing.T) {
	nf := NewNotFoundError("dealer", "d-404")
	if nf.Error() != "dealer not found: id=d-404" {
		t.Errorf("unexpected message %q", nf.Error())
	}
	cf := NewConflictError("product", "sku", "ELEC-1")
	if cf.Error() != "duplicate product: sku=ELEC-1 already exists" {
		t.Errorf("unexpected message %q", cf.Error())
	}
	lm := NewLookupMissError("ZZZ-999")
	if lm.Error() != `no product matches code "ZZZ-999"` {
		t.Errorf("unexpected message %q", lm.Error())
	}
}

func TestErrorTypeDiscrimination(t *testing.T) {
	errs := map[string]error{
		"validation": NewValidationError("f", "r", nil),
		"stock":      NewInsufficientStockError("p", "", "w", 1, 0),
		"notfound":   NewNotFoundError("dealer", "d"),
		"conflict":   NewConflictError("dealer", "id", "d"),
		"lookup":     NewLookupMissError("c"),
	}
	checks := map[string]func(error) bool{
		"validation": IsValidationError,
		"stock":      IsInsufficientStockError,
		"notfound":   IsNotFoundError,
		"conflict":   IsConflictError,
		"lookup":     IsLookupMissError,
	}
	for errName, err := range errs {
		for checkName, check := range checks {
			want := errName == checkName
			if got := check(err); got != want {
				t.Errorf("%s checker on %s error: expected %v, got %v", checkName, errName, want, got)
			}
		}
	}
}
