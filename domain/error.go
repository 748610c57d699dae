// Package domain defines error types for the ledger.
package domain

import (
	"errors"
	"fmt"
)

// ValidationError is returned when input is incomplete or malformed. Nothing
// has been written when it is returned.
type ValidationError struct {
	Field  string
	Reason string
	Value  interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: field=%s, reason=%s, value=%v", e.Field, e.Reason, e.Value)
}

// Is allows proper error type checking with errors.Is()
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// InsufficientStockError is returned when a transaction asks for more than
// the source warehouse holds.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	WarehouseID string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("insufficient stock: product=%s, warehouse=%s, requested=%d, available=%d",
		name, e.WarehouseID, e.Requested, e.Available)
}

// Is allows proper error type checking with errors.Is()
func (e *InsufficientStockError) Is(target error) bool {
	_, ok := target.(*InsufficientStockError)
	return ok
}

// NotFoundError is returned when an entity id does not resolve.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: id=%s", e.Kind, e.ID)
}

// Is allows proper error type checking with errors.Is()
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// ConflictError is returned when a business key is already taken.
type ConflictError struct {
	Kind  string
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("duplicate %s: %s=%s already exists", e.Kind, e.Field, e.Value)
}

// Is allows proper error type checking with errors.Is()
func (e *ConflictError) Is(target error) bool {
	_, ok := target.(*ConflictError)
	return ok
}

// LookupMissError is returned when a scanned code or imported SKU matches no
// product. Batch callers record it and carry on.
type LookupMissError struct {
	Code string
}

func (e *LookupMissError) Error() string {
	return fmt.Sprintf("no product matches code %q", e.Code)
}

// Is allows proper error type checking with errors.Is()
func (e *LookupMissError) Is(target error) bool {
	_, ok := target.(*LookupMissError)
	return ok
}

func NewValidationError(field, reason string, value interface{}) error {
	return &ValidationError{Field: field, Reason: reason, Value: value}
}

func NewInsufficientStockError(productID, productName, warehouseID string, requested, available int) error {
	return &InsufficientStockError{
		ProductID:   productID,
		ProductName: productName,
		WarehouseID: warehouseID,
		Requested:   requested,
		Available:   available,
	}
}

func NewNotFoundError(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

func NewConflictError(kind, field, value string) error {
	return &ConflictError{Kind: kind, Field: field, Value: value}
}

func NewLookupMissError(code string) error {
	return &LookupMissError{Code: code}
}

// Type assertion helpers for use with errors.As()

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsInsufficientStockError(err error) bool {
	var ise *InsufficientStockError
	return errors.As(err, &ise)
}

func IsNotFoundError(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

func IsConflictError(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

func IsLookupMissError(err error) bool {
	var lme *LookupMissError
	return errors.As(err, &lme)
}
