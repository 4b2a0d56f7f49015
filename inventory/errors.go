package inventory

import (
	"errors"
	"fmt"

	"github.com/warp/stockledger/docstore"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidAdjustment is returned for a zero delta or empty keys.
	ErrInvalidAdjustment = errors.New("invalid stock adjustment")

	// ErrInsufficientStock is returned when the floor is enabled and an
	// adjustment would take quantity below zero.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrValidation is returned when a record fails Validate.
	ErrValidation = errors.New("validation failed")

	// ErrNoConversion is returned when no UOM conversion links two units.
	ErrNoConversion = errors.New("no unit conversion")

	// ErrFractionalQuantity is returned when a converted quantity is not a
	// whole number of base units.
	ErrFractionalQuantity = errors.New("quantity is not a whole number of base units")

	// ErrMalformedRecord is returned when a stored document does not have the
	// shape of its record type. Inventory records in this state are rewritten
	// by Reconciler.Repair.
	ErrMalformedRecord = errors.New("malformed stored record")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// InsufficientStockError provides details about a rejected withdrawal.
type InsufficientStockError struct {
	InventoryID string
	Available   int64
	Requested   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, change %d",
		e.InventoryID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// ValidationError names the offending field.
type ValidationError struct {
	Collection string
	Field      string
	Message    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Collection, e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(collection, field, msg string) error {
	return &ValidationError{Collection: collection, Field: field, Message: msg}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAdjustment) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNoConversion) ||
		errors.Is(err, ErrFractionalQuantity) ||
		errors.Is(err, ErrLedgerOwned) ||
		errors.Is(err, docstore.ErrInvalidInput)
}
