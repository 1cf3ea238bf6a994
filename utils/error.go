package utils

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrorRecordNotFound = errors.New("record not found")

// ErrorInvalidStatus is returned when a caller supplies a status value that
// is not part of the work order lifecycle at all.
var ErrorInvalidStatus = errors.New("invalid status")

// ErrorZeroQuantity rejects movements that would not change any balance.
var ErrorZeroQuantity = errors.New("quantity must not be zero")

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}

// InsufficientStockError reports a rejected negative movement with enough
// context for the caller to build a user-facing message.
type InsufficientStockError struct {
	ItemId     int
	LocationId int
	Current    decimal.Decimal
	Required   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %d at location %d. Current: %s, Required: %s",
		e.ItemId, e.LocationId, e.Current, e.Required)
}

func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}

// DuplicateCodeError is a uniqueness violation on a human-assigned code.
type DuplicateCodeError struct {
	Entity string
	Code   string
}

func (e *DuplicateCodeError) Error() string {
	return fmt.Sprintf("%s code %q already exists", e.Entity, e.Code)
}

func IsDuplicateCode(err error) bool {
	var target *DuplicateCodeError
	return errors.As(err, &target)
}

// InvalidTransitionError is an illegal (but syntactically valid) status change.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition work order from %s to %s", e.From, e.To)
}

func IsInvalidTransition(err error) bool {
	var target *InvalidTransitionError
	return errors.As(err, &target)
}

// IntegrityConflictError blocks deletion of an entity still referenced by
// ledger/BOM/work order rows.
type IntegrityConflictError struct {
	Entity       string
	Name         string
	ReferencedBy string
}

func (e *IntegrityConflictError) Error() string {
	return fmt.Sprintf("%s %q is still referenced by %s and cannot be deleted", e.Entity, e.Name, e.ReferencedBy)
}

func IsIntegrityConflict(err error) bool {
	var target *IntegrityConflictError
	return errors.As(err, &target)
}
