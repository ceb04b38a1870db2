package inventory

import (
	"fmt"

	"github.com/branchstock/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InsufficientStockError is returned when a movement or allocation requests
// more stock than is available. It carries the requested and available
// quantities so callers can report the shortfall.
type InsufficientStockError struct {
	Requested decimal.Decimal
	Available decimal.Decimal
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: requested %s, available %s",
		e.Requested.String(), e.Available.String())
}

// Is matches the shared INSUFFICIENT_STOCK sentinel
func (e *InsufficientStockError) Is(target error) bool {
	t, ok := target.(*shared.DomainError)
	if !ok {
		return false
	}
	return t.Code == shared.ErrInsufficientStock.Code
}

// NewInsufficientStockError creates an InsufficientStockError
func NewInsufficientStockError(requested, available decimal.Decimal) *InsufficientStockError {
	return &InsufficientStockError{Requested: requested, Available: available}
}

// InsufficientAvailableError is returned when a reservation requests more
// than the aggregate's available quantity.
type InsufficientAvailableError struct {
	Requested decimal.Decimal
	Available decimal.Decimal
}

// Error implements the error interface
func (e *InsufficientAvailableError) Error() string {
	return fmt.Sprintf("insufficient available quantity: requested %s, available %s",
		e.Requested.String(), e.Available.String())
}

// Is matches the shared INSUFFICIENT_AVAILABLE sentinel
func (e *InsufficientAvailableError) Is(target error) bool {
	t, ok := target.(*shared.DomainError)
	if !ok {
		return false
	}
	return t.Code == shared.ErrInsufficientAvailable.Code
}

// NewInsufficientAvailableError creates an InsufficientAvailableError
func NewInsufficientAvailableError(requested, available decimal.Decimal) *InsufficientAvailableError {
	return &InsufficientAvailableError{Requested: requested, Available: available}
}
