package domain

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes the failures this core returns to its callers.
type ErrorKind string

const (
	KindValidation              ErrorKind = "VALIDATION"
	KindNotFound                ErrorKind = "NOT_FOUND"
	KindInsufficientStock       ErrorKind = "INSUFFICIENT_STOCK"
	KindInvalidStatusTransition ErrorKind = "INVALID_STATUS_TRANSITION"
	KindAuthorization           ErrorKind = "AUTHORIZATION"
	KindFlashDealUnavailable    ErrorKind = "FLASH_DEAL_UNAVAILABLE"
	KindConflict                ErrorKind = "CONFLICT"
)

// Error is a typed failure with a machine-readable kind.
type Error struct {
	Kind    ErrorKind
	Message string
	// Entity and ID identify the record involved, when there is one.
	Entity string
	ID     string
}

func (e *Error) Error() string {
	if e.Entity != "" && e.ID != "" {
		return fmt.Sprintf("%s: %s (%s=%s)", e.Kind, e.Message, e.Entity, e.ID)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewValidation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NewEmptyCart() *Error {
	return &Error{Kind: KindValidation, Message: "cart is empty"}
}

func NewNotFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found", Entity: entity, ID: id}
}

func NewInsufficientStock(listingID string, requested, available int) *Error {
	return &Error{
		Kind:    KindInsufficientStock,
		Message: fmt.Sprintf("requested %d, available %d", requested, available),
		Entity:  "listing",
		ID:      listingID,
	}
}

func NewInvalidTransition(from, to OrderStatus) *Error {
	return &Error{
		Kind:    KindInvalidStatusTransition,
		Message: fmt.Sprintf("cannot transition %s to %s", from, to),
	}
}

func NewNotAuthorized(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

func NewFlashDealUnavailable(restaurantID string) *Error {
	return &Error{
		Kind:    KindFlashDealUnavailable,
		Message: "restaurant has no flash deals available",
		Entity:  "restaurant",
		ID:      restaurantID,
	}
}

func NewConflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// IsKind reports whether err (or anything it wraps) is a core Error of the
// given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func IsNotFound(err error) bool          { return IsKind(err, KindNotFound) }
func IsValidation(err error) bool        { return IsKind(err, KindValidation) }
func IsInsufficientStock(err error) bool { return IsKind(err, KindInsufficientStock) }
func IsConflict(err error) bool          { return IsKind(err, KindConflict) }
