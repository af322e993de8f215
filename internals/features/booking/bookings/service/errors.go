// file: internals/features/booking/bookings/service/errors.go
package service

import (
	"errors"
	"fmt"
)

// Sentinel errors lifecycle booking. Controller yang memetakan ke status HTTP.
var (
	ErrTemplateNotFound  = errors.New("session template not found")
	ErrInstanceNotFound  = errors.New("session instance not found")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrForbidden         = errors.New("resource belongs to another organization")
	ErrTemplateClosed    = errors.New("template is closed for booking")
	ErrInstanceCancelled = errors.New("session instance is cancelled")
	ErrBookingCancelled  = errors.New("booking is cancelled")
	ErrInvalidSpots      = errors.New("number of spots must be at least 1")
)

// CapacityExceededError: permintaan melebihi sisa kapasitas saat tulis.
// Membawa sisa terkini supaya caller bisa arahkan user ke flow waiting list.
type CapacityExceededError struct {
	Remaining int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("capacity exceeded, %d spot(s) remaining", e.Remaining)
}

func IsCapacityExceeded(err error) (*CapacityExceededError, bool) {
	var ce *CapacityExceededError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound) ||
		errors.Is(err, ErrInstanceNotFound) ||
		errors.Is(err, ErrBookingNotFound)
}
