package inventory

import (
	"errors"
	"fmt"
)

// Booking failures. Every error returned by Engine.Book wraps one of these
// in a *BookingError.
var (
	ErrStrictBookingRequiresCost = errors.New("booking_method STRICT requires explicit cost on posting")
	ErrStrictLotNotFound         = errors.New("booking_method STRICT could not find lot")
	ErrStrictLotAmbiguous        = errors.New("booking_method STRICT found ambiguous lots")
	ErrStrictInsufficientUnits   = errors.New("booking_method STRICT has insufficient units")
)

// ErrUnknownMethod is returned by ParseMethod.
var ErrUnknownMethod = errors.New("unknown booking method")

// BookingError is returned when a posting cannot be booked.
type BookingError struct {
	Account   string
	Currency  string
	EntryID   int
	PostingID int
	Err       error
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%v for account %s (%s)", e.Err, e.Account, e.Currency)
}

func (e *BookingError) Unwrap() error {
	return e.Err
}
