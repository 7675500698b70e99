package secrets

import "errors"

var (
	// ErrInvalidCardNumber is returned when a card number is not 16 digits.
	ErrInvalidCardNumber = errors.New("invalid credit card number: expected 16 digits")
	// ErrInvalidCvc is returned when a CVC is not exactly 3 digits.
	ErrInvalidCvc = errors.New("invalid CVC number: expected 3 digits")
	// ErrInvalidExpiryDate is returned when an expiry date is not a valid MM/YY.
	ErrInvalidExpiryDate = errors.New("invalid expiry date: expected MM/YY")

	// ErrUnknownType is returned by Parse for a type tag with no decoder.
	ErrUnknownType = errors.New("unknown secret type")
	// ErrMalformedLine is returned by Parse when a line cannot be split into
	// the fields its type expects.
	ErrMalformedLine = errors.New("malformed secret line")
)
