package secrets

import (
	"fmt"

	"github.com/atinyakov/secretkeeper/internal/codec"
)

// CreditCardType is the type tag of a credit card line.
const CreditCardType = "CreditCard"

// creditCardFields is the number of comma-separated fields in a credit card
// line: tag, name, folder, full name, number, CVC, expiry.
const creditCardFields = 7

func init() {
	Register(CreditCardType, decodeCreditCard)
}

// CreditCard is a payment card secret. Card number, CVC and expiry date are
// always legal: every constructor and setter validates before storing.
type CreditCard struct {
	Base
	fullName         string
	creditCardNumber string
	cvcNumber        string
	expiryDate       string
}

var _ Secret = (*CreditCard)(nil)

// NewCreditCard creates a credit card that is not in any folder.
func NewCreditCard(name, fullName, creditCardNumber, cvcNumber, expiryDate string) (*CreditCard, error) {
	return AddCreditCard(name, Unlinked, fullName, creditCardNumber, cvcNumber, expiryDate)
}

// AddCreditCard creates a credit card in folderName. The card number, the
// expiry date and the CVC are checked in that order and the first violation
// is returned; no card is built in that case.
//
// The name is not checked; callers reject it with IsIllegalName first.
func AddCreditCard(name, folderName, fullName, creditCardNumber, cvcNumber, expiryDate string) (*CreditCard, error) {
	if !IsLegalCreditCardNumber(creditCardNumber) {
		return nil, ErrInvalidCardNumber
	}
	if !IsLegalExpiryDate(expiryDate) {
		return nil, ErrInvalidExpiryDate
	}
	if !IsLegalCvcNumber(cvcNumber) {
		return nil, ErrInvalidCvc
	}
	return &CreditCard{
		Base:             NewBase(name, folderName),
		fullName:         fullName,
		creditCardNumber: creditCardNumber,
		cvcNumber:        cvcNumber,
		expiryDate:       expiryDate,
	}, nil
}

// Type returns CreditCardType.
func (c *CreditCard) Type() string { return CreditCardType }

func (c *CreditCard) FullName() string { return c.fullName }

func (c *CreditCard) CreditCardNumber() string { return c.creditCardNumber }

func (c *CreditCard) CvcNumber() string { return c.cvcNumber }

func (c *CreditCard) ExpiryDate() string { return c.expiryDate }

// SetFullName replaces the card holder name. Any value is accepted.
func (c *CreditCard) SetFullName(fullName string) {
	c.fullName = fullName
}

// SetCreditCardNumber replaces the card number. An illegal number leaves
// the card unchanged.
func (c *CreditCard) SetCreditCardNumber(number string) error {
	if !IsLegalCreditCardNumber(number) {
		return ErrInvalidCardNumber
	}
	c.creditCardNumber = number
	return nil
}

// SetCvcNumber replaces the CVC. An illegal CVC leaves the card unchanged.
func (c *CreditCard) SetCvcNumber(cvc string) error {
	if !IsLegalCvcNumber(cvc) {
		return ErrInvalidCvc
	}
	c.cvcNumber = cvc
	return nil
}

// SetExpiryDate replaces the expiry date. An illegal date leaves the card
// unchanged.
func (c *CreditCard) SetExpiryDate(expiry string) error {
	if !IsLegalExpiryDate(expiry) {
		return ErrInvalidExpiryDate
	}
	c.expiryDate = expiry
	return nil
}

// Clone returns an independent copy of the card.
func (c *CreditCard) Clone() *CreditCard {
	cp := *c
	return &cp
}

// RevealStr renders all fields of the card, one per line.
func (c *CreditCard) RevealStr() string {
	return fmt.Sprintf(
		"Name: %s\n"+
			"Full Name: %s\n"+
			"Credit Card Number: %s\n"+
			"CVC Number: %s\n"+
			"Expiry Date: %s",
		c.Name(), c.fullName, c.creditCardNumber, c.cvcNumber, c.expiryDate)
}

// StringForDatabase renders the canonical line:
//
//	CreditCard,<name>,<folder>,<full name>,<number>,<cvc>,<MM/YY>
//
// The expiry date is written as is; it never contains a separator.
func (c *CreditCard) StringForDatabase() string {
	return codec.Join(
		CreditCardType,
		c.Base.StringForDatabase(),
		codec.Encode(c.fullName),
		codec.Encode(c.creditCardNumber),
		codec.Encode(c.cvcNumber),
		c.expiryDate,
	)
}

func decodeCreditCard(fields []string) (Secret, error) {
	if len(fields) != creditCardFields {
		return nil, fmt.Errorf("%w: %s wants %d fields, got %d",
			ErrMalformedLine, CreditCardType, creditCardFields, len(fields))
	}
	decoded, err := decodeFields(fields[1:6])
	if err != nil {
		return nil, err
	}
	name, folder, fullName, number, cvc := decoded[0], decoded[1], decoded[2], decoded[3], decoded[4]

	card, err := AddCreditCard(name, folder, fullName, number, cvc, fields[6])
	if err != nil {
		return nil, fmt.Errorf("decode %s %q: %w", CreditCardType, name, err)
	}
	return card, nil
}
