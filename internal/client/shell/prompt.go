package shell

import (
	"fmt"
	"strings"

	"github.com/atinyakov/secretkeeper/internal/secrets"
	"github.com/atinyakov/secretkeeper/internal/service"
)

// prompt prints label and reads one trimmed line. ok is false on end of input.
func (s *Shell) prompt(label string) (line string, ok bool) {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

// promptUntil keeps asking until valid accepts the answer. With optional
// set, an empty answer is returned as is.
func (s *Shell) promptUntil(label, hint string, optional bool, valid func(string) bool) (string, bool) {
	for {
		v, ok := s.prompt(label)
		if !ok {
			return "", false
		}
		if (optional && v == "") || valid(v) {
			return v, true
		}
		fmt.Fprintln(s.out, hint)
	}
}

const nameHint = "Name must be new and must not contain ~#@*+%{}<>[]|\"_"

func (s *Shell) legalNewName(name string) bool {
	if name == "" || secrets.IsIllegalName(name) {
		return false
	}
	_, err := s.vault.Get(name)
	return err != nil
}

// PromptForCreditCard asks for every field of a new card, re-asking until
// each one is legal. ok is false if input ended first.
func (s *Shell) PromptForCreditCard() (in service.CreditCardInput, ok bool) {
	steps := []struct {
		dst   *string
		label string
		hint  string
		opt   bool
		valid func(string) bool
	}{
		{&in.Name, "Enter name: ", nameHint, false, s.legalNewName},
		{&in.FolderName, "Enter folder (leave empty for none): ", "", true, func(string) bool { return true }},
		{&in.FullName, "Enter card holder full name: ", "", false, func(string) bool { return true }},
		{&in.Number, "Enter card number (16 digits): ", secrets.ErrInvalidCardNumber.Error(), false, secrets.IsLegalCreditCardNumber},
		{&in.Cvc, "Enter CVC (3 digits): ", secrets.ErrInvalidCvc.Error(), false, secrets.IsLegalCvcNumber},
		{&in.ExpiryDate, "Enter expiry date (MM/YY): ", secrets.ErrInvalidExpiryDate.Error(), false, secrets.IsLegalExpiryDate},
	}
	for _, st := range steps {
		v, ok := s.promptUntil(st.label, st.hint, st.opt, st.valid)
		if !ok {
			return in, false
		}
		*st.dst = v
	}
	return in, true
}

// PromptEditCreditCard asks for new card values; empty answers keep the
// current value.
func (s *Shell) PromptEditCreditCard() (patch service.CreditCardPatch, ok bool) {
	steps := []struct {
		dst   **string
		label string
		hint  string
		valid func(string) bool
	}{
		{&patch.FullName, "New full name (empty keeps): ", "", func(string) bool { return true }},
		{&patch.Number, "New card number (empty keeps): ", secrets.ErrInvalidCardNumber.Error(), secrets.IsLegalCreditCardNumber},
		{&patch.Cvc, "New CVC (empty keeps): ", secrets.ErrInvalidCvc.Error(), secrets.IsLegalCvcNumber},
		{&patch.ExpiryDate, "New expiry date (empty keeps): ", secrets.ErrInvalidExpiryDate.Error(), secrets.IsLegalExpiryDate},
	}
	for _, st := range steps {
		v, ok := s.promptUntil(st.label, st.hint, true, st.valid)
		if !ok {
			return patch, false
		}
		if v != "" {
			*st.dst = &v
		}
	}
	return patch, true
}
