package secrets

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLegalExpiryDate(t *testing.T) {
	for m := 1; m <= 12; m++ {
		for _, y := range []int{1, 25, 99} {
			s := fmt.Sprintf("%02d/%02d", m, y)
			assert.True(t, IsLegalExpiryDate(s), s)
		}
	}

	illegal := []string{
		"00/25", "13/25", "19/25", "01/00",
		"1/25", "01/5", "01/2025", "012/5",
		"ab/cd", "1a/25", "01/2b", "01-25", "",
	}
	for _, s := range illegal {
		assert.False(t, IsLegalExpiryDate(s), s)
	}
}

func TestIsLegalCreditCardNumber(t *testing.T) {
	assert.True(t, IsLegalCreditCardNumber("1234567890123456"))
	assert.True(t, IsLegalCreditCardNumber("0000000000000000"))

	for _, s := range []string{
		"", "123456789012345", "12345678901234567",
		"1234 5678 9012 3456", "123456789012345x", "１234567890123456",
	} {
		assert.False(t, IsLegalCreditCardNumber(s), s)
	}
}

func TestIsLegalCvcNumber(t *testing.T) {
	for i := 0; i < 1000; i += 37 {
		s := fmt.Sprintf("%03d", i)
		assert.True(t, IsLegalCvcNumber(s), s)
	}
	for _, s := range []string{"", "12", "1234", "12a", " 12", "1.2"} {
		assert.False(t, IsLegalCvcNumber(s), s)
	}
}
