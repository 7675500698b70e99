package secrets

const (
	cardNumberLen = 16
	cvcLen        = 3
)

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// allDigits reports whether s is exactly n ASCII digits.
func allDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// twoDigits parses s[i:i+2] as a decimal number.
func twoDigits(s string, i int) int {
	return int(s[i]-'0')*10 + int(s[i+1]-'0')
}

// IsLegalCreditCardNumber reports whether number is 16 contiguous digits.
func IsLegalCreditCardNumber(number string) bool {
	return allDigits(number, cardNumberLen)
}

// IsLegalCvcNumber reports whether number is exactly 3 digits.
func IsLegalCvcNumber(number string) bool {
	return allDigits(number, cvcLen)
}

// isExpiryFormat checks the MM/YY shape only.
func isExpiryFormat(expiry string) bool {
	if len(expiry) != 5 || expiry[2] != '/' {
		return false
	}
	return isDigit(expiry[0]) && isDigit(expiry[1]) &&
		isDigit(expiry[3]) && isDigit(expiry[4])
}

// IsLegalExpiryDate reports whether expiry is MM/YY with a month between 1
// and 12 and a year of at least 1.
func IsLegalExpiryDate(expiry string) bool {
	if !isExpiryFormat(expiry) {
		return false
	}
	month := twoDigits(expiry, 0)
	year := twoDigits(expiry, 3)
	return month >= 1 && month <= 12 && year >= 1
}
