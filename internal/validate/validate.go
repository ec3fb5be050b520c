// Package validate holds the input validation rules shared by the user,
// order and payment modules.
package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	emailPattern      = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@(.+)$`)
	phonePattern      = regexp.MustCompile(`^[0-9]{10,15}$`)
	postalCodePattern = regexp.MustCompile(`^[0-9]{5}$`)
	citizenIDPattern  = regexp.MustCompile(`^[0-9]{16}$`)
	walletIDPattern   = regexp.MustCompile(`^[a-zA-Z0-9]{6,20}$`)
	cvvPattern        = regexp.MustCompile(`^[0-9]{3,4}$`)
	expiryPattern     = regexp.MustCompile(`^[0-9]{2}/[0-9]{2}$`)
	cardPattern       = regexp.MustCompile(`^[0-9]{13,19}$`)
)

// Email reports whether s looks like an email address.
func Email(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	return emailPattern.MatchString(s)
}

// Phone accepts 10-15 digits, ignoring spaces and dashes.
func Phone(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	return phonePattern.MatchString(stripSeparators(s))
}

// PostalCode accepts exactly five digits.
func PostalCode(s string) bool {
	return postalCodePattern.MatchString(strings.TrimSpace(s))
}

// CitizenID accepts a 16-digit national id (KTP) used for cash verification.
func CitizenID(s string) bool {
	return citizenIDPattern.MatchString(strings.TrimSpace(s))
}

// WalletID accepts 6-20 alphanumeric characters.
func WalletID(s string) bool {
	return walletIDPattern.MatchString(strings.TrimSpace(s))
}

// CVV accepts 3-4 digits.
func CVV(s string) bool {
	return cvvPattern.MatchString(s)
}

// Password requires at least eight characters.
func Password(s string) bool {
	return len(s) >= 8
}

// Price must be strictly positive.
func Price(p float64) bool { return p > 0 }

// Quantity must be strictly positive.
func Quantity(q int) bool { return q > 0 }

// NotEmpty reports whether s has any non-whitespace content.
func NotEmpty(s string) bool { return strings.TrimSpace(s) != "" }

// CreditCard validates a card number with the Luhn checksum after
// stripping spaces and dashes.
func CreditCard(number string) bool {
	cleaned := stripSeparators(number)
	if !cardPattern.MatchString(cleaned) {
		return false
	}

	sum := 0
	alternate := false
	for i := len(cleaned) - 1; i >= 0; i-- {
		n := int(cleaned[i] - '0')
		if alternate {
			n *= 2
			if n > 9 {
				n = n%10 + 1
			}
		}
		sum += n
		alternate = !alternate
	}
	return sum%10 == 0
}

// CardExpiry parses an MM/YY expiry and reports whether it is valid and
// not earlier than the current month.
func CardExpiry(expiry string, now time.Time) bool {
	if !expiryPattern.MatchString(expiry) {
		return false
	}
	parts := strings.SplitN(expiry, "/", 2)
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return false
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	year += 2000

	if year < now.Year() {
		return false
	}
	if year == now.Year() && month < int(now.Month()) {
		return false
	}
	return true
}

func stripSeparators(s string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(s)
}
