package validate

import (
	"testing"
	"time"
)

func TestCreditCard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		number string
		want   bool
	}{
		{name: "valid_visa", number: "4532123456789012", want: true},
		{name: "valid_with_spaces", number: "4532 1234 5678 9012", want: true},
		{name: "valid_with_dashes", number: "4532-1234-5678-9012", want: true},
		{name: "bad_checksum", number: "4532123456789013", want: false},
		{name: "too_short", number: "123456789012", want: false},
		{name: "letters", number: "4532abcd56789012", want: false},
		{name: "empty", number: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := CreditCard(tt.number); got != tt.want {
				t.Fatalf("CreditCard(%q) = %v, want %v", tt.number, got, tt.want)
			}
		})
	}
}

func TestCardExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		expiry string
		want   bool
	}{
		{name: "future_year", expiry: "01/27", want: true},
		{name: "same_month", expiry: "03/26", want: true},
		{name: "past_month_same_year", expiry: "02/26", want: false},
		{name: "past_year", expiry: "12/25", want: false},
		{name: "bad_month", expiry: "13/27", want: false},
		{name: "zero_month", expiry: "00/27", want: false},
		{name: "bad_format", expiry: "2027-01", want: false},
		{name: "empty", expiry: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := CardExpiry(tt.expiry, now); got != tt.want {
				t.Fatalf("CardExpiry(%q) = %v, want %v", tt.expiry, got, tt.want)
			}
		})
	}
}

func TestFormats(t *testing.T) {
	t.Parallel()

	if !CitizenID("3201234567890123") {
		t.Fatal("expected 16-digit citizen id to be valid")
	}
	if CitizenID("32012345678901") {
		t.Fatal("expected 14-digit citizen id to be invalid")
	}
	if !WalletID("wallet01") || WalletID("ab") || WalletID("has space1") {
		t.Fatal("wallet id rules violated")
	}
	if !CVV("123") || !CVV("1234") || CVV("12") || CVV("12a") {
		t.Fatal("cvv rules violated")
	}
	if !PostalCode("16424") || PostalCode("1642") || PostalCode("16424a") {
		t.Fatal("postal code rules violated")
	}
	if !Email("ana@example.com") || Email("not-an-email") {
		t.Fatal("email rules violated")
	}
	if !Phone("0812345678") || Phone("123") {
		t.Fatal("phone rules violated")
	}
}
