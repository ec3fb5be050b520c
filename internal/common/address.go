// Package common holds small value types shared across modules.
package common

import "strings"

// Address is a five-field Indonesian delivery address. An order may only be
// created against a complete address.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	District   string `json:"district"`
	Province   string `json:"province"`
}

// Complete reports whether every field is populated.
func (a Address) Complete() bool {
	return a.Street != "" && a.City != "" && a.PostalCode != "" &&
		a.District != "" && a.Province != ""
}

// String renders the address on one line for logs and receipts.
func (a Address) String() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Street, a.District, a.City} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	s := strings.Join(parts, ", ")
	if a.PostalCode != "" {
		s += " " + a.PostalCode
	}
	if a.Province != "" {
		s += ", " + a.Province
	}
	return strings.TrimSpace(strings.TrimPrefix(s, ","))
}
