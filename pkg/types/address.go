package types

import (
	"fmt"
	"strings"
)

// Address is the shipping destination attached to an order submission.
type Address struct {
	Line1      string  `json:"line1" validate:"required"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city" validate:"required"`
	Region     *string `json:"region,omitempty"`
	PostalCode *string `json:"postal_code,omitempty"`
	Country    string  `json:"country" validate:"required,len=2"`
}

// Validate checks the minimum shape required before an order can ship.
func (a Address) Validate() error {
	if strings.TrimSpace(a.Line1) == "" {
		return fmt.Errorf("address: missing line1")
	}
	if strings.TrimSpace(a.City) == "" {
		return fmt.Errorf("address: missing city")
	}
	if len(strings.TrimSpace(a.Country)) != 2 {
		return fmt.Errorf("address: country must be an ISO 3166-1 alpha-2 code")
	}
	return nil
}
