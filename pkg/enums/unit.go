package enums

import "fmt"

// Unit is the measure a product is sold by.
type Unit string

const (
	UnitKilogram Unit = "kg"
	UnitGram     Unit = "g"
	UnitPiece    Unit = "piece"
	UnitBunch    Unit = "bunch"
	UnitLiter    Unit = "liter"
	UnitDozen    Unit = "dozen"
)

var validUnits = []Unit{
	UnitKilogram,
	UnitGram,
	UnitPiece,
	UnitBunch,
	UnitLiter,
	UnitDozen,
}

// String implements fmt.Stringer.
func (u Unit) String() string {
	return string(u)
}

// IsValid reports whether the value is a known Unit.
func (u Unit) IsValid() bool {
	for _, candidate := range validUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUnit converts raw input into a Unit.
func ParseUnit(value string) (Unit, error) {
	for _, candidate := range validUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid unit %q", value)
}
