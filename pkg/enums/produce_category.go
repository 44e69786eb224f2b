package enums

import "fmt"

// ProduceCategory represents the canonical product categories supported by the catalog.
type ProduceCategory string

const (
	ProduceCategoryVegetables ProduceCategory = "vegetables"
	ProduceCategoryFruits     ProduceCategory = "fruits"
	ProduceCategoryHerbs      ProduceCategory = "herbs"
	ProduceCategoryDairy      ProduceCategory = "dairy"
	ProduceCategoryBakery     ProduceCategory = "bakery"
	ProduceCategoryPantry     ProduceCategory = "pantry"
)

var validProduceCategories = []ProduceCategory{
	ProduceCategoryVegetables,
	ProduceCategoryFruits,
	ProduceCategoryHerbs,
	ProduceCategoryDairy,
	ProduceCategoryBakery,
	ProduceCategoryPantry,
}

// String implements fmt.Stringer.
func (c ProduceCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ProduceCategory.
func (c ProduceCategory) IsValid() bool {
	for _, candidate := range validProduceCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProduceCategory converts raw input into a ProduceCategory.
func ParseProduceCategory(value string) (ProduceCategory, error) {
	for _, candidate := range validProduceCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid produce category %q", value)
}
