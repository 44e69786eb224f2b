package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one entry in a cart: a distinct product plus its quantity and
// the display/pricing attributes captured from the catalog when the product
// was added or last re-added. The denormalized copy is intentionally not kept
// in sync with the live catalog record.
type LineItem struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      int64           `json:"product_id"`
	ProductName    string          `json:"product_name"`
	ProductUnit    string          `json:"product_unit"`
	ProductImage   *string         `json:"product_image,omitempty"`
	IsOrganic      bool            `json:"is_organic"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int             `json:"quantity"`
	StockCeiling   *int            `json:"stock_ceiling,omitempty"`
	QuantityPolicy *QuantityPolicy `json:"quantity_policy,omitempty"`
}

// Subtotal is unit_price x quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Clone returns a deep copy safe to hand to observers.
func (li LineItem) Clone() LineItem {
	out := li
	out.ProductImage = copyStringPtr(li.ProductImage)
	out.StockCeiling = copyIntPtr(li.StockCeiling)
	if li.QuantityPolicy != nil {
		policy := *li.QuantityPolicy
		out.QuantityPolicy = &policy
	}
	return out
}

// ProductSnapshot is the slice of catalog data the cart captures at add time.
type ProductSnapshot struct {
	ID             int64
	Name           string
	Unit           string
	Price          decimal.Decimal
	StockQuantity  *int
	ImageURL       *string
	IsOrganic      bool
	QuantityPolicy *QuantityPolicy
}

func cloneItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}

func copyIntPtr(src *int) *int {
	if src == nil {
		return nil
	}
	val := *src
	return &val
}

func copyStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	val := *src
	return &val
}
