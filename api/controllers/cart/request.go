package cart

// AddItemRequest adds a product to the session's cart.
type AddItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,min=1"`
}

// UpdateQuantityRequest replaces the quantity of one cart line.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}
