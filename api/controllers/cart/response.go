package cart

import (
	cartsvc "github.com/freshsouq/freshsouq-backend/internal/cart"
)

// View is the cart as returned to the client.
type View struct {
	Items []cartsvc.LineItem `json:"items"`
	Lines int                `json:"lines"`
	Total string             `json:"total"`
}

func newView(manager *cartsvc.Manager) View {
	items := manager.Snapshot()
	if items == nil {
		items = []cartsvc.LineItem{}
	}
	return View{
		Items: items,
		Lines: len(items),
		Total: manager.Total().StringFixed(2),
	}
}
