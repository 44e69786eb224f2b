// Package cartstore provides the persistence backends behind cart.Store:
// redis, database and in-memory. Each store owns a single fixed key holding
// one serialized JSON array of line items.
package cartstore

import (
	"encoding/json"
	"fmt"

	"github.com/freshsouq/freshsouq-backend/internal/cart"
)

func encodeItems(items []cart.LineItem) ([]byte, error) {
	if len(items) == 0 {
		return []byte("[]"), nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode cart blob: %w", err)
	}
	return data, nil
}

// decodeItems parses a stored blob. Corruption degrades to an empty cart by
// contract: a corrupt local cache is not actionable, so it is discarded
// rather than surfaced.
func decodeItems(data []byte) []cart.LineItem {
	if len(data) == 0 {
		return nil
	}
	var items []cart.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	return items
}
