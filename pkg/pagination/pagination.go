package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any page can request.
	MaxLimit = 100
)

// Params holds pagination inputs from controllers.
type Params struct {
	Limit  int
	Cursor string
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// EncodeCursor builds an opaque cursor from the last seen product id.
func EncodeCursor(lastID int64) string {
	return base64.StdEncoding.EncodeToString([]byte(strconv.FormatInt(lastID, 10)))
}

// ParseCursor decodes a cursor back into the product id it points past.
// An empty cursor means the first page.
func ParseCursor(value string) (int64, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return 0, fmt.Errorf("invalid cursor: %w", err)
	}
	id, err := strconv.ParseInt(string(decoded), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid cursor payload")
	}
	return id, nil
}
