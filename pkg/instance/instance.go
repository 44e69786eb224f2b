package instance

import "github.com/freshsouq/freshsouq-backend/pkg/env"

// GetID returns the server instance identifier or a default value.
func GetID() string {
	return env.Get("INSTANCE_ID", "api-0")
}
