package config

import (
	"context"
)

// Loader is the interface for a format-specific description loader.
type Loader interface {
	// Load reads the description at path and translates it into the
	// format-agnostic model.
	Load(ctx context.Context, path string) (*Description, error)
}
