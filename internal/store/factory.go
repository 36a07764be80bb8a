package store

import (
	"context"
	"fmt"

	"tabcli/internal/config"
)

// NewStoreFromConfig creates a Store implementation based on the target config type.
func NewStoreFromConfig(ctx context.Context, cfg config.TargetConfig) (Store, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(cfg.Name), nil
	case "s3":
		return NewS3Store(ctx, cfg)
	case "local":
		return NewLocalStore(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown target type: %s", cfg.Type)
	}
}
