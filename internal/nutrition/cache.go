package nutrition

import (
	"context"
	"time"
)

// SnapshotCache is the read-through cache for per-session nutrient snapshots.
// Get returns ("", nil) on a miss.
type SnapshotCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
