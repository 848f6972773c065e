package stock

import (
	"context"
	"time"
)

// Locker is the distributed per-feed lock used where a row lock cannot serve:
// create-or-increment paths race on a row that may not exist yet.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}
