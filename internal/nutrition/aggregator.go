package nutrition

import "context"

// Aggregator derives a session's total nutrient exposure from its active
// consumption records. Results are independent of item insertion order.
type Aggregator interface {
	// Compute returns nutrient_id -> total, each total rounded to 2 decimals.
	Compute(ctx context.Context, sessionID string) (map[string]float64, error)

	// Refresh recomputes and replaces the session's cached snapshot wholesale.
	Refresh(ctx context.Context, sessionID string) (map[string]float64, error)

	// CachedOrCompute serves reads from the snapshot cache, falling back to a
	// full refresh on a miss.
	CachedOrCompute(ctx context.Context, sessionID string) (map[string]float64, error)
}
