package ports

import "context"

// PageCache stores rendered listing data keyed by route and query. Entries
// expire on their own; Clear drops all of them at once.
type PageCache interface {
	// Get decodes the entry for key into dest. It reports false on a miss.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Clear(ctx context.Context) error
}
