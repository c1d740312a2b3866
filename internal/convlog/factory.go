package convlog

import (
	"context"
	"strings"
)

// Open picks a backend: postgres when a database URL is configured, an
// in-process store for the special path "memory", otherwise SQLite at path.
func Open(ctx context.Context, databaseURL, path string) (Store, error) {
	if strings.TrimSpace(databaseURL) != "" {
		return NewPostgresStore(ctx, databaseURL)
	}
	p := strings.TrimSpace(path)
	if p == "" || p == "memory" {
		return NewInMemoryStore(), nil
	}
	return NewSQLiteStore(p)
}
