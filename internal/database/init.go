package database

import (
	"context"
	"fmt"

	"github.com/yourusername/zedalytics/internal/config"
)

// requiredTables are the tables the ingestion pipeline writes to.
var requiredTables = []string{"horses", "stables", "races", "race_participants"}

// Initialize creates a database connection pool and verifies the schema
// has been applied.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	for _, table := range requiredTables {
		var exists bool
		err = db.pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)",
			table,
		).Scan(&exists)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to check for table %s: %w", table, err)
		}
		if !exists {
			db.Close()
			return nil, fmt.Errorf(
				"table %s not found; apply migrations/001_init.sql before starting", table,
			)
		}
	}

	return db, nil
}
