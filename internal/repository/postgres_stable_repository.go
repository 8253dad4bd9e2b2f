package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/zedalytics/internal/database"
	"github.com/yourusername/zedalytics/internal/models"
)

// PostgresStableRepository implements StableRepository for PostgreSQL
type PostgresStableRepository struct {
	db *database.DB
}

// NewPostgresStableRepository creates a new stable repository
func NewPostgresStableRepository(db *database.DB) StableRepository {
	return &PostgresStableRepository{db: db}
}

// Upsert inserts or updates a stable by user id. Only the display name
// is mutable.
func (r *PostgresStableRepository) Upsert(ctx context.Context, stable *models.Stable) error {
	query := `
		INSERT INTO stables (user_id, stable_name)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET
			stable_name = EXCLUDED.stable_name
	`

	_, err := r.db.GetPool().Exec(ctx, query, stable.UserID, stable.StableName)
	if err != nil {
		return fmt.Errorf("failed to upsert stable for user %s: %w", stable.UserID, err)
	}

	return nil
}

// GetByUserID retrieves a stable by owning user id
func (r *PostgresStableRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Stable, error) {
	query := `
		SELECT user_id, stable_name
		FROM stables
		WHERE user_id = $1
	`

	stable := &models.Stable{}
	err := r.db.GetPool().QueryRow(ctx, query, userID).Scan(&stable.UserID, &stable.StableName)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query stable: %w", err)
	}

	return stable, nil
}
