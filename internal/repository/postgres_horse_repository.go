package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/zedalytics/internal/database"
	"github.com/yourusername/zedalytics/internal/models"
)

// PostgresHorseRepository implements HorseRepository for PostgreSQL
type PostgresHorseRepository struct {
	db *database.DB
}

// NewPostgresHorseRepository creates a new horse repository
func NewPostgresHorseRepository(db *database.DB) HorseRepository {
	return &PostgresHorseRepository{db: db}
}

// Upsert inserts or updates a horse by id. On conflict every mutable
// field is overwritten, so applying the same record twice yields the
// same stored state.
func (r *PostgresHorseRepository) Upsert(ctx context.Context, horse *models.Horse) error {
	if horse.ID == "" {
		return models.ErrHorseIDRequired
	}

	query := `
		INSERT INTO horses (id, name, bloodline, generation, gender, rating, speed_rating, sprint_rating, endurance_rating, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			bloodline = EXCLUDED.bloodline,
			generation = EXCLUDED.generation,
			gender = EXCLUDED.gender,
			rating = EXCLUDED.rating,
			speed_rating = EXCLUDED.speed_rating,
			sprint_rating = EXCLUDED.sprint_rating,
			endurance_rating = EXCLUDED.endurance_rating,
			state = EXCLUDED.state
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		horse.ID, horse.Name, horse.Bloodline, horse.Generation, horse.Gender,
		horse.Rating, horse.SpeedRating, horse.SprintRating, horse.EnduranceRating, horse.State,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert horse %s: %w", horse.ID, err)
	}

	return nil
}

// GetByID retrieves a horse by id
func (r *PostgresHorseRepository) GetByID(ctx context.Context, id string) (*models.Horse, error) {
	query := `
		SELECT id, name, bloodline, generation, gender, rating, speed_rating, sprint_rating, endurance_rating, state
		FROM horses
		WHERE id = $1
	`

	horse := &models.Horse{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&horse.ID, &horse.Name, &horse.Bloodline, &horse.Generation, &horse.Gender,
		&horse.Rating, &horse.SpeedRating, &horse.SprintRating, &horse.EnduranceRating, &horse.State,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query horse: %w", err)
	}

	return horse, nil
}
