package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yourusername/zedalytics/internal/models"
)

// HorseRepository defines the interface for horse data access
type HorseRepository interface {
	Upsert(ctx context.Context, horse *models.Horse) error
	GetByID(ctx context.Context, id string) (*models.Horse, error)
}

// StableRepository defines the interface for stable data access
type StableRepository interface {
	Upsert(ctx context.Context, stable *models.Stable) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Stable, error)
}

// RaceRepository defines the interface for race and participant data access
type RaceRepository interface {
	// InsertRaceAndParticipants inserts the race row if absent and, only
	// when the row was actually inserted, every participant row, all
	// within one transaction. Returns (false, nil) when the race already
	// existed and nothing was written.
	InsertRaceAndParticipants(ctx context.Context, race *models.Race, participants []*models.Participant) (bool, error)
	GetByID(ctx context.Context, id string) (*models.Race, error)
	GetParticipants(ctx context.Context, raceID string) ([]*models.Participant, error)
}

// Repositories bundles the persistence sink for the ingestion pipeline
type Repositories struct {
	Horse  HorseRepository
	Stable StableRepository
	Race   RaceRepository
}
