package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/zedalytics/internal/database"
	"github.com/yourusername/zedalytics/internal/models"
)

// PostgresRaceRepository implements RaceRepository for PostgreSQL
type PostgresRaceRepository struct {
	db *database.DB
}

// NewPostgresRaceRepository creates a new race repository
func NewPostgresRaceRepository(db *database.DB) RaceRepository {
	return &PostgresRaceRepository{db: db}
}

// InsertRaceAndParticipants writes a finished race and its participant
// rows in one transaction. The race row uses insert-if-absent
// semantics; participant rows carry generated ids, so the race row's
// presence is the sole duplication guard for them. If the race row
// already exists nothing is written and (false, nil) is returned. Any
// statement failure rolls back the whole unit.
func (r *PostgresRaceRepository) InsertRaceAndParticipants(ctx context.Context, race *models.Race, participants []*models.Participant) (bool, error) {
	inserted := false

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO races (id, name, start_time, pots_total)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT DO NOTHING
		`, race.ID, race.Name, race.StartTime, race.PotsTotal)
		if err != nil {
			return fmt.Errorf("failed to insert race %s: %w", race.ID, err)
		}

		if tag.RowsAffected() == 0 {
			// Race already recorded; results are immutable.
			return nil
		}
		inserted = true

		for _, p := range participants {
			_, err := tx.Exec(ctx, `
				INSERT INTO race_participants (
					id, race_id, horse_id, user_id, gate_number, finish_position,
					finish_time, earnings, stake, odds,
					starting_points, ending_points, points_change,
					cpu_augment, ram_augment, hydraulic_augment,
					cpu_augment_triggered, ram_augment_triggered, hydraulic_augment_triggered,
					sectional_positions
				) VALUES (
					$1, $2, $3, $4, $5, $6,
					$7, $8, $9, $10,
					$11, $12, $13,
					$14, $15, $16,
					$17, $18, $19,
					$20
				)
			`,
				p.ID, p.RaceID, p.HorseID, p.UserID, p.GateNumber, p.FinishPosition,
				p.FinishTime, p.Earnings, p.Stake, p.Odds,
				p.StartingPoints, p.EndingPoints, p.PointsChange,
				p.Augments.CPU, p.Augments.RAM, p.Augments.Hydraulic,
				p.Triggers.CPU, p.Triggers.RAM, p.Triggers.Hydraulic,
				p.SectionalPositions,
			)
			if err != nil {
				return fmt.Errorf("failed to insert participant %s in race %s: %w", p.ID, race.ID, err)
			}
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return inserted, nil
}

// GetByID retrieves a race by id
func (r *PostgresRaceRepository) GetByID(ctx context.Context, id string) (*models.Race, error) {
	query := `
		SELECT id, name, start_time, pots_total
		FROM races
		WHERE id = $1
	`

	race := &models.Race{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&race.ID, &race.Name, &race.StartTime, &race.PotsTotal,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query race: %w", err)
	}

	return race, nil
}

// GetParticipants retrieves all participant rows for a race
func (r *PostgresRaceRepository) GetParticipants(ctx context.Context, raceID string) ([]*models.Participant, error) {
	query := `
		SELECT id, race_id, horse_id, user_id, gate_number, finish_position,
			finish_time, earnings, stake, odds,
			starting_points, ending_points, points_change,
			cpu_augment, ram_augment, hydraulic_augment,
			cpu_augment_triggered, ram_augment_triggered, hydraulic_augment_triggered,
			sectional_positions
		FROM race_participants
		WHERE race_id = $1
		ORDER BY finish_position
	`

	rows, err := r.db.GetPool().Query(ctx, query, raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	var participants []*models.Participant
	for rows.Next() {
		p := &models.Participant{}
		err := rows.Scan(
			&p.ID, &p.RaceID, &p.HorseID, &p.UserID, &p.GateNumber, &p.FinishPosition,
			&p.FinishTime, &p.Earnings, &p.Stake, &p.Odds,
			&p.StartingPoints, &p.EndingPoints, &p.PointsChange,
			&p.Augments.CPU, &p.Augments.RAM, &p.Augments.Hydraulic,
			&p.Triggers.CPU, &p.Triggers.RAM, &p.Triggers.Hydraulic,
			&p.SectionalPositions,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participants: %w", err)
	}

	return participants, nil
}
