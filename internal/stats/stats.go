// Package stats computes horse and stable performance aggregates from
// the persisted race results.
package stats

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/yourusername/zedalytics/internal/database"
	"github.com/yourusername/zedalytics/internal/models"
)

// HorseStats summarizes one horse's race history
type HorseStats struct {
	HorseID       string          `json:"horse_id"`
	Name          string          `json:"name"`
	TotalRaces    int             `json:"total_races"`
	Wins          int             `json:"wins"`
	WinPct        float64         `json:"win_pct"`
	Top3Pct       float64         `json:"top3_pct"`
	TotalEarnings decimal.Decimal `json:"total_earnings"`
	PointsChange  int             `json:"points_change"`
}

// StableStats summarizes a stable's race history across its horses
type StableStats struct {
	UserID        uuid.UUID       `json:"user_id"`
	StableName    string          `json:"stable_name"`
	Horses        int             `json:"horses"`
	TotalRaces    int             `json:"total_races"`
	Wins          int             `json:"wins"`
	WinPct        float64         `json:"win_pct"`
	TotalEarnings decimal.Decimal `json:"total_earnings"`
}

// Service answers stats queries against the race result store
type Service struct {
	db *database.DB
}

// NewService creates a stats service
func NewService(db *database.DB) *Service {
	return &Service{db: db}
}

// HorseStats computes aggregates for a single horse
func (s *Service) HorseStats(ctx context.Context, horseID string) (*HorseStats, error) {
	query := `
		SELECT h.id, h.name,
			COUNT(rp.id),
			COUNT(rp.id) FILTER (WHERE rp.finish_position = 1),
			COUNT(rp.id) FILTER (WHERE rp.finish_position <= 3),
			COALESCE(SUM(rp.earnings), 0),
			COALESCE(SUM(rp.points_change), 0)
		FROM horses h
		LEFT JOIN race_participants rp ON rp.horse_id = h.id
		WHERE h.id = $1
		GROUP BY h.id, h.name
	`

	st := &HorseStats{}
	var wins, top3 int
	err := s.db.GetPool().QueryRow(ctx, query, horseID).Scan(
		&st.HorseID, &st.Name, &st.TotalRaces, &wins, &top3, &st.TotalEarnings, &st.PointsChange,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query horse stats: %w", err)
	}

	st.Wins = wins
	if st.TotalRaces > 0 {
		st.WinPct = float64(wins) / float64(st.TotalRaces) * 100
		st.Top3Pct = float64(top3) / float64(st.TotalRaces) * 100
	}

	return st, nil
}

// StableStats computes aggregates for a stable keyed by owning user id
func (s *Service) StableStats(ctx context.Context, userID uuid.UUID) (*StableStats, error) {
	query := `
		SELECT st.user_id, st.stable_name,
			COUNT(DISTINCT rp.horse_id),
			COUNT(rp.id),
			COUNT(rp.id) FILTER (WHERE rp.finish_position = 1),
			COALESCE(SUM(rp.earnings), 0)
		FROM stables st
		LEFT JOIN race_participants rp ON rp.user_id = st.user_id
		WHERE st.user_id = $1
		GROUP BY st.user_id, st.stable_name
	`

	st := &StableStats{}
	var wins int
	err := s.db.GetPool().QueryRow(ctx, query, userID).Scan(
		&st.UserID, &st.StableName, &st.Horses, &st.TotalRaces, &wins, &st.TotalEarnings,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query stable stats: %w", err)
	}

	st.Wins = wins
	if st.TotalRaces > 0 {
		st.WinPct = float64(wins) / float64(st.TotalRaces) * 100
	}

	return st, nil
}

// TopHorses returns horses ranked by win percentage, requiring at least
// minRaces starts so one-race wonders don't dominate the board.
func (s *Service) TopHorses(ctx context.Context, minRaces, limit int) ([]*HorseStats, error) {
	query := `
		SELECT h.id, h.name,
			COUNT(rp.id) AS races,
			COUNT(rp.id) FILTER (WHERE rp.finish_position = 1) AS wins,
			COUNT(rp.id) FILTER (WHERE rp.finish_position <= 3) AS top3,
			COALESCE(SUM(rp.earnings), 0),
			COALESCE(SUM(rp.points_change), 0)
		FROM horses h
		JOIN race_participants rp ON rp.horse_id = h.id
		GROUP BY h.id, h.name
		HAVING COUNT(rp.id) >= $1
		ORDER BY COUNT(rp.id) FILTER (WHERE rp.finish_position = 1)::float / COUNT(rp.id) DESC
		LIMIT $2
	`

	rows, err := s.db.GetPool().Query(ctx, query, minRaces, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top horses: %w", err)
	}
	defer rows.Close()

	var result []*HorseStats
	for rows.Next() {
		st := &HorseStats{}
		var wins, top3 int
		if err := rows.Scan(&st.HorseID, &st.Name, &st.TotalRaces, &wins, &top3, &st.TotalEarnings, &st.PointsChange); err != nil {
			return nil, fmt.Errorf("failed to scan horse stats: %w", err)
		}
		st.Wins = wins
		if st.TotalRaces > 0 {
			st.WinPct = float64(wins) / float64(st.TotalRaces) * 100
			st.Top3Pct = float64(top3) / float64(st.TotalRaces) * 100
		}
		result = append(result, st)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating horse stats: %w", err)
	}

	return result, nil
}
