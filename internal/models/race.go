package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RaceStatusFinished is the only lifecycle status that triggers persistence.
const RaceStatusFinished = "FINISHED"

// Race represents a completed race as stored in the races table.
// Race rows are immutable once recorded: inserts use insert-if-absent
// semantics and the row's presence guards participant rows against
// duplication.
type Race struct {
	ID        string          `db:"id" json:"id" validate:"required"`
	Name      string          `db:"name" json:"name"`
	StartTime time.Time       `db:"start_time" json:"start_time"`
	PotsTotal decimal.Decimal `db:"pots_total" json:"pots_total"`
}

// Participant represents one entrant's result in a race. The row id is
// generated at normalization time and carries no meaning beyond row
// identity.
type Participant struct {
	ID                 uuid.UUID       `db:"id" json:"id"`
	RaceID             string          `db:"race_id" json:"race_id" validate:"required"`
	HorseID            string          `db:"horse_id" json:"horse_id" validate:"required"`
	UserID             uuid.UUID       `db:"user_id" json:"user_id"`
	GateNumber         int             `db:"gate_number" json:"gate_number"`
	FinishPosition     int             `db:"finish_position" json:"finish_position"`
	FinishTime         *time.Time      `db:"finish_time" json:"finish_time"`
	Earnings           decimal.Decimal `db:"earnings" json:"earnings"`
	Stake              decimal.Decimal `db:"stake" json:"stake"`
	Odds               decimal.Decimal `db:"odds" json:"odds"`
	StartingPoints     int             `db:"starting_points" json:"starting_points"`
	EndingPoints       int             `db:"ending_points" json:"ending_points"`
	PointsChange       int             `db:"points_change" json:"points_change"`
	Augments           AugmentSlots    `json:"augments"`
	Triggers           AugmentTriggers `json:"augments_triggered"`
	SectionalPositions []float64       `db:"sectional_positions" json:"sectional_positions"`
}

// AugmentSlots is the fixed set of three equipment slots on an entrant.
// A nil slot means no augment was equipped there.
type AugmentSlots struct {
	CPU       *string `json:"cpu"`
	RAM       *string `json:"ram"`
	Hydraulic *string `json:"hydraulic"`
}

// AugmentTriggers records whether each equipped augment fired during
// the race. Slots without an augment are always false.
type AugmentTriggers struct {
	CPU       bool `json:"cpu"`
	RAM       bool `json:"ram"`
	Hydraulic bool `json:"hydraulic"`
}

// NewAugmentSlots maps a variable-length augment list (0-3 elements
// observed) onto the three named slots, padding missing entries with
// nil and truncating extras.
func NewAugmentSlots(augments []*string) AugmentSlots {
	padded := make([]*string, 3)
	copy(padded, augments)

	return AugmentSlots{
		CPU:       padded[0],
		RAM:       padded[1],
		Hydraulic: padded[2],
	}
}

// NewAugmentTriggers maps a variable-length trigger list onto the three
// named slots, padding with false and truncating extras.
func NewAugmentTriggers(triggered []bool) AugmentTriggers {
	padded := make([]bool, 3)
	copy(padded, triggered)

	return AugmentTriggers{
		CPU:       padded[0],
		RAM:       padded[1],
		Hydraulic: padded[2],
	}
}
