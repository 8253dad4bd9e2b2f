package service

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/zedalytics/internal/feed"
	"github.com/yourusername/zedalytics/internal/models"
)

// NormalizedBatch is the record set produced from one finished race,
// ready for persistence.
type NormalizedBatch struct {
	Horses       []*models.Horse
	Stables      []*models.Stable
	Race         *models.Race
	Participants []*models.Participant
	// SkippedParticipants counts entrants dropped for incomplete horse
	// data; the rest of the batch still proceeds.
	SkippedParticipants int
}

// Normalizer classifies raw feed messages and converts finished races
// into normalized record sets.
type Normalizer struct {
	logger *logrus.Logger
}

// NewNormalizer creates a new race normalizer
func NewNormalizer(logger *logrus.Logger) *Normalizer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Normalizer{logger: logger}
}

// Classify parses a raw feed message. It returns the embedded race
// snapshot when the message carries a race that has just finished with
// at least one participant, nil when the message should be ignored, and
// a MalformedMessageError when the payload cannot be parsed.
func (n *Normalizer) Classify(raw json.RawMessage) (*feed.RaceSnapshot, error) {
	var msg feed.EventMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, &MalformedMessageError{Cause: err}
	}

	event := msg.Payload.Data.RaceEvent
	if event == nil || event.Entity == nil {
		return nil, nil
	}

	race := event.Entity
	if race.Status != models.RaceStatusFinished {
		return nil, nil
	}

	if len(race.Participants) == 0 {
		return nil, nil
	}

	return race, nil
}

// Normalize converts a finished race snapshot into horse, stable, race
// and participant records, applying the defaulting rules for missing
// fields. A participant whose horse data is incomplete is skipped
// individually; the remaining participants proceed.
func (n *Normalizer) Normalize(race *feed.RaceSnapshot) *NormalizedBatch {
	batch := &NormalizedBatch{
		Race: &models.Race{
			ID:        race.ID,
			Name:      race.Name,
			StartTime: parseFeedTime(race.StartTime),
			PotsTotal: race.RacePotsTotal,
		},
	}

	finishTime := parseFeedTimePtr(race.FinishTime)

	for _, p := range race.Participants {
		if p.Horse == nil || p.Horse.ID == "" {
			n.logger.WithFields(logrus.Fields{
				"race_id": race.ID,
				"gate":    p.GateNumber,
			}).Warn("Skipping participant with incomplete horse data")
			batch.SkippedParticipants++
			continue
		}

		horse := p.Horse
		userID := parseUserID(horse.UserID)

		batch.Horses = append(batch.Horses, &models.Horse{
			ID:              horse.ID,
			Name:            horse.Name,
			Bloodline:       horse.Bloodline,
			Generation:      horse.Generation,
			Gender:          defaultString(horse.Gender, models.UnknownGender),
			Rating:          0,
			SpeedRating:     horse.SpeedRating,
			SprintRating:    horse.SprintRating,
			EnduranceRating: horse.EnduranceRating,
			State:           defaultString(horse.State, models.UnknownState),
		})

		stableName := ""
		if horse.User != nil {
			stableName = horse.User.StableName
		}
		batch.Stables = append(batch.Stables, &models.Stable{
			UserID:     userID,
			StableName: stableName,
		})

		sectionals := p.SectionalPositions
		if sectionals == nil {
			sectionals = []float64{}
		}

		batch.Participants = append(batch.Participants, &models.Participant{
			ID:                 uuid.New(),
			RaceID:             race.ID,
			HorseID:            horse.ID,
			UserID:             userID,
			GateNumber:         p.GateNumber,
			FinishPosition:     p.FinishPosition,
			FinishTime:         finishTime,
			Earnings:           p.Earnings,
			Stake:              p.Stake,
			StartingPoints:     p.StartingPoints,
			EndingPoints:       p.Points,
			PointsChange:       p.Points - p.StartingPoints,
			Augments:           models.NewAugmentSlots(p.Augments),
			Triggers:           models.NewAugmentTriggers(p.AugmentsTriggered),
			SectionalPositions: sectionals,
		})
	}

	return batch
}

// parseFeedTime parses an RFC3339 timestamp from the feed, returning
// the zero time when absent or unparsable.
func parseFeedTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseFeedTimePtr(s string) *time.Time {
	t := parseFeedTime(s)
	if t.IsZero() {
		return nil
	}
	return &t
}

// parseUserID parses the owning user id, falling back to the nil-UUID
// sentinel when absent or malformed.
func parseUserID(s string) uuid.UUID {
	if s == "" {
		return models.NilUserID
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return models.NilUserID
	}
	return id
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
