package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/zedalytics/internal/models"
)

const finishedRaceMessage = `{
	"id": "sub-1",
	"type": "next",
	"payload": {
		"data": {
			"raceEvent": {
				"id": "evt-1",
				"action": "UPDATED",
				"entityTypename": "Race",
				"entity": {
					"id": "race-1",
					"name": "Sunset Derby",
					"status": "FINISHED",
					"startTime": "2024-03-01T18:00:00Z",
					"finishTime": "2024-03-01T18:01:30Z",
					"racePotsTotal": "125.5",
					"participants": [
						{
							"gateNumber": 1,
							"finishPosition": 1,
							"earnings": "100.25",
							"stake": "10",
							"startingPoints": 40,
							"points": 50,
							"sectionalPositions": [2, 1, 1],
							"augments": ["CPU_A"],
							"augmentsTriggered": [true],
							"horse": {
								"id": "horse-1",
								"name": "Nova",
								"bloodline": "Nakamoto",
								"generation": 3,
								"gender": "FEMALE",
								"speedRating": 91,
								"sprintRating": 88,
								"enduranceRating": 85,
								"state": "RACING",
								"userId": "6fa459ea-ee8a-3ca4-894e-db77e160355e",
								"user": {"stableName": "Moon Stable"}
							}
						},
						{
							"gateNumber": 2,
							"finishPosition": 2,
							"earnings": "0",
							"stake": "10",
							"startingPoints": 30,
							"points": 27,
							"horse": null
						}
					]
				}
			}
		}
	}
}`

func TestClassify(t *testing.T) {
	n := NewNormalizer(nil)

	t.Run("finished race with participants is actionable", func(t *testing.T) {
		race, err := n.Classify(json.RawMessage(finishedRaceMessage))
		require.NoError(t, err)
		require.NotNil(t, race)
		assert.Equal(t, "race-1", race.ID)
		assert.Len(t, race.Participants, 2)
	})

	t.Run("invalid json is malformed", func(t *testing.T) {
		race, err := n.Classify(json.RawMessage(`{"payload": {`))
		assert.Nil(t, race)
		require.Error(t, err)
		assert.True(t, IsMalformedMessage(err))
	})

	t.Run("message without race event is ignored", func(t *testing.T) {
		race, err := n.Classify(json.RawMessage(`{"type": "next", "payload": {"data": {}}}`))
		assert.NoError(t, err)
		assert.Nil(t, race)
	})

	t.Run("event without entity is ignored", func(t *testing.T) {
		race, err := n.Classify(json.RawMessage(`{"payload": {"data": {"raceEvent": {"id": "evt-2"}}}}`))
		assert.NoError(t, err)
		assert.Nil(t, race)
	})

	t.Run("non finished race is ignored", func(t *testing.T) {
		msg := `{"payload": {"data": {"raceEvent": {"entity": {"id": "race-2", "status": "RACING",
			"participants": [{"gateNumber": 1}]}}}}}`
		race, err := n.Classify(json.RawMessage(msg))
		assert.NoError(t, err)
		assert.Nil(t, race)
	})

	t.Run("finished race without participants is ignored", func(t *testing.T) {
		msg := `{"payload": {"data": {"raceEvent": {"entity": {"id": "race-3", "status": "FINISHED", "participants": []}}}}}`
		race, err := n.Classify(json.RawMessage(msg))
		assert.NoError(t, err)
		assert.Nil(t, race)
	})
}

func TestNormalize(t *testing.T) {
	n := NewNormalizer(nil)

	race, err := n.Classify(json.RawMessage(finishedRaceMessage))
	require.NoError(t, err)
	require.NotNil(t, race)

	batch := n.Normalize(race)

	t.Run("race record", func(t *testing.T) {
		assert.Equal(t, "race-1", batch.Race.ID)
		assert.Equal(t, "Sunset Derby", batch.Race.Name)
		assert.Equal(t, time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC), batch.Race.StartTime)
		assert.Equal(t, "125.5", batch.Race.PotsTotal.String())
	})

	t.Run("participant with missing horse is skipped individually", func(t *testing.T) {
		assert.Equal(t, 1, batch.SkippedParticipants)
		require.Len(t, batch.Participants, 1)
		require.Len(t, batch.Horses, 1)
		require.Len(t, batch.Stables, 1)
	})

	t.Run("horse record", func(t *testing.T) {
		horse := batch.Horses[0]
		assert.Equal(t, "horse-1", horse.ID)
		assert.Equal(t, "Nova", horse.Name)
		assert.Equal(t, "FEMALE", horse.Gender)
		assert.Equal(t, 0, horse.Rating)
		assert.Equal(t, 91, horse.SpeedRating)
		assert.Equal(t, "RACING", horse.State)
	})

	t.Run("stable record", func(t *testing.T) {
		stable := batch.Stables[0]
		assert.Equal(t, uuid.MustParse("6fa459ea-ee8a-3ca4-894e-db77e160355e"), stable.UserID)
		assert.Equal(t, "Moon Stable", stable.StableName)
	})

	t.Run("participant record", func(t *testing.T) {
		p := batch.Participants[0]
		assert.NotEqual(t, uuid.Nil, p.ID)
		assert.Equal(t, "race-1", p.RaceID)
		assert.Equal(t, "horse-1", p.HorseID)
		assert.Equal(t, 1, p.GateNumber)
		assert.Equal(t, 1, p.FinishPosition)
		require.NotNil(t, p.FinishTime)
		assert.Equal(t, time.Date(2024, 3, 1, 18, 1, 30, 0, time.UTC), p.FinishTime.UTC())
		assert.Equal(t, "100.25", p.Earnings.String())
		assert.True(t, p.Odds.IsZero())
		assert.Equal(t, 40, p.StartingPoints)
		assert.Equal(t, 50, p.EndingPoints)
		assert.Equal(t, 10, p.PointsChange)
		assert.Equal(t, []float64{2, 1, 1}, p.SectionalPositions)
	})

	t.Run("augments pad to three slots", func(t *testing.T) {
		p := batch.Participants[0]
		require.NotNil(t, p.Augments.CPU)
		assert.Equal(t, "CPU_A", *p.Augments.CPU)
		assert.Nil(t, p.Augments.RAM)
		assert.Nil(t, p.Augments.Hydraulic)
		assert.Equal(t, models.AugmentTriggers{CPU: true}, p.Triggers)
	})
}

func TestNormalizeDefaults(t *testing.T) {
	n := NewNormalizer(nil)

	msg := `{"payload": {"data": {"raceEvent": {"entity": {
		"id": "race-9", "status": "FINISHED", "startTime": "not-a-time",
		"participants": [{
			"gateNumber": 4,
			"finishPosition": 7,
			"startingPoints": 20,
			"points": 15,
			"horse": {"id": "horse-9", "name": "Dusty", "userId": "garbage"}
		}]
	}}}}}`

	race, err := n.Classify(json.RawMessage(msg))
	require.NoError(t, err)
	batch := n.Normalize(race)

	require.Len(t, batch.Participants, 1)
	p := batch.Participants[0]
	horse := batch.Horses[0]

	assert.True(t, batch.Race.StartTime.IsZero())
	assert.Nil(t, p.FinishTime)
	assert.Equal(t, models.UnknownGender, horse.Gender)
	assert.Equal(t, models.UnknownState, horse.State)
	assert.Equal(t, models.NilUserID, p.UserID)
	assert.Equal(t, models.NilUserID, batch.Stables[0].UserID)
	assert.Equal(t, "", batch.Stables[0].StableName)
	assert.Equal(t, -5, p.PointsChange)
	assert.Equal(t, []float64{}, p.SectionalPositions)
	assert.Equal(t, models.AugmentSlots{}, p.Augments)
	assert.Equal(t, models.AugmentTriggers{}, p.Triggers)
}
