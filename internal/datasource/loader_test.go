package datasource

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/zedalytics/internal/models"
	"github.com/yourusername/zedalytics/internal/repository"
)

type stubHorseRepo struct {
	upserts map[string]*models.Horse
}

func (s *stubHorseRepo) Upsert(ctx context.Context, horse *models.Horse) error {
	s.upserts[horse.ID] = horse
	return nil
}

func (s *stubHorseRepo) GetByID(ctx context.Context, id string) (*models.Horse, error) {
	return nil, models.ErrNotFound
}

type stubStableRepo struct {
	upserts map[uuid.UUID]*models.Stable
}

func (s *stubStableRepo) Upsert(ctx context.Context, stable *models.Stable) error {
	s.upserts[stable.UserID] = stable
	return nil
}

func (s *stubStableRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Stable, error) {
	return nil, models.ErrNotFound
}

type stubRaceRepo struct {
	races map[string][]*models.Participant
}

func (s *stubRaceRepo) InsertRaceAndParticipants(ctx context.Context, race *models.Race, participants []*models.Participant) (bool, error) {
	if _, ok := s.races[race.ID]; ok {
		return false, nil
	}
	s.races[race.ID] = participants
	return true, nil
}

func (s *stubRaceRepo) GetByID(ctx context.Context, id string) (*models.Race, error) {
	return nil, models.ErrNotFound
}

func (s *stubRaceRepo) GetParticipants(ctx context.Context, raceID string) ([]*models.Participant, error) {
	return s.races[raceID], nil
}

func stubRepos() (repository.Repositories, *stubHorseRepo, *stubRaceRepo) {
	horses := &stubHorseRepo{upserts: make(map[string]*models.Horse)}
	races := &stubRaceRepo{races: make(map[string][]*models.Participant)}
	repos := repository.Repositories{
		Horse:  horses,
		Stable: &stubStableRepo{upserts: make(map[uuid.UUID]*models.Stable)},
		Race:   races,
	}
	return repos, horses, races
}

const sampleChunk = `race_id,race_name,race_date,pots_total,horse_id,horse_name,bloodline,generation,gender,speed_rating,sprint_rating,endurance_rating,state,user_id,stable_name,gate_number,finish_position,earnings,stake,starting_points,ending_points
race-1,Dawn Sprint,2023-11-02,80.5,horse-1,Nova,Nakamoto,2,FEMALE,90,85,80,RACING,6fa459ea-ee8a-3ca4-894e-db77e160355e,Moon Stable,1,1,60.25,5,40,48
race-1,Dawn Sprint,2023-11-02,80.5,horse-2,Comet,Szabo,4,MALE,82,88,79,RACING,,Ghost Stable,2,2,20.25,5,35,33
race-2,Dusk Derby,2023-11-03,120,horse-1,Nova,Nakamoto,2,FEMALE,90,85,80,RACING,6fa459ea-ee8a-3ca4-894e-db77e160355e,Moon Stable,3,4,0,10,48,44
race-2,Dusk Derby,2023-11-03,120,,Ghost,,,,,,,,,,4,5,0,10,20,18
`

func TestIngestChunk(t *testing.T) {
	repos, horses, races := stubRepos()
	loader := NewBackfillLoader(nil, repos, nil)

	rows, written, skipped, err := loader.ingestChunk(context.Background(), []byte(sampleChunk))
	require.NoError(t, err)

	assert.Equal(t, 4, rows)
	assert.Equal(t, 2, written)
	assert.Equal(t, 1, skipped)

	t.Run("rows grouped by race", func(t *testing.T) {
		require.Len(t, races.races["race-1"], 2)
		require.Len(t, races.races["race-2"], 1)
	})

	t.Run("horses upserted once per row", func(t *testing.T) {
		require.Contains(t, horses.upserts, "horse-1")
		require.Contains(t, horses.upserts, "horse-2")
		assert.Equal(t, "Nova", horses.upserts["horse-1"].Name)
		assert.Equal(t, 90, horses.upserts["horse-1"].SpeedRating)
	})

	t.Run("missing user id falls back to nil uuid", func(t *testing.T) {
		p := races.races["race-1"][1]
		assert.Equal(t, models.NilUserID, p.UserID)
	})

	t.Run("points change computed from points columns", func(t *testing.T) {
		p := races.races["race-1"][0]
		assert.Equal(t, 40, p.StartingPoints)
		assert.Equal(t, 48, p.EndingPoints)
		assert.Equal(t, 8, p.PointsChange)
	})
}

func TestIngestChunkIsIdempotent(t *testing.T) {
	repos, _, races := stubRepos()
	loader := NewBackfillLoader(nil, repos, nil)

	_, written, _, err := loader.ingestChunk(context.Background(), []byte(sampleChunk))
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	_, written, _, err = loader.ingestChunk(context.Background(), []byte(sampleChunk))
	require.NoError(t, err)
	assert.Equal(t, 0, written)
	assert.Len(t, races.races, 2)
}

func TestIngestChunkBadHeader(t *testing.T) {
	repos, _, _ := stubRepos()
	loader := NewBackfillLoader(nil, repos, nil)

	_, _, _, err := loader.ingestChunk(context.Background(), []byte(""))
	require.Error(t, err)
}
