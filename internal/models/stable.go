package models

import "github.com/google/uuid"

// NilUserID is the sentinel owner id used when the feed does not
// report an owning user for a horse.
var NilUserID = uuid.Nil

// Stable associates a display name with an owning user. Keyed by
// user id; upserted whenever a horse owned by that user is seen.
type Stable struct {
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	StableName string    `db:"stable_name" json:"stable_name"`
}
