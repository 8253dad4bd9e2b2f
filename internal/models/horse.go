package models

// Default values applied when the feed omits optional horse fields.
const (
	UnknownGender = "UNKNOWN"
	UnknownState  = "UNKNOWN"
)

// Horse represents a racing horse as stored in the horses table.
// Re-processing the same horse id overwrites every mutable field
// (last-write-wins), so the stored row always reflects the most
// recent snapshot received from the feed.
type Horse struct {
	ID              string `db:"id" json:"id" validate:"required"`
	Name            string `db:"name" json:"name"`
	Bloodline       string `db:"bloodline" json:"bloodline"`
	Generation      int    `db:"generation" json:"generation"`
	Gender          string `db:"gender" json:"gender"`
	Rating          int    `db:"rating" json:"rating"`
	SpeedRating     int    `db:"speed_rating" json:"speed_rating"`
	SprintRating    int    `db:"sprint_rating" json:"sprint_rating"`
	EnduranceRating int    `db:"endurance_rating" json:"endurance_rating"`
	State           string `db:"state" json:"state"`
}
