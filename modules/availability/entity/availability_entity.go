package entity

import (
	"time"

	"allmeet-api/core/entity"

	"github.com/google/uuid"
)

// AvailableTime is one user's claim of being free on a weekday between a
// start and end time of day. TeamID nil means the entry was submitted from
// the dashboard (general scope); non-nil means it was submitted from that
// team's board. Times are naive HH:MM strings; everyone is assumed to share a
// timezone.
type AvailableTime struct {
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	TeamID    *uuid.UUID `db:"team_id" json:"team_id,omitempty"`
	DayOfWeek string     `db:"day_of_week" json:"day_of_week"`
	StartTime string     `db:"start_time" json:"start_time"`
	EndTime   string     `db:"end_time" json:"end_time"`
	entity.BaseEntity
}

// TeamSubmission records that a user pressed submit on a team's scheduling
// board at least once. The actual time data lives in AvailableTime; this
// table only drives the all-members-submitted gate. Unique per (team, user),
// created once, never updated.
type TeamSubmission struct {
	TeamID      uuid.UUID `db:"team_id" json:"team_id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
}
