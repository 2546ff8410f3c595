package entity

import (
	"time"

	"allmeet-api/core/entity"

	"github.com/google/uuid"
)

// TeamRecruitment is a team formed inside a course section. Once activated it
// owns a team board identified by TeamBoardName.
type TeamRecruitment struct {
	CourseID         string    `db:"course_id" json:"course_id"`
	AuthorID         uuid.UUID `db:"author_id" json:"author_id"`
	Title            string    `db:"title" json:"title"`
	Description      string    `db:"description" json:"description"`
	TeamBoardName    string    `db:"team_board_name" json:"team_board_name"`
	BoardSlug        string    `db:"board_slug" json:"board_slug"`
	MaxMembers       int       `db:"max_members" json:"max_members"`
	IsBoardActivated bool      `db:"is_board_activated" json:"is_board_activated"`
	entity.BaseEntity
}

// TeamMember marks a user's membership of a team. Unique per (team, user).
type TeamMember struct {
	TeamID   uuid.UUID `db:"team_id" json:"team_id"`
	UserID   uuid.UUID `db:"user_id" json:"user_id"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}

type PaginatedTeamEntity = entity.Pagination[TeamRecruitment]
