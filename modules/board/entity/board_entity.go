package entity

import (
	"time"

	"allmeet-api/core/entity"

	"github.com/google/uuid"
)

// Post is a course board post. Auto-recommendation artifacts are posts with
// category "team", author_type "system" and a title derived from the team
// board name; (course_id, category, team_board_name, title) is unique so a
// concurrent double-creation fails on the second writer.
type Post struct {
	CourseID      string    `db:"course_id" json:"course_id"`
	AuthorID      uuid.UUID `db:"author_id" json:"author_id"`
	AuthorType    string    `db:"author_type" json:"author_type"`
	Title         string    `db:"title" json:"title"`
	Content       string    `db:"content" json:"content"`
	Category      string    `db:"category" json:"category"`
	TeamBoardName *string   `db:"team_board_name" json:"team_board_name,omitempty"`
	IsPinned      bool      `db:"is_pinned" json:"is_pinned"`
	entity.BaseEntity
}

type Poll struct {
	PostID    uuid.UUID  `db:"post_id" json:"post_id"`
	Question  string     `db:"question" json:"question"`
	ExpiresAt *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	entity.BaseEntity
}

type PollOption struct {
	PollID uuid.UUID `db:"poll_id" json:"poll_id"`
	Text   string    `db:"text" json:"text"`
	entity.BaseEntity
}

type PaginatedPostEntity = entity.Pagination[Post]
