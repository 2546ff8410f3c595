package entity

import (
	"allmeet-api/core/entity"

	"github.com/google/uuid"
)

// Notification is a per-user message about an event elsewhere in the system,
// optionally linked to a board post.
type Notification struct {
	UserID        uuid.UUID  `db:"user_id" json:"user_id"`
	Type          string     `db:"type" json:"type"`
	Content       string     `db:"content" json:"content"`
	RelatedPostID *uuid.UUID `db:"related_post_id" json:"related_post_id,omitempty"`
	CourseID      *string    `db:"course_id" json:"course_id,omitempty"`
	IsRead        bool       `db:"is_read" json:"is_read"`
	entity.BaseEntity
}

type PaginatedNotificationEntity = entity.Pagination[Notification]
