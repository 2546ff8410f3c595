package dto

import (
	"github.com/google/uuid"
)

// CreateNotificationRequest is both the service input and the asynq task
// payload for queued delivery.
type CreateNotificationRequest struct {
	UserID        uuid.UUID  `json:"user_id"`
	Type          string     `json:"type"`
	Content       string     `json:"content"`
	RelatedPostID *uuid.UUID `json:"related_post_id,omitempty"`
	CourseID      *string    `json:"course_id,omitempty"`
}

type MarkReadRequest struct {
	IDs []string `json:"ids"`
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}
