package dto

import (
	"time"

	"allmeet-api/modules/team/entity"
)

type CreateRecruitmentRequest struct {
	CourseID      string `json:"course_id" validate:"required"`
	Title         string `json:"title" validate:"required"`
	Description   string `json:"description" validate:"required"`
	TeamBoardName string `json:"team_board_name"`
	MaxMembers    int    `json:"max_members" validate:"required,min=2"`
}

type RecruitmentResponse struct {
	ID               string `json:"id"`
	CourseID         string `json:"course_id"`
	AuthorID         string `json:"author_id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	TeamBoardName    string `json:"team_board_name"`
	BoardSlug        string `json:"board_slug"`
	MaxMembers       int    `json:"max_members"`
	MemberCount      int    `json:"member_count"`
	IsBoardActivated bool   `json:"is_board_activated"`
	IsMember         bool   `json:"is_member"`
}

type MemberResponse struct {
	UserID   string    `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}

func ToRecruitmentResponse(t *entity.TeamRecruitment, memberCount int, isMember bool) *RecruitmentResponse {
	return &RecruitmentResponse{
		ID:               t.ID.String(),
		CourseID:         t.CourseID,
		AuthorID:         t.AuthorID.String(),
		Title:            t.Title,
		Description:      t.Description,
		TeamBoardName:    t.TeamBoardName,
		BoardSlug:        t.BoardSlug,
		MaxMembers:       t.MaxMembers,
		MemberCount:      memberCount,
		IsBoardActivated: t.IsBoardActivated,
		IsMember:         isMember,
	}
}
