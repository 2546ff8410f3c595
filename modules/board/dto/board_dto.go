package dto

import (
	"time"

	"allmeet-api/modules/board/entity"
)

type PostResponse struct {
	ID            string        `json:"id"`
	CourseID      string        `json:"course_id"`
	AuthorID      string        `json:"author_id"`
	AuthorType    string        `json:"author_type"`
	Title         string        `json:"title"`
	Content       string        `json:"content"`
	Category      string        `json:"category"`
	TeamBoardName string        `json:"team_board_name,omitempty"`
	IsPinned      bool          `json:"is_pinned"`
	Poll          *PollResponse `json:"poll,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

type PollResponse struct {
	ID        string               `json:"id"`
	Question  string               `json:"question"`
	ExpiresAt *time.Time           `json:"expires_at,omitempty"`
	Options   []PollOptionResponse `json:"options"`
}

type PollOptionResponse struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func ToPostResponse(p *entity.Post, poll *entity.Poll, options []entity.PollOption) *PostResponse {
	resp := &PostResponse{
		ID:         p.ID.String(),
		CourseID:   p.CourseID,
		AuthorID:   p.AuthorID.String(),
		AuthorType: p.AuthorType,
		Title:      p.Title,
		Content:    p.Content,
		Category:   p.Category,
		IsPinned:   p.IsPinned,
		CreatedAt:  p.CreatedAt,
	}
	if p.TeamBoardName != nil {
		resp.TeamBoardName = *p.TeamBoardName
	}
	if poll != nil {
		pollResp := &PollResponse{
			ID:        poll.ID.String(),
			Question:  poll.Question,
			ExpiresAt: poll.ExpiresAt,
			Options:   make([]PollOptionResponse, 0, len(options)),
		}
		for _, o := range options {
			pollResp.Options = append(pollResp.Options, PollOptionResponse{ID: o.ID.String(), Text: o.Text})
		}
		resp.Poll = pollResp
	}
	return resp
}
