package dto

import (
	"allmeet-api/modules/availability/entity"
)

// AutoPostStatus describes what the auto-recommendation trigger did as a side
// effect of a submission. It is auxiliary information; the submission itself
// succeeds independently of it.
type AutoPostStatus string

const (
	// AutoPostCreated: the artifact was minted by this call.
	AutoPostCreated AutoPostStatus = "created"
	// AutoPostAlreadyExists: an artifact with the same natural key exists.
	AutoPostAlreadyExists AutoPostStatus = "already_exists"
	// AutoPostNotReady: not every current member has submitted yet.
	AutoPostNotReady AutoPostStatus = "not_ready"
	// AutoPostNoCommonWindow: all members submitted but no continuous common
	// block meets the minimum duration.
	AutoPostNoCommonWindow AutoPostStatus = "no_common_window"
	// AutoPostSkipped: artifact creation failed; the failure was logged and
	// did not affect the submission.
	AutoPostSkipped AutoPostStatus = "skipped"
)

type AddTimeRequest struct {
	TeamID    *string `json:"team_id,omitempty"`
	DayOfWeek string  `json:"day_of_week" validate:"required"`
	StartTime string  `json:"start_time" validate:"required"`
	EndTime   string  `json:"end_time" validate:"required"`
}

type AutoPostResult struct {
	Status        AutoPostStatus             `json:"status"`
	PostID        *string                    `json:"post_id,omitempty"`
	TeamID        string                     `json:"team_id"`
	TeamBoardName string                     `json:"team_board_name"`
	Windows       []entity.RecommendedWindow `json:"windows,omitempty"`
}

type AddTimeResponse struct {
	Message  string          `json:"message"`
	Created  bool            `json:"created"`
	AutoPost *AutoPostResult `json:"auto_post,omitempty"`
}

type AvailableTimeResponse struct {
	ID        string  `json:"id"`
	TeamID    *string `json:"team_id,omitempty"`
	DayOfWeek string  `json:"day_of_week"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
}

func ToAvailableTimeResponse(t *entity.AvailableTime) AvailableTimeResponse {
	resp := AvailableTimeResponse{
		ID:        t.ID.String(),
		DayOfWeek: t.DayOfWeek,
		StartTime: t.StartTime,
		EndTime:   t.EndTime,
	}
	if t.TeamID != nil {
		id := t.TeamID.String()
		resp.TeamID = &id
	}
	return resp
}

type MemberTimes struct {
	UserID    string                  `json:"user_id"`
	Submitted bool                    `json:"submitted"`
	SlotCount int                     `json:"slot_count"`
	Times     []AvailableTimeResponse `json:"times"`
}

type TeamCommonTimesResponse struct {
	TeamID        string             `json:"team_id"`
	TeamBoardName string             `json:"team_board_name"`
	CourseID      string             `json:"course_id"`
	TeamSize      int                `json:"team_size"`
	Members       []MemberTimes      `json:"members"`
	OptimalSlots  []string           `json:"optimal_slots"`
	SlotCounts    map[string]int     `json:"slot_counts"`
	DailyBlocks   []entity.DayBlocks `json:"daily_blocks"`
}
