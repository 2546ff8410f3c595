package entity

import "fmt"

// SlotKey identifies one half-hour slot of the week.
type SlotKey struct {
	Day    int // 0 = Monday
	Minute int // minutes since midnight
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%d-%02d:%02d", k.Day, k.Minute/60, k.Minute%60)
}

// SlotSet is a user's availability lattice. Derived on demand from
// AvailableTime rows, never persisted.
type SlotSet map[SlotKey]struct{}

// TimeBlock is a contiguous [start, end) range within one day, in HH:MM.
type TimeBlock struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// DayBlocks holds a day's contiguous blocks.
type DayBlocks struct {
	DayOfWeek string      `json:"day_of_week"`
	Blocks    []TimeBlock `json:"blocks"`
}

// RecommendedWindow is a block that passed the minimum-duration filter.
type RecommendedWindow struct {
	DayOfWeek       string `json:"day_of_week"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
}
