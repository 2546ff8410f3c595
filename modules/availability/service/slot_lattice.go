package service

import (
	"fmt"
	"sort"

	"allmeet-api/modules/availability/entity"
)

const (
	// SlotStepMinutes is the width of one lattice slot.
	SlotStepMinutes = 30

	minutesPerDay = 24 * 60
)

// DayOrder fixes weekday iteration order for block output.
var DayOrder = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// DayIndex resolves a weekday name to its index, or -1 when unknown.
func DayIndex(name string) int {
	for i, day := range DayOrder {
		if day == name {
			return i
		}
	}
	return -1
}

// ParseClock converts "HH:MM" to minutes since midnight. "24:00" is accepted
// as an end-of-day boundary.
func ParseClock(s string) (int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if hour < 0 || hour > 24 || minute < 0 || minute > 59 || (hour == 24 && minute != 0) {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return hour*60 + minute, nil
}

// FormatClock renders minutes since midnight as zero-padded "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// BuildTimeSlots converts availability entries into a slot set. Entries with
// an unknown weekday or unparseable times are skipped. Slots start at the
// entry's start time and step by SlotStepMinutes, stopping before the end
// boundary, so an entry ending mid-step contributes no partial slot.
// Overlapping entries collapse into the set.
func BuildTimeSlots(entries []entity.AvailableTime) entity.SlotSet {
	slots := make(entity.SlotSet)

	for _, e := range entries {
		day := DayIndex(e.DayOfWeek)
		if day < 0 {
			continue
		}

		start, err := ParseClock(e.StartTime)
		if err != nil {
			continue
		}
		end, err := ParseClock(e.EndTime)
		if err != nil {
			continue
		}

		for minute := start; minute < end; minute += SlotStepMinutes {
			if minute >= minutesPerDay {
				continue
			}
			slots[entity.SlotKey{Day: day, Minute: minute}] = struct{}{}
		}
	}

	return slots
}

// IntersectSlotSets returns the slots present in every set. An empty input
// list yields an empty set, and so does any member with zero slots: a member
// with no availability makes the whole intersection vacuous rather than
// counting as free all the time. Iterates from the smallest set.
func IntersectSlotSets(sets []entity.SlotSet) entity.SlotSet {
	result := make(entity.SlotSet)
	if len(sets) == 0 {
		return result
	}
	for _, s := range sets {
		if len(s) == 0 {
			return result
		}
	}

	ordered := make([]entity.SlotSet, len(sets))
	copy(ordered, sets)
	sort.Slice(ordered, func(i, j int) bool {
		return len(ordered[i]) < len(ordered[j])
	})

	for slot := range ordered[0] {
		inAll := true
		for _, other := range ordered[1:] {
			if _, ok := other[slot]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			result[slot] = struct{}{}
		}
	}

	return result
}

// BuildDailyBlocks reassembles a slot set into per-day contiguous blocks.
// Within a day, slots exactly SlotStepMinutes apart merge into one block
// spanning [first, last+step). Output follows DayOrder; days without slots
// are absent.
func BuildDailyBlocks(slots entity.SlotSet) []entity.DayBlocks {
	perDay := make(map[int][]int)
	for key := range slots {
		perDay[key.Day] = append(perDay[key.Day], key.Minute)
	}

	var result []entity.DayBlocks
	for day := 0; day < len(DayOrder); day++ {
		minutes := perDay[day]
		if len(minutes) == 0 {
			continue
		}
		sort.Ints(minutes)

		var blocks []entity.TimeBlock
		runStart := minutes[0]
		previous := minutes[0]

		for _, minute := range minutes[1:] {
			if minute == previous+SlotStepMinutes {
				previous = minute
				continue
			}
			blocks = append(blocks, entity.TimeBlock{
				StartTime: FormatClock(runStart),
				EndTime:   FormatClock(previous + SlotStepMinutes),
			})
			runStart = minute
			previous = minute
		}
		blocks = append(blocks, entity.TimeBlock{
			StartTime: FormatClock(runStart),
			EndTime:   FormatClock(previous + SlotStepMinutes),
		})

		result = append(result, entity.DayBlocks{DayOfWeek: DayOrder[day], Blocks: blocks})
	}

	return result
}

// FindContinuousWindows keeps blocks of at least minMinutes, annotated with
// their duration. Blocks below the threshold are dropped whole, never
// trimmed.
func FindContinuousWindows(days []entity.DayBlocks, minMinutes int) []entity.RecommendedWindow {
	var windows []entity.RecommendedWindow

	for _, day := range days {
		for _, block := range day.Blocks {
			start, err := ParseClock(block.StartTime)
			if err != nil {
				continue
			}
			end, err := ParseClock(block.EndTime)
			if err != nil {
				continue
			}

			duration := end - start
			if duration >= minMinutes {
				windows = append(windows, entity.RecommendedWindow{
					DayOfWeek:       day.DayOfWeek,
					StartTime:       block.StartTime,
					EndTime:         block.EndTime,
					DurationMinutes: duration,
				})
			}
		}
	}

	return windows
}

// FormatDuration renders a minute count as "2h" or "2h 30m".
func FormatDuration(minutes int) string {
	hours := minutes / 60
	remainder := minutes % 60
	if remainder > 0 {
		return fmt.Sprintf("%dh %dm", hours, remainder)
	}
	return fmt.Sprintf("%dh", hours)
}

// SortedSlotStrings returns the canonical string form of each slot in
// day-then-minute order, for display payloads.
func SortedSlotStrings(slots entity.SlotSet) []string {
	keys := make([]entity.SlotKey, 0, len(slots))
	for key := range slots {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Day != keys[j].Day {
			return keys[i].Day < keys[j].Day
		}
		return keys[i].Minute < keys[j].Minute
	})

	result := make([]string, 0, len(keys))
	for _, key := range keys {
		result = append(result, key.String())
	}
	return result
}
