package model

import "time"

type BlockType string

const (
	BlockRoutine  BlockType = "routine"
	BlockActivity BlockType = "activity"
	BlockFreeTime BlockType = "free_time"
	BlockPassive  BlockType = "passive"
)

// ScheduleTemplate is a named recurring schedule for one family member,
// tagged with the weekday names it applies to.
type ScheduleTemplate struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	MemberID  int64     `json:"member_id"`
	DayTypes  []string  `json:"day_types"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppliesTo reports whether the template declares the given day type.
func (t *ScheduleTemplate) AppliesTo(dayType string) bool {
	for _, d := range t.DayTypes {
		if d == dayType {
			return true
		}
	}
	return false
}

// ScheduleBlock is a fixed-time-range segment of a schedule template.
// Start and End are minutes since midnight.
type ScheduleBlock struct {
	ID          int64     `json:"id"`
	TemplateID  int64     `json:"template_id"`
	Label       string    `json:"label"`
	Emoji       string    `json:"emoji"`
	Description string    `json:"description"`
	BlockType   BlockType `json:"block_type"`
	Start       int       `json:"start_minutes"`
	End         int       `json:"end_minutes"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DaySection is a coarse part of the day (morning, afternoon, evening) used
// by the legacy sequential timeline. Times are "HH:MM" wall-clock strings.
type DaySection struct {
	ID        int64     `json:"id"`
	Label     string    `json:"label"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}
