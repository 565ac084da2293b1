package model

import "time"

type TaskStatus string

const (
	StatusPending  TaskStatus = "pending"
	StatusDone     TaskStatus = "done"
	StatusAccepted TaskStatus = "accepted"
)

// InputType gates who may mark a task done: the assigned child, or a parent.
type InputType string

const (
	InputChild  InputType = "child"
	InputParent InputType = "parent"
)

type Repeat string

const (
	RepeatNone     Repeat = "none"
	RepeatDaily    Repeat = "daily"
	RepeatWeekdays Repeat = "weekdays"
	RepeatWeekly   Repeat = "weekly"
)

// PicklistOption is one of the mutually-exclusive choices a parent can select
// on a picklist task. Each option carries its own star value.
type PicklistOption struct {
	Value  string `json:"value"`
	Label  string `json:"label"`
	Points int    `json:"points"`
}

// Picklist is the structured metadata for picklist tasks. A task with a nil
// Picklist is a plain task; the two variants never mix.
type Picklist struct {
	Options  []PicklistOption `json:"options"`
	Selected string           `json:"selected,omitempty"`
}

// Option returns the option with the given value.
func (p *Picklist) Option(value string) (PicklistOption, bool) {
	for _, o := range p.Options {
		if o.Value == value {
			return o, true
		}
	}
	return PicklistOption{}, false
}

type Task struct {
	ID              int64      `json:"id"`
	MemberID        int64      `json:"member_id"`
	TaskDate        string     `json:"task_date"` // YYYY-MM-DD
	Title           string     `json:"title"`
	DaySection      *string    `json:"day_section"`
	BlockID         *int64     `json:"block_id"`
	DurationMinutes int        `json:"duration_minutes"`
	StarValue       int        `json:"star_value"`
	SortOrder       int        `json:"sort_order"`
	InputType       InputType  `json:"input_type"`
	Status          TaskStatus `json:"status"`
	Repeat          Repeat     `json:"repeat"`
	Picklist        *Picklist  `json:"picklist,omitempty"`
	CompletedAt     *time.Time `json:"completed_at"`
	AcceptedAt      *time.Time `json:"accepted_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsBonus reports whether the task has no section or block association.
// Bonus tasks are shown separately from the timeline.
func (t *Task) IsBonus() bool {
	return t.DaySection == nil && t.BlockID == nil
}

func (t *Task) IsPicklist() bool {
	return t.Picklist != nil
}
