package timeline

import (
	"starboard/internal/model"
)

// TaskWithPhase is a task laid out on the sequential section timeline.
// ScheduledStart/ScheduledEnd are minutes-of-day; RemainingMs is set only
// when Phase is "now".
type TaskWithPhase struct {
	model.Task
	ScheduledStart int   `json:"scheduled_start"`
	ScheduledEnd   int   `json:"scheduled_end"`
	Phase          Phase `json:"phase"`
	RemainingMs    int64 `json:"remaining_ms,omitempty"`
}

// BuildSection lays tasks out back to back from the section start and
// assigns each a phase. Completed and accepted tasks are always "done".
// The first unfinished task whose window end is still ahead is "now";
// earlier tasks whose windows have elapsed default to "done" even without
// an actual completion, and everything after "now" is "later". A negative
// nowMinutes means the date has not arrived yet and every unfinished task
// is "later".
func BuildSection(tasks []model.Task, sectionStartMinutes, nowMinutes int) []TaskWithPhase {
	out := make([]TaskWithPhase, 0, len(tasks))
	cursor := sectionStartMinutes
	foundCurrent := false

	for _, t := range tasks {
		start := cursor
		end := cursor + t.DurationMinutes
		cursor = end

		item := TaskWithPhase{Task: t, ScheduledStart: start, ScheduledEnd: end}
		switch {
		case t.Status == model.StatusDone || t.Status == model.StatusAccepted:
			item.Phase = PhaseDone
		case nowMinutes < 0:
			item.Phase = PhaseLater
		case !foundCurrent && nowMinutes < end:
			item.Phase = PhaseNow
			remaining := int64(end-nowMinutes) * 60 * 1000
			if remaining < 0 {
				remaining = 0
			}
			item.RemainingMs = remaining
			foundCurrent = true
		case !foundCurrent:
			item.Phase = PhaseDone
		default:
			item.Phase = PhaseLater
		}
		out = append(out, item)
	}
	return out
}
