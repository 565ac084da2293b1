// Package timeline annotates schedule blocks and task lists with their
// relationship to the current time: which entry is active, which is coming
// up, and how much time remains.
package timeline

import (
	"starboard/internal/model"
)

type Phase string

const (
	PhasePast   Phase = "past"
	PhaseNow    Phase = "now"
	PhaseNext   Phase = "next"
	PhaseLater  Phase = "later"
	PhaseReview Phase = "review"
	PhaseDone   Phase = "done"
)

// BlockWithPhase is a schedule block annotated with its phase relative to
// the current time. RemainingMinutes is set only when Phase is "now".
type BlockWithPhase struct {
	model.ScheduleBlock
	Phase            Phase `json:"phase"`
	RemainingMinutes int   `json:"remaining_minutes,omitempty"`
}

// ClassifyBlocks walks blocks (ordered by start time ascending, sort_order
// already applied as tiebreak) and assigns each a phase for the given
// minutes-of-day. At most one block is "now" and at most one is "next".
//
// A block whose end has passed is "past". The first block containing the
// current minute is "now". Otherwise the first block still ahead is "next",
// even when the current minute falls in a gap before any block has started.
// Everything after that is "later".
func ClassifyBlocks(blocks []model.ScheduleBlock, nowMinutes int) []BlockWithPhase {
	out := make([]BlockWithPhase, 0, len(blocks))
	foundCurrent := false
	foundNext := false

	for _, b := range blocks {
		annotated := BlockWithPhase{ScheduleBlock: b}
		switch {
		case nowMinutes >= b.End:
			annotated.Phase = PhasePast
		case !foundCurrent && nowMinutes >= b.Start:
			annotated.Phase = PhaseNow
			annotated.RemainingMinutes = b.End - nowMinutes
			foundCurrent = true
		case !foundNext:
			annotated.Phase = PhaseNext
			foundNext = true
		default:
			annotated.Phase = PhaseLater
		}
		out = append(out, annotated)
	}
	return out
}

// ReviewBlocks marks every block "review". Used when rendering a past
// calendar date, where time-of-day classification is meaningless.
func ReviewBlocks(blocks []model.ScheduleBlock) []BlockWithPhase {
	out := make([]BlockWithPhase, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, BlockWithPhase{ScheduleBlock: b, Phase: PhaseReview})
	}
	return out
}
