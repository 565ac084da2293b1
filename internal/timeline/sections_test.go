package timeline

import (
	"testing"

	"starboard/internal/model"
)

func sectionTask(id int64, duration int, status model.TaskStatus) model.Task {
	return model.Task{ID: id, Title: "task", DurationMinutes: duration, Status: status}
}

func TestBuildSectionSequential(t *testing.T) {
	tasks := []model.Task{
		sectionTask(1, 10, model.StatusPending),
		sectionTask(2, 10, model.StatusPending),
		sectionTask(3, 10, model.StatusPending),
	}
	// Section starts 08:00, now is 08:15
	got := BuildSection(tasks, 480, 495)

	if got[0].Phase != PhaseDone {
		t.Errorf("task 1 phase = %q, want %q", got[0].Phase, PhaseDone)
	}
	if got[1].Phase != PhaseNow {
		t.Errorf("task 2 phase = %q, want %q", got[1].Phase, PhaseNow)
	}
	if got[1].RemainingMs != 300000 {
		t.Errorf("task 2 remainingMs = %d, want 300000", got[1].RemainingMs)
	}
	if got[2].Phase != PhaseLater {
		t.Errorf("task 3 phase = %q, want %q", got[2].Phase, PhaseLater)
	}
}

func TestBuildSectionWindows(t *testing.T) {
	tasks := []model.Task{
		sectionTask(1, 15, model.StatusPending),
		sectionTask(2, 30, model.StatusPending),
	}
	got := BuildSection(tasks, 480, 470)

	if got[0].ScheduledStart != 480 || got[0].ScheduledEnd != 495 {
		t.Errorf("task 1 window = [%d,%d), want [480,495)", got[0].ScheduledStart, got[0].ScheduledEnd)
	}
	if got[1].ScheduledStart != 495 || got[1].ScheduledEnd != 525 {
		t.Errorf("task 2 window = [%d,%d), want [495,525)", got[1].ScheduledStart, got[1].ScheduledEnd)
	}
	// Before the section starts, the first task is already "now"
	if got[0].Phase != PhaseNow {
		t.Errorf("task 1 phase = %q, want %q", got[0].Phase, PhaseNow)
	}
	if got[0].RemainingMs != int64(25)*60*1000 {
		t.Errorf("task 1 remainingMs = %d, want %d", got[0].RemainingMs, int64(25)*60*1000)
	}
}

// Completed and accepted tasks stay "done" regardless of their window, and
// the "now" slot moves to the first unfinished task.
func TestBuildSectionCompletedSkipsWindow(t *testing.T) {
	tasks := []model.Task{
		sectionTask(1, 10, model.StatusAccepted),
		sectionTask(2, 10, model.StatusDone),
		sectionTask(3, 10, model.StatusPending),
	}
	got := BuildSection(tasks, 480, 482) // now inside task 1's window

	if got[0].Phase != PhaseDone {
		t.Errorf("task 1 phase = %q, want %q", got[0].Phase, PhaseDone)
	}
	if got[1].Phase != PhaseDone {
		t.Errorf("task 2 phase = %q, want %q", got[1].Phase, PhaseDone)
	}
	if got[2].Phase != PhaseNow {
		t.Errorf("task 3 phase = %q, want %q", got[2].Phase, PhaseNow)
	}
}

func TestBuildSectionAllElapsed(t *testing.T) {
	tasks := []model.Task{
		sectionTask(1, 10, model.StatusPending),
		sectionTask(2, 10, model.StatusPending),
	}
	got := BuildSection(tasks, 480, 600) // long past the section

	for i := range got {
		if got[i].Phase != PhaseDone {
			t.Errorf("task %d phase = %q, want %q", i+1, got[i].Phase, PhaseDone)
		}
	}
}

func TestBuildSectionFutureDate(t *testing.T) {
	tasks := []model.Task{
		sectionTask(1, 10, model.StatusPending),
		sectionTask(2, 10, model.StatusDone),
	}
	got := BuildSection(tasks, 480, -1)

	if got[0].Phase != PhaseLater {
		t.Errorf("task 1 phase = %q, want %q", got[0].Phase, PhaseLater)
	}
	if got[1].Phase != PhaseDone {
		t.Errorf("task 2 phase = %q, want %q", got[1].Phase, PhaseDone)
	}
}

func TestBuildSectionEmpty(t *testing.T) {
	got := BuildSection(nil, 480, 490)
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d tasks", len(got))
	}
}
