// Package engine implements the task lifecycle state machine
// (pending → done → accepted, with reversals) and its coupling to the
// star ledger and balance counters.
package engine

import (
	"errors"
	"fmt"
	"time"

	"starboard/internal/model"
)

var (
	ErrNotFound          = errors.New("task not found")
	ErrNotAllowed        = errors.New("transition not permitted for this actor")
	ErrInvalidTransition = errors.New("task is not in the required status")
	ErrNotPicklist       = errors.New("task has no picklist")
	ErrUnknownOption     = errors.New("picklist option not found")
)

// Store is the persistence the engine drives. Every transition write carries
// the expected prior status as a precondition and reports whether it was
// applied, so a blind retry of an already-applied transition is a no-op
// instead of a double ledger effect. Accept and Unaccept must apply the
// status change, the ledger row, and the balance increment atomically.
type Store interface {
	GetTask(id int64) (*model.Task, error)
	MarkDone(taskID int64, completedAt time.Time) (bool, error)
	UndoDone(taskID int64) (bool, error)
	Accept(taskID, memberID int64, stars int, acceptedAt time.Time) (bool, error)
	Unaccept(taskID, memberID int64, stars int) (bool, error)
	SelectPicklistOption(taskID int64, picklist *model.Picklist, starValue int, status model.TaskStatus, completedAt *time.Time) (bool, error)
}

// Actor is whoever is invoking a transition.
type Actor struct {
	MemberID int64
	Role     model.Role
}

func (a Actor) isParent() bool {
	return a.Role == model.RoleParent
}

type Engine struct {
	store Store
	now   func() time.Time
}

func New(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// NewAt creates an engine with a fixed clock. Tests use this.
func NewAt(store Store, now func() time.Time) *Engine {
	return &Engine{store: store, now: now}
}

// dateInteractive reports whether the actor may mutate tasks on the given
// calendar date. Today is interactive for everyone; parents may also edit
// other dates (retroactive review, preparing tomorrow); children may not.
func (e *Engine) dateInteractive(actor Actor, taskDate string) bool {
	if actor.isParent() {
		return true
	}
	return taskDate == e.now().Format("2006-01-02")
}

func (e *Engine) load(taskID int64) (*model.Task, error) {
	task, err := e.store.GetTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("load task: %w", err)
	}
	if task == nil {
		return nil, ErrNotFound
	}
	return task, nil
}

// MarkDone moves a pending task to done. Child-input tasks may only be
// completed by the assigned child; parent-input tasks only by a parent.
// No ledger effect.
func (e *Engine) MarkDone(actor Actor, taskID int64) (*model.Task, error) {
	task, err := e.load(taskID)
	if err != nil {
		return nil, err
	}

	switch task.InputType {
	case model.InputChild:
		if actor.isParent() || actor.MemberID != task.MemberID {
			return nil, ErrNotAllowed
		}
	case model.InputParent:
		if !actor.isParent() {
			return nil, ErrNotAllowed
		}
	}
	if !e.dateInteractive(actor, task.TaskDate) {
		return nil, ErrNotAllowed
	}
	if task.Status != model.StatusPending {
		return nil, ErrInvalidTransition
	}

	applied, err := e.store.MarkDone(taskID, e.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("mark done: %w", err)
	}
	if !applied {
		return nil, ErrInvalidTransition
	}
	return e.load(taskID)
}

// Undo reverts a done task to pending and clears the completion timestamp.
// Only the assigned child may undo, and only on an interactive date.
func (e *Engine) Undo(actor Actor, taskID int64) (*model.Task, error) {
	task, err := e.load(taskID)
	if err != nil {
		return nil, err
	}

	if actor.isParent() || actor.MemberID != task.MemberID {
		return nil, ErrNotAllowed
	}
	if !e.dateInteractive(actor, task.TaskDate) {
		return nil, ErrNotAllowed
	}
	if task.Status != model.StatusDone {
		return nil, ErrInvalidTransition
	}

	applied, err := e.store.UndoDone(taskID)
	if err != nil {
		return nil, fmt.Errorf("undo: %w", err)
	}
	if !applied {
		return nil, ErrInvalidTransition
	}
	return e.load(taskID)
}

// Accept moves a done task to accepted, appends exactly one ledger entry
// worth the task's star value, and increments the member's balance. The
// three effects are one atomic store operation.
func (e *Engine) Accept(actor Actor, taskID int64) (*model.Task, error) {
	task, err := e.load(taskID)
	if err != nil {
		return nil, err
	}

	if !actor.isParent() {
		return nil, ErrNotAllowed
	}
	if task.Status != model.StatusDone {
		return nil, ErrInvalidTransition
	}

	applied, err := e.store.Accept(taskID, task.MemberID, task.StarValue, e.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("accept: %w", err)
	}
	if !applied {
		return nil, ErrInvalidTransition
	}
	return e.load(taskID)
}

// Unaccept reverts an accepted task to done, deletes its ledger entry, and
// decrements the member's balance. The net effect of accept followed by
// unaccept is zero.
func (e *Engine) Unaccept(actor Actor, taskID int64) (*model.Task, error) {
	task, err := e.load(taskID)
	if err != nil {
		return nil, err
	}

	if !actor.isParent() {
		return nil, ErrNotAllowed
	}
	if task.Status != model.StatusAccepted {
		return nil, ErrInvalidTransition
	}

	applied, err := e.store.Unaccept(taskID, task.MemberID, task.StarValue)
	if err != nil {
		return nil, fmt.Errorf("unaccept: %w", err)
	}
	if !applied {
		return nil, ErrInvalidTransition
	}
	return e.load(taskID)
}

// PicklistSelect records a parent's choice on a picklist task. Selecting the
// already-selected value toggles it off (back to pending, zero stars);
// selecting a new value marks the task done with the option's star value.
// The stars stay provisional until a separate Accept. Accepted picklist
// tasks must be unaccepted before the selection can change, otherwise the
// ledger and star value would diverge.
func (e *Engine) PicklistSelect(actor Actor, taskID int64, optionValue string) (*model.Task, error) {
	task, err := e.load(taskID)
	if err != nil {
		return nil, err
	}

	if !actor.isParent() {
		return nil, ErrNotAllowed
	}
	if !task.IsPicklist() {
		return nil, ErrNotPicklist
	}
	if task.Status == model.StatusAccepted {
		return nil, ErrInvalidTransition
	}

	opt, ok := task.Picklist.Option(optionValue)
	if !ok {
		return nil, ErrUnknownOption
	}

	updated := &model.Picklist{Options: task.Picklist.Options}
	var (
		starValue   int
		status      model.TaskStatus
		completedAt *time.Time
	)
	if task.Picklist.Selected == optionValue {
		// Toggle off
		status = model.StatusPending
	} else {
		updated.Selected = optionValue
		starValue = opt.Points
		status = model.StatusDone
		now := e.now().UTC()
		completedAt = &now
	}

	applied, err := e.store.SelectPicklistOption(taskID, updated, starValue, status, completedAt)
	if err != nil {
		return nil, fmt.Errorf("picklist select: %w", err)
	}
	if !applied {
		return nil, ErrInvalidTransition
	}
	return e.load(taskID)
}
