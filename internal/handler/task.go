package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"starboard/internal/engine"
	"starboard/internal/model"
	"starboard/internal/push"
	"starboard/internal/store"
	"starboard/internal/websocket"
)

type TaskHandler struct {
	tasks    *store.TaskStore
	members  *store.FamilyMemberStore
	engine   *engine.Engine
	hub      *websocket.Hub
	notifier *push.Notifier
	loc      *time.Location
	logger   *slog.Logger
}

func NewTaskHandler(
	tasks *store.TaskStore,
	members *store.FamilyMemberStore,
	eng *engine.Engine,
	hub *websocket.Hub,
	notifier *push.Notifier,
	loc *time.Location,
	logger *slog.Logger,
) *TaskHandler {
	return &TaskHandler{
		tasks:    tasks,
		members:  members,
		engine:   eng,
		hub:      hub,
		notifier: notifier,
		loc:      loc,
		logger:   logger,
	}
}

// List returns tasks for a date, optionally narrowed to one member or one
// day section.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	var tasks []model.Task
	memberID := r.URL.Query().Get("member_id")
	section := r.URL.Query().Get("section")
	switch {
	case memberID != "" && section != "":
		id, perr := parseID(memberID)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid member_id")
			return
		}
		tasks, err = h.tasks.ListForMemberDateSection(id, date, section)
	case memberID != "":
		id, perr := parseID(memberID)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid member_id")
			return
		}
		tasks, err = h.tasks.ListForMemberDate(id, date)
	default:
		tasks, err = h.tasks.ListForDate(date)
	}
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

type taskRequest struct {
	MemberID        int64           `json:"member_id"`
	TaskDate        string          `json:"task_date"`
	Title           string          `json:"title"`
	DaySection      *string         `json:"day_section"`
	BlockID         *int64          `json:"block_id"`
	DurationMinutes int             `json:"duration_minutes"`
	StarValue       int             `json:"star_value"`
	SortOrder       int             `json:"sort_order"`
	InputType       model.InputType `json:"input_type"`
	Repeat          model.Repeat    `json:"repeat"`
	Picklist        *model.Picklist `json:"picklist"`
}

func (req *taskRequest) validate() string {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title is required"
	}
	if req.MemberID == 0 {
		return "member_id is required"
	}
	if _, err := time.Parse("2006-01-02", req.TaskDate); err != nil {
		return "task_date must be YYYY-MM-DD"
	}
	switch req.InputType {
	case "", model.InputChild, model.InputParent:
	default:
		return "input_type must be child or parent"
	}
	switch req.Repeat {
	case "", model.RepeatNone, model.RepeatDaily, model.RepeatWeekdays, model.RepeatWeekly:
	default:
		return "repeat must be none, daily, weekdays, or weekly"
	}
	if req.DurationMinutes < 0 || req.StarValue < 0 {
		return "duration and star value must not be negative"
	}
	if req.Picklist != nil && len(req.Picklist.Options) == 0 {
		return "picklist needs at least one option"
	}
	return ""
}

func (req *taskRequest) toTask() *model.Task {
	return &model.Task{
		MemberID:        req.MemberID,
		TaskDate:        req.TaskDate,
		Title:           req.Title,
		DaySection:      req.DaySection,
		BlockID:         req.BlockID,
		DurationMinutes: req.DurationMinutes,
		StarValue:       req.StarValue,
		SortOrder:       req.SortOrder,
		InputType:       req.InputType,
		Repeat:          req.Repeat,
		Picklist:        req.Picklist,
	}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	task, err := h.tasks.Create(req.toTask())
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	h.hub.Broadcast(websocket.TaskEvent("created", task))
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.tasks.GetTask(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.MemberID == 0 {
		req.MemberID = existing.MemberID
	}
	if req.TaskDate == "" {
		req.TaskDate = existing.TaskDate
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	task, err := h.tasks.Update(id, req.toTask())
	if err != nil {
		h.logger.Error("update task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	h.hub.Broadcast(websocket.TaskEvent("updated", task))
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.tasks.GetTask(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	if err := h.tasks.Delete(id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}

	h.hub.Broadcast(websocket.TaskEvent("deleted", existing))
	w.WriteHeader(http.StatusNoContent)
}

// Done marks a task complete on behalf of the authenticated member.
func (h *TaskHandler) Done(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "done", h.engine.MarkDone, func(task *model.Task) {
		member, err := h.members.GetByID(task.MemberID)
		if err != nil || member == nil {
			return
		}
		// Parents only need a ping for work that awaits their review
		if task.InputType == model.InputChild {
			h.notifier.TaskCompleted(task, member.Name)
		}
	})
}

func (h *TaskHandler) Undo(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "undone", h.engine.Undo, nil)
}

func (h *TaskHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "accepted", h.engine.Accept, func(task *model.Task) {
		h.notifier.TaskAccepted(task, task.StarValue)
	})
}

func (h *TaskHandler) Unaccept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "unaccepted", h.engine.Unaccept, nil)
}

func (h *TaskHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	action string,
	fn func(engine.Actor, int64) (*model.Task, error),
	after func(*model.Task),
) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	task, err := fn(actor, id)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.hub.Broadcast(websocket.TaskEvent(action, task))
	if after != nil {
		go after(task)
	}
	writeJSON(w, http.StatusOK, task)
}

// Spawn materializes repeating tasks onto a date. Parents use this when
// preparing a day ahead of the nightly job.
func (h *TaskHandler) Spawn(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	created, err := h.tasks.SpawnForDate(date)
	if err != nil {
		h.logger.Error("spawn tasks", "date", date, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to spawn tasks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "created": created})
}

// Pick records a picklist selection on a task.
func (h *TaskHandler) Pick(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		Option string `json:"option"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Option == "" {
		writeError(w, http.StatusBadRequest, "option is required")
		return
	}

	task, err := h.engine.PicklistSelect(actor, id, req.Option)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.hub.Broadcast(websocket.TaskEvent("picked", task))
	writeJSON(w, http.StatusOK, task)
}
