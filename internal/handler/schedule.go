package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"starboard/internal/clock"
	"starboard/internal/model"
	"starboard/internal/store"
	"starboard/internal/timeline"
)

type ScheduleHandler struct {
	schedule *store.ScheduleStore
	tasks    *store.TaskStore
	loc      *time.Location
	logger   *slog.Logger
}

func NewScheduleHandler(schedule *store.ScheduleStore, tasks *store.TaskStore, loc *time.Location, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{schedule: schedule, tasks: tasks, loc: loc, logger: logger}
}

// --- Templates ---

func (h *ScheduleHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	var (
		templates []model.ScheduleTemplate
		err       error
	)
	if memberID := r.URL.Query().Get("member_id"); memberID != "" {
		id, perr := parseID(memberID)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid member_id")
			return
		}
		templates, err = h.schedule.ListTemplatesByMember(id)
	} else {
		templates, err = h.schedule.ListTemplates()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list templates")
		return
	}
	if templates == nil {
		templates = []model.ScheduleTemplate{}
	}
	writeJSON(w, http.StatusOK, templates)
}

type templateRequest struct {
	Name     string   `json:"name"`
	MemberID int64    `json:"member_id"`
	DayTypes []string `json:"day_types"`
}

func (req *templateRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}
	for _, d := range req.DayTypes {
		if !timeline.ValidDayType(d) {
			return "day_types must be lowercase weekday names"
		}
	}
	return ""
}

func (h *ScheduleHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.MemberID == 0 {
		writeError(w, http.StatusBadRequest, "member_id is required")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	tpl, err := h.schedule.CreateTemplate(req.Name, req.MemberID, req.DayTypes)
	if err != nil {
		h.logger.Error("create template", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create template")
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

func (h *ScheduleHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	existing, err := h.schedule.GetTemplateByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get template")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	tpl, err := h.schedule.UpdateTemplate(id, req.Name, req.DayTypes)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update template")
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (h *ScheduleHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.schedule.DeleteTemplate(id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete template")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Blocks ---

func (h *ScheduleHandler) ListBlocks(w http.ResponseWriter, r *http.Request) {
	templateID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid template id")
		return
	}
	blocks, err := h.schedule.ListBlocksByTemplate(templateID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list blocks")
		return
	}
	if blocks == nil {
		blocks = []model.ScheduleBlock{}
	}
	writeJSON(w, http.StatusOK, blocks)
}

type blockRequest struct {
	Label       string          `json:"label"`
	Emoji       string          `json:"emoji"`
	Description string          `json:"description"`
	BlockType   model.BlockType `json:"block_type"`
	StartTime   string          `json:"start_time"`
	EndTime     string          `json:"end_time"`
	SortOrder   int             `json:"sort_order"`
}

// toBlock validates and converts "HH:MM" wall-clock strings to minutes.
func (req *blockRequest) toBlock() (*model.ScheduleBlock, string) {
	req.Label = strings.TrimSpace(req.Label)
	if req.Label == "" {
		return nil, "label is required"
	}
	switch req.BlockType {
	case "":
		req.BlockType = model.BlockRoutine
	case model.BlockRoutine, model.BlockActivity, model.BlockFreeTime, model.BlockPassive:
	default:
		return nil, "invalid block_type"
	}

	start, err := clock.ToMinutes(req.StartTime)
	if err != nil {
		return nil, "start_time must be HH:MM"
	}
	end, err := clock.ToMinutes(req.EndTime)
	if err != nil {
		return nil, "end_time must be HH:MM"
	}
	if end <= start {
		return nil, "end_time must be after start_time"
	}

	return &model.ScheduleBlock{
		Label:       req.Label,
		Emoji:       req.Emoji,
		Description: req.Description,
		BlockType:   req.BlockType,
		Start:       start,
		End:         end,
		SortOrder:   req.SortOrder,
	}, ""
}

func (h *ScheduleHandler) CreateBlock(w http.ResponseWriter, r *http.Request) {
	templateID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid template id")
		return
	}
	tpl, err := h.schedule.GetTemplateByID(templateID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get template")
		return
	}
	if tpl == nil {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}

	var req blockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	block, msg := req.toBlock()
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	block.TemplateID = templateID

	created, err := h.schedule.CreateBlock(block)
	if err != nil {
		h.logger.Error("create block", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create block")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ScheduleHandler) UpdateBlock(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	existing, err := h.schedule.GetBlockByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get block")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "block not found")
		return
	}

	var req blockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	block, msg := req.toBlock()
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := h.schedule.UpdateBlock(id, block)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update block")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ScheduleHandler) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.schedule.DeleteBlock(id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete block")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Day sections ---

func (h *ScheduleHandler) ListSections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.schedule.ListSections()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list day sections")
		return
	}
	writeJSON(w, http.StatusOK, sections)
}

func (h *ScheduleHandler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	start, err := clock.ToMinutes(req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_time must be HH:MM")
		return
	}
	end, err := clock.ToMinutes(req.EndTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_time must be HH:MM")
		return
	}
	if end <= start {
		writeError(w, http.StatusBadRequest, "end_time must be after start_time")
		return
	}

	section, err := h.schedule.UpdateSection(id, req.StartTime, req.EndTime)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update day section")
		return
	}
	writeJSON(w, http.StatusOK, section)
}

// --- Day view ---

// dayBlock is a classified schedule block with its attached tasks and a
// human time label.
type dayBlock struct {
	timeline.BlockWithPhase
	TimeLabel string       `json:"time_label"`
	Tasks     []model.Task `json:"tasks"`
}

type daySection struct {
	Label     string                   `json:"label"`
	StartTime string                   `json:"start_time"`
	EndTime   string                   `json:"end_time"`
	Tasks     []timeline.TaskWithPhase `json:"tasks"`
}

type dayView struct {
	Date     string                  `json:"date"`
	DayType  string                  `json:"day_type"`
	Template *model.ScheduleTemplate `json:"template"`
	Blocks   []dayBlock              `json:"blocks"`
	Sections []daySection            `json:"sections"`
	Bonus    []model.Task            `json:"bonus"`
}

// Day renders a member's full timeline for one date: the template's blocks
// classified against the clock, plus the sequential section lanes. Past dates
// come back in review mode; future dates show everything as upcoming.
func (h *ScheduleHandler) Day(w http.ResponseWriter, r *http.Request) {
	memberID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid member id")
		return
	}
	date, err := dateParam(r, h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	day, _ := time.Parse("2006-01-02", date)
	today := time.Now().In(h.loc).Format("2006-01-02")
	review := date < today
	nowMinutes := -1 // future date: everything is next/later
	switch {
	case review:
		nowMinutes = 24 * 60 // all section windows have elapsed
	case date == today:
		nowMinutes = clock.NowMinutes(h.loc)
	}

	view := dayView{
		Date:     date,
		DayType:  timeline.DayType(day),
		Blocks:   []dayBlock{},
		Sections: []daySection{},
		Bonus:    []model.Task{},
	}

	tpl, err := h.schedule.TemplateForMemberDay(memberID, view.DayType)
	if err != nil {
		h.logger.Error("resolve template", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to resolve template")
		return
	}
	view.Template = tpl

	tasks, err := h.tasks.ListForMemberDate(memberID, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	byBlock := make(map[int64][]model.Task)
	bySection := make(map[string][]model.Task)
	for _, t := range tasks {
		switch {
		case t.IsBonus():
			view.Bonus = append(view.Bonus, t)
		case t.BlockID != nil:
			byBlock[*t.BlockID] = append(byBlock[*t.BlockID], t)
		default:
			bySection[*t.DaySection] = append(bySection[*t.DaySection], t)
		}
	}

	if tpl != nil {
		blocks, err := h.schedule.ListBlocksByTemplate(tpl.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list blocks")
			return
		}
		var annotated []timeline.BlockWithPhase
		if review {
			annotated = timeline.ReviewBlocks(blocks)
		} else {
			annotated = timeline.ClassifyBlocks(blocks, nowMinutes)
		}
		for _, b := range annotated {
			blockTasks := byBlock[b.ID]
			if blockTasks == nil {
				blockTasks = []model.Task{}
			}
			view.Blocks = append(view.Blocks, dayBlock{
				BlockWithPhase: b,
				TimeLabel:      clock.FormatTimeRange(b.Start, b.End),
				Tasks:          blockTasks,
			})
		}
	}

	sections, err := h.schedule.ListSections()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list day sections")
		return
	}
	for _, s := range sections {
		sectionTasks := bySection[s.Label]
		start, err := clock.ToMinutes(s.StartTime)
		if err != nil {
			h.logger.Error("bad section start", "label", s.Label, "error", err)
			continue
		}
		view.Sections = append(view.Sections, daySection{
			Label:     s.Label,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			Tasks:     timeline.BuildSection(sectionTasks, start, nowMinutes),
		})
	}

	writeJSON(w, http.StatusOK, view)
}
