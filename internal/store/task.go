package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"starboard/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskCols = `id, member_id, task_date, title, day_section, block_id, duration_minutes, star_value, sort_order, input_type, status, repeat, picklist, completed_at, accepted_at, created_at, updated_at`

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var daySection sql.NullString
	var blockID sql.NullInt64
	var picklist sql.NullString
	var completedAt, acceptedAt sql.NullTime

	err := scanner.Scan(
		&t.ID, &t.MemberID, &t.TaskDate, &t.Title, &daySection, &blockID,
		&t.DurationMinutes, &t.StarValue, &t.SortOrder, &t.InputType,
		&t.Status, &t.Repeat, &picklist, &completedAt, &acceptedAt,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if daySection.Valid {
		t.DaySection = &daySection.String
	}
	if blockID.Valid {
		t.BlockID = &blockID.Int64
	}
	if picklist.Valid && picklist.String != "" {
		var p model.Picklist
		if err := json.Unmarshal([]byte(picklist.String), &p); err != nil {
			return nil, fmt.Errorf("decode picklist: %w", err)
		}
		t.Picklist = &p
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	if acceptedAt.Valid {
		t.AcceptedAt = &acceptedAt.Time
	}
	return &t, nil
}

func marshalPicklist(p *model.Picklist) (sql.NullString, error) {
	if p == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode picklist: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func (s *TaskStore) Create(t *model.Task) (*model.Task, error) {
	picklist, err := marshalPicklist(t.Picklist)
	if err != nil {
		return nil, err
	}
	if t.InputType == "" {
		t.InputType = model.InputChild
	}
	if t.Repeat == "" {
		t.Repeat = model.RepeatNone
	}

	result, err := s.db.Exec(
		`INSERT INTO tasks (member_id, task_date, title, day_section, block_id, duration_minutes, star_value, sort_order, input_type, repeat, picklist)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.MemberID, t.TaskDate, t.Title, nullStr(t.DaySection), nullID(t.BlockID),
		t.DurationMinutes, t.StarValue, t.SortOrder, t.InputType, t.Repeat, picklist,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetTask(id)
}

func (s *TaskStore) GetTask(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) queryTasks(query string, args ...any) ([]model.Task, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// ListForMemberDate returns a member's tasks for one calendar date, ordered
// by day section then sort order.
func (s *TaskStore) ListForMemberDate(memberID int64, date string) ([]model.Task, error) {
	return s.queryTasks(
		`SELECT `+taskCols+` FROM tasks WHERE member_id = ? AND task_date = ? ORDER BY day_section ASC, sort_order ASC`,
		memberID, date,
	)
}

func (s *TaskStore) ListForMemberDateSection(memberID int64, date, section string) ([]model.Task, error) {
	return s.queryTasks(
		`SELECT `+taskCols+` FROM tasks WHERE member_id = ? AND task_date = ? AND day_section = ? ORDER BY sort_order ASC`,
		memberID, date, section,
	)
}

func (s *TaskStore) ListForDate(date string) ([]model.Task, error) {
	return s.queryTasks(
		`SELECT `+taskCols+` FROM tasks WHERE task_date = ? ORDER BY member_id ASC, day_section ASC, sort_order ASC`,
		date,
	)
}

// Update replaces a task's editable fields. Status and its timestamps only
// change through the transition methods below.
func (s *TaskStore) Update(id int64, t *model.Task) (*model.Task, error) {
	picklist, err := marshalPicklist(t.Picklist)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(
		`UPDATE tasks SET title = ?, day_section = ?, block_id = ?, duration_minutes = ?, star_value = ?, sort_order = ?, input_type = ?, repeat = ?, picklist = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		t.Title, nullStr(t.DaySection), nullID(t.BlockID), t.DurationMinutes,
		t.StarValue, t.SortOrder, t.InputType, t.Repeat, picklist, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetTask(id)
}

func (s *TaskStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// --- Transition methods (engine.Store) ---
//
// Each write names the expected prior status in its WHERE clause, so a retry
// of an already-applied transition affects zero rows and reports
// applied=false instead of corrupting the ledger.

func (s *TaskStore) MarkDone(taskID int64, completedAt time.Time) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE tasks SET status = 'done', completed_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = 'pending'`,
		completedAt, taskID,
	)
	if err != nil {
		return false, fmt.Errorf("mark done: %w", err)
	}
	return applied(result)
}

func (s *TaskStore) UndoDone(taskID int64) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE tasks SET status = 'pending', completed_at = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = 'done'`,
		taskID,
	)
	if err != nil {
		return false, fmt.Errorf("undo done: %w", err)
	}
	return applied(result)
}

// Accept flips a done task to accepted, inserts the single ledger row, and
// bumps the member's balance in one transaction, so the ledger and counter
// can never diverge.
func (s *TaskStore) Accept(taskID, memberID int64, stars int, acceptedAt time.Time) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE tasks SET status = 'accepted', accepted_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = 'done'`,
		acceptedAt, taskID,
	)
	if err != nil {
		return false, fmt.Errorf("accept task: %w", err)
	}
	ok, err := applied(result)
	if err != nil || !ok {
		return false, err
	}

	if _, err := tx.Exec(
		`INSERT INTO star_ledger (member_id, task_id, stars, earned_at) VALUES (?, ?, ?, ?)`,
		memberID, taskID, stars, acceptedAt,
	); err != nil {
		return false, fmt.Errorf("insert ledger entry: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE family_members SET star_balance = star_balance + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		stars, memberID,
	); err != nil {
		return false, fmt.Errorf("increment balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit accept: %w", err)
	}
	return true, nil
}

// Unaccept is the compensating transaction: status back to done, ledger row
// deleted, balance decremented.
func (s *TaskStore) Unaccept(taskID, memberID int64, stars int) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE tasks SET status = 'done', accepted_at = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = 'accepted'`,
		taskID,
	)
	if err != nil {
		return false, fmt.Errorf("unaccept task: %w", err)
	}
	ok, err := applied(result)
	if err != nil || !ok {
		return false, err
	}

	if _, err := tx.Exec(
		`DELETE FROM star_ledger WHERE member_id = ? AND task_id = ?`,
		memberID, taskID,
	); err != nil {
		return false, fmt.Errorf("delete ledger entry: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE family_members SET star_balance = star_balance - ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		stars, memberID,
	); err != nil {
		return false, fmt.Errorf("decrement balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit unaccept: %w", err)
	}
	return true, nil
}

func (s *TaskStore) SelectPicklistOption(taskID int64, picklist *model.Picklist, starValue int, status model.TaskStatus, completedAt *time.Time) (bool, error) {
	data, err := marshalPicklist(picklist)
	if err != nil {
		return false, err
	}

	var completed sql.NullTime
	if completedAt != nil {
		completed = sql.NullTime{Time: *completedAt, Valid: true}
	}

	result, err := s.db.Exec(
		`UPDATE tasks SET picklist = ?, star_value = ?, status = ?, completed_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status != 'accepted'`,
		data, starValue, status, completed, taskID,
	)
	if err != nil {
		return false, fmt.Errorf("select picklist option: %w", err)
	}
	return applied(result)
}

func applied(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// --- Materialization ---

// SpawnForDate copies repeating tasks onto the target date. For each
// member+title carrying a repeat rule, the most recent instance before the
// target date is the source; a fresh pending copy is created when the rule
// matches the target weekday and no task with that member+title exists on
// the date yet. Safe to call any number of times for the same date.
func (s *TaskStore) SpawnForDate(date string) (int, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, fmt.Errorf("parse spawn date: %w", err)
	}

	sources, err := s.queryTasks(
		`SELECT `+taskCols+` FROM tasks t
		 WHERE t.repeat != 'none' AND t.task_date < ?
		   AND t.id = (SELECT MAX(t2.id) FROM tasks t2
		               WHERE t2.member_id = t.member_id AND t2.title = t.title
		                 AND t2.repeat != 'none' AND t2.task_date < ?)`,
		date, date,
	)
	if err != nil {
		return 0, fmt.Errorf("list repeating tasks: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	created := 0
	for _, src := range sources {
		srcDay, err := time.Parse("2006-01-02", src.TaskDate)
		if err != nil {
			continue
		}
		if !repeatMatches(src.Repeat, srcDay.Weekday(), day.Weekday()) {
			continue
		}

		var count int
		if err := tx.QueryRow(
			`SELECT COUNT(*) FROM tasks WHERE member_id = ? AND title = ? AND task_date = ?`,
			src.MemberID, src.Title, date,
		).Scan(&count); err != nil {
			return 0, fmt.Errorf("check existing task: %w", err)
		}
		if count > 0 {
			continue
		}

		// Spawned copies start fresh: pending, no selection, and for
		// picklist tasks a zero star value until a parent picks.
		starValue := src.StarValue
		var picklist sql.NullString
		if src.Picklist != nil {
			starValue = 0
			fresh := &model.Picklist{Options: src.Picklist.Options}
			picklist, err = marshalPicklist(fresh)
			if err != nil {
				return 0, err
			}
		}

		if _, err := tx.Exec(
			`INSERT INTO tasks (member_id, task_date, title, day_section, block_id, duration_minutes, star_value, sort_order, input_type, repeat, picklist)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			src.MemberID, date, src.Title, nullStr(src.DaySection), nullID(src.BlockID),
			src.DurationMinutes, starValue, src.SortOrder, src.InputType, src.Repeat, picklist,
		); err != nil {
			return 0, fmt.Errorf("spawn task: %w", err)
		}
		created++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit spawn: %w", err)
	}
	return created, nil
}

func repeatMatches(r model.Repeat, source, target time.Weekday) bool {
	switch r {
	case model.RepeatDaily:
		return true
	case model.RepeatWeekdays:
		return target >= time.Monday && target <= time.Friday
	case model.RepeatWeekly:
		return target == source
	}
	return false
}
