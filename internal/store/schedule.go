package store

import (
	"database/sql"
	"fmt"
	"strings"

	"starboard/internal/model"
)

type ScheduleStore struct {
	db *sql.DB
}

func NewScheduleStore(db *sql.DB) *ScheduleStore {
	return &ScheduleStore{db: db}
}

// --- Template methods ---

const templateCols = `id, name, member_id, day_types, created_at, updated_at`

func scanTemplate(scanner interface{ Scan(...any) error }) (*model.ScheduleTemplate, error) {
	var t model.ScheduleTemplate
	var dayTypes string
	err := scanner.Scan(&t.ID, &t.Name, &t.MemberID, &dayTypes, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if dayTypes != "" {
		t.DayTypes = strings.Split(dayTypes, ",")
	}
	return &t, nil
}

func (s *ScheduleStore) CreateTemplate(name string, memberID int64, dayTypes []string) (*model.ScheduleTemplate, error) {
	result, err := s.db.Exec(
		`INSERT INTO schedule_templates (name, member_id, day_types) VALUES (?, ?, ?)`,
		name, memberID, strings.Join(dayTypes, ","),
	)
	if err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetTemplateByID(id)
}

func (s *ScheduleStore) GetTemplateByID(id int64) (*model.ScheduleTemplate, error) {
	row := s.db.QueryRow(`SELECT `+templateCols+` FROM schedule_templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

func (s *ScheduleStore) ListTemplates() ([]model.ScheduleTemplate, error) {
	rows, err := s.db.Query(`SELECT ` + templateCols + ` FROM schedule_templates ORDER BY member_id ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []model.ScheduleTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

func (s *ScheduleStore) ListTemplatesByMember(memberID int64) ([]model.ScheduleTemplate, error) {
	rows, err := s.db.Query(
		`SELECT `+templateCols+` FROM schedule_templates WHERE member_id = ? ORDER BY name ASC`,
		memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("list templates by member: %w", err)
	}
	defer rows.Close()

	var templates []model.ScheduleTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// TemplateForMemberDay resolves the template that applies to a member on a
// given day type. When several templates declare the same weekday, the most
// recently created one wins.
func (s *ScheduleStore) TemplateForMemberDay(memberID int64, dayType string) (*model.ScheduleTemplate, error) {
	row := s.db.QueryRow(
		`SELECT `+templateCols+` FROM schedule_templates
		 WHERE member_id = ? AND (',' || day_types || ',') LIKE ('%,' || ? || ',%')
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		memberID, dayType,
	)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("template for member day: %w", err)
	}
	return t, nil
}

func (s *ScheduleStore) UpdateTemplate(id int64, name string, dayTypes []string) (*model.ScheduleTemplate, error) {
	_, err := s.db.Exec(
		`UPDATE schedule_templates SET name = ?, day_types = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, strings.Join(dayTypes, ","), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return s.GetTemplateByID(id)
}

func (s *ScheduleStore) DeleteTemplate(id int64) error {
	_, err := s.db.Exec(`DELETE FROM schedule_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

// --- Block methods ---

const blockCols = `id, template_id, label, emoji, description, block_type, start_minutes, end_minutes, sort_order, created_at, updated_at`

func scanBlock(scanner interface{ Scan(...any) error }) (*model.ScheduleBlock, error) {
	var b model.ScheduleBlock
	err := scanner.Scan(&b.ID, &b.TemplateID, &b.Label, &b.Emoji, &b.Description, &b.BlockType, &b.Start, &b.End, &b.SortOrder, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *ScheduleStore) CreateBlock(b *model.ScheduleBlock) (*model.ScheduleBlock, error) {
	result, err := s.db.Exec(
		`INSERT INTO schedule_blocks (template_id, label, emoji, description, block_type, start_minutes, end_minutes, sort_order)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.TemplateID, b.Label, b.Emoji, b.Description, b.BlockType, b.Start, b.End, b.SortOrder,
	)
	if err != nil {
		return nil, fmt.Errorf("insert block: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetBlockByID(id)
}

func (s *ScheduleStore) GetBlockByID(id int64) (*model.ScheduleBlock, error) {
	row := s.db.QueryRow(`SELECT `+blockCols+` FROM schedule_blocks WHERE id = ?`, id)
	b, err := scanBlock(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get block: %w", err)
	}
	return b, nil
}

// ListBlocksByTemplate returns a template's blocks ordered by start time,
// then sort order. The timeline classifier depends on this ordering.
func (s *ScheduleStore) ListBlocksByTemplate(templateID int64) ([]model.ScheduleBlock, error) {
	rows, err := s.db.Query(
		`SELECT `+blockCols+` FROM schedule_blocks WHERE template_id = ? ORDER BY start_minutes ASC, sort_order ASC`,
		templateID,
	)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	defer rows.Close()

	var blocks []model.ScheduleBlock
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		blocks = append(blocks, *b)
	}
	return blocks, rows.Err()
}

func (s *ScheduleStore) UpdateBlock(id int64, b *model.ScheduleBlock) (*model.ScheduleBlock, error) {
	_, err := s.db.Exec(
		`UPDATE schedule_blocks SET label = ?, emoji = ?, description = ?, block_type = ?, start_minutes = ?, end_minutes = ?, sort_order = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		b.Label, b.Emoji, b.Description, b.BlockType, b.Start, b.End, b.SortOrder, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update block: %w", err)
	}
	return s.GetBlockByID(id)
}

func (s *ScheduleStore) DeleteBlock(id int64) error {
	_, err := s.db.Exec(`DELETE FROM schedule_blocks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	return nil
}

// --- Day section methods ---

const sectionCols = `id, label, start_time, end_time, sort_order, created_at`

func (s *ScheduleStore) ListSections() ([]model.DaySection, error) {
	rows, err := s.db.Query(`SELECT ` + sectionCols + ` FROM day_sections ORDER BY sort_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("list day sections: %w", err)
	}
	defer rows.Close()

	var sections []model.DaySection
	for rows.Next() {
		var d model.DaySection
		if err := rows.Scan(&d.ID, &d.Label, &d.StartTime, &d.EndTime, &d.SortOrder, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan day section: %w", err)
		}
		sections = append(sections, d)
	}
	return sections, rows.Err()
}

func (s *ScheduleStore) GetSectionByLabel(label string) (*model.DaySection, error) {
	var d model.DaySection
	err := s.db.QueryRow(`SELECT `+sectionCols+` FROM day_sections WHERE label = ?`, label).
		Scan(&d.ID, &d.Label, &d.StartTime, &d.EndTime, &d.SortOrder, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get day section: %w", err)
	}
	return &d, nil
}

func (s *ScheduleStore) UpdateSection(id int64, startTime, endTime string) (*model.DaySection, error) {
	_, err := s.db.Exec(
		`UPDATE day_sections SET start_time = ?, end_time = ? WHERE id = ?`,
		startTime, endTime, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update day section: %w", err)
	}

	var d model.DaySection
	err = s.db.QueryRow(`SELECT `+sectionCols+` FROM day_sections WHERE id = ?`, id).
		Scan(&d.ID, &d.Label, &d.StartTime, &d.EndTime, &d.SortOrder, &d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get day section: %w", err)
	}
	return &d, nil
}
