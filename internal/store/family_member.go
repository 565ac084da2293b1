package store

import (
	"database/sql"
	"fmt"

	"starboard/internal/model"
)

type FamilyMemberStore struct {
	db *sql.DB
}

func NewFamilyMemberStore(db *sql.DB) *FamilyMemberStore {
	return &FamilyMemberStore{db: db}
}

const memberCols = `id, name, role, color, avatar_emoji, pin IS NOT NULL, star_balance, sort_order, created_at, updated_at`

func scanMember(scanner interface{ Scan(...any) error }) (*model.FamilyMember, error) {
	var m model.FamilyMember
	err := scanner.Scan(&m.ID, &m.Name, &m.Role, &m.Color, &m.AvatarEmoji, &m.HasPIN, &m.StarBalance, &m.SortOrder, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *FamilyMemberStore) Create(name string, role model.Role, color, avatarEmoji string) (*model.FamilyMember, error) {
	var maxOrder int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(sort_order), -1) FROM family_members`).Scan(&maxOrder)
	if err != nil {
		return nil, fmt.Errorf("query max sort_order: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO family_members (name, role, color, avatar_emoji, sort_order) VALUES (?, ?, ?, ?, ?)`,
		name, role, color, avatarEmoji, maxOrder+1,
	)
	if err != nil {
		return nil, fmt.Errorf("insert family member: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *FamilyMemberStore) List() ([]model.FamilyMember, error) {
	rows, err := s.db.Query(`SELECT ` + memberCols + ` FROM family_members ORDER BY sort_order ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list family members: %w", err)
	}
	defer rows.Close()

	var members []model.FamilyMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan family member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (s *FamilyMemberStore) ListByRole(role model.Role) ([]model.FamilyMember, error) {
	rows, err := s.db.Query(`SELECT `+memberCols+` FROM family_members WHERE role = ? ORDER BY sort_order ASC, name ASC`, role)
	if err != nil {
		return nil, fmt.Errorf("list members by role: %w", err)
	}
	defer rows.Close()

	var members []model.FamilyMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan family member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (s *FamilyMemberStore) GetByID(id int64) (*model.FamilyMember, error) {
	row := s.db.QueryRow(`SELECT `+memberCols+` FROM family_members WHERE id = ?`, id)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family member: %w", err)
	}
	return m, nil
}

func (s *FamilyMemberStore) NameExists(name string, excludeID int64) (bool, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM family_members WHERE name = ? AND id != ?`, name, excludeID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check name: %w", err)
	}
	return count > 0, nil
}

func (s *FamilyMemberStore) Update(id int64, name, color, avatarEmoji string) (*model.FamilyMember, error) {
	_, err := s.db.Exec(
		`UPDATE family_members SET name = ?, color = ?, avatar_emoji = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, color, avatarEmoji, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update family member: %w", err)
	}
	return s.GetByID(id)
}

func (s *FamilyMemberStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM family_members WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete family member: %w", err)
	}
	return nil
}

func (s *FamilyMemberStore) UpdateSortOrder(ids []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for i, id := range ids {
		if _, err := tx.Exec(`UPDATE family_members SET sort_order = ? WHERE id = ?`, i, id); err != nil {
			return fmt.Errorf("update sort order: %w", err)
		}
	}
	return tx.Commit()
}

// IncrementStars adjusts a member's balance by a signed amount. The
// accept/unaccept transactions use the same statement inside their tx; this
// standalone form is the raw point-increment operation.
func (s *FamilyMemberStore) IncrementStars(id int64, delta int) error {
	_, err := s.db.Exec(
		`UPDATE family_members SET star_balance = star_balance + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		delta, id,
	)
	if err != nil {
		return fmt.Errorf("increment stars: %w", err)
	}
	return nil
}

func (s *FamilyMemberStore) StarBalance(id int64) (int, error) {
	var balance int
	err := s.db.QueryRow(`SELECT star_balance FROM family_members WHERE id = ?`, id).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("get star balance: %w", err)
	}
	return balance, nil
}

// --- PIN methods ---

func (s *FamilyMemberStore) SetPIN(id int64, hash string) error {
	_, err := s.db.Exec(`UPDATE family_members SET pin = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, hash, id)
	if err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	return nil
}

func (s *FamilyMemberStore) ClearPIN(id int64) error {
	_, err := s.db.Exec(`UPDATE family_members SET pin = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("clear pin: %w", err)
	}
	return nil
}

func (s *FamilyMemberStore) GetPINHash(id int64) (string, error) {
	var hash sql.NullString
	err := s.db.QueryRow(`SELECT pin FROM family_members WHERE id = ?`, id).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get pin hash: %w", err)
	}
	return hash.String, nil
}
