package store

import (
	"database/sql"
	"fmt"

	"starboard/internal/model"
)

type LedgerStore struct {
	db *sql.DB
}

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

// ListByMember returns a member's most recent star grants, newest first,
// with task titles joined in for display.
func (s *LedgerStore) ListByMember(memberID int64, limit int) ([]model.StarLedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT l.id, l.member_id, l.task_id, l.stars, l.earned_at, t.title
		 FROM star_ledger l
		 JOIN tasks t ON t.id = l.task_id
		 WHERE l.member_id = ?
		 ORDER BY l.earned_at DESC, l.id DESC
		 LIMIT ?`,
		memberID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []model.StarLedgerEntry
	for rows.Next() {
		var e model.StarLedgerEntry
		if err := rows.Scan(&e.ID, &e.MemberID, &e.TaskID, &e.Stars, &e.EarnedAt, &e.TaskTitle); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetForTask returns the outstanding ledger entry for a member+task pair,
// or nil. The UNIQUE constraint guarantees at most one.
func (s *LedgerStore) GetForTask(memberID, taskID int64) (*model.StarLedgerEntry, error) {
	var e model.StarLedgerEntry
	err := s.db.QueryRow(
		`SELECT id, member_id, task_id, stars, earned_at FROM star_ledger WHERE member_id = ? AND task_id = ?`,
		memberID, taskID,
	).Scan(&e.ID, &e.MemberID, &e.TaskID, &e.Stars, &e.EarnedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	return &e, nil
}

// TotalForMember sums every outstanding grant. Used to audit the
// denormalized star_balance counter.
func (s *LedgerStore) TotalForMember(memberID int64) (int, error) {
	var total sql.NullInt64
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(stars), 0) FROM star_ledger WHERE member_id = ?`,
		memberID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum ledger: %w", err)
	}
	return int(total.Int64), nil
}
