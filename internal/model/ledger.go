package model

import "time"

// StarLedgerEntry records a single star grant. Entries are created on accept
// and deleted on unaccept (compensating delete, not a negative row); the
// ledger is the audit trail behind each member's star_balance counter.
type StarLedgerEntry struct {
	ID        int64     `json:"id"`
	MemberID  int64     `json:"member_id"`
	TaskID    int64     `json:"task_id"`
	Stars     int       `json:"stars"`
	EarnedAt  time.Time `json:"earned_at"`
	TaskTitle string    `json:"task_title,omitempty"`
}
