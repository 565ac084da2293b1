package store

import (
	"testing"

	"starboard/internal/database"
	"starboard/internal/model"
)

func setupSessionTestDB(t *testing.T) (*SessionStore, *FamilyMemberStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSessionStore(db), NewFamilyMemberStore(db)
}

func TestSessionCreateAndGet(t *testing.T) {
	ss, ms := setupSessionTestDB(t)
	m, _ := ms.Create("Ada", model.RoleParent, "#fff", "🌟")

	sess, err := ss.Create(m.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.Token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(sess.Token))
	}
	if sess.MemberID != m.ID {
		t.Errorf("member_id = %d, want %d", sess.MemberID, m.ID)
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got == nil || got.ID != sess.ID {
		t.Fatalf("got = %+v, want session %d", got, sess.ID)
	}
}

func TestSessionGetUnknownToken(t *testing.T) {
	ss, _ := setupSessionTestDB(t)

	got, err := ss.GetByToken("nope")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unknown token, got %+v", got)
	}
}

func TestSessionTokensAreUnique(t *testing.T) {
	ss, ms := setupSessionTestDB(t)
	m, _ := ms.Create("Ada", model.RoleParent, "#fff", "🌟")

	a, _ := ss.Create(m.ID)
	b, _ := ss.Create(m.ID)
	if a.Token == b.Token {
		t.Error("expected distinct tokens")
	}
}

func TestSessionDelete(t *testing.T) {
	ss, ms := setupSessionTestDB(t)
	m, _ := ms.Create("Ada", model.RoleParent, "#fff", "🌟")

	sess, _ := ss.Create(m.ID)
	if err := ss.DeleteByToken(sess.Token); err != nil {
		t.Fatalf("delete by token: %v", err)
	}
	got, _ := ss.GetByToken(sess.Token)
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestSessionDeleteByMember(t *testing.T) {
	ss, ms := setupSessionTestDB(t)
	m, _ := ms.Create("Ada", model.RoleParent, "#fff", "🌟")

	a, _ := ss.Create(m.ID)
	b, _ := ss.Create(m.ID)

	if err := ss.DeleteByMemberID(m.ID); err != nil {
		t.Fatalf("delete by member: %v", err)
	}
	for _, token := range []string{a.Token, b.Token} {
		if got, _ := ss.GetByToken(token); got != nil {
			t.Error("expected all member sessions deleted")
		}
	}
}

func TestDeleteExpired(t *testing.T) {
	ss, ms := setupSessionTestDB(t)
	m, _ := ms.Create("Ada", model.RoleParent, "#fff", "🌟")

	sess, _ := ss.Create(m.ID)

	// Force the session into the past, then sweep.
	if _, err := ss.db.Exec(`UPDATE sessions SET expires_at = datetime('now', '-1 hour') WHERE id = ?`, sess.ID); err != nil {
		t.Fatalf("expire session: %v", err)
	}

	if got, _ := ss.GetByToken(sess.Token); got != nil {
		t.Error("expected expired session to be invisible")
	}

	count, err := ss.DeleteExpired()
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if count != 1 {
		t.Errorf("deleted = %d, want 1", count)
	}
}
