package store

import (
	"testing"

	"starboard/internal/database"
	"starboard/internal/model"
)

func setupPushTestDB(t *testing.T) (*PushStore, *FamilyMemberStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPushStore(db), NewFamilyMemberStore(db)
}

func TestPushUpsert(t *testing.T) {
	ps, ms := setupPushTestDB(t)
	m, _ := ms.Create("Ada", model.RoleParent, "#fff", "🌟")

	sub, err := ps.Upsert(m.ID, "https://push.example/ep1", "p256dh-a", "auth-a", "Ada's phone")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if sub.Endpoint != "https://push.example/ep1" || sub.DeviceName != "Ada's phone" {
		t.Errorf("sub = %+v", sub)
	}

	// Re-subscribing the same endpoint rotates the keys in place.
	again, err := ps.Upsert(m.ID, "https://push.example/ep1", "p256dh-b", "auth-b", "Ada's phone")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if again.P256dhKey != "p256dh-b" {
		t.Errorf("p256dh = %q, want rotated key", again.P256dhKey)
	}

	subs, err := ps.ListByMember(m.ID)
	if err != nil {
		t.Fatalf("list by member: %v", err)
	}
	if len(subs) != 1 {
		t.Errorf("expected 1 subscription after upsert, got %d", len(subs))
	}
}

func TestPushListByRole(t *testing.T) {
	ps, ms := setupPushTestDB(t)
	ada, _ := ms.Create("Ada", model.RoleParent, "#fff", "🌟")
	rob, _ := ms.Create("Rob", model.RoleParent, "#fff", "🌲")
	ben, _ := ms.Create("Ben", model.RoleChild, "#fff", "🐢")

	ps.Upsert(ada.ID, "https://push.example/ada", "k", "a", "phone")
	ps.Upsert(rob.ID, "https://push.example/rob", "k", "a", "tablet")
	ps.Upsert(ben.ID, "https://push.example/ben", "k", "a", "kiosk")

	parents, err := ps.ListByRole(model.RoleParent)
	if err != nil {
		t.Fatalf("list by role: %v", err)
	}
	if len(parents) != 2 {
		t.Errorf("expected 2 parent subscriptions, got %d", len(parents))
	}
	for _, sub := range parents {
		if sub.MemberID == ben.ID {
			t.Error("child subscription leaked into parent list")
		}
	}
}

func TestPushDeleteByEndpoint(t *testing.T) {
	ps, ms := setupPushTestDB(t)
	m, _ := ms.Create("Ada", model.RoleParent, "#fff", "🌟")

	ps.Upsert(m.ID, "https://push.example/ep1", "k", "a", "phone")

	if err := ps.DeleteByEndpoint("https://push.example/ep1"); err != nil {
		t.Fatalf("delete by endpoint: %v", err)
	}
	subs, _ := ps.ListByMember(m.ID)
	if len(subs) != 0 {
		t.Errorf("expected 0 subscriptions, got %d", len(subs))
	}
}
