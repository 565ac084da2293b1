package auth

import (
	"context"
	"testing"

	"starboard/internal/model"
)

func TestWithAuthAndFromContext(t *testing.T) {
	ac := AuthContext{
		MemberID:  1,
		Role:      model.RoleParent,
		SessionID: 3,
	}

	ctx := WithAuth(context.Background(), ac)
	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected AuthContext in context")
	}
	if got.MemberID != 1 {
		t.Errorf("MemberID = %d, want 1", got.MemberID)
	}
	if got.Role != model.RoleParent {
		t.Errorf("Role = %q, want parent", got.Role)
	}
	if got.SessionID != 3 {
		t.Errorf("SessionID = %d, want 3", got.SessionID)
	}
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	if ok {
		t.Error("expected false for missing AuthContext")
	}
}

func TestMemberID(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{MemberID: 7})
	if MemberID(ctx) != 7 {
		t.Errorf("MemberID = %d, want 7", MemberID(ctx))
	}
}

func TestMemberIDMissing(t *testing.T) {
	if MemberID(context.Background()) != 0 {
		t.Error("expected 0 for missing context")
	}
}

func TestIsParent(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{Role: model.RoleParent})
	if !IsParent(ctx) {
		t.Error("expected IsParent = true for parent role")
	}
}

func TestIsParentChild(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{Role: model.RoleChild})
	if IsParent(ctx) {
		t.Error("expected IsParent = false for child role")
	}
}

func TestIsParentMissing(t *testing.T) {
	if IsParent(context.Background()) {
		t.Error("expected IsParent = false for missing context")
	}
}
