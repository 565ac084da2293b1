package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"starboard/internal/model"
	"starboard/internal/store"
)

type LedgerHandler struct {
	ledger  *store.LedgerStore
	members *store.FamilyMemberStore
	logger  *slog.Logger
}

func NewLedgerHandler(ledger *store.LedgerStore, members *store.FamilyMemberStore, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, members: members, logger: logger}
}

// History returns a member's star balance alongside their recent grants.
func (h *LedgerHandler) History(w http.ResponseWriter, r *http.Request) {
	memberID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	member, err := h.members.GetByID(memberID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get family member")
		return
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "family member not found")
		return
	}

	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	entries, err := h.ledger.ListByMember(memberID, limit)
	if err != nil {
		h.logger.Error("list ledger", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list star history")
		return
	}
	if entries == nil {
		entries = []model.StarLedgerEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"member_id":    member.ID,
		"star_balance": member.StarBalance,
		"entries":      entries,
	})
}
