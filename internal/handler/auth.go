package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"starboard/internal/auth"
	"starboard/internal/middleware"
	"starboard/internal/store"
)

const sessionMaxAge = 30 * 24 * 60 * 60

type AuthHandler struct {
	members  *store.FamilyMemberStore
	sessions *store.SessionStore
	logger   *slog.Logger
}

func NewAuthHandler(members *store.FamilyMemberStore, sessions *store.SessionStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{members: members, sessions: sessions, logger: logger}
}

// Login exchanges a member id and PIN for a session cookie. Members without a
// PIN (young children on the shared kiosk) log in with an empty PIN.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID int64  `json:"member_id"`
		PIN      string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	member, err := h.members.GetByID(req.MemberID)
	if err != nil {
		h.logger.Error("login member lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if member == nil {
		writeError(w, http.StatusUnauthorized, "unknown member")
		return
	}

	if member.HasPIN {
		hash, err := h.members.GetPINHash(member.ID)
		if err != nil {
			h.logger.Error("login pin lookup", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.PIN)) != nil {
			writeError(w, http.StatusUnauthorized, "incorrect PIN")
			return
		}
	}

	sess, err := h.sessions.Create(member.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})

	writeJSON(w, http.StatusOK, member)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil && cookie.Value != "" {
		if err := h.sessions.DeleteByToken(cookie.Value); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated member.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	memberID := auth.MemberID(r.Context())
	member, err := h.members.GetByID(memberID)
	if err != nil {
		h.logger.Error("me lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if member == nil {
		writeError(w, http.StatusUnauthorized, "unknown member")
		return
	}
	writeJSON(w, http.StatusOK, member)
}
