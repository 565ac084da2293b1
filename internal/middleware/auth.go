package middleware

import (
	"net/http"

	"starboard/internal/auth"
	"starboard/internal/model"
)

// SessionCookie is the name of the session token cookie.
const SessionCookie = "starboard_session"

// SessionResolver looks up the member behind a session token. Implemented by
// the session and family member stores together; kept as an interface so the
// middleware tests don't need a database.
type SessionResolver interface {
	Resolve(token string) (*model.Session, *model.FamilyMember, error)
}

// RequireAuth returns middleware that resolves the session cookie and places
// an AuthContext on the request. Requests without a valid session get 401.
func RequireAuth(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			sess, member, err := resolver.Resolve(cookie.Value)
			if err != nil {
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			if sess == nil || member == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := auth.WithAuth(r.Context(), auth.AuthContext{
				MemberID:  member.ID,
				Role:      member.Role,
				SessionID: sess.ID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireParent returns middleware that rejects non-parent members. It must
// run inside RequireAuth.
func RequireParent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsParent(r.Context()) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
