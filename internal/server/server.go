package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"starboard/internal/engine"
	"starboard/internal/handler"
	"starboard/internal/middleware"
	"starboard/internal/model"
	"starboard/internal/push"
	"starboard/internal/store"
	ws "starboard/internal/websocket"
)

// Config carries the runtime options the server needs beyond the database.
type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Location        *time.Location
}

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	authH       *handler.AuthHandler
	memberH     *handler.FamilyMemberHandler
	taskH       *handler.TaskHandler
	scheduleH   *handler.ScheduleHandler
	ledgerH     *handler.LedgerHandler
	pushH       *handler.PushHandler
	resolver    *sessionResolver
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

// sessionResolver joins the session and member stores for the auth middleware.
type sessionResolver struct {
	sessions *store.SessionStore
	members  *store.FamilyMemberStore
}

func (r *sessionResolver) Resolve(token string) (*model.Session, *model.FamilyMember, error) {
	sess, err := r.sessions.GetByToken(token)
	if err != nil || sess == nil {
		return nil, nil, err
	}
	member, err := r.members.GetByID(sess.MemberID)
	if err != nil {
		return nil, nil, err
	}
	return sess, member, nil
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	memberStore := store.NewFamilyMemberStore(db)
	sessionStore := store.NewSessionStore(db)
	taskStore := store.NewTaskStore(db)
	scheduleStore := store.NewScheduleStore(db)
	ledgerStore := store.NewLedgerStore(db)
	pushStore := store.NewPushStore(db)

	eng := engine.New(taskStore)
	pushSvc := push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)
	notifier := push.NewNotifier(pushSvc, pushStore, logger)

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	return &Server{
		db:          db,
		hub:         hub,
		authH:       handler.NewAuthHandler(memberStore, sessionStore, logger.With("component", "auth")),
		memberH:     handler.NewFamilyMemberHandler(memberStore, logger.With("component", "family_member")),
		taskH:       handler.NewTaskHandler(taskStore, memberStore, eng, hub, notifier, loc, logger.With("component", "task")),
		scheduleH:   handler.NewScheduleHandler(scheduleStore, taskStore, loc, logger.With("component", "schedule")),
		ledgerH:     handler.NewLedgerHandler(ledgerStore, memberStore, logger.With("component", "ledger")),
		pushH:       handler.NewPushHandler(pushSvc, pushStore, logger.With("component", "push")),
		resolver:    &sessionResolver{sessions: sessionStore, members: memberStore},
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// RateLimiter exposes the limiter for periodic cleanup.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	logMW := middleware.RequestLogger(s.logger.With("component", "http"))

	// Public routes. The member list is open so the login screen can show
	// the family's tiles before anyone is authenticated.
	root := http.NewServeMux()
	root.HandleFunc("GET /health", s.healthHandler)
	root.Handle("GET /api/members", logMW(http.HandlerFunc(s.memberH.List)))
	root.Handle("POST /api/auth/login", s.rateLimited(logMW(http.HandlerFunc(s.authH.Login))))

	protected := http.NewServeMux()
	s.registerProtectedRoutes(protected)

	authMW := middleware.RequireAuth(s.resolver)
	root.Handle("/", authMW(logMW(protected)))
	return root
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimited(h http.Handler) http.Handler {
	return middleware.RateLimit(s.rateLimiter, middleware.RealIP, 10, time.Minute)(h)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	parent := middleware.RequireParent

	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/auth/me", s.authH.Me)

	// Family members
	mux.HandleFunc("GET /api/members/{id}", s.memberH.Get)
	mux.Handle("POST /api/members", parent(http.HandlerFunc(s.memberH.Create)))
	mux.Handle("PUT /api/members/{id}", parent(http.HandlerFunc(s.memberH.Update)))
	mux.Handle("DELETE /api/members/{id}", parent(http.HandlerFunc(s.memberH.Delete)))
	mux.Handle("PUT /api/members/sort", parent(http.HandlerFunc(s.memberH.UpdateSortOrder)))
	mux.Handle("POST /api/members/{id}/pin", parent(http.HandlerFunc(s.memberH.SetPIN)))
	mux.Handle("DELETE /api/members/{id}/pin", parent(http.HandlerFunc(s.memberH.ClearPIN)))

	// Tasks
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.Handle("POST /api/tasks", parent(http.HandlerFunc(s.taskH.Create)))
	mux.Handle("PUT /api/tasks/{id}", parent(http.HandlerFunc(s.taskH.Update)))
	mux.Handle("DELETE /api/tasks/{id}", parent(http.HandlerFunc(s.taskH.Delete)))
	mux.Handle("POST /api/tasks/spawn", parent(http.HandlerFunc(s.taskH.Spawn)))

	// Task transitions. Role checks live in the state machine, which knows
	// which actor may drive which edge.
	mux.HandleFunc("POST /api/tasks/{id}/done", s.taskH.Done)
	mux.HandleFunc("POST /api/tasks/{id}/undo", s.taskH.Undo)
	mux.HandleFunc("POST /api/tasks/{id}/accept", s.taskH.Accept)
	mux.HandleFunc("POST /api/tasks/{id}/unaccept", s.taskH.Unaccept)
	mux.HandleFunc("POST /api/tasks/{id}/pick", s.taskH.Pick)

	// Schedule templates and blocks
	mux.HandleFunc("GET /api/templates", s.scheduleH.ListTemplates)
	mux.Handle("POST /api/templates", parent(http.HandlerFunc(s.scheduleH.CreateTemplate)))
	mux.Handle("PUT /api/templates/{id}", parent(http.HandlerFunc(s.scheduleH.UpdateTemplate)))
	mux.Handle("DELETE /api/templates/{id}", parent(http.HandlerFunc(s.scheduleH.DeleteTemplate)))
	mux.HandleFunc("GET /api/templates/{id}/blocks", s.scheduleH.ListBlocks)
	mux.Handle("POST /api/templates/{id}/blocks", parent(http.HandlerFunc(s.scheduleH.CreateBlock)))
	mux.Handle("PUT /api/blocks/{id}", parent(http.HandlerFunc(s.scheduleH.UpdateBlock)))
	mux.Handle("DELETE /api/blocks/{id}", parent(http.HandlerFunc(s.scheduleH.DeleteBlock)))

	// Day sections
	mux.HandleFunc("GET /api/sections", s.scheduleH.ListSections)
	mux.Handle("PUT /api/sections/{id}", parent(http.HandlerFunc(s.scheduleH.UpdateSection)))

	// Timeline and history views
	mux.HandleFunc("GET /api/members/{id}/day", s.scheduleH.Day)
	mux.HandleFunc("GET /api/members/{id}/stars", s.ledgerH.History)

	// Push notifications
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
