package spawn

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"starboard/internal/store"
)

// Scheduler materializes repeating tasks shortly after midnight and sweeps
// expired sessions hourly.
type Scheduler struct {
	cron     *cron.Cron
	tasks    *store.TaskStore
	sessions *store.SessionStore
	logger   *slog.Logger
	loc      *time.Location
}

func NewScheduler(tasks *store.TaskStore, sessions *store.SessionStore, loc *time.Location, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		tasks:    tasks,
		sessions: sessions,
		logger:   logger.With("component", "spawn"),
		loc:      loc,
	}
}

// Start registers the jobs and begins the cron loop. It also runs an
// immediate spawn for today, so a server that was down at midnight catches up
// on boot.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("5 0 * * *", s.spawnToday); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 * * * *", s.sweepSessions); err != nil {
		return err
	}
	s.cron.Start()

	go s.spawnToday()
	return nil
}

// Stop halts the cron loop and waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) spawnToday() {
	date := time.Now().In(s.loc).Format("2006-01-02")
	created, err := s.tasks.SpawnForDate(date)
	if err != nil {
		s.logger.Error("spawn repeating tasks", "date", date, "error", err)
		return
	}
	if created > 0 {
		s.logger.Info("spawned repeating tasks", "date", date, "created", created)
	}
}

func (s *Scheduler) sweepSessions() {
	count, err := s.sessions.DeleteExpired()
	if err != nil {
		s.logger.Error("sweep expired sessions", "error", err)
		return
	}
	if count > 0 {
		s.logger.Info("swept expired sessions", "count", count)
	}
}
