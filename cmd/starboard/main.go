package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"starboard/internal/database"
	"starboard/internal/logging"
	"starboard/internal/push"
	"starboard/internal/server"
	"starboard/internal/spawn"
	"starboard/internal/store"
)

func main() {
	logger := logging.Setup(os.Getenv("STARBOARD_LOG_LEVEL"))

	port := os.Getenv("STARBOARD_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("STARBOARD_DB_PATH")
	if dbPath == "" {
		dbPath = "starboard.db"
	}

	loc := time.Local
	if tz := os.Getenv("STARBOARD_TZ"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			logger.Error("invalid STARBOARD_TZ", "tz", tz, "error", err)
			os.Exit(1)
		}
		loc = l
	}

	vapidPublic := os.Getenv("STARBOARD_VAPID_PUBLIC_KEY")
	vapidPrivate := os.Getenv("STARBOARD_VAPID_PRIVATE_KEY")
	if vapidPublic == "" || vapidPrivate == "" {
		pub, priv, err := push.GenerateVAPIDKeys()
		if err != nil {
			logger.Error("generate VAPID keys", "error", err)
			os.Exit(1)
		}
		vapidPublic, vapidPrivate = pub, priv
		// Ephemeral keys invalidate browser subscriptions on restart.
		logger.Warn("generated ephemeral VAPID keys; set STARBOARD_VAPID_PUBLIC_KEY and STARBOARD_VAPID_PRIVATE_KEY to keep push subscriptions across restarts",
			"public_key", vapidPublic)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := server.New(db, server.Config{
		VAPIDPublicKey:  vapidPublic,
		VAPIDPrivateKey: vapidPrivate,
		Location:        loc,
	}, logger)

	scheduler := spawn.NewScheduler(store.NewTaskStore(db), store.NewSessionStore(db), loc, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error("start scheduler", "error", err)
		os.Exit(1)
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			srv.RateLimiter().Cleanup()
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starboard listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
