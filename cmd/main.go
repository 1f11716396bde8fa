package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/s/learnhub/internal/api"
	"github.com/s/learnhub/internal/config"
	"github.com/s/learnhub/internal/database"
	"github.com/s/learnhub/internal/handlers"
	"github.com/s/learnhub/internal/logger"
	"github.com/s/learnhub/internal/progress"
	"github.com/s/learnhub/internal/server"
	"github.com/s/learnhub/internal/session"
	"github.com/s/learnhub/internal/storage"
)

func main() {
	// ---------------------------
	// 0. Configuration
	// ---------------------------
	conf, err := config.Load()
	if err != nil {
		log.Fatal("config: ", err)
	}

	lg := logger.New(conf.RollbarToken, conf.Env, conf.Build)
	if closer, ok := lg.(interface{ Close() }); ok {
		defer closer.Close()
	}

	// ---------------------------
	// 1. Local storage (optional)
	// ---------------------------
	var journal progress.Journal = progress.NewMemoryJournal()
	var activity storage.ActivityLog = storage.NewMemoryActivityLog()

	if conf.UseDatabase() {
		db, err := database.Connect(conf)
		if err != nil {
			log.Fatal("database: ", err)
		}
		defer func() {
			if err := database.Close(db); err != nil {
				log.Printf("[WARN] close database: %v", err)
			}
		}()

		if err := database.AutoMigrate(db); err != nil {
			log.Fatal("migrate: ", err)
		}
		journal = storage.NewCompletionJournal(db)
		activity = storage.NewDBActivityLog(db)
	} else {
		log.Println("[WARN] DATABASE_URL is not set, progress journal and activity log are kept in memory")
	}

	// ---------------------------
	// 2. Sessions, backend client, handlers
	// ---------------------------
	sessions := session.NewManager([]byte(conf.SessionKey), conf.SessionMaxAge, conf.SessionSecure)
	client := api.New(conf.APIBaseURL, api.WithTimeout(conf.APITimeout))
	h := handlers.NewHandler(conf, client, sessions, journal, activity, lg)

	// ---------------------------
	// 3. Server
	// ---------------------------
	srv := &http.Server{
		Addr:              ":" + conf.Port,
		Handler:           server.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("[INFO] listening on http://localhost:%s (backend %s)", conf.Port, conf.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server: ", err)
		}
	}()

	<-ctx.Done()
	log.Println("[INFO] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", err)
	}
}
