package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"

	adapthttp "timetrack/internal/adapter/http"
	"timetrack/internal/adapter/memory"
	"timetrack/internal/adapter/postgres"
	"timetrack/internal/app"
	"timetrack/internal/config"
	"timetrack/internal/domain"
	"timetrack/internal/logging"

	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	var (
		users    domain.UserRepository
		sessions domain.SessionRepository
		tasks    domain.TaskRepository
		logs     domain.TimeLogRepository
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db open: %v", err)
		}
		defer func() { _ = db.Close() }()
		users, tasks, logs = db, db, db
		sessions = postgres.NewSessionRepo(db)
	} else {
		slog.Warn("DATABASE_URL not set, using in-memory store; data is lost on restart")
		db := memory.New()
		users, tasks, logs = db, db, db
		sessions = db.NewSessionRepo()
	}

	clock := clockwork.NewRealClock()
	authSvc := app.NewAuthService(users, sessions, clock)
	taskSvc := app.NewTaskService(tasks, clock)
	timerSvc := app.NewTimerService(tasks, logs, clock)

	var oidcCfg *adapthttp.OIDCConfig
	if cfg.SSOEnabled() {
		oidcCfg, err = adapthttp.NewOIDC(context.Background(), cfg)
		if err != nil {
			log.Fatalf("oidc discovery: %v", err)
		}
	}

	h := adapthttp.New(authSvc, taskSvc, timerSvc, oidcCfg, cfg.WebDir, cfg.Production()).Handler()
	slog.Info("listening", "addr", cfg.Addr, "env", cfg.AppEnv)
	if err := http.ListenAndServe(cfg.Addr, h); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
