package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/Dias221467/MemoMe/internal/config"
	"github.com/Dias221467/MemoMe/internal/database"
	"github.com/Dias221467/MemoMe/internal/handlers"
	"github.com/Dias221467/MemoMe/internal/identity"
	"github.com/Dias221467/MemoMe/internal/jobs"
	"github.com/Dias221467/MemoMe/internal/realtime"
	"github.com/Dias221467/MemoMe/internal/repository"
	cron "github.com/Dias221467/MemoMe/internal/scheduler"
	"github.com/Dias221467/MemoMe/internal/services"
	"github.com/Dias221467/MemoMe/internal/session"
	"github.com/Dias221467/MemoMe/pkg/email"
	"github.com/Dias221467/MemoMe/pkg/logger"
)

func main() {
	// Load configuration from .env file and environment
	cfg := config.LoadConfig()

	logger.InitLogger(cfg.LogLevel)
	logger.Log.Info("Logger initialized")

	st, err := database.OpenStore(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("Storage initialization error")
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(st)
	credentialRepo := repository.NewCredentialRepository(st)
	noteRepo := repository.NewNoteRepository(st)
	careRepo := repository.NewCareRepository(st)
	reminderRepo := repository.NewReminderRepository(st)

	// --- Identity and sessions ---
	verifier := identity.NewVerifier(cfg.JWTSecret)
	credentials := identity.NewCredentialService(credentialRepo, cfg.JWTSecret, cfg.TokenExpiry)
	resolver := session.NewResolver(userRepo, cfg.AdminEmail)

	// --- Reminder delivery: live clients, then email, then the log ---
	hub := realtime.NewHub()
	chain := jobs.Chain{hub}
	if cfg.EmailEnabled() {
		chain = append(chain, jobs.EmailNotifier{
			Mailer: email.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPSender, cfg.SMTPPassword),
		})
	}
	chain = append(chain, jobs.LogNotifier{})
	reminderScheduler := jobs.NewReminderScheduler(chain, cfg.Timezone)

	recovery := &jobs.Recovery{Users: userRepo, Reminders: reminderRepo, Scheduler: reminderScheduler}
	recoveryCtx, cancelRecovery := context.WithTimeout(context.Background(), time.Minute)
	stopSweep, err := cron.StartReminderRecovery(recoveryCtx, cfg.ReminderRecovery, cfg.ReminderSweepSpec, recovery)
	cancelRecovery()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to start reminder sweep")
	}

	// --- Services ---
	userService := services.NewUserService(userRepo, noteRepo, careRepo)
	noteService := services.NewNoteService(noteRepo)
	careService := services.NewCareService(careRepo)
	reminderService := services.NewReminderService(reminderRepo, reminderScheduler)
	adminService := services.NewAdminService(userRepo, noteRepo, careRepo, cfg.AdminStatsConcurrency)

	// --- Handlers ---
	router := handlers.NewRouter(handlers.Handlers{
		Auth:     handlers.NewAuthHandler(credentials),
		User:     handlers.NewUserHandler(userService),
		Note:     handlers.NewNoteHandler(noteService),
		Care:     handlers.NewCareHandler(careService, cfg.Timezone),
		Reminder: handlers.NewReminderHandler(reminderService),
		Admin:    handlers.NewAdminHandler(adminService),
		Live: handlers.NewLiveHandler(verifier, resolver, repository.Feeds{
			Notes:     noteRepo,
			Care:      careRepo,
			Reminders: reminderRepo,
		}, hub, cfg.AllowedOrigins),
	}, verifier, resolver)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.WithField("port", cfg.Port).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("HTTP shutdown failed")
	}
	stopSweep()
	reminderScheduler.Stop()
	if err := st.Close(ctx); err != nil {
		logger.Log.WithError(err).Error("Failed to close store")
	}
}
