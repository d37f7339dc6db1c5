package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"
	"github.com/radarfeedback/feedback-backend-go/internal/config"
	appHTTP "github.com/radarfeedback/feedback-backend-go/internal/handler/http"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/database"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/email"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/jwt"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/metrics"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/oauth"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/qrcode"
	"github.com/radarfeedback/feedback-backend-go/internal/repository/postgresql"
	serviceAuth "github.com/radarfeedback/feedback-backend-go/internal/service/auth"
	feedbackService "github.com/radarfeedback/feedback-backend-go/internal/service/feedback"
	invitationService "github.com/radarfeedback/feedback-backend-go/internal/service/invitation"
	taxonomyService "github.com/radarfeedback/feedback-backend-go/internal/service/taxonomy"
)

const appVersion = "v1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger, level := newLogger(cfg.App)
	slog.SetDefault(logger)

	if err := run(cfg, logger, level); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

// newLogger builds a JSON logger whose attribute names follow the ECS schema
// used by the request logger.
func newLogger(app config.AppConfig) (*slog.Logger, slog.Level) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(app.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logFormat := httplog.SchemaECS.Concise(app.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "radar-feedback"),
		slog.String("version", appVersion),
		slog.String("env", app.Env),
	)
	return logger, level
}

func run(cfg *config.Config, logger *slog.Logger, level slog.Level) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.Migrate {
		if err := postgresql.ApplyMigrations(ctx, cfg.DatabaseURL()); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	userRepo := postgresql.NewUserRepository(db)
	JWTRepository := postgresql.NewJWTRepository(db)
	invitationRepo := postgresql.NewInvitationRepository(db)
	feedbackRepo := postgresql.NewFeedbackRepository(db)
	taxonomyRepo := postgresql.NewTaxonomyRepository(db)

	secureCookie := cfg.App.Env == "production"
	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration, secureCookie)
	if err != nil {
		return fmt.Errorf("init jwt service: %w", err)
	}

	var GoogleService oauth.GoogleService
	if cfg.OAuth2Google.Enabled() {
		GoogleService = oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)
	}

	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("init email service: %w", err)
	}
	m := metrics.New()

	authService := serviceAuth.NewAuthService(db, userRepo, JWTService, JWTRepository)
	taxonomySvc := taxonomyService.NewTaxonomyService(db, taxonomyRepo, taxonomyService.CacheOptions{
		Size: cfg.Taxonomy.CacheMax,
		TTL:  cfg.Taxonomy.CacheTTL,
	})
	invitationSvc := invitationService.NewInvitationService(
		invitationRepo,
		userRepo,
		qrcode.NewRenderer(cfg.Invitation.QRSize),
		emailService,
		m,
		cfg.InviteURL,
	)
	feedbackSvc := feedbackService.NewFeedbackService(db, feedbackRepo, invitationRepo, taxonomyRepo, m)

	if cfg.Taxonomy.Seed {
		if _, err := taxonomySvc.Seed(ctx); err != nil {
			return fmt.Errorf("seed taxonomy: %w", err)
		}
	}

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			AllowedOrigins: cfg.App.CORSAllowedOrigins,
			Logger:         logger,
			LogLevel:       level,
		},
		JWTService,
		m,
		appHTTP.Handlers{
			Auth:       appHTTP.NewAuthHandler(JWTService, authService, GoogleService, secureCookie),
			Invitation: appHTTP.NewInvitationHandler(invitationSvc),
			Feedback:   appHTTP.NewFeedbackHandler(feedbackSvc),
			Taxonomy:   appHTTP.NewTaxonomyHandler(taxonomySvc),
		},
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
