package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/oauth2"

	"github.com/recipic-shop/recipic/internal/auth/domain"
	httpapi "github.com/recipic-shop/recipic/internal/auth/http"
	"github.com/recipic-shop/recipic/internal/auth/mail"
	"github.com/recipic-shop/recipic/internal/auth/service"
	"github.com/recipic-shop/recipic/internal/auth/store"
	"github.com/recipic-shop/recipic/internal/auth/store/drivers/sqlite"
	"github.com/recipic-shop/recipic/pkg/cryptox"
	"github.com/recipic-shop/recipic/pkg/jwtx"
	"github.com/recipic-shop/recipic/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	signer jwtx.Signer
	keys   *jwtx.KeySet

	tokenService        *service.TokenService
	authService         *service.AuthService
	socialService       *service.SocialLoginService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	signer, keys, err := InitAuthKeys(app.cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT keys: %w", err)
	}
	app.signer = signer
	app.keys = keys

	if err := app.initServices(); err != nil {
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	app.tokenService = &service.TokenService{
		Signer:              app.signer,
		Verifier:            jwtx.NewVerifierEdDSA(app.keys, app.cfg.Issuer),
		Store:               app.db,
		Issuer:              app.cfg.Issuer,
		AccessTTL:           app.cfg.AccessTTL,
		RefreshTTL:          app.cfg.RefreshTTL,
		AutoLoginRefreshTTL: app.cfg.AutoLoginRefreshTTL,
	}

	mailer, err := app.buildMailer()
	if err != nil {
		return err
	}

	app.authService = &service.AuthService{
		Store:  app.db,
		Tokens: app.tokenService,
		Authn:  &service.Authenticator{Store: app.db},
		Mailer: mailer,
	}

	app.socialService = &service.SocialLoginService{
		Store:     app.db,
		Tokens:    app.tokenService,
		Providers: app.buildSocialProviders(),
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)

	return nil
}

func (app *Application) buildMailer() (mail.Mailer, error) {
	if app.cfg.SMTPHost == "" {
		app.logger.Warn("no SMTP relay configured, activation links will be logged instead of mailed")
		return &mail.LogMailer{FrontendURL: app.cfg.FrontendURL}, nil
	}

	mailer, err := mail.NewSMTPMailer(mail.SMTPConfig{
		Host:        app.cfg.SMTPHost,
		Port:        app.cfg.SMTPPort,
		Username:    app.cfg.SMTPUsername,
		Password:    app.cfg.SMTPPassword,
		From:        app.cfg.SMTPFrom,
		FrontendURL: app.cfg.FrontendURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}
	return mailer, nil
}

// buildSocialProviders registers every provider with configured client
// credentials. Attribute paths follow each provider's userinfo document
// shape.
func (app *Application) buildSocialProviders() map[string]*service.SocialProvider {
	providers := make(map[string]*service.SocialProvider)
	redirect := func(name string) string {
		return app.cfg.OAuth2RedirectBase + "/login/oauth2/code/" + name
	}

	if app.cfg.Kakao.ClientID != "" {
		providers[domain.ProviderKakao] = &service.SocialProvider{
			Name: domain.ProviderKakao,
			Config: &oauth2.Config{
				ClientID:     app.cfg.Kakao.ClientID,
				ClientSecret: app.cfg.Kakao.ClientSecret,
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://kauth.kakao.com/oauth/authorize",
					TokenURL: "https://kauth.kakao.com/oauth/token",
				},
				RedirectURL: redirect(domain.ProviderKakao),
				Scopes:      []string{"account_email", "profile_nickname", "profile_image"},
			},
			UserInfoURL:   "https://kapi.kakao.com/v2/user/me",
			IDField:       "id",
			EmailField:    "kakao_account.email",
			NicknameField: "kakao_account.profile.nickname",
			PhotoField:    "kakao_account.profile.profile_image_url",
		}
	}

	if app.cfg.Google.ClientID != "" {
		providers[domain.ProviderGoogle] = &service.SocialProvider{
			Name: domain.ProviderGoogle,
			Config: &oauth2.Config{
				ClientID:     app.cfg.Google.ClientID,
				ClientSecret: app.cfg.Google.ClientSecret,
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://accounts.google.com/o/oauth2/auth",
					TokenURL: "https://oauth2.googleapis.com/token",
				},
				RedirectURL: redirect(domain.ProviderGoogle),
				Scopes:      []string{"openid", "email", "profile"},
			},
			UserInfoURL:   "https://www.googleapis.com/oauth2/v3/userinfo",
			IDField:       "sub",
			EmailField:    "email",
			NicknameField: "name",
			PhotoField:    "picture",
		}
	}

	if app.cfg.Naver.ClientID != "" {
		providers[domain.ProviderNaver] = &service.SocialProvider{
			Name: domain.ProviderNaver,
			Config: &oauth2.Config{
				ClientID:     app.cfg.Naver.ClientID,
				ClientSecret: app.cfg.Naver.ClientSecret,
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://nid.naver.com/oauth2.0/authorize",
					TokenURL: "https://nid.naver.com/oauth2.0/token",
				},
				RedirectURL: redirect(domain.ProviderNaver),
			},
			UserInfoURL:   "https://openapi.naver.com/v1/nid/me",
			IDField:       "response.id",
			EmailField:    "response.email",
			NicknameField: "response.nickname",
			PhotoField:    "response.profile_image",
		}
	}

	if len(providers) == 0 {
		app.logger.Info("no social login providers configured")
	}

	return providers
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys,
		app.tokenService.Verifier,
		app.cfg.Issuer,
		BuildVersion,
		app.cfg.CORSOrigins,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.AuthService = app.authService
	router.SocialLoginService = app.socialService
	router.SocialSuccessURL = app.cfg.FrontendURL + "/oauth2/redirect"
	router.SocialFailureURL = app.cfg.FrontendURL + "/oauth2/failure"
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
