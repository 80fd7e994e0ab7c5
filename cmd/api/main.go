package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/talentpoint-hq/candidate-profile-api/internal/adapters/httpapi"
	"github.com/talentpoint-hq/candidate-profile-api/internal/adapters/idp"
	memidempotency "github.com/talentpoint-hq/candidate-profile-api/internal/adapters/memory/idempotency"
	memidentity "github.com/talentpoint-hq/candidate-profile-api/internal/adapters/memory/identity"
	memnotifier "github.com/talentpoint-hq/candidate-profile-api/internal/adapters/memory/notifier"
	memprofilerepo "github.com/talentpoint-hq/candidate-profile-api/internal/adapters/memory/profilerepo"
	memresumerepo "github.com/talentpoint-hq/candidate-profile-api/internal/adapters/memory/resumerepo"
	memworkstatusrepo "github.com/talentpoint-hq/candidate-profile-api/internal/adapters/memory/workstatusrepo"
	postgres "github.com/talentpoint-hq/candidate-profile-api/internal/adapters/postgres"
	pgidempotency "github.com/talentpoint-hq/candidate-profile-api/internal/adapters/postgres/idempotency"
	pgprofilerepo "github.com/talentpoint-hq/candidate-profile-api/internal/adapters/postgres/profilerepo"
	pgresumerepo "github.com/talentpoint-hq/candidate-profile-api/internal/adapters/postgres/resumerepo"
	pgworkstatusrepo "github.com/talentpoint-hq/candidate-profile-api/internal/adapters/postgres/workstatusrepo"
	"github.com/talentpoint-hq/candidate-profile-api/internal/adapters/webhook"
	"github.com/talentpoint-hq/candidate-profile-api/internal/app/profiles"
	"github.com/talentpoint-hq/candidate-profile-api/internal/platform/auth/tokenverifier"
	platformclock "github.com/talentpoint-hq/candidate-profile-api/internal/platform/clock"
	"github.com/talentpoint-hq/candidate-profile-api/internal/platform/config"
	"github.com/talentpoint-hq/candidate-profile-api/internal/platform/logging"
	identityport "github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/identity"
	idempotencyport "github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/idempotency"
	notifierport "github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/notifier"
	profilerepoport "github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/profilerepo"
	resumerepoport "github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/resumerepo"
	workstatusrepoport "github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/workstatusrepo"
)

func main() {
	cfg, err := config.LoadServerConfigFromEnv()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := logging.New(cfg.Environment)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Auth:
	// - Production: jwt mode enforces bearer auth against the IdP's tokens
	// - Local dev: AUTH_MODE=dev resolves the subject from X-Debug-Subject
	authCfg, err := config.LoadAuthConfigFromEnv()
	if err != nil {
		logger.Fatal("invalid auth config", zap.Error(err))
	}
	var authMW func(http.Handler) http.Handler
	authIssuer := "dev"
	switch authCfg.Mode {
	case config.AuthModeDev:
		authMW = httpapi.NewDevAuthMiddleware(authCfg.DevSubject)
	default:
		verifier, err := tokenverifier.New(authCfg)
		if err != nil {
			logger.Fatal("init token verifier", zap.Error(err))
		}
		authMW = httpapi.NewAuthMiddleware(verifier)
		authIssuer = authCfg.Issuer
	}

	clk := platformclock.NewSystemClock()

	var (
		profileRepo    profilerepoport.Repository
		workStatusRepo workstatusrepoport.Repository
		resumeRepo     resumerepoport.Repository
		idemStore      idempotencyport.Store
		cleanup        func()
	)

	switch cfg.StorageBackend {
	case "postgres":
		pool, err := postgres.NewPool(context.Background(), cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			logger.Fatal("connect postgres", zap.Error(err))
		}
		cleanup = pool.Close

		if err := postgres.Migrate(context.Background(), pool); err != nil {
			logger.Fatal("apply migrations", zap.Error(err))
		}

		profileRepo = pgprofilerepo.NewRepo(pool)
		workStatusRepo = pgworkstatusrepo.NewRepo(pool)
		resumeRepo = pgresumerepo.NewRepo(pool)
		idemStore = pgidempotency.NewStore(pool, authIssuer)
	default:
		profileRepo = memprofilerepo.NewRepo()
		workStatusRepo = memworkstatusrepo.NewRepo()
		resumeRepo = memresumerepo.NewRepo()
		idemStore = memidempotency.NewStore()
	}

	if cleanup != nil {
		defer cleanup()
	}

	// Collaborators fall back to in-memory fakes when unconfigured, so local
	// development needs no external services.
	var identityProvider identityport.Provider
	if cfg.IDPAdminURL != "" {
		identityProvider = idp.NewClient(cfg.IDPAdminURL, cfg.IDPServiceKey)
	} else {
		logger.Info("IDP_ADMIN_URL not set; identity metadata sync uses in-memory fake")
		identityProvider = memidentity.NewProvider()
	}
	var completionNotifier notifierport.Notifier
	if cfg.CompletionWebhookURL != "" {
		completionNotifier = webhook.NewNotifier(cfg.CompletionWebhookURL)
	} else {
		logger.Info("COMPLETION_WEBHOOK_URL not set; completion events use in-memory fake")
		completionNotifier = memnotifier.NewNotifier()
	}

	svc := profiles.NewService(profileRepo, workStatusRepo, resumeRepo, identityProvider, completionNotifier, clk, logger)
	if cfg.PropagationTimeout > 0 {
		svc.PropagationTimeout = cfg.PropagationTimeout
	}

	api := httpapi.NewServer(svc, idemStore, clk, logger)
	handler := httpapi.NewRouter(api, authMW)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("api listening",
			zap.String("port", cfg.Port),
			zap.String("storage", cfg.StorageBackend),
			zap.String("authMode", authCfg.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
