package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/api/handlers"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/config"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/database"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/domain"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/hub"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/jobs"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/knowledge"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/llm"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/realtime"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/repository"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/router"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/server"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/service"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/telemetry"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the aigent API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if cfg.SentryDSN != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	knowledgeRepo := repository.NewKnowledgeRepository(pool)
	approvalRepo := repository.NewApprovalRepository(pool)
	tenantRepo := repository.NewTenantRepository(pool)
	apiKeyRepo := repository.NewAPIKeyRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	if cfg.InitTenantName != "" {
		if err := bootstrapInitialTenant(ctx, cfg, tenantRepo, apiKeyRepo); err != nil {
			return fmt.Errorf("failed to bootstrap initial tenant: %w", err)
		}
	}

	tenant, err := resolveServingTenant(ctx, cfg, tenantRepo)
	if err != nil {
		return err
	}
	log.Printf("serving tenant %s (%s) scope=%s", tenant.Name, tenant.ID, tenant.HubScope)

	registry := knowledge.NewRegistry(tenant.ID, knowledgeRepo)
	if err := registry.Reload(ctx); err != nil {
		return fmt.Errorf("failed to load knowledge stores: %w", err)
	}

	knowledgeRouter := router.New(registry.Stores())

	var hubClient service.HubClientInterface
	if cfg.HasHub() {
		hubClient = hub.NewClient(cfg.HubURL, cfg.HubServiceToken)
	} else {
		hubClient = &NoOpHubClient{}
	}

	var completer handlers.Completer
	if cfg.HasOpenAI() {
		completer = llm.NewClient(cfg.OpenAIAPIKey)
	} else {
		completer = &NoOpCompleter{}
	}

	uuidGen := &service.DefaultUUIDGenerator{}

	knowledgeSvc := service.NewKnowledgeService(knowledgeRepo)
	approvalSvc := service.NewApprovalService(txRunner, knowledgeRepo, approvalRepo, hubClient, tenant.HubScope)
	syncSvc := service.NewSyncService(knowledgeRepo, hubClient, tenant.HubScope)
	authSvc := service.NewAuthService(tenantRepo, apiKeyRepo, uuidGen)

	listener := realtime.NewListener(pool, registry)
	go listener.Start(ctx)

	reloadWorker := jobs.NewWorker(jobs.NewReloadProcessor(registry),
		time.Duration(cfg.ReloadIntervalSeconds)*time.Second)
	go reloadWorker.Start(ctx)

	routerCfg := server.RouterConfig{
		AuthValidator:    authSvc,
		KnowledgeHandler: handlers.NewKnowledgeHandler(knowledgeSvc),
		SearchHandler:    handlers.NewSearchHandler(knowledgeRouter),
		ChatHandler:      handlers.NewChatHandler(knowledgeRouter, completer),
		ApprovalHandler:  handlers.NewApprovalHandler(approvalSvc),
		SyncHandler:      handlers.NewSyncHandler(syncSvc, registry),
		AuthHandler:      handlers.NewAuthHandler(authSvc),
	}

	httpRouter := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httpRouter,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	reloadWorker.Stop()
	cancel()
	listener.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func resolveServingTenant(ctx context.Context, cfg *config.Config, tenantRepo *repository.TenantRepository) (*domain.Tenant, error) {
	if cfg.TenantID != "" {
		return tenantRepo.GetByID(ctx, cfg.TenantID)
	}
	if cfg.InitTenantName != "" {
		return tenantRepo.GetByName(ctx, cfg.InitTenantName)
	}

	tenants, err := tenantRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(tenants) == 1 {
		return tenants[0], nil
	}
	return nil, fmt.Errorf("AIGENT_TENANT_ID is required when more than one tenant exists")
}

// NoOpHubClient stands in when the hub connection is not configured.
// Approvals still work locally; publication fails with a clear error.
type NoOpHubClient struct{}

func (c *NoOpHubClient) Upsert(ctx context.Context, doc hub.Doc) (*hub.UpsertResult, error) {
	return nil, domain.NewDomainError(domain.ErrCodeRemoteSync, "hub not configured: AIGENT_HUB_URL required")
}

func (c *NoOpHubClient) FetchActive(ctx context.Context, tenantScope string) ([]hub.Doc, error) {
	return nil, domain.NewDomainError(domain.ErrCodeRemoteSync, "hub not configured: AIGENT_HUB_URL required")
}

// NoOpCompleter stands in when no language model is configured. Queries the
// knowledge stores cannot answer fail instead of falling back.
type NoOpCompleter struct{}

func (c *NoOpCompleter) Complete(ctx context.Context, message string) (string, error) {
	return "", domain.NewDomainError(domain.ErrCodeInvalidOperation, "fallback model not configured: AIGENT_OPENAI_API_KEY required")
}

func bootstrapInitialTenant(ctx context.Context, cfg *config.Config, tenantRepo *repository.TenantRepository, apiKeyRepo *repository.APIKeyRepository) error {
	tenant, err := tenantRepo.GetByName(ctx, cfg.InitTenantName)
	if err != nil && err != domain.ErrTenantNotFound {
		return fmt.Errorf("failed to check existing tenant: %w", err)
	}

	uuidGen := &service.DefaultUUIDGenerator{}
	authSvc := service.NewAuthService(tenantRepo, apiKeyRepo, uuidGen)

	if tenant == nil {
		hubScope := cfg.InitHubScope
		if hubScope == "" {
			hubScope = cfg.InitTenantName
		}
		tenant, err = authSvc.CreateTenant(ctx, cfg.InitTenantName, hubScope)
		if err != nil {
			return fmt.Errorf("failed to create tenant: %w", err)
		}
		log.Printf("bootstrap: created tenant '%s' (id: %s)", tenant.Name, tenant.ID)
	} else {
		log.Printf("bootstrap: tenant '%s' already exists (id: %s)", tenant.Name, tenant.ID)
	}

	if cfg.InitAPIKey != "" {
		if !service.IsValidAPIToken(cfg.InitAPIKey) {
			return fmt.Errorf("invalid AIGENT_INIT_API_KEY format (expected 'ajm_<64 hex chars>')")
		}

		existing, err := authSvc.ValidateAPIKey(ctx, cfg.InitAPIKey)
		if err == nil && existing != nil {
			log.Printf("bootstrap: API key already exists (id: %s)", existing.ID)
			return nil
		}

		if err := authSvc.CreateAPIKeyWithToken(ctx, tenant.ID, "bootstrap", domain.RoleSuperReviewer, cfg.InitAPIKey); err != nil {
			return fmt.Errorf("failed to create API key: %w", err)
		}
		log.Printf("bootstrap: created API key")
	}

	return nil
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
