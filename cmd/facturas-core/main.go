package main

// @title           Facturas Core API
// @version         1.0
// @description     Connects invoice mailboxes and storage (Gmail, Drive, Outlook, OneDrive) and compares the output of two invoice extraction pipelines.

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Dashboard session token. Format: "Bearer {token}"

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/custodia-labs/facturas-core/docs"
	"github.com/custodia-labs/facturas-core/internal/adapters/driven/auth"
	"github.com/custodia-labs/facturas-core/internal/adapters/driven/connectors"
	"github.com/custodia-labs/facturas-core/internal/adapters/driven/connectors/google"
	"github.com/custodia-labs/facturas-core/internal/adapters/driven/connectors/microsoft"
	"github.com/custodia-labs/facturas-core/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/facturas-core/internal/adapters/driven/redis"
	"github.com/custodia-labs/facturas-core/internal/adapters/driving/http"
	"github.com/custodia-labs/facturas-core/internal/config"
	"github.com/custodia-labs/facturas-core/internal/core/domain"
	"github.com/custodia-labs/facturas-core/internal/core/services"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "facturas-core: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	// Cancelled on SIGINT/SIGTERM for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("facturas-core stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("facturas-core starting", "version", version)

	// ===== PostgreSQL =====
	db, err := postgres.Connect(ctx, postgres.Config{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	logger.Info("postgres connected and migrated")

	cipher, err := postgres.NewTokenCipherFromSecret(cfg.TokenEncryptionKey)
	if err != nil {
		return fmt.Errorf("token cipher: %w", err)
	}

	// ===== Redis (sessions) =====
	redisClient, err := redisadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()
	sessions := redisadapter.NewSessionResolver(redisClient)
	logger.Info("redis connected")

	// ===== Providers =====
	factory, err := registerProviders(cfg, logger)
	if err != nil {
		return err
	}

	// ===== Stores =====
	accountStore := postgres.NewAccountStore(db.DB, cipher)
	facturaStore := postgres.NewFacturaStore(db.DB)
	reviewStore := postgres.NewReviewStore(db.DB)

	// ===== Services =====
	tokenGuard := services.NewTokenGuard(services.TokenGuardConfig{
		ConnectorFactory: factory,
		AccountStore:     accountStore,
		Lookahead:        cfg.RefreshLookahead,
		Logger:           logger,
	})

	oauthService := services.NewOAuthService(services.OAuthServiceConfig{
		ConnectorFactory:    factory,
		AccountStore:        accountStore,
		BaseURL:             cfg.BaseURL,
		DefaultRedirectPath: cfg.DefaultRedirectPath,
		Logger:              logger,
	})

	fileService := services.NewFileAccessService(services.FileAccessServiceConfig{
		Tokens: tokenGuard,
		Lookup: google.NewFileLookup(google.FilesURL, cfg.ProviderTimeout),
		Logger: logger,
	})

	comparisonService := services.NewComparisonService(services.ComparisonServiceConfig{
		FacturaStore: facturaStore,
		CompanyStore: facturaStore,
		ReviewStore:  reviewStore,
		Logger:       logger,
	})

	// ===== HTTP =====
	server := http.NewServer(http.Config{
		Host:                "0.0.0.0",
		Port:                cfg.Port,
		Version:             version,
		DefaultRedirectPath: cfg.DefaultRedirectPath,
		SessionCookieName:   cfg.SessionCookieName,
		CORSOrigins:         cfg.CORSOrigins,
		ShutdownGrace:       cfg.ShutdownGracePeriod,
	}, http.Services{
		OAuth:      oauthService,
		Accounts:   services.NewAccountService(accountStore),
		Files:      fileService,
		Comparison: comparisonService,
		Review:     services.NewReviewService(reviewStore, logger),
		Metrics:    services.NewMetricsService(facturaStore, reviewStore),
	}, http.Infrastructure{
		Sessions: sessions,
		DB:       db,
		Redis:    sessions,
		Logger:   logger,
	})

	return server.Start(ctx)
}

type providerSetup struct {
	prefix    string
	newClient func(connectors.Credentials, ...connectors.Option) (*connectors.Client, error)
}

// registerProviders registers every provider with a configured client id.
func registerProviders(cfg *config.Config, logger *slog.Logger) (*connectors.Factory, error) {
	setups := map[domain.ProviderType]providerSetup{
		domain.ProviderTypeGmail:    {google.GmailSecretPrefix, google.NewGmailClient},
		domain.ProviderTypeDrive:    {google.DriveSecretPrefix, google.NewDriveClient},
		domain.ProviderTypeOutlook:  {microsoft.OutlookSecretPrefix, microsoft.NewOutlookClient},
		domain.ProviderTypeOneDrive: {microsoft.OneDriveSecretPrefix, microsoft.NewOneDriveClient},
	}

	factory := connectors.NewFactory()
	for _, provider := range domain.CoreProviders() {
		setup := setups[provider]

		enabled, err := cfg.Secrets.ProviderEnabled(setup.prefix)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", provider, err)
		}
		if !enabled {
			logger.Info("provider not configured, skipping", "provider", provider)
			continue
		}

		creds, err := connectors.CredentialsFromSecrets(cfg.Secrets, setup.prefix)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", provider, err)
		}
		client, err := setup.newClient(creds, connectors.WithTimeout(cfg.ProviderTimeout))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", provider, err)
		}
		state, err := auth.NewStateTokenFromSecrets(cfg.Secrets, config.StateSecretKey(setup.prefix))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", provider, err)
		}

		factory.Register(client, state)
		logger.Info("provider registered",
			"provider", provider,
			"callback", services.CallbackURI(cfg.BaseURL, provider))
	}

	return factory, nil
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
