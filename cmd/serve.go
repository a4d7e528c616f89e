package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"siddhaka-portal/internal/data/repository"
	"siddhaka-portal/internal/wire"
	"siddhaka-portal/pkg/database"
	"siddhaka-portal/pkg/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the portal HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	config, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
		zap.String("backend", config.Backend.BaseURL),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sealer, err := utils.NewSealer(config.Credential.Secret)
	if err != nil {
		return fmt.Errorf("CREDENTIAL_SECRET: %w", err)
	}

	// Initialize credential store
	repos, closeStore, err := openCredentialStore(ctx, config, sealer, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// Wire all dependencies
	app := wire.Wiring(repos, config, logger)

	go app.Sessions.Run(ctx)

	// Start server
	return APIServer(ctx, app.Router, config.App.Port, logger)
}

// openCredentialStore connects the configured credential backend.
func openCredentialStore(ctx context.Context, config *utils.Config, sealer *utils.Sealer, logger *zap.Logger) (*repository.Repository, func(), error) {
	switch config.Credential.Store {
	case utils.CredentialStoreRedis:
		rdb, err := database.InitRedis(config.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		logger.Info("Redis connected successfully", zap.String("addr", config.Redis.Addr))
		closeFn := func() { rdb.Close() }
		return repository.NewRedisRepository(rdb, sealer, config.Session.CredentialTTL, logger), closeFn, nil

	default:
		db, err := database.InitDB(config.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		if err := repository.EnsureCredentialSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("Database connected successfully")
		return repository.NewRepository(db, sealer, logger), db.Close, nil
	}
}
