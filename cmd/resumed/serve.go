package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/resume-builder/internal/auth"
	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/memstore"
	"github.com/jonathan/resume-builder/internal/server"
	"github.com/jonathan/resume-builder/internal/server/ratelimit"
	"github.com/spf13/cobra"
)

var (
	servePort       int
	serveStore      string
	serveConfigPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for resume sections,
named resume snapshots and Google sign-in.

Settings come from flags, then environment variables, then the optional
--config file, then built-in defaults.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default 8080)")
	serveCmd.Flags().StringVar(&serveStore, "store", "", "Store backend: postgres or memory (default postgres)")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to a YAML or JSON config file")
	rootCmd.AddCommand(serveCmd)
}

// resolveConfig layers flags over env over the config file over defaults.
func resolveConfig() (config.Config, error) {
	base := config.Defaults()
	if serveConfigPath != "" {
		fileCfg, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		base = fileCfg.MergeWithDefaults(base)
	}

	envCfg := config.FromEnv()
	cfg := envCfg.MergeWithDefaults(base)

	flagCfg := config.Config{Port: servePort, Store: serveStore}
	cfg = flagCfg.MergeWithDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg config.Config) (server.Store, error) {
	if cfg.Store == config.StoreMemory {
		log.Println("[store] using in-memory store; data is lost on exit")
		return memstore.New(), nil
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	applied, err := database.Migrate(ctx)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	for _, name := range applied {
		log.Printf("[store] applied migration %s", name)
	}
	return database, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	verifier, err := auth.NewGoogleVerifier(ctx, cfg.GoogleClientID)
	if err != nil {
		return fmt.Errorf("failed to create Google verifier: %w", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Port:               cfg.Port,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}, server.Deps{
		Store:     store,
		Verifier:  verifier,
		JWT:       jwtConfig,
		RateLimit: ratelimit.LoadConfig(),
	})
	if err != nil {
		store.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
