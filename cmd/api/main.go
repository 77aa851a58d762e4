package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"librarycat/internal/catalog"
	"librarycat/internal/config"
	"librarycat/internal/logging"
	"librarycat/internal/platform/googlebooks"
	"librarycat/internal/platform/postgres"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "librarycat",
		Short:         "Library catalog with Google Books fallback",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnvFiles()
		},
	}
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	_ = v.BindPFlag(config.KeyLogLevel, root.PersistentFlags().Lookup("log-level"))
	config.SetDefaults(v)

	serveCmd := newServeCmd(v)
	root.AddCommand(serveCmd, newLookupCmd(v))
	root.RunE = serveCmd.RunE
	root.Flags().AddFlagSet(serveCmd.Flags())
	return root
}

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			log, closer := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
			defer closer.Close()
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
	cmd.Flags().String("addr", "", "listen address")
	_ = v.BindPFlag(config.KeyAddr, cmd.Flags().Lookup("addr"))
	return cmd
}

func serve(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	pool, err := postgres.Open(ctx, cfg.DSN, 2*time.Second)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Info("database connection OK", zap.String("dsn", postgres.RedactDSN(cfg.DSN)))

	if err := postgres.Migrate(ctx, pool, log); err != nil {
		return err
	}

	repo := catalog.NewPostgresRepo(pool, cfg.DBTimeout)
	provider := googlebooks.NewClient(providerConfig(cfg))
	svc := catalog.NewService(repo, provider, log)

	handler, limiter := newRouter(cfg, log, pool, catalog.NewHTTPHandler(svc))
	defer limiter.Close()

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.ProviderTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", cfg.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func providerConfig(cfg config.Config) googlebooks.Config {
	return googlebooks.Config{
		BaseURL:   cfg.ProviderBaseURL,
		APIKey:    cfg.ProviderAPIKey,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.ProviderTimeout,
		RPS:       cfg.ProviderRPS,
	}
}

func newLookupCmd(v *viper.Viper) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "lookup [query]",
		Short: "Query Google Books and print the normalized records",
		Args: func(cmd *cobra.Command, args []string) error {
			if id == "" && len(args) != 1 {
				return errors.New("pass a query or --id")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			client := googlebooks.NewClient(providerConfig(cfg))

			var out any
			if id != "" {
				vol, err := client.LookupByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				out = vol.Record()
			} else {
				vols, err := client.LookupByQuery(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				records := make([]catalog.BookRecord, 0, len(vols))
				for _, vol := range vols {
					records = append(records, vol.Record())
				}
				out = records
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "volume id to fetch instead of searching")
	return cmd
}
