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

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/cobalt/internal/config"
	"github.com/agenthands/cobalt/internal/logging"
	"github.com/agenthands/cobalt/internal/queue"
	"github.com/agenthands/cobalt/internal/server"
	"github.com/agenthands/cobalt/internal/taxonomy"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "cobalt",
		Short:         "Taxonomy-constrained transcript analysis service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.toml", "path to config file")

	root.AddCommand(serveCmd(), workerCmd(), analyzeCmd(), taxonomyCmd(), queueCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// bootstrap loads .env, configuration, and the logger shared by every command.
func bootstrap() (*config.Config, *zap.Logger, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv, err := server.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer srv.Close(context.Background()) //nolint:errcheck

			httpSrv := &http.Server{
				Addr:    cfg.Server.Addr,
				Handler: srv.SetupRouter(),
			}

			errc := make(chan error, 1)
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.Server.Addr))
				errc <- httpSrv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		},
	}
}

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Drain the analysis queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv, err := server.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer srv.Close(context.Background()) //nolint:errcheck

			interval := time.Duration(cfg.Queue.PollIntervalSeconds) * time.Second
			worker := queue.NewWorker(srv.Queue, func(ctx context.Context, videoID string) error {
				_, err := srv.AnalyzeAndPersist(ctx, videoID)
				return err
			}, interval, log)

			log.Info("worker started", zap.Duration("poll_interval", interval))
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <videoID>",
		Short: "Analyze a single video and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv, err := server.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer srv.Close(context.Background()) //nolint:errcheck

			analysis, err := srv.AnalyzeAndPersist(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, analysis)
		},
	}
}

func taxonomyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Inspect stored taxonomy documents",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show [version]",
		Short: "Print the latest (or a specific) taxonomy version",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			ctx := context.Background()
			srv, err := server.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer srv.Close(ctx) //nolint:errcheck

			var doc *taxonomy.Document
			if len(args) == 1 {
				version, err := taxonomy.ParseVersion(args[0])
				if err != nil {
					return err
				}
				doc, err = srv.Taxonomies.GetByVersion(ctx, version)
				if err != nil {
					return err
				}
			} else {
				doc, err = srv.Taxonomies.GetLatest(ctx)
				if err != nil {
					return err
				}
			}
			return printJSON(cmd, doc)
		},
	})
	return cmd
}

func queueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and maintain the analysis queue",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Print queued item counts by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			q, err := queue.Open(cfg.Queue.Path)
			if err != nil {
				return err
			}
			defer q.Close() //nolint:errcheck

			stats, err := q.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, stats)
		},
	})

	var olderThan time.Duration
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete completed items older than the cutoff",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			q, err := queue.Open(cfg.Queue.Path)
			if err != nil {
				return err
			}
			defer q.Close() //nolint:errcheck

			return q.Prune(cmd.Context(), time.Now().Add(-olderThan))
		},
	}
	prune.Flags().DurationVar(&olderThan, "older-than", 7*24*time.Hour, "age cutoff for completed items")
	cmd.AddCommand(prune)

	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
