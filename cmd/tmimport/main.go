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

	"github.com/spf13/cobra"
	"github.com/timmy/tmimport/internal/api"
	"github.com/timmy/tmimport/internal/domain"
	"github.com/timmy/tmimport/internal/logger"
	"github.com/timmy/tmimport/internal/source/staging"
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tmimport",
		Short: "Import translated documents into storefront catalogs",
		Long: `tmimport fetches translated documents from the translation provider,
writes them as catalog or library import files and triggers the site import jobs.

Commands:
  serve    Run the callback API and the scheduled queue drain
  run      Import one document synchronously
  enqueue  Queue documents for import
  drain    Process the queue until it is empty
  queue    Inspect or reset the persisted queue`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "Path to config file")

	root.AddCommand(
		newServeCmd(),
		newRunCmd(),
		newEnqueueCmd(),
		newDrainCmd(),
		newQueueCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logger.GetDefault().WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and drain the queue every import.poll_interval",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			sqlDB, err := a.db.DB()
			if err != nil {
				return err
			}
			router := api.SetupRouter(api.Dependencies{
				Queue:  a.manager,
				Runs:   a.runs,
				States: a.states,
				Mapper: a.mapper,
				DB:     sqlDB,
				Logger: a.log,
			}, a.cfg.Server)

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.log.WithFields(logger.Fields{
					"port": a.cfg.Server.Port,
					"mode": a.cfg.Server.Mode,
				}).Info("Starting API server")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			pollDone := make(chan struct{})
			go func() {
				defer close(pollDone)
				pollQueue(ctx, a)
			}()

			select {
			case <-ctx.Done():
			case err := <-errCh:
				return fmt.Errorf("server failed: %w", err)
			}

			a.log.Info("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.log.WithError(err).Warn("Server forced to shutdown")
			}
			<-pollDone
			a.manager.Wait()

			a.log.Info("Server exited")
			return nil
		},
	}
}

// pollQueue drains the queue on every tick until ctx is done.
func pollQueue(ctx context.Context, a *app) {
	interval := a.cfg.Import.PollInterval
	if interval <= 0 {
		return
	}
	ctx = logger.SetComponent(a.log.WithContext(ctx), "poller")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.manager.Drain(ctx); err != nil {
				logger.FromContext(ctx).WithError(err).Error("Scheduled drain failed")
			}
		}
	}
}

func newRunCmd() *cobra.Command {
	var projectID, documentID string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Import one document synchronously, bypassing the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			run, runErr := a.imports.Run(cmd.Context(), domain.ImportRequest{ProjectID: projectID, DocumentID: documentID})
			if err := printJSON(run); err != nil {
				return err
			}
			return runErr
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "Provider project ID")
	cmd.Flags().StringVar(&documentID, "document", "", "Provider document ID")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("document")
	return cmd
}

func newEnqueueCmd() *cobra.Command {
	var projectID, documentID string
	var all bool
	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Queue documents for import without running them",
		Long: `Queue one document, or with --all every staged document of a project
(staging provider only). Queued documents are processed by drain or serve.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			documents := []string{documentID}
			if all {
				adapter, ok := a.source.(*staging.Adapter)
				if !ok {
					return fmt.Errorf("--all requires provider.type staging")
				}
				if documents, err = adapter.ListDocuments(projectID); err != nil {
					return err
				}
			} else if documentID == "" {
				return fmt.Errorf("--document or --all is required")
			}

			requests := make([]domain.ImportRequest, 0, len(documents))
			for _, doc := range documents {
				req := domain.ImportRequest{ProjectID: projectID, DocumentID: doc}
				if err := req.Validate(); err != nil {
					return err
				}
				requests = append(requests, req)
			}

			running := false
			for _, req := range requests {
				if running, err = a.queue.Enqueue(ctx, req); err != nil {
					return err
				}
			}
			return printJSON(map[string]interface{}{
				"queued":     len(documents),
				"run_active": running,
			})
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "Provider project ID")
	cmd.Flags().StringVar(&documentID, "document", "", "Provider document ID")
	cmd.Flags().BoolVar(&all, "all", false, "Queue every staged document of the project")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newDrainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drain",
		Short: "Process queued documents until the queue is empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.manager.Drain(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(map[string]int{"processed": n})
		},
	}
}

func newQueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect or reset the persisted import queue",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show queued documents and the running document",
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newApp(cmd.Context(), configPath)
				if err != nil {
					return err
				}
				defer a.Close()

				rec, err := a.manager.Snapshot(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(rec)
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Release the running slot left behind by a crashed run",
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newApp(cmd.Context(), configPath)
				if err != nil {
					return err
				}
				defer a.Close()

				rec, err := a.manager.Reset(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(rec)
			},
		},
	)
	return cmd
}
