package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shanehull/filinglens/internal/config"
	"github.com/shanehull/filinglens/internal/export"
	"github.com/shanehull/filinglens/internal/logger"
	"github.com/shanehull/filinglens/internal/notify"
	"github.com/shanehull/filinglens/internal/pipeline"
	"github.com/shanehull/filinglens/internal/server"
	"github.com/shanehull/filinglens/internal/telemetry"
	"github.com/shanehull/filinglens/internal/types"
)

var configPath string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "filinglens",
		Short:         "Cross-year keyword, sentiment and relation analysis of annual filings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "filinglens.yaml", "path to YAML config (optional)")

	root.AddCommand(newAnalyzeCmd(), newServeCmd(), newCorpusCmd())
	return root
}

// setup loads config, installs logging and tracing, and builds the app.
func setup(ctx context.Context) (*app, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	log, closeLog, err := logger.Setup(logger.Config{
		Level:    cfg.Logging.Level,
		Output:   cfg.Logging.Output,
		FilePath: cfg.Logging.FilePath,
	})
	if err != nil {
		return nil, nil, err
	}

	shutdownTracing, err := telemetry.SetupTracing(cfg.Telemetry.Tracing, os.Stderr)
	if err != nil {
		closeLog()
		return nil, nil, err
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		_ = shutdownTracing(ctx)
		closeLog()
		return nil, nil, err
	}

	cleanup := func() {
		a.Close()
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("failed to flush traces", "error", err)
		}
		_ = closeLog()
	}
	return a, cleanup, nil
}

func newAnalyzeCmd() *cobra.Command {
	var (
		year      int
		asJSON    bool
		xlsxPath  string
		sendEmail bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <entity>",
		Short: "Analyse all retrieved annual filings of an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := setup(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			analysis, err := a.analyzer.Analyze(ctx, args[0], pipeline.Options{Year: types.FiscalYear(year)})
			if err != nil {
				return err
			}

			if a.store != nil {
				if err := a.store.SaveAnalysis(ctx, analysis); err != nil {
					a.logger.Warn("failed to persist analysis", "run_id", analysis.RunID, "error", err)
				}
			}

			if xlsxPath != "" {
				if err := writeWorkbookFile(xlsxPath, analysis); err != nil {
					return err
				}
			}

			if sendEmail {
				if a.email == nil {
					return fmt.Errorf("--email requires SMTP host, port, sender and recipient to be configured")
				}
				msg, err := notify.NewHTMLEmailRenderer().Render(analysis)
				if err != nil {
					return err
				}
				if err := a.email.Send(msg); err != nil {
					return err
				}
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(analysis)
			}
			notify.ReportAnalysis(cmd.OutOrStdout(), analysis)
			return nil
		},
	}

	cmd.Flags().IntVarP(&year, "year", "y", 0, "fiscal year for keywords and relation graph (default: earliest annotated)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the analysis as JSON")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write the analysis to this .xlsx file")
	cmd.Flags().BoolVar(&sendEmail, "email", false, "email the analysis using the SMTP config")
	return cmd
}

func writeWorkbookFile(path string, analysis *types.Analysis) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := export.WriteWorkbook(f, analysis); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, cleanup, err := setup(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var saver server.Saver
			if a.store != nil {
				saver = a.store
			}
			srv := server.New(server.Config{
				Addr:            a.cfg.Server.Addr,
				ReadTimeout:     a.cfg.Server.ReadTimeout,
				WriteTimeout:    a.cfg.Server.WriteTimeout,
				ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
			}, a.analyzer, saver, a.metrics.Handler(), a.logger)
			return srv.Run(ctx)
		},
	}
}

func newCorpusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "corpus <entity>",
		Short: "Build and summarise the cleaned corpus without annotating it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := setup(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			corpus, report, err := a.builder.Build(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d documents resolved, %d processed, %d skipped\n",
				args[0], report.Resolved, report.Processed, len(report.Skipped))
			for _, e := range corpus.Entries() {
				fmt.Fprintf(out, "\t%d  %d chars\n", int(e.Year), len(e.Text))
			}
			for _, s := range report.Skipped {
				fmt.Fprintf(out, "\tskipped %s [%s]\n", s.Name, s.Kind)
			}
			if corpus.Len() == 0 {
				slog.WarnContext(ctx, "no documents could be processed", "entity", args[0])
			}
			return nil
		},
	}
}
