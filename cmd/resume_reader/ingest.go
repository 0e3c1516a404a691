package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/resume-reader/internal/config"
	"github.com/jonathan/resume-reader/internal/ingest"
	"github.com/jonathan/resume-reader/internal/observability"
	"github.com/spf13/cobra"
)

var (
	ingestWatch      bool
	ingestWorkers    int
	ingestConfigPath string
	ingestDebounce   time.Duration
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <dir>",
	Short: "Upload every résumé under a directory",
	Long:  "Parse and store every .pdf and .docx file under a directory. With --watch, keep running and ingest files as they appear.",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "Keep watching the directory for new files")
	ingestCmd.Flags().IntVar(&ingestWorkers, "workers", ingest.DefaultWorkers, "Number of files processed concurrently")
	ingestCmd.Flags().StringVar(&ingestConfigPath, "config", "", "Path to a JSON config file")
	ingestCmd.Flags().DurationVar(&ingestDebounce, "debounce", 500*time.Millisecond, "Quiet period before a watched file is ingested")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	cfg, err := config.Load(ingestConfigPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	in := ingest.NewIngestor(newService(b, true), ingestWorkers, logger)

	paths, err := ingest.Discover(dir)
	if err != nil {
		return err
	}
	results, err := in.IngestFiles(ctx, paths)
	if err != nil {
		return err
	}
	if verbose {
		observability.NewPrinter(cmd.OutOrStdout()).PrintIngestSummary(outcomes(results))
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), summarize(results))
	}

	if !ingestWatch {
		return nil
	}
	return watchAndIngest(ctx, in, dir)
}

// watchAndIngest ingests files created under dir until ctx ends.
func watchAndIngest(ctx context.Context, in *ingest.Ingestor, dir string) error {
	created, errs, err := ingest.Watch(ctx, ingest.WatchConfig{
		Roots:    []string{dir},
		Debounce: ingestDebounce,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go func() {
		for err := range errs {
			logger.Warn("ingest.watch.error", "error", err)
		}
	}()

	logger.Info("ingest.watch.start", "dir", dir)
	err = in.Run(ctx, created, nil)
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func summarize(results []ingest.Result) string {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	return fmt.Sprintf("ingested %d of %d files (%d failed)", len(results)-failed, len(results), failed)
}

func outcomes(results []ingest.Result) []observability.IngestOutcome {
	out := make([]observability.IngestOutcome, 0, len(results))
	for _, r := range results {
		o := observability.IngestOutcome{Path: r.Path, Err: r.Err}
		if r.Record != nil {
			o.Name = r.Record.Name
		}
		out = append(out, o)
	}
	return out
}
