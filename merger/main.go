package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/juansegiraldo/KeplerNewsletter/internal/config"
	"github.com/juansegiraldo/KeplerNewsletter/internal/logger"
	"github.com/juansegiraldo/KeplerNewsletter/internal/merge"
	"github.com/juansegiraldo/KeplerNewsletter/internal/output"
	"github.com/juansegiraldo/KeplerNewsletter/internal/source"
	"github.com/juansegiraldo/KeplerNewsletter/internal/taxonomy"
)

func main() {
	log := logger.New("merger").With("run_id", uuid.NewString())
	cfg, err := config.LoadMerge()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	inputs, err := parseFlags(os.Args[1:], cfg, os.Stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, log, cfg, inputs); err != nil {
		log.Error("merge failed", slog.Any("err", err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags applies command-line overrides to cfg and returns the explicit
// input files, if any.
func parseFlags(args []string, cfg *config.Merge, stderr io.Writer) ([]string, error) {
	flagSet := pflag.NewFlagSet("merger", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&cfg.OutputPath, "output", "o", cfg.OutputPath, "path of the merged report")
	flagSet.StringVar(&cfg.InputDir, "input-dir", cfg.InputDir, "directory scanned for *.json reports when no files are given")
	flagSet.StringVar(&cfg.TaxonomyPath, "taxonomy", cfg.TaxonomyPath, "YAML file extending the built-in category taxonomy")
	flagSet.BoolVar(&cfg.CleanText, "clean-text", cfg.CleanText, "strip citation artifacts from headlines and summaries")
	flagSet.IntVar(&cfg.LoadWorkers, "workers", cfg.LoadWorkers, "number of input files read concurrently")
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, `Merge weekly digest reports into one deduplicated, clustered report.

Usage:
  merger [flags] [report.json ...]

With no files, every *.json file in --input-dir is merged in name order.

Flags:
%s`, flagSet.FlagUsages())
	}

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return flagSet.Args(), nil
}

func run(ctx context.Context, log *slog.Logger, cfg *config.Merge, inputs []string) error {
	paths := inputs
	if len(paths) == 0 {
		discovered, err := source.Discover(cfg.InputDir, cfg.OutputPath)
		if err != nil {
			return err
		}
		paths = discovered
		log.Info("discovered reports", slog.String("dir", cfg.InputDir), slog.Int("count", len(paths)))
	}

	tax, err := taxonomy.Load(cfg.TaxonomyPath)
	if err != nil {
		return fmt.Errorf("load taxonomy: %w", err)
	}

	docs, err := source.LoadAll(ctx, paths, cfg.LoadWorkers)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		log.Debug("loaded report", slog.String("source", doc.Name), slog.Int("items", doc.ItemCount()))
	}

	report := merge.Build(docs, tax, merge.Options{
		CleanText:        cfg.CleanText,
		KeywordLimit:     cfg.KeywordLimit,
		KeywordMinLength: cfg.KeywordMinLength,
		Logger:           log,
	})

	if err := output.WriteReport(cfg.OutputPath, report); err != nil {
		return err
	}

	log.Info("merged report written",
		slog.String("path", cfg.OutputPath),
		slog.Int("sources", len(docs)),
		slog.Int("items", report.Analytics.Totals.ItemsCombined),
		slog.Int("unique_ids", report.Analytics.Totals.UniqueItemIDs),
		slog.Int("categories", len(report.Clusters.ByNormalizedCategory)),
		slog.Int("jurisdictions", len(report.Clusters.ByJurisdiction)),
		slog.Int("compliance_labels", len(report.Clusters.ByComplianceLabel)),
	)
	return nil
}
