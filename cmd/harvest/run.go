package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/harvest/config"
	"github.com/use-agent/harvest/dataset"
	"github.com/use-agent/harvest/harvest"
	"github.com/use-agent/harvest/models"
	"github.com/use-agent/harvest/report"
	"github.com/use-agent/harvest/scraper"
	"github.com/use-agent/harvest/webhook"
)

// webhookTimeout bounds delivery after the run context may already be gone.
const webhookTimeout = time.Minute

func newRunCmd(cfg *config.Config) *cobra.Command {
	var reportFile string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Launch a browser and download every combination",
		Long: `Run loads the research page in a headless browser, finds every section
with dropdown filters, and triggers the CSV export for every combination of
their options. Files land in --output-dir. Interrupting the run keeps what
was downloaded so far and still prints the report.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHarvest(cmd, cfg, reportFile)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.Harvest.URL, "url", cfg.Harvest.URL, "research page to harvest")
	f.StringVarP(&cfg.Harvest.OutputDir, "output-dir", "o", cfg.Harvest.OutputDir, "download directory")
	f.BoolVar(&cfg.Browser.Headless, "headless", cfg.Browser.Headless, "run the browser headless")
	f.IntVar(&cfg.Harvest.MaxCombinations, "max-combinations", cfg.Harvest.MaxCombinations, "cap combinations per section (0 = all)")
	f.DurationVar(&cfg.Harvest.DownloadTimeout, "download-timeout", cfg.Harvest.DownloadTimeout, "wait per combination for a new file")
	f.StringVar(&reportFile, "report-file", "", "also write the run report as JSON to this path")
	return cmd
}

func runHarvest(cmd *cobra.Command, cfg *config.Config, reportFile string) error {
	if err := requireURL(cfg.Harvest.URL); err != nil {
		return err
	}
	ctx := cmd.Context()
	log := slog.Default()

	session, err := scraper.Open(ctx, cfg.Browser, cfg.Harvest, log)
	if err != nil {
		return err
	}
	defer session.Close()

	hcfg := cfg.Harvest
	hcfg.OutputDir = session.DownloadDir()
	ledger := harvest.NewLedger(harvest.DirLister(hcfg.OutputDir), hcfg.PartialSuffixes)

	r := harvest.New(session.Page(), ledger, hcfg, harvest.WithLogger(log)).Run(ctx)

	report.WriteRun(cmd.OutOrStdout(), r)
	warnDuplicates(log, hcfg.OutputDir, r.Artifacts)

	if reportFile != "" {
		if err := writeReportFile(reportFile, r); err != nil {
			log.Error("writing report file failed", "path", reportFile, "error", err)
		}
	}
	if cfg.Webhook.URL != "" {
		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), webhookTimeout)
		defer cancel()
		_ = webhook.NewNotifier(cfg.Webhook.URL, cfg.Webhook.Secret, log).Send(notifyCtx, webhook.NewRunCompleted(r))
	}
	return nil
}

// warnDuplicates flags downloads with near-identical contents, which
// usually means a filter had no effect on the export.
func warnDuplicates(log *slog.Logger, dir string, artifacts []string) {
	groups := dataset.NewStore(dir).Duplicates(artifacts, dataset.DefaultDuplicateThreshold)
	for _, g := range groups {
		log.Warn("downloads have near-identical contents", "files", g)
	}
}

func writeReportFile(path string, r *models.RunReport) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
