package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/use-agent/harvest/config"
	"github.com/use-agent/harvest/fetch"
	"github.com/use-agent/harvest/harvest"
	"github.com/use-agent/harvest/probe"
	"github.com/use-agent/harvest/report"
)

func newPlanCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show sections and combination counts without a browser",
		Long: `Plan fetches the page over plain HTTP and runs section discovery on the
static HTML. Pages that render their filters with JavaScript will show fewer
sections than a real run finds.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return planHarvest(cmd.Context(), cmd, cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.Harvest.URL, "url", cfg.Harvest.URL, "research page to inspect")
	return cmd
}

func planHarvest(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	if err := requireURL(cfg.Harvest.URL); err != nil {
		return err
	}
	log := slog.Default()

	res, err := fetch.New(cfg.Browser, cfg.Harvest.PageLoadTimeout).Get(ctx, cfg.Harvest.URL)
	if err != nil {
		return err
	}
	log.Info("page fetched", "url", res.URL, "title", res.Title, "bytes", len(res.HTML))
	if res.NeedsBrowser {
		log.Warn("page looks script-rendered; the plan may miss sections")
	}

	page, err := probe.Parse(res.HTML)
	if err != nil {
		return err
	}
	plans, err := harvest.Survey(ctx, page, log)
	if err != nil {
		return err
	}

	report.WritePlan(cmd.OutOrStdout(), cfg.Harvest.URL, plans)
	return nil
}
