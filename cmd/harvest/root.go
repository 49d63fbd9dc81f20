package main

import (
	"net/url"

	"github.com/spf13/cobra"
	"github.com/use-agent/harvest/api/handler"
	"github.com/use-agent/harvest/config"
	"github.com/use-agent/harvest/models"
)

// newRootCmd builds the command tree. Flags default to the values already
// loaded from the environment and write straight into cfg.
func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "harvest",
		Short:         "Download every filter combination of a research-data page",
		Version:       handler.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initLogger(cmd.ErrOrStderr(), cfg.Log)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level: debug, info, warn, error")
	pf.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "log format: text or json")

	root.AddCommand(
		newRunCmd(cfg),
		newPlanCmd(cfg),
		newServeCmd(cfg),
	)
	return root
}

// requireURL rejects an empty or non-http(s) target before any browser or
// network work starts.
func requireURL(raw string) error {
	if raw == "" {
		return models.NewHarvestError(models.ErrCodeInvalidInput, "--url is required (or set HARVEST_URL)", nil)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return models.NewHarvestError(models.ErrCodeInvalidInput, "url must be an absolute http(s) URL", err)
	}
	return nil
}
