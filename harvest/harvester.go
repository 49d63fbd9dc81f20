package harvest

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/use-agent/harvest/config"
	"github.com/use-agent/harvest/models"
)

// Harvester runs discovery, planning and driving over one loaded page.
type Harvester struct {
	page   Page
	ledger *Ledger
	cfg    config.HarvestConfig
	clock  Clock
	rng    *rand.Rand
	log    *slog.Logger
}

// HarvesterOpt customises a Harvester.
type HarvesterOpt func(*Harvester)

// WithClock replaces the wall clock.
func WithClock(c Clock) HarvesterOpt {
	return func(h *Harvester) { h.clock = c }
}

// WithRand sets the source used for pacing jitter.
func WithRand(r *rand.Rand) HarvesterOpt {
	return func(h *Harvester) { h.rng = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) HarvesterOpt {
	return func(h *Harvester) { h.log = l }
}

// New creates a Harvester for an already loaded page.
func New(page Page, ledger *Ledger, cfg config.HarvestConfig, opts ...HarvesterOpt) *Harvester {
	h := &Harvester{
		page:   page,
		ledger: ledger,
		cfg:    cfg,
		clock:  SystemClock{},
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run harvests every section of the page and returns the run report.
//
// Nothing that happens inside a combination makes Run fail; a page that
// cannot be queried at all ends the run with an empty report and a logged
// error. Cancelling ctx stops after the current step and marks the report
// as interrupted.
func (h *Harvester) Run(ctx context.Context) *models.RunReport {
	report := &models.RunReport{
		ID:        uuid.NewString(),
		URL:       h.cfg.URL,
		OutputDir: h.cfg.OutputDir,
		StartedAt: h.clock.Now(),
	}
	defer func() {
		report.Artifacts = h.ledger.Artifacts()
		report.FinishedAt = h.clock.Now()
	}()

	sections, err := Discover(ctx, h.page, h.log)
	if err != nil {
		h.log.Error("discovery failed", "error", err)
		return report
	}
	report.SectionsFound = len(sections)
	if len(sections) == 0 {
		h.log.Warn("no data sections found")
		return report
	}

	pacer := NewPacer(h.clock, h.rng, h.cfg.SettleDelay)
	driver := NewDriver(h.page, h.ledger, h.clock, pacer, h.cfg, h.log)

	for i, sec := range sections {
		if ctx.Err() != nil {
			report.Interrupted = true
			break
		}

		sr := h.section(ctx, driver, sec)
		report.Sections = append(report.Sections, sr)
		report.Planned += sr.Planned
		report.Attempted += sr.Attempted
		report.Triggered += sr.Triggered
		report.Completed += sr.Completed
		report.TimedOut += sr.TimedOut
		report.Failed += sr.Failed()
		if sr.Skipped != "" {
			report.SectionsSkipped++
		}
		if sr.Attempted < sr.Planned || sr.Interrupted > 0 {
			report.Interrupted = true
		}

		if i < len(sections)-1 {
			delay := pacer.Jitter(h.cfg.SectionPauseMin, h.cfg.SectionPauseMax)
			h.log.Info("waiting before next section", "delay", delay.Round(100*time.Millisecond).String())
			_ = pacer.Wait(ctx, delay)
		}
	}

	h.log.Info("harvest complete",
		"attempted", report.Attempted,
		"triggered", report.Triggered,
		"completed", report.Completed,
		"artifacts", h.ledger.Len(),
		"output_dir", h.cfg.OutputDir,
	)
	return report
}

// section enumerates, plans and drives one section.
func (h *Harvester) section(ctx context.Context, driver *Driver, sec Section) models.SectionReport {
	sr := models.SectionReport{Index: sec.Index, Controls: len(sec.Controls)}
	log := h.log.With("section", sec.Index+1)
	log.Info("processing section")

	optionSets := make([][]Option, len(sec.Controls))
	sr.OptionCounts = make([]int, len(sec.Controls))
	for i, control := range sec.Controls {
		optionSets[i] = Enumerate(ctx, h.page, control, log)
		sr.OptionCounts[i] = len(optionSets[i])
		log.Info("control options", "control", i+1, "options", len(optionSets[i]))
	}

	total := CombinationCount(optionSets)
	if total == 0 {
		log.Warn("no valid options found, skipping section")
		sr.Skipped = models.SkipNoOptions
		return sr
	}
	log.Info("combinations planned", "total", total)

	limit := h.cfg.MaxCombinations
	if limit > 0 && total > limit {
		log.Warn("combination limit applied", "planned", total, "limit", limit)
	}
	combos := PlanN(optionSets, limit)
	sr.Planned = len(combos)

	res := driver.Run(ctx, sec, combos)
	sr.Attempted = len(res.Attempts)
	sr.Triggered = res.Triggered()
	sr.Completed = res.Count(models.OutcomeCompleted)
	sr.TimedOut = res.Count(models.OutcomeTimedOut)
	sr.NoTrigger = res.Count(models.OutcomeNoTrigger)
	sr.SelectFailed = res.Count(models.OutcomeSelectFailed)
	sr.InvokeFailed = res.Count(models.OutcomeInvokeFailed)
	sr.Interrupted = res.Count(models.OutcomeInterrupted)
	return sr
}
