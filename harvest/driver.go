package harvest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/use-agent/harvest/config"
	"github.com/use-agent/harvest/models"
)

// Attempt is the record of one combination.
type Attempt struct {
	Index     int
	Labels    string
	Outcome   models.Outcome
	Artifacts []string
	Err       error
	Duration  time.Duration
}

// SectionResult collects the attempts made for one section.
type SectionResult struct {
	Section  int
	Planned  int
	Attempts []Attempt
}

// Count returns how many attempts ended with outcome o.
func (r SectionResult) Count(o models.Outcome) int {
	n := 0
	for _, a := range r.Attempts {
		if a.Outcome == o {
			n++
		}
	}
	return n
}

// Triggered is the number of combinations whose trigger was invoked.
func (r SectionResult) Triggered() int {
	n := 0
	for _, a := range r.Attempts {
		if a.Outcome.Triggered() {
			n++
		}
	}
	return n
}

// Interrupted reports whether the section stopped before its last combination
// finished.
func (r SectionResult) Interrupted() bool {
	return len(r.Attempts) < r.Planned || r.Count(models.OutcomeInterrupted) > 0
}

// Driver walks combinations through select → trigger → await → pace.
// It is not safe for concurrent use: attributing a new file to a combination
// relies on only one trigger being in flight.
type Driver struct {
	page   Page
	ledger *Ledger
	clock  Clock
	pacer  *Pacer
	cfg    config.HarvestConfig
	log    *slog.Logger
}

// NewDriver creates a Driver.
func NewDriver(page Page, ledger *Ledger, clock Clock, pacer *Pacer, cfg config.HarvestConfig, log *slog.Logger) *Driver {
	if log == nil {
		log = slog.Default()
	}
	return &Driver{
		page:   page,
		ledger: ledger,
		clock:  clock,
		pacer:  pacer,
		cfg:    cfg,
		log:    log,
	}
}

// Run drives every combination of sec. Failures are counted, never returned:
// the loop only stops early when ctx is done.
func (d *Driver) Run(ctx context.Context, sec Section, combos []Combination) SectionResult {
	res := SectionResult{Section: sec.Index, Planned: len(combos)}

	for i, combo := range combos {
		if ctx.Err() != nil {
			d.log.Warn("section interrupted", "section", sec.Index+1,
				"completed", i, "planned", len(combos))
			break
		}

		log := d.log.With("section", sec.Index+1, "combination", fmt.Sprintf("%d/%d", i+1, len(combos)))
		log.Info("combination", "options", combo.Labels())

		att := d.attempt(ctx, log, sec, combo)
		att.Index = i
		res.Attempts = append(res.Attempts, att)

		_ = d.pacer.Wait(ctx, d.pacer.Jitter(d.cfg.ComboPauseMin, d.cfg.ComboPauseMax))
	}

	log := d.log.With("section", sec.Index+1)
	log.Info("section finished",
		"attempted", len(res.Attempts),
		"triggered", res.Triggered(),
		"completed", res.Count(models.OutcomeCompleted),
	)
	return res
}

func (d *Driver) attempt(ctx context.Context, log *slog.Logger, sec Section, combo Combination) Attempt {
	start := d.clock.Now()
	att := Attempt{Labels: combo.Labels()}
	finish := func(o models.Outcome, err error) Attempt {
		if o != models.OutcomeCompleted && ctx.Err() != nil {
			o = models.OutcomeInterrupted
		}
		att.Outcome = o
		att.Err = err
		att.Duration = d.clock.Now().Sub(start)
		return att
	}

	// ── 1. Apply ────────────────────────────────────────────────────
	if err := d.apply(ctx, log, sec, combo); err != nil {
		log.Error("error selecting combination", "error", err)
		return finish(models.OutcomeSelectFailed, err)
	}

	// ── 2. Locate trigger ───────────────────────────────────────────
	trigger, err := d.page.FindTrigger(ctx, sec.Region)
	if err != nil {
		log.Error("no trigger action found for this section", "error", err)
		return finish(models.OutcomeNoTrigger, err)
	}
	if err := d.page.ScrollIntoView(ctx, trigger); err != nil {
		log.Debug("scroll to trigger failed", "trigger", trigger.String(), "error", err)
	}
	_ = d.pacer.Settle(ctx)

	// ── 3. Invoke ───────────────────────────────────────────────────
	before, err := d.snapshot(log)
	if err != nil {
		log.Error("cannot list download location, trigger not invoked", "error", err)
		return finish(models.OutcomeInvokeFailed, err)
	}
	if err := d.invoke(ctx, log, trigger); err != nil {
		log.Error("error invoking trigger", "error", err)
		return finish(models.OutcomeInvokeFailed, err)
	}
	log.Info("trigger invoked")

	// ── 4. Await completion ─────────────────────────────────────────
	artifacts, err := d.await(ctx, log, before)
	if err != nil {
		log.Warn("download timeout, continuing anyway", "error", err)
		return finish(models.OutcomeTimedOut, err)
	}
	att.Artifacts = artifacts
	log.Info("downloaded", "artifacts", artifacts)
	return finish(models.OutcomeCompleted, nil)
}

// snapshot lists the watched location, retrying once. Without a baseline,
// files already present would look new, so the caller must not invoke.
func (d *Driver) snapshot(log *slog.Logger) (ArtifactSet, error) {
	set, err := d.ledger.Snapshot()
	if err == nil {
		return set, nil
	}
	log.Warn("snapshot before trigger failed, retrying", "error", err)
	set, err = d.ledger.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("snapshot before trigger: %w", err)
	}
	return set, nil
}

// apply sets each control to its option, in control order.
func (d *Driver) apply(ctx context.Context, log *slog.Logger, sec Section, combo Combination) error {
	if len(combo) != len(sec.Controls) {
		return fmt.Errorf("combination has %d options for %d controls", len(combo), len(sec.Controls))
	}
	for i, control := range sec.Controls {
		opt := combo[i]
		if err := d.page.ScrollIntoView(ctx, control); err != nil {
			return fmt.Errorf("control %d: scroll into view: %w", i+1, err)
		}
		if err := d.pacer.Settle(ctx); err != nil {
			return err
		}
		if err := d.page.ApplySelection(ctx, control, opt.Value); err != nil {
			return fmt.Errorf("control %d: select %q: %w", i+1, opt.Value, err)
		}
		log.Debug("option selected", "control", i+1, "option", opt.Label)
		if err := d.pacer.Settle(ctx); err != nil {
			return err
		}
	}
	return nil
}

// invoke clicks the trigger, retrying once with a forced click if the first
// attempt was intercepted.
func (d *Driver) invoke(ctx context.Context, log *slog.Logger, trigger Element) error {
	err := d.page.Invoke(ctx, trigger)
	if errors.Is(err, ErrIntercepted) {
		log.Info("trigger intercepted, retrying with forced invocation", "error", err)
		err = d.page.ForceInvoke(ctx, trigger)
	}
	return err
}

// await polls the ledger until a complete artifact that is neither in before
// nor already recorded shows up, then records it.
func (d *Driver) await(ctx context.Context, log *slog.Logger, before ArtifactSet) ([]string, error) {
	var found []string
	err := Poll(ctx, d.clock, d.cfg.PollInterval, d.cfg.DownloadTimeout, func(context.Context) bool {
		after, err := d.ledger.Snapshot()
		if err != nil {
			log.Debug("snapshot failed while polling", "error", err)
			return false
		}
		fresh := d.ledger.Unrecorded(d.ledger.Diff(before, after))
		if len(fresh) == 0 {
			return false
		}
		found = fresh
		return true
	})
	if err != nil {
		return nil, err
	}
	d.ledger.Record(found...)
	return found, nil
}
