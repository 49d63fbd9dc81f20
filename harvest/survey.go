package harvest

import (
	"context"
	"errors"
	"log/slog"
)

// SectionPlan describes what a run would do with one section.
type SectionPlan struct {
	Index        int
	Qualified    bool
	OptionSets   [][]Option
	Combinations int
	HasTrigger   bool
}

// Schedulable reports whether every control has at least one option.
func (s SectionPlan) Schedulable() bool {
	return s.Combinations > 0
}

// Survey discovers the sections of page and counts their combinations
// without selecting or invoking anything.
func Survey(ctx context.Context, page Page, log *slog.Logger) ([]SectionPlan, error) {
	if log == nil {
		log = slog.Default()
	}
	sections, err := Discover(ctx, page, log)
	if err != nil {
		return nil, err
	}

	plans := make([]SectionPlan, 0, len(sections))
	for _, sec := range sections {
		sp := SectionPlan{Index: sec.Index, Qualified: sec.Qualified}
		for _, control := range sec.Controls {
			sp.OptionSets = append(sp.OptionSets, Enumerate(ctx, page, control, log))
		}
		sp.Combinations = CombinationCount(sp.OptionSets)

		_, err := page.FindTrigger(ctx, sec.Region)
		switch {
		case err == nil:
			sp.HasTrigger = true
		case !errors.Is(err, ErrTriggerNotFound):
			log.Warn("trigger lookup failed", "section", sec.Index+1, "error", err)
		}
		plans = append(plans, sp)
	}
	return plans, nil
}

// TotalCombinations sums the combinations of all plans.
func TotalCombinations(plans []SectionPlan) int {
	n := 0
	for _, p := range plans {
		n += p.Combinations
	}
	return n
}
