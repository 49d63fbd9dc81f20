package harvest

import (
	"context"
	"fmt"
	"log/slog"
)

// Discover locates the sections of a loaded page.
//
// Regions holding both controls and a trigger action are preferred. Only when
// none exist does it fall back to any region holding a control, leaving the
// trigger lookup to the driver. An empty result is not an error; errors are
// reserved for a page that cannot be queried at all.
func Discover(ctx context.Context, page Page, log *slog.Logger) ([]Section, error) {
	if log == nil {
		log = slog.Default()
	}

	qualified := true
	regions, err := page.FindRegions(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("discover: query regions with trigger: %w", err)
	}
	if len(regions) == 0 {
		log.Info("no regions with a trigger action, falling back to any region with controls")
		qualified = false
		regions, err = page.FindRegions(ctx, false)
		if err != nil {
			return nil, fmt.Errorf("discover: query regions: %w", err)
		}
	}

	sections := make([]Section, 0, len(regions))
	for i, region := range regions {
		controls, err := page.FindControls(ctx, region)
		if err != nil {
			log.Warn("error processing region", "region", i, "error", err)
			continue
		}
		if len(controls) == 0 {
			continue
		}
		sec := Section{
			Index:     len(sections),
			Region:    region,
			Controls:  controls,
			Qualified: qualified,
		}
		sections = append(sections, sec)
		log.Info("section discovered",
			"section", sec.Index+1,
			"controls", len(controls),
			"qualified", qualified,
		)
	}

	log.Info("discovery complete", "sections", len(sections))
	return sections, nil
}
