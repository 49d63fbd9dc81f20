package harvest

import (
	"context"
	"log/slog"
	"strings"
)

// Enumerate returns the schedulable options of a control: entries with an
// empty value (placeholder prompts) are dropped and order is preserved.
// A read failure yields nil, which callers treat as unschedulable.
func Enumerate(ctx context.Context, page Page, control Element, log *slog.Logger) []Option {
	if log == nil {
		log = slog.Default()
	}

	raw, err := page.ReadOptions(ctx, control)
	if err != nil {
		log.Warn("error reading control options", "control", control.String(), "error", err)
		return nil
	}

	options := make([]Option, 0, len(raw))
	for _, o := range raw {
		if o.Value == "" {
			continue
		}
		options = append(options, Option{Value: o.Value, Label: strings.TrimSpace(o.Label)})
	}
	return options
}
