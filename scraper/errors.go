package scraper

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/use-agent/harvest/harvest"
	"github.com/use-agent/harvest/models"
)

// categorizeError wraps page-load errors into typed HarvestErrors so the CLI
// can tell a slow page from a broken one.
func categorizeError(err error, msg string) *models.HarvestError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewHarvestError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewHarvestError(models.ErrCodeTimeout, "page load canceled", err)
	default:
		return models.NewHarvestError(models.ErrCodeNavigation, msg, err)
	}
}

// intercepted reports whether a click failed because something else would
// have received it, and names the reason. The reason is kept out of the
// error text: CoveredError renders the covering node's HTML.
func intercepted(err error) (string, bool) {
	var (
		covered      *rod.CoveredError
		noPointer    *rod.NoPointerEventsError
		invisible    *rod.InvisibleShapeError
		notClickable *rod.NotInteractableError
	)
	switch {
	case errors.As(err, &covered):
		return "covered by another element", true
	case errors.As(err, &noPointer):
		return "pointer events disabled", true
	case errors.As(err, &invisible):
		return "no visible shape", true
	case errors.As(err, &notClickable):
		return "not interactable", true
	}
	return "", false
}

// invokeError maps a click failure onto the harvest error vocabulary. rod's
// Click waits for the element to become interactable until the action
// deadline, so a deadline hit while parent is still live means the trigger
// stayed covered.
func invokeError(parent context.Context, err error) error {
	if err == nil {
		return nil
	}
	if reason, ok := intercepted(err); ok {
		return fmt.Errorf("%w: %s", harvest.ErrIntercepted, reason)
	}
	if errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil {
		return fmt.Errorf("%w: trigger never became clickable: %w", harvest.ErrIntercepted, err)
	}
	return fmt.Errorf("click trigger: %w", err)
}
