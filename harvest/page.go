// Package harvest drives a page's dropdown filters through every combination
// of their options, triggers the export for each combination, and records the
// files that appear in the download directory.
//
// The package never talks to a browser directly. Everything it needs from the
// page goes through the Page interface, implemented by package scraper (rod)
// and package probe (static HTML).
package harvest

import (
	"context"
	"errors"
)

var (
	// ErrTriggerNotFound is returned by Page.FindTrigger when a region has no
	// usable trigger action.
	ErrTriggerNotFound = errors.New("harvest: trigger action not found")

	// ErrIntercepted is returned by Page.Invoke when the trigger could not
	// receive the click (covered, not interactable). The driver retries once
	// with Page.ForceInvoke.
	ErrIntercepted = errors.New("harvest: invocation intercepted")

	// ErrPollTimeout is returned by Poll when the bound elapses before the
	// condition holds.
	ErrPollTimeout = errors.New("harvest: poll timed out")
)

// Element is an opaque handle to a node on the page.
type Element interface {
	String() string
}

// Page is the browser capability the controller consumes.
type Page interface {
	// FindRegions returns, in document order, the regions that contain at
	// least one selection control. When withTrigger is true only regions
	// that also contain a recognizable trigger action are returned.
	FindRegions(ctx context.Context, withTrigger bool) ([]Element, error)

	// FindControls returns the selection controls inside a region.
	FindControls(ctx context.Context, region Element) ([]Element, error)

	// ReadOptions returns every entry of a control, placeholders included.
	ReadOptions(ctx context.Context, control Element) ([]Option, error)

	// FindTrigger locates the trigger action of a region.
	FindTrigger(ctx context.Context, region Element) (Element, error)

	ScrollIntoView(ctx context.Context, el Element) error
	ApplySelection(ctx context.Context, control Element, value string) error

	// Invoke activates the trigger the way a user would.
	Invoke(ctx context.Context, trigger Element) error

	// ForceInvoke activates the trigger bypassing hit testing.
	ForceInvoke(ctx context.Context, trigger Element) error
}
