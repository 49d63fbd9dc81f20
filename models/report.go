package models

import "time"

// Outcome is the terminal state of one combination attempt.
type Outcome string

const (
	OutcomeCompleted    Outcome = "completed"
	OutcomeTimedOut     Outcome = "timed_out"
	OutcomeNoTrigger    Outcome = "no_trigger"
	OutcomeSelectFailed Outcome = "select_failed"
	OutcomeInvokeFailed Outcome = "invoke_failed"

	// OutcomeInterrupted marks a combination cut short by cancellation.
	OutcomeInterrupted Outcome = "interrupted"
)

// Triggered reports whether the trigger action was invoked for this outcome.
func (o Outcome) Triggered() bool {
	return o == OutcomeCompleted || o == OutcomeTimedOut
}

// SkipNoOptions marks a section with a control that has no usable options.
const SkipNoOptions = "no_options"

// RunReport is the aggregate result of one harvest run.
// It is produced once, at the end of the run.
type RunReport struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	OutputDir  string    `json:"output_dir"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// SectionsFound is the number of sections returned by discovery.
	SectionsFound int `json:"sections_found"`

	// SectionsSkipped counts sections with an unschedulable control.
	SectionsSkipped int `json:"sections_skipped"`

	Planned   int `json:"combinations_planned"`
	Attempted int `json:"combinations_attempted"`

	// Triggered counts combinations whose trigger action was invoked.
	Triggered int `json:"combinations_triggered"`

	// Completed counts combinations with a detected completed artifact.
	Completed int `json:"combinations_completed"`
	TimedOut  int `json:"combinations_timed_out"`
	Failed    int `json:"combinations_failed"`

	// Artifacts lists every distinct artifact recorded during the run,
	// in the order they were observed.
	Artifacts []string `json:"artifacts"`

	Sections []SectionReport `json:"sections"`

	// Interrupted is set when the run context was cancelled before all
	// combinations were visited.
	Interrupted bool `json:"interrupted,omitempty"`
}

// TotalArtifacts is the final ledger size.
func (r *RunReport) TotalArtifacts() int {
	return len(r.Artifacts)
}

// Duration returns the wall time of the run.
func (r *RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// SectionReport summarises one discovered section.
type SectionReport struct {
	Index        int    `json:"index"`
	Controls     int    `json:"controls"`
	OptionCounts []int  `json:"option_counts"`
	Planned      int    `json:"planned"`
	Attempted    int    `json:"attempted"`
	Triggered    int    `json:"triggered"`
	Completed    int    `json:"completed"`
	TimedOut     int    `json:"timed_out"`
	NoTrigger    int    `json:"no_trigger"`
	SelectFailed int    `json:"select_failed"`
	InvokeFailed int    `json:"invoke_failed"`
	Interrupted  int    `json:"interrupted"`
	Skipped      string `json:"skipped,omitempty"`
}

// Failed is the number of combinations that never reached the trigger step
// or whose trigger could not be invoked.
func (s SectionReport) Failed() int {
	return s.NoTrigger + s.SelectFailed + s.InvokeFailed
}
