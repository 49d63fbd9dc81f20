package harvest

import "strings"

// Option is one selectable entry of a control.
type Option struct {
	Value string
	Label string
}

// Equal compares options by value.
func (o Option) Equal(other Option) bool {
	return o.Value == other.Value
}

// Combination holds exactly one Option per control of a section, in control order.
type Combination []Option

// Values returns the option values in control order.
func (c Combination) Values() []string {
	values := make([]string, len(c))
	for i, o := range c {
		values[i] = o.Value
	}
	return values
}

// Labels renders the combination for logs, e.g. "ZHVI × Metro".
func (c Combination) Labels() string {
	labels := make([]string, len(c))
	for i, o := range c {
		labels[i] = o.Label
		if labels[i] == "" {
			labels[i] = o.Value
		}
	}
	return strings.Join(labels, " × ")
}

// Section is a page region grouping selection controls and, usually, a
// trigger action. Sections are rediscovered on every page load.
type Section struct {
	// Index is the position of the section within the discovery result.
	Index int

	Region   Element
	Controls []Element

	// Qualified is true when the region was matched together with a trigger.
	Qualified bool
}
