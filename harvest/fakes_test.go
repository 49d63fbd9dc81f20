package harvest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeClock advances instantly whenever something waits on it.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	c.mu.Unlock()
	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}

func (c *fakeClock) elapsedSince(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// stuckClock never fires.
type stuckClock struct{ now time.Time }

func (c stuckClock) Now() time.Time                     { return c.now }
func (stuckClock) After(time.Duration) <-chan time.Time { return make(chan time.Time) }

// fakeDir is an in-memory download directory.
type fakeDir struct {
	mu    sync.Mutex
	files []string
	err   error

	// failNext makes the next failNext listings fail with errBoom.
	failNext int
}

func (d *fakeDir) add(names ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.files = append(d.files, names...)
}

func (d *fakeDir) list() ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	if d.failNext > 0 {
		d.failNext--
		return nil, errBoom
	}
	out := make([]string, len(d.files))
	copy(out, d.files)
	return out, nil
}

type fakeEl string

func (e fakeEl) String() string { return string(e) }

// fakePage is a scripted Page. Control and region handles are fakeEl values.
type fakePage struct {
	mu sync.Mutex

	qualified []Element
	any       []Element
	regionErr error

	controls    map[string][]Element
	controlsErr map[string]error
	options     map[string][]Option
	optionsErr  map[string]error
	applyErr    map[string]error
	onApply     func()

	// trigger decides whether a region exposes a trigger given the current
	// selection. Nil means every region has one.
	trigger func(region string, selected map[string]string) bool

	// invoke runs on every Invoke; forceInvoke on every ForceInvoke.
	invoke      func(p *fakePage) error
	forceInvoke func(p *fakePage) error

	selected map[string]string
	applies  []string
	invokes  int
	forced   int
	scrolls  int
}

func newFakePage() *fakePage {
	return &fakePage{
		controls:    map[string][]Element{},
		controlsErr: map[string]error{},
		options:     map[string][]Option{},
		optionsErr:  map[string]error{},
		applyErr:    map[string]error{},
		selected:    map[string]string{},
	}
}

// section registers a region with controls and their raw options.
func (p *fakePage) section(region string, qualified bool, controls map[string][]Option, order ...string) {
	els := make([]Element, 0, len(order))
	for _, name := range order {
		els = append(els, fakeEl(name))
		p.options[name] = controls[name]
	}
	p.controls[region] = els
	if qualified {
		p.qualified = append(p.qualified, fakeEl(region))
	}
	p.any = append(p.any, fakeEl(region))
}

func (p *fakePage) FindRegions(_ context.Context, withTrigger bool) ([]Element, error) {
	if p.regionErr != nil {
		return nil, p.regionErr
	}
	if withTrigger {
		return p.qualified, nil
	}
	return p.any, nil
}

func (p *fakePage) FindControls(_ context.Context, region Element) ([]Element, error) {
	if err := p.controlsErr[region.String()]; err != nil {
		return nil, err
	}
	return p.controls[region.String()], nil
}

func (p *fakePage) ReadOptions(_ context.Context, control Element) ([]Option, error) {
	if err := p.optionsErr[control.String()]; err != nil {
		return nil, err
	}
	return p.options[control.String()], nil
}

func (p *fakePage) FindTrigger(_ context.Context, region Element) (Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.trigger != nil && !p.trigger(region.String(), p.selected) {
		return nil, ErrTriggerNotFound
	}
	return fakeEl(region.String() + "/download"), nil
}

func (p *fakePage) ScrollIntoView(context.Context, Element) error {
	p.mu.Lock()
	p.scrolls++
	p.mu.Unlock()
	return nil
}

func (p *fakePage) ApplySelection(_ context.Context, control Element, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.onApply != nil {
		p.onApply()
	}
	if err := p.applyErr[value]; err != nil {
		return err
	}
	p.selected[control.String()] = value
	p.applies = append(p.applies, control.String()+"="+value)
	return nil
}

func (p *fakePage) Invoke(context.Context, Element) error {
	p.mu.Lock()
	p.invokes++
	p.mu.Unlock()
	if p.invoke == nil {
		return nil
	}
	return p.invoke(p)
}

func (p *fakePage) ForceInvoke(context.Context, Element) error {
	p.mu.Lock()
	p.forced++
	p.mu.Unlock()
	if p.forceInvoke == nil {
		return nil
	}
	return p.forceInvoke(p)
}

// selectionName names a download after the current selection, e.g. "a_x.csv".
func (p *fakePage) selectionName() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.selected))
	for k := range p.selected {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = p.selected[k]
	}
	return strings.Join(parts, "_") + ".csv"
}

// downloadTo returns an invoke hook that drops a file named after the
// current selection into dir.
func downloadTo(dir *fakeDir) func(p *fakePage) error {
	return func(p *fakePage) error {
		dir.add(p.selectionName())
		return nil
	}
}

var errBoom = errors.New("boom")

func opts(values ...string) []Option {
	out := make([]Option, len(values))
	for i, v := range values {
		out[i] = Option{Value: v, Label: strings.ToUpper(v)}
	}
	return out
}
