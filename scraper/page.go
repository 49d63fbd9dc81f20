package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/harvest/harvest"
	"github.com/ysmood/gson"
)

// XPath queries used to find sections. A region is any div; nested divs
// that share the same controls are reported separately.
const (
	regionWithTriggerXPath = `//div[.//select and (.//button[contains(@class, 'download')] or .//a[contains(@href, 'download')] or .//button[contains(text(), 'Download')])]`
	regionXPath            = `//div[.//select]`
	controlXPath           = `.//select`
)

// triggerXPaths are tried in order; the first visible, enabled match wins.
var triggerXPaths = []string{
	`.//button[contains(text(), 'Download')]`,
	`.//a[contains(text(), 'Download')]`,
	`.//button[contains(@class, 'download')]`,
	`.//a[contains(@class, 'download')]`,
	`.//*[@data-download]`,
	`.//input[@type='submit']`,
	`.//button[@type='submit']`,
}

const (
	readOptionsJS = `() => Array.from(this.options || []).map(o => ({
		value: o.getAttribute('value'),
		label: o.textContent,
	}))`

	applySelectionJS = `(value) => {
		const opt = Array.from(this.options || []).find(o => o.value === value);
		if (!opt) return false;
		this.value = value;
		this.dispatchEvent(new Event('input', { bubbles: true }));
		this.dispatchEvent(new Event('change', { bubbles: true }));
		return true;
	}`

	scrollIntoViewJS = `() => this.scrollIntoView({ block: 'center' })`
	forceClickJS     = `() => this.click()`
)

// element is the harvest.Element handed out by rodPage.
type element struct {
	el   *rod.Element
	desc string
}

func (e *element) String() string { return e.desc }

func wrap(el *rod.Element, kind string, i int) *element {
	return &element{el: el, desc: fmt.Sprintf("%s#%d", kind, i)}
}

func unwrap(e harvest.Element) (*rod.Element, error) {
	re, ok := e.(*element)
	if !ok || re.el == nil {
		return nil, fmt.Errorf("scraper: foreign element %v", e)
	}
	return re.el, nil
}

// rodPage implements harvest.Page on a live rod tab. Every call runs under
// its own action timeout.
type rodPage struct {
	page    *rod.Page
	timeout time.Duration
	log     *slog.Logger
}

var _ harvest.Page = (*rodPage)(nil)

func (p *rodPage) actionCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

func (p *rodPage) FindRegions(ctx context.Context, withTrigger bool) ([]harvest.Element, error) {
	ctx, cancel := p.actionCtx(ctx)
	defer cancel()

	xpath := regionXPath
	if withTrigger {
		xpath = regionWithTriggerXPath
	}
	els, err := p.page.Context(ctx).ElementsX(xpath)
	if err != nil {
		return nil, fmt.Errorf("query regions: %w", err)
	}
	out := make([]harvest.Element, len(els))
	for i, el := range els {
		out[i] = wrap(el, "region", i)
	}
	return out, nil
}

func (p *rodPage) FindControls(ctx context.Context, region harvest.Element) ([]harvest.Element, error) {
	el, err := unwrap(region)
	if err != nil {
		return nil, err
	}
	ctx, cancel := p.actionCtx(ctx)
	defer cancel()

	els, err := el.Context(ctx).ElementsX(controlXPath)
	if err != nil {
		return nil, fmt.Errorf("query controls of %s: %w", region, err)
	}
	out := make([]harvest.Element, len(els))
	for i, c := range els {
		out[i] = &element{el: c, desc: fmt.Sprintf("%s/select#%d", region, i)}
	}
	return out, nil
}

func (p *rodPage) ReadOptions(ctx context.Context, control harvest.Element) ([]harvest.Option, error) {
	el, err := unwrap(control)
	if err != nil {
		return nil, err
	}
	ctx, cancel := p.actionCtx(ctx)
	defer cancel()

	res, err := el.Context(ctx).Eval(readOptionsJS)
	if err != nil {
		return nil, fmt.Errorf("read options of %s: %w", control, err)
	}
	return parseOptions(res.Value), nil
}

// parseOptions decodes the readOptionsJS result. A missing value attribute
// becomes an empty Value so enumeration drops it.
func parseOptions(v gson.JSON) []harvest.Option {
	items := v.Arr()
	out := make([]harvest.Option, 0, len(items))
	for _, item := range items {
		var o harvest.Option
		if val := item.Get("value"); !val.Nil() {
			o.Value = val.Str()
		}
		o.Label = strings.TrimSpace(item.Get("label").Str())
		out = append(out, o)
	}
	return out
}

func (p *rodPage) FindTrigger(ctx context.Context, region harvest.Element) (harvest.Element, error) {
	el, err := unwrap(region)
	if err != nil {
		return nil, err
	}
	ctx, cancel := p.actionCtx(ctx)
	defer cancel()
	scoped := el.Context(ctx)

	for _, xpath := range triggerXPaths {
		candidates, err := scoped.ElementsX(xpath)
		if err != nil {
			p.log.Debug("trigger query failed", "xpath", xpath, "error", err)
			continue
		}
		for i, c := range candidates {
			if usable(c) {
				return &element{el: c, desc: fmt.Sprintf("%s/trigger#%d", region, i)}, nil
			}
		}
	}
	return nil, harvest.ErrTriggerNotFound
}

// usable is true for a displayed element without the disabled property.
func usable(el *rod.Element) bool {
	visible, err := el.Visible()
	if err != nil || !visible {
		return false
	}
	disabled, err := el.Property("disabled")
	if err != nil {
		return true
	}
	return !disabled.Bool()
}

func (p *rodPage) ScrollIntoView(ctx context.Context, e harvest.Element) error {
	el, err := unwrap(e)
	if err != nil {
		return err
	}
	ctx, cancel := p.actionCtx(ctx)
	defer cancel()

	_, err = el.Context(ctx).Eval(scrollIntoViewJS)
	return err
}

func (p *rodPage) ApplySelection(ctx context.Context, control harvest.Element, value string) error {
	el, err := unwrap(control)
	if err != nil {
		return err
	}
	ctx, cancel := p.actionCtx(ctx)
	defer cancel()

	res, err := el.Context(ctx).Eval(applySelectionJS, value)
	if err != nil {
		return fmt.Errorf("select %q: %w", value, err)
	}
	if !res.Value.Bool() {
		return fmt.Errorf("select %q: no such option", value)
	}
	return nil
}

func (p *rodPage) Invoke(ctx context.Context, trigger harvest.Element) error {
	el, err := unwrap(trigger)
	if err != nil {
		return err
	}
	actx, cancel := p.actionCtx(ctx)
	defer cancel()

	el = el.Context(actx)
	if _, err := el.Interactable(); err != nil {
		if _, ok := intercepted(err); ok {
			return invokeError(ctx, err)
		}
	}
	return invokeError(ctx, el.Click(proto.InputMouseButtonLeft, 1))
}

func (p *rodPage) ForceInvoke(ctx context.Context, trigger harvest.Element) error {
	el, err := unwrap(trigger)
	if err != nil {
		return err
	}
	ctx, cancel := p.actionCtx(ctx)
	defer cancel()

	if _, err := el.Context(ctx).Eval(forceClickJS); err != nil {
		return fmt.Errorf("forced click: %w", err)
	}
	return nil
}
