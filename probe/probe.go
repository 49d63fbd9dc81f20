// Package probe implements harvest.Page over static HTML, so sections and
// option sets can be inspected without a browser. It cannot trigger
// downloads.
package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/harvest/harvest"
	"golang.org/x/net/html"
)

// ErrStatic is returned by operations that need a live page.
var ErrStatic = errors.New("probe: static page cannot be interacted with")

var (
	regionSel  = cascadia.MustCompile("div")
	controlSel = cascadia.MustCompile("select")
	optionSel  = cascadia.MustCompile("option")

	// Trigger candidates mirror the browser heuristics, in order. An empty
	// text matches any element.
	triggerRules = []struct {
		sel  cascadia.Selector
		text string
	}{
		{cascadia.MustCompile("button"), "Download"},
		{cascadia.MustCompile("a"), "Download"},
		{cascadia.MustCompile("button.download, button[class*=download]"), ""},
		{cascadia.MustCompile("a.download, a[class*=download]"), ""},
		{cascadia.MustCompile("[data-download]"), ""},
		{cascadia.MustCompile("input[type=submit]"), ""},
		{cascadia.MustCompile("button[type=submit]"), ""},
	}

	// regionTriggerSel qualifies a region the same way the browser query does.
	regionTriggerSel = cascadia.MustCompile("button[class*=download], a[href*=download]")
)

type node struct {
	sel  *goquery.Selection
	desc string
}

func (n *node) String() string { return n.desc }

// Page is a parsed HTML document.
type Page struct {
	doc *goquery.Document
}

var _ harvest.Page = (*Page)(nil)

// Parse builds a Page from raw HTML.
func Parse(body []byte) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("probe: parse html: %w", err)
	}
	return &Page{doc: doc}, nil
}

func unwrap(e harvest.Element) (*goquery.Selection, error) {
	n, ok := e.(*node)
	if !ok || n.sel == nil {
		return nil, fmt.Errorf("probe: foreign element %v", e)
	}
	return n.sel, nil
}

func (p *Page) FindRegions(_ context.Context, withTrigger bool) ([]harvest.Element, error) {
	var out []harvest.Element
	p.doc.FindMatcher(regionSel).Each(func(i int, s *goquery.Selection) {
		if s.FindMatcher(controlSel).Length() == 0 {
			return
		}
		if withTrigger && !hasRegionTrigger(s) {
			return
		}
		out = append(out, &node{sel: s, desc: fmt.Sprintf("div#%d", i)})
	})
	return out, nil
}

func hasRegionTrigger(s *goquery.Selection) bool {
	if s.FindMatcher(regionTriggerSel).Length() > 0 {
		return true
	}
	found := false
	s.Find("button").EachWithBreak(func(_ int, b *goquery.Selection) bool {
		found = ownTextContains(b, "Download")
		return !found
	})
	return found
}

func (p *Page) FindControls(_ context.Context, region harvest.Element) ([]harvest.Element, error) {
	s, err := unwrap(region)
	if err != nil {
		return nil, err
	}
	var out []harvest.Element
	s.FindMatcher(controlSel).Each(func(i int, c *goquery.Selection) {
		out = append(out, &node{sel: c, desc: fmt.Sprintf("%s/select#%d", region, i)})
	})
	return out, nil
}

func (p *Page) ReadOptions(_ context.Context, control harvest.Element) ([]harvest.Option, error) {
	s, err := unwrap(control)
	if err != nil {
		return nil, err
	}
	var out []harvest.Option
	s.FindMatcher(optionSel).Each(func(_ int, o *goquery.Selection) {
		value, _ := o.Attr("value")
		out = append(out, harvest.Option{Value: value, Label: strings.TrimSpace(o.Text())})
	})
	return out, nil
}

func (p *Page) FindTrigger(_ context.Context, region harvest.Element) (harvest.Element, error) {
	s, err := unwrap(region)
	if err != nil {
		return nil, err
	}
	for _, rule := range triggerRules {
		var hit *goquery.Selection
		s.FindMatcher(rule.sel).EachWithBreak(func(_ int, c *goquery.Selection) bool {
			if rule.text != "" && !ownTextContains(c, rule.text) {
				return true
			}
			if !usable(c) {
				return true
			}
			hit = c
			return false
		})
		if hit != nil {
			return &node{sel: hit, desc: fmt.Sprintf("%s/%s", region, goquery.NodeName(hit))}, nil
		}
	}
	return nil, harvest.ErrTriggerNotFound
}

// ownTextContains matches text nodes that are direct children of s, like
// XPath's contains(text(), ...).
func ownTextContains(s *goquery.Selection, text string) bool {
	for _, n := range s.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode && strings.Contains(c.Data, text) {
				return true
			}
		}
	}
	return false
}

// usable approximates visibility and enablement from markup alone.
func usable(s *goquery.Selection) bool {
	if _, ok := s.Attr("disabled"); ok {
		return false
	}
	if _, ok := s.Attr("hidden"); ok {
		return false
	}
	style, _ := s.Attr("style")
	style = strings.ReplaceAll(strings.ToLower(style), " ", "")
	return !strings.Contains(style, "display:none") && !strings.Contains(style, "visibility:hidden")
}

func (p *Page) ScrollIntoView(context.Context, harvest.Element) error { return nil }

// ApplySelection checks the value exists but changes nothing.
func (p *Page) ApplySelection(ctx context.Context, control harvest.Element, value string) error {
	opts, err := p.ReadOptions(ctx, control)
	if err != nil {
		return err
	}
	for _, o := range opts {
		if o.Value == value {
			return nil
		}
	}
	return fmt.Errorf("probe: option %q not found", value)
}

func (p *Page) Invoke(context.Context, harvest.Element) error      { return ErrStatic }
func (p *Page) ForceInvoke(context.Context, harvest.Element) error { return ErrStatic }
