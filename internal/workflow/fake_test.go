package workflow

import (
	"context"
	"time"

	"github.com/claimloop/ecwcoder/internal/browser"
)

// fakePage is an in-memory Page for workflow tests. Selectors listed in
// clickable, fillable, or selectable match; everything else misses. The
// onClick hook lets a test mutate page state mid-flow, the way a real page
// changes after a submit.
type fakePage struct {
	clickable  map[string]bool
	fillable   map[string]bool
	selectable map[string]bool

	url       string
	html      string
	frames    []browser.FrameInfo
	frameHTML map[int]string

	clicks        []string
	fills         map[string]string
	selections    map[string]string
	typed         []string
	keys          []string
	clickAts      int
	screenshots   []string
	framesFetched []int

	onClick func(p *fakePage, selector string)
}

func newFakePage() *fakePage {
	return &fakePage{
		clickable:  map[string]bool{},
		fillable:   map[string]bool{},
		selectable: map[string]bool{},
		frameHTML:  map[int]string{},
		fills:      map[string]string{},
		selections: map[string]string{},
		url:        "https://ehr.example.com/app/dashboard",
	}
}

var _ browser.Page = (*fakePage)(nil)

func (p *fakePage) Navigate(context.Context, string) error { return nil }

func (p *fakePage) URL(context.Context) (string, error) { return p.url, nil }

func (p *fakePage) Title(context.Context) (string, error) { return "fake", nil }

func (p *fakePage) FindAndClick(_ context.Context, candidates []string) (string, error) {
	for _, sel := range candidates {
		if p.clickable[sel] {
			p.clicks = append(p.clicks, sel)
			if p.onClick != nil {
				p.onClick(p, sel)
			}
			return sel, nil
		}
	}
	return "", browser.ErrNoCandidate
}

func (p *fakePage) FillField(_ context.Context, candidates []string, value string) (string, error) {
	for _, sel := range candidates {
		if p.fillable[sel] {
			p.fills[sel] = value
			return sel, nil
		}
	}
	return "", browser.ErrNoCandidate
}

func (p *fakePage) SelectOption(_ context.Context, candidates []string, label string) (string, error) {
	for _, sel := range candidates {
		if p.selectable[sel] {
			p.selections[sel] = label
			return sel, nil
		}
	}
	return "", browser.ErrNoCandidate
}

func (p *fakePage) TypeText(_ context.Context, text string) error {
	p.typed = append(p.typed, text)
	return nil
}

func (p *fakePage) PressKey(_ context.Context, key string) error {
	p.keys = append(p.keys, key)
	return nil
}

func (p *fakePage) ClickAt(context.Context, float64, float64) error {
	p.clickAts++
	return nil
}

func (p *fakePage) HTML(context.Context) (string, error) { return p.html, nil }

func (p *fakePage) Frames(context.Context) ([]browser.FrameInfo, error) {
	return p.frames, nil
}

func (p *fakePage) FrameHTML(_ context.Context, index int) (string, error) {
	p.framesFetched = append(p.framesFetched, index)
	return p.frameHTML[index], nil
}

func (p *fakePage) Screenshot(_ context.Context, path string) error {
	p.screenshots = append(p.screenshots, path)
	return nil
}

func (p *fakePage) Wait(context.Context, time.Duration) error { return nil }

func (p *fakePage) pressed(key string) bool {
	for _, k := range p.keys {
		if k == key {
			return true
		}
	}
	return false
}
