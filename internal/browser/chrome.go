package browser

import (
	"context"
	"os"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/rs/zerolog/log"
)

// Chrome drives a Chromium instance over the DevTools protocol.
type Chrome struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

var _ Page = (*Chrome)(nil)

// Launch starts a browser session. The session lives until Close.
func Launch(ctx context.Context, headless bool) (*Chrome, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", headless),
		chromedp.WindowSize(1440, 900),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	// Force the browser process to start now so launch failures surface here.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, err
	}
	log.Debug().Bool("headless", headless).Msg("browser session started")
	return &Chrome{ctx: browserCtx, cancel: cancel, allocCancel: allocCancel}, nil
}

// Close tears down the browser session.
func (c *Chrome) Close() {
	c.cancel()
	c.allocCancel()
}

func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx := c.ctx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(c.ctx, deadline)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

func (c *Chrome) Navigate(ctx context.Context, url string) error {
	return c.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (c *Chrome) URL(ctx context.Context) (string, error) {
	var loc string
	err := c.run(ctx, chromedp.Location(&loc))
	return loc, err
}

func (c *Chrome) Title(ctx context.Context) (string, error) {
	var title string
	err := c.run(ctx, chromedp.Title(&title))
	return title, err
}

func (c *Chrome) FindAndClick(ctx context.Context, candidates []string) (string, error) {
	for _, sel := range candidates {
		var clicked bool
		if err := c.run(ctx, chromedp.Evaluate(clickScript(sel), &clicked)); err != nil {
			return "", err
		}
		if clicked {
			log.Debug().Str("selector", sel).Msg("clicked")
			return sel, nil
		}
	}
	return "", ErrNoCandidate
}

func (c *Chrome) FillField(ctx context.Context, candidates []string, value string) (string, error) {
	for _, sel := range candidates {
		var filled bool
		if err := c.run(ctx, chromedp.Evaluate(fillScript(sel, value), &filled)); err != nil {
			return "", err
		}
		if filled {
			log.Debug().Str("selector", sel).Msg("filled field")
			return sel, nil
		}
	}
	return "", ErrNoCandidate
}

func (c *Chrome) SelectOption(ctx context.Context, candidates []string, label string) (string, error) {
	for _, sel := range candidates {
		var selected bool
		if err := c.run(ctx, chromedp.Evaluate(selectScript(sel, label), &selected)); err != nil {
			return "", err
		}
		if selected {
			log.Debug().Str("selector", sel).Str("label", label).Msg("selected option")
			return sel, nil
		}
	}
	return "", ErrNoCandidate
}

func (c *Chrome) TypeText(ctx context.Context, text string) error {
	return c.run(ctx, chromedp.KeyEvent(text))
}

func (c *Chrome) PressKey(ctx context.Context, key string) error {
	code, ok := keyCodes[key]
	if !ok {
		code = key
	}
	return c.run(ctx, chromedp.KeyEvent(code))
}

var keyCodes = map[string]string{
	"Tab":    kb.Tab,
	"Escape": kb.Escape,
	"Enter":  kb.Enter,
}

func (c *Chrome) ClickAt(ctx context.Context, x, y float64) error {
	return c.run(ctx, chromedp.MouseClickXY(x, y))
}

func (c *Chrome) HTML(ctx context.Context) (string, error) {
	var html string
	err := c.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (c *Chrome) Frames(ctx context.Context) ([]FrameInfo, error) {
	var frames []FrameInfo
	err := c.run(ctx, chromedp.Evaluate(framesScript, &frames))
	return frames, err
}

func (c *Chrome) FrameHTML(ctx context.Context, index int) (string, error) {
	var html string
	err := c.run(ctx, chromedp.Evaluate(frameHTMLScript(index), &html))
	return html, err
}

func (c *Chrome) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	if err := c.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}

func (c *Chrome) Wait(ctx context.Context, d time.Duration) error {
	return c.run(ctx, chromedp.Sleep(d))
}
