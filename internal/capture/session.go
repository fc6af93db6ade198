// File: internal/capture/session.go
package capture

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/mimic-cli/api/schemas"
	"github.com/xkilldash9x/mimic-cli/internal/config"
)

// launchProbeTimeout bounds how long we wait for the browser process to come
// up and answer its first command.
const launchProbeTimeout = 30 * time.Second

// Session owns one recording browser: the Chrome process, the single tab the
// user acts in, and the steps captured so far. It is not safe for concurrent
// use; the recording loop is strictly sequential.
type Session struct {
	cfg config.CaptureConfig
	log *zap.Logger

	allocCtx    context.Context
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc

	steps []schemas.Step
}

// NewSession launches the browser and verifies it responds before returning.
// The caller must Close the session to terminate the process.
func NewSession(ctx context.Context, cfg config.CaptureConfig, logger *zap.Logger) (*Session, error) {
	s := &Session{cfg: cfg, log: logger.Named("capture")}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(cfg)...)
	s.allocCtx = allocCtx
	s.allocCancel = allocCancel

	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	s.tabCtx = tabCtx
	s.tabCancel = tabCancel

	// The first Run starts the process; use it as a responsiveness probe so a
	// broken Chrome install fails here instead of mid-recording.
	probeCtx, probeCancel := context.WithTimeout(tabCtx, launchProbeTimeout)
	defer probeCancel()
	if err := chromedp.Run(probeCtx, chromedp.Navigate("about:blank")); err != nil {
		s.Close()
		return nil, fmt.Errorf("capture: browser failed to start: %w", err)
	}

	s.log.Info("Recording browser launched.", zap.Bool("headless", cfg.Headless))
	return s, nil
}

// allocatorOptions translates the capture config into chromedp allocator
// flags.
func allocatorOptions(cfg config.CaptureConfig) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		// Required on hardened systems and inside containers.
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	if cfg.Headless {
		opts = append(opts, chromedp.Headless)
	}
	if cfg.DisableGPU {
		opts = append(opts, chromedp.DisableGPU)
	}
	if w, h := cfg.Viewport["width"], cfg.Viewport["height"]; w > 0 && h > 0 {
		opts = append(opts, chromedp.WindowSize(w, h))
	}

	// Extra flags from config, with or without the -- prefix; chromedp.Flag
	// adds its own.
	for _, arg := range cfg.Args {
		parts := strings.SplitN(arg, "=", 2)
		name := strings.TrimPrefix(parts[0], "--")
		if len(parts) == 2 {
			opts = append(opts, chromedp.Flag(name, parts[1]))
		} else {
			opts = append(opts, chromedp.Flag(name, true))
		}
	}
	return opts
}

// combineContext derives from the tab context, which carries the CDP target,
// and additionally cancels when the caller's context does.
func combineContext(tab, caller context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(tab)
	go func() {
		select {
		case <-caller.Done():
			cancel()
		case <-combined.Done():
		}
	}()
	return combined, cancel
}

// operationContext builds the context for one browser operation: CDP values
// from the tab, cancellation from the caller, plus an optional timeout.
func (s *Session) operationContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	opCtx, cancel := combineContext(s.tabCtx, ctx)
	if timeout <= 0 {
		return opCtx, cancel
	}
	timed, timedCancel := context.WithTimeout(opCtx, timeout)
	return timed, func() {
		timedCancel()
		cancel()
	}
}

// Navigate loads a URL in the recording tab, waits for the document body,
// then lets the page settle for the configured delay.
func (s *Session) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := s.operationContext(ctx, s.cfg.NavigationTimeout)
	defer cancel()

	s.log.Info("Navigating.", zap.String("url", url))
	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if s.cfg.PostLoadWait > 0 {
		actions = append(actions, chromedp.Sleep(s.cfg.PostLoadWait))
	}
	if err := chromedp.Run(navCtx, actions...); err != nil {
		return fmt.Errorf("capture: navigation to %s failed: %w", url, err)
	}
	return nil
}

// CaptureStep grabs the current screen as a full-quality PNG together with
// the page URL and title, and records it as the next step. Step numbers start
// at zero: the initial state before the user has done anything.
func (s *Session) CaptureStep(ctx context.Context, description string) (schemas.Step, error) {
	opCtx, cancel := s.operationContext(ctx, s.cfg.NavigationTimeout)
	defer cancel()

	var (
		buf      []byte
		location string
		title    string
	)
	err := chromedp.Run(opCtx,
		chromedp.Location(&location),
		chromedp.Title(&title),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return schemas.Step{}, fmt.Errorf("capture: screenshot for step %d failed: %w", len(s.steps), err)
	}

	step := schemas.Step{
		Number:      len(s.steps),
		Description: description,
		URL:         location,
		Title:       title,
	}
	step.AttachImage(buf)
	s.steps = append(s.steps, step)

	s.log.Info("Step captured.",
		zap.Int("step", step.Number),
		zap.String("url", location),
		zap.Int("png_bytes", len(buf)))
	return step, nil
}

// Steps returns a copy of everything captured so far.
func (s *Session) Steps() []schemas.Step {
	out := make([]schemas.Step, len(s.steps))
	copy(out, s.steps)
	return out
}

// Workflow assembles the captured steps into a persistable workflow with a
// fresh identifier.
func (s *Session) Workflow(name, description string) *schemas.Workflow {
	return &schemas.Workflow{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
		Steps:       s.Steps(),
	}
}

// Close tears down the tab and the browser process. Safe to call more than
// once.
func (s *Session) Close() {
	if s.tabCancel != nil {
		s.tabCancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
}
