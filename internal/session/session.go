// Package session drives one scrape request end to end: navigate to the
// search page, detect a block interstitial, wait for a human to clear it,
// then paginate and extract until the page budget is spent.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopcrawl/shopcrawl/internal/detect"
	"github.com/shopcrawl/shopcrawl/internal/extract"
	"github.com/shopcrawl/shopcrawl/internal/sites"
)

// Page is the browser capability a session consumes. The production
// implementation lives in internal/browser; tests substitute a fake.
// Interaction methods report failure as a value so callers can move on to
// the next selector candidate instead of aborting.
type Page interface {
	Navigate(url string) error
	// Content returns the current rendered markup.
	Content() (string, error)
	// ClickFirstVisible clicks the first visible element matching the
	// selector and reports whether a click happened.
	ClickFirstVisible(selector string) (bool, error)
	// FirstAttr returns the given attribute of the first element matching
	// the selector.
	FirstAttr(selector, attr string) (string, bool)
	// ScrollStep scrolls the viewport one increment towards the bottom.
	ScrollStep() error
	PressKey(key string) error
	Screenshot() ([]byte, error)
	Close() error
}

// Phase is the coordinator's current state.
type Phase string

const (
	PhaseNavigating     Phase = "navigating"
	PhaseDetectingBlock Phase = "detecting_block"
	PhaseAwaitingHuman  Phase = "awaiting_human"
	PhasePaginating     Phase = "paginating"
	PhaseDone           Phase = "done"
)

// Config tunes one session. Zero values fall back to the defaults below.
type Config struct {
	PageBudget   int
	WaitCeiling  time.Duration // how long to wait for manual CAPTCHA/login solving
	PollInterval time.Duration
	ScrollSteps  int
	ScrollPause  time.Duration
	SettleDelay  time.Duration // pause after a successful next-page advance
	SnapshotDir  string        // where block snapshots are written

	// Notify delivers the operator-facing notice when a block is detected.
	Notify func(msg string)
	// OnPage is called after each page has been extracted.
	OnPage func(pageIndex int, items []extract.Listing)
}

const (
	DefaultPageBudget   = 2
	DefaultWaitCeiling  = 300 * time.Second
	DefaultPollInterval = 2 * time.Second
	DefaultScrollSteps  = 6
	DefaultScrollPause  = 600 * time.Millisecond
	DefaultSettleDelay  = 1200 * time.Millisecond
)

func (c Config) withDefaults() Config {
	if c.PageBudget <= 0 {
		c.PageBudget = DefaultPageBudget
	}
	if c.WaitCeiling <= 0 {
		c.WaitCeiling = DefaultWaitCeiling
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.ScrollSteps <= 0 {
		c.ScrollSteps = DefaultScrollSteps
	}
	if c.ScrollPause <= 0 {
		c.ScrollPause = DefaultScrollPause
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = DefaultSettleDelay
	}
	return c
}

// Session owns one page handle for one (site, query) request. It is not
// safe for concurrent use; one session drives one browser page end to end.
type Session struct {
	page     Page
	site     *sites.Site
	detector *detect.Detector
	cfg      Config
	logger   *slog.Logger

	phase     Phase
	pageIndex int
	collected []extract.Listing
}

// New creates a session. The session takes ownership of the page and closes
// it when Run returns.
func New(page Page, site *sites.Site, detector *detect.Detector, cfg Config, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		page:     page,
		site:     site,
		detector: detector,
		cfg:      cfg.withDefaults(),
		logger:   logger.With("component", "session", "site", site.ID),
		phase:    PhaseNavigating,
	}
}

// Phase returns the coordinator's current state.
func (s *Session) Phase() Phase {
	return s.phase
}

// PagesParsed returns how many pages have been extracted so far.
func (s *Session) PagesParsed() int {
	return s.pageIndex
}

// Run executes the scrape and returns everything collected. A block that
// persists past the intervention window yields an empty result set rather
// than an error; the caller still writes its output file. The page handle
// is released on every exit path.
func (s *Session) Run(ctx context.Context, query string) []extract.Listing {
	defer func() {
		if err := s.page.Close(); err != nil {
			s.logger.Warn("failed to close page", "error", err)
		}
	}()

	s.phase = PhaseNavigating
	target := s.site.SearchFor(query)
	s.logger.Info("opening search page", "url", target)
	if err := s.page.Navigate(target); err != nil {
		// the page may still hold partially loaded content worth inspecting
		s.logger.Warn("navigation failed, continuing", "error", err)
	}

	if !s.sleep(ctx, time.Second) {
		return s.collected
	}
	s.dismissModal()
	s.gradualScroll(ctx)

	s.phase = PhaseDetectingBlock
	markup := s.content()
	if s.detector.Blocked(markup) {
		s.logger.Warn("site appears blocked, needs verification or login")
		s.saveSnapshot(query, markup)
		if s.cfg.Notify != nil {
			s.cfg.Notify(fmt.Sprintf(
				"ACTION REQUIRED: %s appears blocked (CAPTCHA/login). Solve it in the browser window; scraping resumes automatically (waiting up to %s).",
				s.site.DisplayName, s.cfg.WaitCeiling))
		}

		s.phase = PhaseAwaitingHuman
		s.awaitHuman(ctx)

		// the wait-loop heuristic is approximate; this re-check is authoritative
		if s.detector.Blocked(s.content()) {
			s.logger.Error("still blocked after intervention window, aborting session")
			s.phase = PhaseDone
			return s.collected
		}
		s.logger.Info("block cleared, resuming")
	}

	s.phase = PhasePaginating
	s.paginate(ctx)
	s.phase = PhaseDone
	return s.collected
}

// awaitHuman polls until the wait ceiling elapses, the context is cancelled
// or a product container selector's literal text shows up in the raw markup
// (a cheap "likely resolved" signal, not a structural match).
func (s *Session) awaitHuman(ctx context.Context) {
	deadline := time.Now().Add(s.cfg.WaitCeiling)
	for time.Now().Before(deadline) {
		if !s.sleep(ctx, s.cfg.PollInterval) {
			s.logger.Info("intervention wait interrupted")
			return
		}
		markup := s.content()
		for _, sel := range s.site.Selectors.ProductContainer {
			if strings.Contains(markup, sel) {
				s.logger.Info("product container selector seen in page source, likely resolved")
				return
			}
		}
	}
	s.logger.Warn("intervention window elapsed", "ceiling", s.cfg.WaitCeiling)
}

// paginate extracts the current page and advances until the budget is spent
// or no next-page control can be used.
func (s *Session) paginate(ctx context.Context) {
	for s.pageIndex < s.cfg.PageBudget {
		if ctx.Err() != nil {
			s.logger.Info("pagination cancelled")
			return
		}
		s.logger.Info("parsing page", "page", s.pageIndex+1)
		s.gradualScroll(ctx)

		items := extract.Products(s.content(), s.site)
		s.logger.Info("extracted listings from page", "page", s.pageIndex+1, "count", len(items))
		s.collected = append(s.collected, items...)
		if s.cfg.OnPage != nil {
			s.cfg.OnPage(s.pageIndex, items)
		}

		if !s.advance() {
			s.logger.Info("no next page control found, stopping pagination")
			return
		}
		s.pageIndex++
		if !s.sleep(ctx, s.cfg.SettleDelay) {
			return
		}
	}
	s.logger.Info("page budget reached", "pages", s.pageIndex)
}

// advance tries the next-page candidates in order: click the first visible
// match, or follow its href when clicking is not possible. At most one
// advance happens per call.
func (s *Session) advance() bool {
	for _, sel := range s.site.Selectors.NextPage {
		clicked, err := s.page.ClickFirstVisible(sel)
		if err != nil {
			s.logger.Debug("next page click failed, trying fallback", "selector", sel, "error", err)
		}
		if clicked {
			s.logger.Info("clicked next page control", "selector", sel)
			return true
		}
		if href, ok := s.page.FirstAttr(sel, "href"); ok && href != "" {
			target := extract.ResolveURL(href, s.site.BaseOrigin())
			if err := s.page.Navigate(target); err != nil {
				s.logger.Warn("failed to follow next page link", "url", target, "error", err)
				continue
			}
			s.logger.Info("followed next page link", "url", target)
			return true
		}
	}
	return false
}

// dismissModal best-effort closes a login/cookie overlay. Failures are
// ignored; a blocking overlay will surface as a block or empty extraction.
func (s *Session) dismissModal() {
	for _, sel := range s.site.Selectors.DismissModal {
		clicked, err := s.page.ClickFirstVisible(sel)
		if err == nil && clicked {
			s.logger.Debug("dismissed overlay", "selector", sel)
			return
		}
	}
	if err := s.page.PressKey("Escape"); err != nil {
		s.logger.Debug("escape dismiss failed", "error", err)
	}
}

// gradualScroll nudges the page down in fixed increments to trigger
// lazy-loaded content.
func (s *Session) gradualScroll(ctx context.Context) {
	for i := 0; i < s.cfg.ScrollSteps; i++ {
		if err := s.page.ScrollStep(); err != nil {
			s.logger.Debug("scroll step failed", "error", err)
			return
		}
		if !s.sleep(ctx, s.cfg.ScrollPause) {
			return
		}
	}
}

func (s *Session) content() string {
	markup, err := s.page.Content()
	if err != nil {
		s.logger.Warn("failed to read page content", "error", err)
		return ""
	}
	return markup
}

// saveSnapshot persists the raw markup and a screenshot for post-mortem
// diagnosis of a block page. Failures are logged, never fatal.
func (s *Session) saveSnapshot(query, markup string) {
	prefix := fmt.Sprintf("blocked_%s_%s", s.site.ID, sanitize(query))
	if s.cfg.SnapshotDir != "" {
		if err := os.MkdirAll(s.cfg.SnapshotDir, 0o755); err != nil {
			s.logger.Warn("could not create snapshot dir", "dir", s.cfg.SnapshotDir, "error", err)
			return
		}
	}
	htmlPath := filepath.Join(s.cfg.SnapshotDir, prefix+".html")
	if err := os.WriteFile(htmlPath, []byte(markup), 0o644); err != nil {
		s.logger.Warn("could not save markup snapshot", "path", htmlPath, "error", err)
	}
	shot, err := s.page.Screenshot()
	if err != nil {
		s.logger.Warn("could not capture screenshot", "error", err)
		return
	}
	pngPath := filepath.Join(s.cfg.SnapshotDir, prefix+".png")
	if err := os.WriteFile(pngPath, shot, 0o644); err != nil {
		s.logger.Warn("could not save screenshot", "path", pngPath, "error", err)
		return
	}
	s.logger.Info("saved block snapshots", "html", htmlPath, "png", pngPath)
}

// sleep waits for d and reports false if the context was cancelled first.
func (s *Session) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func sanitize(q string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, q)
}
