package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/oldmanfooty/carnival-sync/internal/config"
	"github.com/oldmanfooty/carnival-sync/internal/event"
	"github.com/oldmanfooty/carnival-sync/internal/logger"
)

// cardDelay is the pause between cards. The page's expand/collapse
// animations need a beat to settle before the next card is touched.
const cardDelay = time.Second

// jsCards returns the card elements for the current result list. The
// selectors are tried broadest-last; MySideline renders element-ui cards.
const jsCards = `(() => {
	const selectors = ['.el-card', '.club-card', '.search-result-card', '.card'];
	for (const sel of selectors) {
		const nodes = Array.from(document.querySelectorAll(sel));
		if (nodes.length > 0) return nodes;
	}
	return [];
})()`

// Scraper drives the browser session that extracts carnival events.
type Scraper struct {
	cfg *config.Config
}

// New creates a Scraper for the given configuration.
func New(cfg *config.Config) *Scraper {
	return &Scraper{cfg: cfg}
}

// ScrapeEvents fetches all relevant carnival events from the configured
// MySideline search page.
//
// With scraping disabled it returns an empty slice without launching a
// browser; with mock mode on it returns deterministic synthetic events.
// In development mode a failed scrape falls back to mock events so the rest
// of the pipeline stays exercisable without the third-party page.
func (s *Scraper) ScrapeEvents(ctx context.Context) ([]*event.Event, error) {
	if !s.cfg.ScrapingEnabled {
		logger.Info("Scraping disabled, returning no events", nil)
		return []*event.Event{}, nil
	}
	if s.cfg.UseMock {
		logger.Info("Mock mode enabled, returning synthetic events", nil)
		return MockEvents(time.Now()), nil
	}

	events, err := s.scrapeLive(ctx)
	if err != nil && s.cfg.Development {
		logger.Warn("Scrape failed in development mode, falling back to mock events", logger.Fields{
			"error": err.Error(),
		})
		return MockEvents(time.Now()), nil
	}
	return events, err
}

// scrapeLive owns the browser session for one run: the session is created
// here and torn down on every exit path.
func (s *Scraper) scrapeLive(ctx context.Context) ([]*event.Event, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !s.cfg.Development),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(1366, 900),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	started := time.Now()
	logger.Info("Navigating to MySideline search page", logger.Fields{"url": s.cfg.URL})

	navCtx, cancelNav := context.WithTimeout(browserCtx, s.cfg.RequestTimeout)
	defer cancelNav()
	if err := chromedp.Run(navCtx, chromedp.Navigate(s.cfg.URL)); err != nil {
		return nil, fmt.Errorf("navigating to search page: %w", err)
	}

	s.waitForStablePage(browserCtx)

	count, err := s.cardCount(browserCtx)
	if err != nil {
		return nil, fmt.Errorf("counting result cards: %w", err)
	}
	logger.Info("Search results enumerated", logger.Fields{"cards": count})

	events := make([]*event.Event, 0, count)
	for i := 0; i < count; i++ {
		evt, err := s.extractCard(browserCtx, i)
		if err != nil {
			// One broken card must not sink the run.
			logger.Warn("Card extraction failed", logger.Fields{
				"card":  i,
				"error": err.Error(),
			})
			logger.IncrCounter("scrape.cards.failed")
			continue
		}
		if evt == nil {
			logger.IncrCounter("scrape.cards.dropped")
			continue
		}
		events = append(events, evt)
		logger.IncrCounter("scrape.cards.extracted")

		if i < count-1 {
			if err := sleepCtx(browserCtx, cardDelay); err != nil {
				return events, fmt.Errorf("waiting between cards: %w", err)
			}
		}
	}

	logger.RecordTiming("scrape.total", time.Since(started))
	logger.Info("Scrape complete", logger.Fields{
		"cards":  count,
		"events": len(events),
	})
	return events, nil
}

// cardCount returns how many result cards the page currently shows.
func (s *Scraper) cardCount(ctx context.Context) (int, error) {
	var count int
	err := chromedp.Run(ctx, chromedp.Evaluate(jsCards+`.length`, &count))
	if err != nil {
		return 0, err
	}
	return count, nil
}

// evalBool evaluates a JS expression expected to yield a boolean.
func evalBool(ctx context.Context, expr string) (bool, error) {
	var result bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &result)); err != nil {
		return false, err
	}
	return result, nil
}

// evalInt evaluates a JS expression expected to yield an integer.
func evalInt(ctx context.Context, expr string) (int, error) {
	var result int
	if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &result)); err != nil {
		return 0, err
	}
	return result, nil
}

// evalString evaluates a JS expression expected to yield a string.
func evalString(ctx context.Context, expr string) (string, error) {
	var result string
	if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &result)); err != nil {
		return "", err
	}
	return result, nil
}

// sleepCtx sleeps for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
