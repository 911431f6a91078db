package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oldmanfooty/carnival-sync/internal/logger"
)

// The search page hydrates in fits and starts, so readiness is modelled as
// explicit sequential stages. Every stage fails soft: a timeout is logged
// and the driver moves on, trusting the classifier to filter whatever a
// half-loaded page yields.

const (
	pollInterval = 500 * time.Millisecond

	// Content-growth polling (stage 3): every 3s, up to 10 polls, stable
	// after 3 consecutive polls with identical length above the floor.
	growthInterval = 3 * time.Second
	growthPolls    = 10
	growthStreak   = 3

	// Stabilization polling (stage 6): every 2s, up to 15 polls, stable
	// after 4 consecutive polls differing by fewer than 100 characters.
	settleInterval = 2 * time.Second
	settlePolls    = 15
	settleStreak   = 4
	settleDelta    = 100

	// minStableLength is the body-text floor below which the page cannot
	// be considered loaded at all.
	minStableLength = 1000
)

var errNotStable = errors.New("content did not stabilize")

type stage struct {
	name    string
	timeout time.Duration
	run     func(context.Context) error
}

// waitForStablePage walks the readiness stages in order. Nothing here
// aborts the scrape; the worst case is a longer wait followed by garbage
// that the extractor and classifier drop.
func (s *Scraper) waitForStablePage(ctx context.Context) {
	stages := []stage{
		{"structure", 30 * time.Second, s.waitStructure},
		{"js-init", 30 * time.Second, s.waitJSInit},
		{"content-growth", 45 * time.Second, s.waitContentGrowth},
		{"search-results", 60 * time.Second, s.waitSearchResults},
		{"validation", 30 * time.Second, s.validatePage},
		{"stabilization", 45 * time.Second, s.waitStabilization},
		{"meaningful-content", 30 * time.Second, s.waitMeaningfulContent},
	}

	for _, st := range stages {
		started := time.Now()
		stageCtx, cancel := context.WithTimeout(ctx, st.timeout)
		err := st.run(stageCtx)
		cancel()

		logger.RecordTiming("scrape.stage."+st.name, time.Since(started))
		if err != nil {
			logger.Warn("Stability stage did not settle, continuing", logger.Fields{
				"stage": st.name,
				"error": err.Error(),
			})
			continue
		}
		logger.Debug("Stability stage settled", logger.Fields{"stage": st.name})
	}
}

// waitStructure waits for a body and a minimally populated DOM.
func (s *Scraper) waitStructure(ctx context.Context) error {
	return pollUntil(ctx, pollInterval, func(ctx context.Context) (bool, error) {
		return evalBool(ctx,
			`document.body !== null && document.getElementsByTagName('*').length >= 50`)
	})
}

// waitJSInit waits until the app has rendered interactive elements and
// enough text that scripts have clearly run.
func (s *Scraper) waitJSInit(ctx context.Context) error {
	return pollUntil(ctx, pollInterval, func(ctx context.Context) (bool, error) {
		return evalBool(ctx, `
			document.querySelectorAll('button, a, input, select, textarea').length >= 5 &&
			(document.body.innerText || '').length >= 500 &&
			document.getElementsByTagName('script').length >= 1`)
	})
}

// waitContentGrowth polls body text length until it stops growing.
func (s *Scraper) waitContentGrowth(ctx context.Context) error {
	tracker := newStabilityTracker(growthStreak, 0, minStableLength)
	return s.pollLength(ctx, tracker, growthInterval, growthPolls)
}

// waitStabilization is a finer-grained settle pass run after the result
// cards are present, tolerating small mutations from late hydration.
func (s *Scraper) waitStabilization(ctx context.Context) error {
	tracker := newStabilityTracker(settleStreak, settleDelta-1, minStableLength)
	return s.pollLength(ctx, tracker, settleInterval, settlePolls)
}

func (s *Scraper) pollLength(ctx context.Context, tracker *stabilityTracker, interval time.Duration, maxPolls int) error {
	for i := 0; i < maxPolls; i++ {
		length, err := evalInt(ctx, `(document.body.innerText || '').length`)
		if err == nil && tracker.observe(length) {
			return nil
		}
		if err := sleepCtx(ctx, interval); err != nil {
			return err
		}
	}
	return errNotStable
}

// waitSearchResults waits for the page title to look like the club finder
// and then for at least three cards mentioning Masters vocabulary.
func (s *Scraper) waitSearchResults(ctx context.Context) error {
	err := pollUntil(ctx, pollInterval, func(ctx context.Context) (bool, error) {
		return evalBool(ctx,
			`/club finder|mysideline|search/i.test(document.title)`)
	})
	if err != nil {
		return fmt.Errorf("waiting for search title: %w", err)
	}

	return pollUntil(ctx, pollInterval, func(ctx context.Context) (bool, error) {
		count, err := evalInt(ctx, jsCards+
			`.filter(c => /masters|rugby|league|tournament|carnival|championship/i.test(c.textContent || '')).length`)
		if err != nil {
			return false, err
		}
		return count >= 3, nil
	})
}

// validatePage confirms the page looks like a real result list: a title,
// meaningful body text, and either navigation or cards.
func (s *Scraper) validatePage(ctx context.Context) error {
	ok, err := evalBool(ctx, `
		document.title.length > 0 &&
		(document.body.innerText || '').trim().length > 0 &&
		(document.querySelectorAll('nav, [role="navigation"]').length > 0 ||
		 `+jsCards+`.length > 0)`)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("page failed validation")
	}
	return nil
}

// waitMeaningfulContent is the final gate: enough text, enough interactive
// elements, enough structure, and Masters-related vocabulary on the page.
func (s *Scraper) waitMeaningfulContent(ctx context.Context) error {
	return pollUntil(ctx, pollInterval, func(ctx context.Context) (bool, error) {
		return evalBool(ctx, `
			(document.body.innerText || '').length >= 2000 &&
			document.querySelectorAll('button, a, input, select, textarea').length >= 10 &&
			document.querySelectorAll('div, section, article').length >= 20 &&
			/masters|rugby league|carnival/i.test(document.body.innerText || '')`)
	})
}

// pollUntil evaluates cond every interval until it reports true or the
// context expires. Evaluation errors are treated as "not yet": a mid-load
// page can briefly fail to evaluate anything.
func pollUntil(ctx context.Context, interval time.Duration, cond func(context.Context) (bool, error)) error {
	for {
		ok, err := cond(ctx)
		if err == nil && ok {
			return nil
		}
		if err := sleepCtx(ctx, interval); err != nil {
			return err
		}
	}
}

// stabilityTracker decides when a sequence of content-length observations
// has settled: the streak counts consecutive observations within maxDelta
// of the previous one while the length stays above minLength.
type stabilityTracker struct {
	needed    int
	maxDelta  int
	minLength int
	last      int
	seen      bool
	streak    int
}

func newStabilityTracker(needed, maxDelta, minLength int) *stabilityTracker {
	return &stabilityTracker{needed: needed, maxDelta: maxDelta, minLength: minLength}
}

// observe records a length sample and reports whether stability has been
// reached.
func (t *stabilityTracker) observe(length int) bool {
	if t.seen {
		delta := length - t.last
		if delta < 0 {
			delta = -delta
		}
		if delta <= t.maxDelta && length > t.minLength {
			t.streak++
		} else {
			t.streak = 0
		}
	}
	t.last = length
	t.seen = true
	return t.streak >= t.needed
}
