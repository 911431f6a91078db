package scraper

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"github.com/oldmanfooty/carnival-sync/internal/logger"
)

// The registration URL is only exposed through runtime handlers on the
// page, so resolution is an ordered fallback chain: static button
// attributes, dynamic interception of window.open and click handlers, and
// finally a real click with popup/navigation listeners armed. Each strategy
// restores any global overrides it installs.

// eventDeadline bounds the popup/navigation strategy.
const eventDeadline = 10 * time.Second

// interceptSettle is how long captured handlers get to fire after a click.
const interceptSettle = 1500 * time.Millisecond

var errNoRegistrationURL = errors.New("no registration url found")

// registerLabel matches the buttons worth clicking.
const registerLabel = `register|join|sign\s*up`

var (
	windowOpenPattern   = regexp.MustCompile(`window\.open\(\s*['"]([^'"]+)['"]`)
	locationHrefPattern = regexp.MustCompile(`location\.href\s*=\s*['"]([^'"]+)['"]`)
)

// capture is one URL observed by the dynamic interception strategy.
type capture struct {
	Type string  `json:"type"` // window.open, vue-data, data-attribute, location.href
	URL  string  `json:"url"`
	At   float64 `json:"at"` // Date.now() milliseconds
}

// capturePriority ranks capture types; lower is better.
var capturePriority = map[string]int{
	"window.open":    0,
	"vue-data":       1,
	"data-attribute": 2,
	"location.href":  3,
}

// resolveRegistrationURL tries the strategies in order, stopping at the
// first that yields a URL.
func (s *Scraper) resolveRegistrationURL(ctx context.Context, idx int) (string, error) {
	if url, err := s.registrationFromAttributes(ctx, idx); err == nil && url != "" {
		return url, nil
	}
	if url, err := s.registrationFromInterception(ctx, idx); err == nil && url != "" {
		return url, nil
	}
	return s.registrationFromEvents(ctx, idx)
}

// registrationFromAttributes reads the URL straight off the register
// button: data attributes, a real href, or a parseable onclick handler.
func (s *Scraper) registrationFromAttributes(ctx context.Context, idx int) (string, error) {
	var attrs []map[string]string
	err := chromedp.Run(ctx, chromedp.Evaluate(fmt.Sprintf(`(() => {
		const card = %s[%d];
		if (!card) return [];
		return Array.from(card.querySelectorAll('button, a'))
			.filter(b => /%s/i.test(b.textContent || ''))
			.map(b => {
				const out = {};
				for (const a of b.attributes) out[a.name] = a.value;
				return out;
			});
	})()`, jsCards, idx, registerLabel), &attrs))
	if err != nil {
		return "", fmt.Errorf("reading register button attributes: %w", err)
	}

	for _, buttonAttrs := range attrs {
		if url := urlFromAttributes(buttonAttrs); url != "" {
			return url, nil
		}
	}
	return "", errNoRegistrationURL
}

// urlFromAttributes picks a registration URL out of one button's attribute
// map: the data attributes in priority order, then href, then the onclick
// handler body.
func urlFromAttributes(attrs map[string]string) string {
	for _, name := range []string{"data-url", "data-href", "data-link", "data-registration-url", "href"} {
		if url := attrs[name]; isHTTPURL(url) {
			return url
		}
	}
	return parseOnclickURL(attrs["onclick"])
}

// parseOnclickURL extracts a URL from an inline click handler of the form
// window.open("…") or location.href = "…".
func parseOnclickURL(onclick string) string {
	if onclick == "" {
		return ""
	}
	if m := windowOpenPattern.FindStringSubmatch(onclick); m != nil && isHTTPURL(m[1]) {
		return m[1]
	}
	if m := locationHrefPattern.FindStringSubmatch(onclick); m != nil && isHTTPURL(m[1]) {
		return m[1]
	}
	return ""
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// registrationFromInterception overrides window.open, installs a
// capture-phase click listener that records URLs from Vue component data
// and data attributes, clicks up to three visible register buttons, and
// ranks whatever was captured. window.open is restored before returning.
func (s *Scraper) registrationFromInterception(ctx context.Context, idx int) (string, error) {
	install := `(() => {
		window.__msCaptured = [];
		if (!window.__msOriginalOpen) {
			window.__msOriginalOpen = window.open;
		}
		window.open = function(url) {
			if (url) window.__msCaptured.push({type: 'window.open', url: String(url), at: Date.now()});
			return null;
		};
		try {
			// Location is non-configurable in most browsers; this only works
			// where the page has already shimmed it.
			Object.defineProperty(window.location, 'href', {
				set(url) {
					window.__msCaptured.push({type: 'location.href', url: String(url), at: Date.now()});
				},
			});
		} catch (e) {}
		if (!window.__msClickListener) {
			window.__msClickListener = (e) => {
				const btn = e.target && e.target.closest ? e.target.closest('button, a') : null;
				if (!btn) return;
				const vue = btn.__vue__;
				if (vue && vue.$data) {
					for (const value of Object.values(vue.$data)) {
						if (typeof value === 'string' && /^https?:/.test(value)) {
							window.__msCaptured.push({type: 'vue-data', url: value, at: Date.now()});
						}
					}
				}
				for (const a of btn.attributes) {
					if (a.name.indexOf('data-') === 0 && /^https?:/.test(a.value)) {
						window.__msCaptured.push({type: 'data-attribute', url: a.value, at: Date.now()});
					}
				}
			};
			document.addEventListener('click', window.__msClickListener, true);
		}
		return true;
	})()`

	if _, err := evalBool(ctx, install); err != nil {
		return "", fmt.Errorf("installing interception hooks: %w", err)
	}
	defer s.removeInterception(ctx)

	clicked, err := evalInt(ctx, fmt.Sprintf(`(() => {
		const card = %s[%d];
		if (!card) return 0;
		const buttons = Array.from(card.querySelectorAll('button, a'))
			.filter(b => /%s/i.test(b.textContent || '') && b.offsetParent !== null)
			.slice(0, 3);
		buttons.forEach(b => b.click());
		return buttons.length;
	})()`, jsCards, idx, registerLabel))
	if err != nil {
		return "", fmt.Errorf("clicking register buttons: %w", err)
	}
	if clicked == 0 {
		return "", errNoRegistrationURL
	}

	if err := sleepCtx(ctx, interceptSettle); err != nil {
		return "", err
	}

	var captures []capture
	if err := chromedp.Run(ctx, chromedp.Evaluate(`window.__msCaptured || []`, &captures)); err != nil {
		return "", fmt.Errorf("reading captured urls: %w", err)
	}

	if url := rankCaptures(captures); url != "" {
		return url, nil
	}
	return "", errNoRegistrationURL
}

// removeInterception restores window.open and detaches the click listener.
func (s *Scraper) removeInterception(ctx context.Context) {
	_, err := evalBool(ctx, `(() => {
		if (window.__msOriginalOpen) window.open = window.__msOriginalOpen;
		if (window.__msClickListener) {
			document.removeEventListener('click', window.__msClickListener, true);
			delete window.__msClickListener;
		}
		delete window.__msCaptured;
		return true;
	})()`)
	if err != nil {
		logger.Debug("Failed to remove interception hooks", logger.Fields{"error": err.Error()})
	}
}

// rankCaptures picks the best captured URL: capture type first
// (window.open beats Vue data beats data attributes beats location.href),
// most recent within a type.
func rankCaptures(captures []capture) string {
	valid := make([]capture, 0, len(captures))
	for _, c := range captures {
		if isHTTPURL(c.URL) {
			valid = append(valid, c)
		}
	}
	if len(valid) == 0 {
		return ""
	}

	sort.SliceStable(valid, func(i, j int) bool {
		pi, pj := priorityOf(valid[i].Type), priorityOf(valid[j].Type)
		if pi != pj {
			return pi < pj
		}
		return valid[i].At > valid[j].At
	})
	return valid[0].URL
}

func priorityOf(captureType string) int {
	if p, ok := capturePriority[captureType]; ok {
		return p
	}
	return len(capturePriority)
}

// registrationFromEvents arms a popup listener and a navigation check,
// clicks the register button, and takes whichever fires first. A popup is
// closed after its URL is read; a navigation is undone with history back so
// the run can continue on the search page.
func (s *Scraper) registrationFromEvents(ctx context.Context, idx int) (string, error) {
	var before string
	if err := chromedp.Run(ctx, chromedp.Location(&before)); err != nil {
		return "", fmt.Errorf("reading current location: %w", err)
	}

	popupCh := chromedp.WaitNewTarget(ctx, func(info *target.Info) bool {
		return info.Type == "page" && info.OpenerID != ""
	})

	clicked, err := evalInt(ctx, fmt.Sprintf(`(() => {
		const card = %s[%d];
		if (!card) return 0;
		const button = Array.from(card.querySelectorAll('button, a'))
			.find(b => /%s/i.test(b.textContent || '') && b.offsetParent !== null);
		if (!button) return 0;
		button.click();
		return 1;
	})()`, jsCards, idx, registerLabel))
	if err != nil {
		return "", fmt.Errorf("clicking register button: %w", err)
	}
	if clicked == 0 {
		return "", errNoRegistrationURL
	}

	deadline := time.NewTimer(eventDeadline)
	defer deadline.Stop()
	poll := time.NewTicker(pollInterval)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-deadline.C:
			return "", errNoRegistrationURL
		case targetID := <-popupCh:
			return s.adoptPopup(ctx, targetID)
		case <-poll.C:
			current, err := evalString(ctx, `window.location.href`)
			if err != nil || current == before {
				continue
			}
			// The click navigated this tab; capture and go back.
			if err := chromedp.Run(ctx, chromedp.NavigateBack()); err != nil {
				logger.Warn("Failed to navigate back after registration redirect", logger.Fields{
					"error": err.Error(),
				})
			}
			return current, nil
		}
	}
}

// adoptPopup attaches to a popup target, reads its URL, and closes it.
func (s *Scraper) adoptPopup(ctx context.Context, targetID target.ID) (string, error) {
	popupCtx, cancel := chromedp.NewContext(ctx, chromedp.WithTargetID(targetID))
	var url string
	err := chromedp.Run(popupCtx, chromedp.Location(&url))
	if closeErr := chromedp.Cancel(popupCtx); closeErr != nil {
		logger.Debug("Failed to close registration popup", logger.Fields{"error": closeErr.Error()})
	}
	cancel()
	if err != nil {
		return "", fmt.Errorf("reading popup location: %w", err)
	}
	return url, nil
}
