// Package scraper drives a headless browser against the MySideline search
// page and extracts carnival events from its result cards.
//
// The search page is a Vue.js single-page app with nondeterministic
// hydration, so the driver walks an explicit sequence of stability stages
// (structure, script init, content growth, search results, validation,
// stabilization, meaningful content), each with a bounded timeout. A stage
// timing out is logged and skipped, never fatal: extraction proceeds and the
// downstream classifier filters whatever garbage a half-hydrated page
// produced.
//
// Cards are processed strictly one at a time. Per card the extractor expands
// the details section, reads the fields from the expanded HTML with goquery,
// and resolves the registration URL through an ordered fallback chain:
// static button attributes, dynamic interception of window.open and click
// handlers, and finally arming popup/navigation listeners around a real
// click.
package scraper
