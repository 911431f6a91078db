// Package event provides types and functions for events extracted from the
// MySideline search page.
//
// The event package handles the transient extracted-event representation, the
// title/date parser that strips embedded dates from carnival titles, the
// Australian state lookup, and the relevance classifier that decides whether
// an extracted card is a Masters carnival worth keeping.
package event
