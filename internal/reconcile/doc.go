// Package reconcile matches extracted events against stored carnivals and
// applies the pipeline's write rules.
//
// Matching is title-first: the title as first seen on MySideline is the
// canonical key for pipeline-created rows, with date and address as
// disambiguators for re-titled events. Writes never destroy information:
// an existing non-empty field is never overwritten; only empty fields are
// filled from freshly extracted values, which is what lets humans claim and
// edit pipeline rows without the next sync stomping their work.
package reconcile
