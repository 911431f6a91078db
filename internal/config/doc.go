// Package config loads pipeline configuration from the environment.
//
// All options use the MYSIDELINE_ prefix. The sync master gate, the scraping
// gate, and the mock switch are independent: sync can be enabled while
// scraping is stubbed out, which is how CI exercises the pipeline without a
// browser.
package config
