// Package crawler implements the bracket-to-result pipeline: the bracket
// extractor, the URL picker, the HTML page parser, and the scraper that turns
// a URL into a Result.
package crawler
