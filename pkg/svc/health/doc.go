// Package health waits for an HTTP endpoint to report healthy.
//
// Polling is fixed-interval with a bounded number of attempts: at most Attempts requests
// and Attempts-1 pauses, so a wait never runs longer than Attempts x Interval plus the
// time spent in requests.
package health
