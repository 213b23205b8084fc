// Package watcher runs the poll-check-notify loop.
//
// One cycle is: fetch homework statuses from the watermark, validate the
// payload, relay the newest verdict, advance the watermark, then wait the
// fixed interval. Every cycle ends in the wait, whether it succeeded or
// failed; context cancellation is the only early exit.
//
// Cycle errors are logged and relayed to the chat, but an error text
// identical to the previously sent one is suppressed so a persistent outage
// produces exactly one message until the condition changes or clears.
package watcher
