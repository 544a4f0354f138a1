// Package demo is a Bubble Tea application that exercises the usekit
// hooks in a terminal.
//
// The terminal stands in for the browser window: mouse events become
// pointer events, focus reports become focus and blur, and the host loop
// is drained from the Bubble Tea goroutine so hook state is only touched
// there. Each story is a small component mounted under its own owner.
package demo
