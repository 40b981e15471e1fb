// Package workers runs batches of hide operations off the interactive path.
//
// Only one batch runs at a time; a second Start while one is in flight
// returns ErrBusy. Each item is hidden and saved before the next one starts,
// so an interrupted batch leaves processed items recorded and the rest
// untouched.
package workers
