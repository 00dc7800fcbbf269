// Package rt provides scheduling primitives that do not depend on how tasks
// are executed underneath: one-shot delays, periodic intervals with a
// configurable missed-tick policy, and small task helpers.
//
// Everything here suspends only the calling goroutine. Handles own a single
// runtime timer which is released by Stop or by ctx cancellation.
package rt
