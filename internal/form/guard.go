// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package form

import "sync/atomic"

// SubmissionGuard runs its action at most once. Once fired it never resets;
// a new form instance gets a new guard.
type SubmissionGuard struct {
	fired atomic.Bool
}

// Do runs fn if the guard has not fired yet and reports whether it ran.
// Concurrent callers race on a compare-and-swap, so exactly one wins.
func (g *SubmissionGuard) Do(fn func()) bool {
	if !g.fired.CompareAndSwap(false, true) {
		return false
	}
	fn()
	return true
}

// Fired reports whether the guard has been consumed.
func (g *SubmissionGuard) Fired() bool {
	return g.fired.Load()
}
