// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package form

import "errors"

// Error codes for form submissions.
const (
	CodeSubmitBlocked    = "FORM_SUBMIT_BLOCKED"
	CodeAlreadySubmitted = "FORM_ALREADY_SUBMITTED"
)

var (
	// ErrAlreadySubmitted is returned for a submit event swallowed by the guard.
	ErrAlreadySubmitted = errors.New("form already submitted")
	// ErrSubmitBlocked is returned when signup fields fail validation.
	ErrSubmitBlocked = errors.New("form has invalid fields")
)
