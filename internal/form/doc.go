// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

// Package form implements the login and signup forms. Each form instance owns
// a one-shot SubmissionGuard, so repeated submit events on the same instance
// reach the identity service at most once.
package form
