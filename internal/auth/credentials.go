// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package auth

// Credentials are submitted by the login form. Login may be a username or an email.
type Credentials struct {
	Login    string
	Password string
}

// SignupInput is submitted by the signup form.
type SignupInput struct {
	Username string
	Email    string
	Password string
}
