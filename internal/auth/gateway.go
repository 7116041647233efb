// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package auth

import "context"

// Gateway defines the remote identity operations the client depends on.
// Each call is a single round trip: no caching and no retries.
type Gateway interface {
	// Login exchanges credentials for a session token.
	// Fails with AUTH_INVALID_CREDENTIALS or AUTH_TRANSPORT.
	Login(ctx context.Context, creds Credentials) (SessionToken, error)

	// Signup creates an account and returns its session token. The account is
	// created server-side, so callers must never retry it automatically.
	// Fails with AUTH_VALIDATION_REJECTED or AUTH_TRANSPORT.
	Signup(ctx context.Context, input SignupInput) (SessionToken, error)

	// Authenticate resolves a token to the profile it belongs to.
	// Fails with AUTH_INVALID_TOKEN or AUTH_TRANSPORT.
	Authenticate(ctx context.Context, token SessionToken) (UserProfile, error)

	// UsernameAvailable returns true if no account uses username.
	UsernameAvailable(ctx context.Context, username string) (bool, error)

	// EmailAvailable returns true if no account uses email.
	EmailAvailable(ctx context.Context, email string) (bool, error)
}
