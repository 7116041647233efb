// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

// Package auth defines the client-side authentication domain for Quill.
//
// # Domain Types
//
// Credentials and SignupInput are transient submission payloads. A Session
// pairs an opaque SessionToken with the UserProfile returned by the identity
// service; it is created with NewSession, which rejects half-populated values:
//   - NewSession - creates a present Session from a token and hydrated profile
//   - Session{} - the absent session (anonymous user)
//
// # Gateway
//
// Gateway abstracts the remote identity service. Implementations live in
// other packages (see internal/grpc); tests substitute doubles.
//
// # Errors
//
// Errors carry samber/oops codes. CodeOf and Message extract the code and the
// user-facing message regardless of how deeply the error was wrapped.
package auth
