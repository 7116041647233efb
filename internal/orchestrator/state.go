// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package orchestrator

// State is the authentication state of the client.
type State int

// Authentication states.
const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}
