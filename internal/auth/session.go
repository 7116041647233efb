// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package auth

// SessionToken is the opaque credential issued by the identity service.
// The client never interprets it; it is only replayed to Authenticate.
type SessionToken string

// String redacts the token so it never lands in logs by accident.
func (t SessionToken) String() string {
	if t == "" {
		return ""
	}
	return "[redacted]"
}

// UserProfile is the identity returned by Authenticate. It is trusted only
// after a successful Authenticate call.
type UserProfile struct {
	ID       string `json:"id" jsonschema:"minLength=1"`
	Email    string `json:"email"`
	Username string `json:"username" jsonschema:"minLength=1"`
}

// IsZero returns true if no field of the profile is set.
func (p UserProfile) IsZero() bool {
	return p == UserProfile{}
}

// Session is the client-held proof of authentication. The zero value is the
// absent session; a present session always has both a token and a profile.
type Session struct {
	token   SessionToken
	profile UserProfile
}

// NewSession creates a present Session.
// Returns SESSION_INVARIANT_VIOLATION if the token or the profile is missing.
func NewSession(token SessionToken, profile UserProfile) (Session, error) {
	if token == "" {
		return Session{}, InvariantViolation("session token cannot be empty")
	}
	if profile.IsZero() {
		return Session{}, InvariantViolation("session profile cannot be empty")
	}
	if profile.ID == "" || profile.Username == "" {
		return Session{}, InvariantViolation("session profile requires id and username")
	}
	return Session{token: token, profile: profile}, nil
}

// Present returns true if the session holds a token and profile.
func (s Session) Present() bool {
	return s.token != ""
}

// Token returns the session token, or "" for the absent session.
func (s Session) Token() SessionToken {
	return s.token
}

// Profile returns the hydrated profile, or the zero profile for the absent session.
func (s Session) Profile() UserProfile {
	return s.profile
}
