// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package auth_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillpress/quill/internal/auth"
	"github.com/quillpress/quill/pkg/errutil"
)

func TestNewSession(t *testing.T) {
	profile := auth.UserProfile{ID: "1", Email: "h@x.com", Username: "hitesh5678"}

	t.Run("creates present session", func(t *testing.T) {
		session, err := auth.NewSession("tok-1", profile)
		require.NoError(t, err)
		assert.True(t, session.Present())
		assert.Equal(t, auth.SessionToken("tok-1"), session.Token())
		assert.Equal(t, profile, session.Profile())
	})

	tests := []struct {
		name    string
		token   auth.SessionToken
		profile auth.UserProfile
	}{
		{name: "empty token", token: "", profile: profile},
		{name: "empty profile", token: "tok-1", profile: auth.UserProfile{}},
		{name: "profile without id", token: "tok-1", profile: auth.UserProfile{Username: "hitesh5678"}},
		{name: "profile without username", token: "tok-1", profile: auth.UserProfile{ID: "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := auth.NewSession(tt.token, tt.profile)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, auth.CodeInvariantViolation)
			assert.False(t, session.Present())
			assert.Equal(t, auth.Session{}, session)
		})
	}
}

func TestSession_ZeroValueIsAbsent(t *testing.T) {
	var session auth.Session
	assert.False(t, session.Present())
	assert.Empty(t, session.Token())
	assert.True(t, session.Profile().IsZero())
}

func TestSessionToken_StringIsRedacted(t *testing.T) {
	token := auth.SessionToken("secret-token")
	assert.Equal(t, "[redacted]", token.String())
	assert.NotContains(t, fmt.Sprintf("%v", token), "secret")
	assert.Empty(t, auth.SessionToken("").String())
}
