// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package validation

import (
	"context"
	"regexp"
	"unicode/utf8"

	"github.com/quillpress/quill/internal/auth"
)

// Field identifies a validated signup field.
type Field string

// Validated fields.
const (
	FieldUsername Field = "username"
	FieldEmail    Field = "email"
	FieldPassword Field = "password"
)

// Fields lists every validated field in display order.
var Fields = []Field{FieldUsername, FieldEmail, FieldPassword}

// Length bounds, inclusive, counted in Unicode code points.
const (
	MinUsernameLength = 4
	MaxUsernameLength = 20
	MinEmailLength    = 7
	MaxEmailLength    = 35
	MinPasswordLength = 8
	MaxPasswordLength = 120
)

// Field messages shown inline next to the input.
const (
	MsgUsernameBounds = "User name must be at least 4 characters long and no more than 20 characters."
	MsgUsernameUsed   = "Username already in use."
	MsgEmailInvalid   = "Email ID not correct."
	MsgEmailUsed      = "Email ID already in use."
	MsgPasswordBounds = "Password must be at least 8 characters long and no more than 120 characters."
)

// emailPattern accepts local@domain where the local part is dot-separated atoms
// or a quoted string, and the domain has at least one dot and a TLD of two or
// more characters. Atoms may not contain whitespace, angle brackets,
// parentheses, square brackets, '"', ',', ';', ':' or '@'.
var emailPattern = regexp.MustCompile(`(?i)^(([^<>()\[\]\.,;:\s@"]+(\.[^<>()\[\]\.,;:\s@"]+)*)|(".+"))@(([^<>()\[\]\.,;:\s@"]+\.)+[^<>()\[\]\.,;:\s@"]{2,})$`)

// AvailabilityChecker asks the identity service whether a value is taken.
// auth.Gateway satisfies it.
type AvailabilityChecker interface {
	UsernameAvailable(ctx context.Context, username string) (bool, error)
	EmailAvailable(ctx context.Context, email string) (bool, error)
}

// Violation is a failed synchronous rule.
type Violation struct {
	Code    string
	Message string
}

// rule is the validation policy of one field.
type rule struct {
	min, max int
	pattern  *regexp.Regexp
	message  string
	// remote is nil for fields that are never checked against the server.
	remote  func(ctx context.Context, c AvailabilityChecker, value string) (bool, error)
	usedMsg string
}

var rules = map[Field]rule{
	FieldUsername: {
		min:     MinUsernameLength,
		max:     MaxUsernameLength,
		message: MsgUsernameBounds,
		remote: func(ctx context.Context, c AvailabilityChecker, value string) (bool, error) {
			return c.UsernameAvailable(ctx, value)
		},
		usedMsg: MsgUsernameUsed,
	},
	FieldEmail: {
		min:     MinEmailLength,
		max:     MaxEmailLength,
		pattern: emailPattern,
		message: MsgEmailInvalid,
		remote: func(ctx context.Context, c AvailabilityChecker, value string) (bool, error) {
			return c.EmailAvailable(ctx, value)
		},
		usedMsg: MsgEmailUsed,
	},
	FieldPassword: {
		min:     MinPasswordLength,
		max:     MaxPasswordLength,
		message: MsgPasswordBounds,
	},
}

// check evaluates the synchronous part of the rule. It returns nil when the
// value passes.
func (r rule) check(value string) *Violation {
	if n := utf8.RuneCountInString(value); n < r.min || n > r.max {
		return &Violation{Code: auth.CodeInputOutOfBounds, Message: r.message}
	}
	if r.pattern != nil && !r.pattern.MatchString(value) {
		return &Violation{Code: auth.CodeInputMalformed, Message: r.message}
	}
	return nil
}

// Check runs the synchronous rule for field against value.
// Returns nil when the value passes; unknown fields always pass.
func Check(field Field, value string) *Violation {
	r, ok := rules[field]
	if !ok {
		return nil
	}
	return r.check(value)
}

// IsRemote reports whether field gets a uniqueness check after its
// synchronous rule passes.
func IsRemote(field Field) bool {
	return rules[field].remote != nil
}
