// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package auth

import (
	"errors"

	"github.com/samber/oops"
)

// Error codes shared by the gateway, session store and orchestrator.
const (
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeInvalidToken       = "AUTH_INVALID_TOKEN"
	CodeValidationRejected = "AUTH_VALIDATION_REJECTED"
	CodeTransport          = "AUTH_TRANSPORT"
	CodeInvariantViolation = "SESSION_INVARIANT_VIOLATION"
	CodeInputOutOfBounds   = "INPUT_OUT_OF_BOUNDS"
	CodeInputMalformed     = "INPUT_MALFORMED"
)

// ErrNotAuthenticated is returned when an operation needs a session and none exists.
var ErrNotAuthenticated = errors.New("not authenticated")

// CodeOf returns the oops code attached to err, or "" if there is none.
func CodeOf(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, _ := oopsErr.Code().(string)
	return code
}

// HasCode reports whether err carries the given oops code.
func HasCode(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}

// Message returns the text shown to a user for err. Remote failures carry the
// identity service's message verbatim.
func Message(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// InvariantViolation builds a SESSION_INVARIANT_VIOLATION error.
func InvariantViolation(format string, args ...any) error {
	return oops.Code(CodeInvariantViolation).Errorf(format, args...)
}

var gatewayKinds = map[string]bool{
	CodeInvalidCredentials: true,
	CodeInvalidToken:       true,
	CodeValidationRejected: true,
	CodeTransport:          true,
}

// Kind classifies a gateway failure. It returns one of CodeInvalidCredentials,
// CodeInvalidToken, CodeValidationRejected or CodeTransport; an error without
// a gateway code is treated as a transport failure. Kind returns "" for nil.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	if code := CodeOf(err); gatewayKinds[code] {
		return code
	}
	return CodeTransport
}
