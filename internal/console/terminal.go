// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

// Package console renders Quill's views on a line-oriented terminal.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/samber/oops"
)

// Terminal reads lines from an input and serializes writes to an output.
// Writes may come from validation goroutines while a prompt is open.
type Terminal struct {
	in *bufio.Scanner

	mu  sync.Mutex
	out io.Writer
}

// NewTerminal creates a Terminal over in and out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewScanner(in), out: out}
}

// Printf writes a formatted line fragment.
func (t *Terminal) Printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintf(t.out, format, args...)
}

// Println writes args followed by a newline.
func (t *Terminal) Println(args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintln(t.out, args...)
}

// Notify shows an alert line. It satisfies orchestrator.Notifier.
func (t *Terminal) Notify(_ context.Context, message string) {
	t.Printf("! %s\n", message)
}

// Prompt writes label and returns the next input line without its trailing
// whitespace. It returns io.EOF when input is exhausted.
func (t *Terminal) Prompt(label string) (string, error) {
	t.Printf("%s", label)
	if !t.in.Scan() {
		if err := t.in.Err(); err != nil {
			return "", oops.Code("CONSOLE_READ_FAILED").Wrap(err)
		}
		return "", io.EOF
	}
	return strings.TrimRight(t.in.Text(), " \t\r"), nil
}
