// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package validation

import (
	"context"
	"log/slog"
	"sync"

	"github.com/samber/oops"

	"github.com/quillpress/quill/internal/auth"
	"github.com/quillpress/quill/internal/observability"
)

// Engine error and state codes.
const (
	// CodeAlreadyInUse marks a field whose value the identity service reports as taken.
	CodeAlreadyInUse   = "INPUT_ALREADY_IN_USE"
	CodeUnknownField   = "VALIDATION_UNKNOWN_FIELD"
	CodeSettleCanceled = "VALIDATION_SETTLE_CANCELED"
)

// FieldState is the inline verdict of one field. An empty Message means the
// field currently shows no error.
type FieldState struct {
	Message string
	Code    string
	Pending bool
}

// Valid returns true if the field shows no error and has no check in flight.
func (s FieldState) Valid() bool {
	return s.Message == "" && !s.Pending
}

// ChangeFunc is called after a field's state changes. It runs outside the
// engine's lock, possibly on a check goroutine.
type ChangeFunc func(field Field, state FieldState)

// EngineOption configures an Engine during construction.
type EngineOption func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics records uniqueness check outcomes and dropped stale responses.
func WithMetrics(m *observability.Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithOnChange registers a callback for field state changes.
func WithOnChange(fn ChangeFunc) EngineOption {
	return func(e *Engine) {
		e.onChange = fn
	}
}

type fieldEntry struct {
	value string
	// gen increments on every edit; a check result applies only if the
	// generation it was issued for is still current.
	gen   uint64
	state FieldState
}

// Engine validates signup fields as they are edited. Synchronous rules run
// inline; uniqueness checks run on their own goroutines and never block Edit.
type Engine struct {
	checker  AvailabilityChecker
	logger   *slog.Logger
	metrics  *observability.Metrics
	onChange ChangeFunc

	mu       sync.Mutex
	fields   map[Field]*fieldEntry
	inflight int
	idle     chan struct{} // closed while inflight == 0
}

// NewEngine creates an Engine that checks uniqueness through checker.
func NewEngine(checker AvailabilityChecker, opts ...EngineOption) (*Engine, error) {
	if checker == nil {
		return nil, oops.Errorf("availability checker is required")
	}

	idle := make(chan struct{})
	close(idle)

	e := &Engine{
		checker: checker,
		logger:  slog.New(slog.DiscardHandler),
		fields:  make(map[Field]*fieldEntry, len(Fields)),
		idle:    idle,
	}
	for _, f := range Fields {
		e.fields[f] = &fieldEntry{}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Edit records a new raw value for field. The field's previous message is
// cleared, the synchronous rule runs, and if it passes a uniqueness check is
// issued in the background. Any check still in flight for an older value of
// the field is superseded.
//
// ctx is detached from cancellation for the background check: in-flight
// checks are never canceled, only superseded.
func (e *Engine) Edit(ctx context.Context, field Field, value string) error {
	r, ok := rules[field]
	if !ok {
		return oops.Code(CodeUnknownField).With("field", field).Errorf("unknown field %q", field)
	}

	e.mu.Lock()
	entry := e.fields[field]
	entry.value = value
	entry.gen++
	gen := entry.gen
	entry.state = FieldState{}

	if v := r.check(value); v != nil {
		entry.state = FieldState{Message: v.Message, Code: v.Code}
	} else if r.remote != nil {
		entry.state.Pending = true
		e.beginCheckLocked()
	}
	state := entry.state
	e.mu.Unlock()

	e.notify(field, state)

	if state.Pending {
		go e.checkRemote(context.WithoutCancel(ctx), field, r, value, gen)
	}
	return nil
}

func (e *Engine) checkRemote(ctx context.Context, field Field, r rule, value string, gen uint64) {
	defer e.endCheck()

	e.logger.DebugContext(ctx, "uniqueness check issued", "event", "uniqueness_check", "field", field)
	available, err := r.remote(ctx, e.checker, value)

	e.mu.Lock()
	entry := e.fields[field]
	if entry.gen != gen {
		e.mu.Unlock()
		e.metrics.RecordStaleCheck(string(field))
		e.logger.DebugContext(ctx, "discarding stale uniqueness check",
			"event", "stale_check_dropped",
			"field", field,
		)
		return
	}

	var outcome string
	switch {
	case err != nil:
		code := auth.CodeOf(err)
		if code == "" {
			code = auth.CodeTransport
		}
		entry.state = FieldState{Message: auth.Message(err), Code: code}
		outcome = observability.OutcomeFailure
	case !available:
		entry.state = FieldState{Message: r.usedMsg, Code: CodeAlreadyInUse}
		outcome = observability.OutcomeUsed
	default:
		entry.state = FieldState{}
		outcome = observability.OutcomeAvailable
	}
	state := entry.state
	e.mu.Unlock()

	e.metrics.RecordUniquenessCheck(string(field), outcome)
	if err != nil {
		e.logger.WarnContext(ctx, "uniqueness check failed",
			"event", "uniqueness_check_failed",
			"field", field,
			"error", err.Error(),
		)
	}
	e.notify(field, state)
}

func (e *Engine) beginCheckLocked() {
	if e.inflight == 0 {
		e.idle = make(chan struct{})
	}
	e.inflight++
}

func (e *Engine) endCheck() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inflight--
	if e.inflight == 0 {
		close(e.idle)
	}
}

func (e *Engine) notify(field Field, state FieldState) {
	if e.onChange != nil {
		e.onChange(field, state)
	}
}

// State returns the current verdict of field.
func (e *Engine) State(field Field) FieldState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if entry, ok := e.fields[field]; ok {
		return entry.state
	}
	return FieldState{}
}

// Value returns the last raw value recorded for field.
func (e *Engine) Value(field Field) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if entry, ok := e.fields[field]; ok {
		return entry.value
	}
	return ""
}

// Settle blocks until no uniqueness check is in flight or ctx is done.
func (e *Engine) Settle(ctx context.Context) error {
	e.mu.Lock()
	idle := e.idle
	e.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return oops.Code(CodeSettleCanceled).Wrap(ctx.Err())
	}
}

// Valid returns true if every field has a value, shows no error and has no
// check in flight.
func (e *Engine) Valid() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.validLocked()
}

func (e *Engine) validLocked() bool {
	for _, f := range Fields {
		entry := e.fields[f]
		if entry.value == "" || !entry.state.Valid() {
			return false
		}
	}
	return true
}

// Validate waits for in-flight checks, then surfaces the rule message on
// every field that was never filled in, and reports whether the form may be
// submitted.
func (e *Engine) Validate(ctx context.Context) (bool, error) {
	if err := e.Settle(ctx); err != nil {
		return false, err
	}

	type change struct {
		field Field
		state FieldState
	}
	var changes []change

	e.mu.Lock()
	for _, f := range Fields {
		entry := e.fields[f]
		if entry.value != "" || entry.state.Message != "" {
			continue
		}
		if v := rules[f].check(""); v != nil {
			entry.state = FieldState{Message: v.Message, Code: v.Code}
			changes = append(changes, change{field: f, state: entry.state})
		}
	}
	valid := e.validLocked()
	e.mu.Unlock()

	for _, c := range changes {
		e.notify(c.field, c.state)
	}
	return valid, nil
}
