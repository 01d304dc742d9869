// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/cmdroute/internal/cmderr"
	"github.com/jeranaias/cmdroute/internal/fragment"
	"github.com/jeranaias/cmdroute/internal/storage"
)

// =============================================================================
// DISPATCH TYPES
// =============================================================================

// Caller identifies the author of a message.
type Caller struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Level uint32 `json:"level"`
}

// Reply is the result of a successful dispatch.
type Reply struct {
	// Command is the primary name of the command that produced the reply
	Command string `json:"command"`

	// Text is the reply body
	Text string `json:"text"`

	// Markdown marks Text as markdown that terminals may render
	Markdown bool `json:"markdown,omitempty"`
}

// Invocation carries everything a handler needs about one dispatch.
type Invocation struct {
	Caller  Caller
	Command *Command
	Match   *Match
	Args    Bindings

	// Text is the message after trimming and normalization
	Text string

	// Registry and Prefix describe the command set the message was
	// dispatched against
	Registry *Registry
	Prefix   string
}

// Rest returns the fragments after the matched syntax.
func (inv *Invocation) Rest() []string {
	if inv.Match == nil {
		return nil
	}
	return inv.Match.Rest()
}

// UsageError reports a message naming a known command that matches none of
// its syntax forms. It unwraps to cmderr.ErrNoPathFound.
type UsageError struct {
	Command string
	Usage   []string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("invalid arguments for %s, usage: %s", e.Command, strings.Join(e.Usage, " | "))
}

func (e *UsageError) Unwrap() error {
	return cmderr.ErrNoPathFound
}

// Recorder receives one entry per dispatched command.
type Recorder interface {
	Record(ctx context.Context, e storage.Entry) error
}

// Snapshot is an immutable command set. Routers swap whole snapshots so a
// dispatch never observes a half-applied reload.
type Snapshot struct {
	Registry         *Registry
	Manager          *Manager
	Prefix           string
	NormalizeUnicode bool
}

// =============================================================================
// ROUTER
// =============================================================================

// Router turns chat messages into command replies.
type Router struct {
	snap    atomic.Pointer[Snapshot]
	limiter *callerLimiter
	history Recorder
	logger  *zap.Logger
	now     func() time.Time
}

// RouterOption is a functional option for configuring a Router.
type RouterOption func(*Router)

// WithLogger sets the logger used for dispatch events.
func WithLogger(logger *zap.Logger) RouterOption {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRateLimit limits every caller to perSecond dispatches with bursts of
// up to burst. A non-positive rate disables limiting.
func WithRateLimit(perSecond float64, burst int) RouterOption {
	return func(r *Router) {
		if perSecond > 0 {
			r.limiter = newCallerLimiter(perSecond, burst)
		} else {
			r.limiter = nil
		}
	}
}

// WithHistory records every dispatched command in rec.
func WithHistory(rec Recorder) RouterOption {
	return func(r *Router) {
		r.history = rec
	}
}

// NewRouter creates a router serving snap.
func NewRouter(snap *Snapshot, opts ...RouterOption) *Router {
	r := &Router{
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.snap.Store(snap)
	return r
}

// Snapshot returns the command set currently served.
func (r *Router) Snapshot() *Snapshot {
	return r.snap.Load()
}

// Swap replaces the command set and returns the previous one. Dispatches in
// flight finish with the snapshot they started with.
func (r *Router) Swap(snap *Snapshot) *Snapshot {
	prev := r.snap.Swap(snap)
	r.logger.Info("Command set replaced", zap.Int("commands", snap.Registry.Len()))
	return prev
}

// Dispatch routes one message. Messages without the command prefix return
// cmderr.ErrNotCommand and are not recorded.
func (r *Router) Dispatch(ctx context.Context, caller Caller, text string) (*Reply, error) {
	snap := r.snap.Load()

	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, snap.Prefix) {
		return nil, cmderr.ErrNotCommand
	}
	if snap.NormalizeUnicode {
		trimmed = norm.NFC.String(trimmed)
	}
	body, ok := strings.CutPrefix(trimmed, snap.Prefix)
	if !ok {
		return nil, cmderr.ErrNotCommand
	}

	start := r.now()
	cmd, reply, err := r.dispatch(ctx, snap, caller, trimmed, body)
	r.finish(ctx, caller, trimmed, cmd, reply, err, r.now().Sub(start))
	return reply, err
}

func (r *Router) dispatch(ctx context.Context, snap *Snapshot, caller Caller, trimmed, body string) (*Command, *Reply, error) {
	frags, err := fragment.Collect(body)
	if err != nil {
		var perr *cmderr.ParseError
		if errors.As(err, &perr) {
			return nil, nil, perr.Shift(len(snap.Prefix))
		}
		return nil, nil, err
	}
	if len(frags) == 0 {
		return nil, nil, &cmderr.NotFoundError{}
	}

	cmd := snap.Registry.Get(frags[0])
	if cmd == nil {
		return nil, nil, &cmderr.NotFoundError{Name: frags[0]}
	}
	if caller.Level < cmd.Level {
		return cmd, nil, &cmderr.MissingPermissionError{Level: cmd.Level}
	}
	if r.limiter != nil && !r.limiter.allow(caller.ID, r.now()) {
		return cmd, nil, cmderr.ErrRateLimited
	}

	match, err := snap.Manager.FindPath(cmd.Tree(), frags)
	if err != nil {
		usage := make([]string, len(cmd.Usage()))
		for i, line := range cmd.Usage() {
			usage[i] = snap.Prefix + line
		}
		return cmd, nil, &UsageError{Command: cmd.Name, Usage: usage}
	}

	args, err := snap.Manager.Resolve(match)
	if err != nil {
		return cmd, nil, fmt.Errorf("resolve %s: %w", cmd.Name, err)
	}

	reply, err := cmd.Handler(ctx, &Invocation{
		Caller:   caller,
		Command:  cmd,
		Match:    match,
		Args:     args,
		Text:     trimmed,
		Registry: snap.Registry,
		Prefix:   snap.Prefix,
	})
	if err != nil {
		return cmd, nil, fmt.Errorf("%s: %w", cmd.Name, err)
	}
	if reply == nil {
		reply = &Reply{}
	}
	reply.Command = cmd.Name
	return cmd, reply, nil
}

// finish logs the outcome and appends it to history.
func (r *Router) finish(ctx context.Context, caller Caller, text string, cmd *Command, reply *Reply, err error, took time.Duration) {
	outcome := OutcomeOf(err)
	name := ""
	if cmd != nil {
		name = cmd.Name
	}

	fields := []zap.Field{
		zap.String("caller", caller.ID),
		zap.String("command", name),
		zap.String("outcome", string(outcome)),
		zap.Duration("took", took),
	}
	switch outcome {
	case storage.OutcomeOK:
		r.logger.Debug("Command dispatched", fields...)
	case storage.OutcomeFailed:
		r.logger.Error("Command failed", append(fields, zap.Error(err))...)
	default:
		r.logger.Debug("Command rejected", append(fields, zap.Error(err))...)
	}

	if r.history == nil {
		return
	}
	entry := storage.Entry{
		Time:       r.now(),
		CallerID:   caller.ID,
		CallerName: caller.Name,
		Command:    name,
		Text:       text,
		Outcome:    outcome,
	}
	if reply != nil {
		entry.Reply = reply.Text
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if herr := r.history.Record(ctx, entry); herr != nil {
		r.logger.Warn("Failed to record history", zap.Error(herr))
	}
}

// OutcomeOf classifies a dispatch error.
func OutcomeOf(err error) storage.Outcome {
	var (
		parseErr    *cmderr.ParseError
		notFound    *cmderr.NotFoundError
		missingPerm *cmderr.MissingPermissionError
	)
	switch {
	case err == nil:
		return storage.OutcomeOK
	case errors.As(err, &parseErr):
		return storage.OutcomeParseError
	case errors.As(err, &notFound):
		return storage.OutcomeNotFound
	case errors.As(err, &missingPerm):
		return storage.OutcomeForbidden
	case errors.Is(err, cmderr.ErrRateLimited):
		return storage.OutcomeRateLimited
	case errors.Is(err, cmderr.ErrNoPathFound):
		return storage.OutcomeNoMatch
	default:
		return storage.OutcomeFailed
	}
}
