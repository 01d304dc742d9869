// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jeranaias/cmdroute/internal/cmderr"
	"github.com/jeranaias/cmdroute/internal/fragment"
	"github.com/jeranaias/cmdroute/internal/mapper"
	"github.com/jeranaias/cmdroute/internal/storage"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type recorder struct {
	mu      sync.Mutex
	entries []storage.Entry
	err     error
}

func (r *recorder) Record(_ context.Context, e storage.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return r.err
}

func (r *recorder) last() storage.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[len(r.entries)-1]
}

func testSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	r := NewRegistry()
	r.MustRegister(&Command{
		Name:    "add",
		Aliases: []string{"plus"},
		Syntax:  []string{"<a: Signed> <b: Signed>"},
		Handler: func(_ context.Context, inv *Invocation) (*Reply, error) {
			a, _ := Get[int64](inv.Args, "a")
			b, _ := Get[int64](inv.Args, "b")
			return &Reply{Text: strconv.FormatInt(a+b, 10)}, nil
		},
	})
	r.MustRegister(&Command{
		Name:   "poke",
		Syntax: []string{"<who: UserMention>"},
		Handler: func(_ context.Context, inv *Invocation) (*Reply, error) {
			who, _ := Get[mapper.UserID](inv.Args, "who")
			return &Reply{Text: "poked " + who.Mention()}, nil
		},
	})
	r.MustRegister(&Command{
		Name:    "ban",
		Level:   2,
		Syntax:  []string{"<who: UserMention>"},
		Handler: noopHandler,
	})
	r.MustRegister(&Command{
		Name: "fail",
		Handler: func(context.Context, *Invocation) (*Reply, error) {
			return nil, errors.New("exploded")
		},
	})
	r.MustRegister(&Command{
		Name:    "quiet",
		Handler: func(context.Context, *Invocation) (*Reply, error) { return nil, nil },
	})
	return &Snapshot{Registry: r, Manager: DefaultManager(), Prefix: "!", NormalizeUnicode: true}
}

var alice = Caller{ID: "1", Name: "alice", Level: 1}

// =============================================================================
// DISPATCH TESTS
// =============================================================================

func TestRouter_Dispatch(t *testing.T) {
	router := NewRouter(testSnapshot(t))
	ctx := context.Background()

	tests := []struct {
		input string
		want  string
	}{
		{"!add 2 3", "5"},
		{"  !plus -7 2  ", "-5"},
		{`!add "4" '5'`, "9"},
		{"!add 1 2 trailing words", "3"},
		{"!poke <@!99>", "poked <@99>"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			reply, err := router.Dispatch(ctx, alice, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, reply.Text)
		})
	}
}

func TestRouter_DispatchSetsCommand(t *testing.T) {
	router := NewRouter(testSnapshot(t))

	reply, err := router.Dispatch(context.Background(), alice, "!plus 1 1")
	require.NoError(t, err)
	assert.Equal(t, "add", reply.Command)

	reply, err = router.Dispatch(context.Background(), alice, "!quiet")
	require.NoError(t, err)
	assert.Equal(t, "quiet", reply.Command)
	assert.Empty(t, reply.Text)
}

func TestRouter_NotCommand(t *testing.T) {
	router := NewRouter(testSnapshot(t))

	for _, input := range []string{"hello", "", "   ", "add 1 2"} {
		_, err := router.Dispatch(context.Background(), alice, input)
		assert.ErrorIs(t, err, cmderr.ErrNotCommand, input)
	}
}

func TestRouter_Errors(t *testing.T) {
	router := NewRouter(testSnapshot(t))
	ctx := context.Background()

	_, err := router.Dispatch(ctx, alice, "!nope")
	var notFound *cmderr.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nope", notFound.Name)

	_, err = router.Dispatch(ctx, alice, "!")
	require.ErrorAs(t, err, &notFound)
	assert.Empty(t, notFound.Name)

	_, err = router.Dispatch(ctx, alice, "!ban <@1>")
	var perm *cmderr.MissingPermissionError
	require.ErrorAs(t, err, &perm)
	assert.Equal(t, uint32(2), perm.Level)

	_, err = router.Dispatch(ctx, alice, "!add one two")
	var usage *UsageError
	require.ErrorAs(t, err, &usage)
	assert.ErrorIs(t, err, cmderr.ErrNoPathFound)
	assert.Equal(t, []string{"!add <a: Signed> <b: Signed>"}, usage.Usage)

	_, err = router.Dispatch(ctx, alice, "!fail")
	assert.EqualError(t, err, "fail: exploded")
	assert.Equal(t, storage.OutcomeFailed, OutcomeOf(err))
}

func TestRouter_ParseErrorSpan(t *testing.T) {
	snap := testSnapshot(t)
	snap.Prefix = ">>"
	router := NewRouter(snap)

	_, err := router.Dispatch(context.Background(), alice, `  >>add "1 2`)
	var perr *cmderr.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, fragment.MsgUnclosedQuote, perr.Message)
	// spans index the trimmed message, prefix included
	assert.Equal(t, 6, perr.Start)
	assert.Equal(t, 9, perr.End)
}

func TestRouter_Swap(t *testing.T) {
	router := NewRouter(testSnapshot(t))

	replacement := NewRegistry()
	replacement.MustRegister(&Command{Name: "ping", Handler: func(context.Context, *Invocation) (*Reply, error) {
		return &Reply{Text: "pong"}, nil
	}})
	prev := router.Swap(&Snapshot{Registry: replacement, Manager: DefaultManager(), Prefix: "?"})
	assert.Equal(t, "!", prev.Prefix)
	assert.Same(t, replacement, router.Snapshot().Registry)

	reply, err := router.Dispatch(context.Background(), alice, "?ping")
	require.NoError(t, err)
	assert.Equal(t, "pong", reply.Text)

	_, err = router.Dispatch(context.Background(), alice, "!add 1 2")
	assert.ErrorIs(t, err, cmderr.ErrNotCommand)
}

func TestRouter_RateLimit(t *testing.T) {
	router := NewRouter(testSnapshot(t), WithRateLimit(1, 2))
	now := time.Unix(1_700_000_000, 0)
	router.now = func() time.Time { return now }
	ctx := context.Background()

	// unknown commands never spend tokens
	_, err := router.Dispatch(ctx, alice, "!nope")
	var notFound *cmderr.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 0, router.limiter.tracked())

	for range 2 {
		_, err := router.Dispatch(ctx, alice, "!add 1 1")
		require.NoError(t, err)
	}
	_, err = router.Dispatch(ctx, alice, "!add 1 1")
	assert.ErrorIs(t, err, cmderr.ErrRateLimited)

	bob := Caller{ID: "2", Level: 1}
	_, err = router.Dispatch(ctx, bob, "!add 1 1")
	assert.NoError(t, err, "buckets are per caller")
	assert.Equal(t, 2, router.limiter.tracked())

	now = now.Add(time.Second)
	_, err = router.Dispatch(ctx, alice, "!add 1 1")
	assert.NoError(t, err)

	// idle buckets are swept
	now = now.Add(time.Hour)
	_, err = router.Dispatch(ctx, alice, "!add 1 1")
	assert.NoError(t, err)
	assert.Equal(t, 1, router.limiter.tracked())
}

func TestRouter_History(t *testing.T) {
	rec := &recorder{}
	router := NewRouter(testSnapshot(t), WithHistory(rec))
	ctx := context.Background()

	_, err := router.Dispatch(ctx, alice, "!add 2 2")
	require.NoError(t, err)
	e := rec.last()
	assert.Equal(t, "1", e.CallerID)
	assert.Equal(t, "alice", e.CallerName)
	assert.Equal(t, "add", e.Command)
	assert.Equal(t, "!add 2 2", e.Text)
	assert.Equal(t, storage.OutcomeOK, e.Outcome)
	assert.Equal(t, "4", e.Reply)

	_, _ = router.Dispatch(ctx, alice, "!ban <@1>")
	assert.Equal(t, storage.OutcomeForbidden, rec.last().Outcome)

	_, _ = router.Dispatch(ctx, alice, "not a command")
	assert.Len(t, rec.entries, 2, "plain chat is not recorded")
}

func TestRouter_HistoryFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	rec := &recorder{err: errors.New("disk full")}
	router := NewRouter(testSnapshot(t), WithHistory(rec), WithLogger(zap.New(core)))

	reply, err := router.Dispatch(context.Background(), alice, "!add 1 2")
	require.NoError(t, err)
	assert.Equal(t, "3", reply.Text)
	assert.Equal(t, 1, logs.FilterMessage("Failed to record history").Len())
}

func TestRouter_NormalizesUnicode(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(&Command{Name: "caf\u00e9", Handler: noopHandler})
	router := NewRouter(&Snapshot{Registry: r, Manager: DefaultManager(), Prefix: "!", NormalizeUnicode: true})

	// "e" followed by a combining acute accent
	_, err := router.Dispatch(context.Background(), alice, "!café")
	assert.NoError(t, err)
}

func TestRouter_Concurrent(t *testing.T) {
	router := NewRouter(testSnapshot(t))
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			caller := Caller{ID: strconv.Itoa(i), Level: 1}
			reply, err := router.Dispatch(context.Background(), caller, "!add "+strconv.Itoa(i)+" 1")
			if assert.NoError(t, err) {
				assert.Equal(t, strconv.Itoa(i+1), reply.Text)
			}
		}()
		if i == 8 {
			router.Swap(testSnapshot(t))
		}
	}
	wg.Wait()
}

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		err  error
		want storage.Outcome
	}{
		{nil, storage.OutcomeOK},
		{&cmderr.ParseError{}, storage.OutcomeParseError},
		{&cmderr.NotFoundError{Name: "x"}, storage.OutcomeNotFound},
		{&cmderr.MissingPermissionError{Level: 1}, storage.OutcomeForbidden},
		{cmderr.ErrRateLimited, storage.OutcomeRateLimited},
		{&UsageError{Command: "x"}, storage.OutcomeNoMatch},
		{errors.New("other"), storage.OutcomeFailed},
	}

	for _, tt := range tests {
		if got := OutcomeOf(tt.err); got != tt.want {
			t.Errorf("OutcomeOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
