// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/cmdroute/internal/config"
	"github.com/jeranaias/cmdroute/internal/logging"
)

type envKey struct{}

// Env keeps everything a command needs in a single place.
type Env struct {
	Cfg        *config.Config
	ConfigPath string
	Log        *zap.Logger

	// Stdout and Stderr receive command output
	Stdout io.Writer
	Stderr io.Writer

	// Sinks are the console destinations of the logger
	Sinks logging.Sinks

	// ErrHandled is set once a failure was reported to the user
	ErrHandled bool

	start         time.Time
	closeLog      func()
	restoreStdLog func()
}

func newEnv() *Env {
	return &Env{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Sinks:  logging.ConsoleSinks(),
		start:  time.Now(),
	}
}

// EnvFromContext returns the Env stored by ContextWithEnv.
func EnvFromContext(ctx context.Context) *Env {
	if env, ok := ctx.Value(envKey{}).(*Env); ok {
		return env
	}
	// this should never happen
	panic("cli env not found in context")
}

// ContextWithEnv returns ctx carrying a fresh Env.
func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newEnv())
}

// Uptime returns the time since the Env was created.
func (e *Env) Uptime() time.Duration {
	return time.Since(e.start)
}

// RedirectStdLog sends the standard library logger to Log.
func (e *Env) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

// RestoreStdLog syncs Log, undoes RedirectStdLog and closes the log file.
func (e *Env) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
		e.restoreStdLog = nil
	}
	if e.closeLog != nil {
		e.closeLog()
		e.closeLog = nil
	}
}
