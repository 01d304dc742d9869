// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zap logger used by every cmdroute component.
//
// Console output is split by severity: errors go to stderr and everything
// below to stdout. An optional file core receives the same entries without
// colors.
package logging

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/jeranaias/cmdroute/internal/config"
	"github.com/jeranaias/cmdroute/internal/util"
)

// AppName names the root logger.
const AppName = "cmdroute"

// Sinks are the console destinations of a logger.
type Sinks struct {
	Stdout zapcore.WriteSyncer
	Stderr zapcore.WriteSyncer
	Color  bool
}

// ConsoleSinks returns sinks for the process console, with colors when
// stdout is a terminal.
func ConsoleSinks() Sinks {
	return Sinks{
		Stdout: zapcore.Lock(os.Stdout),
		Stderr: zapcore.Lock(os.Stderr),
		Color:  EnableColorOutput(os.Stdout),
	}
}

// EnableColorOutput reports whether stream is an interactive terminal.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}

// NewWithSinks returns a logger for conf writing to sinks. The returned
// function closes the log file, if any.
func NewWithSinks(conf config.LoggingConfig, sinks Sinks) (*zap.Logger, func(), error) {
	level, err := config.ParseLevel(conf.Level)
	if err != nil {
		return nil, nil, err
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if sinks.Color {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	consoleEncoderLP := zapcore.NewConsoleEncoder(ec)
	consoleEncoderHP := newEncoder(ec)

	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})
	lowest := zapcore.InfoLevel
	if level == config.LevelDebug {
		lowest = zapcore.DebugLevel
	}

	var consoleCoreHP, consoleCoreLP zapcore.Core
	switch level {
	case config.LevelNone:
		consoleCoreLP = zapcore.NewNopCore()
		consoleCoreHP = zapcore.NewNopCore()
	default:
		consoleCoreLP = zapcore.NewCore(consoleEncoderLP, sinks.Stdout,
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return lowest <= lvl && lvl < zapcore.ErrorLevel
			}))
		consoleCoreHP = zapcore.NewCore(consoleEncoderHP, sinks.Stderr, highPriority)
	}

	fileCore := zapcore.NewNopCore()
	closeFile := func() {}
	if conf.Destination != "" && level != config.LevelNone {
		path, err := util.ExpandHome(conf.Destination)
		if err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to access log destination (%s): %w", conf.Destination, err)
		}
		fileCore = zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(f),
			zap.NewAtomicLevelAt(lowest),
		)
		closeFile = func() { f.Close() }
	}

	logger := zap.New(zapcore.NewTee(consoleCoreHP, consoleCoreLP, fileCore), zap.AddCaller())
	return logger.Named(AppName), closeFile, nil
}

// When logging errors to console do not output the verbose message.

type consoleEnc struct {
	zapcore.Encoder
}

func newEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return consoleEnc{zapcore.NewConsoleEncoder(cfg)}
}

func (c consoleEnc) Clone() zapcore.Encoder {
	return consoleEnc{c.Encoder.Clone()}
}

func (c consoleEnc) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	newFields := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			if e, ok := f.Interface.(error); ok {
				f.Interface = errors.New(e.Error())
			}
		}
		newFields = append(newFields, f)
	}
	return c.Encoder.EncodeEntry(ent, newFields)
}
