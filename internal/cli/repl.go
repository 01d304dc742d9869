// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	cli "github.com/urfave/cli/v3"

	"github.com/jeranaias/cmdroute/internal/cmderr"
	"github.com/jeranaias/cmdroute/internal/commands"
	"github.com/jeranaias/cmdroute/internal/config"
	"github.com/jeranaias/cmdroute/internal/render"
)

// =============================================================================
// LINE EDITING
// =============================================================================

// prompter reads one line of input. *liner.State implements it.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// lineEditor provides input history and line editing for the REPL.
type lineEditor struct {
	line        *liner.State
	historyFile string
}

// newLineEditor creates a line editor completing with complete and loads
// saved input history.
func newLineEditor(complete liner.Completer) *lineEditor {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetCompleter(complete)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	e := &lineEditor{
		line:        line,
		historyFile: filepath.Join(configDir, "repl_history"),
	}

	if f, err := os.Open(e.historyFile); err == nil {
		e.line.ReadHistory(f)
		f.Close()
	}
	return e
}

func (e *lineEditor) Prompt(prompt string) (string, error) { return e.line.Prompt(prompt) }
func (e *lineEditor) AppendHistory(item string)            { e.line.AppendHistory(item) }

// Close saves input history with owner-only permissions and restores the
// terminal.
func (e *lineEditor) Close() {
	defer e.line.Close()

	if err := os.MkdirAll(filepath.Dir(e.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(e.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	e.line.WriteHistory(f)
}

// =============================================================================
// REPL
// =============================================================================

func replCommand() *cli.Command {
	return &cli.Command{
		Name:         "repl",
		Usage:        "Simulates a chat, routing every line you type",
		OnUsageError: usageErrorHandler,
		Action:       runREPL,
		Flags:        callerFlags(),
	}
}

func runREPL(ctx context.Context, cmd *cli.Command) error {
	env := EnvFromContext(ctx)

	caller, err := callerFrom(cmd)
	if err != nil {
		return err
	}

	eng, err := newEngine(env.Cfg, env.Log)
	if err != nil {
		return err
	}
	defer eng.Close()

	completer := commands.NewCompleter(eng.router.Snapshot)
	editor := newLineEditor(completer.Lines)
	defer editor.Close()

	if render.IsStdinTTY() {
		fmt.Fprintf(env.Stdout, "Routing as %s (level %d). Type %shelp for commands, exit to quit.\n",
			caller.Name, caller.Level, env.Cfg.Prefix)
	}

	s := &replSession{
		eng:    eng,
		render: env.renderer(),
		caller: caller,
		out:    env.Stdout,
	}
	return s.run(ctx, editor)
}

// replSession routes lines read from a prompter until the user quits.
type replSession struct {
	eng    *engine
	render *render.Renderer
	caller commands.Caller
	out    io.Writer

	dispatched int
	failed     int
}

func (s *replSession) run(ctx context.Context, p prompter) error {
	for ctx.Err() == nil {
		input, err := p.Prompt(s.caller.Name + "> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				break
			}
			return fmt.Errorf("unable to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		p.AppendHistory(input)

		if input == "exit" || input == "quit" {
			break
		}
		s.handle(ctx, input)
	}

	fmt.Fprintf(s.out, "Session ended: %d commands, %d failed.\n", s.dispatched, s.failed)
	return nil
}

func (s *replSession) handle(ctx context.Context, input string) {
	reply, err := s.eng.router.Dispatch(ctx, s.caller, input)
	switch {
	case errors.Is(err, cmderr.ErrNotCommand):
		fmt.Fprintln(s.out, s.render.Styles().Hint.Render("(not a command)"))
		return
	case err != nil:
		s.dispatched++
		s.failed++
		fmt.Fprintln(s.out, s.render.Error(s.eng.Routed(input), err))
		return
	}

	s.dispatched++
	if out := s.render.Reply(reply); out != "" {
		fmt.Fprintln(s.out, out)
	}
}
