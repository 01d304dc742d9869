// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"

	"github.com/jeranaias/cmdroute/internal/cmderr"
	"github.com/jeranaias/cmdroute/internal/commands"
	"github.com/jeranaias/cmdroute/internal/render"
	"github.com/jeranaias/cmdroute/internal/server"
)

// DefaultUser is the caller id used when --user is not given.
const DefaultUser = "local"

func callerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Value: DefaultUser, Usage: "act as caller `ID`"},
		&cli.IntFlag{Name: "level", Aliases: []string{"l"}, Usage: "permission `LEVEL` of the caller"},
	}
}

// callerFrom reads the caller flags.
func callerFrom(cmd *cli.Command) (commands.Caller, error) {
	user := strings.TrimSpace(cmd.String("user"))
	if user == "" {
		return commands.Caller{}, errors.New("--user must not be empty")
	}
	level := cmd.Int("level")
	if level < 0 || int64(level) > int64(^uint32(0)) {
		return commands.Caller{}, fmt.Errorf("--level must be between 0 and %d, got %d", ^uint32(0), level)
	}
	return commands.Caller{ID: user, Name: user, Level: uint32(level)}, nil
}

// renderer returns a renderer for env's output stream.
func (e *Env) renderer() *render.Renderer {
	color := false
	if f, ok := e.Stdout.(*os.File); ok && f == os.Stdout {
		color = render.ColorsEnabled()
	}
	return render.New(
		render.WithColor(color),
		render.WithWidth(render.TerminalWidth()),
		render.WithPrefix(e.Cfg.Prefix),
	)
}

func routeCommand() *cli.Command {
	return &cli.Command{
		Name:         "route",
		Usage:        "Dispatches one message and prints the reply",
		OnUsageError: usageErrorHandler,
		Action:       runRoute,
		ArgsUsage:    "TEXT...",
		Flags: append(callerFlags(),
			&cli.BoolFlag{Name: "json", Usage: "print the result as JSON, as served by /v1/route"},
		),
	}
}

func runRoute(ctx context.Context, cmd *cli.Command) error {
	env := EnvFromContext(ctx)

	if cmd.NArg() == 0 {
		return errors.New("nothing to route, TEXT is required")
	}
	text := strings.Join(cmd.Args().Slice(), " ")

	caller, err := callerFrom(cmd)
	if err != nil {
		return err
	}

	eng, err := newEngine(env.Cfg, env.Log)
	if err != nil {
		return err
	}
	defer eng.Close()

	reply, err := eng.router.Dispatch(ctx, caller, text)

	if cmd.Bool("json") {
		return writeRouteJSON(env, reply, err)
	}

	r := env.renderer()
	switch {
	case errors.Is(err, cmderr.ErrNotCommand):
		fmt.Fprintln(env.Stdout, r.Styles().Hint.Render("Not a command, commands start with "+env.Cfg.Prefix))
		return nil
	case err != nil:
		fmt.Fprintln(env.Stderr, r.Error(eng.Routed(text), err))
		return &reportedError{err: err}
	}
	if out := r.Reply(reply); out != "" {
		fmt.Fprintln(env.Stdout, out)
	}
	return nil
}

func writeRouteJSON(env *Env, reply *commands.Reply, err error) error {
	var resp server.RouteResponse
	switch {
	case errors.Is(err, cmderr.ErrNotCommand):
		resp.Ignored = true
	case err != nil:
		resp.Error, _ = server.DescribeError(err)
	default:
		resp.Reply = reply
	}

	enc := json.NewEncoder(env.Stdout)
	enc.SetIndent("", "  ")
	if werr := enc.Encode(resp); werr != nil {
		return fmt.Errorf("unable to write result: %w", werr)
	}
	if err != nil && resp.Error != nil {
		return &reportedError{err: err}
	}
	return nil
}
