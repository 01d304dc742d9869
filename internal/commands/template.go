// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
)

// TemplateData is the data available to reply templates.
type TemplateData struct {
	// Args holds the bound arguments by name
	Args Bindings

	// Rest holds the fragments after the matched syntax
	Rest []string

	Caller  Caller
	Command string
}

// TemplateHandler compiles text as a Go template with the sprig function map
// and returns a handler that renders it.
func TemplateHandler(name, text string) (Handler, error) {
	tmpl, err := template.New(name).Funcs(sprig.FuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("reply template: %w", err)
	}

	return func(_ context.Context, inv *Invocation) (*Reply, error) {
		data := TemplateData{
			Args:    inv.Args,
			Rest:    inv.Rest(),
			Caller:  inv.Caller,
			Command: inv.Command.Name,
		}
		var sb strings.Builder
		if err := tmpl.Execute(&sb, data); err != nil {
			return nil, fmt.Errorf("render reply: %w", err)
		}
		return &Reply{Text: strings.TrimSpace(sb.String())}, nil
	}, nil
}
