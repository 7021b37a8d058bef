package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/ava12/cstx/parser"
)

const (
	promptMain = "> "
	promptCont = ". "
)

func getReplCmd(gs *globalState) *cobra.Command {
	return &cobra.Command{
		Use:   "repl <grammar>",
		Short: "parse lines typed interactively",
		Long: `Parse lines typed interactively and print syntax trees.

A line ending with backslash is continued on the next line.
:leaves toggles printing of leaf tokens, :quit exits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, e := loadGrammar(gs, args[0])
			if e != nil {
				return e
			}
			p, e := newParser(gs, src)
			if e != nil {
				return e
			}

			ln, done := gs.newPrompter()
			defer done()
			return repl(cmd.Context(), gs, p, ln)
		},
	}
}

// readInput reads lines until one not ending with backslash, ok is false at the end of input.
func readInput(ln prompter) (string, bool, error) {
	var sb strings.Builder
	prompt := promptMain
	for {
		line, e := ln.Prompt(prompt)
		if errors.Is(e, io.EOF) || errors.Is(e, liner.ErrPromptAborted) {
			return sb.String(), false, nil
		}
		if e != nil {
			return "", false, e
		}

		if !strings.HasSuffix(line, `\`) {
			sb.WriteString(line)
			return sb.String(), true, nil
		}
		sb.WriteString(strings.TrimSuffix(line, `\`))
		sb.WriteByte('\n')
		prompt = promptCont
	}
}

func repl(ctx context.Context, gs *globalState, p *parser.Parser, ln prompter) error {
	leaves := false
	for n := 1; ; n++ {
		input, ok, e := readInput(ln)
		if e != nil {
			return e
		}
		if !ok {
			fmt.Fprintln(gs.stdout)
			return nil
		}

		switch strings.TrimSpace(input) {
		case "":
			continue
		case ":quit", ":q":
			return nil
		case ":leaves":
			leaves = !leaves
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))

		t, e := p.ParseBytes(ctx, fmt.Sprintf("input#%d", n), []byte(input))
		if e != nil {
			return e
		}
		printTree(gs, t.Source().Name(), t, leaves)
		for _, ce := range t.Errors() {
			gs.palette.err.Fprintln(gs.stderr, ce.Error())
		}
	}
}
