package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ava12/cstx/tree"
)

func getParseCmd(gs *globalState) *cobra.Command {
	var leaves bool

	cmd := &cobra.Command{
		Use:   "parse <grammar> <file>...",
		Short: "parse files and print syntax trees as S-expressions",
		Long: `Parse files and print syntax trees as S-expressions.

Files are parsed concurrently (see --jobs), trees are printed in command line order.
Syntax errors are printed to stderr, the command fails if any file contains errors.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, e := loadGrammar(gs, args[0])
			if e != nil {
				return e
			}
			p, e := newParser(gs, src)
			if e != nil {
				return e
			}

			files := args[1:]
			trees := make([]*tree.Tree, len(files))
			eg, ctx := errgroup.WithContext(cmd.Context())
			limit := gs.conf.Jobs
			if limit <= 0 {
				limit = -1
			}
			eg.SetLimit(limit)

			for i, name := range files {
				i, name := i, name
				eg.Go(func() error {
					content, e := afero.ReadFile(gs.fs, name)
					if e != nil {
						return fmt.Errorf("reading %s: %w", name, e)
					}
					trees[i], e = p.ParseBytes(ctx, name, content)
					return e
				})
			}
			if e = eg.Wait(); e != nil {
				return e
			}

			broken := 0
			for i, t := range trees {
				printTree(gs, files[i], t, leaves)
				if errs := t.Errors(); len(errs) > 0 {
					broken++
					for _, ce := range errs {
						gs.palette.err.Fprintln(gs.stderr, ce.Error())
					}
				}
			}
			if broken > 0 {
				return fmt.Errorf("%d of %d files contain syntax errors", broken, len(files))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&leaves, "leaves", false, "also print leaf tokens")
	return cmd
}

func printTree(gs *globalState, name string, t *tree.Tree, leaves bool) {
	gs.palette.name.Fprintln(gs.stdout, name)
	fmt.Fprintln(gs.stdout, t.String())
	if !leaves {
		return
	}

	for _, l := range t.Leaves() {
		if l.IsPlaceholder() {
			continue
		}
		fmt.Fprintf(gs.stdout, "  %d:%d %s %q\n", l.Line(), l.Col(), l.Kind(), l.Text())
	}
}
