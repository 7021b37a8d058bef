package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/ava12/cstx/external"
	"github.com/ava12/cstx/grammar"
	"github.com/ava12/cstx/langdef"
	"github.com/ava12/cstx/languages/rust"
	"github.com/ava12/cstx/parser"
)

type language struct {
	grammar func() *grammar.Grammar
	bridge  *external.Bridge
}

var builtins = map[string]language{
	"rust": {rust.Grammar, rust.Bridge},
}

func builtinNames() []string {
	res := make([]string, 0, len(builtins))
	for name := range builtins {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

// source is a grammar with its origin.
type source struct {
	name    string
	path    string // empty for built-in languages
	grammar *grammar.Grammar
	bridge  *external.Bridge
}

func loadGrammar(gs *globalState, name string) (*source, error) {
	if lang, has := builtins[name]; has {
		return &source{name: name, grammar: lang.grammar(), bridge: lang.bridge}, nil
	}

	src, e := afero.ReadFile(gs.fs, name)
	if e != nil {
		return nil, fmt.Errorf("reading grammar (built-in languages are %s): %w", strings.Join(builtinNames(), ", "), e)
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(filepath.Base(name), ext)
	gr := grammar.New(base)
	switch strings.ToLower(ext) {
	case ".json":
		e = json.Unmarshal(src, gr)
	case ".yaml", ".yml":
		e = yaml.Unmarshal(src, gr)
	case ".ebnf":
		if gs.conf.Start == "" {
			return nil, fmt.Errorf("start rule is required for EBNF grammar %s", name)
		}
		gr, e = grammar.FromEBNF(base, gs.conf.Start, src)
	default:
		return nil, fmt.Errorf("unknown grammar format %q", ext)
	}
	if e != nil {
		return nil, fmt.Errorf("loading grammar %s: %w", name, e)
	}
	return &source{name: base, path: name, grammar: gr}, nil
}

func compileGrammar(gs *globalState, src *source) (*grammar.Table, error) {
	return langdef.Compile(src.grammar, &langdef.Options{
		Logger:     gs.logger,
		ShapeDepth: gs.conf.ShapeDepth,
		ShapeLimit: gs.conf.ShapeLimit,
	})
}

func newParser(gs *globalState, src *source) (*parser.Parser, error) {
	t, e := compileGrammar(gs, src)
	if e != nil {
		return nil, e
	}

	return parser.New(t, src.bridge, &parser.Options{
		Start:         gs.conf.Start,
		Logger:        gs.logger,
		RecoveryBack:  gs.conf.RecoveryBack,
		RecoveryAhead: gs.conf.RecoveryAhead,
	})
}
