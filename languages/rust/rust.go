// Package rust contains Rust grammar and its external scanner.
package rust

import (
	"sync"

	"github.com/ava12/cstx/grammar"
	"github.com/ava12/cstx/langdef"
	"github.com/ava12/cstx/parser"
)

var (
	tableOnce sync.Once
	table     *grammar.Table
	tableErr  error

	parserOnce sync.Once
	rustParser *parser.Parser
	parserErr  error
)

// Compile compiles fresh copy of Rust grammar.
func Compile(opts *langdef.Options) (*grammar.Table, error) {
	return langdef.Compile(Grammar(), opts)
}

// Table returns shared compiled Rust grammar, it is compiled on first call.
func Table() (*grammar.Table, error) {
	tableOnce.Do(func() {
		table, tableErr = Compile(nil)
	})
	return table, tableErr
}

// NewParser creates Rust parser with custom options using shared table.
func NewParser(opts *parser.Options) (*parser.Parser, error) {
	t, e := Table()
	if e != nil {
		return nil, e
	}
	return parser.New(t, Bridge, opts)
}

// Parser returns shared Rust parser with default options.
func Parser() (*parser.Parser, error) {
	parserOnce.Do(func() {
		rustParser, parserErr = NewParser(nil)
	})
	return rustParser, parserErr
}
