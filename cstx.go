/*
Package cstx compiles declarative grammars into deterministic parsers producing concrete syntax trees.

Consists of subpackages:
  - cmd/cstgen: console utility compiling, exporting and trying out grammars;
  - grammar: grammar IR (rule combinators and side tables), its JSON, YAML and EBNF codecs,
    and the compiled table consumed by parser;
  - langdef: grammar compiler, validates grammar, flattens rules and resolves ambiguities;
  - external: contract between grammar and stateful scanners of context-sensitive tokens;
  - lexer: context-aware lexical analyzer;
  - parser: parse automaton building concrete syntax trees;
  - source: source text and position information;
  - tree: syntax tree nodes, traversal functions and tree shape normalization;
  - languages/rust: Rust grammar with its external scanner.

Typical usage is:

1. Describe grammar using combinators of grammar package (or load it from JSON, YAML, or EBNF).

2. Compile grammar using langdef.Compile. Every ambiguity must be resolved either by precedence
and associativity or by explicit conflict declaration, otherwise compilation fails.

3. Create parser for compiled table and external scanner bridge, then parse source texts.
Each parse returns independent syntax tree, source errors are represented by ERROR nodes.
*/
package cstx

import (
	"fmt"
)

// Error classes used by subpackages, each class contains up to 99 error codes:
const (
	GrammarErrors = 1   // used by grammar and langdef
	LexicalErrors = 101 // used by lexer
	SyntaxErrors  = 201 // used by parser for source errors
	ParserErrors  = 301 // used by parser
	ScannerErrors = 401 // used by external
)

// Error is the error type used by cstx subpackages.
type Error struct {
	// Code contains non-zero error code.
	Code int

	// Message contains non-empty error message including source name and position information if provided.
	Message string

	// SourceName contains source name that caused this error or empty string.
	SourceName string

	// Line contains line number in source file or 0.
	Line int

	// Col contains column number in source file or 0.
	Col int
}

// SourcePos is used to retrieve source name and position information when constructing an error;
// source.Pos and lexer.Token implement this interface.
type SourcePos interface {
	// SourceName returns source file name or empty string.
	SourceName() string
	// Line returns line number or 0.
	Line() int
	// Col returns column number or 0.
	Col() int
}

// NewError creates new Error structure.
// name, line, and col will be added to error message if provided (non-zero).
func NewError(code int, msg, name string, line, col int) *Error {
	if line != 0 && col != 0 {
		if name == "" {
			msg += fmt.Sprintf(" at line %d col %d", line, col)
		} else {
			msg += fmt.Sprintf(" in %s at line %d col %d", name, line, col)
		}
	}
	return &Error{code, msg, name, line, col}
}

// Error simply returns Error.Message.
func (e *Error) Error() string {
	return e.Message
}

// Class returns error class (one of *Errors constants) this error belongs to.
func (e *Error) Class() int {
	return (e.Code-1)/100*100 + 1
}

// FormatError creates Error structure with no source and position information.
// params will be added to error message using fmt.Sprintf function.
func FormatError(code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, "", 0, 0)
}

// FormatErrorPos creates Error structure with source and position information.
// pos must not be nil.
// params will be added to error message using fmt.Sprintf function.
func FormatErrorPos(pos SourcePos, code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, pos.SourceName(), pos.Line(), pos.Col())
}
