package parser

import (
	"github.com/ava12/cstx"
)

// Error codes used by parser:
const (
	// NoTableError indicates that parser is created without grammar table.
	NoTableError = cstx.ParserErrors + iota

	// StartRuleError indicates that requested start rule is not a nonterminal of the table.
	StartRuleError

	// WrongOptionError indicates negative recovery limits.
	WrongOptionError
)

func noTableError() *cstx.Error {
	return cstx.FormatError(NoTableError, "no grammar table")
}

func startRuleError(name string) *cstx.Error {
	return cstx.FormatError(StartRuleError, "start rule %q is not a nonterminal", name)
}

func wrongOptionError(name string, value int) *cstx.Error {
	return cstx.FormatError(WrongOptionError, "wrong %s value: %d", name, value)
}
