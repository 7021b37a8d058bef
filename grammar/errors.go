package grammar

import (
	"github.com/ava12/cstx"
)

// Error codes used by grammar codecs:
const (
	// MalformedDocumentError indicates a document that is not a grammar.
	MalformedDocumentError = cstx.GrammarErrors + 50 + iota

	// UnknownExprTypeError indicates an expression node of unknown type.
	UnknownExprTypeError

	// MalformedExprError indicates an expression node with missing or wrong attributes.
	MalformedExprError

	// EbnfError indicates an EBNF grammar that cannot be parsed or converted.
	EbnfError
)

func malformedDocumentError(format, msg string) *cstx.Error {
	return cstx.FormatError(MalformedDocumentError, "malformed %s grammar document: %s", format, msg)
}

func unknownExprTypeError(t string) *cstx.Error {
	return cstx.FormatError(UnknownExprTypeError, "unknown expression type %q", t)
}

func malformedExprError(t ExprType, msg string) *cstx.Error {
	return cstx.FormatError(MalformedExprError, "malformed %s expression: %s", t, msg)
}

func ebnfError(msg string, params ...any) *cstx.Error {
	return cstx.FormatError(EbnfError, "EBNF: "+msg, params...)
}
