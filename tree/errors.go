package tree

import (
	"unicode/utf8"

	"github.com/ava12/cstx"
	"github.com/ava12/cstx/source"
)

// ErrorKind is the kind of error nodes.
const ErrorKind = "ERROR"

// Error codes used for syntax errors:
const (
	// UnexpectedTokenError indicates skipped input starting with a recognized token.
	UnexpectedTokenError = cstx.SyntaxErrors + iota

	// WrongCharError indicates skipped input starting with a character that no token matches.
	WrongCharError
)

// NewError creates error node spanning source bytes [start, end).
// Leaf error node stands for a single character that no token matches.
func NewError(src *source.Source, start, end int, leaf bool) *Node {
	flags := NamedNode | ErrorNode
	if leaf {
		flags |= LeafNode
	}
	return NewNode(ErrorKind, ErrorKind, flags, src, start, end)
}

// Errors returns syntax errors, one per outermost error node, in source order.
func (t *Tree) Errors() []*cstx.Error {
	var res []*cstx.Error
	Walk(t.root, WalkLtr, func(n *Node) (bool, bool) {
		if !n.IsError() {
			return true, true
		}

		res = append(res, syntaxError(n))
		return false, true
	})
	return res
}

func syntaxError(n *Node) *cstx.Error {
	l := FirstLeaf(n)
	if l == nil {
		l = n
	}

	if l.IsError() {
		r, _ := utf8.DecodeRuneInString(l.Text())
		return cstx.FormatErrorPos(l, WrongCharError, "wrong char %q (u+%x)", r, r)
	}
	return cstx.FormatErrorPos(l, UnexpectedTokenError, "unexpected %q", l.Text())
}
