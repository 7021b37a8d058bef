package lexer

import (
	"github.com/ava12/cstx/source"
)

// Special term values of Token.Term.
const (
	// ErrorTerm marks a single rune that no term matches.
	ErrorTerm = -1

	// EofTerm marks the end of source.
	EofTerm = -2
)

// Token is a lexeme: term index and byte span in source.
// Extras contains extra tokens (whitespace, comments) skipped right before the token.
type Token struct {
	Term       int
	Start, End int
	Extras     []Token
	src        *source.Source
}

// NewToken creates token. src may be nil.
func NewToken(term, start, end int, src *source.Source) Token {
	return Token{Term: term, Start: start, End: end, src: src}
}

func (t Token) Source() *source.Source {
	return t.src
}

func (t Token) Text() string {
	if t.src == nil {
		return ""
	}
	return t.src.Text(t.Start, t.End)
}

func (t Token) Len() int {
	return t.End - t.Start
}

func (t Token) IsEof() bool {
	return t.Term == EofTerm
}

func (t Token) SourceName() string {
	if t.src == nil {
		return ""
	}
	return t.src.Name()
}

func (t Token) Line() int {
	if t.src == nil {
		return 0
	}
	line, _ := t.src.LineCol(t.Start)
	return line
}

func (t Token) Col() int {
	if t.src == nil {
		return 0
	}
	_, col := t.src.LineCol(t.Start)
	return col
}
