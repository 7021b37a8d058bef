// Package lexer defines context-aware lexical analyzer.
package lexer

import (
	"bytes"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/ava12/cstx"
	"github.com/ava12/cstx/external"
	"github.com/ava12/cstx/grammar"
	"github.com/ava12/cstx/internal/bmap"
	"github.com/ava12/cstx/internal/ints"
	"github.com/ava12/cstx/source"
)

// Error codes used by lexer:
const (
	// WrongRegexpError indicates that term pattern is not a valid regular expression.
	WrongRegexpError = cstx.LexicalErrors + iota

	// WrongWordError indicates that word term of a table cannot be used for keyword extraction.
	WrongWordError
)

func wrongRegexpError(name, re string, e error) *cstx.Error {
	return cstx.FormatError(WrongRegexpError, "term %s: wrong regexp /%s/: %s", name, re, e.Error())
}

func wrongWordError(index int) *cstx.Error {
	return cstx.FormatError(WrongWordError, "word term %d is not a pattern term", index)
}

// Lexer matches terms of compiled grammar table.
// Lexer is immutable and safe for concurrent use, per-parse state lives in Scanner.
type Lexer struct {
	table    *grammar.Table
	res      []*regexp.Regexp
	literals [][]byte
	keywords *bmap.BMap[[]int]
}

// New creates lexer for table terms.
func New(t *grammar.Table) (*Lexer, error) {
	l := &Lexer{
		table:    t,
		res:      make([]*regexp.Regexp, len(t.Terms)),
		literals: make([][]byte, len(t.Terms)),
		keywords: bmap.New[[]int](len(t.Terms)),
	}

	for i, term := range t.Terms {
		switch {
		case term.Is(grammar.ExternalTerm):
		case term.Is(grammar.LiteralTerm):
			l.literals[i] = []byte(term.Re)
			if term.Is(grammar.KeywordTerm) {
				l.keywords.Update(l.literals[i], func(kws []int) []int { return append(kws, i) })
			}
		default:
			re, e := regexp.Compile(`^(?:` + term.Re + `)`)
			if e != nil {
				return nil, wrongRegexpError(term.Name, term.Re, e)
			}
			re.Longest()
			l.res[i] = re
		}
	}

	if t.Word >= 0 && (t.Word >= len(t.Terms) || t.Terms[t.Word].Is(grammar.ExternalTerm)) {
		return nil, wrongWordError(t.Word)
	}
	return l, nil
}

// Table returns the table lexer was created for.
func (l *Lexer) Table() *grammar.Table {
	return l.table
}

// Open creates scanner for a single source. ext may be nil if grammar has no externals.
func (l *Lexer) Open(src *source.Source, ext *external.Session, log logrus.FieldLogger) *Scanner {
	return &Scanner{
		l:        l,
		src:      src,
		content:  src.Content(),
		ext:      ext,
		log:      log,
		extValid: make([]bool, len(l.table.Externals)),
	}
}

// Scanner fetches tokens of a single source. It is not safe for concurrent use.
type Scanner struct {
	l        *Lexer
	src      *source.Source
	content  []byte
	ext      *external.Session
	log      logrus.FieldLogger
	extValid []bool
}

type candidate struct {
	term, size int
	prec       int
	literal    bool
}

func (c candidate) beats(o candidate) bool {
	if o.size == 0 {
		return c.size > 0
	}
	if c.size != o.size {
		return c.size > o.size
	}
	if c.prec != o.prec {
		return c.prec > o.prec
	}
	if c.literal != o.literal {
		return c.literal
	}
	return c.term < o.term
}

// accepts tells whether term makes a token. Nil valid set means any non-extra term.
func (s *Scanner) accepts(valid *ints.Set, term int) bool {
	if valid == nil {
		return !s.l.table.Terms[term].Is(grammar.ExtraTerm)
	}
	return valid.Contains(term)
}

func (s *Scanner) considers(valid *ints.Set, term int) bool {
	return s.accepts(valid, term) || s.l.table.Terms[term].Is(grammar.ExtraTerm)
}

// Next fetches token starting at byte offset pos.
// valid contains terms expected at this position, nil means any term.
// Extras are skipped and attached to returned token.
// External scanner is tried first, then the longest match among valid terms and extras.
// A term outside of valid set is returned if no valid one matches, a single rune of ErrorTerm if nothing matches.
func (s *Scanner) Next(pos int, valid *ints.Set) Token {
	var extras []Token
	for {
		immediate := len(extras) == 0
		if term, size, ok := s.external(pos, valid); ok {
			tok := NewToken(term, pos, pos+size, s.src)
			if !s.accepts(valid, term) {
				extras = append(extras, tok)
				pos += size
				continue
			}

			tok.Extras = extras
			return tok
		}

		if pos >= len(s.content) {
			tok := NewToken(EofTerm, len(s.content), len(s.content), s.src)
			tok.Extras = extras
			return tok
		}

		c := s.match(pos, valid, immediate)
		if c.size > 0 && !s.accepts(valid, c.term) {
			extras = append(extras, NewToken(c.term, pos, pos+c.size, s.src))
			pos += c.size
			continue
		}

		if c.size == 0 && valid != nil {
			c = s.match(pos, nil, true)
		}

		var tok Token
		if c.size > 0 {
			tok = NewToken(c.term, pos, pos+c.size, s.src)
		} else {
			_, size := utf8.DecodeRune(s.content[pos:])
			tok = NewToken(ErrorTerm, pos, pos+size, s.src)
			if s.log != nil {
				s.log.WithField("pos", fmt.Sprintf("%d:%d", tok.Line(), tok.Col())).Debug("no term matches")
			}
		}
		tok.Extras = extras
		return tok
	}
}

func (s *Scanner) external(pos int, valid *ints.Set) (int, int, bool) {
	if s.ext == nil || len(s.extValid) == 0 {
		return 0, 0, false
	}

	t := s.l.table
	for i, term := range t.Externals {
		s.extValid[i] = s.considers(valid, term)
	}
	kind, size, ok := s.ext.Scan(s.content[pos:], s.extValid)
	if !ok {
		return 0, 0, false
	}
	return t.Externals[kind], size, true
}

func (s *Scanner) match(pos int, valid *ints.Set, immediate bool) candidate {
	t := s.l.table
	input := s.content[pos:]
	var best candidate

	for i, term := range t.Terms {
		if term.Flags&(grammar.ExternalTerm|grammar.KeywordTerm) != 0 || i == t.Word || !s.considers(valid, i) {
			continue
		}
		if !immediate && term.Is(grammar.ImmediateTerm) {
			continue
		}

		c := candidate{term: i, prec: term.Prec}
		if lit := s.l.literals[i]; lit != nil {
			if bytes.HasPrefix(input, lit) {
				c.size = len(lit)
				c.literal = true
			}
		} else if loc := s.l.res[i].FindIndex(input); loc != nil {
			c.size = loc[1]
		}
		if c.beats(best) {
			best = c
		}
	}

	if c := s.matchWord(input, valid, immediate); c.beats(best) {
		best = c
	}
	return best
}

// matchWord matches word term, the match is a keyword if its text is one.
func (s *Scanner) matchWord(input []byte, valid *ints.Set, immediate bool) candidate {
	t := s.l.table
	if t.Word < 0 {
		return candidate{}
	}

	var size int
	word := t.Terms[t.Word]
	if lit := s.l.literals[t.Word]; lit != nil {
		if bytes.HasPrefix(input, lit) {
			size = len(lit)
		}
	} else if loc := s.l.res[t.Word].FindIndex(input); loc != nil {
		size = loc[1]
	}
	if size == 0 {
		return candidate{}
	}

	if kws, found := s.l.keywords.Get(input[:size]); found {
		for _, k := range kws {
			if s.considers(valid, k) && (immediate || !t.Terms[k].Is(grammar.ImmediateTerm)) {
				return candidate{term: k, size: size, prec: t.Terms[k].Prec, literal: true}
			}
		}
	}
	if s.considers(valid, t.Word) && (immediate || !word.Is(grammar.ImmediateTerm)) {
		return candidate{term: t.Word, size: size, prec: word.Prec, literal: word.Is(grammar.LiteralTerm)}
	}
	return candidate{}
}
