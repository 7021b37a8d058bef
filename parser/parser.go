// Package parser defines parse automaton turning source text into concrete syntax tree.
//
// Parser is an Earley recognizer over lazily lexed tokens: every token is lexed with the set of terms
// expected at its position. A successful recognition is followed by reconstruction of the best derivation:
// resolved precedence table filters out nestings that static precedence forbids, then derivations
// with fewer skipped tokens win, then TieBreaker (dynamic precedence by default), then higher static
// precedence, then the alternative declared first.
//
// Source errors never abort parsing: the shortest span of tokens that lets parsing continue is skipped
// and wrapped into ERROR node; input that cannot be parsed at all ends up in the trailing ERROR node.
package parser

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/ava12/cstx/external"
	"github.com/ava12/cstx/grammar"
	"github.com/ava12/cstx/lexer"
	"github.com/ava12/cstx/source"
	"github.com/ava12/cstx/tree"
)

// Default recovery limits.
const (
	DefaultRecoveryBack  = 16
	DefaultRecoveryAhead = 64
)

// Candidate describes one of derivations competing for the same span.
type Candidate struct {
	Production int
	Rule       string
	Dynamic    int
	Start, End int
}

// TieBreaker compares derivations having equal numbers of skipped tokens.
// Negative result prefers a, positive prefers b, zero leaves the choice to static precedence
// and declaration order. a is always the one found first. Only the sign of result matters.
type TieBreaker func(a, b Candidate) int

// DynamicPrecedence is the default TieBreaker: higher dynamic precedence wins.
func DynamicPrecedence(a, b Candidate) int {
	return b.Dynamic - a.Dynamic
}

// Options tune parser. Nil options mean defaults.
type Options struct {
	// Start is the start rule name, the table start rule is used if empty.
	Start string

	// TieBreaker replaces DynamicPrecedence.
	TieBreaker TieBreaker

	// Logger receives recovery events and scanner contract violations. Nil logger discards everything.
	Logger logrus.FieldLogger

	// RecoveryBack is the maximum number of accepted tokens that may be dropped when recovering from error.
	RecoveryBack int

	// RecoveryAhead is the maximum number of tokens that may be skipped after unexpected token.
	RecoveryAhead int
}

type prodShape struct {
	first, last, count int
}

// Parser is immutable and safe for concurrent use. Each parse owns its state and its external scanner.
type Parser struct {
	table   *grammar.Table
	lexer   *lexer.Lexer
	binding *external.Binding
	log     logrus.FieldLogger
	tie     TieBreaker
	back    int
	ahead   int

	prods     []grammar.Production
	shapes    []prodShape
	byNonterm [][]int
	nullable  []bool
	resolved  map[[2]int]grammar.Action

	start     int
	eof       int
	augmented int
}

// New creates parser for compiled table. bridge may be nil if grammar has no externals.
func New(t *grammar.Table, bridge *external.Bridge, opts *Options) (*Parser, error) {
	if t == nil {
		return nil, noTableError()
	}
	if opts == nil {
		opts = &Options{}
	}

	p := &Parser{
		table: t,
		log:   opts.Logger,
		tie:   opts.TieBreaker,
		back:  DefaultRecoveryBack,
		ahead: DefaultRecoveryAhead,
		start: t.Start,
	}
	if p.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		p.log = l
	}
	p.log = p.log.WithField("grammar", t.Name)
	if p.tie == nil {
		p.tie = DynamicPrecedence
	}

	if opts.RecoveryBack < 0 {
		return nil, wrongOptionError("RecoveryBack", opts.RecoveryBack)
	}
	if opts.RecoveryAhead < 0 {
		return nil, wrongOptionError("RecoveryAhead", opts.RecoveryAhead)
	}
	if opts.RecoveryBack > 0 {
		p.back = opts.RecoveryBack
	}
	if opts.RecoveryAhead > 0 {
		p.ahead = opts.RecoveryAhead
	}

	if opts.Start != "" {
		p.start = t.NontermIndex(opts.Start)
		if p.start < 0 {
			return nil, startRuleError(opts.Start)
		}
	}

	var e error
	p.lexer, e = lexer.New(t)
	if e != nil {
		return nil, e
	}

	names := make([]string, len(t.Externals))
	for i, ti := range t.Externals {
		names[i] = t.Terms[ti].Name
	}
	p.binding, e = bridge.Bind(names)
	if e != nil {
		return nil, e
	}

	p.prepare()
	return p, nil
}

func (p *Parser) prepare() {
	t := p.table
	p.eof = len(t.Terms)
	p.prods = make([]grammar.Production, len(t.Productions), len(t.Productions)+1)
	copy(p.prods, t.Productions)
	p.augmented = len(p.prods)
	p.prods = append(p.prods, grammar.Production{
		Nonterm: len(t.Nonterms),
		Steps: []grammar.Step{
			{Kind: grammar.NontermStep, Index: p.start},
			{Kind: grammar.TermStep, Index: p.eof},
		},
	})

	p.byNonterm = make([][]int, len(t.Nonterms)+1)
	p.shapes = make([]prodShape, len(p.prods))
	for i, pr := range p.prods {
		p.byNonterm[pr.Nonterm] = append(p.byNonterm[pr.Nonterm], i)
		sh := prodShape{first: -1, last: -1}
		for k, s := range pr.Steps {
			if s.Kind == grammar.PlaceholderStep {
				continue
			}
			if sh.first < 0 {
				sh.first = k
			}
			sh.last = k
			sh.count++
		}
		p.shapes[i] = sh
	}

	p.nullable = make([]bool, len(t.Nonterms)+1)
	for changed := true; changed; {
		changed = false
		for _, pr := range p.prods {
			if p.nullable[pr.Nonterm] {
				continue
			}
			null := true
			for _, s := range pr.Steps {
				if s.Kind == grammar.TermStep || (s.Kind == grammar.NontermStep && !p.nullable[s.Index]) {
					null = false
					break
				}
			}
			if null {
				p.nullable[pr.Nonterm] = true
				changed = true
			}
		}
	}

	p.resolved = make(map[[2]int]grammar.Action, len(t.Precedence))
	for _, r := range t.Precedence {
		p.resolved[[2]int{r.Reduce, r.Shift}] = r.Action
	}
}

// Table returns grammar table of the parser.
func (p *Parser) Table() *grammar.Table {
	return p.table
}

// Parse parses source and returns its syntax tree.
// The only possible error is the context error, source errors are represented by ERROR nodes.
func (p *Parser) Parse(ctx context.Context, src *source.Source) (*tree.Tree, error) {
	pc := newParseContext(ctx, p, src)
	e := pc.recognize()
	if e != nil {
		return nil, e
	}

	root := pc.buildTree()
	tree.Normalize(root, p.table)
	res := tree.New(root, src, p.table)
	pc.log.WithFields(logrus.Fields{
		"tokens": len(pc.tokens),
		"errors": len(res.Errors()),
	}).Debug("parsed")
	return res, nil
}

// ParseBytes parses named source text.
func (p *Parser) ParseBytes(ctx context.Context, name string, content []byte) (*tree.Tree, error) {
	return p.Parse(ctx, source.New(name, content))
}
