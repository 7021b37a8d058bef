package parser

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ava12/cstx/grammar"
	"github.com/ava12/cstx/internal/ints"
	"github.com/ava12/cstx/lexer"
	"github.com/ava12/cstx/source"
)

type item struct {
	prod, dot, origin int
}

type itemSet struct {
	items    []item
	index    map[item]bool
	waiting  map[int][]int
	done     int
	expected *ints.Set
}

func newItemSet() *itemSet {
	return &itemSet{index: make(map[item]bool), waiting: make(map[int][]int)}
}

type ntOrigin struct {
	nt, origin int
}

type parseContext struct {
	ctx     context.Context
	p       *Parser
	src     *source.Source
	scanner *lexer.Scanner
	log     logrus.FieldLogger

	sets     []*itemSet
	tokens   []lexer.Token
	skips    map[int][]int
	accepted bool

	ends   map[ntOrigin][]int
	derivs map[spanKey]*deriv
	alts   map[stepKey]alt
}

func newParseContext(ctx context.Context, p *Parser, src *source.Source) *parseContext {
	log := p.log.WithField("source", src.Name())
	return &parseContext{
		ctx:     ctx,
		p:       p,
		src:     src,
		scanner: p.lexer.Open(src, p.binding.Open(log), log),
		log:     log,
		skips:   make(map[int][]int),
	}
}

func (pc *parseContext) add(k int, it item) {
	set := pc.sets[k]
	if set.index[it] {
		return
	}
	set.index[it] = true
	set.items = append(set.items, it)
	set.expected = nil
}

// closure runs predictor and completer on unprocessed items of set k.
func (pc *parseContext) closure(k int) {
	set := pc.sets[k]
	for ; set.done < len(set.items); set.done++ {
		i := set.done
		it := set.items[i]
		prod := pc.p.prods[it.prod]
		if it.dot == len(prod.Steps) {
			origin := pc.sets[it.origin]
			for _, wi := range origin.waiting[prod.Nonterm] {
				w := origin.items[wi]
				pc.add(k, item{w.prod, w.dot + 1, w.origin})
			}
			continue
		}

		s := prod.Steps[it.dot]
		switch s.Kind {
		case grammar.PlaceholderStep:
			pc.add(k, item{it.prod, it.dot + 1, it.origin})
		case grammar.NontermStep:
			set.waiting[s.Index] = append(set.waiting[s.Index], i)
			for _, pi := range pc.p.byNonterm[s.Index] {
				pc.add(k, item{pi, 0, k})
			}
			if pc.p.nullable[s.Index] {
				pc.add(k, item{it.prod, it.dot + 1, it.origin})
			}
		}
	}
}

// expected returns terms that items of set k can scan next.
func (pc *parseContext) expected(k int) *ints.Set {
	set := pc.sets[k]
	if set.expected != nil {
		return set.expected
	}

	res := ints.NewSet()
	for _, it := range set.items {
		steps := pc.p.prods[it.prod].Steps
		if it.dot < len(steps) && steps[it.dot].Kind == grammar.TermStep {
			res.Add(steps[it.dot].Index)
		}
	}
	set.expected = res
	return res
}

func (pc *parseContext) termOf(t lexer.Token) int {
	if t.IsEof() {
		return pc.p.eof
	}
	return t.Term
}

func (pc *parseContext) tokenPos(k int) int {
	if k == 0 {
		return 0
	}
	return pc.tokens[k-1].End
}

func (pc *parseContext) scan(k int) bool {
	term := pc.termOf(pc.tokens[k])
	if len(pc.sets) == k+1 {
		pc.sets = append(pc.sets, newItemSet())
	}
	for _, it := range pc.sets[k].items {
		steps := pc.p.prods[it.prod].Steps
		if it.dot < len(steps) && steps[it.dot].Kind == grammar.TermStep && steps[it.dot].Index == term {
			pc.add(k+1, item{it.prod, it.dot + 1, it.origin})
		}
	}
	return len(pc.sets[k+1].items) > 0
}

func (pc *parseContext) recognize() error {
	pc.sets = []*itemSet{newItemSet()}
	pc.add(0, item{pc.p.augmented, 0, 0})
	pc.closure(0)

	for k := 0; ; {
		if e := pc.ctx.Err(); e != nil {
			return e
		}

		if len(pc.tokens) == k {
			pc.tokens = append(pc.tokens, pc.scanner.Next(pc.tokenPos(k), pc.expected(k)))
		}

		if pc.scan(k) {
			pc.closure(k + 1)
			if pc.tokens[k].IsEof() {
				pc.accepted = true
				break
			}
			k++
			continue
		}

		pc.sets = pc.sets[:k+1]
		m, ok := pc.recover(k)
		if !ok {
			pc.log.WithFields(logrus.Fields{"line": pc.tokens[k].Line(), "col": pc.tokens[k].Col()}).
				Debug("cannot recover from syntax error")
			break
		}
		k = m
	}

	pc.indexEnds()
	return nil
}

// lookahead lexes tokens following token k without context, up to recovery limit or end of source.
func (pc *parseContext) lookahead(k int) []lexer.Token {
	res := []lexer.Token{pc.tokens[k]}
	for len(res) <= pc.p.ahead {
		last := res[len(res)-1]
		if last.IsEof() {
			break
		}
		res = append(res, pc.scanner.Next(last.End, nil))
	}
	return res
}

// recover finds the shortest span of tokens j..m-1 (j <= k <= m) such that set j accepts token m
// and makes set m continue set j. Returns m.
func (pc *parseContext) recover(k int) (int, bool) {
	la := pc.lookahead(k)
	last := k + len(la) - 1
	end := func(i int) int {
		if i < k {
			return pc.tokens[i].End
		}
		return la[i-k].End
	}

	for cost := 1; cost <= pc.p.back+pc.p.ahead; cost++ {
		for j := k; j >= 0 && j >= k-pc.p.back; j-- {
			m := j + cost
			if m < k || m > last {
				continue
			}

			pos := 0
			if m > 0 {
				pos = end(m - 1)
			}
			valid := pc.expected(j)
			tok := pc.scanner.Next(pos, valid)
			if !valid.Contains(pc.termOf(tok)) {
				continue
			}

			pc.skip(k, j, m, la, tok)
			pc.log.WithFields(logrus.Fields{
				"line":    pc.tokens[j].Line(),
				"col":     pc.tokens[j].Col(),
				"skipped": m - j,
			}).Debug("recovered from syntax error")
			return m, true
		}
	}
	return 0, false
}

func (pc *parseContext) skip(k, j, m int, la []lexer.Token, tok lexer.Token) {
	pc.tokens = pc.tokens[:k+1]
	for i := k + 1; i < m; i++ {
		pc.tokens = append(pc.tokens, la[i-k])
	}
	if m == k {
		pc.tokens[k] = tok
	} else {
		pc.tokens = append(pc.tokens, tok)
	}

	for len(pc.sets) <= m {
		pc.sets = append(pc.sets, newItemSet())
	}
	for _, it := range pc.sets[j].items {
		pc.add(m, it)
	}
	pc.closure(m)
	pc.skips[j] = append(pc.skips[j], m)
}

// finish lexes the rest of source without context after failed recognition.
func (pc *parseContext) finish() {
	last := pc.tokens[len(pc.tokens)-1]
	for !last.IsEof() {
		last = pc.scanner.Next(last.End, nil)
		pc.tokens = append(pc.tokens, last)
	}
}

func (pc *parseContext) indexEnds() {
	pc.ends = make(map[ntOrigin][]int)
	for k, set := range pc.sets {
		for _, it := range set.items {
			prod := pc.p.prods[it.prod]
			if it.dot == len(prod.Steps) && it.prod != pc.p.augmented {
				key := ntOrigin{prod.Nonterm, it.origin}
				ends := pc.ends[key]
				if len(ends) == 0 || ends[len(ends)-1] != k {
					pc.ends[key] = append(ends, k)
				}
			}
		}
	}
}
