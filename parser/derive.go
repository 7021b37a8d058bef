package parser

import (
	"github.com/ava12/cstx/grammar"
)

type derivKind int

const (
	prodDeriv derivKind = iota
	tokenDeriv
	placeholderDeriv
	skipDeriv
)

// deriv is a derivation of a token span [from, to).
type deriv struct {
	kind     derivKind
	prod     int
	from, to int
	children *link
	errors   int
	dynamic  int
}

// link is a child of production derivation; step is -1 for skipped tokens.
type link struct {
	step int
	d    *deriv
	next *link
}

type alt struct {
	ok      bool
	errors  int
	dynamic int
	head    *link
}

type spanKey struct {
	nt, from, to, left, right int
}

type stepKey struct {
	prod, k, from, to, left, right int
}

// allowed tells whether production may be the leftmost child of left production
// and the rightmost child of right production, -1 means no such parent.
func (p *Parser) allowed(prod, left, right int) bool {
	if p.shapes[prod].count < 2 {
		return true
	}
	if left >= 0 && p.resolved[[2]int{prod, left}] == grammar.ShiftAction {
		return false
	}
	if right >= 0 && p.resolved[[2]int{right, prod}] == grammar.ReduceAction {
		return false
	}
	return true
}

func (pc *parseContext) candidate(d *deriv) Candidate {
	c := Candidate{
		Production: d.prod,
		Rule:       pc.p.table.RuleName(d.prod),
		Dynamic:    d.dynamic,
		Start:      pc.tokens[d.from].Start,
		End:        pc.tokens[d.from].Start,
	}
	if d.to > d.from {
		c.End = pc.tokens[d.to-1].End
	}
	return c
}

// prefer tells whether derivation b beats derivation a found before it.
func (pc *parseContext) prefer(a, b *deriv) bool {
	if a.errors != b.errors {
		return b.errors < a.errors
	}
	if c := pc.p.tie(pc.candidate(a), pc.candidate(b)); c != 0 {
		return c > 0
	}
	return pc.p.prods[b.prod].Prec > pc.p.prods[a.prod].Prec
}

// derive returns the best derivation of nonterminal nt spanning tokens [from, to) or nil.
func (pc *parseContext) derive(nt, from, to, left, right int) *deriv {
	key := spanKey{nt, from, to, left, right}
	if d, found := pc.derivs[key]; found {
		return d
	}
	pc.derivs[key] = nil

	var best *deriv
	for _, pi := range pc.p.byNonterm[nt] {
		if !pc.p.allowed(pi, left, right) {
			continue
		}

		a := pc.matchSteps(pi, 0, from, to, left, right)
		if !a.ok {
			continue
		}

		d := &deriv{
			kind:     prodDeriv,
			prod:     pi,
			from:     from,
			to:       to,
			children: a.head,
			errors:   a.errors,
			dynamic:  a.dynamic + pc.p.prods[pi].Dynamic,
		}
		if best == nil || pc.prefer(best, d) {
			best = d
		}
	}

	pc.derivs[key] = best
	return best
}

// matchSteps matches steps of production starting with k against tokens [from, to).
func (pc *parseContext) matchSteps(prod, k, from, to, left, right int) alt {
	key := stepKey{prod, k, from, to, left, right}
	if a, found := pc.alts[key]; found {
		return a
	}

	var best alt
	take := func(a alt) {
		if !a.ok {
			return
		}
		if !best.ok || a.errors < best.errors || (a.errors == best.errors && a.dynamic > best.dynamic) {
			best = a
		}
	}

	for _, m := range pc.skips[from] {
		if m > to {
			continue
		}
		rest := pc.matchSteps(prod, k, m, to, left, right)
		if rest.ok {
			sd := &deriv{kind: skipDeriv, from: from, to: m, errors: m - from}
			take(alt{true, rest.errors + sd.errors, rest.dynamic, &link{-1, sd, rest.head}})
		}
	}

	steps := pc.p.prods[prod].Steps
	if k == len(steps) {
		take(alt{ok: from == to})
		pc.alts[key] = best
		return best
	}

	s := steps[k]
	switch s.Kind {
	case grammar.PlaceholderStep:
		rest := pc.matchSteps(prod, k+1, from, to, left, right)
		if rest.ok {
			d := &deriv{kind: placeholderDeriv, from: from, to: from}
			take(alt{true, rest.errors, rest.dynamic, &link{k, d, rest.head}})
		}

	case grammar.TermStep:
		if from < to && pc.termOf(pc.tokens[from]) == s.Index {
			rest := pc.matchSteps(prod, k+1, from+1, to, left, right)
			if rest.ok {
				d := &deriv{kind: tokenDeriv, from: from, to: from + 1}
				take(alt{true, rest.errors, rest.dynamic, &link{k, d, rest.head}})
			}
		}

	case grammar.NontermStep:
		cl, cr := left, right
		if sh := pc.p.shapes[prod]; sh.count > 1 {
			cl, cr = -1, -1
			if k == sh.first {
				cl = prod
			}
			if k == sh.last {
				cr = prod
			}
		}

		for _, mid := range pc.ends[ntOrigin{s.Index, from}] {
			if mid > to {
				break
			}
			child := pc.derive(s.Index, from, mid, cl, cr)
			if child == nil {
				continue
			}
			rest := pc.matchSteps(prod, k+1, mid, to, left, right)
			if rest.ok {
				take(alt{true, rest.errors + child.errors, rest.dynamic + child.dynamic, &link{k, child, rest.head}})
			}
		}
	}

	pc.alts[key] = best
	return best
}

// rootDerivation returns derivation of the start rule and the index of the first token it does not cover.
func (pc *parseContext) rootDerivation() (*deriv, int) {
	pc.derivs = make(map[spanKey]*deriv)
	pc.alts = make(map[stepKey]alt)

	if pc.accepted {
		n := len(pc.tokens) - 1
		if d := pc.derive(pc.p.start, 0, n, -1, -1); d != nil {
			return d, n
		}
	}

	ends := pc.ends[ntOrigin{pc.p.start, 0}]
	for i := len(ends) - 1; i >= 0; i-- {
		if ends[i] >= len(pc.tokens) {
			continue
		}
		if d := pc.derive(pc.p.start, 0, ends[i], -1, -1); d != nil {
			return d, ends[i]
		}
	}
	return nil, 0
}
