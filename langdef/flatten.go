package langdef

import (
	"strconv"

	"github.com/ava12/cstx/grammar"
)

// maxAlternatives limits the number of alternatives a sequence may expand to
// before its next member is moved to an auxiliary nonterminal.
const maxAlternatives = 64

type alt struct {
	steps   []grammar.Step
	dynamic int
}

type scope struct {
	rule  string
	field string
	prec  int
	assoc grammar.Assoc
}

func (s scope) step(kind grammar.StepKind, index int) grammar.Step {
	return grammar.Step{Kind: kind, Index: index, Field: s.field, Prec: s.prec, Assoc: s.assoc}
}

func (s scope) inner() scope {
	return scope{rule: s.rule, prec: s.prec, assoc: s.assoc}
}

func single(s grammar.Step) []alt {
	return []alt{{steps: []grammar.Step{s}}}
}

func symbolCount(steps []grammar.Step) int {
	res := 0
	for _, s := range steps {
		if s.Kind != grammar.PlaceholderStep {
			res++
		}
	}
	return res
}

func sameAlt(a, b alt) bool {
	if a.dynamic != b.dynamic || len(a.steps) != len(b.steps) {
		return false
	}
	for i := range a.steps {
		if a.steps[i] != b.steps[i] {
			return false
		}
	}
	return true
}

func appendAlts(list []alt, alts ...alt) []alt {
	for _, a := range alts {
		known := false
		for _, b := range list {
			if sameAlt(a, b) {
				known = true
				break
			}
		}
		if !known {
			list = append(list, a)
		}
	}
	return list
}

func product(heads, tails []alt) []alt {
	res := make([]alt, 0, len(heads)*len(tails))
	for _, h := range heads {
		for _, t := range tails {
			steps := make([]grammar.Step, 0, len(h.steps)+len(t.steps))
			steps = append(steps, h.steps...)
			steps = append(steps, t.steps...)
			res = appendAlts(res, alt{steps, h.dynamic + t.dynamic})
		}
	}
	return res
}

func (c *compiler) flatten(e error) error {
	if e != nil {
		return e
	}

	for _, r := range c.g.Rules {
		sym := c.symbols[r.Name]
		if sym.Kind != grammar.NontermStep {
			continue
		}

		alts, e := c.expand(r.Body, scope{rule: r.Name})
		if e != nil {
			return e
		}
		c.addProductions(sym.Index, alts)
	}
	return nil
}

func (c *compiler) addProductions(nt int, alts []alt) {
	for _, a := range alts {
		p := grammar.Production{Nonterm: nt, Steps: a.steps, Dynamic: a.dynamic}
		if len(p.Steps) == 0 {
			p.Steps = nil
		}
		for i := len(a.steps) - 1; i >= 0; i-- {
			if a.steps[i].Kind != grammar.PlaceholderStep {
				p.Prec, p.Assoc = a.steps[i].Prec, a.steps[i].Assoc
				break
			}
		}
		c.t.Productions = append(c.t.Productions, p)
		c.t.Nonterms[nt].Productions = append(c.t.Nonterms[nt].Productions, len(c.t.Productions)-1)
	}
}

func (c *compiler) newAux(rule string) int {
	c.auxCount[rule]++
	name := rule + "~" + strconv.Itoa(c.auxCount[rule])
	return c.addNonterm(name, grammar.HiddenNonterm|grammar.AuxNonterm)
}

func (c *compiler) expand(x *grammar.Expr, s scope) ([]alt, error) {
	switch x.Type {
	case grammar.BlankExpr:
		return []alt{{}}, nil

	case grammar.StringExpr, grammar.PatternExpr, grammar.TokenExpr, grammar.ImmediateTokenExpr:
		index, e := c.tokenTerm(s.rule, "", x, 0)
		if e != nil {
			return nil, e
		}
		return single(s.step(grammar.TermStep, index)), nil

	case grammar.SymbolExpr:
		sym := c.symbols[x.Value]
		return single(s.step(sym.Kind, sym.Index)), nil

	case grammar.SeqExpr:
		return c.expandSeq(x.Members, s)

	case grammar.ChoiceExpr:
		var res []alt
		for _, m := range x.Members {
			alts, e := c.expand(m, s)
			if e != nil {
				return nil, e
			}
			res = appendAlts(res, alts...)
		}
		return res, nil

	case grammar.RepeatExpr, grammar.Repeat1Expr:
		nt, e := c.expandRepeat(x.Content, s)
		if e != nil {
			return nil, e
		}
		res := single(s.step(grammar.NontermStep, nt))
		if x.Type == grammar.RepeatExpr {
			res = append(res, alt{})
		}
		return res, nil

	case grammar.PrecExpr:
		s.prec, s.assoc = x.Prec, grammar.AssocNone
		return c.expand(x.Content, s)

	case grammar.PrecLeftExpr:
		s.prec, s.assoc = x.Prec, grammar.AssocLeft
		return c.expand(x.Content, s)

	case grammar.PrecRightExpr:
		s.prec, s.assoc = x.Prec, grammar.AssocRight
		return c.expand(x.Content, s)

	case grammar.PrecDynamicExpr:
		alts, e := c.expand(x.Content, s)
		if e != nil {
			return nil, e
		}
		for i := range alts {
			alts[i].dynamic += x.Prec
		}
		return alts, nil

	case grammar.FieldExpr:
		s.field = x.Value
		alts, e := c.expand(x.Content, s)
		if e != nil {
			return nil, e
		}
		var res []alt
		for _, a := range alts {
			if len(a.steps) == 0 {
				a.steps = []grammar.Step{{Kind: grammar.PlaceholderStep, Field: x.Value}}
			}
			res = appendAlts(res, a)
		}
		return res, nil

	case grammar.AliasExpr:
		return c.expandAlias(x, s)

	default:
		return nil, wrongTokenError(s.rule, x.String())
	}
}

func (c *compiler) expandSeq(members []*grammar.Expr, s scope) ([]alt, error) {
	res := []alt{{}}
	for _, m := range members {
		alts, e := c.expand(m, s)
		if e != nil {
			return nil, e
		}

		if len(alts) > 1 && len(res)*len(alts) > maxAlternatives {
			nt := c.newAux(s.rule)
			c.addProductions(nt, alts)
			alts = single(grammar.Step{Kind: grammar.NontermStep, Index: nt, Prec: s.prec, Assoc: s.assoc})
		}
		res = product(res, alts)
	}
	return res, nil
}

func (c *compiler) expandRepeat(content *grammar.Expr, s scope) (int, error) {
	items, e := c.expand(content, s.inner())
	if e != nil {
		return -1, e
	}

	nt := c.newAux(s.rule)
	self := grammar.Step{Kind: grammar.NontermStep, Index: nt, Prec: s.prec, Assoc: s.assoc}
	alts := appendAlts(nil, items...)
	for _, item := range items {
		steps := make([]grammar.Step, 0, len(item.steps)+1)
		steps = append(steps, self)
		steps = append(steps, item.steps...)
		alts = appendAlts(alts, alt{steps, item.dynamic})
	}
	c.addProductions(nt, alts)
	c.repeats = append(c.repeats, repeatItem{nt, s.rule, items})
	return nt, nil
}

// expandAlias renames single-symbol alternatives in place,
// other alternatives are wrapped into auxiliary nonterminal that becomes visible under alias name.
// Outer alias overrides inner ones.
func (c *compiler) expandAlias(x *grammar.Expr, s scope) ([]alt, error) {
	alts, e := c.expand(x.Content, s.inner())
	if e != nil {
		return nil, e
	}

	simple := true
	for _, a := range alts {
		simple = simple && symbolCount(a.steps) <= 1
	}

	if !simple {
		nt := c.newAux(s.rule)
		c.addProductions(nt, alts)
		step := s.step(grammar.NontermStep, nt)
		step.Alias, step.AliasNamed = x.Value, x.Named
		return single(step), nil
	}

	var res []alt
	for _, a := range alts {
		steps := make([]grammar.Step, len(a.steps))
		copy(steps, a.steps)
		for i := range steps {
			if steps[i].Kind == grammar.PlaceholderStep {
				continue
			}
			if steps[i].Field == "" {
				steps[i].Field = s.field
			}
			steps[i].Alias, steps[i].AliasNamed = x.Value, x.Named
		}
		res = appendAlts(res, alt{steps, a.dynamic})
	}
	return res, nil
}
