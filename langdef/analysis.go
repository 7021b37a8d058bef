package langdef

import (
	"sort"

	"github.com/ava12/cstx/grammar"
	"github.com/ava12/cstx/internal/ints"
	"github.com/ava12/cstx/internal/queue"
)

func (c *compiler) findReachable(e error) error {
	if e != nil {
		return e
	}

	nts := ints.NewSet(c.t.Start)
	terms := ints.NewSet(c.t.Extras...)
	q := queue.New(c.t.Start)
	for !q.IsEmpty() {
		nt, _ := q.First()
		for _, pi := range c.t.Nonterms[nt].Productions {
			for _, s := range c.t.Productions[pi].Steps {
				switch s.Kind {
				case grammar.TermStep:
					terms.Add(s.Index)
				case grammar.NontermStep:
					if !nts.Contains(s.Index) {
						nts.Add(s.Index)
						q.Append(s.Index)
					}
				}
			}
		}
	}
	c.reachable = nts

	names := make(map[string]bool)
	for _, nt := range nts.ToSlice() {
		names[c.ruleName(nt)] = true
	}
	for _, i := range terms.ToSlice() {
		t := c.t.Terms[i]
		if c.isRule(t.Name) || c.g.IsExternal(t.Name) {
			names[t.Name] = true
		}
	}

	var unreachable []string
	for _, r := range c.g.Rules {
		if !names[r.Name] {
			unreachable = append(unreachable, r.Name)
		}
	}
	if len(unreachable) > 0 {
		c.log.WithField("rules", unreachable).Warn("unreachable rules")
	}

	c.t.Reachable = make([]string, 0, len(names))
	for name := range names {
		c.t.Reachable = append(c.t.Reachable, name)
	}
	sort.Strings(c.t.Reachable)
	return nil
}

func (c *compiler) computeNullable() {
	c.nullable = make([]bool, len(c.t.Nonterms))
	for changed := true; changed; {
		changed = false
		for _, p := range c.t.Productions {
			if !c.nullable[p.Nonterm] && c.stepsNullable(p.Steps) {
				c.nullable[p.Nonterm] = true
				changed = true
			}
		}
	}
}

func (c *compiler) stepNullable(s grammar.Step) bool {
	switch s.Kind {
	case grammar.PlaceholderStep:
		return true
	case grammar.NontermStep:
		return c.nullable[s.Index]
	default:
		return false
	}
}

func (c *compiler) stepsNullable(steps []grammar.Step) bool {
	for _, s := range steps {
		if !c.stepNullable(s) {
			return false
		}
	}
	return true
}

func (c *compiler) checkTermination(e error) error {
	if e != nil {
		return e
	}

	productive := make([]bool, len(c.t.Nonterms))
	for changed := true; changed; {
		changed = false
		for _, p := range c.t.Productions {
			if productive[p.Nonterm] {
				continue
			}
			ok := true
			for _, s := range p.Steps {
				ok = ok && (s.Kind != grammar.NontermStep || productive[s.Index])
			}
			if ok {
				productive[p.Nonterm] = true
				changed = true
			}
		}
	}

	failed := ints.NewSet()
	for _, nt := range c.reachable.ToSlice() {
		if !productive[nt] {
			failed.Add(nt)
		}
	}
	if !failed.IsEmpty() {
		return nonTerminatingError(c.nontermNames(failed))
	}

	c.computeNullable()
	for _, r := range c.repeats {
		for _, item := range r.items {
			if c.stepsNullable(item.steps) {
				return emptyRepeatError(r.rule)
			}
		}
	}

	return c.findCycles()
}

// findCycles looks for nonterminals deriving themselves with all other symbols empty.
func (c *compiler) findCycles() error {
	edges := make([]*ints.Set, len(c.t.Nonterms))
	for i := range edges {
		edges[i] = ints.NewSet()
	}
	for _, p := range c.t.Productions {
		for i, s := range p.Steps {
			if s.Kind != grammar.NontermStep {
				continue
			}
			others := true
			for j, o := range p.Steps {
				others = others && (i == j || c.stepNullable(o))
			}
			if others {
				edges[p.Nonterm].Add(s.Index)
			}
		}
	}

	cyclic := ints.NewSet()
	for nt := range c.t.Nonterms {
		if closure(edges, nt, false).Contains(nt) {
			cyclic.Add(nt)
		}
	}
	if !cyclic.IsEmpty() {
		return cyclicRuleError(c.nontermNames(cyclic))
	}
	return nil
}

// closure returns nonterminals reachable from nt along edges, nt itself is included if self is set.
func closure(edges []*ints.Set, nt int, self bool) *ints.Set {
	res := ints.NewSet()
	if self {
		res.Add(nt)
	}
	q := queue.New(edges[nt].ToSlice()...)
	for !q.IsEmpty() {
		next, _ := q.First()
		if res.Contains(next) {
			continue
		}
		res.Add(next)
		for _, n := range edges[next].ToSlice() {
			q.Append(n)
		}
	}
	return res
}

// computeUnitStar builds unit derivation closure: unitStar[A] contains A and every B such that A =>+ B
// through productions consisting of a single symbol.
func (c *compiler) computeUnitStar() {
	edges := make([]*ints.Set, len(c.t.Nonterms))
	for i := range edges {
		edges[i] = ints.NewSet()
	}
	for _, p := range c.t.Productions {
		if s, ok := unitStep(p); ok && s.Kind == grammar.NontermStep {
			edges[p.Nonterm].Add(s.Index)
		}
	}

	c.unitStar = make([]*ints.Set, len(c.t.Nonterms))
	for nt := range c.t.Nonterms {
		c.unitStar[nt] = closure(edges, nt, true)
	}
}

// unitStep returns the only symbol of production consisting of a single symbol and placeholders.
func unitStep(p grammar.Production) (grammar.Step, bool) {
	var res grammar.Step
	count := 0
	for _, s := range p.Steps {
		if s.Kind != grammar.PlaceholderStep {
			res = s
			count++
		}
	}
	return res, count == 1
}
