package langdef

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/ava12/cstx/grammar"
)

// group returns index of the first declared conflict group containing both rules or -1.
func (c *compiler) group(a, b string) int {
	for i, g := range c.g.Conflicts {
		if contains(g, a) && contains(g, b) {
			return i
		}
	}
	return -1
}

// firstSymbol and lastSymbol return outermost non-placeholder steps of production.
func firstSymbol(p grammar.Production) (grammar.Step, int) {
	count := 0
	var res grammar.Step
	found := false
	for _, s := range p.Steps {
		if s.Kind == grammar.PlaceholderStep {
			continue
		}
		if !found {
			res, found = s, true
		}
		count++
	}
	return res, count
}

func lastSymbol(p grammar.Production) grammar.Step {
	for i := len(p.Steps) - 1; i >= 0; i-- {
		if p.Steps[i].Kind != grammar.PlaceholderStep {
			return p.Steps[i]
		}
	}
	return grammar.Step{Kind: grammar.PlaceholderStep}
}

func (c *compiler) resolveOperators(e error) error {
	if e != nil {
		return e
	}

	c.computeUnitStar()

	var rightOpen, leftOpen []int
	for _, nt := range c.reachable.ToSlice() {
		for _, pi := range c.t.Nonterms[nt].Productions {
			p := c.t.Productions[pi]
			first, count := firstSymbol(p)
			if count < 2 {
				continue
			}
			if lastSymbol(p).Kind == grammar.NontermStep {
				rightOpen = append(rightOpen, pi)
			}
			if first.Kind == grammar.NontermStep {
				leftOpen = append(leftOpen, pi)
			}
		}
	}

	var undeclared []string
	for _, ci := range rightOpen {
		cp := c.t.Productions[ci]
		z := lastSymbol(cp).Index
		for _, pi := range leftOpen {
			pp := c.t.Productions[pi]
			y, _ := firstSymbol(pp)
			if !c.unitStar[y.Index].Contains(cp.Nonterm) || !c.unitStar[z].Contains(pp.Nonterm) {
				continue
			}

			action := resolveAction(cp, pp)
			cr, pr := c.t.RuleName(ci), c.t.RuleName(pi)
			group := c.group(cr, pr)
			switch {
			case action != 0:
				if group >= 0 {
					c.groupHits[group] = true
				}
			case group >= 0:
				action = grammar.ForkAction
				c.groupPairs[group] = append(c.groupPairs[group], [2]int{ci, pi})
			default:
				undeclared = append(undeclared, fmt.Sprintf("%s and %s (%s / %s)",
					cr, pr, c.t.ProductionString(ci), c.t.ProductionString(pi)))
				continue
			}

			c.resolved[[2]int{ci, pi}] = action
		}
	}

	if len(undeclared) > 0 {
		return undeclaredConflictError(undeclared)
	}

	for key, action := range c.resolved {
		c.t.Precedence = append(c.t.Precedence, grammar.Resolution{Reduce: key[0], Shift: key[1], Action: action})
	}
	sort.Slice(c.t.Precedence, func(i, j int) bool {
		a, b := c.t.Precedence[i], c.t.Precedence[j]
		return a.Reduce < b.Reduce || (a.Reduce == b.Reduce && a.Shift < b.Shift)
	})
	return nil
}

// resolveAction decides whether right-open production rp binds tighter (reduce) than left-open production lp
// or the other way around (shift), zero means undecided.
func resolveAction(rp, lp grammar.Production) grammar.Action {
	switch {
	case rp.Prec > lp.Prec:
		return grammar.ReduceAction
	case rp.Prec < lp.Prec:
		return grammar.ShiftAction
	case rp.Assoc == grammar.AssocLeft:
		return grammar.ReduceAction
	case rp.Assoc == grammar.AssocRight:
		return grammar.ShiftAction
	default:
		return 0
	}
}

func (c *compiler) buildConflictPlan(e error) error {
	if e != nil {
		return e
	}

	for i, rules := range c.g.Conflicts {
		cf := grammar.Conflict{Rules: append([]string(nil), rules...), Pairs: c.groupPairs[i]}
		switch {
		case len(cf.Pairs) > 0:
			cf.Policy = grammar.DynamicPolicy
		case c.groupHits[i]:
			cf.Policy = grammar.StaticPolicy
		default:
			cf.Policy = grammar.UnusedPolicy
			c.log.WithFields(logrus.Fields{"conflict": rules}).Warn("declared conflict is never needed")
		}
		c.t.Conflicts = append(c.t.Conflicts, cf)
	}
	return nil
}
