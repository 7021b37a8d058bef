package langdef

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ava12/cstx/grammar"
	"github.com/ava12/cstx/internal/ints"
)

// Token sequences are encoded as strings, two bytes per term index.
type shapeSet map[string]struct{}

func termCode(index int) string {
	return string([]byte{byte(index >> 8), byte(index)})
}

func sortedShapes(s shapeSet) []string {
	res := make([]string, 0, len(s))
	for k := range s {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}

func (c *compiler) shapeString(shape string) string {
	names := make([]string, 0, len(shape)/2)
	for i := 0; i+1 < len(shape); i += 2 {
		names = append(names, c.t.Terms[int(shape[i])<<8|int(shape[i+1])].Name)
	}
	return strings.Join(names, " ")
}

// shapeSets collects every token sequence of at most c.depth tokens derivable from each reachable nonterminal.
func (c *compiler) shapeSets() []shapeSet {
	sets := make([]shapeSet, len(c.t.Nonterms))
	for i := range sets {
		sets[i] = make(shapeSet)
	}

	for changed := true; changed; {
		changed = false
		for _, p := range c.t.Productions {
			if !c.reachable.Contains(p.Nonterm) {
				continue
			}

			target := sets[p.Nonterm]
			for _, s := range c.concatShapes(p.Steps, sets) {
				if len(target) >= c.limit {
					break
				}
				if _, has := target[s]; !has {
					target[s] = struct{}{}
					changed = true
				}
			}
		}
	}
	return sets
}

func (c *compiler) concatShapes(steps []grammar.Step, sets []shapeSet) []string {
	maxLen := c.depth * 2
	cur := []string{""}
	for _, s := range steps {
		var next []string
		switch s.Kind {
		case grammar.PlaceholderStep:
			continue
		case grammar.TermStep:
			next = []string{termCode(s.Index)}
		default:
			next = sortedShapes(sets[s.Index])
		}

		res := make(shapeSet)
		for _, a := range cur {
			for _, b := range next {
				if len(a)+len(b) <= maxLen && len(res) < c.limit {
					res[a+b] = struct{}{}
				}
			}
		}
		if len(res) == 0 {
			return nil
		}
		cur = sortedShapes(res)
	}
	return cur
}

func commonShape(a, b shapeSet) (string, bool) {
	if len(a) > len(b) {
		a, b = b, a
	}
	for _, s := range sortedShapes(a) {
		if _, has := b[s]; has {
			return s, true
		}
	}
	return "", false
}

func (c *compiler) resolveShapes(e error) error {
	if e != nil {
		return e
	}

	sets := c.shapeSets()
	seen := make(map[[2]int]bool)
	var undeclared []string
	for _, x := range c.reachable.ToSlice() {
		prods := c.t.Nonterms[x].Productions
		for i, p1 := range prods {
			s1, ok := unitStep(c.t.Productions[p1])
			if !ok || s1.Kind != grammar.NontermStep {
				continue
			}

			for _, p2 := range prods[i+1:] {
				s2, ok := unitStep(c.t.Productions[p2])
				if !ok || s2.Kind != grammar.NontermStep {
					continue
				}

				b1, b2 := s1.Index, s2.Index
				if b1 == b2 || c.unitStar[b1].Contains(b2) || c.unitStar[b2].Contains(b1) {
					continue
				}
				key := [2]int{b1, b2}
				if b1 > b2 {
					key = [2]int{b2, b1}
				}
				if seen[key] {
					continue
				}
				seen[key] = true

				shared, found := commonShape(sets[b1], sets[b2])
				if !found {
					continue
				}

				r1, r2 := c.ruleName(b1), c.ruleName(b2)
				group := c.group(r1, r2)
				switch {
				case c.t.Productions[p1].Prec != c.t.Productions[p2].Prec:
					if group >= 0 {
						c.groupHits[group] = true
					}
				case group >= 0:
					c.groupPairs[group] = append(c.groupPairs[group], [2]int{p1, p2})
				default:
					undeclared = append(undeclared, fmt.Sprintf("%s and %s both match %q in %s (%s / %s)",
						r1, r2, c.shapeString(shared), c.t.Nonterms[x].Name,
						c.t.ProductionString(p1), c.t.ProductionString(p2)))
				}
			}
		}
	}

	if len(undeclared) > 0 {
		return undeclaredConflictError(undeclared)
	}
	return nil
}

func (c *compiler) buildShapeTables(e error) error {
	if e != nil {
		return e
	}

	plain := ints.NewSet(c.t.Start)
	kinds := make(map[string]map[string]bool)
	addKind := func(kind string, nt int) {
		fields := c.fieldsOf(nt, ints.NewSet())
		if len(fields) == 0 {
			return
		}
		if kinds[kind] == nil {
			kinds[kind] = make(map[string]bool)
		}
		for f := range fields {
			kinds[kind][f] = true
		}
	}

	for _, nt := range c.reachable.ToSlice() {
		for _, pi := range c.t.Nonterms[nt].Productions {
			for _, s := range c.t.Productions[pi].Steps {
				if s.Kind != grammar.NontermStep {
					continue
				}
				if s.Alias == "" {
					plain.Add(s.Index)
				} else if s.AliasNamed {
					addKind(s.Alias, s.Index)
				}
			}
		}
	}
	for _, nt := range plain.ToSlice() {
		if c.t.Nonterms[nt].Visible() {
			addKind(c.t.Nonterms[nt].Name, nt)
		}
	}

	for kind, fields := range kinds {
		c.t.Fields = append(c.t.Fields, grammar.FieldSet{Kind: kind, Fields: sortedNames(fields)})
	}
	sort.Slice(c.t.Fields, func(i, j int) bool {
		return c.t.Fields[i].Kind < c.t.Fields[j].Kind
	})

	for _, name := range c.g.Supertypes {
		sym := c.symbols[name]
		if sym.Kind != grammar.NontermStep {
			return supertypeError(name)
		}
		subtypes := make(map[string]bool)
		if !c.collectSubtypes(sym.Index, subtypes, ints.NewSet()) {
			return supertypeError(name)
		}
		c.t.Supertypes = append(c.t.Supertypes, grammar.Supertype{Name: name, Kinds: sortedNames(subtypes)})
	}
	sort.Slice(c.t.Supertypes, func(i, j int) bool {
		return c.t.Supertypes[i].Name < c.t.Supertypes[j].Name
	})

	return nil
}

func sortedNames(m map[string]bool) []string {
	res := make([]string, 0, len(m))
	for name := range m {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

// fieldsOf returns field names exposed by nonterminal node including those inherited from hidden children.
func (c *compiler) fieldsOf(nt int, visited *ints.Set) map[string]bool {
	res := make(map[string]bool)
	visited.Add(nt)
	for _, pi := range c.t.Nonterms[nt].Productions {
		for _, s := range c.t.Productions[pi].Steps {
			if s.Field != "" {
				res[s.Field] = true
			}
			if s.Kind == grammar.NontermStep && s.Alias == "" && !c.t.Nonterms[s.Index].Visible() && !visited.Contains(s.Index) {
				for f := range c.fieldsOf(s.Index, visited) {
					res[f] = true
				}
			}
		}
	}
	return res
}

// collectSubtypes gathers named kinds a supertype node may stand for, looking through hidden alternatives.
func (c *compiler) collectSubtypes(nt int, kinds map[string]bool, visited *ints.Set) bool {
	visited.Add(nt)
	for _, pi := range c.t.Nonterms[nt].Productions {
		s, ok := unitStep(c.t.Productions[pi])
		if !ok {
			return false
		}

		switch {
		case s.Alias != "":
			if s.AliasNamed {
				kinds[s.Alias] = true
			}
		case s.Kind == grammar.TermStep:
			if c.t.Terms[s.Index].Is(grammar.NamedTerm) {
				kinds[c.t.Terms[s.Index].Name] = true
			}
		case c.t.Nonterms[s.Index].Visible():
			kinds[c.t.Nonterms[s.Index].Name] = true
		case !visited.Contains(s.Index):
			if !c.collectSubtypes(s.Index, kinds, visited) {
				return false
			}
		}
	}
	return true
}
