package langdef

import (
	"io"
	"regexp"

	"github.com/sirupsen/logrus"

	"github.com/ava12/cstx/grammar"
	"github.com/ava12/cstx/internal/ints"
)

// Defaults for Options fields.
const (
	DefaultShapeDepth = 2
	DefaultShapeLimit = 4096
)

// Options tune compilation. Nil options mean defaults.
type Options struct {
	// Logger receives warnings about unreachable rules and unused conflict declarations.
	// Nil logger discards everything.
	Logger logrus.FieldLogger

	// ShapeDepth is the maximum length of token sequences compared when looking for shape conflicts.
	ShapeDepth int

	// ShapeLimit is the maximum number of token sequences collected per nonterminal.
	ShapeLimit int
}

type termKey struct {
	re    string
	flags grammar.TermFlags
	prec  int
}

type repeatItem struct {
	nonterm int
	rule    string
	items   []alt
}

type compiler struct {
	g     *grammar.Grammar
	t     *grammar.Table
	log   logrus.FieldLogger
	depth int
	limit int

	rules    map[string]int
	symbols  map[string]grammar.Step
	terms    map[termKey]int
	auxCount map[string]int
	repeats  []repeatItem

	reachable *ints.Set
	nullable  []bool
	unitStar  []*ints.Set

	resolved   map[[2]int]grammar.Action
	groupPairs [][][2]int
	groupHits  []bool
}

// Compile validates grammar and compiles it into a parse table.
// Returns nil and *cstx.Error on failure. g is not modified.
func Compile(g *grammar.Grammar, opts *Options) (*grammar.Table, error) {
	c := newCompiler(g, opts)

	e := c.indexRules()
	e = c.checkSideTables(e)
	e = c.checkExpressions(e)
	e = c.buildSymbols(e)
	e = c.flatten(e)
	e = c.markKeywords(e)
	e = c.findReachable(e)
	e = c.checkTermination(e)
	e = c.resolveOperators(e)
	e = c.resolveShapes(e)
	e = c.buildConflictPlan(e)
	e = c.buildShapeTables(e)

	if e != nil {
		return nil, e
	}
	return c.t, nil
}

func newCompiler(g *grammar.Grammar, opts *Options) *compiler {
	c := &compiler{
		g:        g,
		t:        &grammar.Table{Name: g.Name, Word: -1},
		depth:    DefaultShapeDepth,
		limit:    DefaultShapeLimit,
		rules:    make(map[string]int, len(g.Rules)),
		symbols:  make(map[string]grammar.Step, len(g.Rules)+len(g.Externals)),
		terms:    make(map[termKey]int),
		auxCount: make(map[string]int),
		resolved: make(map[[2]int]grammar.Action),

		groupPairs: make([][][2]int, len(g.Conflicts)),
		groupHits:  make([]bool, len(g.Conflicts)),
	}
	if opts != nil {
		c.log = opts.Logger
		if opts.ShapeDepth > 0 {
			c.depth = opts.ShapeDepth
		}
		if opts.ShapeLimit > 0 {
			c.limit = opts.ShapeLimit
		}
	}
	if c.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.log = l
	}
	c.log = c.log.WithField("grammar", g.Name)
	return c
}

func (c *compiler) indexRules() error {
	if len(c.g.Rules) == 0 {
		return noRulesError(c.g.Name)
	}

	for i, r := range c.g.Rules {
		if _, has := c.rules[r.Name]; has {
			return duplicateRuleError(r.Name)
		}
		c.rules[r.Name] = i
	}
	return nil
}

func (c *compiler) isRule(name string) bool {
	_, has := c.rules[name]
	return has
}

func (c *compiler) unknownRules(table string, names []string) error {
	var unknown []string
	for _, name := range names {
		if !c.isRule(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return unknownRuleError(table, unknown)
	}
	return nil
}

func (c *compiler) checkSideTables(e error) error {
	if e != nil {
		return e
	}

	for i, name := range c.g.Externals {
		if c.isRule(name) {
			return externalError(name, "is also defined as rule")
		}
		for _, prev := range c.g.Externals[:i] {
			if prev == name {
				return externalError(name, "is listed twice")
			}
		}
	}

	e = c.unknownRules("inline", c.g.Inline)
	if e == nil {
		e = c.unknownRules("supertypes", c.g.Supertypes)
	}
	for _, group := range c.g.Conflicts {
		if e == nil {
			e = c.unknownRules("conflicts", group)
		}
	}
	if e == nil && c.g.Word != "" {
		e = c.unknownRules("word", []string{c.g.Word})
	}
	return e
}

func (c *compiler) checkExpressions(e error) error {
	if e != nil {
		return e
	}

	var undefined []string
	seen := make(map[string]bool)
	check := func(rule string, body *grammar.Expr) error {
		var err error
		body.Walk(func(x *grammar.Expr) bool {
			if err != nil {
				return false
			}

			switch x.Type {
			case grammar.SymbolExpr:
				if !c.isRule(x.Value) && !c.g.IsExternal(x.Value) {
					ref := x.Value + " (in " + rule + ")"
					if !seen[ref] {
						seen[ref] = true
						undefined = append(undefined, ref)
					}
				}
			case grammar.StringExpr:
				if x.Value == "" {
					err = emptyLiteralError(rule)
				}
			case grammar.PatternExpr:
				if _, re := regexp.Compile(x.Value); re != nil {
					err = regexpError(rule, x.Value, re)
				}
			case grammar.FieldExpr:
				if x.Value == "" {
					err = emptyNameError(rule, "field")
				}
			case grammar.AliasExpr:
				if x.Value == "" {
					err = emptyNameError(rule, "alias")
				}
			}
			return true
		})
		return err
	}

	for _, r := range c.g.Rules {
		if e = check(r.Name, r.Body); e != nil {
			return e
		}
	}
	for _, x := range c.g.Extras {
		if e = check("extras", x); e != nil {
			return e
		}
	}

	if len(undefined) > 0 {
		return undefinedRuleError(undefined)
	}
	return nil
}

func (c *compiler) ruleName(nonterm int) string {
	name := c.t.Nonterms[nonterm].Name
	for i := 0; i < len(name); i++ {
		if name[i] == '~' {
			return name[:i]
		}
	}
	return name
}

func (c *compiler) nontermNames(nts *ints.Set) []string {
	var res []string
	seen := make(map[string]bool)
	for _, nt := range nts.ToSlice() {
		name := c.ruleName(nt)
		if !seen[name] {
			seen[name] = true
			res = append(res, name)
		}
	}
	return res
}
