package langdef

import (
	"regexp"
	"strings"

	"github.com/ava12/cstx/grammar"
)

func isTokenRule(body *grammar.Expr) bool {
	for {
		switch body.Type {
		case grammar.PrecExpr, grammar.PrecLeftExpr, grammar.PrecRightExpr:
			body = body.Content
		case grammar.PatternExpr, grammar.TokenExpr, grammar.ImmediateTokenExpr:
			return true
		default:
			return false
		}
	}
}

func (c *compiler) addTerm(t grammar.Term) int {
	c.t.Terms = append(c.t.Terms, t)
	return len(c.t.Terms) - 1
}

func (c *compiler) addNonterm(name string, flags grammar.NontermFlags) int {
	c.t.Nonterms = append(c.t.Nonterms, grammar.Nonterm{Name: name, Flags: flags})
	return len(c.t.Nonterms) - 1
}

func contains(list []string, name string) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}

func (c *compiler) buildSymbols(e error) error {
	if e != nil {
		return e
	}

	for i, name := range c.g.Externals {
		flags := grammar.ExternalTerm
		if !grammar.IsHidden(name) {
			flags |= grammar.NamedTerm
		}
		index := c.addTerm(grammar.Term{Name: name, External: i, Flags: flags})
		c.symbols[name] = grammar.Step{Kind: grammar.TermStep, Index: index}
		c.t.Externals = append(c.t.Externals, index)
	}

	for _, r := range c.g.Rules {
		if !isTokenRule(r.Body) {
			continue
		}

		flags := grammar.TermFlags(0)
		if !grammar.IsHidden(r.Name) {
			flags |= grammar.NamedTerm
		}
		index, e := c.tokenTerm(r.Name, r.Name, r.Body, flags)
		if e != nil {
			return e
		}
		c.symbols[r.Name] = grammar.Step{Kind: grammar.TermStep, Index: index}
	}

	for _, r := range c.g.Rules {
		if _, has := c.symbols[r.Name]; has {
			continue
		}

		var flags grammar.NontermFlags
		if grammar.IsHidden(r.Name) {
			flags |= grammar.HiddenNonterm
		}
		if contains(c.g.Inline, r.Name) {
			flags |= grammar.InlineNonterm
		}
		if contains(c.g.Supertypes, r.Name) {
			flags |= grammar.SupertypeNonterm
		}
		index := c.addNonterm(r.Name, flags)
		c.symbols[r.Name] = grammar.Step{Kind: grammar.NontermStep, Index: index}
	}

	start := c.symbols[c.g.StartRule()]
	if start.Kind != grammar.NontermStep {
		return startRuleError(c.g.StartRule())
	}
	c.t.Start = start.Index

	if c.g.Word != "" {
		word := c.symbols[c.g.Word]
		if word.Kind != grammar.TermStep || c.t.Terms[word.Index].Is(grammar.ExternalTerm) {
			return wordRuleError(c.g.Word)
		}
		c.t.Word = word.Index
	}

	return c.buildExtras()
}

func (c *compiler) buildExtras() error {
	extras := c.g.Extras
	if extras == nil {
		extras = []*grammar.Expr{grammar.Pattern(`\s`)}
	}
	for _, x := range extras {
		index := -1
		switch x.Type {
		case grammar.SymbolExpr:
			sym := c.symbols[x.Value]
			if sym.Kind == grammar.TermStep {
				index = sym.Index
			}
		case grammar.StringExpr, grammar.PatternExpr, grammar.TokenExpr, grammar.ImmediateTokenExpr,
			grammar.PrecExpr, grammar.PrecLeftExpr, grammar.PrecRightExpr:
			var e error
			index, e = c.tokenTerm("extras", "", x, grammar.ExtraTerm)
			if e != nil {
				return e
			}
		}
		if index < 0 {
			return extraError(x.String())
		}

		c.t.Terms[index].Flags |= grammar.ExtraTerm
		known := false
		for _, i := range c.t.Extras {
			known = known || i == index
		}
		if !known {
			c.t.Extras = append(c.t.Extras, index)
		}
	}
	return nil
}

// tokenTerm registers term matching token expression x.
// Named terms (name is not empty) are never shared, anonymous terms with the same text are.
func (c *compiler) tokenTerm(rule, name string, x *grammar.Expr, flags grammar.TermFlags) (int, error) {
	prec, hasPrec := 0, false
unwrap:
	for {
		switch x.Type {
		case grammar.PrecExpr, grammar.PrecLeftExpr, grammar.PrecRightExpr:
			if !hasPrec {
				prec, hasPrec = x.Prec, true
			}
		case grammar.ImmediateTokenExpr:
			flags |= grammar.ImmediateTerm
		case grammar.TokenExpr:
		default:
			break unwrap
		}
		x = x.Content
	}

	t := grammar.Term{Name: name, Prec: prec, Flags: flags}
	switch x.Type {
	case grammar.StringExpr:
		t.Re = x.Value
		t.Flags |= grammar.LiteralTerm
	case grammar.PatternExpr:
		t.Re = x.Value
	default:
		var e error
		t.Re, e = tokenRegexp(rule, x)
		if e != nil {
			return -1, e
		}
	}
	if t.Name == "" {
		t.Name = t.Re
	}

	if !t.Is(grammar.LiteralTerm) {
		if _, e := regexp.Compile(t.Re); e != nil {
			return -1, regexpError(rule, t.Re, e)
		}
		if matchesEmpty(t.Re) {
			return -1, emptyTokenError(rule, t.Re)
		}
	}

	if name != "" {
		return c.addTerm(t), nil
	}

	key := termKey{t.Re, t.Flags, t.Prec}
	if index, has := c.terms[key]; has {
		return index, nil
	}
	index := c.addTerm(t)
	c.terms[key] = index
	return index, nil
}

func matchesEmpty(re string) bool {
	return regexp.MustCompile(`^(?:` + re + `)$`).MatchString("")
}

func tokenRegexp(rule string, x *grammar.Expr) (string, error) {
	switch x.Type {
	case grammar.BlankExpr:
		return "", nil

	case grammar.StringExpr:
		return regexp.QuoteMeta(x.Value), nil

	case grammar.PatternExpr:
		return "(?:" + x.Value + ")", nil

	case grammar.SeqExpr, grammar.ChoiceExpr:
		parts := make([]string, len(x.Members))
		for i, m := range x.Members {
			re, e := tokenRegexp(rule, m)
			if e != nil {
				return "", e
			}
			parts[i] = re
		}
		if x.Type == grammar.SeqExpr {
			return strings.Join(parts, ""), nil
		}
		return "(?:" + strings.Join(parts, "|") + ")", nil

	case grammar.RepeatExpr, grammar.Repeat1Expr:
		re, e := tokenRegexp(rule, x.Content)
		if e != nil {
			return "", e
		}
		if x.Type == grammar.RepeatExpr {
			return "(?:" + re + ")*", nil
		}
		return "(?:" + re + ")+", nil

	case grammar.PrecExpr, grammar.PrecLeftExpr, grammar.PrecRightExpr, grammar.TokenExpr, grammar.ImmediateTokenExpr:
		return tokenRegexp(rule, x.Content)

	default:
		return "", wrongTokenError(rule, x.String())
	}
}

func (c *compiler) markKeywords(e error) error {
	if e != nil || c.t.Word < 0 {
		return e
	}

	word := c.t.Terms[c.t.Word]
	re := word.Re
	if word.Is(grammar.LiteralTerm) {
		re = regexp.QuoteMeta(re)
	}
	wre := regexp.MustCompile(`^(?:` + re + `)$`)
	for i, t := range c.t.Terms {
		if t.Is(grammar.LiteralTerm) && !t.Is(grammar.ExternalTerm) && wre.MatchString(t.Re) {
			c.t.Terms[i].Flags |= grammar.KeywordTerm
		}
	}
	return nil
}
