package grammar

import (
	"bytes"
	"regexp"
	"sort"
	"unicode"
	"unicode/utf8"

	"golang.org/x/exp/ebnf"
)

// FromEBNF converts grammar written in EBNF notation of Go language specification.
// Productions with lower-case names are lexical: each of them becomes a single token rule,
// lexical productions referenced from other lexical productions are expanded in place
// and get no rule of their own unless some syntactic production uses them too.
// Other productions become ordinary rules, start production is the first rule.
// Extras default to whitespace.
func FromEBNF(name, start string, src []byte) (*Grammar, error) {
	eg, err := ebnf.Parse(name, bytes.NewReader(src))
	if err != nil {
		return nil, ebnfError("%s", err.Error())
	}
	if err = ebnf.Verify(eg, start); err != nil {
		return nil, ebnfError("%s", err.Error())
	}

	names := make([]string, 0, len(eg))
	for n := range eg {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := eg[names[i]].Name.Pos(), eg[names[j]].Name.Pos()
		if names[i] == start || names[j] == start {
			return names[i] == start
		}
		return pi.Offset < pj.Offset
	})

	used := map[string]bool{start: true}
	for n, p := range eg {
		if !isLexical(n) {
			ebnfRefs(p.Expr, used)
		}
	}

	c := &ebnfConverter{eg: eg, expanding: map[string]bool{}}
	g := New(name)
	g.SetExtras(Pattern(`\s`))
	for _, n := range names {
		var body *Expr
		if isLexical(n) {
			if !used[n] {
				continue
			}
			var re string
			re, err = c.lexical(eg[n].Expr)
			body = Token(Pattern(re))
		} else {
			body, err = c.syntactic(eg[n].Expr)
		}
		if err != nil {
			return nil, err
		}
		g.Define(n, body)
	}
	return g, nil
}

func isLexical(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return !unicode.IsUpper(r)
}

// ebnfRefs adds names of all productions referenced by x to refs.
func ebnfRefs(x ebnf.Expression, refs map[string]bool) {
	switch e := x.(type) {
	case *ebnf.Name:
		refs[e.String] = true
	case *ebnf.Group:
		ebnfRefs(e.Body, refs)
	case *ebnf.Option:
		ebnfRefs(e.Body, refs)
	case *ebnf.Repetition:
		ebnfRefs(e.Body, refs)
	case ebnf.Alternative:
		for _, a := range e {
			ebnfRefs(a, refs)
		}
	case ebnf.Sequence:
		for _, s := range e {
			ebnfRefs(s, refs)
		}
	}
}

type ebnfConverter struct {
	eg        ebnf.Grammar
	expanding map[string]bool
}

func (c *ebnfConverter) syntactic(x ebnf.Expression) (*Expr, error) {
	if x == nil {
		return Blank(), nil
	}

	switch e := x.(type) {
	case *ebnf.Name:
		return Sym(e.String), nil
	case *ebnf.Token:
		return Str(e.String), nil
	case *ebnf.Range:
		return Pattern(rangeRe(e)), nil
	case *ebnf.Group:
		return c.syntactic(e.Body)
	case *ebnf.Option:
		body, err := c.syntactic(e.Body)
		if err != nil {
			return nil, err
		}
		return Optional(body), nil
	case *ebnf.Repetition:
		body, err := c.syntactic(e.Body)
		if err != nil {
			return nil, err
		}
		return Repeat(body), nil
	case ebnf.Alternative:
		res := &Expr{Type: ChoiceExpr}
		for _, a := range e {
			ae, err := c.syntactic(a)
			if err != nil {
				return nil, err
			}
			res.Members = append(res.Members, ae)
		}
		return res, nil
	case ebnf.Sequence:
		res := &Expr{Type: SeqExpr}
		for _, s := range e {
			se, err := c.syntactic(s)
			if err != nil {
				return nil, err
			}
			res.Members = append(res.Members, se)
		}
		return res, nil
	default:
		return nil, ebnfError("unsupported expression at %s", x.Pos())
	}
}

func (c *ebnfConverter) lexical(x ebnf.Expression) (string, error) {
	if x == nil {
		return "", nil
	}

	switch e := x.(type) {
	case *ebnf.Name:
		if !isLexical(e.String) {
			return "", ebnfError("lexical production refers to %s at %s", e.String, e.Pos())
		}
		if c.expanding[e.String] {
			return "", ebnfError("recursive lexical production %s", e.String)
		}
		c.expanding[e.String] = true
		defer delete(c.expanding, e.String)
		re, err := c.lexical(c.eg[e.String].Expr)
		return "(?:" + re + ")", err
	case *ebnf.Token:
		return regexp.QuoteMeta(e.String), nil
	case *ebnf.Range:
		return rangeRe(e), nil
	case *ebnf.Group:
		re, err := c.lexical(e.Body)
		return "(?:" + re + ")", err
	case *ebnf.Option:
		re, err := c.lexical(e.Body)
		return "(?:" + re + ")?", err
	case *ebnf.Repetition:
		re, err := c.lexical(e.Body)
		return "(?:" + re + ")*", err
	case ebnf.Alternative:
		res := ""
		for i, a := range e {
			re, err := c.lexical(a)
			if err != nil {
				return "", err
			}
			if i > 0 {
				res += "|"
			}
			res += re
		}
		return "(?:" + res + ")", nil
	case ebnf.Sequence:
		res := ""
		for _, s := range e {
			re, err := c.lexical(s)
			if err != nil {
				return "", err
			}
			res += re
		}
		return res, nil
	default:
		return "", ebnfError("unsupported expression at %s", x.Pos())
	}
}

func rangeRe(r *ebnf.Range) string {
	return "[" + regexp.QuoteMeta(r.Begin.String) + "-" + regexp.QuoteMeta(r.End.String) + "]"
}
