// Package grammar defines grammar intermediate representation (rules built of combinators plus side tables)
// and compiled grammar table produced by langdef package and consumed by parser.
package grammar

// Rule is a named production.
type Rule struct {
	Name string
	Body *Expr
}

// Grammar is a declarative language description.
// Rules are stored in declaration order, the first rule is the start rule.
// Side tables (Extras, Externals, Supertypes, Inline, Conflicts, Word) reference rules by name.
// A Grammar must not be modified after it has been handed to compiler.
type Grammar struct {
	// Name is the language name.
	Name string

	// Rules contains grammar rules, rule names are unique.
	// Rules with names starting with "_" are hidden: they never produce tree nodes of their own.
	Rules []Rule

	// Extras contains tokens that may appear between any two tokens (whitespace, comments).
	// Nil means a single whitespace pattern, an empty slice means no extras.
	Extras []*Expr

	// Externals contains names of tokens recognized by external scanner, in priority order.
	Externals []string

	// Supertypes contains names of hidden rules acting as queryable categories of their alternatives.
	Supertypes []string

	// Inline contains names of rules that are spliced into parent node.
	Inline []string

	// Conflicts contains groups of rules whose mutual ambiguity is intentional.
	Conflicts [][]string

	// Word is the name of identifier-like token rule used to tell keywords from identifiers.
	Word string
}

// New creates empty grammar.
func New(name string) *Grammar {
	return &Grammar{Name: name}
}

// Define adds rule or replaces body of already defined rule keeping its position.
// body may be an *Expr or a string literal.
func (g *Grammar) Define(name string, body any) *Grammar {
	e := ToExpr(body)
	for i := range g.Rules {
		if g.Rules[i].Name == name {
			g.Rules[i].Body = e
			return g
		}
	}

	g.Rules = append(g.Rules, Rule{name, e})
	return g
}

// Rule returns body of named rule.
func (g *Grammar) Rule(name string) (*Expr, bool) {
	for _, r := range g.Rules {
		if r.Name == name {
			return r.Body, true
		}
	}
	return nil, false
}

// StartRule returns name of the first rule or empty string.
func (g *Grammar) StartRule() string {
	if len(g.Rules) == 0 {
		return ""
	}
	return g.Rules[0].Name
}

// IsHidden tells whether rule name denotes hidden rule.
func IsHidden(name string) bool {
	return len(name) > 0 && name[0] == '_'
}

// SetExtras replaces extras table.
func (g *Grammar) SetExtras(items ...any) *Grammar {
	g.Extras = toExprs(items)
	return g
}

// SetExternals replaces externals table, names order is priority order.
func (g *Grammar) SetExternals(names ...string) *Grammar {
	g.Externals = names
	return g
}

// SetSupertypes replaces supertypes table.
func (g *Grammar) SetSupertypes(names ...string) *Grammar {
	g.Supertypes = names
	return g
}

// SetInline replaces inline table.
func (g *Grammar) SetInline(names ...string) *Grammar {
	g.Inline = names
	return g
}

// AddConflict declares intentional ambiguity among rules.
func (g *Grammar) AddConflict(names ...string) *Grammar {
	g.Conflicts = append(g.Conflicts, names)
	return g
}

// SetWord sets keyword extraction rule.
func (g *Grammar) SetWord(name string) *Grammar {
	g.Word = name
	return g
}

// IsExternal tells whether name is declared in externals table.
func (g *Grammar) IsExternal(name string) bool {
	return indexOf(g.Externals, name) >= 0
}

func indexOf(list []string, name string) int {
	for i, n := range list {
		if n == name {
			return i
		}
	}
	return -1
}
