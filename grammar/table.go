package grammar

import (
	"sort"
)

// Table is a compiled grammar. It is plain data, safe for concurrent use and JSON-serializable;
// compiling the same grammar twice produces identical tables.
type Table struct {
	Name        string
	Terms       []Term
	Nonterms    []Nonterm
	Productions []Production

	// Start is the start nonterminal index.
	Start int

	// Word is the word token index or -1.
	Word int

	// Extras contains indexes of extra terms.
	Extras []int `json:",omitempty"`

	// Externals contains indexes of external terms in priority order.
	Externals []int `json:",omitempty"`

	// Precedence is the resolved precedence table, sorted by (Reduce, Shift).
	Precedence []Resolution `json:",omitempty"`

	// Conflicts is the conflict resolution plan, one entry per declared conflict group.
	Conflicts []Conflict `json:",omitempty"`

	// Reachable contains names of rules reachable from the start rule, sorted.
	Reachable []string

	// Fields contains field names exposed by each named node kind, sorted by kind.
	Fields []FieldSet `json:",omitempty"`

	// Supertypes contains concrete kinds of each supertype, sorted by name.
	Supertypes []Supertype `json:",omitempty"`
}

// TermFlags describe term properties.
type TermFlags int

const (
	LiteralTerm   TermFlags = 1 << iota // Re contains literal text
	ExternalTerm                        // recognized by external scanner
	ExtraTerm                           // may appear between any tokens
	ImmediateTerm                       // cannot be preceded by extras
	NamedTerm                           // produces named leaf node
	KeywordTerm                         // literal matching word token
)

// Term is a lexical token kind.
type Term struct {
	// Name is the public kind of produced leaf: rule name for named terms, literal text or pattern for anonymous ones.
	Name string

	// Re contains literal text (LiteralTerm) or regular expression; empty for external terms.
	Re string `json:",omitempty"`

	// Prec is the lexical precedence, higher value wins when two terms match the same text.
	Prec int `json:",omitempty"`

	// External is the index in grammar externals list for external terms.
	External int `json:",omitempty"`

	Flags TermFlags
}

// Is tells whether term has all of flags set.
func (t Term) Is(flags TermFlags) bool {
	return t.Flags&flags == flags
}

// NontermFlags describe nonterminal properties.
type NontermFlags int

const (
	HiddenNonterm    NontermFlags = 1 << iota // spliced into parent node
	InlineNonterm                             // listed in inline table
	SupertypeNonterm                          // listed in supertypes table
	AuxNonterm                                // generated by compiler
)

// Nonterm is a nonterminal symbol.
type Nonterm struct {
	Name        string
	Flags       NontermFlags
	Productions []int
}

// Is tells whether nonterminal has all of flags set.
func (n Nonterm) Is(flags NontermFlags) bool {
	return n.Flags&flags == flags
}

// Visible tells whether nonterminal produces tree nodes.
func (n Nonterm) Visible() bool {
	return n.Flags&(HiddenNonterm|InlineNonterm|SupertypeNonterm|AuxNonterm) == 0
}

// StepKind tells what kind of symbol production step refers to.
type StepKind int

const (
	TermStep        StepKind = iota // Index is a term index
	NontermStep                     // Index is a nonterminal index
	PlaceholderStep                 // matches nothing, only binds Field to a placeholder node
)

// Assoc is the associativity of production.
type Assoc int

const (
	AssocNone Assoc = iota
	AssocLeft
	AssocRight
)

func (a Assoc) String() string {
	switch a {
	case AssocLeft:
		return "left"
	case AssocRight:
		return "right"
	default:
		return "none"
	}
}

// Step is a single element of production.
type Step struct {
	Kind       StepKind `json:",omitempty"`
	Index      int      `json:",omitempty"`
	Field      string   `json:",omitempty"`
	Alias      string   `json:",omitempty"`
	AliasNamed bool     `json:",omitempty"`
	Prec       int      `json:",omitempty"`
	Assoc      Assoc    `json:",omitempty"`
}

// Production is a flattened alternative of a rule.
type Production struct {
	Nonterm int
	Steps   []Step `json:",omitempty"`

	// Prec and Assoc are taken from the last step.
	Prec  int   `json:",omitempty"`
	Assoc Assoc `json:",omitempty"`

	// Dynamic is the dynamic precedence.
	Dynamic int `json:",omitempty"`
}

// Action is the resolved outcome of operator conflict.
type Action int

const (
	// ReduceAction nests reducing production inside the shifting one (reducing production binds tighter).
	ReduceAction Action = iota + 1
	// ShiftAction nests shifting production inside the reducing one.
	ShiftAction
	// ForkAction keeps both interpretations, parser decides at run time.
	ForkAction
)

func (a Action) String() string {
	switch a {
	case ReduceAction:
		return "reduce"
	case ShiftAction:
		return "shift"
	case ForkAction:
		return "fork"
	default:
		return "none"
	}
}

// Resolution is a resolved precedence table entry.
// Reduce is the right-open production (ends with nonterminal), Shift is the left-open production
// (starts with nonterminal); each of them can be the open child of the other.
type Resolution struct {
	Reduce, Shift int
	Action        Action
}

// Policy is the conflict resolution policy.
type Policy string

const (
	// StaticPolicy means every competing pair of the group is settled by precedence.
	StaticPolicy Policy = "static"
	// DynamicPolicy means parser keeps both interpretations and resolves them at run time.
	DynamicPolicy Policy = "dynamic"
	// UnusedPolicy means the group never competed.
	UnusedPolicy Policy = "unused"
)

// Conflict is a conflict plan entry for declared conflict group.
type Conflict struct {
	Rules  []string
	Policy Policy

	// Pairs contains competing production pairs found for this group.
	Pairs [][2]int `json:",omitempty"`
}

// FieldSet lists field names of a named node kind.
type FieldSet struct {
	Kind   string
	Fields []string
}

// Supertype lists concrete node kinds queryable as supertype.
type Supertype struct {
	Name  string
	Kinds []string
}

// TermIndex returns index of the term with given name or -1.
func (t *Table) TermIndex(name string) int {
	for i, term := range t.Terms {
		if term.Name == name {
			return i
		}
	}
	return -1
}

// NontermIndex returns index of the nonterminal with given name or -1.
func (t *Table) NontermIndex(name string) int {
	for i, nt := range t.Nonterms {
		if nt.Name == name {
			return i
		}
	}
	return -1
}

// FieldNames returns field names declared for node kind.
func (t *Table) FieldNames(kind string) []string {
	i := sort.Search(len(t.Fields), func(i int) bool {
		return t.Fields[i].Kind >= kind
	})
	if i < len(t.Fields) && t.Fields[i].Kind == kind {
		return t.Fields[i].Fields
	}
	return nil
}

// Subtypes returns concrete node kinds queryable as supertype, nil if name is not a supertype.
func (t *Table) Subtypes(supertype string) []string {
	i := sort.Search(len(t.Supertypes), func(i int) bool {
		return t.Supertypes[i].Name >= supertype
	})
	if i < len(t.Supertypes) && t.Supertypes[i].Name == supertype {
		return t.Supertypes[i].Kinds
	}
	return nil
}

// SupertypesOf returns names of supertypes that include node kind.
func (t *Table) SupertypesOf(kind string) []string {
	var res []string
	for _, st := range t.Supertypes {
		i := sort.SearchStrings(st.Kinds, kind)
		if i < len(st.Kinds) && st.Kinds[i] == kind {
			res = append(res, st.Name)
		}
	}
	return res
}

// SymbolName returns name of step symbol, useful for messages.
func (t *Table) SymbolName(s Step) string {
	switch s.Kind {
	case TermStep:
		return t.Terms[s.Index].Name
	case NontermStep:
		return t.Nonterms[s.Index].Name
	default:
		return "<" + s.Field + ">"
	}
}

// RuleName returns the grammar rule a production originates from:
// auxiliary nonterminals are named after their rule with "~" suffix.
func (t *Table) RuleName(production int) string {
	name := t.Nonterms[t.Productions[production].Nonterm].Name
	for i := 0; i < len(name); i++ {
		if name[i] == '~' {
			return name[:i]
		}
	}
	return name
}

// ProductionString returns textual representation of production.
func (t *Table) ProductionString(production int) string {
	p := t.Productions[production]
	res := t.Nonterms[p.Nonterm].Name + " ->"
	if len(p.Steps) == 0 {
		return res + " <empty>"
	}

	for _, s := range p.Steps {
		res += " "
		if s.Field != "" {
			res += s.Field + ":"
		}
		if s.Kind == TermStep && !t.Terms[s.Index].Is(NamedTerm) {
			res += "'" + t.Terms[s.Index].Name + "'"
		} else {
			res += t.SymbolName(s)
		}
	}
	return res
}
