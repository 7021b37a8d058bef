package grammar

import (
	"fmt"
	"strconv"
	"strings"
)

// ExprType names rule expression node type. Values match node types of tree-sitter grammar.json files.
type ExprType string

const (
	BlankExpr          ExprType = "BLANK"
	StringExpr         ExprType = "STRING"
	PatternExpr        ExprType = "PATTERN"
	SymbolExpr         ExprType = "SYMBOL"
	SeqExpr            ExprType = "SEQ"
	ChoiceExpr         ExprType = "CHOICE"
	RepeatExpr         ExprType = "REPEAT"
	Repeat1Expr        ExprType = "REPEAT1"
	PrecExpr           ExprType = "PREC"
	PrecLeftExpr       ExprType = "PREC_LEFT"
	PrecRightExpr      ExprType = "PREC_RIGHT"
	PrecDynamicExpr    ExprType = "PREC_DYNAMIC"
	FieldExpr          ExprType = "FIELD"
	AliasExpr          ExprType = "ALIAS"
	TokenExpr          ExprType = "TOKEN"
	ImmediateTokenExpr ExprType = "IMMEDIATE_TOKEN"
)

// Expr is a rule expression node. Which fields are meaningful depends on Type:
//   - STRING, PATTERN: Value contains literal text or regular expression;
//   - SYMBOL: Value contains referenced rule or external token name;
//   - FIELD: Value contains field name, Content contains expression;
//   - ALIAS: Value contains public name, Named tells whether alias produces named node;
//   - PREC*: Prec contains precedence level;
//   - SEQ, CHOICE: Members contain sub-expressions;
//   - REPEAT, REPEAT1, PREC*, TOKEN, IMMEDIATE_TOKEN: Content contains sub-expression.
//
// Expressions are values: compiler never modifies them, the same expression may be shared by several rules.
type Expr struct {
	Type    ExprType
	Value   string
	Named   bool
	Prec    int
	Members []*Expr
	Content *Expr
}

// ToExpr converts authoring shortcut to expression: string is a literal, *Expr is returned as is.
// Panics on any other type, grammar authoring errors are programming errors.
func ToExpr(item any) *Expr {
	switch x := item.(type) {
	case *Expr:
		if x == nil {
			panic("grammar: nil expression")
		}
		return x
	case string:
		return Str(x)
	default:
		panic(fmt.Sprintf("grammar: cannot use %T as rule expression", item))
	}
}

func toExprs(items []any) []*Expr {
	res := make([]*Expr, len(items))
	for i, item := range items {
		res[i] = ToExpr(item)
	}
	return res
}

// Blank matches empty input.
func Blank() *Expr {
	return &Expr{Type: BlankExpr}
}

// Str matches literal text.
func Str(text string) *Expr {
	return &Expr{Type: StringExpr, Value: text}
}

// Pattern matches regular expression (RE2 syntax).
func Pattern(re string) *Expr {
	return &Expr{Type: PatternExpr, Value: re}
}

// Sym references a rule or an external token by name.
func Sym(name string) *Expr {
	return &Expr{Type: SymbolExpr, Value: name}
}

// Seq matches items in order.
func Seq(items ...any) *Expr {
	return &Expr{Type: SeqExpr, Members: toExprs(items)}
}

// Choice matches one of alternatives. Alternative order is only used to break ties.
func Choice(alts ...any) *Expr {
	return &Expr{Type: ChoiceExpr, Members: toExprs(alts)}
}

// Optional matches expression or empty input.
func Optional(item any) *Expr {
	return Choice(item, Blank())
}

// Repeat matches zero or more occurrences.
func Repeat(item any) *Expr {
	return &Expr{Type: RepeatExpr, Content: ToExpr(item)}
}

// Repeat1 matches one or more occurrences.
func Repeat1(item any) *Expr {
	return &Expr{Type: Repeat1Expr, Content: ToExpr(item)}
}

// Prec sets static precedence level, no associativity.
func Prec(level int, item any) *Expr {
	return &Expr{Type: PrecExpr, Prec: level, Content: ToExpr(item)}
}

// PrecLeft sets static precedence level and left associativity.
func PrecLeft(level int, item any) *Expr {
	return &Expr{Type: PrecLeftExpr, Prec: level, Content: ToExpr(item)}
}

// PrecRight sets static precedence level and right associativity.
func PrecRight(level int, item any) *Expr {
	return &Expr{Type: PrecRightExpr, Prec: level, Content: ToExpr(item)}
}

// PrecDynamic sets dynamic precedence used to break ties at parse time.
func PrecDynamic(level int, item any) *Expr {
	return &Expr{Type: PrecDynamicExpr, Prec: level, Content: ToExpr(item)}
}

// Field binds name to nodes produced by expression.
func Field(name string, item any) *Expr {
	return &Expr{Type: FieldExpr, Value: name, Content: ToExpr(item)}
}

// Alias renames nodes produced by expression to named kind.
func Alias(item any, name string) *Expr {
	return &Expr{Type: AliasExpr, Value: name, Named: true, Content: ToExpr(item)}
}

// AliasLiteral renames nodes produced by expression to anonymous kind.
func AliasLiteral(item any, text string) *Expr {
	return &Expr{Type: AliasExpr, Value: text, Content: ToExpr(item)}
}

// Token makes single lexical token from expression built of literals and patterns.
func Token(item any) *Expr {
	return &Expr{Type: TokenExpr, Content: ToExpr(item)}
}

// ImmediateToken is the same as Token, but the token cannot be preceded by extras.
func ImmediateToken(item any) *Expr {
	return &Expr{Type: ImmediateTokenExpr, Content: ToExpr(item)}
}

// SepBy1 matches one or more items separated by sep.
func SepBy1(sep, item any) *Expr {
	return Seq(item, Repeat(Seq(sep, item)))
}

// SepBy matches zero or more items separated by sep.
func SepBy(sep, item any) *Expr {
	return Optional(SepBy1(sep, item))
}

// OptionalWithPlaceholder binds field to expression, or to placeholder when expression is absent.
// Every node of enclosing rule exposes the field either way.
func OptionalWithPlaceholder(field string, item any) *Expr {
	return Choice(Field(field, item), Field(field, Blank()))
}

// IsPlaceholder tells whether expression is a field bound to nothing.
func (e *Expr) IsPlaceholder() bool {
	return e.Type == FieldExpr && e.Content.Type == BlankExpr
}

// Walk calls visitor for expression and its sub-expressions in depth-first order.
// Sub-expressions are skipped when visitor returns false.
func (e *Expr) Walk(visitor func(*Expr) bool) {
	if !visitor(e) {
		return
	}

	for _, m := range e.Members {
		m.Walk(visitor)
	}
	if e.Content != nil {
		e.Content.Walk(visitor)
	}
}

// String returns compact notation of expression, useful for error messages and debugging.
func (e *Expr) String() string {
	sb := &strings.Builder{}
	e.write(sb)
	return sb.String()
}

func (e *Expr) write(sb *strings.Builder) {
	switch e.Type {
	case BlankExpr:
		sb.WriteString("blank")
	case StringExpr:
		sb.WriteString(strconv.Quote(e.Value))
	case PatternExpr:
		sb.WriteString("/" + e.Value + "/")
	case SymbolExpr:
		sb.WriteString(e.Value)
	case SeqExpr, ChoiceExpr:
		sep := " "
		if e.Type == ChoiceExpr {
			sep = " | "
		}
		sb.WriteString("(")
		for i, m := range e.Members {
			if i > 0 {
				sb.WriteString(sep)
			}
			m.write(sb)
		}
		sb.WriteString(")")
	case RepeatExpr, Repeat1Expr:
		sb.WriteString("{")
		e.Content.write(sb)
		if e.Type == Repeat1Expr {
			sb.WriteString("}+")
		} else {
			sb.WriteString("}")
		}
	case FieldExpr:
		sb.WriteString(e.Value + ": ")
		e.Content.write(sb)
	case AliasExpr:
		e.Content.write(sb)
		sb.WriteString(" as " + e.Value)
	default:
		sb.WriteString(strings.ToLower(string(e.Type)))
		if e.Type != TokenExpr && e.Type != ImmediateTokenExpr {
			sb.WriteString("(" + strconv.Itoa(e.Prec) + ")")
		}
		sb.WriteString("<")
		e.Content.write(sb)
		sb.WriteString(">")
	}
}
