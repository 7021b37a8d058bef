package langdef

import (
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	g "github.com/ava12/cstx/grammar"
	"github.com/ava12/cstx/internal/test"
)

func calcGrammar() *g.Grammar {
	gr := g.New("calc")
	gr.Define("program", g.Repeat(g.Sym("statement")))
	gr.Define("statement", g.Choice(
		g.Seq(g.Field("value", g.Sym("_expr")), ";"),
		g.Seq("let", g.Field("name", g.Sym("name")), "=", g.Field("value", g.Sym("_expr")), ";"),
	))
	gr.Define("_expr", g.Choice(g.Sym("binary"), g.Sym("unary"), g.Sym("number"), g.Sym("name")))
	gr.Define("binary", g.Choice(
		g.PrecLeft(1, g.Seq(g.Field("left", g.Sym("_expr")), g.Field("operator", "+"), g.Field("right", g.Sym("_expr")))),
		g.PrecLeft(2, g.Seq(g.Field("left", g.Sym("_expr")), g.Field("operator", "*"), g.Field("right", g.Sym("_expr")))),
	))
	gr.Define("unary", g.Prec(3, g.Seq("-", g.Field("operand", g.Sym("_expr")))))
	gr.Define("number", g.Pattern(`\d+`))
	gr.Define("name", g.Pattern(`[a-z]+`))
	gr.SetExtras(g.Pattern(`\s`)).SetWord("name").SetSupertypes("_expr")
	return gr
}

func compile(t *testing.T, gr *g.Grammar) *g.Table {
	t.Helper()
	tab, e := Compile(gr, nil)
	require.NoError(t, e)
	return tab
}

func TestCompileSymbols(t *testing.T) {
	tab := compile(t, calcGrammar())

	assert.Equal(t, "program", tab.Nonterms[tab.Start].Name)
	assert.Equal(t, tab.TermIndex("name"), tab.Word)

	name := tab.Terms[tab.TermIndex("name")]
	assert.True(t, name.Is(g.NamedTerm))
	assert.Equal(t, `[a-z]+`, name.Re)

	assert.True(t, tab.Terms[tab.TermIndex("let")].Is(g.LiteralTerm|g.KeywordTerm))
	assert.False(t, tab.Terms[tab.TermIndex("+")].Is(g.KeywordTerm))

	require.Len(t, tab.Extras, 1)
	assert.True(t, tab.Terms[tab.Extras[0]].Is(g.ExtraTerm))
	assert.Equal(t, `\s`, tab.Terms[tab.Extras[0]].Re)

	aux := tab.NontermIndex("program~1")
	require.GreaterOrEqual(t, aux, 0)
	assert.True(t, tab.Nonterms[aux].Is(g.AuxNonterm|g.HiddenNonterm))
	assert.False(t, tab.Nonterms[aux].Visible())
	assert.True(t, tab.Nonterms[tab.NontermIndex("_expr")].Is(g.HiddenNonterm|g.SupertypeNonterm))
	assert.True(t, tab.Nonterms[tab.NontermIndex("binary")].Visible())

	assert.Equal(t, []string{"_expr", "binary", "name", "number", "program", "statement", "unary"}, tab.Reachable)
}

func TestDefaultExtras(t *testing.T) {
	gr := g.New("words")
	gr.Define("words", g.Repeat(g.Sym("word")))
	gr.Define("word", g.Pattern(`[a-z]+`))

	tab := compile(t, gr)
	require.Len(t, tab.Extras, 1)
	assert.True(t, tab.Terms[tab.Extras[0]].Is(g.ExtraTerm))
	assert.Equal(t, `\s`, tab.Terms[tab.Extras[0]].Re)

	tab = compile(t, gr.SetExtras())
	assert.Empty(t, tab.Extras)
	for _, term := range tab.Terms {
		assert.False(t, term.Is(g.ExtraTerm), term.Name)
	}
}

func TestCompileProductions(t *testing.T) {
	tab := compile(t, calcGrammar())

	program := tab.Nonterms[tab.Start]
	require.Len(t, program.Productions, 2)
	assert.Equal(t, "program -> program~1", tab.ProductionString(program.Productions[0]))
	assert.Equal(t, "program -> <empty>", tab.ProductionString(program.Productions[1]))

	binary := tab.Nonterms[tab.NontermIndex("binary")]
	require.Len(t, binary.Productions, 2)
	plus := tab.Productions[binary.Productions[0]]
	assert.Equal(t, "binary -> left:_expr operator:'+' right:_expr", tab.ProductionString(binary.Productions[0]))
	assert.Equal(t, 1, plus.Prec)
	assert.Equal(t, g.AssocLeft, plus.Assoc)
	assert.Equal(t, "binary", tab.RuleName(binary.Productions[0]))

	aux := tab.Nonterms[tab.NontermIndex("program~1")]
	require.Len(t, aux.Productions, 2)
	assert.Equal(t, "program", tab.RuleName(aux.Productions[0]))
	assert.Equal(t, "program~1 -> statement", tab.ProductionString(aux.Productions[0]))
	assert.Equal(t, "program~1 -> program~1 statement", tab.ProductionString(aux.Productions[1]))
}

func TestCompileShapeTables(t *testing.T) {
	tab := compile(t, calcGrammar())

	assert.Equal(t, []string{"left", "operator", "right"}, tab.FieldNames("binary"))
	assert.Equal(t, []string{"name", "value"}, tab.FieldNames("statement"))
	assert.Equal(t, []string{"operand"}, tab.FieldNames("unary"))
	assert.Nil(t, tab.FieldNames("program"))

	assert.Equal(t, []string{"binary", "name", "number", "unary"}, tab.Subtypes("_expr"))
	assert.Equal(t, []string{"_expr"}, tab.SupertypesOf("unary"))
	assert.Nil(t, tab.Subtypes("binary"))
}

func TestInheritedFields(t *testing.T) {
	gr := g.New("inherit")
	gr.Define("call", g.Seq(g.Field("callee", g.Sym("name")), g.Sym("_args")))
	gr.Define("_args", g.Seq("(", g.Field("argument", g.Sym("name")), ")"))
	gr.Define("name", g.Pattern(`[a-z]+`))

	tab := compile(t, gr)
	assert.Equal(t, []string{"argument", "callee"}, tab.FieldNames("call"))
	assert.Nil(t, tab.FieldNames("_args"))
}

func TestPlaceholders(t *testing.T) {
	gr := g.New("ph")
	gr.Define("item", g.Seq("item", g.OptionalWithPlaceholder("label", g.Sym("name"))))
	gr.Define("name", g.Pattern(`[a-z]+`))

	tab := compile(t, gr)
	item := tab.Nonterms[tab.Start]
	require.Len(t, item.Productions, 2)
	steps := tab.Productions[item.Productions[1]].Steps
	require.Len(t, steps, 2)
	assert.Equal(t, g.PlaceholderStep, steps[1].Kind)
	assert.Equal(t, "label", steps[1].Field)
	assert.Equal(t, "item -> 'item' label:<label>", tab.ProductionString(item.Productions[1]))
	assert.Equal(t, []string{"label"}, tab.FieldNames("item"))
}

func TestAliases(t *testing.T) {
	gr := g.New("alias")
	gr.Define("list", g.Repeat1(g.Choice(g.Alias(g.Sym("name"), "label"), g.Alias(g.Seq(g.Sym("name"), ":"), "key"))))
	gr.Define("name", g.Pattern(`[a-z]+`))

	tab := compile(t, gr)
	rep := tab.Productions[tab.Nonterms[tab.Start].Productions[0]].Steps[0].Index
	aux := tab.Nonterms[rep]
	assert.Equal(t, "list~2", aux.Name)
	first := tab.Productions[aux.Productions[0]].Steps[0]
	assert.Equal(t, g.TermStep, first.Kind)
	assert.Equal(t, "label", first.Alias)
	assert.True(t, first.AliasNamed)

	second := tab.Productions[aux.Productions[1]].Steps[0]
	assert.Equal(t, g.NontermStep, second.Kind)
	assert.Equal(t, "key", second.Alias)
	assert.Equal(t, "list~1", tab.Nonterms[second.Index].Name)
}

func findResolution(tab *g.Table, reduce, shift int) g.Action {
	for _, r := range tab.Precedence {
		if r.Reduce == reduce && r.Shift == shift {
			return r.Action
		}
	}
	return 0
}

func TestOperatorPrecedence(t *testing.T) {
	tab := compile(t, calcGrammar())

	binary := tab.Nonterms[tab.NontermIndex("binary")].Productions
	unary := tab.Nonterms[tab.NontermIndex("unary")].Productions[0]
	plus, times := binary[0], binary[1]

	assert.Equal(t, g.ReduceAction, findResolution(tab, plus, plus))
	assert.Equal(t, g.ShiftAction, findResolution(tab, plus, times))
	assert.Equal(t, g.ReduceAction, findResolution(tab, times, plus))
	assert.Equal(t, g.ReduceAction, findResolution(tab, times, times))
	assert.Equal(t, g.ReduceAction, findResolution(tab, unary, plus))
	assert.Equal(t, g.ReduceAction, findResolution(tab, unary, times))
	assert.Len(t, tab.Precedence, 6)
}

func ambiguousSum() *g.Grammar {
	gr := g.New("sum")
	gr.Define("sum", g.Choice(g.Seq(g.Sym("sum"), "+", g.Sym("sum")), "x"))
	return gr
}

func TestUndeclaredOperatorConflict(t *testing.T) {
	_, e := Compile(ambiguousSum(), nil)
	test.ExpectErrorCode(t, UndeclaredConflictError, e)
	test.ExpectMentions(t, e, "sum and sum", "sum -> sum '+' sum")
}

func TestDeclaredOperatorConflict(t *testing.T) {
	tab := compile(t, ambiguousSum().AddConflict("sum"))

	p := tab.Nonterms[tab.Start].Productions[0]
	assert.Equal(t, g.ForkAction, findResolution(tab, p, p))
	require.Len(t, tab.Conflicts, 1)
	assert.Equal(t, g.DynamicPolicy, tab.Conflicts[0].Policy)
	assert.Equal(t, [][2]int{{p, p}}, tab.Conflicts[0].Pairs)
}

func sameShapes() *g.Grammar {
	gr := g.New("shapes")
	gr.Define("start", g.Choice(g.Sym("first"), g.Sym("second")))
	gr.Define("first", g.Seq("k", g.Optional("m")))
	gr.Define("second", g.Choice("k", "n"))
	return gr
}

func TestShapeConflicts(t *testing.T) {
	_, e := Compile(sameShapes(), nil)
	test.ExpectErrorCode(t, UndeclaredConflictError, e)
	test.ExpectMentions(t, e, "first", "second", `"k"`)

	gr := sameShapes()
	gr.Define("start", g.Choice(g.Prec(1, g.Sym("first")), g.Sym("second")))
	compile(t, gr)

	tab := compile(t, sameShapes().AddConflict("second", "first"))
	require.Len(t, tab.Conflicts, 1)
	assert.Equal(t, g.DynamicPolicy, tab.Conflicts[0].Policy)
	assert.Equal(t, []string{"second", "first"}, tab.Conflicts[0].Rules)
	assert.Equal(t, [][2]int{{0, 1}}, tab.Conflicts[0].Pairs)

	_, e = Compile(sameShapes(), &Options{ShapeDepth: 1})
	test.ExpectErrorCode(t, UndeclaredConflictError, e)
}

func TestConflictPolicies(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	gr := calcGrammar().AddConflict("binary", "unary").AddConflict("statement", "unary")

	tab, e := Compile(gr, &Options{Logger: logger})
	require.NoError(t, e)
	require.Len(t, tab.Conflicts, 2)
	assert.Equal(t, g.StaticPolicy, tab.Conflicts[0].Policy)
	assert.Equal(t, g.UnusedPolicy, tab.Conflicts[1].Policy)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, []string{"statement", "unary"}, entry.Data["conflict"])
	assert.Equal(t, "calc", entry.Data["grammar"])
}

func TestUnreachableRules(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	gr := calcGrammar()
	gr.Define("orphan", g.Choice(g.Seq("(", g.Sym("orphan"), ")"), "()"))

	tab, e := Compile(gr, &Options{Logger: logger})
	require.NoError(t, e)
	assert.NotContains(t, tab.Reachable, "orphan")

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, []string{"orphan"}, hook.LastEntry().Data["rules"])
}

func TestCompileIsDeterministic(t *testing.T) {
	first := compile(t, calcGrammar())
	second := compile(t, calcGrammar())
	assert.Equal(t, first, second)

	a, e := json.Marshal(first)
	require.NoError(t, e)
	b, e := json.Marshal(second)
	require.NoError(t, e)
	assert.Equal(t, string(a), string(b))

	var decoded g.Table
	require.NoError(t, json.Unmarshal(a, &decoded))
	assert.Equal(t, first, &decoded)
}

func TestWideSequenceUsesAuxNonterm(t *testing.T) {
	opts := make([]any, 0, 8)
	for _, s := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		opts = append(opts, g.Optional(s))
	}
	gr := g.New("wide")
	gr.Define("wide", g.Seq(append([]any{"start"}, opts...)...))

	tab := compile(t, gr)
	assert.LessOrEqual(t, len(tab.Nonterms[tab.Start].Productions), maxAlternatives)
	assert.Greater(t, len(tab.Nonterms), 1)
}

func TestCompileErrors(t *testing.T) {
	samples := []struct {
		build func() *g.Grammar
		code  int
	}{
		{func() *g.Grammar { return g.New("x") }, NoRulesError},
		{func() *g.Grammar {
			gr := g.New("x")
			gr.Rules = []g.Rule{{Name: "s", Body: g.Str("a")}, {Name: "s", Body: g.Str("b")}}
			return gr
		}, DuplicateRuleError},
		{func() *g.Grammar { return g.New("x").Define("s", g.Pattern("x")) }, StartRuleError},
		{func() *g.Grammar { return g.New("x").Define("s", g.Sym("b")) }, UndefinedRuleError},
		{func() *g.Grammar { return g.New("x").Define("s", "x").SetInline("zz") }, UnknownRuleError},
		{func() *g.Grammar { return g.New("x").Define("s", g.Seq("x", "")) }, EmptyLiteralError},
		{func() *g.Grammar { return g.New("x").Define("s", g.Field("", "x")) }, EmptyNameError},
		{func() *g.Grammar { return g.New("x").Define("s", g.Pattern("(")) }, WrongRegexpError},
		{func() *g.Grammar { return g.New("x").Define("s", g.Seq(g.Sym("t"), "x")).Define("t", g.Pattern("x*")) }, EmptyTokenError},
		{func() *g.Grammar { return g.New("x").Define("s", g.Sym("a")).Define("a", g.Token(g.Sym("b"))).Define("b", "x") }, WrongTokenError},
		{func() *g.Grammar { return g.New("x").Define("s", g.Sym("a")).Define("a", "x").SetExternals("a") }, ExternalError},
		{func() *g.Grammar { return g.New("x").Define("s", "x").SetExternals("e", "e") }, ExternalError},
		{func() *g.Grammar { return g.New("x").Define("s", "x").Define("n", g.Seq("a", "b")).SetExtras(g.Sym("n")) }, ExtraError},
		{func() *g.Grammar { return g.New("x").Define("s", "x").SetWord("s") }, WordRuleError},
		{func() *g.Grammar { return g.New("x").Define("s", g.Seq("x", g.Sym("s"))) }, NonTerminatingError},
		{func() *g.Grammar { return g.New("x").Define("s", g.Choice(g.Sym("a"), "x")).Define("a", g.Sym("s")) }, CyclicRuleError},
		{func() *g.Grammar { return g.New("x").Define("s", g.Repeat(g.Optional("x"))) }, EmptyRepeatError},
		{func() *g.Grammar {
			return g.New("x").Define("s", g.Sym("_v")).Define("_v", g.Choice(g.Seq("a", "b"), "c")).SetSupertypes("_v")
		}, SupertypeError},
	}

	for i, s := range samples {
		tab, e := Compile(s.build(), nil)
		assert.Nil(t, tab, "sample #%d", i)
		test.ExpectErrorCode(t, s.code, e)
	}
}

func TestUndefinedRulesAreListed(t *testing.T) {
	gr := g.New("x").Define("s", g.Seq(g.Sym("a"), g.Sym("b"), g.Sym("a")))
	_, e := Compile(gr, nil)
	test.ExpectErrorCode(t, UndefinedRuleError, e)
	test.ExpectMentions(t, e, "a (in s)", "b (in s)")
}
