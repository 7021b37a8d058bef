package rust_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/ava12/cstx/languages/rust"
	"github.com/ava12/cstx/tree"
)

func parse(t *testing.T, src string) *tree.Tree {
	t.Helper()
	p, e := rust.Parser()
	require.NoError(t, e)
	tr, e := p.ParseBytes(context.Background(), "test.rs", []byte(src))
	require.NoError(t, e)
	return tr
}

func parseClean(t *testing.T, src string) *tree.Tree {
	t.Helper()
	tr := parse(t, src)
	require.Falsef(t, tr.Root().HasError(), "source %q: %s", src, tr.String())
	return tr
}

func find(tr *tree.Tree, kind string) []*tree.Node {
	return tree.NewSelector().Search(tree.IsA(kind), true).Apply(tr.Root())
}

func field(t *testing.T, n *tree.Node, name string) *tree.Node {
	t.Helper()
	require.NotNil(t, n)
	res := n.ChildByFieldName(name)
	require.NotNilf(t, res, "%s has no %q field: %s", n.Kind(), name, n.String())
	return res
}

func TestTable(t *testing.T) {
	tab, e := rust.Table()
	require.NoError(t, e)

	assert.Equal(t, "rust", tab.Name)
	assert.GreaterOrEqual(t, tab.TermIndex("identifier"), 0)
	assert.GreaterOrEqual(t, tab.NontermIndex("program"), 0)
	assert.Contains(t, tab.Subtypes("_type"), "generic_type")
	assert.Contains(t, tab.SupertypesOf("integer_literal"), "_literal")

	again, e := rust.Table()
	require.NoError(t, e)
	assert.Same(t, tab, again)
}

func TestBinaryPrecedence(t *testing.T) {
	tr := parseClean(t, "1 + 2 * 3;")
	assert.Equal(t, "(program statement_list: (statement (expression (binary_expression"+
		" left: (expression (integer_literal))"+
		" right: (expression (binary_expression left: (expression (integer_literal)) right: (expression (integer_literal))))))))",
		tr.String())

	tr = parseClean(t, "a - b - c;")
	bin := find(tr, "binary_expression")
	require.Len(t, bin, 2)
	assert.Equal(t, "a - b", field(t, bin[0], "left").Text())
	assert.Equal(t, "c", field(t, bin[0], "right").Text())
}

func TestGenericType(t *testing.T) {
	tr := parseClean(t, "type X = a::b::C<T>;")
	items := find(tr, "type_item")
	require.Len(t, items, 1)

	assert.Equal(t, "X", field(t, items[0], "name").Text())
	generic := field(t, items[0], "type")
	assert.Equal(t, "generic_type", generic.Kind())

	scoped := field(t, generic, "type")
	assert.Equal(t, "scoped_type_identifier", scoped.Kind())
	assert.Equal(t, "C", field(t, scoped, "name").Text())
	path := field(t, scoped, "path")
	assert.Equal(t, "scoped_identifier", path.Kind())
	assert.Equal(t, "a::b", path.Text())

	args := field(t, generic, "type_arguments")
	assert.Equal(t, "<T>", args.Text())
}

func TestMatch(t *testing.T) {
	tr := parseClean(t, "match x { 1 => a, _ => b }")
	arms := find(tr, "match_arm")
	require.Len(t, arms, 2)

	assert.Equal(t, "1", field(t, arms[0], "pattern").Text())
	assert.Equal(t, "a", field(t, arms[0], "value").Text())
	assert.Equal(t, "_", field(t, arms[1], "pattern").Text())
	assert.Equal(t, "b", field(t, arms[1], "value").Text())
	assert.Equal(t, ",", arms[0].LastChild().Text())
	assert.Equal(t, "1 => a,", arms[0].Text())
	assert.Equal(t, "match_arm", arms[1].Kind())
	assert.Equal(t, "last_match_arm", arms[1].Rule())
	assert.Equal(t, "b", arms[1].LastChild().Text())
	assert.NotContains(t, arms[1].Text(), ",")

	m := find(tr, "match_expression")
	require.Len(t, m, 1)
	assert.Equal(t, "x", field(t, m[0], "value").Text())
}

func TestTrailingMatchArmComma(t *testing.T) {
	tr := parseClean(t, "match x { 1 => a, _ => b, }")
	arms := find(tr, "match_arm")
	require.Len(t, arms, 2)
	assert.Equal(t, "last_match_arm", arms[1].Rule())
	assert.Equal(t, "_ => b,", arms[1].Text())
	assert.Equal(t, ",", arms[1].LastChild().Text())
}

func TestOpenRangeAfterJump(t *testing.T) {
	tr := parseClean(t, "fn f() { loop { break ..; } return ..; }")
	require.Len(t, find(tr, "break_expression"), 1)
	returns := 0
	for _, n := range find(tr, "return") {
		if n.IsNamed() {
			returns++
		}
	}
	assert.Equal(t, 1, returns)
	assert.Len(t, find(tr, "range_expression"), 2)
	assert.Len(t, find(tr, "function"), 1)
}

func TestFunction(t *testing.T) {
	tr := parseClean(t, "fn f() -> () {}")
	fs := find(tr, "function")
	require.Len(t, fs, 1)
	f := fs[0]

	assert.True(t, field(t, f, "modifier_list").IsPlaceholder())
	assert.Equal(t, "f", field(t, f, "name").Text())
	assert.True(t, field(t, f, "type_parameter_list_optional").IsPlaceholder())
	assert.True(t, field(t, field(t, f, "parameters"), "parameter_list").IsPlaceholder())

	clause := field(t, f, "type_optional")
	assert.Equal(t, "function_type_clause", clause.Kind())
	assert.Equal(t, "unit_type", field(t, clause, "type").Kind())

	bodies := find(tr, "enclosed_body")
	require.Len(t, bodies, 1)
	assert.Same(t, f, bodies[0].Parent())
	body := field(t, bodies[0], "statement_list")
	assert.True(t, body.IsPlaceholder())
	assert.Equal(t, "", body.Text())

	tr = parseClean(t, "pub async fn g<T>(x: T) where T: Copy { x }")
	f = find(tr, "function")[0]
	mods := field(t, f, "modifier_list")
	assert.False(t, mods.IsPlaceholder())
	assert.Equal(t, "pub", mods.Text())
	assert.Equal(t, "<T>", field(t, f, "type_parameter_list_optional").Text())
	assert.True(t, field(t, f, "type_optional").IsPlaceholder())
	assert.Equal(t, "where T: Copy", field(t, f, "type_parameter_constraint_list_optional").Text())
}

func TestLiterals(t *testing.T) {
	tr := parseClean(t, `let s = r#"a "quoted" b"#;`)
	raw := find(tr, "raw_string_literal")
	require.Len(t, raw, 1)
	assert.Equal(t, `r#"a "quoted" b"#`, raw[0].Text())

	tr = parseClean(t, `let s = "a\tb";`)
	assert.Len(t, find(tr, "string_literal"), 1)
	assert.Len(t, find(tr, "escape_sequence"), 1)
	content := find(tr, "string_content")
	require.Len(t, content, 2)
	assert.Equal(t, "a", content[0].Text())

	tr = parseClean(t, "let x = 1.5 + 2;")
	require.Len(t, find(tr, "float_literal"), 1)
	assert.Equal(t, "1.5", find(tr, "float_literal")[0].Text())
	assert.Len(t, find(tr, "integer_literal"), 1)

	tr = parseClean(t, "let r = 0..10;")
	assert.Len(t, find(tr, "range_expression"), 1)
	assert.Len(t, find(tr, "float_literal"), 0)
}

func TestComments(t *testing.T) {
	tr := parseClean(t, "/* a /* b */ c */ let x = 1; // tail")
	comments := find(tr, "block_comment")
	require.Len(t, comments, 1)
	assert.Equal(t, "/* a /* b */ c */", comments[0].Text())
	assert.True(t, comments[0].IsExtra())

	lines := find(tr, "line_comment")
	require.Len(t, lines, 1)
	assert.Equal(t, "// tail", lines[0].Text())
}

func TestErrors(t *testing.T) {
	tr := parse(t, `let s = r#"abc";`)
	assert.True(t, tr.Root().HasError())
	assert.NotEmpty(t, tr.Errors())

	tr = parse(t, "fn f( {}")
	assert.True(t, tr.Root().HasError())
}

const sample = `use std::collections::HashMap;

/// Counts words.
pub struct Counter<'a> {
    words: HashMap<&'a str, usize>,
}

impl<'a> Counter<'a> {
    pub fn add(&mut self, w: &'a str) {
        *self.words.entry(w).or_insert(0) += 1;
    }
}

fn main() {
    let mut c = Counter { words: HashMap::new() };
    for w in "a b a".split(' ') {
        c.add(w);
    }
    if let Some(n) = c.words.get("a") {
        println!("{}", n);
    } else {
        return;
    }
}
`

func TestRoundTrip(t *testing.T) {
	tr := parseClean(t, sample)
	pos := 0
	for _, l := range tr.Leaves() {
		if l.IsPlaceholder() {
			continue
		}
		require.GreaterOrEqual(t, l.Start(), pos)
		assert.Empty(t, strings.TrimSpace(sample[pos:l.Start()]))
		assert.Equal(t, sample[l.Start():l.End()], l.Text())
		pos = l.End()
	}
	assert.Empty(t, strings.TrimSpace(sample[pos:]))
}

func TestDeterminism(t *testing.T) {
	expected := parseClean(t, sample).String()
	for i := 0; i < 3; i++ {
		assert.Equal(t, expected, parse(t, sample).String())
	}
}

func TestConcurrentParse(t *testing.T) {
	defer goleak.VerifyNone(t)

	expected := parseClean(t, sample).String()
	p, e := rust.Parser()
	require.NoError(t, e)

	var eg errgroup.Group
	results := make([]string, 8)
	for i := range results {
		i := i
		eg.Go(func() error {
			tr, e := p.ParseBytes(context.Background(), fmt.Sprintf("file%d.rs", i), []byte(sample))
			if e != nil {
				return e
			}
			results[i] = tr.String()
			return nil
		})
	}
	require.NoError(t, eg.Wait())
	for _, r := range results {
		assert.Equal(t, expected, r)
	}
}
