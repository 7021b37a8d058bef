package tree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava12/cstx/source"
)

// buildTree converts description like "(foo (bar baz) qux)" to a tree under "root" node.
// Parenthesized words are node kinds, bare words are leaves.
func buildTree(t *testing.T, desc string) (*Node, map[string]*Node) {
	t.Helper()
	words := strings.Fields(strings.NewReplacer("(", " ( ", ")", " ) ").Replace(desc))

	text := &strings.Builder{}
	root := NewNode("root", "root", NamedNode, nil, 0, 0)
	index := make(map[string]*Node)
	all := []*Node{root}
	stack := []*Node{root}
	opened := false

	for _, w := range words {
		top := stack[len(stack)-1]
		switch {
		case w == "(":
			opened = true
		case w == ")":
			require.Greater(t, len(stack), 1, "unbalanced description %q", desc)
			stack = stack[:len(stack)-1]
		case opened:
			n := NewNode(w, w, NamedNode, nil, 0, 0)
			top.AppendChild(n)
			stack = append(stack, n)
			index[w] = n
			all = append(all, n)
			opened = false
		default:
			start := text.Len()
			text.WriteString(w + " ")
			n := NewNode(w, w, LeafNode, nil, start, start+len(w))
			top.AppendChild(n)
			index[w] = n
			all = append(all, n)
		}
	}
	require.Len(t, stack, 1, "unbalanced description %q", desc)

	src := source.New("tree", []byte(text.String()))
	for i := len(all) - 1; i >= 0; i-- {
		n := all[i]
		n.src = src
		if !n.IsLeaf() && n.firstChild != nil {
			n.SetSpan(n.firstChild.Start(), n.lastChild.End())
		}
	}
	return root, index
}

func serialize(ns ...*Node) string {
	parts := make([]string, 0, len(ns))
	for _, n := range ns {
		if n.IsLeaf() {
			parts = append(parts, n.Text())
		} else {
			parts = append(parts, "("+n.Kind()+")")
		}
	}
	return strings.Join(parts, " ")
}

func TestBuildTree(t *testing.T) {
	root, i := buildTree(t, "(foo bar (baz qux))")
	assert.Equal(t, "(root (foo (baz)))", root.String())
	assert.Equal(t, "bar qux", root.Text())
	assert.Equal(t, "qux", i["baz"].Text())
	assert.Equal(t, Point{Line: 1, Col: 5}, i["qux"].StartPoint())
}

func TestLeafNavigation(t *testing.T) {
	assert.Nil(t, FirstLeaf(nil))
	assert.Nil(t, LastLeaf(nil))

	root, i := buildTree(t, "(1st) (2nd (nested foo bar)) (3rd baz)")
	assert.Equal(t, i["foo"], FirstLeaf(root))
	assert.Nil(t, FirstLeaf(i["1st"]))
	assert.Equal(t, i["foo"], FirstLeaf(i["2nd"]))
	assert.Equal(t, i["baz"], LastLeaf(root))
	assert.Equal(t, i["bar"], LastLeaf(i["nested"]))
	assert.Equal(t, i["bar"], LastLeaf(i["bar"]))

	assert.Nil(t, NextLeaf(root))
	assert.Equal(t, i["foo"], NextLeaf(i["1st"]))
	assert.Equal(t, i["baz"], NextLeaf(i["2nd"]))
	assert.Equal(t, i["bar"], NextLeaf(i["foo"]))
	assert.Equal(t, i["baz"], NextLeaf(i["bar"]))
	assert.Nil(t, NextLeaf(i["baz"]))

	assert.Nil(t, PrevLeaf(root))
	assert.Nil(t, PrevLeaf(i["1st"]))
	assert.Equal(t, i["bar"], PrevLeaf(i["3rd"]))
	assert.Equal(t, i["foo"], PrevLeaf(i["bar"]))
	assert.Nil(t, PrevLeaf(i["foo"]))

	assert.Equal(t, "foo bar baz", serialize(Leaves(root)...))
}

func TestChildren(t *testing.T) {
	root, i := buildTree(t, "(foo) (bar baz (qux (x)))")

	assert.Equal(t, "(foo) (bar)", serialize(root.Children()...))
	assert.Empty(t, i["foo"].Children())
	assert.Equal(t, "baz (qux)", serialize(i["bar"].Children()...))
	assert.Equal(t, "(qux)", serialize(i["bar"].NamedChildren()...))
	assert.Equal(t, 2, i["bar"].ChildCount())
}

func TestLevels(t *testing.T) {
	root, i := buildTree(t, "(foo (f1 (f11 f111 f112)) f2) (bar b1) (baz)")

	assert.Equal(t, 0, NodeLevel(root))
	assert.Equal(t, 4, NodeLevel(i["f111"]))
	assert.Equal(t, i["foo"], Ancestor(i["f11"], 1))
	assert.Nil(t, Ancestor(root, 0))

	assert.Equal(t, 0, SiblingIndex(i["foo"]))
	assert.Equal(t, 2, SiblingIndex(i["baz"]))
	assert.Equal(t, 1, SiblingIndex(i["f112"]))

	assert.Equal(t, 3, NumOfChildren(root, 0))
	assert.Equal(t, 6, NumOfChildren(root, 1))
	assert.Equal(t, 9, NumOfChildren(root, AllLevels))
	assert.Equal(t, 0, NumOfChildren(nil, AllLevels))
}

func TestCloneIsIndependent(t *testing.T) {
	root, i := buildTree(t, "(1st a) (2nd b (3rd c))")
	tr := New(root, i["a"].Source(), nil)
	before := tr.String()

	cp := tr.Clone()
	assert.Equal(t, before, cp.String())
	assert.Same(t, tr.Source(), cp.Source())
	assert.NotSame(t, tr.Root(), cp.Root())

	second := cp.Root().LastChild()
	require.Equal(t, "2nd", second.Kind())
	assert.Nil(t, cp.Root().Parent())
	assert.Same(t, cp.Root(), second.Parent())
	assert.Equal(t, i["2nd"].Start(), second.Start())
	assert.Equal(t, i["2nd"].End(), second.End())

	Detach(second.LastChild())
	Replace(cp.Root().FirstChild(), NewNode("new", "new", NamedNode, nil, 0, 0))
	assert.NotEqual(t, before, cp.String())
	assert.Equal(t, before, tr.String())
	assert.Same(t, i["3rd"], i["2nd"].LastChild())
	assert.Same(t, i["1st"], root.FirstChild())

	assert.Nil(t, (*Node)(nil).Clone())
}

func TestDetach(t *testing.T) {
	Detach(nil)

	root, i := buildTree(t, "(1st) (2nd) (3rd) (4th)")
	first, second, third, fourth := i["1st"], i["2nd"], i["3rd"], i["4th"]

	Detach(root)

	Detach(third)
	assert.Nil(t, third.Parent())
	assert.Nil(t, third.Prev())
	assert.Nil(t, third.Next())
	assert.Equal(t, fourth, second.Next())
	assert.Equal(t, second, fourth.Prev())

	Detach(first)
	assert.Nil(t, first.Parent())
	assert.Nil(t, second.Prev())
	assert.Equal(t, second, root.FirstChild())

	Detach(fourth)
	assert.Nil(t, second.Next())
	assert.Equal(t, second, root.LastChild())

	Detach(second)
	assert.Nil(t, second.Parent())
	assert.Nil(t, root.FirstChild())
	assert.Nil(t, root.LastChild())
}

func TestReplace(t *testing.T) {
	Replace(nil, nil)

	root, i := buildTree(t, "(1st) (2nd) (3rd) (re) (re2)")
	first, second, third, re, re2 := i["1st"], i["2nd"], i["3rd"], i["re"], i["re2"]

	Replace(re2, nil)
	assert.Nil(t, re2.Parent())
	assert.Nil(t, re2.Prev())

	Replace(first, re)
	assert.Nil(t, first.Parent())
	assert.Nil(t, first.Next())
	assert.Equal(t, re, root.FirstChild())
	assert.Equal(t, root, re.Parent())
	assert.Equal(t, second, re.Next())
	assert.Nil(t, third.Next())

	Replace(re, first)
	Replace(second, re)
	assert.Nil(t, second.Parent())
	assert.Equal(t, first, re.Prev())
	assert.Equal(t, third, re.Next())
	assert.Equal(t, re, first.Next())
	assert.Equal(t, re, third.Prev())

	Replace(re, second)
	Replace(third, re)
	assert.Nil(t, third.Parent())
	assert.Equal(t, second, re.Prev())
	assert.Nil(t, re.Next())
	assert.Equal(t, re, root.LastChild())
}

func TestAppendSibling(t *testing.T) {
	AppendSibling(nil, nil)

	root, i := buildTree(t, "(1st) (2nd)")
	first, second := i["1st"], i["2nd"]
	re := NewNode("re", "re", NamedNode, nil, 0, 0)

	AppendSibling(nil, first)
	assert.Equal(t, root, first.Parent())

	AppendSibling(first, nil)
	assert.Equal(t, second, first.Next())

	AppendSibling(first, re)
	assert.Equal(t, root, re.Parent())
	assert.Equal(t, first, re.Prev())
	assert.Equal(t, second, re.Next())
	assert.Equal(t, re, second.Prev())

	AppendSibling(second, re)
	assert.Equal(t, second, first.Next())
	assert.Equal(t, re, second.Next())
	assert.Nil(t, re.Next())
	assert.Equal(t, re, root.LastChild())
}

func TestPrependSibling(t *testing.T) {
	PrependSibling(nil, nil)

	root, i := buildTree(t, "(1st) (2nd)")
	first, second := i["1st"], i["2nd"]
	re := NewNode("re", "re", NamedNode, nil, 0, 0)

	PrependSibling(first, re)
	assert.Equal(t, root, re.Parent())
	assert.Nil(t, re.Prev())
	assert.Equal(t, first, re.Next())
	assert.Equal(t, re, root.FirstChild())

	PrependSibling(second, re)
	assert.Equal(t, first, root.FirstChild())
	assert.Equal(t, re, first.Next())
	assert.Equal(t, re, second.Prev())
	assert.Equal(t, second, re.Next())
}

func TestAppendChild(t *testing.T) {
	root := NewNode("root", "root", NamedNode, nil, 0, 0)
	other := NewNode("other", "other", NamedNode, nil, 0, 0)
	re := NewNode("re", "re", NamedNode, nil, 0, 0)
	re2 := NewNode("re2", "re2", NamedNode, nil, 0, 0)

	root.AppendChild(nil)
	assert.Nil(t, root.FirstChild())

	root.AppendChild(re)
	root.AppendChild(re2)
	assert.Equal(t, re, root.FirstChild())
	assert.Equal(t, re2, re.Next())
	assert.Equal(t, re, re2.Prev())

	other.AppendChild(re)
	assert.Equal(t, other, re.Parent())
	assert.Equal(t, re2, root.FirstChild())
	assert.Nil(t, re2.Prev())
}

func TestWalkSkipChildren(t *testing.T) {
	root, _ := buildTree(t, "(foo (f1 (f11 f111)) f2) (bar b1) (baz)")
	var nodes []*Node
	f := func(n *Node) (bool, bool) {
		nodes = append(nodes, n)
		return NodeLevel(n) < 2, true
	}

	Walk(root, WalkLtr, f)
	assert.Equal(t, "(root) (foo) (f1) f2 (bar) b1 (baz)", serialize(nodes...))

	nodes = nodes[:0]
	Walk(root, WalkRtl, f)
	assert.Equal(t, "(root) (baz) (bar) b1 (foo) f2 (f1)", serialize(nodes...))
}

func TestWalkSkipSiblings(t *testing.T) {
	root, _ := buildTree(t, "(foo f0 (f1 (f11 f111)) f2) (bar b1) (baz)")
	var nodes []*Node
	f := func(n *Node) (bool, bool) {
		nodes = append(nodes, n)
		return true, n.Kind() != "f1"
	}

	Walk(root, WalkLtr, f)
	assert.Equal(t, "(root) (foo) f0 (f1) (f11) f111 (bar) b1 (baz)", serialize(nodes...))

	nodes = nodes[:0]
	Walk(root, WalkRtl, f)
	assert.Equal(t, "(root) (baz) (bar) b1 (foo) f2 (f1) (f11) f111", serialize(nodes...))
}

func TestSelectorApply(t *testing.T) {
	_, i := buildTree(t, "(foo) bar")
	got := NewSelector().Apply(nil, i["foo"], nil, i["bar"], i["foo"])
	assert.Equal(t, "(foo) bar", serialize(got...))
}

func TestSelectorChain(t *testing.T) {
	children := func(n *Node) []*Node {
		return n.Children()
	}

	root, _ := buildTree(t, "(foo (x)) (bar baz (qux (y)))")
	nodes := root.Children()

	s := NewSelector().Extract(children)
	first := s.Apply(nodes...)
	assert.Equal(t, "(x) baz (qux)", serialize(first...))
	assert.Equal(t, "(y)", serialize(s.Apply(first...)...))
	assert.Equal(t, "(y)", serialize(NewSelector().Extract(children).Use(children).Apply(nodes...)...))
}

func TestSelectorFilter(t *testing.T) {
	root, _ := buildTree(t, "(foo) (bar baz) (qux (x) (y z)) (a b)")
	single := func(n *Node) bool {
		return NumOfChildren(n, 0) == 1
	}

	got := NewSelector().Filter(single).Apply(root.Children()...)
	assert.Equal(t, "(bar) (a)", serialize(got...))
}

func TestSelectorSearch(t *testing.T) {
	root, _ := buildTree(t, "(foo) (bar baz) (qux (x y)) (a b (c d))")
	single := func(n *Node) bool {
		return NumOfChildren(n, 0) == 1
	}
	nodes := root.Children()

	assert.Equal(t, "(bar) (qux) (c)", serialize(NewSelector().Search(single, false).Apply(nodes...)...))
	assert.Equal(t, "(bar) (qux) (x) (c)", serialize(NewSelector().Search(single, true).Apply(nodes...)...))
}

func TestFilters(t *testing.T) {
	_, i := buildTree(t, "(foo bar) (qux (x))")
	parent := func(n *Node) bool {
		return n.FirstChild() != nil
	}

	assert.True(t, IsNot(parent)(i["bar"]))
	assert.False(t, IsNot(parent)(i["foo"]))

	anyOf := IsAny(IsA("x"), IsText("bar"))
	assert.True(t, anyOf(i["x"]))
	assert.True(t, anyOf(i["bar"]))
	assert.False(t, anyOf(i["qux"]))

	allOf := IsAll(parent, IsA("foo", "x"))
	assert.True(t, allOf(i["foo"]))
	assert.False(t, allOf(i["x"]))
	assert.False(t, allOf(i["qux"]))

	assert.False(t, IsText("foo")(i["foo"]), "only leaves have text to match")
	assert.True(t, IsNamed(i["qux"]))
	assert.False(t, IsNamed(i["bar"]))

	i["x"].SetField("body")
	assert.True(t, HasField("name", "body")(i["x"]))
	assert.False(t, HasField("name")(i["x"]))
}

func TestExtractors(t *testing.T) {
	root, i := buildTree(t, "(foo (bar (baz (qux))))")
	ancestors := Ancestors(1, 2, 0)
	assert.Equal(t, "(root)", serialize(ancestors(i["foo"])...))
	assert.Equal(t, "(foo) (root) (bar)", serialize(ancestors(i["baz"])...))
	assert.Equal(t, "(bar) (foo) (baz)", serialize(ancestors(i["qux"])...))

	parent := Ancestors(0)
	self := func(n *Node) []*Node {
		return []*Node{n}
	}
	none := func(n *Node) []*Node {
		return nil
	}
	assert.Equal(t, "(foo)", serialize(Any(parent, self)(i["bar"])...))
	assert.Equal(t, "(bar)", serialize(Any(none, self)(i["bar"])...))
	assert.Empty(t, Any(parent, none)(root))
	assert.Equal(t, "(foo) (bar)", serialize(All(parent, self)(i["bar"])...))
}

func TestNthChildren(t *testing.T) {
	root, i := buildTree(t, "(foo bar baz) (a b) (x)")
	f := NthChildren(1, 2, 0, -1, -2)

	assert.Equal(t, "(a) (x) (foo) (x) (a)", serialize(f(root)...))
	assert.Equal(t, "baz bar baz bar", serialize(f(i["foo"])...))
	assert.Equal(t, "b b", serialize(f(i["a"])...))
	assert.Empty(t, f(i["x"]))
}

func TestNthSiblings(t *testing.T) {
	_, i := buildTree(t, "(foo bar baz qux) (a b c) (x y) (z)")
	f := NthSiblings(1, 2, 0, -2, -1)

	assert.Equal(t, "(a) (x) (foo)", serialize(f(i["foo"])...))
	assert.Equal(t, "baz qux bar", serialize(f(i["bar"])...))
	assert.Equal(t, "qux bar baz", serialize(f(i["qux"])...))
	assert.Equal(t, "(x) (z) (a) (foo)", serialize(f(i["a"])...))
	assert.Equal(t, "(z) (a) (x)", serialize(f(i["z"])...))
}

func TestFields(t *testing.T) {
	_, i := buildTree(t, "(call f (args a b) c)")
	i["f"].SetField("function")
	i["args"].SetField("arguments")
	i["c"].SetField("arguments")

	call := i["call"]
	assert.Equal(t, i["f"], call.ChildByFieldName("function"))
	assert.Nil(t, call.ChildByFieldName("body"))
	assert.Equal(t, "(args) c", serialize(call.ChildrenByFieldName("arguments")...))
	assert.Equal(t, []string{"function", "arguments"}, call.FieldNames())
	assert.Equal(t, "f (args) c", serialize(Fields("function", "arguments")(call)...))
}

func TestString(t *testing.T) {
	src := source.New("expr", []byte("a + 1"))
	bin := NewNode("binary", "binary", NamedNode, src, 0, 5)

	left := NewNode("name", "name", NamedNode|LeafNode, src, 0, 1)
	left.SetField("left")
	op := NewNode("+", "+", LeafNode, src, 2, 3)
	op.SetField("operator")
	comment := NewNode("comment", "comment", NamedNode|LeafNode|ExtraNode, src, 3, 3)
	right := NewNode("name", "number", NamedNode|LeafNode, src, 4, 5)
	right.Alias("integer", true)
	right.SetField("right")

	for _, n := range []*Node{left, op, comment, right, NewPlaceholder("type", src, 5)} {
		bin.AppendChild(n)
	}

	assert.Equal(t, "(binary left: (name) (comment) right: (integer) type: ())", bin.String())
	assert.Equal(t, "number", right.Rule())
	assert.Equal(t, "+", bin.ChildByFieldName("operator").Text())
	assert.True(t, bin.ChildByFieldName("type").IsPlaceholder())
	assert.False(t, bin.HasError())
}
