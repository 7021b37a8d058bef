// Package tree defines concrete syntax tree nodes, traversal and selection functions,
// and tree shape normalization.
package tree

import (
	"github.com/ava12/cstx/grammar"
	"github.com/ava12/cstx/source"
)

// Tree is a result of a single parse. It owns its nodes.
// Trees returned by parser are read-only and may be read concurrently,
// Clone gives a copy that can be edited with Detach, Replace and friends.
type Tree struct {
	root  *Node
	src   *source.Source
	table *grammar.Table
}

func New(root *Node, src *source.Source, table *grammar.Table) *Tree {
	return &Tree{root, src, table}
}

// Clone returns a tree with deep copy of all nodes sharing source and table with t.
func (t *Tree) Clone() *Tree {
	return &Tree{t.root.Clone(), t.src, t.table}
}

func (t *Tree) Root() *Node {
	return t.root
}

func (t *Tree) Source() *source.Source {
	return t.src
}

func (t *Tree) Table() *grammar.Table {
	return t.table
}

// String returns S-expression of the root node.
func (t *Tree) String() string {
	return t.root.String()
}

// Leaves returns leaf nodes of the tree in source order.
func (t *Tree) Leaves() []*Node {
	return Leaves(t.root)
}

func Ancestor(n *Node, level int) *Node {
	for n != nil && level >= 0 {
		n = n.parent
		level--
	}
	return n
}

func NodeLevel(n *Node) (l int) {
	if n == nil {
		return
	}

	for p := n.parent; p != nil; p = p.parent {
		l++
	}
	return
}

func SiblingIndex(n *Node) (i int) {
	if n == nil {
		return
	}

	for p := n.prev; p != nil; p = p.prev {
		i++
	}
	return
}

// NthChild returns i-th child, negative i counts from the last child (-1).
func NthChild(n *Node, i int) *Node {
	if n == nil {
		return nil
	}

	var c *Node
	if i >= 0 {
		c = n.firstChild
		for c != nil && i > 0 {
			c = c.next
			i--
		}
	} else {
		i++
		c = n.lastChild
		for c != nil && i < 0 {
			c = c.prev
			i++
		}
	}

	return c
}

func NthSibling(n *Node, i int) *Node {
	if i < 0 {
		for n != nil && i < 0 {
			n = n.prev
			i++
		}
	} else {
		for n != nil && i > 0 {
			n = n.next
			i--
		}
	}
	return n
}

const AllLevels = -1

func NumOfChildren(parent *Node, levels int) int {
	if parent == nil {
		return 0
	}

	i := 0
	for c := parent.firstChild; c != nil; c = c.next {
		i++
		if levels != 0 {
			i += NumOfChildren(c, levels-1)
		}
	}
	return i
}

// FirstLeaf returns the first leaf of subtree, n itself if it is a leaf.
// Placeholders and empty nodes are not leaves.
func FirstLeaf(n *Node) *Node {
	if n == nil || n.IsLeaf() {
		return n
	}

	for c := n.firstChild; c != nil; c = c.next {
		if l := FirstLeaf(c); l != nil {
			return l
		}
	}
	return nil
}

func LastLeaf(n *Node) *Node {
	if n == nil || n.IsLeaf() {
		return n
	}

	for c := n.lastChild; c != nil; c = c.prev {
		if l := LastLeaf(c); l != nil {
			return l
		}
	}
	return nil
}

func NextLeaf(n *Node) *Node {
	for n != nil {
		for nn := n.next; nn != nil; nn = nn.next {
			if l := FirstLeaf(nn); l != nil {
				return l
			}
		}
		n = n.parent
	}
	return nil
}

func PrevLeaf(n *Node) *Node {
	for n != nil {
		for nn := n.prev; nn != nil; nn = nn.prev {
			if l := LastLeaf(nn); l != nil {
				return l
			}
		}
		n = n.parent
	}
	return nil
}

// Leaves returns leaves of subtree in source order.
func Leaves(n *Node) []*Node {
	var res []*Node
	Walk(n, WalkLtr, func(nn *Node) (bool, bool) {
		if nn.IsLeaf() {
			res = append(res, nn)
			return false, true
		}
		return true, true
	})
	return res
}

// Detach unlinks n from its parent and siblings.
// Node mutators are for trees under construction and for cloned trees, never for parser output.
func Detach(n *Node) {
	if n == nil || n.parent == nil {
		return
	}

	p := n.parent
	if n.prev == nil {
		p.firstChild = n.next
	} else {
		n.prev.next = n.next
	}
	if n.next == nil {
		p.lastChild = n.prev
	} else {
		n.next.prev = n.prev
	}
	n.parent, n.prev, n.next = nil, nil, nil
}

func Replace(old, n *Node) {
	if n == nil || old == nil {
		Detach(old)
		return
	}

	pa := old.parent
	pr := old.prev
	ne := old.next
	Detach(old)
	Detach(n)
	if pr != nil {
		AppendSibling(pr, n)
	} else if ne != nil {
		PrependSibling(ne, n)
	} else if pa != nil {
		pa.AppendChild(n)
	}
}

func AppendSibling(prev, node *Node) {
	if node == nil || prev == nil || prev.parent == nil {
		return
	}

	Detach(node)
	next := prev.next
	node.parent = prev.parent
	node.prev = prev
	node.next = next
	prev.next = node
	if next == nil {
		node.parent.lastChild = node
	} else {
		next.prev = node
	}
}

func PrependSibling(next, node *Node) {
	if node == nil || next == nil || next.parent == nil {
		return
	}

	Detach(node)
	prev := next.prev
	node.parent = next.parent
	node.prev = prev
	node.next = next
	next.prev = node
	if prev == nil {
		node.parent.firstChild = node
	} else {
		prev.next = node
	}
}

type NodeVisitor func(n *Node) (walkChildren, walkSiblings bool)

type WalkMode int

const (
	WalkLtr WalkMode = 0
	WalkRtl WalkMode = 1
)

func Walk(n *Node, mode WalkMode, visitor NodeVisitor) {
	if n != nil {
		visitNode(n, visitor, (mode&WalkRtl) != 0)
	}
}

func visitNode(n *Node, v NodeVisitor, rtl bool) (visitSiblings bool) {
	vc, vs := v(n)
	if vc {
		if rtl {
			for c := n.lastChild; c != nil && vc; c = c.prev {
				vc = visitNode(c, v, true)
			}
		} else {
			for c := n.firstChild; c != nil && vc; c = c.next {
				vc = visitNode(c, v, false)
			}
		}
	}

	return vs
}

type NodeFilter func(n *Node) bool
type NodeExtractor func(n *Node) []*Node

type NodeSelector func(n *Node) []*Node

// Selector applies a chain of node selectors, each one to results of the previous one.
type Selector struct {
	selectors []NodeSelector
}

func NewSelector() *Selector {
	return &Selector{}
}

// Apply returns distinct selected nodes in order of appearance.
func (s *Selector) Apply(input ...*Node) []*Node {
	var res []*Node
	index := make(map[*Node]bool)
	hasTransformers := (len(s.selectors) > 0)

	for i, n := range input {
		if n == nil {
			continue
		}

		var ns []*Node
		if hasTransformers {
			ns = selectNodes(input[i:i+1], s.selectors)
		} else {
			ns = input[i : i+1]
		}

		for _, tn := range ns {
			if !index[tn] {
				index[tn] = true
				res = append(res, tn)
			}
		}
	}

	return res
}

func selectNodes(ns []*Node, nss []NodeSelector) []*Node {
	var res []*Node
	s := nss[0]
	nss = nss[1:]
	goDeeper := (len(nss) > 0)
	for _, n := range ns {
		if goDeeper {
			res = append(res, selectNodes(s(n), nss)...)
		} else {
			res = append(res, s(n)...)
		}
	}
	return res
}

func (s *Selector) Use(ns NodeSelector) *Selector {
	if ns != nil {
		s.selectors = append(s.selectors, ns)
	}
	return s
}

func (s *Selector) Filter(nf NodeFilter) *Selector {
	return s.Use(func(n *Node) []*Node {
		if nf(n) {
			return []*Node{n}
		} else {
			return nil
		}
	})
}

func (s *Selector) Extract(ne NodeExtractor) *Selector {
	return s.Use(func(n *Node) []*Node {
		return ne(n)
	})
}

// Search selects matching nodes of subtree; with deepSearch off descendants of a matching node are skipped.
func (s *Selector) Search(nf NodeFilter, deepSearch bool) *Selector {
	return s.Use(func(n *Node) []*Node {
		var res []*Node
		visitNode(n, func(nn *Node) (vc, vs bool) {
			if nf(nn) {
				res = append(res, nn)
				return deepSearch, true
			} else {
				return true, true
			}
		}, false)
		return res
	})
}

func IsNot(f NodeFilter) NodeFilter {
	return func(n *Node) bool {
		return !f(n)
	}
}

func IsAny(fs ...NodeFilter) NodeFilter {
	return func(n *Node) bool {
		for _, f := range fs {
			if f(n) {
				return true
			}
		}
		return false
	}
}

func IsAll(fs ...NodeFilter) NodeFilter {
	return func(n *Node) bool {
		for _, f := range fs {
			if !f(n) {
				return false
			}
		}
		return true
	}
}

// IsA matches nodes of given kinds.
func IsA(kinds ...string) NodeFilter {
	return func(n *Node) bool {
		k := n.Kind()
		for _, kind := range kinds {
			if k == kind {
				return true
			}
		}

		return false
	}
}

// IsText matches leaves with given text.
func IsText(texts ...string) NodeFilter {
	return func(n *Node) bool {
		if !n.IsLeaf() {
			return false
		}

		t := n.Text()
		for _, text := range texts {
			if text == t {
				return true
			}
		}

		return false
	}
}

func IsNamed(n *Node) bool {
	return n.IsNamed()
}

// HasField matches nodes bound to one of given fields.
func HasField(names ...string) NodeFilter {
	return func(n *Node) bool {
		for _, name := range names {
			if n.field == name {
				return true
			}
		}
		return false
	}
}

func Any(nss ...NodeExtractor) NodeExtractor {
	return func(n *Node) (res []*Node) {
		for _, ns := range nss {
			res = ns(n)
			if len(res) > 0 {
				break
			}
		}
		return
	}
}

func All(nss ...NodeExtractor) NodeExtractor {
	return func(n *Node) (res []*Node) {
		for _, ns := range nss {
			res = append(res, ns(n)...)
		}
		return
	}
}

func Ancestors(levels ...int) NodeExtractor {
	return func(n *Node) []*Node {
		var res []*Node
		for _, i := range levels {
			nn := Ancestor(n, i)
			if nn != nil {
				res = append(res, nn)
			}
		}
		return res
	}
}

func NthChildren(indexes ...int) NodeExtractor {
	return func(n *Node) []*Node {
		var res []*Node
		for _, i := range indexes {
			nn := NthChild(n, i)
			if nn != nil {
				res = append(res, nn)
			}
		}
		return res
	}
}

func NthSiblings(indexes ...int) NodeExtractor {
	return func(n *Node) []*Node {
		var res []*Node
		for _, i := range indexes {
			nn := NthSibling(n, i)
			if nn != nil {
				res = append(res, nn)
			}
		}
		return res
	}
}

// Fields extracts children bound to given fields.
func Fields(names ...string) NodeExtractor {
	return func(n *Node) []*Node {
		var res []*Node
		for _, name := range names {
			res = append(res, n.ChildrenByFieldName(name)...)
		}
		return res
	}
}
