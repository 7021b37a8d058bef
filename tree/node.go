package tree

import (
	"strings"

	"github.com/ava12/cstx/source"
)

// NodeFlags describe node properties.
type NodeFlags int

const (
	NamedNode       NodeFlags = 1 << iota // named kind (rule or named alias), not a literal
	LeafNode                              // produced by a single token
	ExtraNode                             // extra token (comment) that may appear anywhere
	ErrorNode                             // skipped input or unrecognized character
	PlaceholderNode                       // zero-width node standing for absent field
)

// Point is 1-based line and column (in runes) of a position.
type Point struct {
	Line, Col int
}

// Node is a concrete syntax tree node.
// Nodes are linked to their parent and siblings; a finished tree is read-only and safe for concurrent reads.
type Node struct {
	kind, rule, field string
	flags             NodeFlags
	start, end        int
	src               *source.Source

	parent                *Node
	prev, next            *Node
	firstChild, lastChild *Node
}

// NewNode creates detached node spanning source bytes [start, end).
func NewNode(kind, rule string, flags NodeFlags, src *source.Source, start, end int) *Node {
	return &Node{kind: kind, rule: rule, flags: flags, src: src, start: start, end: end}
}

// NewPlaceholder creates zero-width placeholder node bound to field.
func NewPlaceholder(field string, src *source.Source, pos int) *Node {
	return &Node{kind: field, field: field, flags: PlaceholderNode, src: src, start: pos, end: pos}
}

// Kind returns public node kind: alias, rule name, or literal text.
func (n *Node) Kind() string {
	return n.kind
}

// Rule returns grammar rule (or term) that produced node, aliases are not applied.
func (n *Node) Rule() string {
	return n.rule
}

// Field returns name of the field node is bound to in its parent, or empty string.
func (n *Node) Field() string {
	return n.field
}

func (n *Node) SetField(name string) {
	n.field = name
}

// Alias changes public kind of node.
func (n *Node) Alias(kind string, named bool) {
	n.kind = kind
	if named {
		n.flags |= NamedNode
	} else {
		n.flags &^= NamedNode
	}
}

func (n *Node) Flags() NodeFlags {
	return n.flags
}

func (n *Node) Is(flags NodeFlags) bool {
	return n.flags&flags == flags
}

func (n *Node) IsNamed() bool {
	return n.Is(NamedNode)
}

func (n *Node) IsLeaf() bool {
	return n.Is(LeafNode)
}

func (n *Node) IsExtra() bool {
	return n.Is(ExtraNode)
}

func (n *Node) IsError() bool {
	return n.Is(ErrorNode)
}

func (n *Node) IsPlaceholder() bool {
	return n.Is(PlaceholderNode)
}

// HasError tells whether node or any of its descendants is an error node.
func (n *Node) HasError() bool {
	if n.IsError() {
		return true
	}
	for c := n.firstChild; c != nil; c = c.next {
		if c.HasError() {
			return true
		}
	}
	return false
}

// Start returns byte offset of node start.
func (n *Node) Start() int {
	return n.start
}

// End returns byte offset right after node end.
func (n *Node) End() int {
	return n.end
}

// SetSpan changes node byte span.
func (n *Node) SetSpan(start, end int) {
	n.start, n.end = start, end
}

func (n *Node) Source() *source.Source {
	return n.src
}

func (n *Node) Text() string {
	if n.src == nil {
		return ""
	}
	return n.src.Text(n.start, n.end)
}

func (n *Node) StartPoint() Point {
	return n.point(n.start)
}

func (n *Node) EndPoint() Point {
	return n.point(n.end)
}

func (n *Node) point(pos int) Point {
	if n.src == nil {
		return Point{}
	}
	line, col := n.src.LineCol(pos)
	return Point{line, col}
}

func (n *Node) SourceName() string {
	if n.src == nil {
		return ""
	}
	return n.src.Name()
}

func (n *Node) Line() int {
	return n.StartPoint().Line
}

func (n *Node) Col() int {
	return n.StartPoint().Col
}

func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) Prev() *Node {
	return n.prev
}

func (n *Node) Next() *Node {
	return n.next
}

func (n *Node) FirstChild() *Node {
	return n.firstChild
}

func (n *Node) LastChild() *Node {
	return n.lastChild
}

// AppendChild detaches c and appends it to children of n.
func (n *Node) AppendChild(c *Node) {
	if c == nil {
		return
	}

	Detach(c)
	c.parent = n
	if n.lastChild == nil {
		n.firstChild = c
	} else {
		n.lastChild.next = c
		c.prev = n.lastChild
	}
	n.lastChild = c
}

// Clone returns detached deep copy of subtree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}

	res := &Node{kind: n.kind, rule: n.rule, field: n.field, flags: n.flags, start: n.start, end: n.end, src: n.src}
	for c := n.firstChild; c != nil; c = c.next {
		res.AppendChild(c.Clone())
	}
	return res
}

// Children returns all children including anonymous ones, extras and placeholders.
func (n *Node) Children() []*Node {
	var res []*Node
	for c := n.firstChild; c != nil; c = c.next {
		res = append(res, c)
	}
	return res
}

func (n *Node) ChildCount() int {
	i := 0
	for c := n.firstChild; c != nil; c = c.next {
		i++
	}
	return i
}

// NamedChildren returns named children, extras included.
func (n *Node) NamedChildren() []*Node {
	var res []*Node
	for c := n.firstChild; c != nil; c = c.next {
		if c.IsNamed() {
			res = append(res, c)
		}
	}
	return res
}

// ChildByFieldName returns the first child bound to field or nil.
// Placeholder is returned for absent field declared by node kind.
func (n *Node) ChildByFieldName(name string) *Node {
	for c := n.firstChild; c != nil; c = c.next {
		if c.field == name {
			return c
		}
	}
	return nil
}

// ChildrenByFieldName returns all children bound to field.
func (n *Node) ChildrenByFieldName(name string) []*Node {
	var res []*Node
	for c := n.firstChild; c != nil; c = c.next {
		if c.field == name {
			res = append(res, c)
		}
	}
	return res
}

// FieldNames returns distinct field names of children in order of appearance.
func (n *Node) FieldNames() []string {
	var res []string
	seen := make(map[string]bool)
	for c := n.firstChild; c != nil; c = c.next {
		if c.field != "" && !seen[c.field] {
			seen[c.field] = true
			res = append(res, c.field)
		}
	}
	return res
}

// String returns S-expression of named nodes: "(kind field: (kind) ...)".
// Placeholders are written as "field: ()", anonymous nodes are omitted.
func (n *Node) String() string {
	sb := &strings.Builder{}
	n.writeSexp(sb)
	return sb.String()
}

func (n *Node) writeSexp(sb *strings.Builder) {
	if n.IsPlaceholder() {
		sb.WriteString("()")
		return
	}

	sb.WriteString("(")
	sb.WriteString(n.kind)
	for c := n.firstChild; c != nil; c = c.next {
		if !c.IsNamed() && !c.IsPlaceholder() {
			continue
		}

		sb.WriteString(" ")
		if c.field != "" {
			sb.WriteString(c.field + ": ")
		}
		c.writeSexp(sb)
	}
	sb.WriteString(")")
}
