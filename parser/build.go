package parser

import (
	"github.com/ava12/cstx/grammar"
	"github.com/ava12/cstx/lexer"
	"github.com/ava12/cstx/tree"
)

// buildTree turns the best derivation into syntax tree.
// Root node always spans the whole source; input not covered by start rule goes to the trailing error node.
func (pc *parseContext) buildTree() *tree.Node {
	if !pc.accepted {
		pc.finish()
	}

	t := pc.p.table
	name := t.Nonterms[pc.p.start].Name
	root := tree.NewNode(name, name, tree.NamedNode, pc.src, 0, pc.src.Len())

	d, next := pc.rootDerivation()
	if d != nil {
		appendNodes(root, pc.childNodes(d))
	}

	eof := len(pc.tokens) - 1
	if next < eof {
		appendNodes(root, pc.skipNodes(next, eof))
	}
	appendNodes(root, pc.extraNodes(pc.tokens[eof]))

	placePlaceholders(root)
	return root
}

func appendNodes(parent *tree.Node, ns []*tree.Node) {
	for _, n := range ns {
		parent.AppendChild(n)
	}
}

// nodes returns nodes produced by derivation in parent node.
func (pc *parseContext) nodes(d *deriv) []*tree.Node {
	switch d.kind {
	case tokenDeriv:
		return pc.tokenNodes(pc.tokens[d.from])
	case skipDeriv:
		return pc.skipNodes(d.from, d.to)
	case placeholderDeriv:
		return nil
	}

	children := pc.childNodes(d)
	nt := pc.p.table.Nonterms[pc.p.prods[d.prod].Nonterm]
	if !nt.Visible() {
		return children
	}
	return pc.wrap(nt.Name, nt.Name, tree.NamedNode, d.from, children)
}

func (pc *parseContext) childNodes(d *deriv) []*tree.Node {
	var res []*tree.Node
	steps := pc.p.prods[d.prod].Steps
	for l := d.children; l != nil; l = l.next {
		if l.step < 0 {
			res = append(res, pc.nodes(l.d)...)
			continue
		}

		s := steps[l.step]
		if l.d.kind == placeholderDeriv {
			res = append(res, tree.NewPlaceholder(s.Field, pc.src, pc.tokens[l.d.from].Start))
			continue
		}
		res = append(res, pc.stepNodes(s, l.d)...)
	}
	return res
}

// stepNodes applies step alias and field to nodes of derivation.
func (pc *parseContext) stepNodes(s grammar.Step, d *deriv) []*tree.Node {
	ns := pc.nodes(d)
	if s.Alias != "" {
		ns = pc.alias(s, d, ns)
	}
	if s.Field != "" {
		for _, n := range ns {
			if n.Field() == "" && !n.IsExtra() && !n.IsError() {
				n.SetField(s.Field)
			}
		}
	}
	return ns
}

func (pc *parseContext) alias(s grammar.Step, d *deriv, ns []*tree.Node) []*tree.Node {
	if d.kind == tokenDeriv || pc.p.table.Nonterms[s.Index].Visible() {
		for _, n := range ns {
			if !n.IsExtra() {
				n.Alias(s.Alias, s.AliasNamed)
			}
		}
		return ns
	}

	var flags tree.NodeFlags
	if s.AliasNamed {
		flags = tree.NamedNode
	}
	return pc.wrap(s.Alias, pc.p.table.Nonterms[s.Index].Name, flags, d.from, ns)
}

// wrap creates node holding children, leading extras are hoisted before it.
func (pc *parseContext) wrap(kind, rule string, flags tree.NodeFlags, from int, children []*tree.Node) []*tree.Node {
	i := 0
	for i < len(children) && children[i].IsExtra() {
		i++
	}
	res := append([]*tree.Node(nil), children[:i]...)
	children = children[i:]

	pos := pc.tokens[from].Start
	n := tree.NewNode(kind, rule, flags, pc.src, pos, pos)
	start, end := -1, pos
	for _, c := range children {
		if !c.IsPlaceholder() {
			if start < 0 {
				start = c.Start()
			}
			end = c.End()
		}
		n.AppendChild(c)
	}
	if start >= 0 {
		n.SetSpan(start, end)
	}
	placePlaceholders(n)

	return append(res, n)
}

// placePlaceholders moves placeholder children to the end of preceding sibling or to the node start.
func placePlaceholders(n *tree.Node) {
	pos := n.Start()
	for c := n.FirstChild(); c != nil; c = c.Next() {
		if c.IsPlaceholder() {
			c.SetSpan(pos, pos)
		} else {
			pos = c.End()
		}
	}
}

func (pc *parseContext) extraNodes(tok lexer.Token) []*tree.Node {
	var res []*tree.Node
	for _, x := range tok.Extras {
		term := pc.p.table.Terms[x.Term]
		if term.Is(grammar.NamedTerm) {
			res = append(res, tree.NewNode(term.Name, term.Name, tree.NamedNode|tree.LeafNode|tree.ExtraNode, pc.src, x.Start, x.End))
		}
	}
	return res
}

func (pc *parseContext) tokenNodes(tok lexer.Token) []*tree.Node {
	res := pc.extraNodes(tok)
	if tok.Term == lexer.ErrorTerm {
		return append(res, tree.NewError(pc.src, tok.Start, tok.End, true))
	}

	term := pc.p.table.Terms[tok.Term]
	flags := tree.LeafNode
	if term.Is(grammar.NamedTerm) {
		flags |= tree.NamedNode
	}
	return append(res, tree.NewNode(term.Name, term.Name, flags, pc.src, tok.Start, tok.End))
}

// skipNodes returns error node holding tokens [from, to).
func (pc *parseContext) skipNodes(from, to int) []*tree.Node {
	var children []*tree.Node
	for i := from; i < to; i++ {
		children = append(children, pc.tokenNodes(pc.tokens[i])...)
	}

	return pc.wrap(tree.ErrorKind, tree.ErrorKind, tree.NamedNode|tree.ErrorNode, from, children)
}
