package tree

import (
	"github.com/ava12/cstx/grammar"
)

// Normalize adds placeholders for fields declared by node kind but absent in node,
// so that every node of a kind exposes the same field set.
// Placeholders are appended at the end of node. Error, leaf, and anonymous nodes are not changed.
func Normalize(root *Node, t *grammar.Table) {
	Walk(root, WalkLtr, func(n *Node) (bool, bool) {
		if n.IsLeaf() || n.IsPlaceholder() {
			return false, true
		}
		if n.IsError() || !n.IsNamed() {
			return true, true
		}

		for _, f := range t.FieldNames(n.Kind()) {
			if n.ChildByFieldName(f) == nil {
				n.AppendChild(NewPlaceholder(f, n.src, n.end))
			}
		}
		return true, true
	})
}

// IsKindOf matches nodes of given kinds, a supertype name matches every kind of that supertype.
func IsKindOf(t *grammar.Table, kinds ...string) NodeFilter {
	return func(n *Node) bool {
		k := n.Kind()
		for _, kind := range kinds {
			if k == kind {
				return true
			}
			for _, st := range t.SupertypesOf(k) {
				if st == kind {
					return true
				}
			}
		}
		return false
	}
}
