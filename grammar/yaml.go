package grammar

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func intNode(value int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(value)}
}

func mappingNode(pairs ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Content: pairs}
}

func stringsNode(list []string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, s := range list {
		n.Content = append(n.Content, scalarNode(s))
	}
	return n
}

func exprNode(e *Expr) *yaml.Node {
	n := mappingNode(scalarNode("type"), scalarNode(string(e.Type)))
	add := func(key string, value *yaml.Node) {
		n.Content = append(n.Content, scalarNode(key), value)
	}

	switch e.Type {
	case StringExpr, PatternExpr:
		add("value", scalarNode(e.Value))
	case SymbolExpr, FieldExpr:
		add("name", scalarNode(e.Value))
	case AliasExpr:
		add("value", scalarNode(e.Value))
		add("named", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(e.Named)})
	case PrecExpr, PrecLeftExpr, PrecRightExpr, PrecDynamicExpr:
		add("value", intNode(e.Prec))
	case SeqExpr, ChoiceExpr:
		members := &yaml.Node{Kind: yaml.SequenceNode}
		for _, m := range e.Members {
			members.Content = append(members.Content, exprNode(m))
		}
		add("members", members)
	}
	if e.Content != nil {
		add("content", exprNode(e.Content))
	}
	return n
}

// MarshalYAML encodes expression using the same layout as JSON encoding.
func (e *Expr) MarshalYAML() (any, error) {
	return exprNode(e), nil
}

// UnmarshalYAML decodes expression encoded by MarshalYAML.
func (e *Expr) UnmarshalYAML(n *yaml.Node) error {
	res, err := exprFromYAML(n)
	if err == nil {
		*e = *res
	}
	return err
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func exprFromYAML(n *yaml.Node) (*Expr, error) {
	if n.Kind != yaml.MappingNode {
		return nil, malformedDocumentError("YAML", "expression must be a mapping at line "+strconv.Itoa(n.Line))
	}

	tn := mappingValue(n, "type")
	if tn == nil {
		return nil, malformedDocumentError("YAML", "expression type is missing at line "+strconv.Itoa(n.Line))
	}
	t := ExprType(tn.Value)
	e := &Expr{Type: t}
	str := func(key string) (string, error) {
		v := mappingValue(n, key)
		if v == nil || v.Kind != yaml.ScalarNode {
			return "", malformedExprError(t, key+" must be a scalar")
		}
		return v.Value, nil
	}
	content := func() (*Expr, error) {
		v := mappingValue(n, "content")
		if v == nil {
			return nil, malformedExprError(t, "content is missing")
		}
		return exprFromYAML(v)
	}

	var err error
	switch t {
	case BlankExpr:
	case StringExpr, PatternExpr:
		e.Value, err = str("value")
	case SymbolExpr:
		e.Value, err = str("name")
	case SeqExpr, ChoiceExpr:
		members := mappingValue(n, "members")
		if members == nil || members.Kind != yaml.SequenceNode {
			return nil, malformedExprError(t, "members must be a sequence")
		}
		for _, m := range members.Content {
			me, err := exprFromYAML(m)
			if err != nil {
				return nil, err
			}
			e.Members = append(e.Members, me)
		}
	case RepeatExpr, Repeat1Expr, TokenExpr, ImmediateTokenExpr:
		e.Content, err = content()
	case PrecExpr, PrecLeftExpr, PrecRightExpr, PrecDynamicExpr:
		var v string
		v, err = str("value")
		if err == nil {
			e.Prec, err = strconv.Atoi(v)
			if err != nil {
				return nil, malformedExprError(t, "value must be an integer")
			}
			e.Content, err = content()
		}
	case FieldExpr:
		e.Value, err = str("name")
		if err == nil {
			e.Content, err = content()
		}
	case AliasExpr:
		e.Value, err = str("value")
		if named := mappingValue(n, "named"); named != nil {
			e.Named = named.Value == "true"
		}
		if err == nil {
			e.Content, err = content()
		}
	default:
		return nil, unknownExprTypeError(string(t))
	}

	if err != nil {
		return nil, err
	}
	return e, nil
}

// MarshalYAML encodes grammar preserving rule order.
func (g *Grammar) MarshalYAML() (any, error) {
	rules := mappingNode()
	for _, r := range g.Rules {
		rules.Content = append(rules.Content, scalarNode(r.Name), exprNode(r.Body))
	}
	conflicts := &yaml.Node{Kind: yaml.SequenceNode}
	for _, c := range g.Conflicts {
		conflicts.Content = append(conflicts.Content, stringsNode(c))
	}

	doc := mappingNode(scalarNode("name"), scalarNode(g.Name))
	if g.Word != "" {
		doc.Content = append(doc.Content, scalarNode("word"), scalarNode(g.Word))
	}
	doc.Content = append(doc.Content, scalarNode("rules"), rules)
	if g.Extras != nil {
		extras := &yaml.Node{Kind: yaml.SequenceNode}
		for _, x := range g.Extras {
			extras.Content = append(extras.Content, exprNode(x))
		}
		doc.Content = append(doc.Content, scalarNode("extras"), extras)
	}
	doc.Content = append(doc.Content,
		scalarNode("conflicts"), conflicts,
		scalarNode("externals"), stringsNode(g.Externals),
		scalarNode("inline"), stringsNode(g.Inline),
		scalarNode("supertypes"), stringsNode(g.Supertypes),
	)
	return doc, nil
}

// UnmarshalYAML decodes grammar encoded by MarshalYAML.
func (g *Grammar) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return malformedDocumentError("YAML", "document must be a mapping")
	}
	rules := mappingValue(n, "rules")
	if rules == nil || rules.Kind != yaml.MappingNode {
		return malformedDocumentError("YAML", "rules must be a mapping")
	}

	res := Grammar{}
	if v := mappingValue(n, "name"); v != nil {
		res.Name = v.Value
	}
	if v := mappingValue(n, "word"); v != nil {
		res.Word = v.Value
	}
	for i := 0; i+1 < len(rules.Content); i += 2 {
		body, err := exprFromYAML(rules.Content[i+1])
		if err != nil {
			return err
		}
		res.Rules = append(res.Rules, Rule{rules.Content[i].Value, body})
	}

	if v := mappingValue(n, "extras"); v != nil {
		res.Extras = []*Expr{}
		for _, x := range v.Content {
			e, err := exprFromYAML(x)
			if err != nil {
				return err
			}
			res.Extras = append(res.Extras, e)
		}
	}
	if v := mappingValue(n, "conflicts"); v != nil {
		for _, c := range v.Content {
			res.Conflicts = append(res.Conflicts, stringsFromYAML(c))
		}
	}
	res.Externals = stringsFromYAML(mappingValue(n, "externals"))
	res.Inline = stringsFromYAML(mappingValue(n, "inline"))
	res.Supertypes = stringsFromYAML(mappingValue(n, "supertypes"))

	*g = res
	return nil
}

func stringsFromYAML(n *yaml.Node) []string {
	if n == nil {
		return nil
	}
	var res []string
	for _, c := range n.Content {
		res = append(res, c.Value)
	}
	return res
}
