package grammar

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/gjson"
)

type exprJSON struct {
	Type    ExprType `json:"type"`
	Name    string   `json:"name,omitempty"`
	Value   any      `json:"value,omitempty"`
	Named   *bool    `json:"named,omitempty"`
	Members []*Expr  `json:"members,omitempty"`
	Content *Expr    `json:"content,omitempty"`
}

// MarshalJSON encodes expression as tree-sitter grammar.json node.
func (e *Expr) MarshalJSON() ([]byte, error) {
	ej := exprJSON{Type: e.Type, Members: e.Members, Content: e.Content}
	switch e.Type {
	case StringExpr, PatternExpr:
		ej.Value = e.Value
	case SymbolExpr, FieldExpr:
		ej.Name = e.Value
	case AliasExpr:
		ej.Value = e.Value
		named := e.Named
		ej.Named = &named
	case PrecExpr, PrecLeftExpr, PrecRightExpr, PrecDynamicExpr:
		ej.Value = e.Prec
	case SeqExpr, ChoiceExpr:
		if ej.Members == nil {
			ej.Members = []*Expr{}
		}
	}
	return json.Marshal(ej)
}

// UnmarshalJSON decodes tree-sitter grammar.json node.
func (e *Expr) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return malformedDocumentError("JSON", "invalid JSON")
	}

	res, err := exprFromJSON(gjson.ParseBytes(data))
	if err == nil {
		*e = *res
	}
	return err
}

func exprFromJSON(v gjson.Result) (*Expr, error) {
	if !v.IsObject() {
		return nil, malformedDocumentError("JSON", "expression must be an object")
	}

	t := ExprType(v.Get("type").String())
	e := &Expr{Type: t}
	var err error
	switch t {
	case BlankExpr:
	case StringExpr, PatternExpr:
		e.Value, err = requireString(t, v, "value")
	case SymbolExpr:
		e.Value, err = requireString(t, v, "name")
	case SeqExpr, ChoiceExpr:
		members := v.Get("members")
		if !members.IsArray() {
			return nil, malformedExprError(t, "members must be an array")
		}
		for _, m := range members.Array() {
			me, err := exprFromJSON(m)
			if err != nil {
				return nil, err
			}
			e.Members = append(e.Members, me)
		}
	case RepeatExpr, Repeat1Expr, TokenExpr, ImmediateTokenExpr:
		e.Content, err = contentFromJSON(t, v)
	case PrecExpr, PrecLeftExpr, PrecRightExpr, PrecDynamicExpr:
		pv := v.Get("value")
		if pv.Type != gjson.Number {
			return nil, malformedExprError(t, "value must be a number")
		}
		e.Prec = int(pv.Int())
		e.Content, err = contentFromJSON(t, v)
	case FieldExpr:
		e.Value, err = requireString(t, v, "name")
		if err == nil {
			e.Content, err = contentFromJSON(t, v)
		}
	case AliasExpr:
		e.Value, err = requireString(t, v, "value")
		e.Named = v.Get("named").Bool()
		if err == nil {
			e.Content, err = contentFromJSON(t, v)
		}
	default:
		return nil, unknownExprTypeError(string(t))
	}

	if err != nil {
		return nil, err
	}
	return e, nil
}

func requireString(t ExprType, v gjson.Result, key string) (string, error) {
	s := v.Get(key)
	if s.Type != gjson.String {
		return "", malformedExprError(t, key+" must be a string")
	}
	return s.String(), nil
}

func contentFromJSON(t ExprType, v gjson.Result) (*Expr, error) {
	c := v.Get("content")
	if !c.Exists() {
		return nil, malformedExprError(t, "content is missing")
	}
	return exprFromJSON(c)
}

// MarshalJSON encodes grammar as tree-sitter grammar.json document preserving rule order.
func (g *Grammar) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteString(`{"name":`)
	writeJSON(buf, g.Name)
	if g.Word != "" {
		buf.WriteString(`,"word":`)
		writeJSON(buf, g.Word)
	}

	buf.WriteString(`,"rules":{`)
	for i, r := range g.Rules {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeJSON(buf, r.Name)
		buf.WriteByte(':')
		if err := writeJSON(buf, r.Body); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')

	if g.Extras != nil {
		buf.WriteString(`,"extras":`)
		if err := writeJSON(buf, g.Extras); err != nil {
			return nil, err
		}
	}

	conflicts := g.Conflicts
	if conflicts == nil {
		conflicts = [][]string{}
	}
	buf.WriteString(`,"conflicts":`)
	writeJSON(buf, conflicts)

	externals := make([]*Expr, len(g.Externals))
	for i, name := range g.Externals {
		externals[i] = Sym(name)
	}
	buf.WriteString(`,"externals":`)
	writeJSON(buf, externals)

	buf.WriteString(`,"inline":`)
	writeJSON(buf, nonNil(g.Inline))
	buf.WriteString(`,"supertypes":`)
	writeJSON(buf, nonNil(g.Supertypes))
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func writeJSON(buf *bytes.Buffer, v any) error {
	data, err := json.Marshal(v)
	if err == nil {
		buf.Write(data)
	}
	return err
}

// UnmarshalJSON decodes tree-sitter grammar.json document. Rule order is preserved.
func (g *Grammar) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return malformedDocumentError("JSON", "invalid JSON")
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return malformedDocumentError("JSON", "document must be an object")
	}
	rules := doc.Get("rules")
	if !rules.IsObject() {
		return malformedDocumentError("JSON", "rules must be an object")
	}

	res := Grammar{Name: doc.Get("name").String(), Word: doc.Get("word").String()}
	var err error
	rules.ForEach(func(key, value gjson.Result) bool {
		var body *Expr
		body, err = exprFromJSON(value)
		if err == nil {
			res.Rules = append(res.Rules, Rule{key.String(), body})
		}
		return err == nil
	})
	if err != nil {
		return err
	}

	extras := doc.Get("extras")
	if extras.Exists() {
		res.Extras = []*Expr{}
	}
	for _, x := range extras.Array() {
		e, err := exprFromJSON(x)
		if err != nil {
			return err
		}
		res.Extras = append(res.Extras, e)
	}

	for _, x := range doc.Get("externals").Array() {
		e, err := exprFromJSON(x)
		if err != nil {
			return err
		}
		if e.Type != SymbolExpr {
			return malformedDocumentError("JSON", "externals must be symbols")
		}
		res.Externals = append(res.Externals, e.Value)
	}

	for _, c := range doc.Get("conflicts").Array() {
		var group []string
		for _, name := range c.Array() {
			group = append(group, name.String())
		}
		res.Conflicts = append(res.Conflicts, group)
	}
	res.Inline = stringsFromJSON(doc.Get("inline"))
	res.Supertypes = stringsFromJSON(doc.Get("supertypes"))

	*g = res
	return nil
}

func stringsFromJSON(v gjson.Result) []string {
	var res []string
	for _, x := range v.Array() {
		if x.IsObject() {
			res = append(res, x.Get("name").String())
		} else {
			res = append(res, x.String())
		}
	}
	return res
}
