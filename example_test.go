package cstx_test

import (
	"context"
	"fmt"

	g "github.com/ava12/cstx/grammar"
	"github.com/ava12/cstx/langdef"
	"github.com/ava12/cstx/parser"
)

func Example() {
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
	gr.SetExtras(g.Pattern(`\s`)).SetWord("name")

	table, e := langdef.Compile(gr, nil)
	if e != nil {
		fmt.Println(e)
		return
	}
	p, e := parser.New(table, nil, nil)
	if e != nil {
		fmt.Println(e)
		return
	}

	t, e := p.ParseBytes(context.Background(), "example", []byte("let x = 1 + 2 * 3;"))
	if e != nil {
		fmt.Println(e)
		return
	}

	fmt.Println(t)
	stmt := t.Root().FirstChild()
	value := stmt.ChildByFieldName("value")
	fmt.Println(value.ChildByFieldName("right").Text())
	fmt.Println(len(t.Errors()))

	// Output:
	// (program (statement name: (name) value: (binary left: (number) right: (binary left: (number) right: (number)))))
	// 2 * 3
	// 0
}
