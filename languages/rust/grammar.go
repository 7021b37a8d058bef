package rust

import (
	g "github.com/ava12/cstx/grammar"
)

// Operator precedence levels.
const (
	precRange          = 15
	precCall           = 14
	precField          = 13
	precUnary          = 11
	precMultiplicative = 10
	precAdditive       = 9
	precShift          = 8
	precBitAnd         = 7
	precBitXor         = 6
	precBitOr          = 5
	precComparative    = 4
	precAnd            = 3
	precOr             = 2
	precAssign         = 0
	precClosure        = -1
)

var numericTypes = []string{
	"u8", "i8", "u16", "i16", "u32", "i32", "u64", "i64", "u128", "i128", "isize", "usize", "f32", "f64",
}

var primitiveTypes = append(append([]string(nil), numericTypes...), "bool", "str", "char")

// identifierRe approximates XID_Start/XID_Continue with Unicode general categories.
const identifierRe = `(?:r#)?[_\p{L}\p{Nl}][_\p{L}\p{Nl}\p{Mn}\p{Mc}\p{Nd}\p{Pc}]*`

const escapeRe = `(?:[^xu]|u[0-9a-fA-F]{4}|u\{[0-9a-fA-F]+\}|x[0-9a-fA-F]{2})`

func words(list []string) []any {
	res := make([]any, len(list))
	for i, w := range list {
		res[i] = w
	}
	return res
}

func primitive(kind string) *g.Expr {
	return g.Alias(g.Choice(words(primitiveTypes)...), kind)
}

// placeholder is a shorthand for optional field that is always present.
func placeholder(field string, item any) *g.Expr {
	return g.OptionalWithPlaceholder(field, item)
}

// Grammar returns a fresh Rust grammar definition.
func Grammar() *g.Grammar {
	s := g.Sym
	gr := g.New("rust")

	gr.SetExtras(g.Pattern(`\s`), s("line_comment"), s("block_comment"))
	gr.SetExternals(ExternalKinds...)
	gr.SetSupertypes("_type", "_literal", "_literal_pattern", "_declaration_statement", "_pattern")
	gr.SetInline(
		"_path", "_type_identifier", "_tokens", "_field_identifier", "_non_special_token",
		"_declaration_statement", "_reserved_identifier", "_expression_ending_with_block",
	)
	gr.AddConflict("_type", "_pattern").
		AddConflict("unit_type", "tuple_pattern").
		AddConflict("scoped_identifier", "scoped_type_identifier").
		AddConflict("parameter", "_pattern").
		AddConflict("parameters", "tuple_struct_pattern").
		AddConflict("type_parameter", "for_lifetimes").
		AddConflict("type_parameter", "_type").
		AddConflict("range_expression", "return").
		AddConflict("range_expression", "break_expression")
	gr.SetWord("identifier")

	defineStatements(gr, s)
	defineMacros(gr, s)
	defineDeclarations(gr, s)
	defineTypes(gr, s)
	defineExpressions(gr, s)
	definePatterns(gr, s)
	defineLiterals(gr, s)
	return gr
}

func defineStatements(gr *g.Grammar, s func(string) *g.Expr) {
	gr.Define("program", placeholder("statement_list", g.Repeat(s("statement"))))
	gr.Define("statement", g.Choice(s("_expression_statement"), s("_declaration_statement")))
	gr.Define("empty_statement", ";")
	gr.Define("_expression_statement", g.Choice(
		g.Seq(s("expression"), ";"),
		g.Prec(1, s("_expression_ending_with_block")),
	))
	gr.Define("_declaration_statement", g.Choice(
		s("const_item"),
		s("macro_invocation"),
		s("macro_definition"),
		s("empty_statement"),
		s("attribute_item"),
		s("inner_attribute_item"),
		s("mod_item"),
		s("foreign_mod_item"),
		s("struct"),
		s("union_item"),
		s("enum"),
		s("type_item"),
		s("function"),
		s("implementation"),
		s("trait"),
		s("associated_type"),
		g.Alias(s("let_declaration"), "variable_declaration"),
		s("use_declaration"),
		s("extern_crate_declaration"),
		s("static_item"),
	))
}

func tokenTrees(item any) *g.Expr {
	return g.Choice(
		g.Seq("(", g.Repeat(item), ")"),
		g.Seq("[", g.Repeat(item), "]"),
		g.Seq("{", g.Repeat(item), "}"),
	)
}

func tokenRepetition(item any) *g.Expr {
	return g.Seq("$", "(", g.Repeat(item), ")", g.Optional(g.Pattern(`[^+*?]+`)), g.Choice("+", "*", "?"))
}

func defineMacros(gr *g.Grammar, s func(string) *g.Expr) {
	rules := g.Seq(g.Repeat(g.Seq(s("macro_rule"), ";")), g.Optional(s("macro_rule")))
	gr.Define("macro_definition", g.Seq(
		"macro_rules!",
		g.Field("name", g.Choice(s("identifier"), s("_reserved_identifier"))),
		g.Choice(
			g.Seq("(", rules, ")", ";"),
			g.Seq("{", rules, "}"),
		),
	))
	gr.Define("macro_rule", g.Seq(
		g.Field("left", s("token_tree_pattern")),
		"=>",
		g.Field("right", s("token_tree")),
	))
	gr.Define("_token_pattern", g.Choice(
		s("token_tree_pattern"),
		s("token_repetition_pattern"),
		s("token_binding_pattern"),
		s("_non_special_token"),
	))
	gr.Define("token_tree_pattern", tokenTrees(s("_token_pattern")))
	gr.Define("token_binding_pattern", g.Prec(1, g.Seq(
		g.Field("name", s("metavariable")),
		":",
		g.Field("type", s("fragment_specifier")),
	)))
	gr.Define("token_repetition_pattern", tokenRepetition(s("_token_pattern")))
	gr.Define("fragment_specifier", g.Choice(
		"block", "expr", "ident", "item", "lifetime", "literal", "meta", "pat", "path", "stmt", "tt", "ty", "vis",
	))
	gr.Define("_tokens", g.Choice(s("token_tree"), s("token_repetition"), s("_non_special_token")))
	gr.Define("token_tree", tokenTrees(s("_tokens")))
	gr.Define("token_repetition", tokenRepetition(s("_tokens")))

	specials := []any{
		s("_literal"), s("identifier"), s("metavariable"), s("mutable_specifier"), s("self"), s("super"), s("crate"),
		primitive("primitive_type"),
		g.Pattern(`[/_\-=->,;:::!=?.@*&#%^+<>|~]+`),
		"'",
	}
	specials = append(specials, words([]string{
		"as", "async", "await", "break", "const", "continue", "default", "enum", "fn", "for", "if", "impl",
		"let", "loop", "match", "mod", "pub", "return", "static", "struct", "trait", "type",
		"union", "unsafe", "use", "where", "while",
	})...)
	gr.Define("_non_special_token", g.Choice(specials...))
}

func defineDeclarations(gr *g.Grammar, s func(string) *g.Expr) {
	visibility := func() *g.Expr {
		return placeholder("modifier_list", s("visibility_modifier"))
	}
	typeParams := func() *g.Expr {
		return placeholder("type_parameter_list_optional", s("type_parameters"))
	}
	whereClause := func() *g.Expr {
		return placeholder("type_parameter_constraint_list_optional", s("where_clause"))
	}
	body := func() *g.Expr {
		return g.Field("enclosed_body", g.Seq("{", g.Optional(s("declaration_list")), "}"))
	}

	gr.Define("attribute_item", g.Seq("#", "[", s("meta_item"), "]"))
	gr.Define("inner_attribute_item", g.Seq("#", "!", "[", s("meta_item"), "]"))
	gr.Define("meta_item", g.Seq(
		s("_path"),
		g.Optional(g.Choice(
			g.Seq("=", g.Field("value", s("_literal"))),
			g.Field("arguments_with_parens", s("meta_arguments")),
		)),
	))
	gr.Define("meta_arguments", g.Seq(
		"(",
		g.Field("argument_list", g.Seq(
			g.SepBy(",", g.Choice(s("meta_item"), s("_literal"))),
			g.Optional(","),
		)),
		")",
	))

	gr.Define("mod_item", g.Seq(visibility(), "mod", g.Field("name", s("identifier")), g.Choice(";", body())))
	gr.Define("foreign_mod_item", g.Seq(visibility(), s("extern_modifier"), g.Choice(";", body())))
	gr.Define("declaration_list", g.Repeat1(s("_declaration_statement")))

	gr.Define("struct", g.Seq(
		visibility(),
		"struct",
		g.Field("name", s("_type_identifier")),
		typeParams(),
		g.Choice(
			g.Seq(whereClause(), g.Field("enclosed_body", s("field_declaration_list_block"))),
			g.Seq(g.Field("enclosed_body", s("ordered_field_declaration_list_block")), whereClause(), ";"),
			";",
		),
	))
	gr.Define("union_item", g.Seq(
		visibility(),
		"union",
		g.Field("name", s("_type_identifier")),
		typeParams(),
		whereClause(),
		g.Field("enclosed_body", s("field_declaration_list_block")),
	))
	gr.Define("enum", g.Seq(
		visibility(),
		"enum",
		g.Field("name", s("_type_identifier")),
		typeParams(),
		whereClause(),
		g.Field("enclosed_body", s("enum_variant_list")),
	))
	gr.Define("enum_variant_list", g.Seq(
		"{",
		placeholder("enum_member_list", g.Seq(
			g.SepBy(",", g.Seq(g.Repeat(s("attribute_item")), s("enum_variant"))),
			g.Optional(","),
		)),
		"}",
	))
	gr.Define("enum_variant", g.Seq(
		visibility(),
		g.Field("name", s("identifier")),
		g.Field("enclosed_body", g.Optional(g.Choice(
			s("field_declaration_list_block"),
			s("ordered_field_declaration_list_block"),
		))),
		g.Optional(g.Seq("=", g.Field("value", s("expression")))),
	))

	gr.Define("field_declaration_list_block", g.Seq(
		"{",
		placeholder("class_member_list", s("field_declaration_list")),
		"}",
	))
	gr.Define("field_declaration_list", g.Seq(
		g.SepBy1(",", g.Seq(g.Repeat(s("attribute_item")), s("property"))),
		g.Optional(","),
	))
	gr.Define("property", g.Seq(
		visibility(),
		g.Field("assignment_list", g.Alias(s("property_assignment"), "assignment")),
	))
	gr.Define("property_assignment", g.Field("assignment_variable", g.Seq(
		s("_field_identifier"),
		s("type_optional"),
	)))
	gr.Define("ordered_field_declaration_list_block", g.Seq(
		"(",
		placeholder("class_member_list", s("ordered_field_declaration_list")),
		")",
	))
	gr.Define("ordered_field_declaration_list", g.Seq(
		g.SepBy1(",", g.Seq(
			g.Repeat(s("attribute_item")),
			visibility(),
			g.Field("type", s("_type")),
		)),
		g.Optional(","),
	))

	gr.Define("extern_crate_declaration", g.Seq(
		visibility(),
		"extern",
		s("crate"),
		g.Field("name", s("identifier")),
		g.Optional(g.Seq("as", g.Field("alias", s("identifier")))),
		";",
	))
	gr.Define("const_item", g.Seq(
		visibility(),
		"const",
		g.Field("name", s("identifier")),
		s("type_optional"),
		g.Optional(g.Seq("=", g.Field("assignment_value", s("expression")))),
		";",
	))
	gr.Define("static_item", g.Seq(
		visibility(),
		"static",
		// lazy_static! syntax
		g.Optional("ref"),
		placeholder("modifier_list", s("mutable_specifier")),
		g.Field("name", s("identifier")),
		s("type_optional"),
		g.Optional(g.Seq("=", g.Field("value", s("expression")))),
		";",
	))
	gr.Define("type_item", g.Seq(
		visibility(),
		"type",
		g.Field("name", s("_type_identifier")),
		typeParams(),
		"=",
		g.Field("type", s("_type")),
		";",
	))

	gr.Define("function_type_clause", g.Seq("->", g.Field("type", s("_type"))))
	gr.Define("function", g.Seq(
		placeholder("modifier_list", g.Seq(
			g.Optional(s("visibility_modifier")),
			g.Optional(s("function_modifiers")),
		)),
		"fn",
		g.Field("name", g.Choice(s("identifier"), s("metavariable"))),
		typeParams(),
		g.Field("parameters", s("parameters")),
		placeholder("type_optional", s("function_type_clause")),
		whereClause(),
		g.Choice(";", s("enclosed_body")),
	))
	gr.Define("unsafe_modifier", "unsafe")
	gr.Define("function_modifier", g.Field("modifier", g.Choice(
		"async",
		"default",
		"const",
		s("unsafe_modifier"),
		s("extern_modifier"),
	)))
	gr.Define("function_modifiers", g.Repeat1(s("function_modifier")))

	gr.Define("where_clause", g.Seq(
		"where",
		g.Field("type_parameter_constraint_list", g.Seq(
			g.SepBy1(",", g.Alias(s("where_predicate"), "type_parameter_constraint_type")),
			g.Optional(","),
		)),
	))
	gr.Define("where_predicate", g.Seq(
		g.Field("left", g.Choice(
			s("lifetime"),
			s("_type_identifier"),
			s("scoped_type_identifier"),
			s("generic_type"),
			s("reference_type"),
			s("pointer_type"),
			s("tuple_type"),
			s("higher_ranked_trait_bound"),
			primitive("primitive_type"),
		)),
		g.Field("bounds", s("trait_bounds")),
	))

	gr.Define("impl_item_body", g.Seq(
		"{",
		placeholder("implementation_member_list", g.Optional(s("declaration_list"))),
		"}",
	))
	gr.Define("implements_list", g.Seq(
		g.Field("implements_type", g.Choice(
			s("_type_identifier"),
			s("scoped_type_identifier"),
			s("generic_type"),
		)),
	))
	gr.Define("implementation", g.Seq(
		placeholder("modifier_list", s("unsafe_modifier")),
		"impl",
		typeParams(),
		placeholder("implements_list_optional", g.Seq(s("implements_list"), "for")),
		// the type the trait is implemented for
		g.Field("name", s("_type")),
		whereClause(),
		g.Alias(s("impl_item_body"), "enclosed_body"),
	))

	gr.Define("trait_item_body", g.Seq(
		"{",
		placeholder("trait_member_list", s("declaration_list")),
		"}",
	))
	gr.Define("trait", g.Seq(
		placeholder("modifier_list", g.Seq(
			g.Optional(s("visibility_modifier")),
			g.Optional(s("unsafe_modifier")),
		)),
		"trait",
		g.Field("name", s("_type_identifier")),
		typeParams(),
		placeholder("trait_bounds_optional", s("trait_bounds")),
		whereClause(),
		g.Alias(s("trait_item_body"), "enclosed_body"),
	))
	gr.Define("associated_type", g.Seq(
		"type",
		g.Field("name", s("_type_identifier")),
		placeholder("type_parameter_constraint_list_optional", s("trait_bounds")),
		";",
	))

	gr.Define("trait_bounds", g.Seq(
		":",
		g.Field("trait_bound", g.SepBy1("+", g.Choice(
			s("_type"),
			s("lifetime"),
			s("higher_ranked_trait_bound"),
			s("removed_trait_bound"),
		))),
	))
	gr.Define("higher_ranked_trait_bound", g.Seq(
		"for",
		g.Field("type_parameters", s("type_parameters")),
		g.Field("type", s("_type")),
	))
	gr.Define("removed_trait_bound", g.Seq("?", s("_type")))

	gr.Define("type_parameter", g.Choice(
		s("lifetime"),
		s("metavariable"),
		s("_type_identifier"),
		s("constrained_type_parameter"),
		s("optional_type_parameter"),
		s("const_parameter"),
	))
	gr.Define("type_parameters", g.Prec(1, g.Seq(
		"<",
		g.Field("type_parameter_list", g.Seq(
			g.SepBy1(",", s("type_parameter")),
			g.Optional(","),
		)),
		">",
	)))
	gr.Define("const_parameter", g.Seq("const", g.Field("name", s("identifier")), s("type_optional")))
	gr.Define("constrained_type_parameter", g.Seq(
		g.Field("left", g.Choice(s("lifetime"), s("_type_identifier"))),
		g.Field("bounds", s("trait_bounds")),
	))
	gr.Define("optional_type_parameter", g.Seq(
		g.Field("name", g.Choice(s("_type_identifier"), s("constrained_type_parameter"))),
		"=",
		g.Field("default_type", s("_type")),
	))

	gr.Define("assignment", g.Seq(
		g.Field("assignment_variable", s("_pattern")),
		placeholder("type_optional", s("type_optional")),
		placeholder("assignment_value_list_optional", g.Seq("=", g.Alias(s("expression"), "assignment_value"))),
	))
	gr.Define("let_declaration", g.Seq(
		"let",
		placeholder("modifier_list", s("mutable_specifier")),
		g.Field("assignment_list", s("assignment")),
		";",
	))

	gr.Define("using", g.Seq(visibility(), "use", g.Field("identifier", s("_use_clause"))))
	gr.Define("use_declaration", g.Seq(s("using"), ";"))
	gr.Define("_use_clause", g.Choice(
		s("_path"),
		s("use_as_clause"),
		s("use_list"),
		s("scoped_use_list"),
		s("use_wildcard"),
	))
	gr.Define("scoped_use_list", g.Seq(
		g.Field("path", g.Optional(s("_path"))),
		"::",
		g.Field("list", s("use_list")),
	))
	gr.Define("use_list", g.Seq("{", g.SepBy(",", s("_use_clause")), g.Optional(","), "}"))
	gr.Define("use_as_clause", g.Seq(
		g.Field("path", s("_path")),
		"as",
		g.Field("alias", s("identifier")),
	))
	gr.Define("use_wildcard", g.Seq(g.Optional(g.Seq(s("_path"), "::")), "*"))

	gr.Define("parameter", g.Seq(
		g.Optional(s("attribute_item")),
		g.Field("name", g.Choice(
			s("simple_parameter"),
			s("self_parameter"),
			s("variadic_parameter"),
			"_",
			s("_type"),
		)),
	))
	gr.Define("parameters", g.Seq(
		"(",
		placeholder("parameter_list", g.Seq(g.SepBy(",", s("parameter")), g.Optional(","))),
		")",
	))
	gr.Define("self_parameter", g.Seq(
		g.Optional("&"),
		g.Optional(s("lifetime")),
		placeholder("modifier_list", s("mutable_specifier")),
		s("self"),
	))
	gr.Define("variadic_parameter", "...")
	gr.Define("simple_parameter", g.Seq(
		placeholder("modifier_list", s("mutable_specifier")),
		g.Field("pattern", g.Choice(s("_pattern"), s("self"), s("_reserved_identifier"))),
		s("type_optional"),
	))
	gr.Define("extern_modifier", g.Seq("extern", g.Optional(s("string_literal"))))
	gr.Define("visibility_modifier", g.PrecRight(0, g.Field("modifier", g.Choice(
		s("crate"),
		g.Seq(
			"pub",
			g.Optional(g.Seq(
				"(",
				g.Choice(s("self"), s("super"), s("crate"), g.Seq("in", s("_path"))),
				")",
			)),
		),
	))))
}

func defineTypes(gr *g.Grammar, s func(string) *g.Expr) {
	implemented := func() *g.Expr {
		return g.Field("implements_type", g.Choice(
			s("_type_identifier"),
			s("scoped_type_identifier"),
			s("generic_type"),
			s("function_type"),
		))
	}

	gr.Define("_type", g.Choice(
		s("abstract_type"),
		s("reference_type"),
		s("metavariable"),
		s("pointer_type"),
		s("generic_type"),
		s("scoped_type_identifier"),
		s("tuple_type"),
		s("unit_type"),
		s("array_type"),
		s("function_type"),
		s("_type_identifier"),
		s("macro_invocation"),
		s("empty_type"),
		s("dynamic_type"),
		s("bounded_type"),
		primitive("primitive_type"),
	))
	gr.Define("type_optional", g.Seq(":", g.Field("type", s("_type"))))
	gr.Define("bracketed_type", g.Seq("<", g.Choice(s("_type"), s("qualified_type")), ">"))
	gr.Define("qualified_type", g.Seq(g.Field("type", s("_type")), "as", g.Field("alias", s("_type"))))
	gr.Define("lifetime", g.Seq("'", s("identifier")))
	gr.Define("array_type", g.Seq(
		"[",
		g.Field("element", s("_type")),
		g.Optional(g.Seq(";", g.Field("length", s("expression")))),
		"]",
	))
	gr.Define("for_lifetimes", g.Seq("for", "<", g.SepBy1(",", s("lifetime")), g.Optional(","), ">"))
	gr.Define("function_type", g.Seq(
		g.Optional(s("for_lifetimes")),
		g.Prec(precCall, g.Seq(
			g.Choice(
				g.Field("implements_type", g.Choice(s("_type_identifier"), s("scoped_type_identifier"))),
				g.Seq(g.Optional(s("function_modifiers")), "fn"),
			),
			g.Field("parameters", s("parameters")),
		)),
		placeholder("function_type_clause", s("function_type_clause")),
	))
	gr.Define("tuple_type", g.Seq("(", g.SepBy1(",", s("_type")), g.Optional(","), ")"))
	gr.Define("unit_type", g.Seq("(", ")"))
	gr.Define("generic_function", g.Prec(1, g.Seq(
		g.Field("function", g.Choice(s("identifier"), s("scoped_identifier"), s("field_expression"))),
		"::",
		g.Field("type_arguments", s("type_arguments")),
	)))
	gr.Define("generic_type", g.Prec(1, g.Seq(
		g.Field("type", g.Choice(s("_type_identifier"), s("scoped_type_identifier"))),
		g.Field("type_arguments", s("type_arguments")),
	)))
	gr.Define("generic_type_with_turbofish", g.Seq(
		g.Field("type", g.Choice(s("_type_identifier"), s("scoped_identifier"))),
		"::",
		g.Field("type_arguments", s("type_arguments")),
	))
	gr.Define("bounded_type", g.PrecLeft(-1, g.Choice(
		g.Seq(s("lifetime"), "+", s("_type")),
		g.Seq(s("_type"), "+", s("_type")),
		g.Seq(s("_type"), "+", s("lifetime")),
	)))
	gr.Define("type_arguments", g.Seq(
		g.Token(g.Prec(1, "<")),
		g.SepBy1(",", g.Choice(
			s("_type"),
			s("type_binding"),
			s("lifetime"),
			s("_literal"),
			s("enclosed_body"),
		)),
		g.Optional(","),
		">",
	))
	gr.Define("type_binding", g.Seq(
		g.Field("name", s("_type_identifier")),
		"=",
		g.Field("type", s("_type")),
	))
	gr.Define("reference_type", g.Seq(
		"&",
		g.Optional(s("lifetime")),
		placeholder("modifier_list", s("mutable_specifier")),
		g.Field("type", s("_type")),
	))
	gr.Define("pointer_type", g.Seq("*", g.Choice("const", s("mutable_specifier")), g.Field("type", s("_type"))))
	gr.Define("empty_type", "!")
	gr.Define("abstract_type", g.Seq("impl", implemented()))
	gr.Define("dynamic_type", g.Seq("dyn", implemented()))
	gr.Define("mutable_specifier", g.Field("modifier", "mut"))
}

func defineExpressions(gr *g.Grammar, s func(string) *g.Expr) {
	e := s("expression")
	label := func() *g.Expr {
		return g.Optional(g.Seq(s("loop_label"), ":"))
	}

	gr.Define("expression", g.Choice(
		s("unary_expression"),
		s("reference_expression"),
		s("try_expression"),
		s("binary_expression"),
		s("assignment_expression"),
		s("compound_assignment_expr"),
		s("type_cast_expression"),
		s("range_expression"),
		g.Alias(s("call_expression"), "call"),
		s("return"),
		s("_literal"),
		g.PrecLeft(0, s("identifier")),
		primitive("identifier"),
		g.PrecLeft(0, s("_reserved_identifier")),
		s("self"),
		s("scoped_identifier"),
		s("generic_function"),
		s("await_expression"),
		s("field_expression"),
		s("array_expression"),
		s("tuple_expression"),
		g.Prec(1, s("macro_invocation")),
		s("unit_expression"),
		s("_expression_ending_with_block"),
		s("break_expression"),
		s("continue_expression"),
		s("index_expression"),
		s("metavariable"),
		s("lambda"),
		s("parenthesized_expression"),
		s("struct_expression"),
	))
	gr.Define("_expression_ending_with_block", g.Choice(
		s("unsafe_block"),
		s("async_block"),
		s("enclosed_body"),
		s("if"),
		s("match_expression"),
		s("while"),
		s("loop_expression"),
		s("for"),
		s("const_block"),
	))

	gr.Define("macro_invocation", g.Seq(
		g.Field("macro", g.Choice(s("scoped_identifier"), s("identifier"), s("_reserved_identifier"))),
		"!",
		s("token_tree"),
	))
	gr.Define("scoped_identifier", g.Seq(
		g.Field("path", g.Optional(g.Choice(
			s("_path"),
			s("bracketed_type"),
			g.Alias(s("generic_type_with_turbofish"), "generic_type"),
		))),
		"::",
		g.Field("name", s("identifier")),
	))
	gr.Define("scoped_type_identifier_in_expression_position", g.Prec(-2, g.Seq(
		g.Field("path", g.Optional(g.Choice(
			s("_path"),
			g.Alias(s("generic_type_with_turbofish"), "generic_type"),
		))),
		"::",
		g.Field("name", s("_type_identifier")),
	)))
	gr.Define("scoped_type_identifier", g.Seq(
		g.Field("path", g.Optional(g.Choice(
			s("_path"),
			g.Alias(s("generic_type_with_turbofish"), "generic_type_duplicate"),
			s("bracketed_type"),
			s("generic_type"),
		))),
		"::",
		g.Field("name", s("_type_identifier")),
	))

	gr.Define("range_expression", g.PrecLeft(precRange, g.Choice(
		g.PrecLeft(precRange+1, g.Seq(e, g.Choice("..", "...", "..="), e)),
		g.Seq(e, ".."),
		g.Seq("..", e),
		"..",
	)))
	gr.Define("unary_expression", g.Prec(precUnary, g.Seq(g.Choice("-", "*", "!"), e)))
	gr.Define("try_expression", g.Seq(e, "?"))
	gr.Define("reference_expression", g.Prec(precUnary, g.Seq(
		"&",
		placeholder("modifier_list", s("mutable_specifier")),
		g.Field("value", e),
	)))

	binary := []struct {
		prec int
		op   any
	}{
		{precAnd, "&&"},
		{precOr, "||"},
		{precBitAnd, "&"},
		{precBitOr, "|"},
		{precBitXor, "^"},
		{precComparative, g.Choice("==", "!=", "<", "<=", ">", ">=")},
		{precShift, g.Choice("<<", ">>")},
		{precAdditive, g.Choice("+", "-")},
		{precMultiplicative, g.Choice("*", "/", "%")},
	}
	alts := make([]any, len(binary))
	for i, b := range binary {
		alts[i] = g.PrecLeft(b.prec, g.Seq(
			g.Field("left", e),
			g.Field("operator", b.op),
			g.Field("right", e),
		))
	}
	gr.Define("binary_expression", g.Choice(alts...))

	gr.Define("assignment_expression", g.PrecLeft(precAssign, g.Seq(
		g.Field("left", e),
		"=",
		g.Field("right", e),
	)))
	gr.Define("compound_assignment_expr", g.PrecLeft(precAssign, g.Seq(
		g.Field("left", e),
		g.Field("operator", g.Choice("+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>=")),
		g.Field("right", e),
	)))
	gr.Define("type_cast_expression", g.Seq(
		g.Field("value", e),
		"as",
		g.Field("type", s("_type")),
	))
	gr.Define("return", g.Choice(
		g.PrecLeft(0, g.Seq("return", g.Field("return_value_optional", g.Alias(e, "return_value")))),
		g.Prec(-1, g.Seq("return", g.Field("return_value_optional", g.Blank()))),
	))
	gr.Define("call_expression", g.Prec(precCall, g.Seq(
		g.Field("function", e),
		"(",
		g.Field("argument_list", g.Seq(g.SepBy(",", s("argument")), g.Optional(","))),
		")",
	)))
	gr.Define("argument", g.Seq(g.Repeat(s("attribute_item")), e))
	gr.Define("array_expression", g.Seq(
		"[",
		g.Repeat(s("attribute_item")),
		g.Choice(
			g.Seq(e, ";", g.Field("length", e)),
			g.Seq(g.SepBy(",", e), g.Optional(",")),
		),
		"]",
	))
	gr.Define("parenthesized_expression", g.Seq("(", e, ")"))
	gr.Define("tuple_expression", g.Seq(
		"(",
		g.Repeat(s("attribute_item")),
		g.Seq(e, ","),
		g.Repeat(g.Seq(e, ",")),
		g.Optional(e),
		")",
	))
	gr.Define("unit_expression", g.Seq("(", ")"))

	gr.Define("struct_expression", g.Seq(
		g.Field("name", g.Choice(
			s("_type_identifier"),
			g.Alias(s("scoped_type_identifier_in_expression_position"), "scoped_type_identifier"),
			s("generic_type_with_turbofish"),
		)),
		g.Field("enclosed_body", s("field_initializer_list_block")),
	))
	gr.Define("field_initializer_list_block", g.Seq(
		"{",
		g.Field("class_member_list", g.Seq(
			g.SepBy(",", g.Choice(
				s("shorthand_field_initializer"),
				s("field_initializer"),
				s("base_field_initializer"),
			)),
			g.Optional(","),
		)),
		"}",
	))
	gr.Define("shorthand_field_initializer", g.Seq(g.Repeat(s("attribute_item")), s("identifier")))
	gr.Define("field_initializer", g.Seq(
		g.Repeat(s("attribute_item")),
		g.Field("name", s("_field_identifier")),
		":",
		g.Field("value", e),
	))
	gr.Define("base_field_initializer", g.Seq("..", e))

	letCondition := func() *g.Expr {
		return g.Field("condition", g.Seq("let", s("_pattern"), "=", e))
	}
	consequence := func() *g.Expr {
		return g.Field("if_consequence", s("enclosed_body"))
	}
	elses := func() []any {
		return []any{
			placeholder("else_if_clause_list", g.Repeat(s("else_if_clause"))),
			placeholder("else_clause_optional", s("else_clause")),
		}
	}

	gr.Define("if_clause", g.Seq("if", g.Field("condition", e), consequence()))
	gr.Define("else_if_clause", g.Choice(s("else_if_plain_clause"), s("else_if_let_clause")))
	gr.Define("else_if_plain_clause", g.PrecDynamic(1, g.Seq("else", "if", g.Field("condition", e), consequence())))
	gr.Define("if_let_clause", g.Seq("if", letCondition(), consequence()))
	gr.Define("else_if_let_clause", g.PrecDynamic(1, g.Seq("else", "if", letCondition(), consequence())))
	gr.Define("if", g.Choice(s("if_expression"), s("if_let_expression")))
	gr.Define("if_expression", g.Seq(append([]any{s("if_clause")}, elses()...)...))
	gr.Define("if_let_expression", g.Seq(append([]any{g.Alias(s("if_let_clause"), "if_clause")}, elses()...)...))
	gr.Define("else_clause", g.Seq("else", s("enclosed_body")))

	gr.Define("match_expression", g.Seq(
		"match",
		g.Field("value", e),
		g.Field("enclosed_body", s("match_block")),
	))
	gr.Define("match_block", g.Seq(
		"{",
		g.Optional(g.Seq(g.Repeat(s("match_arm")), g.Alias(s("last_match_arm"), "match_arm"))),
		"}",
	))
	gr.Define("match_arm", g.Seq(
		g.Repeat(s("attribute_item")),
		g.Field("pattern", g.Choice(s("macro_invocation"), s("match_pattern"))),
		"=>",
		g.Choice(
			g.Seq(g.Field("value", e), ","),
			g.Field("value", g.Prec(1, s("_expression_ending_with_block"))),
		),
	))
	gr.Define("last_match_arm", g.Seq(
		g.Repeat(s("attribute_item")),
		g.Field("pattern", s("match_pattern")),
		"=>",
		g.Field("value", e),
		g.Optional(","),
	))
	gr.Define("match_pattern", g.Seq(s("_pattern"), g.Optional(g.Seq("if", g.Field("condition", e)))))

	gr.Define("while", g.Field("while_clause", g.Choice(s("while_expression"), s("while_let_expression"))))
	gr.Define("while_expression", g.Seq(label(), "while", g.Field("condition", e), s("enclosed_body")))
	gr.Define("while_let_condition", g.Seq(
		"let",
		g.Field("pattern", s("_pattern")),
		"=",
		g.Field("value", e),
	))
	gr.Define("while_let_expression", g.Seq(
		label(),
		"while",
		g.Alias(s("while_let_condition"), "condition"),
		s("enclosed_body"),
	))
	gr.Define("loop_expression", g.Seq(label(), "loop", s("enclosed_body")))
	gr.Define("for", s("for_each_clause"))
	gr.Define("for_each_clause", g.Seq(
		label(),
		"for",
		g.Field("block_iterator", s("_pattern")),
		"in",
		g.Field("block_collection", e),
		s("enclosed_body"),
	))
	gr.Define("const_block", g.Seq("const", s("enclosed_body")))

	gr.Define("lambda", g.Prec(precClosure, g.Seq(
		g.Optional("move"),
		g.Field("parameters", s("closure_parameters")),
		g.Choice(
			g.Prec(10, g.Seq(
				placeholder("function_type_clause", s("function_type_clause")),
				s("enclosed_body"),
			)),
			g.Field("return_value", e),
		),
	)))
	gr.Define("closure_parameter", g.Choice(s("_pattern"), s("simple_parameter")))
	gr.Define("closure_parameters", g.Seq(
		"|",
		placeholder("parameter_list", g.SepBy(",", g.Alias(s("closure_parameter"), "parameter"))),
		"|",
	))

	gr.Define("loop_label", g.Seq("'", s("identifier")))
	gr.Define("break_expression", g.PrecLeft(0, g.Seq("break", g.Optional(s("loop_label")), g.Optional(e))))
	gr.Define("continue_expression", g.PrecLeft(0, g.Seq("continue", g.Optional(s("loop_label")))))
	gr.Define("index_expression", g.Prec(precCall, g.Seq(e, "[", e, "]")))
	gr.Define("await_expression", g.Prec(precField, g.Seq(e, ".", "await")))
	gr.Define("field_expression", g.Prec(precField, g.Seq(
		g.Field("value", e),
		".",
		g.Field("field", g.Choice(s("_field_identifier"), s("integer_literal"))),
	)))
	gr.Define("unsafe_block", g.Seq(s("unsafe_modifier"), s("enclosed_body")))
	gr.Define("async_block", g.Seq("async", g.Optional("move"), s("enclosed_body")))
	gr.Define("enclosed_body", g.Seq(
		"{",
		placeholder("statement_list", g.Seq(g.Repeat(s("statement")), g.Optional(e))),
		"}",
	))
}

func definePatterns(gr *g.Grammar, s func(string) *g.Expr) {
	p := s("_pattern")
	items := func(open, close string) *g.Expr {
		return g.Seq(open, g.SepBy(",", p), g.Optional(","), close)
	}

	gr.Define("_pattern", g.Choice(
		s("_literal_pattern"),
		primitive("identifier"),
		s("identifier"),
		s("scoped_identifier"),
		s("tuple_pattern"),
		s("tuple_struct_pattern"),
		s("struct_pattern"),
		s("ref_pattern"),
		s("slice_pattern"),
		s("captured_pattern"),
		s("reference_pattern"),
		s("remaining_field_pattern"),
		s("mut_pattern"),
		s("range_pattern"),
		s("or_pattern"),
		s("const_block"),
		"_",
	))
	gr.Define("tuple_pattern", items("(", ")"))
	gr.Define("slice_pattern", items("[", "]"))
	gr.Define("tuple_struct_pattern", g.Seq(
		g.Field("type", g.Choice(s("identifier"), s("scoped_identifier"))),
		items("(", ")"),
	))
	gr.Define("struct_pattern", g.Seq(
		g.Field("type", g.Choice(s("_type_identifier"), s("scoped_type_identifier"))),
		"{",
		g.SepBy(",", g.Choice(s("field_pattern"), s("remaining_field_pattern"))),
		g.Optional(","),
		"}",
	))
	gr.Define("field_pattern", g.Seq(
		g.Optional("ref"),
		placeholder("modifier_list", s("mutable_specifier")),
		g.Choice(
			g.Field("name", g.Alias(s("identifier"), "shorthand_field_identifier")),
			g.Seq(g.Field("name", s("_field_identifier")), ":", g.Field("pattern", p)),
		),
	))
	gr.Define("remaining_field_pattern", "..")
	gr.Define("mut_pattern", g.Prec(-1, g.Seq(s("mutable_specifier"), p)))
	gr.Define("range_pattern", g.Seq(
		g.Choice(s("_literal_pattern"), s("_path")),
		g.Choice("...", "..="),
		g.Choice(s("_literal_pattern"), s("_path")),
	))
	gr.Define("ref_pattern", g.Seq("ref", p))
	gr.Define("captured_pattern", g.Seq(s("identifier"), "@", p))
	gr.Define("reference_pattern", g.Seq("&", placeholder("modifier_list", s("mutable_specifier")), p))
	gr.Define("or_pattern", g.PrecLeft(-2, g.Seq(p, "|", p)))
}

func defineLiterals(gr *g.Grammar, s func(string) *g.Expr) {
	gr.Define("_literal", g.Choice(
		s("string_literal"),
		s("raw_string_literal"),
		s("char_literal"),
		s("boolean_literal"),
		s("integer_literal"),
		s("float_literal"),
	))
	gr.Define("_literal_pattern", g.Choice(
		s("string_literal"),
		s("raw_string_literal"),
		s("char_literal"),
		s("boolean_literal"),
		s("integer_literal"),
		s("float_literal"),
		s("negative_literal"),
	))
	gr.Define("negative_literal", g.Seq("-", g.Choice(s("integer_literal"), s("float_literal"))))
	gr.Define("integer_literal", g.Token(g.Seq(
		g.Choice(
			g.Pattern(`[0-9][0-9_]*`),
			g.Pattern(`0x[0-9a-fA-F_]+`),
			g.Pattern(`0b[01_]+`),
			g.Pattern(`0o[0-7_]+`),
		),
		g.Optional(g.Choice(words(numericTypes)...)),
	)))
	gr.Define("string_literal", g.Seq(
		g.AliasLiteral(g.Pattern(`b?"`), `"`),
		g.Repeat(g.Choice(s("escape_sequence"), s("string_content"))),
		g.ImmediateToken(`"`),
	))
	gr.Define("char_literal", g.Token(g.Seq(
		g.Optional("b"),
		"'",
		g.Optional(g.Choice(
			g.Seq(`\`, g.Pattern(escapeRe)),
			g.Pattern(`[^\\']`),
		)),
		"'",
	)))
	gr.Define("escape_sequence", g.ImmediateToken(g.Seq(`\`, g.Pattern(escapeRe))))
	gr.Define("boolean_literal", g.Choice("true", "false"))
	gr.Define("comment", g.Choice(s("line_comment"), s("block_comment")))
	gr.Define("line_comment", g.Token(g.Seq("//", g.Pattern(`.*`))))

	gr.Define("_path", g.Choice(
		s("self"),
		primitive("identifier"),
		s("metavariable"),
		s("super"),
		s("crate"),
		s("identifier"),
		s("scoped_identifier"),
		s("_reserved_identifier"),
	))
	gr.Define("identifier", g.Pattern(identifierRe))
	gr.Define("_reserved_identifier", g.Alias(g.Choice("default", "union"), "identifier"))
	gr.Define("_type_identifier", s("identifier"))
	gr.Define("_field_identifier", s("identifier"))
	gr.Define("self", "self")
	gr.Define("super", "super")
	gr.Define("crate", "crate")
	gr.Define("metavariable", g.Pattern(`\$[a-zA-Z_]\w*`))
}
