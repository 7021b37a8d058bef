/*
cstgen is a console utility compiling grammars and trying them out.
Usage is

	cstgen [flags] <command> [arguments]

Commands are:

	compile <grammar>            compile grammar to JSON table or Go source
	export <grammar>             write grammar definition as JSON or YAML document
	parse <grammar> <file>...    parse files and print syntax trees as S-expressions
	repl <grammar>               parse lines typed interactively

<grammar> is either the name of built-in language (rust) or the name of grammar file:
*.json and *.yaml files contain tree-sitter-style grammar documents,
*.ebnf files contain EBNF grammars (start rule is defined with --start flag).

Settings are taken from defaults, then from YAML config file (cstgen.yaml or --config),
then from CSTX_* environment variables, then from command line flags.
*/
package main

import (
	"os"
)

func main() {
	os.Exit(execute(newGlobalState(), os.Args[1:]))
}
