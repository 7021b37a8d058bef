package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/serenize/snaker"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ava12/cstx/grammar"
)

const stdoutName = "-"

var identRe = regexp.MustCompile("^[A-Za-z_][A-Za-z_0-9]*$")

type compileCmd struct {
	gs          *globalState
	generateGo  bool
	outFileName string
	packageName string
	varName     string
}

func getCompileCmd(gs *globalState) *cobra.Command {
	c := &compileCmd{gs: gs}
	cmd := &cobra.Command{
		Use:   "compile <grammar>",
		Short: "compile grammar to JSON table or Go source",
		Long: `Compile grammar and write compiled table.

Output is a JSON document by default, --go flag makes a Go source file
defining a function that returns the table.`,
		Args: cobra.ExactArgs(1),
		RunE: c.run,
	}

	flags := cmd.Flags()
	flags.BoolVar(&c.generateGo, "go", false, "output Go source instead of JSON")
	flags.StringVarP(&c.outFileName, "output", "o", "",
		"output file name, default is the name of grammar file with .json or .go suffix, - means stdout")
	flags.StringVarP(&c.packageName, "package", "p", "", "Go package name, default is dir name of output file")
	flags.StringVarP(&c.varName, "var", "v", "", "Go function name, default is derived from grammar name")
	return cmd
}

func (c *compileCmd) run(_ *cobra.Command, args []string) error {
	src, e := loadGrammar(c.gs, args[0])
	if e != nil {
		return e
	}
	t, e := compileGrammar(c.gs, src)
	if e != nil {
		return e
	}

	ext := ".json"
	if c.generateGo {
		ext = ".go"
	}
	outName := c.outFileName
	if outName == "" {
		outName = defaultOutName(src, ext)
	}

	var content []byte
	if c.generateGo {
		content, e = c.makeGo(t, outName)
	} else {
		content, e = json.MarshalIndent(t, "", "  ")
	}
	if e != nil {
		return e
	}
	return writeOutput(c.gs, outName, content)
}

func defaultOutName(src *source, ext string) string {
	if src.path == "" {
		return src.name + ext
	}
	return strings.TrimSuffix(src.path, filepath.Ext(src.path)) + ext
}

func writeOutput(gs *globalState, name string, content []byte) error {
	if name == stdoutName {
		_, e := gs.stdout.Write(content)
		return e
	}
	if e := afero.WriteFile(gs.fs, name, content, 0o666); e != nil {
		return fmt.Errorf("writing %s: %w", name, e)
	}
	gs.logger.WithField("file", name).Info("written")
	return nil
}

func (c *compileCmd) makeGo(t *grammar.Table, outName string) ([]byte, error) {
	packageName, varName := c.packageName, c.varName
	if packageName == "" {
		if outName == stdoutName {
			packageName = strings.ToLower(t.Name)
		} else {
			dir, e := filepath.Abs(outName)
			if e != nil {
				return nil, e
			}
			packageName = filepath.Base(filepath.Dir(dir))
		}
	}
	if varName == "" {
		varName = snaker.SnakeToCamel(t.Name) + "Table"
	}

	if !identRe.MatchString(packageName) {
		return nil, fmt.Errorf("invalid package name: %s", packageName)
	}
	if !identRe.MatchString(varName) {
		return nil, fmt.Errorf("invalid function name: %s", varName)
	}

	data, e := json.Marshal(t)
	if e != nil {
		return nil, e
	}

	var buffer bytes.Buffer
	buffer.WriteString("// Code generated with cstgen. DO NOT EDIT.\n\n" +
		"package " + packageName + "\n\n" +
		"import (\n" +
		"\t\"encoding/json\"\n\n" +
		"\t\"github.com/ava12/cstx/grammar\"\n" +
		")\n\n")
	fmt.Fprintf(&buffer, "const %sData = %s\n\n", varName, strconv.Quote(string(data)))
	fmt.Fprintf(&buffer, "// %s returns compiled %q grammar.\n", varName, t.Name)
	fmt.Fprintf(&buffer, "func %s() (*grammar.Table, error) {\n", varName)
	buffer.WriteString("\tt := &grammar.Table{}\n")
	fmt.Fprintf(&buffer, "\tif e := json.Unmarshal([]byte(%sData), t); e != nil {\n", varName)
	buffer.WriteString("\t\treturn nil, e\n\t}\n\treturn t, nil\n}\n")
	return buffer.Bytes(), nil
}
