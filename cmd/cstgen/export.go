package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func getExportCmd(gs *globalState) *cobra.Command {
	var asYAML bool
	var outFileName string

	cmd := &cobra.Command{
		Use:   "export <grammar>",
		Short: "write grammar definition as JSON or YAML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			src, e := loadGrammar(gs, args[0])
			if e != nil {
				return e
			}

			var content []byte
			if asYAML {
				content, e = yaml.Marshal(src.grammar)
			} else {
				content, e = json.MarshalIndent(src.grammar, "", "  ")
				content = append(content, '\n')
			}
			if e != nil {
				return e
			}

			if outFileName == "" {
				outFileName = stdoutName
			}
			return writeOutput(gs, outFileName, content)
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "output YAML instead of JSON")
	cmd.Flags().StringVarP(&outFileName, "output", "o", stdoutName, "output file name, - means stdout")
	return cmd
}
