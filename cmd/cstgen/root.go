package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootCommand struct {
	gs  *globalState
	cli cliConfig
	cmd *cobra.Command
}

func newRootCommand(gs *globalState) *rootCommand {
	c := &rootCommand{gs: gs}
	c.cmd = &cobra.Command{
		Use:               "cstgen",
		Short:             "compile grammars and try them out",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
	}
	c.cmd.PersistentFlags().AddFlagSet(configFlagSet(&c.cli))
	must(cobra.MarkFlagFilename(c.cmd.PersistentFlags(), "config", "yaml", "yml"))

	c.cmd.AddCommand(
		getCompileCmd(gs),
		getExportCmd(gs),
		getParseCmd(gs),
		getReplCmd(gs),
	)
	c.cmd.SetOut(gs.stdout)
	c.cmd.SetErr(gs.stderr)
	return c
}

func (c *rootCommand) persistentPreRunE(cmd *cobra.Command, _ []string) error {
	conf, e := consolidateConfig(c.gs.fs, c.gs.lookupEnv, cmd.Flags(), c.cli)
	if e != nil {
		return e
	}
	c.gs.conf = conf
	c.gs.palette = newPalette(c.gs.stdoutTTY && !conf.NoColor)
	return c.setupLogger()
}

func (c *rootCommand) setupLogger() error {
	log, conf := c.gs.logger, c.gs.conf
	log.SetOutput(c.gs.stderr)
	if conf.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	switch conf.LogFormat {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{
			ForceColors:   c.gs.stderrTTY && !conf.NoColor,
			DisableColors: conf.NoColor || !c.gs.stderrTTY,
		})
	default:
		return fmt.Errorf("unsupported log format %q", conf.LogFormat)
	}
	log.Debugf("config: %+v", conf)
	return nil
}

// execute runs command line and returns process exit code.
func execute(gs *globalState, args []string) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := newRootCommand(gs)
	c.cmd.SetArgs(args)
	if e := c.cmd.ExecuteContext(ctx); e != nil {
		gs.palette.err.Fprintln(gs.stderr, e.Error())
		return 1
	}
	return 0
}

func must(e error) {
	if e != nil {
		panic(e)
	}
}
