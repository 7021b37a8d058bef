package main

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// prompter reads lines typed interactively, *liner.State is the real one.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// globalState holds everything commands touch outside of the process,
// tests replace it with in-memory counterparts.
type globalState struct {
	fs        afero.Fs
	stdout    io.Writer
	stderr    io.Writer
	stdoutTTY bool
	stderrTTY bool
	lookupEnv func(key string) (string, bool)
	logger    *logrus.Logger

	newPrompter func() (prompter, func())

	conf    Config
	palette palette
}

func isTTY(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newGlobalState() *globalState {
	return &globalState{
		fs:        afero.NewOsFs(),
		stdout:    colorable.NewColorableStdout(),
		stderr:    colorable.NewColorableStderr(),
		stdoutTTY: isTTY(os.Stdout),
		stderrTTY: isTTY(os.Stderr),
		lookupEnv: os.LookupEnv,
		logger: &logrus.Logger{
			Out:       os.Stderr,
			Formatter: new(logrus.TextFormatter),
			Hooks:     make(logrus.LevelHooks),
			Level:     logrus.InfoLevel,
		},
		newPrompter: func() (prompter, func()) {
			ln := liner.NewLiner()
			ln.SetCtrlCAborts(true)
			return ln, func() { ln.Close() }
		},
		conf:    defaultConfig(),
		palette: newPalette(false),
	}
}

// palette colors diagnostics.
type palette struct {
	name, err, warn *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		name: color.New(color.FgCyan),
		err:  color.New(color.FgRed),
		warn: color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{p.name, p.err, p.warn} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}
