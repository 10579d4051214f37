package main

import (
	"fmt"
	"os"

	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/mitchellh/cli"
)

var (
	name    = "filechunker"
	version = "0.0.0"
)

func main() {
	ui := &cli.BasicUi{
		Reader:      os.Stdin,
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}

	c := cli.NewCLI(name, version)
	c.Args = os.Args[1:]
	c.Commands = commands(ui, env.NewRepository(), log.NewLogger())

	status, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", name, err)
	}

	os.Exit(status)
}

func commands(ui cli.Ui, envRepo env.Repository, logger log.Logger) map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"split":   newSplitCommand(ui, envRepo, logger),
		"version": newVersionCommand(ui),
	}
}

type versionCommand struct {
	ui cli.Ui
}

func newVersionCommand(ui cli.Ui) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &versionCommand{ui: ui}, nil
	}
}

func (cmd *versionCommand) Help() string {
	return "Usage: filechunker version"
}

func (cmd *versionCommand) Synopsis() string {
	return "Prints the version"
}

func (cmd *versionCommand) Run(_ []string) int {
	cmd.ui.Output(fmt.Sprintf("%s %s", name, version))
	return 0
}
