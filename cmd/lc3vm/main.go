// Command lc3vm is a virtual machine for the LC-3 educational computer.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/cmars/lc3vm/internal/cli"
	"github.com/cmars/lc3vm/internal/cli/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	commands := []cli.Command{
		cmd.Executor(),
	}

	commander := cli.New(ctx).
		WithLogger(os.Stderr).
		WithCommands(commands).
		WithHelp(cmd.Help(commands))

	os.Exit(commander.Execute(os.Args[1:]))
}
