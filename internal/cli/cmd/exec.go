package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/cmars/lc3vm/internal/cli"
	"github.com/cmars/lc3vm/internal/console"
	"github.com/cmars/lc3vm/internal/log"
	"github.com/cmars/lc3vm/internal/vm"
)

// Executor creates the exec command.
func Executor() cli.Command {
	return &executor{log: log.DefaultLogger()}
}

type executor struct {
	logLevel slog.Level
	timeout  time.Duration
	log      *log.Logger
}

func (executor) Description() string {
	return "run a program"
}

func (executor) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `exec program.obj

Loads an LC-3 object file and runs it to completion.`)

	return err
}

func (ex *executor) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("exec", flag.ExitOnError)
	fs.Func("loglevel", "set log `level`", func(s string) error {
		return ex.logLevel.UnmarshalText([]byte(s))
	})
	fs.DurationVar(&ex.timeout, "timeout", 0, "stop the machine after `duration` (0 disables the timeout)")

	return fs
}

// Run loads the object file named by args[0] and runs it. Exit codes:
// 0 on a clean HALT, 1 on a load or machine error, 2 on timeout.
func (ex *executor) Run(ctx context.Context, args []string, stdout io.Writer, logger *log.Logger) int {
	log.LogLevel.Set(ex.logLevel)

	if len(args) == 0 {
		logger.Error("exec: missing object file argument")
		return 1
	}

	file, err := os.Open(args[0])
	if err != nil {
		logger.Error("exec: open", "err", err)
		return 1
	}
	defer file.Close()

	var cancelTimeout context.CancelFunc

	if ex.timeout > 0 {
		ctx, cancelTimeout = context.WithTimeout(ctx, ex.timeout)
		defer cancelTimeout()
	}

	opts := []vm.OptionFn{vm.WithLogger(logger), vm.WithOutput(stdout)}

	term, err := console.Open(os.Stdin, os.Stdout)
	if err == nil {
		defer term.Close()
		opts = append(opts, vm.WithInput(term), vm.WithOutput(term))
	} else if !errors.Is(err, console.ErrNoTTY) {
		logger.Error("exec: console", "err", err)
		return 1
	}

	machine := vm.New(opts...)

	logger.Debug("loading program", "file", args[0])

	if err := machine.Load(file); err != nil {
		logger.Error("exec: load", "err", err)
		return 1
	}

	logger.Info("starting machine", "pc", machine.PC)

	err = machine.Run(ctx)

	switch {
	case errors.Is(err, vm.ErrHalted):
		logger.Info("program halted")
		return 0
	case errors.Is(err, context.DeadlineExceeded):
		logger.Error("exec: timeout")
		return 2
	default:
		logger.Error("exec: machine error", "err", err)
		return 1
	}
}
