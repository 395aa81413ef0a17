package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command is one h5view subcommand.
type Command struct {
	// Flags holds the command specific flags.
	Flags *flag.FlagSet

	// Usage is shown after "h5view" in help, command name first.
	Usage string

	// Short is the one-line description of the command listing.
	Short string

	// Exec runs the command after flags are parsed.
	Exec func(ctx context.Context, a *app, args []string) error
}

// Name returns the first word of Usage.
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")
	return name
}

// HelpLine returns the line of c in the command listing.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-24s %s", c.Usage, c.Short)
}

// PrintHelp prints the help of c to w.
func (c *Command) PrintHelp(w io.Writer) {
	fmt.Fprintln(w, "Usage: h5view", c.Usage)
	fmt.Fprintln(w)
	fmt.Fprintln(w, c.Short)
	if c.Flags != nil && c.Flags.HasFlags() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		c.Flags.SetOutput(w)
		c.Flags.PrintDefaults()
	}
}

// parse parses args into the command flags. It returns flag.ErrHelp when
// help was requested.
func (c *Command) parse(args []string) ([]string, error) {
	if c.Flags == nil {
		c.Flags = flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	}
	c.Flags.SetOutput(io.Discard)
	if err := c.Flags.Parse(args); err != nil {
		return nil, err
	}
	return c.Flags.Args(), nil
}

// Run parses args and executes the command, returning the exit code.
func (c *Command) Run(ctx context.Context, a *app, args []string) int {
	rest, err := c.parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.PrintHelp(a.out)
			return 0
		}
		fmt.Fprintln(a.errOut, "error:", err)
		fmt.Fprintln(a.errOut)
		c.PrintHelp(a.errOut)
		return 1
	}

	if err := c.Exec(ctx, a, rest); err != nil {
		fmt.Fprintln(a.errOut, "error:", err)
		return 1
	}
	return 0
}

// errUsage reports wrong positional arguments.
var errUsage = errors.New("wrong number of arguments")

// commands returns a fresh set of commands; flag sets hold parse state.
func commands() []*Command {
	return []*Command{
		treeCmd(),
		infoCmd(),
		sliceCmd(),
		domainCmd(),
		exportCmd(),
		healthCmd(),
		serveCmd(),
		browseCmd(),
	}
}

func findCommand(cmds []*Command, name string) *Command {
	for _, c := range cmds {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

func printUsage(w io.Writer, global *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: h5view [global flags] <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands() {
		fmt.Fprintln(w, c.HelpLine())
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")
	global.SetOutput(w)
	global.PrintDefaults()
}
