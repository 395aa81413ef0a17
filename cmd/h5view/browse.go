package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/peterh/liner"

	"github.com/jonwraymond/h5core/entity"
)

const browseHelp = `Commands:
  ls [path]              List the children of a group
  cd <path>              Change the current group
  pwd                    Print the current group
  tree [flags] [path]    Print the hierarchy
  info [path]            Describe an entity
  slice <path> [flags]   Print a projection
  domain <path> [flags]  Compute a domain
  export <path> [flags]  Write a projection
  help                   Show this help
  exit / quit / q        Exit`

func browseCmd() *Command {
	return &Command{
		Usage: "browse",
		Short: "Interactive shell",
		Exec: func(ctx context.Context, a *app, args []string) error {
			if len(args) != 0 {
				return errUsage
			}
			sh := &shell{app: a, cwd: entity.RootPath}
			if f, ok := a.in.(*os.File); ok && f == os.Stdin {
				return sh.interactive(ctx)
			}
			return sh.script(ctx, a.in)
		},
	}
}

// shell is the state of a browse session.
type shell struct {
	app *app
	cwd string
}

// interactive reads commands from the terminal with history and completion.
func (s *shell) interactive(ctx context.Context) error {
	lin := liner.NewLiner()
	defer lin.Close()
	lin.SetCtrlCAborts(true)
	lin.SetCompleter(func(line string) []string {
		return s.complete(ctx, line)
	})

	fmt.Fprintln(s.app.out, `Type "help" for commands.`)
	for ctx.Err() == nil {
		line, err := lin.Prompt(s.cwd + "> ")
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(s.app.out)
				return nil
			}
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		lin.AppendHistory(line)
		if s.exec(ctx, line) {
			return nil
		}
	}
	return nil
}

// script runs one command per line of r.
func (s *shell) script(ctx context.Context, r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() && ctx.Err() == nil {
		if s.exec(ctx, sc.Text()) {
			return nil
		}
	}
	return sc.Err()
}

// exec runs one line and reports whether the shell should exit. Errors are
// printed and the shell goes on.
func (s *shell) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	name, args := fields[0], fields[1:]

	var err error
	switch name {
	case "exit", "quit", "q":
		return true
	case "help", "?":
		fmt.Fprintln(s.app.out, browseHelp)
	case "pwd":
		fmt.Fprintln(s.app.out, s.cwd)
	case "cd":
		err = s.cd(ctx, args)
	case "ls":
		err = s.ls(ctx, args)
	case "tree", "info", "slice", "domain", "export":
		cmd := findCommand(commands(), name)
		rest, perr := cmd.parse(args)
		if perr != nil {
			err = perr
			break
		}
		switch {
		case len(rest) > 0:
			rest[0] = s.resolve(rest[0])
		case name == "info" || name == "tree":
			rest = []string{s.cwd}
		}
		err = cmd.Exec(ctx, s.app, rest)
	default:
		err = fmt.Errorf("unknown command %q", name)
	}

	if err != nil {
		fmt.Fprintln(s.app.errOut, "error:", err)
	}
	return false
}

// resolve makes p absolute against the current group.
func (s *shell) resolve(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = path.Join(s.cwd, p)
	}
	return path.Clean(p)
}

func (s *shell) cd(ctx context.Context, args []string) error {
	target := entity.RootPath
	if len(args) > 1 {
		return errUsage
	}
	if len(args) == 1 {
		target = s.resolve(args[0])
	}

	e, err := s.app.session.Entities().Get(ctx, target)
	if err != nil {
		return err
	}
	if _, err := entity.AsGroup(e); err != nil {
		return fmt.Errorf("%s: %w", target, err)
	}
	s.cwd = target
	return nil
}

func (s *shell) ls(ctx context.Context, args []string) error {
	target := s.cwd
	if len(args) > 1 {
		return errUsage
	}
	if len(args) == 1 {
		target = s.resolve(args[0])
	}

	e, err := s.app.session.Entities().Get(ctx, target)
	if err != nil {
		return err
	}
	g, ok := e.(*entity.Group)
	if !ok {
		fmt.Fprintf(s.app.out, "%s%s\n", e.Name(), describe(e))
		return nil
	}
	for _, c := range g.Children {
		fmt.Fprintf(s.app.out, "%s%s\n", c.Name(), describe(c))
	}
	return nil
}

// complete proposes the children of the current group for the last word
// of line.
func (s *shell) complete(ctx context.Context, line string) []string {
	head, word := "", line
	if i := strings.LastIndexByte(line, ' '); i >= 0 {
		head, word = line[:i+1], line[i+1:]
	}
	if head == "" {
		return nil
	}

	dir, prefix := s.cwd, word
	if i := strings.LastIndexByte(word, '/'); i >= 0 {
		dir, prefix = s.resolve(word[:i+1]), word[i+1:]
	}

	e, err := s.app.session.Entities().Get(ctx, dir)
	if err != nil {
		return nil
	}
	g, err := entity.AsGroupWithChildren(e)
	if err != nil {
		return nil
	}

	base := word[:len(word)-len(prefix)]
	var out []string
	for _, c := range g.Children {
		if strings.HasPrefix(c.Name(), prefix) {
			out = append(out, head+base+c.Name())
		}
	}
	return out
}
