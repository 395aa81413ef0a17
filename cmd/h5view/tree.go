package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/jonwraymond/h5core/entity"
	"github.com/jonwraymond/h5core/provider"
)

func treeCmd() *Command {
	fs := flag.NewFlagSet("tree", flag.ContinueOnError)
	depth := fs.IntP("depth", "d", -1, "levels to walk, negative for all")

	return &Command{
		Flags: fs,
		Usage: "tree [path]",
		Short: "Print the group hierarchy",
		Exec: func(ctx context.Context, a *app, args []string) error {
			path := entity.RootPath
			switch len(args) {
			case 0:
			case 1:
				path = args[0]
			default:
				return errUsage
			}

			node, err := a.session.Tree(ctx, path, *depth)
			if err != nil {
				return err
			}
			printTree(a.out, node, 0)
			return nil
		},
	}
}

func printTree(w io.Writer, n *provider.Node, level int) {
	name := n.Entity.Name()
	if n.Entity.Path() == entity.RootPath {
		name = ""
	}
	fmt.Fprintf(w, "%s%s%s\n", strings.Repeat("  ", level), name, describe(n.Entity))
	for _, c := range n.Children {
		printTree(w, c, level+1)
	}
}

// describe returns a short suffix for an entity line.
func describe(e entity.Entity) string {
	switch e := e.(type) {
	case *entity.Group:
		return "/"
	case *entity.Dataset:
		return fmt.Sprintf("  %s %s", shapeString(e.Shape), e.Type)
	case *entity.Unresolved:
		if l := e.Link(); l != nil {
			if l.File != "" {
				return fmt.Sprintf("  -> %s:%s", l.File, l.Path)
			}
			return "  -> " + l.Path
		}
	}
	return ""
}

func shapeString(s entity.Shape) string {
	switch {
	case s.IsNull():
		return "null"
	case s.IsScalar():
		return "scalar"
	}
	dims := make([]string, len(s))
	for i, d := range s {
		dims[i] = fmt.Sprint(d)
	}
	return "[" + strings.Join(dims, " x ") + "]"
}
