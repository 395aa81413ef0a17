package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jonwraymond/h5core/entity"
	"github.com/jonwraymond/h5core/provider"
	"github.com/jonwraymond/h5core/vis"
)

func infoCmd() *Command {
	return &Command{
		Usage: "info <path>",
		Short: "Describe an entity, its attributes and visualizations",
		Exec: func(ctx context.Context, a *app, args []string) error {
			if len(args) != 1 {
				return errUsage
			}
			return printInfo(ctx, a, args[0])
		},
	}
}

func printInfo(ctx context.Context, a *app, path string) error {
	e, err := a.session.Entities().Get(ctx, path)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "path:  %s\n", e.Path())
	fmt.Fprintf(a.out, "kind:  %s\n", e.Kind())
	if l := e.Link(); l != nil && l.Class != entity.LinkHard {
		fmt.Fprintf(a.out, "link:  %s %s %s\n", l.Class, l.File, l.Path)
	}

	attrs, err := a.session.Attrs().Get(ctx, e)
	if err != nil {
		return err
	}

	if ds, ok := e.(*entity.Dataset); ok {
		fmt.Fprintf(a.out, "shape: %s\n", shapeString(ds.Shape))
		fmt.Fprintf(a.out, "type:  %s\n", ds.Type)
		if len(ds.Chunks) > 0 {
			fmt.Fprintf(a.out, "chunks: %v\n", ds.Chunks)
		}

		if ds.Shape.IsScalar() {
			v, err := a.session.Values().Get(ctx, provider.ValueRequest{Path: ds.Path()})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "value: %v\n", v.Data)
		}

		if supported := vis.Supported(ds, attrs); len(supported) > 0 {
			names := make([]string, len(supported))
			for i, k := range supported {
				names[i] = string(k)
			}
			def, _ := vis.Default(ds, attrs)
			fmt.Fprintf(a.out, "vis:   %s (default %s)\n", strings.Join(names, ", "), def)
		}
	}

	if g, ok := e.(*entity.Group); ok && g.HasChildren() {
		fmt.Fprintf(a.out, "children: %d\n", len(g.Children))
	}

	if len(attrs) > 0 {
		fmt.Fprintln(a.out, "attributes:")
		names := make([]string, 0, len(attrs))
		for name := range attrs {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			fmt.Fprintf(a.out, "  %s = %v\n", name, attrs[name])
		}
	}
	return nil
}
