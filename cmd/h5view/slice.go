package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/natefinch/atomic"
	flag "github.com/spf13/pflag"

	"github.com/jonwraymond/h5core/domain"
	"github.com/jonwraymond/h5core/ndview"
	"github.com/jonwraymond/h5core/provider"
	"github.com/jonwraymond/h5core/provider/h5grove"
)

func sliceCmd() *Command {
	fs := flag.NewFlagSet("slice", flag.ContinueOnError)
	var vf viewFlags
	vf.register(fs)
	asJSON := fs.Bool("json", false, "print the projection as JSON")

	return &Command{
		Flags: fs,
		Usage: "slice <path> [flags]",
		Short: "Print a 1-D or 2-D projection of a dataset",
		Exec: func(ctx context.Context, a *app, args []string) error {
			if len(args) != 1 {
				return errUsage
			}
			v, err := resolveView(ctx, a, args[0], vf)
			if err != nil {
				return err
			}
			arr, err := v.project(ctx, a)
			if err != nil {
				return err
			}

			if *asJSON {
				enc := json.NewEncoder(a.out)
				return enc.Encode(sliceJSON(v, arr))
			}
			selection, _ := v.mapper.Selection()
			fmt.Fprintf(a.out, "# %s %s %v selection=%q\n", v.ds.Path(), v.kind, arr.Shape, selection)
			return printArray(a.out, arr)
		},
	}
}

// sliceDoc is the JSON form of a projection.
type sliceDoc struct {
	Path      string    `json:"path"`
	Vis       string    `json:"vis"`
	Mapping   any       `json:"mapping"`
	Selection string    `json:"selection,omitempty"`
	Shape     []int     `json:"shape"`
	Data      []float64 `json:"data"`
}

func sliceJSON(v *view, arr ndview.Array[float64]) sliceDoc {
	selection, _ := v.mapper.Selection()
	flat := arr.Materialize()
	return sliceDoc{
		Path:      v.ds.Path(),
		Vis:       string(v.kind),
		Mapping:   v.mapper.Mapping(),
		Selection: selection,
		Shape:     flat.Shape,
		Data:      flat.Data,
	}
}

func domainCmd() *Command {
	fs := flag.NewFlagSet("domain", flag.ContinueOnError)
	var vf viewFlags
	vf.register(fs)
	scale := fs.String("scale", "linear", "scale: linear, log or symlog")
	full := fs.Bool("full", false, "use the whole dataset instead of the current slice")
	minFlag := fs.String("min", "", "custom lower bound")
	maxFlag := fs.String("max", "", "custom upper bound")
	extend := fs.Float64("extend", 0, "extend the domain by this factor")

	return &Command{
		Flags: fs,
		Usage: "domain <path> [flags]",
		Short: "Compute the color or axis domain of a dataset",
		Exec: func(ctx context.Context, a *app, args []string) error {
			if len(args) != 1 {
				return errUsage
			}
			st, err := domain.ParseScaleType(*scale)
			if err != nil {
				return err
			}
			custom, err := parseCustom(*minFlag, *maxFlag)
			if err != nil {
				return err
			}

			v, err := resolveView(ctx, a, args[0], vf)
			if err != nil {
				return err
			}
			arr, err := v.project(ctx, a)
			if err != nil {
				return err
			}

			var whole []float64
			if *full {
				val, err := a.session.Values().Get(ctx, provider.ValueRequest{Path: v.ds.Path()})
				if err != nil {
					return err
				}
				var ok bool
				if whole, ok = val.Float64s(); !ok {
					return fmt.Errorf("%s: values are not numeric", v.ds.Path())
				}
			}

			tracker := domain.NewTracker(st)
			tracker.SetAutoScale(!*full)
			tracker.Update(arr.Materialize().Data, whole)
			// The first read after new data ignores the custom bounds.
			tracker.Displayed()
			tracker.SetCustom(custom)

			data, ok := tracker.DataDomain()
			if !ok {
				return fmt.Errorf("%s: no value can be shown on a %s scale", v.ds.Path(), st)
			}
			shown, warnings, _ := tracker.Displayed()
			if *extend > 0 {
				if shown, err = domain.ExtendDomain(shown, *extend, st); err != nil {
					return err
				}
			}

			fmt.Fprintf(a.out, "scale:   %s\n", st)
			fmt.Fprintf(a.out, "data:    [%s, %s]\n", formatValue(data[0]), formatValue(data[1]))
			fmt.Fprintf(a.out, "domain:  [%s, %s]\n", formatValue(shown[0]), formatValue(shown[1]))
			if warnings.Any() {
				fmt.Fprintf(a.out, "warnings: %s\n", warnings)
			}
			return nil
		},
	}
}

func parseCustom(lo, hi string) (domain.CustomDomain, error) {
	var c domain.CustomDomain
	for _, b := range []struct {
		s   string
		dst **float64
	}{{lo, &c.Min}, {hi, &c.Max}} {
		if b.s == "" {
			continue
		}
		f, err := strconv.ParseFloat(b.s, 64)
		if err != nil {
			return c, fmt.Errorf("%w: bound %q", domain.ErrInvalid, b.s)
		}
		*b.dst = domain.Bound(f)
	}
	return c, nil
}

// errNoOutput reports an export without a destination.
var errNoOutput = errors.New("export needs --out or --remote")

func exportCmd() *Command {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	var vf viewFlags
	vf.register(fs)
	out := fs.StringP("out", "o", "", "file to write")
	format := fs.String("format", "csv", "file format: csv or json")
	remote := fs.Bool("remote", false, "print the h5grove download URL instead of writing a file")

	return &Command{
		Flags: fs,
		Usage: "export <path> [flags]",
		Short: "Write a projection to a file",
		Exec: func(ctx context.Context, a *app, args []string) error {
			if len(args) != 1 {
				return errUsage
			}
			if *out == "" && !*remote {
				return errNoOutput
			}
			v, err := resolveView(ctx, a, args[0], vf)
			if err != nil {
				return err
			}

			if *remote {
				src, ok := a.src.(*h5grove.Source)
				if !ok {
					return fmt.Errorf("%s source has no download URL", a.cfg.Source.Kind)
				}
				selection, _ := v.mapper.Selection()
				u, ok := src.ExportURL(v.ds, selection, *format)
				if !ok {
					return fmt.Errorf("%s: cannot be exported as %s", v.ds.Path(), *format)
				}
				fmt.Fprintln(a.out, u)
				return nil
			}

			arr, err := v.project(ctx, a)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			switch *format {
			case "json":
				err = json.NewEncoder(&buf).Encode(sliceJSON(v, arr))
			case "csv":
				err = writeCSV(&buf, arr)
			default:
				return fmt.Errorf("unknown format %q", *format)
			}
			if err != nil {
				return err
			}

			if err := atomic.WriteFile(*out, &buf); err != nil {
				return fmt.Errorf("writing %s: %w", *out, err)
			}
			fmt.Fprintf(a.out, "wrote %s %v to %s\n", v.ds.Path(), arr.Shape, *out)
			return nil
		},
	}
}

// writeCSV writes one record per row; a line is a single record.
func writeCSV(buf *bytes.Buffer, arr ndview.Array[float64]) error {
	var rows [][]float64
	switch arr.Rank() {
	case 0:
		rows = [][]float64{{arr.At()}}
	case 1:
		rows = [][]float64{arr.Materialize().Data}
	case 2:
		var err error
		if rows, err = arr.Rows(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: cannot write rank %d", ndview.ErrShapeMismatch, arr.Rank())
	}

	w := csv.NewWriter(buf)
	for _, row := range rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = formatValue(v)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
