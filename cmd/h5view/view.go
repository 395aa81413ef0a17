package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/jonwraymond/h5core/dimmap"
	"github.com/jonwraymond/h5core/entity"
	"github.com/jonwraymond/h5core/ndview"
	"github.com/jonwraymond/h5core/vis"
)

// attrDefaultSlice is the NeXus attribute seeding slice indices.
const attrDefaultSlice = "default_slice"

// viewFlags select how a dataset is projected.
type viewFlags struct {
	kind      string
	indices   []string
	transpose bool
}

func (v *viewFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&v.kind, "vis", "", "visualization (Line, Heatmap, Matrix...), default from the dataset")
	fs.StringSliceVarP(&v.indices, "index", "i", nil, "slice index as dim=index, repeatable")
	fs.BoolVarP(&v.transpose, "transpose", "t", false, "swap the x and y roles")
}

// view is a dataset with its resolved visualization and dimension mapping.
type view struct {
	ds     *entity.Dataset
	kind   vis.Kind
	mapper *dimmap.Mapper
}

// resolveView prepares the projection of the dataset at path.
func resolveView(ctx context.Context, a *app, path string, f viewFlags) (*view, error) {
	e, err := a.session.Entities().Get(ctx, path)
	if err != nil {
		return nil, err
	}
	ds, err := entity.AsDataset(e)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if !ds.Shape.IsArray() {
		return nil, fmt.Errorf("%s: %w", path, entity.ErrNotArrayShape)
	}
	attrs, err := a.session.Attrs().Get(ctx, ds)
	if err != nil {
		return nil, err
	}

	kind := vis.Kind(f.kind)
	if kind == "" {
		var ok bool
		if kind, ok = vis.Default(ds, attrs); !ok {
			return nil, fmt.Errorf("%s: no visualization fits the dataset", path)
		}
	} else if !vis.Supports(kind, ds, attrs) {
		return nil, fmt.Errorf("%s: %s cannot display the dataset", path, kind)
	}
	if vis.LockedDims(kind) > 0 {
		return nil, fmt.Errorf("%s: %s keeps whole dimensions, pick another --vis", path, kind)
	}

	axes := vis.AxesCount(kind)
	if axes == 0 {
		axes = min(ds.Shape.Rank(), 2)
	}
	mapper, err := dimmap.NewMapper(ds.Shape, axes)
	if err != nil {
		return nil, err
	}
	if defaults, ok := parseDefaultSlice(attrs[attrDefaultSlice]); ok {
		mapper.ApplyDefaultSlice(defaults)
	}

	for _, spec := range f.indices {
		dim, index, err := parseIndex(spec)
		if err != nil {
			return nil, err
		}
		if err := mapper.SetSliceIndex(dim, index); err != nil {
			return nil, err
		}
	}

	if f.transpose {
		if y := mapper.Mapping().IndexOf(dimmap.AxisY); y >= 0 {
			if err := mapper.AssignRole(dimmap.AxisX, y); err != nil {
				return nil, err
			}
		}
	}

	return &view{ds: ds, kind: kind, mapper: mapper}, nil
}

// project reads and projects the current slice of v.
func (v *view) project(ctx context.Context, a *app) (ndview.Array[float64], error) {
	return a.session.Slice(ctx, v.ds.Path(), v.mapper.Mapping())
}

// parseIndex parses "dim=index".
func parseIndex(s string) (int, int, error) {
	d, i, ok := strings.Cut(s, "=")
	if !ok {
		return 0, 0, fmt.Errorf("%w: index %q, want dim=index", dimmap.ErrInvalid, s)
	}
	dim, err := strconv.Atoi(strings.TrimSpace(d))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: index %q: %w", dimmap.ErrInvalid, s, err)
	}
	index, err := strconv.Atoi(strings.TrimSpace(i))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: index %q: %w", dimmap.ErrInvalid, s, err)
	}
	return dim, index, nil
}

// parseDefaultSlice reads a default_slice attribute: one entry per
// dimension, a number for a fixed index, "." or anything else for a free
// dimension.
func parseDefaultSlice(v any) ([]*int, bool) {
	var items []any
	switch v := v.(type) {
	case []any:
		items = v
	case []string:
		for _, s := range v {
			items = append(items, s)
		}
	default:
		return nil, false
	}

	out := make([]*int, len(items))
	for i, item := range items {
		switch item := item.(type) {
		case float64:
			n := int(item)
			out[i] = &n
		case int:
			out[i] = &item
		case string:
			if n, err := strconv.Atoi(item); err == nil {
				out[i] = &n
			}
		}
	}
	return out, true
}

// printArray prints a scalar, a line of values or one line per row.
func printArray(w io.Writer, arr ndview.Array[float64]) error {
	switch arr.Rank() {
	case 0:
		_, err := fmt.Fprintln(w, formatValue(arr.At()))
		return err
	case 1:
		vals := make([]string, arr.Shape[0])
		for i := range vals {
			vals[i] = formatValue(arr.At(i))
		}
		_, err := fmt.Fprintln(w, strings.Join(vals, " "))
		return err
	case 2:
		rows, err := arr.Rows()
		if err != nil {
			return err
		}
		for _, row := range rows {
			vals := make([]string, len(row))
			for i, v := range row {
				vals[i] = formatValue(v)
			}
			if _, err := fmt.Fprintln(w, strings.Join(vals, " ")); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: cannot print rank %d", ndview.ErrShapeMismatch, arr.Rank())
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
