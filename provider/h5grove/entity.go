package h5grove

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jonwraymond/h5core/entity"
)

type attrResponse struct {
	Name  string          `json:"name"`
	DType json.RawMessage `json:"dtype"`
	Shape entity.Shape    `json:"shape"`
}

type entityResponse struct {
	Name       string           `json:"name"`
	Type       string           `json:"type"`
	Attributes []attrResponse   `json:"attributes"`
	Children   []entityResponse `json:"children"`
	DType      json.RawMessage  `json:"dtype"`
	Shape      entity.Shape     `json:"shape"`
	Chunks     []int            `json:"chunks"`
	Filters    []entity.Filter  `json:"filters"`
	TargetPath string           `json:"target_path"`
	TargetFile string           `json:"target_file"`
}

// parseEntity converts a /meta/ response. Child groups are returned without
// their own children.
func parseEntity(path string, r entityResponse, child bool) (entity.Entity, error) {
	base := entity.Base{EntityName: r.Name, EntityPath: path}

	switch r.Type {
	case "group":
		attrs, err := parseAttributes(r.Attributes)
		if err != nil {
			return nil, err
		}
		base.Attrs = attrs
		g := &entity.Group{Base: base}
		if child {
			return g, nil
		}
		g.Children = make([]entity.Entity, 0, len(r.Children))
		for _, c := range r.Children {
			ce, err := parseEntity(entity.BuildPath(path, c.Name), c, true)
			if err != nil {
				return nil, err
			}
			g.Children = append(g.Children, ce)
		}
		return g, nil

	case "dataset":
		attrs, err := parseAttributes(r.Attributes)
		if err != nil {
			return nil, err
		}
		base.Attrs = attrs
		dt, err := parseDType(r.DType)
		if err != nil {
			return nil, err
		}
		return &entity.Dataset{
			Base:    base,
			Shape:   r.Shape,
			Type:    dt,
			Chunks:  r.Chunks,
			Filters: r.Filters,
		}, nil

	case "soft_link":
		base.LinkInfo = &entity.Link{Class: entity.LinkSoft, Path: r.TargetPath}
		return &entity.Unresolved{Base: base}, nil

	case "external_link":
		base.LinkInfo = &entity.Link{Class: entity.LinkExternal, File: r.TargetFile, Path: r.TargetPath}
		return &entity.Unresolved{Base: base}, nil

	default:
		return &entity.Unresolved{Base: base}, nil
	}
}

func parseAttributes(in []attrResponse) ([]entity.Attribute, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]entity.Attribute, 0, len(in))
	for _, a := range in {
		dt, err := parseDType(a.DType)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", a.Name, err)
		}
		out = append(out, entity.Attribute{Name: a.Name, Shape: a.Shape, Type: dt})
	}
	return out, nil
}

// parseDType reads a numpy type string, or an object of field name to
// dtype for compound types.
func parseDType(raw json.RawMessage) (entity.DType, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return entity.UnknownType(), nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return entity.ParseNumpyDType(s)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return entity.DType{}, fmt.Errorf("%w: %s", entity.ErrInvalidDType, raw)
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]entity.DType, len(fields))
	for _, name := range names {
		dt, err := parseDType(fields[name])
		if err != nil {
			return entity.DType{}, err
		}
		out[name] = dt
	}
	return entity.CompoundType(out), nil
}
