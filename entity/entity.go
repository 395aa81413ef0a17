package entity

import "errors"

// Kind identifies the variant of an Entity.
type Kind string

const (
	KindGroup      Kind = "group"
	KindDataset    Kind = "dataset"
	KindDatatype   Kind = "datatype"
	KindUnresolved Kind = "unresolved"
)

// Sentinel errors for entity assertions.
var (
	ErrNotGroup      = errors.New("entity: not a group")
	ErrNotDataset    = errors.New("entity: not a dataset")
	ErrNoChildren    = errors.New("entity: group has no children listing")
	ErrInvalidDType  = errors.New("entity: invalid dtype")
	ErrInvalidPath   = errors.New("entity: invalid path")
	ErrNotArrayShape = errors.New("entity: dataset does not have an array shape")
)

// Entity is a node of the hierarchy.
//
// Contract:
// - Immutability: implementations must not be mutated once handed out.
// - Paths: Path is absolute and unique within a file.
type Entity interface {
	Name() string
	Path() string
	Kind() Kind
	Attributes() []Attribute
	Link() *Link
}

// LinkClass describes how an entity was reached.
type LinkClass string

const (
	LinkHard     LinkClass = "Hard"
	LinkSoft     LinkClass = "Soft"
	LinkExternal LinkClass = "External"
)

// Link carries the link information of an entity reached through a soft or
// external link.
type Link struct {
	Class LinkClass `json:"class"`
	File  string    `json:"file,omitempty"`
	Path  string    `json:"path,omitempty"`
}

// Attribute describes an attribute attached to an entity. Values are
// fetched separately.
type Attribute struct {
	Name  string `json:"name"`
	Shape Shape  `json:"shape"`
	Type  DType  `json:"type"`
}

// Base holds the fields shared by every variant.
type Base struct {
	EntityName string      `json:"name"`
	EntityPath string      `json:"path"`
	Attrs      []Attribute `json:"attributes,omitempty"`
	LinkInfo   *Link       `json:"link,omitempty"`
}

func (b *Base) Name() string            { return b.EntityName }
func (b *Base) Path() string            { return b.EntityPath }
func (b *Base) Attributes() []Attribute { return b.Attrs }
func (b *Base) Link() *Link             { return b.LinkInfo }

// HasAttribute reports whether the entity declares an attribute called name.
func HasAttribute(e Entity, name string) bool {
	for _, a := range e.Attributes() {
		if a.Name == name {
			return true
		}
	}
	return false
}

// Group is a container of child entities.
//
// Children is nil when the group was synthesized from its parent's listing
// and has not been fetched itself.
type Group struct {
	Base
	Children []Entity `json:"children,omitempty"`
}

// Kind returns KindGroup.
func (g *Group) Kind() Kind { return KindGroup }

// HasChildren reports whether the group carries its children listing.
func (g *Group) HasChildren() bool { return g.Children != nil }

// Child returns the direct child called name.
func (g *Group) Child(name string) (Entity, bool) {
	for _, c := range g.Children {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// Dataset is an N-dimensional typed array.
type Dataset struct {
	Base
	Shape   Shape    `json:"shape"`
	Type    DType    `json:"type"`
	Chunks  []int    `json:"chunks,omitempty"`
	Filters []Filter `json:"filters,omitempty"`
}

// Kind returns KindDataset.
func (d *Dataset) Kind() Kind { return KindDataset }

// Filter describes a compression or transformation filter on a dataset.
type Filter struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Datatype is a named (committed) datatype.
type Datatype struct {
	Base
	Type *DType `json:"type,omitempty"`
}

// Kind returns KindDatatype.
func (d *Datatype) Kind() Kind { return KindDatatype }

// Unresolved is an entity that could not be resolved, usually a soft or
// external link whose target lives elsewhere.
type Unresolved struct {
	Base
}

// Kind returns KindUnresolved.
func (u *Unresolved) Kind() Kind { return KindUnresolved }

// AsGroup asserts that e is a group.
func AsGroup(e Entity) (*Group, error) {
	g, ok := e.(*Group)
	if !ok {
		return nil, ErrNotGroup
	}
	return g, nil
}

// AsGroupWithChildren asserts that e is a group carrying its children.
func AsGroupWithChildren(e Entity) (*Group, error) {
	g, err := AsGroup(e)
	if err != nil {
		return nil, err
	}
	if !g.HasChildren() {
		return nil, ErrNoChildren
	}
	return g, nil
}

// AsDataset asserts that e is a dataset.
func AsDataset(e Entity) (*Dataset, error) {
	d, ok := e.(*Dataset)
	if !ok {
		return nil, ErrNotDataset
	}
	return d, nil
}

// IsGroup reports whether e is a group.
func IsGroup(e Entity) bool {
	_, ok := e.(*Group)
	return ok
}

// Compile-time interface checks.
var (
	_ Entity = (*Group)(nil)
	_ Entity = (*Dataset)(nil)
	_ Entity = (*Datatype)(nil)
	_ Entity = (*Unresolved)(nil)
)
