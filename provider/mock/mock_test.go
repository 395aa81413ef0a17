package mock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jonwraymond/h5core/entity"
	"github.com/jonwraymond/h5core/provider"
)

func newSmall(t *testing.T, opts ...Option) *Source {
	t.Helper()
	s := New(opts...)
	f64 := entity.FloatType(64, entity.LittleEndian)
	if err := s.AddGroup("/g", Attrs{"NX_class": "NXdata"}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddGroup("/g/sub", nil); err != nil {
		t.Fatal(err)
	}
	if err := s.AddDataset("/g/d", entity.Shape{2, 3}, f64, []float64{1, 2, 3, 4, 5, 6}, nil); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSource_FetchEntityGroup(t *testing.T) {
	s := newSmall(t)

	e, err := s.FetchEntity(context.Background(), "/g")
	if err != nil {
		t.Fatalf("FetchEntity() error = %v", err)
	}
	g, err := entity.AsGroupWithChildren(e)
	if err != nil {
		t.Fatalf("AsGroupWithChildren() error = %v", err)
	}
	if len(g.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(g.Children))
	}
	sub := g.Children[0].(*entity.Group)
	if sub.HasChildren() {
		t.Error("child group should be listed without children")
	}
	if _, ok := g.Children[1].(*entity.Dataset); !ok {
		t.Errorf("second child = %T, want *entity.Dataset", g.Children[1])
	}
	if !entity.HasAttribute(g, "NX_class") {
		t.Error("NX_class attribute missing")
	}
}

func TestSource_NotFound(t *testing.T) {
	s := newSmall(t)
	if _, err := s.FetchEntity(context.Background(), "/nope"); !errors.Is(err, provider.ErrNotFound) {
		t.Errorf("FetchEntity() error = %v, want ErrNotFound", err)
	}
}

func TestSource_FetchValueSelection(t *testing.T) {
	s := newSmall(t)
	ctx := context.Background()

	tests := []struct {
		selection string
		wantData  []float64
		wantShape []int
	}{
		{"1,:", []float64{4, 5, 6}, []int{3}},
		{":,2", []float64{3, 6}, []int{2}},
		{"0,1", []float64{2}, []int{}},
	}

	for _, tt := range tests {
		v, err := s.FetchValue(ctx, provider.ValueRequest{Path: "/g/d", Selection: tt.selection})
		if err != nil {
			t.Fatalf("FetchValue(%q) error = %v", tt.selection, err)
		}
		if diff := cmp.Diff(tt.wantData, v.Data); diff != "" {
			t.Errorf("FetchValue(%q) data mismatch (-want +got):\n%s", tt.selection, diff)
		}
		if diff := cmp.Diff(tt.wantShape, v.Shape); diff != "" {
			t.Errorf("FetchValue(%q) shape mismatch (-want +got):\n%s", tt.selection, diff)
		}
	}

	v, err := s.FetchValue(ctx, provider.ValueRequest{Path: "/g/d"})
	if err != nil {
		t.Fatalf("FetchValue() error = %v", err)
	}
	if diff := cmp.Diff([]int{2, 3}, v.Shape); diff != "" {
		t.Errorf("whole dataset shape mismatch (-want +got):\n%s", diff)
	}
}

func TestSource_FetchValueCancelled(t *testing.T) {
	gate := make(chan struct{})
	s := newSmall(t, WithGate(gate))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := s.FetchValue(ctx, provider.ValueRequest{Path: "/g/d"})
		errc <- err
	}()

	cancel()
	select {
	case err := <-errc:
		if !errors.Is(err, provider.ErrCancelled) {
			t.Errorf("FetchValue() error = %v, want ErrCancelled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("FetchValue() did not return after cancel")
	}
}

func TestSource_AddErrors(t *testing.T) {
	s := newSmall(t)
	f64 := entity.FloatType(64, entity.LittleEndian)

	if err := s.AddGroup("/g", nil); err == nil {
		t.Error("duplicate path should fail")
	}
	if err := s.AddGroup("/missing/child", nil); err == nil {
		t.Error("missing parent should fail")
	}
	if err := s.AddGroup("/g/d/under_dataset", nil); err == nil {
		t.Error("dataset parent should fail")
	}
	if err := s.AddDataset("/g/bad", entity.Shape{4}, f64, []float64{1}, nil); err == nil {
		t.Error("size mismatch should fail")
	}
}

func TestSource_AttrValues(t *testing.T) {
	s := newSmall(t)
	got, err := s.FetchAttrValues(context.Background(), "/g")
	if err != nil {
		t.Fatalf("FetchAttrValues() error = %v", err)
	}
	if got["NX_class"] != "NXdata" {
		t.Errorf("NX_class = %v", got["NX_class"])
	}
}

func TestNewSample(t *testing.T) {
	s := NewSample()
	e, err := s.FetchEntity(context.Background(), "/nexus_entry/image")
	if err != nil {
		t.Fatalf("FetchEntity() error = %v", err)
	}
	ds := e.(*entity.Dataset)
	if diff := cmp.Diff(entity.Shape{3, 9, 20, 41}, ds.Shape); diff != "" {
		t.Errorf("image shape mismatch (-want +got):\n%s", diff)
	}
}
