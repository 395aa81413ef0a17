package h5grove

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jonwraymond/h5core/dimmap"
	"github.com/jonwraymond/h5core/entity"
	"github.com/jonwraymond/h5core/provider"
	"github.com/jonwraymond/h5core/resilience"
)

const rootMeta = `{
  "name": "",
  "type": "group",
  "attributes": [{"name": "NX_class", "dtype": "|S7", "shape": []}],
  "children": [
    {"name": "data", "type": "group", "attributes": []},
    {"name": "twoD", "type": "dataset", "dtype": "<f8", "shape": [2, 3], "attributes": [],
     "chunks": [1, 3], "filters": [{"id": 1, "name": "deflate"}]},
    {"name": "counts", "type": "dataset", "dtype": "<i8", "shape": [3], "attributes": []},
    {"name": "scalar", "type": "dataset", "dtype": "<i4", "shape": [], "attributes": []},
    {"name": "compound", "type": "dataset", "dtype": {"x": "<f4", "label": "|O"}, "shape": [2], "attributes": []},
    {"name": "soft", "type": "soft_link", "target_path": "/data"},
    {"name": "ext", "type": "external_link", "target_file": "other.h5", "target_path": "/entry"}
  ]
}`

func float64Bytes(vals ...float64) []byte {
	buf := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

// fakeServer mimics the h5grove endpoints for one file.
type fakeServer struct {
	t        *testing.T
	failures atomic.Int32
	requests atomic.Int32
	lastData atomic.Value
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)
	q := r.URL.Query()
	if q.Get("file") != "sample.h5" {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "File not found!"}`))
		return
	}
	if f.failures.Load() > 0 {
		f.failures.Add(-1)
		w.WriteHeader(http.StatusBadGateway)
		return
	}

	path := q.Get("path")
	switch r.URL.Path {
	case "/meta/":
		switch path {
		case "/":
			_, _ = w.Write([]byte(rootMeta))
		case "/twoD":
			_, _ = w.Write([]byte(`{"name": "twoD", "type": "dataset", "dtype": "<f8", "shape": [2, 3], "attributes": []}`))
		case "/broken":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message": "Cannot resolve /broken"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message": "` + path + ` is not a valid path"}`))
		}

	case "/data/":
		f.lastData.Store(q.Encode())
		switch {
		case path == "/twoD" && q.Get("format") == "bin":
			if q.Get("dtype") != "safe" {
				f.t.Errorf("binary request without dtype=safe: %s", q.Encode())
			}
			if q.Get("selection") == "1,:" {
				_, _ = w.Write(float64Bytes(4, 5, 6))
				return
			}
			_, _ = w.Write(float64Bytes(1, 2, 3, 4, 5, 6))
		case path == "/twoD":
			_, _ = w.Write([]byte(`[[1, 2, 3], [4, 5, 6]]`))
		case path == "/counts":
			_, _ = w.Write(float64Bytes(10, 20, 30))
		case path == "/scalar":
			buf := make([]byte, 4)
			binary.LittleEndian.PutUint32(buf, uint32(42))
			_, _ = w.Write(buf)
		case path == "/compound":
			_, _ = w.Write([]byte(`[[1.5, "a"], [2.5, "b"]]`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message": "not a valid path"}`))
		}

	case "/attr/":
		_ = json.NewEncoder(w).Encode(map[string]any{"NX_class": "NXroot", "version": 3})

	default:
		http.NotFound(w, r)
	}
}

func newTestSource(t *testing.T, opts ...Option) (*Source, *fakeServer) {
	t.Helper()
	fake := &fakeServer{t: t}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	src, err := New(srv.URL, "sample.h5", opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = src.Close() })
	return src, fake
}

func TestNew_InvalidURL(t *testing.T) {
	for _, u := range []string{"", "localhost:8888", "ftp://host/", "http://"} {
		if _, err := New(u, "f.h5"); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("New(%q) error = %v, want ErrInvalidURL", u, err)
		}
	}
}

func TestFetchEntity_Group(t *testing.T) {
	src, _ := newTestSource(t)

	e, err := src.FetchEntity(context.Background(), "/")
	if err != nil {
		t.Fatalf("FetchEntity() error = %v", err)
	}
	g, err := entity.AsGroupWithChildren(e)
	if err != nil {
		t.Fatal(err)
	}

	var paths []string
	for _, c := range g.Children {
		paths = append(paths, c.Path())
	}
	want := []string{"/data", "/twoD", "/counts", "/scalar", "/compound", "/soft", "/ext"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}

	if !cmp.Equal(g.Attributes()[0].Type, entity.StrType("ASCII", 7)) {
		t.Errorf("attribute type = %+v", g.Attributes()[0].Type)
	}
	if sub := g.Children[0].(*entity.Group); sub.HasChildren() {
		t.Error("child group should not carry children")
	}

	ds := g.Children[1].(*entity.Dataset)
	if diff := cmp.Diff(entity.Shape{2, 3}, ds.Shape); diff != "" {
		t.Errorf("shape mismatch (-want +got):\n%s", diff)
	}
	if !cmp.Equal(ds.Type, entity.FloatType(64, entity.LittleEndian)) {
		t.Errorf("dtype = %v", ds.Type)
	}
	if len(ds.Filters) != 1 || ds.Filters[0].Name != "deflate" {
		t.Errorf("filters = %+v", ds.Filters)
	}

	cmpd := g.Children[4].(*entity.Dataset)
	if cmpd.Type.Class != entity.ClassCompound || !cmp.Equal(cmpd.Type.Fields["x"], entity.FloatType(32, entity.LittleEndian)) {
		t.Errorf("compound dtype = %+v", cmpd.Type)
	}

	soft := g.Children[5]
	if soft.Kind() != entity.KindUnresolved || *soft.Link() != (entity.Link{Class: entity.LinkSoft, Path: "/data"}) {
		t.Errorf("soft link = %+v", soft.Link())
	}
	ext := g.Children[6]
	if *ext.Link() != (entity.Link{Class: entity.LinkExternal, File: "other.h5", Path: "/entry"}) {
		t.Errorf("external link = %+v", ext.Link())
	}
}

func TestFetchEntity_Errors(t *testing.T) {
	src, _ := newTestSource(t, WithExecutor(resilience.NewExecutor(
		resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond})),
	)))
	ctx := context.Background()

	_, err := src.FetchEntity(ctx, "/missing")
	if !errors.Is(err, provider.ErrNotFound) {
		t.Errorf("missing path error = %v, want ErrNotFound", err)
	}
	if !resilience.IsPermanent(err) {
		t.Error("missing path should be permanent")
	}

	if _, err := src.FetchEntity(ctx, "/broken"); !errors.Is(err, ErrUnresolvable) {
		t.Errorf("broken link error = %v, want ErrUnresolvable", err)
	}

	other, err := New(src.base.String(), "nope.h5")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.FetchEntity(ctx, "/"); !errors.Is(err, provider.ErrNotFound) {
		t.Errorf("missing file error = %v, want ErrNotFound", err)
	}
}

func TestFetchEntity_RetriesServerErrors(t *testing.T) {
	src, fake := newTestSource(t, WithExecutor(resilience.NewExecutor(
		resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond})),
	)))
	fake.failures.Store(2)

	if _, err := src.FetchEntity(context.Background(), "/twoD"); err != nil {
		t.Fatalf("FetchEntity() error = %v", err)
	}
	if got := fake.requests.Load(); got != 3 {
		t.Errorf("requests = %d, want 3", got)
	}
}

func TestFetchEntity_ServerErrorWithoutRetry(t *testing.T) {
	src, fake := newTestSource(t)
	fake.failures.Store(1)

	_, err := src.FetchEntity(context.Background(), "/")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadGateway {
		t.Fatalf("error = %v, want StatusError 502", err)
	}
	if resilience.IsPermanent(err) {
		t.Error("5xx should be transient")
	}
}

func TestFetchValue(t *testing.T) {
	src, _ := newTestSource(t)
	ctx := context.Background()
	if _, err := src.FetchEntity(ctx, "/"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		req       provider.ValueRequest
		wantData  any
		wantShape []int
	}{
		{
			name:      "binary",
			req:       provider.ValueRequest{Path: "/twoD"},
			wantData:  []float64{1, 2, 3, 4, 5, 6},
			wantShape: []int{2, 3},
		},
		{
			name:      "binary selection",
			req:       provider.ValueRequest{Path: "/twoD", Selection: "1,:"},
			wantData:  []float64{4, 5, 6},
			wantShape: []int{3},
		},
		{
			name:      "int64 sent as float64",
			req:       provider.ValueRequest{Path: "/counts"},
			wantData:  []float64{10, 20, 30},
			wantShape: []int{3},
		},
		{
			name:      "scalar",
			req:       provider.ValueRequest{Path: "/scalar"},
			wantData:  int32(42),
			wantShape: []int{},
		},
		{
			name:      "json forced",
			req:       provider.ValueRequest{Path: "/twoD", Hints: map[string]any{"format": "json"}},
			wantData:  []float64{1, 2, 3, 4, 5, 6},
			wantShape: []int{2, 3},
		},
		{
			name:      "non numeric",
			req:       provider.ValueRequest{Path: "/compound"},
			wantData:  []any{1.5, "a", 2.5, "b"},
			wantShape: []int{2, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := src.FetchValue(ctx, tt.req)
			if err != nil {
				t.Fatalf("FetchValue() error = %v", err)
			}
			if diff := cmp.Diff(tt.wantData, v.Data); diff != "" {
				t.Errorf("data mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantShape, v.Shape); diff != "" {
				t.Errorf("shape mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFetchValue_UnknownDatasetUsesJSON(t *testing.T) {
	src, fake := newTestSource(t)

	v, err := src.FetchValue(context.Background(), provider.ValueRequest{Path: "/twoD"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{2, 3}, v.Shape); diff != "" {
		t.Errorf("shape mismatch (-want +got):\n%s", diff)
	}
	if q, _ := fake.lastData.Load().(string); q != "file=sample.h5&format=json&path=%2FtwoD" {
		t.Errorf("query = %q", q)
	}
}

func TestFetchValue_Cancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	src, err := New(srv.URL, "sample.h5")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err = src.FetchValue(ctx, provider.ValueRequest{Path: "/twoD"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("FetchValue() error = %v, want context.Canceled", err)
	}
}

func TestFetchAttrValues(t *testing.T) {
	src, _ := newTestSource(t)

	got, err := src.FetchAttrValues(context.Background(), "/")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"NX_class": "NXroot", "version": json.Number("3")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("attrs mismatch (-want +got):\n%s", diff)
	}
}

func TestExportURL(t *testing.T) {
	src, err := New("http://localhost:8888/h5grove/", "water.h5")
	if err != nil {
		t.Fatal(err)
	}

	ds := &entity.Dataset{Base: entity.Base{EntityPath: "/entry/data"}, Type: entity.FloatType(32, entity.LittleEndian)}
	got, ok := src.ExportURL(ds, "0,:", "npy")
	want := "http://localhost:8888/h5grove/data/?file=water.h5&format=npy&path=%2Fentry%2Fdata&selection=0%2C%3A"
	if !ok || got != want {
		t.Errorf("ExportURL() = %q, %v\nwant %q", got, ok, want)
	}

	str := &entity.Dataset{Base: entity.Base{EntityPath: "/s"}, Type: entity.StrType("UTF-8", 0)}
	if _, ok := src.ExportURL(str, "", "csv"); ok {
		t.Error("ExportURL() should refuse non-numeric datasets")
	}
}

func TestSession_OverH5grove(t *testing.T) {
	src, fake := newTestSource(t)
	s, err := provider.NewSession(src, provider.WithSourceName("h5grove"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()

	if _, err := s.Entities().Get(ctx, "/"); err != nil {
		t.Fatal(err)
	}
	// dataset metadata comes from the root listing
	if _, err := s.Entities().Get(ctx, "/twoD"); err != nil {
		t.Fatal(err)
	}
	before := fake.requests.Load()
	if before != 1 {
		t.Errorf("requests = %d, want 1", before)
	}

	arr, err := s.Slice(ctx, "/twoD", dimmap.Mapping{dimmap.AxisDim(dimmap.AxisY), dimmap.AxisDim(dimmap.AxisX)})
	if err != nil {
		t.Fatalf("Slice() error = %v", err)
	}
	if diff := cmp.Diff([]float64{1, 2, 3, 4, 5, 6}, arr.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeJSONValue(t *testing.T) {
	tests := []struct {
		body      string
		wantData  any
		wantShape []int
		wantErr   bool
	}{
		{`3.5`, 3.5, []int{}, false},
		{`"text"`, "text", []int{}, false},
		{`[]`, []float64{}, []int{0}, false},
		{`[[1, 2], [3, 4], [5, 6]]`, []float64{1, 2, 3, 4, 5, 6}, []int{3, 2}, false},
		{`[1, null]`, []any{1.0, nil}, []int{2}, false},
		{`[[1, 2], [3]]`, nil, nil, true},
		{`[[1, 2], 3]`, nil, nil, true},
		{`{`, nil, nil, true},
	}

	for _, tt := range tests {
		v, err := decodeJSONValue([]byte(tt.body))
		if (err != nil) != tt.wantErr {
			t.Errorf("decodeJSONValue(%s) error = %v, wantErr %v", tt.body, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			if !errors.Is(err, ErrBadResponse) {
				t.Errorf("decodeJSONValue(%s) error = %v, want ErrBadResponse", tt.body, err)
			}
			continue
		}
		if diff := cmp.Diff(tt.wantData, v.Data); diff != "" {
			t.Errorf("decodeJSONValue(%s) data mismatch (-want +got):\n%s", tt.body, diff)
		}
		if diff := cmp.Diff(tt.wantShape, v.Shape); diff != "" {
			t.Errorf("decodeJSONValue(%s) shape mismatch (-want +got):\n%s", tt.body, diff)
		}
	}
}

func TestBinaryType(t *testing.T) {
	ds := func(dt entity.DType) *entity.Dataset {
		return &entity.Dataset{Shape: entity.Shape{4}, Type: dt}
	}
	tests := []struct {
		name string
		ds   *entity.Dataset
		want entity.DType
		ok   bool
	}{
		{"nil", nil, entity.DType{}, false},
		{"float16", ds(entity.FloatType(16, entity.BigEndian)), entity.FloatType(32, entity.LittleEndian), true},
		{"big-endian float64", ds(entity.FloatType(64, entity.BigEndian)), entity.FloatType(64, entity.LittleEndian), true},
		{"uint64", ds(entity.UintType(64, entity.LittleEndian)), entity.FloatType(64, entity.LittleEndian), true},
		{"int16", ds(entity.IntType(16, entity.BigEndian)), entity.IntType(16, entity.LittleEndian), true},
		{"bool", ds(entity.BoolType()), entity.UintType(8, entity.LittleEndian), true},
		{"string", ds(entity.StrType("UTF-8", 0)), entity.DType{}, false},
		{"null shape", &entity.Dataset{Type: entity.FloatType(64, entity.LittleEndian)}, entity.DType{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := binaryType(tt.ds)
			if ok != tt.ok || !cmp.Equal(got, tt.want) {
				t.Errorf("binaryType() = %v, %v, want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
