package h5grove

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/jonwraymond/h5core/entity"
	"github.com/jonwraymond/h5core/provider"
	"github.com/jonwraymond/h5core/resilience"
)

// Option configures a Source.
type Option func(*Source)

// WithHTTPClient sets the client used for every request.
// Default: a client with no timeout; attempts are bounded by the executor.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Source) {
		if c != nil {
			s.client = c
		}
	}
}

// WithExecutor runs every request through exec.
// Default: requests run once, unguarded.
func WithExecutor(exec *resilience.Executor) Option {
	return func(s *Source) {
		s.exec = exec
	}
}

// WithoutBinary reads every value as JSON.
func WithoutBinary() Option {
	return func(s *Source) {
		s.binary = false
	}
}

// Source reads one file served by h5grove.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Context: requests are bound to ctx; a cancelled value fetch fails
//     with an error matching context.Canceled.
//   - Errors: missing paths and files match provider.ErrNotFound.
type Source struct {
	base   *url.URL
	file   string
	client *http.Client
	exec   *resilience.Executor
	binary bool

	mu       sync.RWMutex
	datasets map[string]*entity.Dataset
}

// New creates a source for the file served at file by the h5grove server
// at serverURL.
func New(serverURL, file string, opts ...Option) (*Source, error) {
	u, err := url.Parse(serverURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, serverURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	s := &Source{
		base:     u,
		file:     file,
		client:   &http.Client{},
		binary:   true,
		datasets: make(map[string]*entity.Dataset),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// File returns the file path sent to the server.
func (s *Source) File() string { return s.file }

// FetchEntity implements provider.DataSource.
func (s *Source) FetchEntity(ctx context.Context, path string) (entity.Entity, error) {
	body, err := s.get(ctx, "meta", url.Values{"path": {path}}, path, false)
	if err != nil {
		return nil, err
	}

	var resp entityResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: meta %s: %v", ErrBadResponse, path, err)
	}
	e, err := parseEntity(path, resp, false)
	if err != nil {
		return nil, fmt.Errorf("meta %s: %w", path, err)
	}
	s.remember(e)
	return e, nil
}

// FetchValue implements provider.DataSource. Numeric datasets already seen
// through FetchEntity are read in binary; others are read as JSON. The hint
// "format": "json" forces JSON.
func (s *Source) FetchValue(ctx context.Context, req provider.ValueRequest) (provider.Value, error) {
	params := url.Values{"path": {req.Path}}
	if req.Selection != "" {
		params.Set("selection", req.Selection)
	}

	ds := s.dataset(req.Path)
	if dt, ok := binaryType(ds); ok && s.binary && req.Hints["format"] != "json" {
		params.Set("format", "bin")
		params.Set("dtype", "safe")
		body, err := s.get(ctx, "data", params, req.Path, true)
		if err != nil {
			return provider.Value{}, err
		}
		data, err := decodeBinary(body, dt)
		if err != nil {
			return provider.Value{}, fmt.Errorf("data %s: %w", req.Path, err)
		}
		if ds.Shape.IsScalar() {
			return provider.Value{Data: first(data), Shape: []int{}}, nil
		}
		shape, err := provider.SelectedShape(ds.Shape, req.Selection)
		if err != nil {
			return provider.Value{}, err
		}
		return provider.Value{Data: data, Shape: shape}, nil
	}

	params.Set("format", "json")
	body, err := s.get(ctx, "data", params, req.Path, true)
	if err != nil {
		return provider.Value{}, err
	}
	return decodeJSONValue(body)
}

// FetchAttrValues implements provider.AttrSource.
func (s *Source) FetchAttrValues(ctx context.Context, path string) (map[string]any, error) {
	body, err := s.get(ctx, "attr", url.Values{"path": {path}}, path, false)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var values map[string]any
	if err := dec.Decode(&values); err != nil {
		return nil, fmt.Errorf("%w: attr %s: %v", ErrBadResponse, path, err)
	}
	return values, nil
}

// ExportURL returns the URL downloading the dataset in format ("npy",
// "csv", "tiff"...), or false for datasets that cannot be exported.
func (s *Source) ExportURL(ds *entity.Dataset, selection, format string) (string, bool) {
	if !ds.Type.IsNumeric() {
		return "", false
	}
	params := url.Values{"path": {ds.Path()}, "format": {format}}
	if selection != "" {
		params.Set("selection", selection)
	}
	return s.endpoint("data", params).String(), true
}

// Close releases idle connections.
func (s *Source) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *Source) endpoint(name string, params url.Values) *url.URL {
	u := *s.base
	u.Path = u.Path + "/" + name + "/"
	q := url.Values{"file": {s.file}}
	for k, v := range params {
		q[k] = v
	}
	u.RawQuery = q.Encode()
	return &u
}

// get performs a GET against an endpoint and returns the body. When
// progress is set, the read progress is reported to the value cache.
func (s *Source) get(ctx context.Context, name string, params url.Values, path string, progress bool) ([]byte, error) {
	target := s.endpoint(name, params).String()

	return resilience.Do(ctx, s.exec, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, resilience.Permanent(err)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var r io.Reader = resp.Body
		if progress && resp.ContentLength > 0 {
			r = &progressReader{r: resp.Body, ctx: ctx, total: resp.ContentLength}
		}
		body, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, s.responseError(resp.StatusCode, body, path)
		}
		return body, nil
	})
}

func (s *Source) remember(e entity.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ds, ok := e.(*entity.Dataset); ok {
		s.datasets[ds.Path()] = ds
	}
	if g, ok := e.(*entity.Group); ok {
		for _, child := range g.Children {
			if ds, ok := child.(*entity.Dataset); ok {
				s.datasets[ds.Path()] = ds
			}
		}
	}
}

func (s *Source) dataset(path string) *entity.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.datasets[path]
}

// progressReader reports how much of a body has been read.
type progressReader struct {
	r     io.Reader
	ctx   context.Context
	total int64
	read  int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	provider.ReportProgress(p.ctx, float64(p.read)/float64(p.total))
	return n, err
}

// Ensure Source implements the provider interfaces
var (
	_ provider.DataSource = (*Source)(nil)
	_ provider.AttrSource = (*Source)(nil)
	_ provider.Closer     = (*Source)(nil)
)
