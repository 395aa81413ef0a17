package cache

import (
	"strings"
	"testing"
)

type selectionKey struct {
	Path      string         `json:"path"`
	Selection string         `json:"selection,omitempty"`
	Hints     map[string]any `json:"hints,omitempty"`
}

func TestKeyer_DeterministicForMaps(t *testing.T) {
	keyer := NewDefaultKeyer()

	map1 := map[string]any{"b": 2, "a": 1, "c": 3}
	map2 := map[string]any{"a": 1, "c": 3, "b": 2}

	key1, err := keyer.Key("values", map1)
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}
	key2, err := keyer.Key("values", map2)
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}

	if key1 != key2 {
		t.Errorf("Keys should be equal for same content:\n  key1=%s\n  key2=%s", key1, key2)
	}
}

func TestKeyer_AbsentFieldsCollide(t *testing.T) {
	keyer := NewDefaultKeyer()

	tests := []struct {
		name string
		a, b any
	}{
		{"null field vs missing", map[string]any{"a": nil}, map[string]any{}},
		{"nested null vs missing", map[string]any{"x": 1, "o": map[string]any{"a": nil}}, map[string]any{"x": 1}},
		{"struct empty hints vs nil hints",
			selectionKey{Path: "/d", Hints: map[string]any{}},
			selectionKey{Path: "/d"}},
		{"struct null hint vs nil hints",
			selectionKey{Path: "/d", Selection: "0,:", Hints: map[string]any{"dtype": nil}},
			selectionKey{Path: "/d", Selection: "0,:"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ka, err := keyer.Key("values", tt.a)
			if err != nil {
				t.Fatalf("Key(a) error = %v", err)
			}
			kb, err := keyer.Key("values", tt.b)
			if err != nil {
				t.Fatalf("Key(b) error = %v", err)
			}
			if ka != kb {
				t.Errorf("Keys should collide:\n  a=%s\n  b=%s", ka, kb)
			}
		})
	}
}

func TestKeyer_DistinctContent(t *testing.T) {
	keyer := NewDefaultKeyer()

	tests := []struct {
		name string
		a, b any
	}{
		{"array order", map[string]any{"items": []any{1, 2, 3}}, map[string]any{"items": []any{3, 2, 1}}},
		{"selection", selectionKey{Path: "/d", Selection: "0,:"}, selectionKey{Path: "/d", Selection: "1,:"}},
		{"path", selectionKey{Path: "/a"}, selectionKey{Path: "/b"}},
		{"zero vs missing", map[string]any{"a": 0}, map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ka, _ := keyer.Key("values", tt.a)
			kb, _ := keyer.Key("values", tt.b)
			if ka == kb {
				t.Errorf("Keys should differ: %s", ka)
			}
		})
	}
}

func TestKeyer_DifferentNamespacesDifferentKeys(t *testing.T) {
	keyer := NewDefaultKeyer()

	key1, _ := keyer.Key("entities", "/a")
	key2, _ := keyer.Key("values", "/a")

	if key1 == key2 {
		t.Errorf("Keys should differ for different namespaces:\n  key1=%s\n  key2=%s", key1, key2)
	}
}

func TestKeyer_KeyFormat(t *testing.T) {
	keyer := NewDefaultKeyer()

	key, err := keyer.Key("entities", "/group/dataset")
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}

	prefix := "entities:"
	if !strings.HasPrefix(key, prefix) {
		t.Errorf("Key should have prefix %q, got %q", prefix, key)
	}

	hash := strings.TrimPrefix(key, prefix)
	if len(hash) != 64 {
		t.Errorf("Hash should be 64 characters, got %d: %q", len(hash), hash)
	}
	for _, c := range hash {
		isLowerHex := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
		if !isLowerHex {
			t.Errorf("Hash should be lowercase hex, got character %q in %q", string(c), hash)
			break
		}
	}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "null"},
		{"string", "/a", `"/a"`},
		{"sorted", map[string]any{"b": 1, "a": 2}, `{"a":2,"b":1}`},
		{"pruned", map[string]any{"a": nil, "b": map[string]any{"c": nil}}, `{}`},
		{"array nulls kept", []any{nil, 1}, `[null,1]`},
		{"large int preserved", map[string]any{"n": int64(1) << 60}, `{"n":1152921504606846976}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.in)
			if err != nil {
				t.Fatalf("Canonicalize() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Canonicalize() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCanonicalize_Unsupported(t *testing.T) {
	if _, err := Canonicalize(map[string]any{"ch": make(chan int)}); err == nil {
		t.Error("Canonicalize(chan) should error")
	}
}
