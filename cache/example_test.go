package cache_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/h5core/cache"
)

func ExampleStore() {
	store := cache.New(func(_ context.Context, path string, _ cache.ProgressFunc) (int, error) {
		fmt.Println("fetching", path)
		return len(path), nil
	}, cache.WithNamespace("lengths"))
	defer store.Close()

	ctx := context.Background()
	a, _ := store.Get(ctx, "/entry/data")
	b, _ := store.Get(ctx, "/entry/data")
	fmt.Println(a, b)
	// Output:
	// fetching /entry/data
	// 11 11
}

func ExampleCanonicalize() {
	a, _ := cache.Canonicalize(map[string]any{"selection": "0,:", "hints": nil})
	b, _ := cache.Canonicalize(map[string]any{"selection": "0,:"})
	fmt.Println(string(a) == string(b), string(a))
	// Output: true {"selection":"0,:"}
}
