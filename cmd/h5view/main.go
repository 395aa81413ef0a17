// h5view browses HDF5 files through the h5core caches.
//
// Usage:
//
//	h5view [global flags] <command> [flags] [args]
//
// Commands:
//
//	tree [path]        Print the group hierarchy
//	info <path>        Describe an entity, its attributes and visualizations
//	slice <path>       Print a 1-D or 2-D projection of a dataset
//	domain <path>      Compute the color or axis domain of a dataset
//	export <path>      Write a projection to a file
//	health             Probe the source and print a health report
//	serve              Serve /health, /healthz and /metrics
//	browse             Interactive shell
//
// Without --config the built-in sample file is served from memory.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
