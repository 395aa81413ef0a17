package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/jonwraymond/h5core/health"
	"github.com/jonwraymond/h5core/observe"
)

// errUnhealthy makes the health command exit non-zero.
var errUnhealthy = errors.New("source is unhealthy")

// newAggregator registers the checks of a: the source itself, its circuit
// breaker when there is one, and the process memory.
func newAggregator(a *app, timeout time.Duration, maxAlloc uint64) *health.Aggregator {
	agg := health.NewAggregator(health.AggregatorConfig{Timeout: timeout})
	agg.Register(health.NewSourceChecker("source", a.src, a.cfg.Source.SlowThreshold.Std()))
	if a.breaker != nil {
		agg.Register(health.NewBreakerChecker("circuit", a.breaker))
	}
	agg.Register(health.NewMemoryChecker(health.MemoryCheckerConfig{MaxAlloc: maxAlloc}))
	return agg
}

func healthCmd() *Command {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	timeout := fs.Duration("timeout", 10*time.Second, "bound on the whole check run")
	maxAlloc := fs.Uint64("max-heap", 0, "heap budget in bytes, 0 for the memory obtained from the OS")

	return &Command{
		Flags: fs,
		Usage: "health [flags]",
		Short: "Probe the source and print a health report",
		Exec: func(ctx context.Context, a *app, args []string) error {
			if len(args) != 0 {
				return errUsage
			}
			report := newAggregator(a, *timeout, *maxAlloc).Report(ctx)
			fmt.Fprint(a.out, report.String())
			if report.Status == health.StatusUnhealthy {
				return errUnhealthy
			}
			return nil
		},
	}
}

func serveCmd() *Command {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", "127.0.0.1:9464", "listen address")
	timeout := fs.Duration("timeout", 10*time.Second, "bound on a health check run")

	return &Command{
		Flags: fs,
		Usage: "serve [flags]",
		Short: "Serve /health, /healthz and /metrics",
		Exec: func(ctx context.Context, a *app, args []string) error {
			if len(args) != 0 {
				return errUsage
			}
			ln, err := net.Listen("tcp", *addr)
			if err != nil {
				return err
			}
			return serve(ctx, a, ln, newAggregator(a, *timeout, 0))
		},
	}
}

// serve answers health and metrics requests on ln until ctx is done.
func serve(ctx context.Context, a *app, ln net.Listener, agg *health.Aggregator) error {
	mux := http.NewServeMux()
	health.RegisterHandlers(mux, agg)
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	a.logger.Info(ctx, "serving", observe.Field{Key: "addr", Value: ln.Addr().String()})

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
