package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/jonwraymond/h5core/config"
	"github.com/jonwraymond/h5core/observe"
	"github.com/jonwraymond/h5core/provider"
	"github.com/jonwraymond/h5core/provider/h5grove"
	"github.com/jonwraymond/h5core/provider/mock"
	"github.com/jonwraymond/h5core/resilience"
)

// globalFlags are parsed before the command name.
type globalFlags struct {
	configPath string
	source     string
	url        string
	file       string
	logLevel   string
}

func newGlobalFlagSet(g *globalFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("h5view", flag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.StringVarP(&g.configPath, "config", "c", "", "JSONC config file")
	fs.StringVar(&g.source, "source", "", "source kind: mock or h5grove")
	fs.StringVar(&g.url, "url", "", "h5grove server URL")
	fs.StringVarP(&g.file, "file", "f", "", "file served by the h5grove server")
	fs.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn or error")
	return fs
}

// apply overrides cfg with the flags that were set.
func (g *globalFlags) apply(cfg *config.Config) error {
	if g.source != "" {
		cfg.Source.Kind = g.source
	}
	if g.url != "" {
		cfg.Source.URL = g.url
		if g.source == "" {
			cfg.Source.Kind = config.SourceH5grove
		}
	}
	if g.file != "" {
		cfg.Source.File = g.file
	}
	if g.logLevel != "" {
		cfg.Observe.Logging.Enabled = true
		cfg.Observe.Logging.Level = g.logLevel
	}
	return cfg.Validate()
}

// app holds what every command needs: the open session and its source.
type app struct {
	cfg    config.Config
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	obs     observe.Observer
	logger  observe.Logger
	src     provider.DataSource
	breaker *resilience.CircuitBreaker
	session *provider.Session
}

// open builds the source, the observer and the session described by cfg.
func open(ctx context.Context, cfg config.Config, in io.Reader, out, errOut io.Writer) (*app, error) {
	a := &app{cfg: cfg, in: in, out: out, errOut: errOut}

	obs, err := observe.NewObserver(ctx, cfg.Observe, observe.WithLogWriter(errOut))
	if err != nil {
		return nil, fmt.Errorf("observability: %w", err)
	}
	a.obs = obs
	a.logger = obs.Logger()

	if err := a.openSource(ctx); err != nil {
		a.shutdown(ctx)
		return nil, err
	}

	a.session, err = provider.NewSession(a.src,
		provider.WithObserver(obs),
		provider.WithSourceName(cfg.Source.Kind),
		provider.WithMaxConcurrentFetches(cfg.Cache.MaxConcurrentFetches),
		provider.WithWalkConcurrency(cfg.Cache.WalkConcurrency),
	)
	if err != nil {
		a.shutdown(ctx)
		return nil, err
	}
	return a, nil
}

func (a *app) openSource(ctx context.Context) error {
	switch a.cfg.Source.Kind {
	case config.SourceMock:
		a.src = mock.NewSample()
		return nil

	case config.SourceH5grove:
		exec := a.cfg.Retry.Executor(a.cfg.Source.URL, func(from, to resilience.State) {
			a.logger.Warn(ctx, "circuit breaker state changed",
				observe.Field{Key: "from", Value: from.String()},
				observe.Field{Key: "to", Value: to.String()})
		})
		a.breaker = exec.CircuitBreaker()

		opts := []h5grove.Option{h5grove.WithExecutor(exec)}
		if a.cfg.Source.JSONOnly {
			opts = append(opts, h5grove.WithoutBinary())
		}
		src, err := h5grove.New(a.cfg.Source.URL, a.cfg.Source.File, opts...)
		if err != nil {
			return err
		}
		a.src = src
		return nil

	default:
		return fmt.Errorf("%w: %q", config.ErrInvalidSourceKind, a.cfg.Source.Kind)
	}
}

// Close closes the session and flushes telemetry.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.session != nil {
		errs = append(errs, a.session.Close())
	}
	errs = append(errs, a.shutdown(ctx))
	return errors.Join(errs...)
}

func (a *app) shutdown(ctx context.Context) error {
	if a.obs == nil {
		return nil
	}
	return a.obs.Shutdown(context.WithoutCancel(ctx))
}

// run is main without the process exit, returning the exit code.
func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	var g globalFlags
	global := newGlobalFlagSet(&g)
	global.SetOutput(io.Discard)
	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(out, global)
			return 0
		}
		fmt.Fprintln(errOut, "error:", err)
		printUsage(errOut, global)
		return 1
	}

	rest := global.Args()
	if len(rest) == 0 || rest[0] == "help" {
		printUsage(out, global)
		return 0
	}

	cmd := findCommand(commands(), rest[0])
	if cmd == nil {
		fmt.Fprintln(errOut, "error: unknown command:", rest[0])
		printUsage(errOut, global)
		return 1
	}

	cfg, err := config.Load(g.configPath)
	if err == nil {
		err = g.apply(&cfg)
	}
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	a, err := open(ctx, cfg, in, out, errOut)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	code := cmd.Run(ctx, a, rest[1:])
	if err := a.Close(ctx); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		if code == 0 {
			code = 1
		}
	}
	return code
}
