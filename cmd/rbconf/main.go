package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/benz9527/rbkit/lib/infra"
)

const (
	metricsNone       = ""
	metricsConsole    = "console"
	metricsPrometheus = "prometheus"
)

type options struct {
	configPath string
	key        string
	watch      bool
	metrics    string
	logLevel   string
	plainLog   bool
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := pflag.NewFlagSet("rbconf", pflag.ContinueOnError)
	fs.StringVarP(&opts.configPath, "config", "c", "", "the key=value config file path")
	fs.StringVarP(&opts.key, "key", "k", "", "print the val of the key only")
	fs.BoolVarP(&opts.watch, "watch", "w", false, "reload the config file on change until interrupted")
	fs.StringVar(&opts.metrics, "metrics", metricsNone, "metrics exporter, console or prometheus")
	fs.StringVar(&opts.logLevel, "log-level", "INFO", "DEBUG, INFO, WARN or ERROR")
	fs.BoolVar(&opts.plainLog, "plain-log", false, "plain text log instead of json")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.configPath == "" {
		return nil, infra.NewErrorStack("[rbconf] --config is required")
	}
	switch opts.metrics {
	case metricsNone, metricsConsole, metricsPrometheus:
	default:
		return nil, infra.NewErrorStack("[rbconf] unknown metrics exporter " + opts.metrics)
	}
	return opts, nil
}

func main() {
	_, _ = maxprocs.Set()

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	app := newApp(opts, os.Stdout)
	if err = app.Err(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if opts.watch {
		// Blocks until the SIGINT or SIGTERM.
		app.Run()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err = app.Start(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err = app.Stop(context.Background()); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
