package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/prefetch"
	"github.com/hupe1980/prefetch/codec"
	"github.com/hupe1980/prefetch/signature"
	"github.com/hupe1980/prefetch/sink"
	"github.com/hupe1980/prefetch/source"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefetch QUERY [DATABASE ...]",
		Short: "Find signatures that overlap a query above a threshold",
		Long: `prefetch compares one query signature against every signature in the given
databases and reports all of them that share at least --threshold-bp
estimated base pairs with the query.

Databases are signature files, directories of signature files, or object
store locations such as s3://bucket/prefix/ and minio://bucket/key.sig.

Examples:
  prefetch 47.fa.sig 63.fa.sig 2.fa.sig -k 31
  prefetch 47.fa.sig db/ -k 31 -o matches.csv --save-matches matches.sig.gz
  prefetch 47.fa.sig --db-from-file databases.txt --scaled 1e4`,
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err == nil {
				err = run(cmd.Context(), cfg, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
			}
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), errorLine(err))
			}
			return err
		},
	}
	registerFlags(cmd.Flags())
	return cmd
}

// errorLine renders err the way it is reported to the user.
func errorLine(err error) string {
	switch {
	case errors.Is(err, prefetch.ErrNoSources):
		return "ERROR: no databases or signatures to search!?"
	case errors.Is(err, prefetch.ErrEmptyQuery):
		return "ERROR: no query hashes!? exiting."
	case errors.Is(err, prefetch.ErrNoSearchableSignatures):
		return "ERROR in prefetch_databases: " + err.Error()
	default:
		return "ERROR: " + err.Error()
	}
}

func newLogger(cfg *Config, w io.Writer) (*prefetch.Logger, error) {
	lvl, err := cfg.logLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch cfg.LogFormat {
	case "", "text":
		return prefetch.NewLogger(slog.NewTextHandler(w, opts)), nil
	case "json":
		return prefetch.NewLogger(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.LogFormat)
	}
}

func run(ctx context.Context, cfg *Config, args []string, stdout, stderr io.Writer) (err error) {
	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}
	sel, err := cfg.selection()
	if err != nil {
		return err
	}
	scaled, err := cfg.scaled()
	if err != nil {
		return err
	}
	c, err := codec.ByName(cfg.Codec)
	if err != nil {
		return err
	}

	resolver := newResolver(cfg)

	if sel.Ksize != 0 {
		logger.LogSelection(ctx, sel.Ksize)
	}
	query, err := loadQuery(ctx, resolver, c, args[0], sel)
	if err != nil {
		return err
	}
	logger.LogQuery(ctx, query)

	locs := source.Args(args[1:]...)
	for _, f := range cfg.DBFromFile {
		listed, err := source.FromFile(ctx, resolver, f)
		if err != nil {
			return err
		}
		locs = source.Concat(locs, listed)
	}

	outputs := &outputs{resolver: resolver, stdout: stdout, codec: c}
	defer func() {
		if cerr := outputs.Close(); err == nil {
			err = cerr
		}
	}()
	sinks, err := outputs.open(ctx, cfg)
	if err != nil {
		return err
	}

	src := source.New(resolver, locs,
		source.WithPrefetch(cfg.Prefetch),
		source.WithMemoryLimit(cfg.MemoryLimit),
		source.WithIOLimit(cfg.IOLimit),
		source.WithCodec(c),
	)

	_, err = prefetch.Search(ctx, query, src,
		prefetch.WithThresholdBP(cfg.ThresholdBP),
		prefetch.WithScaled(scaled),
		prefetch.WithProgressEvery(cfg.ProgressEvery),
		prefetch.WithStrictLoading(cfg.Strict),
		prefetch.WithSinks(sinks...),
		prefetch.WithLogger(logger),
	)
	return err
}

func loadQuery(ctx context.Context, r *source.Resolver, c codec.Codec, loc string, sel prefetch.Selection) (*prefetch.Query, error) {
	t, err := r.Resolve(ctx, loc)
	if err != nil {
		return nil, err
	}
	sigs, err := source.NewLoader(c, nil).Load(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("load query: %w", err)
	}
	return prefetch.SelectQuery(sigs, sel)
}

// outputs opens and owns the sinks of one run.
type outputs struct {
	resolver *source.Resolver
	stdout   io.Writer
	codec    codec.Codec
	sinks    []prefetch.Sink
}

func (o *outputs) create(ctx context.Context, loc string) (io.WriteCloser, error) {
	if loc == "-" {
		return nopCloser{o.stdout}, nil
	}
	w, err := o.resolver.Create(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", loc, err)
	}
	return w, nil
}

func (o *outputs) open(ctx context.Context, cfg *Config) ([]prefetch.Sink, error) {
	if cfg.Output != "" {
		w, err := o.create(ctx, cfg.Output)
		if err != nil {
			return nil, err
		}
		o.sinks = append(o.sinks, sink.NewCSV(w))
	}

	if loc := cfg.SaveMatches; loc != "" {
		w, err := o.create(ctx, loc)
		if err != nil {
			return nil, err
		}
		s, err := sink.NewCollection(w, signature.CompressionForName(loc), o.codec)
		if err != nil {
			_ = w.Close()
			return nil, err
		}
		o.sinks = append(o.sinks, s)
	}

	if loc := cfg.SaveMatchingHashes; loc != "" {
		w, err := o.create(ctx, loc)
		if err != nil {
			return nil, err
		}
		o.sinks = append(o.sinks, sink.MatchedHashes(w, signature.CompressionForName(loc), o.codec))
	}

	if loc := cfg.SaveUnmatchedHashes; loc != "" {
		w, err := o.create(ctx, loc)
		if err != nil {
			return nil, err
		}
		o.sinks = append(o.sinks, sink.UnmatchedHashes(w, signature.CompressionForName(loc), o.codec))
	}

	return o.sinks, nil
}

func (o *outputs) Close() error {
	var errs []error
	for _, s := range o.sinks {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
