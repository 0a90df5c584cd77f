// Command circlette enumerates the codeword spectrum, searches for the
// spectrum-preserving rule, classifies its orbits and compares the rule-driven
// walk with its continuum limit.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/alexshd/circlette"
	"github.com/alexshd/circlette/internal/archive"
)

type options struct {
	configPath  string
	format      string
	logLevel    string
	archivePath string
	family      string
	workers     int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		slog.Error("circlette failed", "err", err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "circlette",
		Short:         "Fermion spectrum as 8-bit ring codewords",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogging(opts.logLevel)
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	pf.StringVarP(&opts.format, "format", "o", "yaml", "output format: yaml or json")
	pf.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	pf.StringVar(&opts.archivePath, "archive", "", "SQLite file to archive reports in")
	pf.StringVar(&opts.family, "family", "", "rule family (overrides config)")
	pf.IntVar(&opts.workers, "workers", 0, "parallel workers (overrides config)")

	root.AddCommand(
		newSpectrumCmd(opts),
		newSearchCmd(opts),
		newOrbitsCmd(opts),
		newWalkCmd(opts),
		newAllCmd(opts),
		newRunsCmd(opts),
	)
	return root
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      lvl,
			TimeFormat: "15:04:05",
			NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		}),
	))
	return nil
}

// loadConfig reads the config file, if any, and applies flag overrides.
func (o *options) loadConfig() (circlette.Config, error) {
	cfg := circlette.DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = circlette.LoadConfig(o.configPath); err != nil {
			return cfg, err
		}
	}
	if o.family != "" {
		cfg.Search.Family = o.family
		cfg.Search.Pairs = nil
	}
	if o.workers > 0 {
		cfg.Search.Workers = o.workers
		cfg.Orbits.Workers = o.workers
	}
	return cfg, cfg.Validate()
}

// emit writes a report to stdout and, when configured, to the archive.
func (o *options) emit(cmd *cobra.Command, kind string, report any) error {
	if err := write(cmd.OutOrStdout(), o.format, report); err != nil {
		return err
	}
	if o.archivePath == "" {
		return nil
	}
	store, err := archive.Open(o.archivePath)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Save(cmd.Context(), kind, report)
	if err != nil {
		return err
	}
	slog.Info("report archived", "kind", kind, "run", run.ID, "archive", o.archivePath)
	return nil
}

func write(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
