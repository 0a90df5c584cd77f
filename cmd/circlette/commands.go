package main

import (
	"errors"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexshd/circlette"
	"github.com/alexshd/circlette/internal/archive"
)

func newSpectrumCmd(opts *options) *cobra.Command {
	var catalogue bool
	cmd := &cobra.Command{
		Use:   "spectrum",
		Short: "Enumerate the 256 codewords and count the valid ones",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			a := circlette.NewAnalysis(cfg, slog.Default())
			if catalogue {
				return printCatalogue(cmd, a.Space().Valid())
			}
			return opts.emit(cmd, "spectrum", a.Spectrum())
		},
	}
	cmd.Flags().BoolVar(&catalogue, "catalogue", false, "list the valid codewords as particles")
	return cmd
}

func printCatalogue(cmd *cobra.Command, vs circlette.ValidSet) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODEWORD\tNAME\tKIND\tGEN\tCOLOUR\tCHARGE")
	for _, p := range circlette.Catalogue(vs) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%+.2f\n",
			p.State, p.Name, p.Kind, p.Generation, p.Colour, p.Charge)
	}
	return tw.Flush()
}

func newSearchCmd(opts *options) *cobra.Command {
	var table bool
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the declared family for the unique spectrum-preserving rule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			res, searchErr := circlette.NewAnalysis(cfg, slog.Default()).Search(cmd.Context())
			if res.Family == "" {
				return searchErr
			}
			if table {
				if err := printRanking(cmd, res); err != nil {
					return err
				}
			}
			if err := opts.emit(cmd, "search", res.Report()); err != nil {
				return err
			}
			return searchErr
		},
	}
	cmd.Flags().BoolVar(&table, "table", false, "print every candidate, ranked")
	return cmd
}

func printRanking(cmd *cobra.Command, res circlette.SearchResult) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tRULE\tACCEPTED\tESCAPES\tPURE-VALID\tAVG-FLIPS")
	for i, v := range circlette.Rank(res.Verdicts) {
		fmt.Fprintf(tw, "%d\t%s\t%v\t%d\t%d\t%.3f\n",
			i+1, v.Rule.Name(), v.Accepted(), v.Escapes, v.PureValid, v.AvgFlips)
	}
	return tw.Flush()
}

func newOrbitsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "orbits",
		Short: "Classify valid codewords into fixed points and two-cycles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			a := circlette.NewAnalysis(cfg, slog.Default())
			res, err := a.Search(cmd.Context())
			if err != nil {
				return err
			}
			cl, err := a.Orbits(cmd.Context(), res.Accepted)
			if err != nil {
				return err
			}
			return opts.emit(cmd, "orbits", cl.Report())
		},
	}
}

func newWalkCmd(opts *options) *cobra.Command {
	var (
		sites, steps int
		theta        float64
		base, ref    string
	)
	cmd := &cobra.Command{
		Use:   "walk",
		Short: "Run the coined walk and compare it with the continuum",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			f := cmd.Flags()
			if f.Changed("sites") {
				cfg.Walk.Sites = sites
			}
			if f.Changed("steps") {
				cfg.Walk.Steps = steps
			}
			if f.Changed("theta") {
				cfg.Walk.Theta = theta
			}
			if f.Changed("base") {
				cfg.Walk.Base = base
			}
			if f.Changed("reference") {
				cfg.Walk.Reference = ref
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			a := circlette.NewAnalysis(cfg, slog.Default())
			res, err := a.Search(cmd.Context())
			if err != nil {
				return err
			}
			rep, _, err := a.Walk(res.Accepted)
			if err != nil {
				return err
			}
			if err := opts.emit(cmd, "walk", rep); err != nil {
				return err
			}
			if !rep.Agrees {
				return fmt.Errorf("overlap %.6f outside %.3f ± %.3f", rep.Overlap, rep.Expected, rep.Tolerance)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&sites, "sites", 0, "lattice sites")
	f.IntVar(&steps, "steps", 0, "time steps")
	f.Float64Var(&theta, "theta", 0, "coin angle θ")
	f.StringVar(&base, "base", "", "base codeword: particle name or 8-bit string")
	f.StringVar(&ref, "reference", "", "schrodinger or dalembert")
	return cmd
}

func newAllCmd(opts *options) *cobra.Command {
	var skipWalk bool
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Run every stage and print the combined report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			rep, runErr := circlette.NewAnalysis(cfg, slog.Default()).Run(cmd.Context(), !skipWalk)
			if err := opts.emit(cmd, "all", rep); err != nil {
				return err
			}
			var multi *circlette.MultipleRulesError
			if errors.As(runErr, &multi) {
				slog.Warn("uniqueness holds only relative to a family", "family", multi.Family, "passing", len(multi.Passing))
			}
			return runErr
		},
	}
	cmd.Flags().BoolVar(&skipWalk, "skip-walk", false, "stop after orbit classification")
	return cmd
}

func newRunsCmd(opts *options) *cobra.Command {
	var (
		kind  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "runs [id]",
		Short: "List archived runs, or print one by ID",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.archivePath == "" {
				return errors.New("runs needs --archive")
			}
			store, err := archive.Open(opts.archivePath)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				run, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				var payload any
				if err := run.Decode(&payload); err != nil {
					return err
				}
				return write(cmd.OutOrStdout(), opts.format, payload)
			}

			runs, err := store.List(cmd.Context(), kind, limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tKIND\tCREATED")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.Kind, r.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "only runs of this kind")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list (0 = all)")
	return cmd
}
