package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/MacroFinanceHub/dynare/internal/config"
	"github.com/MacroFinanceHub/dynare/internal/models"
	"github.com/MacroFinanceHub/dynare/internal/num"
	"github.com/MacroFinanceHub/dynare/internal/ramsey"
	"github.com/MacroFinanceHub/dynare/internal/report"
	"github.com/MacroFinanceHub/dynare/internal/steadystate"
	"github.com/MacroFinanceHub/dynare/internal/storage"
	"github.com/MacroFinanceHub/dynare/internal/tui"
)

var (
	dataDir    string
	configFile string
	linear     bool
	ramseyFlag bool
	useFile    bool
	block      bool
	debug      bool
	live       bool
	dynaTolF   float64
	solveTolF  float64
	maxIter    int
	exportPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dynare",
		Short: "steady-state solver for dynamic economic models",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".dynare", "data directory")

	solveCmd := &cobra.Command{
		Use:   "solve [model]",
		Short: "compute the steady state of a model",
		Args:  cobra.ExactArgs(1),
		RunE:  runSolve,
	}
	solveCmd.Flags().StringVar(&configFile, "config", "", "solve options file (yaml)")
	solveCmd.Flags().BoolVar(&linear, "linear", false, "use the linear one-step path")
	solveCmd.Flags().BoolVar(&ramseyFlag, "ramsey", false, "solve the ramsey optimal-policy steady state")
	solveCmd.Flags().BoolVar(&useFile, "steadystate-file", false, "use the model's closed-form steady-state file")
	solveCmd.Flags().BoolVar(&block, "block", false, "use the block-structured solve path")
	solveCmd.Flags().BoolVar(&debug, "debug", false, "enable debug diagnostics (jacobian scan)")
	solveCmd.Flags().BoolVar(&live, "live", false, "show the live convergence view")
	solveCmd.Flags().Float64Var(&dynaTolF, "tol", config.DefaultDynaTolF, "residual acceptance tolerance")
	solveCmd.Flags().Float64Var(&solveTolF, "dyn-tol", config.DefaultSolveTolF, "static/dynamic consistency tolerance")
	solveCmd.Flags().IntVar(&maxIter, "max-iter", config.DefaultMaxIter, "solver iteration bound")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list available models",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range models.Names() {
				fmt.Println(name)
			}
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  runList,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the residual history of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlot,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}
	exportCmd.Flags().StringVar(&exportPath, "out", "run.json", "destination path")

	rootCmd.AddCommand(solveCmd, modelsCmd, listCmd, plotCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildOptions(modelName string) (*config.Options, error) {
	var opts *config.Options
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		opts = loaded
	} else {
		opts = config.DefaultOptions()
	}

	opts.Model = modelName
	opts.Linear = opts.Linear || linear
	opts.RamseyPolicy = opts.RamseyPolicy || ramseyFlag
	opts.SteadyStateFile = opts.SteadyStateFile || useFile
	opts.Block = opts.Block || block
	opts.Debug = opts.Debug || debug
	if dynaTolF != config.DefaultDynaTolF {
		opts.DynaTolF = dynaTolF
	}
	if solveTolF != config.DefaultSolveTolF {
		opts.SolveTolF = solveTolF
	}
	if maxIter != config.DefaultMaxIter {
		opts.MaxIter = maxIter
	}
	return opts, opts.Validate()
}

func runSolve(cmd *cobra.Command, args []string) error {
	economy, err := models.Lookup(args[0])
	if err != nil {
		return err
	}

	opts, err := buildOptions(args[0])
	if err != nil {
		return err
	}
	if economy.Configure != nil {
		economy.Configure(opts)
	}

	level := zerolog.WarnLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	o := steadystate.New(economy.Static)
	o.SetLogger(log)
	o.SetRamsey(ramsey.New(economy.Static))
	if economy.Dynamic != nil {
		o.SetDynamic(economy.Dynamic)
	}
	if economy.File != nil {
		o.SetFile(economy.File)
	}
	if economy.Expander != nil {
		o.SetExpander(economy.Expander)
	}

	guess := economy.Guess.Clone()
	applyInitVals(guess, economy, opts)

	out := &steadystate.Output{}

	if live {
		return tui.Run(economy.Desc, func() tui.DoneMsg {
			ys, _, st, err := o.Compute(guess, economy.Desc, opts, out)
			return tui.DoneMsg{YS: ys, Status: st, History: out.History, Err: err}
		})
	}

	ys, _, st, err := o.Compute(guess, economy.Desc, opts, out)
	if err != nil {
		return err
	}

	report.WriteResult(os.Stdout, economy.Desc, ys, st)

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	strategy := steadystate.DeriveStrategy(opts)
	runID, err := store.Save(economy.Desc, strategy.String(), ys, st, out)
	if err != nil {
		return err
	}
	fmt.Printf("\nsaved as %s\n", runID)

	if !st.Ok() {
		os.Exit(1)
	}
	return nil
}

func applyInitVals(guess num.Vec, economy *models.Economy, opts *config.Options) {
	for name, v := range opts.InitVals {
		for i, endo := range economy.Desc.EndoNames {
			if endo == name && i < len(guess) {
				guess[i] = v
			}
		}
	}
}

func runList(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMODEL\tSTRATEGY\tSTATUS\tITERATIONS")
	for _, r := range runs {
		st := steadystate.Status{Code: steadystate.Code(r.StatusCode), Magnitude: r.Magnitude}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", r.ID, r.Model, r.Strategy, st, r.Iterations)
	}
	return tw.Flush()
}

func runPlot(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	if len(meta.History) < 2 {
		return fmt.Errorf("run %s has no residual history", args[0])
	}

	fmt.Printf("%s: residual norm per iteration\n\n", meta.ID)
	fmt.Println(asciigraph.Plot(meta.History, asciigraph.Height(12), asciigraph.Width(70)))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	if err := store.ExportJSON(args[0], exportPath); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", args[0], exportPath)
	return nil
}
