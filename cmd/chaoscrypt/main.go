package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds flag values shared by the commands of one invocation.
type app struct {
	log *zap.Logger

	dataDir    string
	configFile string
	preset     string
	params     []string
	seed       int64
	verbose    bool

	input  string
	output string
	ratio  int

	jsonOut  bool
	lyapunov int
	from     int
	count    int

	clipA string
	clipB string

	ranges  []string
	workers int

	force bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd(os.Stdout).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Invoked without a subcommand it prints
// usage and succeeds.
func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "chaoscrypt",
		Short:         "mask audio in a chaotic carrier and recover it",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setupLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	rootCmd.SetOut(out)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.dataDir, "data", ".chaoscrypt", "run ledger directory (empty disables it)")
	pf.StringVar(&a.configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&a.preset, "preset", "", "named system coefficients (see presets)")
	pf.StringArrayVar(&a.params, "param", nil, "override a system coefficient, name=value (repeatable)")
	pf.Int64Var(&a.seed, "seed", 0, "seed of the private initial state (default: from the clock)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	encryptCmd := &cobra.Command{
		Use:   "encrypt",
		Short: "mask an audio file into a .chaos container",
		Args:  cobra.NoArgs,
		RunE:  a.runEncrypt,
	}
	encryptCmd.Flags().StringVarP(&a.input, "input", "i", "", "input audio (wav)")
	encryptCmd.Flags().StringVarP(&a.output, "output", "o", "", "output container")
	encryptCmd.Flags().IntVarP(&a.ratio, "ratio", "s", 0, "decimation ratio: integrator steps per audio sample")
	mustRequire(encryptCmd, "input", "output", "ratio")

	decryptCmd := &cobra.Command{
		Use:   "decrypt",
		Short: "recover the audio from a .chaos container",
		Args:  cobra.NoArgs,
		RunE:  a.runDecrypt,
	}
	decryptCmd.Flags().StringVarP(&a.input, "input", "i", "", "input container")
	decryptCmd.Flags().StringVarP(&a.output, "output", "o", "", "output audio (wav)")
	mustRequire(decryptCmd, "input", "output")

	outputCmd := &cobra.Command{
		Use:   "output",
		Short: "render the masked transmission itself as audio",
		Args:  cobra.NoArgs,
		RunE:  a.runOutput,
	}
	outputCmd.Flags().StringVarP(&a.input, "input", "i", "", "input container")
	outputCmd.Flags().StringVarP(&a.output, "output", "o", "", "output audio (wav)")
	mustRequire(outputCmd, "input", "output")

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "show a container's header",
		Args:  cobra.NoArgs,
		RunE:  a.runInspect,
	}
	inspectCmd.Flags().StringVarP(&a.input, "input", "i", "", "input container")
	inspectCmd.Flags().BoolVar(&a.jsonOut, "json", false, "print as json")
	inspectCmd.Flags().IntVar(&a.lyapunov, "lyapunov", 0, "estimate the receiver's conditional lyapunov exponent over this many samples")
	mustRequire(inspectCmd, "input")

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "plot a stretch of a container's signal",
		Args:  cobra.NoArgs,
		RunE:  a.runPlot,
	}
	plotCmd.Flags().StringVarP(&a.input, "input", "i", "", "input container")
	plotCmd.Flags().IntVar(&a.from, "from", 0, "first sample")
	plotCmd.Flags().IntVar(&a.count, "count", 400, "number of samples")
	mustRequire(plotCmd, "input")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "compare a recovered clip with the original",
		Args:  cobra.NoArgs,
		RunE:  a.runCompare,
	}
	compareCmd.Flags().StringVarP(&a.clipA, "reference", "a", "", "reference audio (wav)")
	compareCmd.Flags().StringVarP(&a.clipB, "estimate", "b", "", "recovered audio (wav)")
	mustRequire(compareCmd, "reference", "estimate")

	runsCmd := &cobra.Command{
		Use:   "runs [run_id]",
		Short: "list recorded runs, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.runRuns,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "score receiver coefficients against a container's grace phase",
		Args:  cobra.NoArgs,
		RunE:  a.runSweep,
	}
	sweepCmd.Flags().StringVarP(&a.input, "input", "i", "", "input container")
	sweepCmd.Flags().StringArrayVar(&a.ranges, "range", nil, "coefficient range, name=lo:hi:n (repeatable)")
	sweepCmd.Flags().IntVar(&a.workers, "workers", 0, "parallel receivers (default: number of CPUs)")
	mustRequire(sweepCmd, "input", "range")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list named system coefficient sets",
		Args:  cobra.NoArgs,
		RunE:  a.runPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage run configuration files",
	}
	configInitCmd := &cobra.Command{
		Use:   "init",
		Short: "write the effective configuration to a yaml file",
		Args:  cobra.NoArgs,
		RunE:  a.runConfigInit,
	}
	configInitCmd.Flags().StringVarP(&a.output, "output", "o", "", "output config file")
	configInitCmd.Flags().BoolVar(&a.force, "force", false, "overwrite an existing file")
	mustRequire(configInitCmd, "output")
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(configCmd, encryptCmd, decryptCmd, outputCmd, inspectCmd, plotCmd, compareCmd, sweepCmd, runsCmd, presetsCmd)
	return rootCmd
}

func mustRequire(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("flag %s: %v", name, err))
		}
	}
}

func (a *app) setupLogger() error {
	cfg := zap.NewProductionConfig()
	if a.verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	a.log = log
	return nil
}
