package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	logLevel   string
	logFile    string

	ticks       int
	period      string
	target      float64
	heatingBand float64
	coolingBand float64
	accuracy    float64
	threshold   float64
	channels    int

	format   string
	output   string
	plotIDs  []int
	plotW    int
	plotH    int
	showHeat bool

	tuneHeating  []float64
	tuneCooling  []float64
	switchWeight float64
	topN         int

	direct    bool
	plotCurve bool

	trials       int
	perturbation float64
	seed         int64
)

// main registers the moldsim commands and exits 1 when a command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "moldsim",
		Short:         "mold heater control simulator",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to file instead of stderr")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation and print a summary",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&format, "format", "summary", "output format (summary, csv, json, svg)")
	runCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "run simulation and plot temperature traces",
		Args:  cobra.NoArgs,
		RunE:  plotRun,
	}
	addSimFlags(plotCmd)
	plotCmd.Flags().IntSliceVar(&plotIDs, "channels", []int{1}, "channel ids to plot")
	plotCmd.Flags().IntVar(&plotW, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&plotH, "height", 15, "plot height")
	plotCmd.Flags().BoolVar(&showHeat, "heater", false, "also plot the first channel's heater state")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "compare cooling bands and the open-loop response on the same layout",
		Args:  cobra.NoArgs,
		RunE:  compareBands,
	}
	addSimFlags(compareCmd)

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search heating and cooling bands",
		Args:  cobra.NoArgs,
		RunE:  tuneBands,
	}
	addSimFlags(tuneCmd)
	tuneCmd.Flags().Float64SliceVar(&tuneHeating, "heating-bands", []float64{1, 2, 3}, "heating bands to try, C")
	tuneCmd.Flags().Float64SliceVar(&tuneCooling, "cooling-bands", []float64{1, 2, 4, 6}, "cooling bands to try, C")
	tuneCmd.Flags().Float64Var(&switchWeight, "switch-weight", 0.5, "cost per heater switch relative to one out-of-band tick")
	tuneCmd.Flags().IntVar(&topN, "top", 5, "number of results to print")

	convertCmd := &cobra.Command{
		Use:   "convert [voltage...]",
		Short: "convert voltages (mV) through the ADC and calibration table",
		Args:  cobra.MinimumNArgs(1),
		RunE:  convertVoltages,
	}
	convertCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	convertCmd.Flags().BoolVar(&direct, "direct", false, "skip the ADC and look voltages up directly")

	tableCmd := &cobra.Command{
		Use:   "table",
		Short: "print the calibration table",
		Args:  cobra.NoArgs,
		RunE:  printTable,
	}
	tableCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	tableCmd.Flags().BoolVar(&plotCurve, "plot", false, "plot the calibration curve")

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "print transfer gain, polling period and ADC samples",
		Args:  cobra.NoArgs,
		RunE:  printReport,
	}
	addReportFlags(reportCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [group]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write the effective configuration as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeConfig,
	}
	addSimFlags(configCmd)

	scenarioCmd := &cobra.Command{
		Use:   "scenario <file>",
		Short: "run a scripted scenario of operator events",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().StringVar(&format, "format", "summary", "output format (summary, csv, json)")
	scenarioCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run start-up trials from randomly perturbed voltages",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addSimFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturbation", 0.5, "start voltage perturbation, +-mV")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 1, "random seed (0 = time based)")

	rootCmd.AddCommand(runCmd, liveCmd, plotCmd, compareCmd, tuneCmd, scenarioCmd, monteCarloCmd,
		convertCmd, tableCmd, reportCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration (group/name)")
	cmd.Flags().IntVar(&ticks, "ticks", 0, "number of ticks")
	cmd.Flags().StringVar(&period, "period", "", "polling period (e.g. 810ms)")
	cmd.Flags().Float64Var(&target, "target", 0, "override every channel's target, C")
	cmd.Flags().Float64Var(&accuracy, "accuracy", 0, "control accuracy, C; sets both bands")
	cmd.Flags().Float64Var(&heatingBand, "heating-band", 0, "heating band above target, C")
	cmd.Flags().Float64Var(&coolingBand, "cooling-band", 0, "cooling band below target, C")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "anomaly threshold, C")
	cmd.Flags().IntVar(&channels, "channels-count", 0, "number of layout channels")
}
