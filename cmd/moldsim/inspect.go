package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/moldtherm/internal/config"
	"github.com/san-kum/moldtherm/internal/report"
	"github.com/san-kum/moldtherm/internal/viz"
)

var reportIn = report.DefaultInputs()

func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().Float64Var(&reportIn.OutputMax, "output-max", reportIn.OutputMax, "sensor output at the top of the range, mV")
	cmd.Flags().Float64Var(&reportIn.InputMax, "input-max", reportIn.InputMax, "largest amplifier input, mV")
	cmd.Flags().Float64Var(&reportIn.MeasurementError, "error", reportIn.MeasurementError, "measurement error, C")
	cmd.Flags().Float64Var(&reportIn.ControlAccuracy, "accuracy", reportIn.ControlAccuracy, "control accuracy, C")
	cmd.Flags().Float64Var(&reportIn.MaxRate, "max-rate", reportIn.MaxRate, "fastest temperature change, C/s")
	cmd.Flags().BoolVar(&plotCurve, "plot", false, "plot the sampled calibration curve")
}

// fileConfig loads --config or falls back to the defaults.
func fileConfig() (*config.Config, error) {
	if configFile == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func convertVoltages(cmd *cobra.Command, args []string) error {
	cfg, err := fileConfig()
	if err != nil {
		return err
	}
	conv, err := cfg.Converter()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if direct {
		fmt.Fprintln(w, "VOLTAGE\tTEMPERATURE")
	} else {
		fmt.Fprintln(w, "VOLTAGE\tCODE\tQUANTIZED\tTEMPERATURE")
	}
	for _, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return fmt.Errorf("invalid voltage %q: %w", arg, err)
		}
		if direct {
			fmt.Fprintf(w, "%.3f\t%.2f\n", v, conv.Table().VoltageToTemperature(v))
			continue
		}
		r := conv.Read(v)
		fmt.Fprintf(w, "%.3f\t%d\t%.4f\t%.2f\n", r.Voltage, r.Code, r.Quantized, r.Temperature)
	}
	return w.Flush()
}

func printTable(cmd *cobra.Command, args []string) error {
	cfg, err := fileConfig()
	if err != nil {
		return err
	}
	tbl, err := cfg.Table()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TEMPERATURE\tVOLTAGE")
	for _, p := range tbl.Points() {
		fmt.Fprintf(w, "%.0f\t%.1f\n", p.Temperature, p.Voltage)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if plotCurve {
		fmt.Println()
		fmt.Println(viz.CalibrationPlot(tbl, 80, 15))
	}
	return nil
}

func printReport(cmd *cobra.Command, args []string) error {
	cfg, err := fileConfig()
	if err != nil {
		return err
	}
	conv, err := cfg.Converter()
	if err != nil {
		return err
	}

	r, err := report.Build(reportIn, conv)
	if err != nil {
		return err
	}
	if err := r.Write(os.Stdout); err != nil {
		return err
	}

	if plotCurve {
		fmt.Println()
		fmt.Println(viz.CurvePlot(r.Curve, 80, 15))
	}
	return nil
}
