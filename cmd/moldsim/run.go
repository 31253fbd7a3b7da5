package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/moldtherm/internal/analysis"
	"github.com/san-kum/moldtherm/internal/channel"
	"github.com/san-kum/moldtherm/internal/config"
	"github.com/san-kum/moldtherm/internal/control"
	"github.com/san-kum/moldtherm/internal/export"
	"github.com/san-kum/moldtherm/internal/metrics"
	"github.com/san-kum/moldtherm/internal/optim"
	"github.com/san-kum/moldtherm/internal/sim"
	"github.com/san-kum/moldtherm/internal/viz"
)

// simulate builds the driver, attaches logging and the standard metrics and
// runs it for the configured number of ticks.
func simulate(cmd *cobra.Command) (*config.Config, *sim.Result, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	d, err := cfg.NewDriver()
	if err != nil {
		return nil, nil, err
	}

	log, closeLog, err := newLogger(os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	defer closeLog()

	d.AddObserver(viz.NewLogObserver(log))
	for _, m := range metrics.Standard(cfg.Classifier.TablettingBand) {
		d.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info("simulation started", "ticks", cfg.Ticks, "period", cfg.PollingPeriod, "channels", len(d.Channels()))
	result, err := d.Run(ctx, cfg.Ticks)
	if err != nil {
		return nil, nil, err
	}
	return cfg, result, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, result, err := simulate(cmd)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "summary":
		return printSummary(w, cfg, result)
	case "csv":
		return export.CSV(w, result)
	case "json":
		return export.JSON(w, cfg.PollingPeriod, result)
	case "svg":
		ids := make([]int, 0, len(result.Last()))
		for _, st := range result.Last() {
			ids = append(ids, st.ChannelID)
		}
		opts := export.DefaultSVGOptions()
		opts.Band = cfg.Classifier.TablettingBand
		return export.SVG(w, result, ids, opts)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func printSummary(out io.Writer, cfg *config.Config, result *sim.Result) error {
	fmt.Fprintf(out, "%d ticks, %.1fs simulated\n\n", result.TicksTaken,
		float64(result.TicksTaken)*cfg.PollingPeriod.Seconds())

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	cycles := analysis.Cycles(result)
	fmt.Fprintln(w, "CH\tTEMP\tTARGET\tVOLTAGE\tHEATER\tSTATE\tPERIOD\tOVERSHOOT")
	for i, st := range result.Last() {
		heater := "off"
		if st.HeaterOn {
			heater = "on"
		}
		period, overshoot := "-", "-"
		if c := cycles[i]; c.Settled() {
			period = fmt.Sprintf("%.2fs", c.Period)
			overshoot = fmt.Sprintf("%+.2f", c.Overshoot)
		}
		fmt.Fprintf(w, "%d\t%.2f\t%.1f\t%.3f\t%s\t%s\t%s\t%s\n",
			st.ChannelID, st.Temperature, st.Target, st.Voltage, heater, st.Classification, period, overshoot)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	return printMetrics(out, result.Metrics)
}

func printMetrics(out io.Writer, values map[string]float64) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "%s:\t%.4f\n", name, values[name])
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	d, err := cfg.NewDriver()
	if err != nil {
		return err
	}

	// stderr belongs to the terminal UI, so logs only go to --log-file.
	if logFile != "" {
		log, closeLog, err := newLogger(io.Discard)
		if err != nil {
			return err
		}
		defer closeLog()
		d.AddObserver(viz.NewLogObserver(log))
	}

	title := "moldsim"
	if preset != "" {
		title = preset
	}
	p := tea.NewProgram(viz.NewMonitor(d, title), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	_, result, err := simulate(cmd)
	if err != nil {
		return err
	}

	opts := viz.PlotOptions{Width: plotW, Height: plotH, ShowTarget: true}
	graph, err := viz.TemperaturePlot(result, plotIDs, opts)
	if err != nil {
		return err
	}
	fmt.Println(graph)

	if showHeat {
		heater, err := viz.HeaterPlot(result, plotIDs[0], plotW)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(heater)
	}
	return nil
}

func compareBands(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	tbl, err := cfg.Table()
	if err != nil {
		return err
	}

	acc := cfg.Controller.HeatingBand * 2
	variants := make([]sim.Variant, 0, 3)
	for _, v := range []struct {
		name string
		full bool
	}{{"symmetric", false}, {"full", true}} {
		params := cfg.Controller
		bands := control.ParamsFromAccuracy(acc, v.full)
		params.HeatingBand, params.CoolingBand = bands.HeatingBand, bands.CoolingBand

		comps, err := cfg.Components()
		if err != nil {
			return err
		}
		comps.Controller = control.NewHysteresis(params, tbl)
		variants = append(variants, sim.Variant{Name: v.name, Components: comps})
	}

	open, err := cfg.Components()
	if err != nil {
		return err
	}
	open.Controller = control.NewManual(cfg.Controller, true)
	variants = append(variants, sim.Variant{Name: "open-loop", Components: open})

	seed := func() []*channel.Sensor { return cfg.Sensors(tbl) }
	cmp := sim.NewComparison(seed, func() []sim.Metric { return metrics.Standard(cfg.Classifier.TablettingBand) })

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := cmp.Run(ctx, variants, cfg.SimConfig())
	if err != nil {
		return err
	}

	fmt.Printf("comparing cooling bands (accuracy %.1f C, %d ticks)\n\n", acc, cfg.Ticks)
	for i, r := range results {
		fmt.Printf("%s\n", variants[i].Name)
		if err := printMetrics(os.Stdout, r.Metrics); err != nil {
			return err
		}
		fmt.Println()
	}
	return nil
}

func tuneBands(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	g, err := optim.NewGridSearch(
		[]string{"heating_band", "cooling_band"},
		[][]float64{tuneHeating, tuneCooling},
	)
	if err != nil {
		return err
	}

	build := func(params map[string]float64) (*sim.Driver, error) {
		c := cfg.Clone()
		c.Controller.HeatingBand = params["heating_band"]
		c.Controller.CoolingBand = params["cooling_band"]
		return c.NewDriver()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	band := cfg.Classifier.TablettingBand
	fmt.Printf("searching %d band pairs over %d ticks (cost band ±%.1f C)\n\n", g.Size(), cfg.Ticks, band)
	trials, err := g.Search(ctx, build, cfg.Ticks, optim.BandCost(band, switchWeight))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HEATING\tCOOLING\tCOST")
	for i, tr := range trials {
		if i == topN {
			break
		}
		if tr.Err != nil {
			fmt.Fprintf(w, "%.1f\t%.1f\t%v\n", tr.Params["heating_band"], tr.Params["cooling_band"], tr.Err)
			continue
		}
		fmt.Fprintf(w, "%.1f\t%.1f\t%.4f\n", tr.Params["heating_band"], tr.Params["cooling_band"], tr.Cost)
	}
	return w.Flush()
}
