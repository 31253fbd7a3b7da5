package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/moldtherm/internal/automation"
	"github.com/san-kum/moldtherm/internal/channel"
	"github.com/san-kum/moldtherm/internal/export"
	"github.com/san-kum/moldtherm/internal/metrics"
	"github.com/san-kum/moldtherm/internal/sim"
	"github.com/san-kum/moldtherm/internal/viz"
)

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	cfg, err := scenario.Config()
	if err != nil {
		return err
	}

	log, closeLog, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info("scenario started", "name", scenario.Name, "events", len(scenario.Events))
	result, err := automation.RunScenario(ctx, scenario, func(d *sim.Driver) {
		d.AddObserver(viz.NewLogObserver(log))
		for _, m := range metrics.Standard(cfg.Classifier.TablettingBand) {
			d.AddMetric(m)
		}
	})
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
		if scenario.Description != "" {
			fmt.Fprintf(w, "%s: %s\n", scenario.Name, scenario.Description)
		}
		return printSummary(w, cfg, result)
	case "csv":
		return export.CSV(w, result)
	case "json":
		return export.JSON(w, cfg.PollingPeriod, result)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: perturbation,
		NumTrials:    trials,
		Ticks:        cfg.Ticks,
		Seed:         seed,
	})
	if err != nil {
		return err
	}

	classes := []channel.Classification{
		channel.Operational, channel.TablettingForbidden, channel.Alarm, channel.NonOperational,
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "TRIAL")
	for _, c := range classes {
		fmt.Fprintf(w, "\t%s", c)
	}
	fmt.Fprintln(w, "\tSETTLED")
	for _, r := range results {
		fmt.Fprintf(w, "%d", r.TrialID)
		for _, c := range classes {
			fmt.Fprintf(w, "\t%d", r.Counts[c])
		}
		fmt.Fprintf(w, "\t%v\n", r.Settled)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	settled, unsettled := automation.MonteCarloStats(results)
	fmt.Printf("\n%d of %d trials settled (+-%.2f mV, %d ticks)\n", settled, settled+unsettled, perturbation, cfg.Ticks)
	if unsettled > 0 {
		worst := make([]automation.MonteCarloResult, 0, unsettled)
		for _, r := range results {
			if !r.Settled {
				worst = append(worst, r)
			}
		}
		sort.Slice(worst, func(i, j int) bool {
			return worst[i].Counts[channel.Operational] < worst[j].Counts[channel.Operational]
		})
		fmt.Printf("worst trial %d: %d channels operational\n", worst[0].TrialID, worst[0].Counts[channel.Operational])
	}
	return nil
}
