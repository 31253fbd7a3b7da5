package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/moldtherm/internal/config"
	"github.com/san-kum/moldtherm/internal/control"
	"github.com/san-kum/moldtherm/internal/viz"
)

// loadConfig resolves preset, file and flags, in that order of precedence
// from lowest to highest. The file is read over the preset, and flags apply
// only when set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		group, name, ok := strings.Cut(preset, "/")
		if !ok {
			return nil, fmt.Errorf("preset must be group/name, got %q", preset)
		}
		cfg = config.GetPreset(group, name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q", preset)
		}
	}
	if configFile != "" {
		var err error
		cfg, err = config.LoadOnto(cfg, configFile)
		if err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("ticks") {
		cfg.Ticks = ticks
	}
	if flags.Changed("period") {
		d, err := time.ParseDuration(period)
		if err != nil {
			return nil, fmt.Errorf("invalid --period: %w", err)
		}
		cfg.PollingPeriod = d
	}
	if flags.Changed("accuracy") {
		p := control.ParamsFromAccuracy(accuracy, true)
		cfg.Controller.HeatingBand = p.HeatingBand
		cfg.Controller.CoolingBand = p.CoolingBand
	}
	if flags.Changed("heating-band") {
		cfg.Controller.HeatingBand = heatingBand
	}
	if flags.Changed("cooling-band") {
		cfg.Controller.CoolingBand = coolingBand
	}
	if flags.Changed("threshold") {
		cfg.Filter.Threshold = threshold
	}
	if flags.Changed("channels-count") {
		cfg.Channels = nil
		cfg.Layout.Count = channels
	}
	if flags.Changed("target") {
		cfg.Layout.Target = config.Ramp{Start: target, Cap: target}
		for i := range cfg.Channels {
			cfg.Channels[i].Target = target
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger writes to --log-file when given, otherwise to fallback. The
// returned closer is never nil.
func newLogger(fallback io.Writer) (*slog.Logger, func() error, error) {
	w, closer := fallback, func() error { return nil }
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, err
		}
		w, closer = f, f.Close
	}
	log, err := viz.NewLogger(w, logLevel)
	if err != nil {
		closer()
		return nil, nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	return log, closer, nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	groups := config.ListGroups()
	if len(args) == 1 {
		if config.ListPresets(args[0]) == nil {
			return fmt.Errorf("unknown preset group %q", args[0])
		}
		groups = args
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tCHANNELS\tTICKS\tBANDS")
	for _, g := range groups {
		for _, name := range config.ListPresets(g) {
			cfg := config.GetPreset(g, name)
			n := len(cfg.Channels)
			if n == 0 {
				n = cfg.Layout.Count
			}
			fmt.Fprintf(w, "%s/%s\t%d\t%d\t+%.1f/-%.1f\n", g, name, n, cfg.Ticks,
				cfg.Controller.HeatingBand, cfg.Controller.CoolingBand)
		}
	}
	return w.Flush()
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		if err := config.Save(args[0], cfg); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", args[0])
		return nil
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
