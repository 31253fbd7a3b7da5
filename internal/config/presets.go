package config

import (
	"sort"

	"github.com/san-kum/moldtherm/internal/control"
)

// Presets are grouped by scenario family. Each entry builds a fresh config.
var Presets = map[string]map[string]func() *Config{
	"press": {
		"press24": DefaultConfig,
		"press8": func() *Config {
			cfg := DefaultConfig()
			cfg.Layout.Count = 8
			return cfg
		},
		"symmetric": func() *Config {
			cfg := DefaultConfig()
			cfg.Controller = control.ParamsFromAccuracy(control.DefaultControlAccuracy, false)
			return cfg
		},
	},
	"single": {
		"nominal": func() *Config {
			cfg := DefaultConfig()
			cfg.Ticks = 62
			cfg.Controller = control.ParamsFromAccuracy(control.DefaultControlAccuracy, false)
			cfg.Channels = []ChannelConfig{{ID: 1, Voltage: 6.0, Target: 160}}
			return cfg
		},
		"cold": func() *Config {
			cfg := DefaultConfig()
			cfg.Ticks = 200
			cfg.Channels = []ChannelConfig{{ID: 1, Voltage: 0, Target: 180}}
			return cfg
		},
	},
	"fault": {
		"matrix": func() *Config {
			cfg := DefaultConfig()
			cfg.Ticks = 100
			cfg.Channels = []ChannelConfig{
				{ID: 1, Voltage: 11.4, Target: 160},
				{ID: 2, Voltage: 11.4, Target: 160, MatrixFault: true},
				{ID: 3, Voltage: 11.4, Target: 160, PunchFault: true},
			}
			return cfg
		},
		"spike": func() *Config {
			cfg := DefaultConfig()
			cfg.Ticks = 100
			hist := 120.0
			cfg.Channels = []ChannelConfig{
				{ID: 1, Voltage: 11.4, Target: 160, InitialTemperature: &hist},
			}
			return cfg
		},
	},
}

func GetPreset(group, name string) *Config {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	build, ok := groupPresets[name]
	if !ok {
		return nil
	}
	return build()
}

// ListPresets returns the preset names of a group in sorted order.
func ListPresets(group string) []string {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(groupPresets))
	for name := range groupPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListGroups() []string {
	groups := make([]string, 0, len(Presets))
	for g := range Presets {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}
