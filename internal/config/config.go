// Package config loads and validates simulation settings and builds the
// driver they describe.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/moldtherm/internal/adc"
	"github.com/san-kum/moldtherm/internal/calibration"
	"github.com/san-kum/moldtherm/internal/channel"
	"github.com/san-kum/moldtherm/internal/control"
	"github.com/san-kum/moldtherm/internal/filter"
	"github.com/san-kum/moldtherm/internal/sim"
)

const (
	DefaultPollingPeriod = 810 * time.Millisecond
	DefaultTicks         = 618
	DefaultChannels      = 24
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	PollingPeriod time.Duration       `yaml:"polling_period"`
	Ticks         int                 `yaml:"ticks"`
	ADC           adc.Config          `yaml:"adc"`
	Calibration   []calibration.Point `yaml:"calibration,omitempty"`
	Controller    control.Params      `yaml:"controller"`
	Filter        filter.Anomaly      `yaml:"filter"`
	Classifier    channel.Classifier  `yaml:"classifier"`
	Layout        Layout              `yaml:"layout"`
	Channels      []ChannelConfig     `yaml:"channels,omitempty"`
}

// Layout generates Count channels whose start values grow linearly with the
// channel index and saturate at the caps.
type Layout struct {
	Count   int  `yaml:"count"`
	Voltage Ramp `yaml:"voltage"`
	Target  Ramp `yaml:"target"`
	Initial Ramp `yaml:"initial_temperature"`
}

type Ramp struct {
	Start float64 `yaml:"start"`
	Step  float64 `yaml:"step"`
	Cap   float64 `yaml:"cap"`
}

// At returns min(Start+i*Step, Cap).
func (r Ramp) At(i int) float64 {
	return min(r.Start+float64(i)*r.Step, r.Cap)
}

// ChannelConfig describes one channel explicitly. A nil InitialTemperature
// starts the filter at the calibrated temperature of Voltage.
type ChannelConfig struct {
	ID                 int      `yaml:"id"`
	Voltage            float64  `yaml:"voltage"`
	Target             float64  `yaml:"target"`
	InitialTemperature *float64 `yaml:"initial_temperature,omitempty"`
	Cooling            bool     `yaml:"cooling,omitempty"`
	MatrixFault        bool     `yaml:"matrix_fault,omitempty"`
	PunchFault         bool     `yaml:"punch_fault,omitempty"`
}

// DefaultLayout seeds the 24-cavity press.
func DefaultLayout() Layout {
	return Layout{
		Count:   DefaultChannels,
		Voltage: Ramp{Start: 6.9, Step: 0.4, Cap: 11.4},
		Target:  Ramp{Start: 140, Step: 5, Cap: 180},
		Initial: Ramp{Start: 100, Step: 5, Cap: 160},
	}
}

func DefaultConfig() *Config {
	return &Config{
		PollingPeriod: DefaultPollingPeriod,
		Ticks:         DefaultTicks,
		ADC:           adc.DefaultConfig(),
		Controller:    control.DefaultParams(),
		Filter:        filter.NewAnomaly(filter.DefaultAnomalyThreshold),
		Classifier:    channel.DefaultClassifier(),
		Layout:        DefaultLayout(),
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	return parseOnto(DefaultConfig(), data)
}

// LoadOnto reads path over a copy of base: keys present in the file replace
// base values, everything else is kept.
func LoadOnto(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return parseOnto(base.Clone(), data)
}

func parseOnto(cfg *Config, data []byte) (*Config, error) {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ensureDefaults()
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) ensureDefaults() {
	def := DefaultConfig()

	if c.PollingPeriod == 0 {
		c.PollingPeriod = def.PollingPeriod
	}
	if c.Ticks == 0 {
		c.Ticks = def.Ticks
	}
	if c.ADC.ResolutionBits == 0 {
		c.ADC.ResolutionBits = def.ADC.ResolutionBits
	}
	if len(c.Channels) == 0 && c.Layout.Count == 0 {
		c.Layout = def.Layout
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate checks every section; the driver is only built from a valid
// config.
func (c *Config) Validate() error {
	if c.PollingPeriod <= 0 {
		return invalid("polling period must be positive, got %s", c.PollingPeriod)
	}
	if c.Ticks <= 0 {
		return invalid("ticks must be positive, got %d", c.Ticks)
	}
	if err := c.ADC.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := c.Table(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.Controller.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Filter.Threshold < 0 {
		return invalid("anomaly threshold must not be negative, got %v", c.Filter.Threshold)
	}
	if c.Classifier.TablettingBand < 0 || c.Classifier.AlarmBand < c.Classifier.TablettingBand {
		return invalid("classifier bands must satisfy 0 <= tabletting (%v) <= alarm (%v)",
			c.Classifier.TablettingBand, c.Classifier.AlarmBand)
	}

	if len(c.Channels) == 0 {
		if c.Layout.Count <= 0 {
			return invalid("no channels configured")
		}
		return nil
	}
	seen := make(map[int]bool, len(c.Channels))
	for _, ch := range c.Channels {
		if seen[ch.ID] {
			return invalid("duplicate channel id %d", ch.ID)
		}
		seen[ch.ID] = true
	}
	return nil
}

// Table builds the calibration table, falling back to the built-in
// thermocouple table when none is configured.
func (c *Config) Table() (*calibration.Table, error) {
	if len(c.Calibration) == 0 {
		return calibration.Default(), nil
	}
	return calibration.NewTable(c.Calibration)
}

func (c *Config) Converter() (*adc.Converter, error) {
	tbl, err := c.Table()
	if err != nil {
		return nil, err
	}
	return adc.NewConverter(c.ADC, tbl)
}

func (c *Config) Components() (sim.Components, error) {
	tbl, err := c.Table()
	if err != nil {
		return sim.Components{}, err
	}
	return sim.Components{
		Table:      tbl,
		Filter:     c.Filter,
		Controller: control.NewHysteresis(c.Controller, tbl),
		Classifier: c.Classifier,
	}, nil
}

// Sensors returns freshly allocated channels. Explicit channels take
// precedence over the layout; layout ids start at 1.
func (c *Config) Sensors(tbl *calibration.Table) []*channel.Sensor {
	if len(c.Channels) > 0 {
		out := make([]*channel.Sensor, len(c.Channels))
		for i, cc := range c.Channels {
			initial := tbl.VoltageToTemperature(cc.Voltage)
			if cc.InitialTemperature != nil {
				initial = *cc.InitialTemperature
			}
			s := channel.New(cc.ID, cc.Voltage, cc.Target, initial)
			s.Heating = !cc.Cooling
			s.MatrixOperational = !cc.MatrixFault
			s.PunchOperational = !cc.PunchFault
			out[i] = s
		}
		return out
	}

	l := c.Layout
	out := make([]*channel.Sensor, l.Count)
	for i := range out {
		out[i] = channel.New(i+1, l.Voltage.At(i), l.Target.At(i), l.Initial.At(i))
	}
	return out
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{PollingPeriod: c.PollingPeriod, Ticks: c.Ticks}
}

// NewDriver validates c and builds a driver over freshly seeded channels.
func (c *Config) NewDriver() (*sim.Driver, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	comps, err := c.Components()
	if err != nil {
		return nil, err
	}
	return sim.NewDriver(comps, c.Sensors(comps.Table), c.PollingPeriod)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	if c.Calibration != nil {
		cp.Calibration = append([]calibration.Point(nil), c.Calibration...)
	}
	if c.Channels != nil {
		cp.Channels = make([]ChannelConfig, len(c.Channels))
		for i, ch := range c.Channels {
			if ch.InitialTemperature != nil {
				v := *ch.InitialTemperature
				ch.InitialTemperature = &v
			}
			cp.Channels[i] = ch
		}
	}
	return &cp
}
