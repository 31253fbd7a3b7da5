// Package automation runs scripted press scenarios and randomized start-up
// trials on top of the simulation driver.
package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/moldtherm/internal/config"
	"github.com/san-kum/moldtherm/internal/sim"
)

var ErrScenario = errors.New("automation: invalid scenario")

// Scenario defines a scripted run: a base preset and operator events applied
// at given ticks.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Preset      string  `yaml:"preset"`
	Ticks       int     `yaml:"ticks"`
	Events      []Event `yaml:"events"`
}

// Event changes one channel, or every channel when Channel is 0, before the
// tick At is computed. Nil fields are left unchanged.
type Event struct {
	At      int      `yaml:"at"`
	Channel int      `yaml:"channel"`
	Target  *float64 `yaml:"target,omitempty"`
	Matrix  *bool    `yaml:"matrix,omitempty"`
	Punch   *bool    `yaml:"punch,omitempty"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScenario, err)
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (s *Scenario) Validate() error {
	if s.Ticks < 0 {
		return fmt.Errorf("%w: ticks must not be negative", ErrScenario)
	}
	for i, ev := range s.Events {
		if ev.At < 0 {
			return fmt.Errorf("%w: event %d: negative tick %d", ErrScenario, i+1, ev.At)
		}
		if ev.Target == nil && ev.Matrix == nil && ev.Punch == nil {
			return fmt.Errorf("%w: event %d changes nothing", ErrScenario, i+1)
		}
	}
	return nil
}

// Config resolves the base preset ("group/name"); an empty preset means the
// default press.
func (s *Scenario) Config() (*config.Config, error) {
	if s.Preset == "" {
		return config.DefaultConfig(), nil
	}
	group, name, ok := strings.Cut(s.Preset, "/")
	if !ok {
		return nil, fmt.Errorf("%w: preset %q is not group/name", ErrScenario, s.Preset)
	}
	cfg := config.GetPreset(group, name)
	if cfg == nil {
		return nil, fmt.Errorf("%w: unknown preset %q", ErrScenario, s.Preset)
	}
	return cfg, nil
}

// Attach checks every event against the driver's channels, applies the ones
// due at the driver's current tick and schedules the rest as an observer.
func (s *Scenario) Attach(d *sim.Driver) error {
	for i, ev := range s.Events {
		if ev.Channel == 0 {
			continue
		}
		if _, err := d.Channel(ev.Channel); err != nil {
			return fmt.Errorf("event %d: %w", i+1, err)
		}
	}

	if err := s.apply(d, d.TickCount()); err != nil {
		return err
	}
	d.AddObserver(sim.ObserverFunc(func([]sim.Status) {
		// ids were checked above, so apply cannot fail here
		_ = s.apply(d, d.TickCount())
	}))
	return nil
}

func (s *Scenario) apply(d *sim.Driver, tick int) error {
	for i, ev := range s.Events {
		if ev.At != tick {
			continue
		}
		ids := []int{ev.Channel}
		if ev.Channel == 0 {
			ids = ids[:0]
			for _, ch := range d.Channels() {
				ids = append(ids, ch.ID)
			}
		}
		for _, id := range ids {
			if err := applyEvent(d, id, ev); err != nil {
				return fmt.Errorf("event %d: %w", i+1, err)
			}
		}
	}
	return nil
}

func applyEvent(d *sim.Driver, id int, ev Event) error {
	ch, err := d.Channel(id)
	if err != nil {
		return err
	}
	if ev.Target != nil {
		if err := d.SetTarget(id, *ev.Target); err != nil {
			return err
		}
	}
	if ev.Matrix != nil || ev.Punch != nil {
		matrix, punch := ch.MatrixOperational, ch.PunchOperational
		if ev.Matrix != nil {
			matrix = *ev.Matrix
		}
		if ev.Punch != nil {
			punch = *ev.Punch
		}
		return d.SetEquipment(id, matrix, punch)
	}
	return nil
}

// RunScenario builds the preset's driver, lets prepare attach metrics or
// observers, and runs the scripted events to completion.
func RunScenario(ctx context.Context, scenario *Scenario, prepare func(*sim.Driver)) (*sim.Result, error) {
	cfg, err := scenario.Config()
	if err != nil {
		return nil, err
	}
	d, err := cfg.NewDriver()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	if prepare != nil {
		prepare(d)
	}
	if err := scenario.Attach(d); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	ticks := scenario.Ticks
	if ticks == 0 {
		ticks = cfg.Ticks
	}
	return d.Run(ctx, ticks)
}
