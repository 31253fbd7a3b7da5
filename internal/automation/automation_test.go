package automation

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/san-kum/moldtherm/internal/channel"
	"github.com/san-kum/moldtherm/internal/config"
	"github.com/san-kum/moldtherm/internal/sim"
)

const script = `
name: matrix-trip
description: matrix fault mid-run, then a setpoint change
preset: single/nominal
ticks: 40
events:
  - at: 10
    channel: 1
    matrix: false
  - at: 20
    channel: 0
    target: 170
`

func TestParseScenario(t *testing.T) {
	s, err := ParseScenario([]byte(script))
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "matrix-trip" || s.Ticks != 40 || len(s.Events) != 2 {
		t.Fatalf("unexpected scenario %+v", s)
	}
	if s.Events[0].Matrix == nil || *s.Events[0].Matrix {
		t.Error("expected matrix=false on the first event")
	}
	if s.Events[1].Target == nil || *s.Events[1].Target != 170 {
		t.Error("expected target 170 on the second event")
	}
}

func TestParseScenarioInvalid(t *testing.T) {
	tests := map[string]string{
		"negative tick": "events: [{at: -1, channel: 1, target: 150}]",
		"empty event":   "events: [{at: 3, channel: 1}]",
		"bad yaml":      "events: {",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseScenario([]byte(src)); !errors.Is(err, ErrScenario) {
				t.Errorf("expected ErrScenario, got %v", err)
			}
		})
	}
}

func TestScenarioConfig(t *testing.T) {
	for _, preset := range []string{"press", "nope/none"} {
		s := &Scenario{Preset: preset}
		if _, err := s.Config(); !errors.Is(err, ErrScenario) {
			t.Errorf("preset %q: expected ErrScenario, got %v", preset, err)
		}
	}
	cfg, err := (&Scenario{}).Config()
	if err != nil || cfg.Layout.Count != config.DefaultChannels {
		t.Errorf("empty preset should be the default press: %v", err)
	}
}

func TestRunScenario(t *testing.T) {
	s, err := ParseScenario([]byte(script))
	if err != nil {
		t.Fatal(err)
	}

	var ticks int
	res, err := RunScenario(context.Background(), s, func(d *sim.Driver) {
		d.AddObserver(sim.ObserverFunc(func([]sim.Status) { ticks++ }))
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.TicksTaken != 40 || ticks != 40 {
		t.Fatalf("ran %d ticks, observed %d", res.TicksTaken, ticks)
	}

	if got := res.Statuses[9][0].Classification; got == channel.NonOperational {
		t.Error("matrix fault applied too early")
	}
	if got := res.Statuses[10][0].Classification; got != channel.NonOperational {
		t.Errorf("tick 10 classified %s, want non_operational", got)
	}
	if res.Statuses[19][0].Target != 160 || res.Statuses[20][0].Target != 170 {
		t.Errorf("target change at wrong tick: %v / %v",
			res.Statuses[19][0].Target, res.Statuses[20][0].Target)
	}
}

func TestAttachUnknownChannel(t *testing.T) {
	d, err := config.GetPreset("single", "nominal").NewDriver()
	if err != nil {
		t.Fatal(err)
	}
	target := 150.0
	s := &Scenario{Events: []Event{{At: 0, Channel: 9, Target: &target}}}
	if err := s.Attach(d); !errors.Is(err, sim.ErrUnknownChannel) {
		t.Errorf("expected ErrUnknownChannel, got %v", err)
	}
}

func TestAttachAtStart(t *testing.T) {
	d, err := config.GetPreset("single", "nominal").NewDriver()
	if err != nil {
		t.Fatal(err)
	}
	target := 150.0
	s := &Scenario{Events: []Event{{At: 0, Channel: 1, Target: &target}}}
	if err := s.Attach(d); err != nil {
		t.Fatal(err)
	}
	if ch, _ := d.Channel(1); ch.Target != 150 {
		t.Errorf("tick-0 event not applied on attach, target %v", ch.Target)
	}
}

func TestRunMonteCarlo(t *testing.T) {
	cfg := &MonteCarloConfig{
		Base:         config.GetPreset("press", "press8"),
		Perturbation: 0.3,
		NumTrials:    3,
		Ticks:        100,
		Seed:         7,
	}
	first, err := RunMonteCarlo(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 3 {
		t.Fatalf("expected 3 trials, got %d", len(first))
	}
	for _, r := range first {
		if len(r.InitVoltages) != 8 {
			t.Errorf("trial %d: %d start voltages", r.TrialID, len(r.InitVoltages))
		}
		total := 0
		for _, n := range r.Counts {
			total += n
		}
		if total != 8 {
			t.Errorf("trial %d: classified %d channels", r.TrialID, total)
		}
	}

	second, err := RunMonteCarlo(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("same seed produced different trials")
	}

	settled, unsettled := MonteCarloStats(first)
	if settled+unsettled != 3 {
		t.Errorf("stats cover %d trials", settled+unsettled)
	}

	if _, err := RunMonteCarlo(context.Background(), &MonteCarloConfig{}); err == nil {
		t.Error("expected an error without a base config")
	}
}
