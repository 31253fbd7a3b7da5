package control

import (
	"math"
	"testing"

	"github.com/san-kum/moldtherm/internal/calibration"
	"github.com/san-kum/moldtherm/internal/channel"
)

func TestHysteresis_HeatingStep(t *testing.T) {
	h := NewHysteresis(DefaultParams(), calibration.Default())
	s := channel.New(0, 6.0, 160, 0)

	if h.Step(s) {
		t.Fatal("unexpected switch on first step")
	}
	want := 6.0 + 0.05*(14.2-6.0)
	if s.Voltage != want {
		t.Errorf("voltage = %v, want %v", s.Voltage, want)
	}
	if !s.Heating {
		t.Error("channel left heating mode")
	}
}

func TestHysteresis_CoolingStep(t *testing.T) {
	h := NewHysteresis(DefaultParams(), calibration.Default())
	s := channel.New(0, 12.0, 160, 0)
	s.Heating = false

	if h.Step(s) {
		t.Fatal("unexpected switch")
	}
	want := 12.0 - 0.05*(12.0-6.9)
	if s.Voltage != want {
		t.Errorf("voltage = %v, want %v", s.Voltage, want)
	}
}

func TestHysteresis_Convergence(t *testing.T) {
	tbl := calibration.Default()
	h := NewHysteresis(DefaultParams(), tbl)
	s := channel.New(0, 6.0, 160, 0)

	var switches []int
	for tick := 0; tick < 120; tick++ {
		before := s.Voltage
		wasHeating := s.Heating

		switched := h.Step(s)
		temp := tbl.VoltageToTemperature(s.Voltage)

		if wasHeating {
			if s.Voltage <= before {
				t.Fatalf("tick %d: voltage did not rise while heating (%v -> %v)", tick, before, s.Voltage)
			}
			if switched != (temp >= h.UpperSwitch(160)) {
				t.Fatalf("tick %d: switched=%v at %.2f C", tick, switched, temp)
			}
		} else {
			if s.Voltage >= before {
				t.Fatalf("tick %d: voltage did not fall while cooling (%v -> %v)", tick, before, s.Voltage)
			}
			if switched != (temp <= h.LowerSwitch(160)) {
				t.Fatalf("tick %d: switched=%v at %.2f C", tick, switched, temp)
			}
		}
		if switched == (wasHeating == s.Heating) {
			t.Fatalf("tick %d: switched=%v but mode went %v -> %v", tick, switched, wasHeating, s.Heating)
		}
		if switched {
			switches = append(switches, tick)
		}
	}

	if len(switches) < 4 {
		t.Fatalf("expected the loop to cycle, got switches at %v", switches)
	}
	if switches[0] != 22 {
		t.Errorf("first switch at tick %d, want 22", switches[0])
	}
	for i := 1; i < len(switches); i++ {
		if switches[i]-switches[i-1] < 2 {
			t.Errorf("chattering: switches at ticks %d and %d", switches[i-1], switches[i])
		}
	}
}

func TestHysteresis_SymmetricBands(t *testing.T) {
	tbl := calibration.Default()
	full := NewHysteresis(ParamsFromAccuracy(4, true), tbl)
	half := NewHysteresis(ParamsFromAccuracy(4, false), tbl)

	if full.LowerSwitch(160) != 156 {
		t.Errorf("full cooling band: lower switch %v", full.LowerSwitch(160))
	}
	if half.LowerSwitch(160) != 158 {
		t.Errorf("half cooling band: lower switch %v", half.LowerSwitch(160))
	}
	if full.UpperSwitch(160) != 162 || half.UpperSwitch(160) != 162 {
		t.Error("heating band should be accuracy/2 in both variants")
	}

	// cooling from just under 162 C: the half band flips back sooner
	start := tbl.TemperatureToVoltage(161.9)
	a := channel.New(0, start, 160, 0)
	b := channel.New(1, start, 160, 0)
	a.Heating, b.Heating = false, false

	ticksUntilHeat := func(ctrl *Hysteresis, s *channel.Sensor) int {
		for i := 1; i <= 100; i++ {
			if ctrl.Step(s) {
				return i
			}
		}
		return -1
	}
	na, nb := ticksUntilHeat(full, a), ticksUntilHeat(half, b)
	if na <= nb || nb < 1 {
		t.Errorf("expected full band to cool longer: full=%d half=%d", na, nb)
	}
}

func TestHysteresis_ApproachesAsymptotes(t *testing.T) {
	h := NewHysteresis(DefaultParams(), calibration.Default())

	// unreachable setpoint keeps the heater on
	s := channel.New(0, 7.0, 290, 0)
	for i := 0; i < 500; i++ {
		h.Step(s)
	}
	if !s.Heating {
		t.Fatal("heater switched off below an unreachable setpoint")
	}
	if s.Voltage > DefaultVoltageMax || DefaultVoltageMax-s.Voltage > 1e-6 {
		t.Errorf("voltage %v did not settle at %v", s.Voltage, DefaultVoltageMax)
	}
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(p *Params)
		valid bool
	}{
		{"default", func(p *Params) {}, true},
		{"zero heating gain", func(p *Params) { p.HeatingGain = 0 }, false},
		{"cooling gain above one", func(p *Params) { p.CoolingGain = 1.5 }, false},
		{"inverted asymptotes", func(p *Params) { p.VoltageMin, p.VoltageMax = 14.2, 6.9 }, false},
		{"negative band", func(p *Params) { p.CoolingBand = -1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mod(&p)
			err := p.Validate()
			if tt.valid != (err == nil) {
				t.Errorf("Validate() = %v, valid=%v", err, tt.valid)
			}
		})
	}
}

func TestModeOf(t *testing.T) {
	s := channel.New(0, 0, 0, 0)
	if ModeOf(s) != Heating || ModeOf(s).String() != "heating" {
		t.Error("new channel should be heating")
	}
	s.Heating = false
	if ModeOf(s) != Cooling || ModeOf(s).String() != "cooling" {
		t.Error("expected cooling")
	}
}

func TestManual(t *testing.T) {
	p := DefaultParams()

	on := NewManual(p, true)
	s := channel.New(1, 6.9, 160, 100)
	for i := 0; i < 300; i++ {
		if on.Step(s) {
			t.Fatalf("forced heating switched at tick %d", i)
		}
	}
	if !s.Heating || DefaultVoltageMax-s.Voltage > 1e-5 {
		t.Errorf("open-loop heating: heating=%v voltage=%v", s.Heating, s.Voltage)
	}

	off := NewManual(p, false)
	if !off.Step(s) {
		t.Error("forcing a heating channel off should report a switch")
	}
	if s.Heating {
		t.Error("channel still heating")
	}
	before := s.Voltage
	if off.Step(s) {
		t.Error("second forced cooling step reported a switch")
	}
	want := before - p.CoolingGain*(before-p.VoltageMin)
	if math.Abs(s.Voltage-want) > 1e-12 {
		t.Errorf("cooling step: got %v, want %v", s.Voltage, want)
	}
}
