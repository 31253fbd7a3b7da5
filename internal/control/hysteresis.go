package control

import (
	"fmt"

	"github.com/san-kum/moldtherm/internal/calibration"
	"github.com/san-kum/moldtherm/internal/channel"
)

const (
	DefaultGain            = 0.05
	DefaultVoltageMax      = 14.2 // mV, 195 C on the default table
	DefaultVoltageMin      = 6.9  // mV, 100 C on the default table
	DefaultControlAccuracy = 4.0
)

// Mode is the heater state of a channel.
type Mode int

const (
	Heating Mode = iota
	Cooling
)

func (m Mode) String() string {
	if m == Heating {
		return "heating"
	}
	return "cooling"
}

// ModeOf reports the controller mode stored on a channel.
func ModeOf(s *channel.Sensor) Mode {
	if s.Heating {
		return Heating
	}
	return Cooling
}

// Params are the tunable constants of the hysteresis loop. Voltages are in mV,
// bands in degrees Celsius.
type Params struct {
	HeatingGain float64 `yaml:"heating_gain" json:"heating_gain"`
	CoolingGain float64 `yaml:"cooling_gain" json:"cooling_gain"`
	VoltageMax  float64 `yaml:"voltage_max" json:"voltage_max"`
	VoltageMin  float64 `yaml:"voltage_min" json:"voltage_min"`
	HeatingBand float64 `yaml:"heating_band" json:"heating_band"`
	CoolingBand float64 `yaml:"cooling_band" json:"cooling_band"`
}

// DefaultParams switches to cooling at target+accuracy/2 and back to heating at
// target-accuracy.
func DefaultParams() Params {
	return ParamsFromAccuracy(DefaultControlAccuracy, true)
}

// ParamsFromAccuracy derives both bands from one control accuracy. The heating
// band is always accuracy/2; the cooling band is the full accuracy when
// coolingFull is set and accuracy/2 otherwise.
func ParamsFromAccuracy(accuracy float64, coolingFull bool) Params {
	cooling := accuracy / 2
	if coolingFull {
		cooling = accuracy
	}
	return Params{
		HeatingGain: DefaultGain,
		CoolingGain: DefaultGain,
		VoltageMax:  DefaultVoltageMax,
		VoltageMin:  DefaultVoltageMin,
		HeatingBand: accuracy / 2,
		CoolingBand: cooling,
	}
}

// Validate checks that gains keep the update a contraction and the asymptotes
// are ordered.
func (p Params) Validate() error {
	if p.HeatingGain <= 0 || p.HeatingGain > 1 {
		return fmt.Errorf("control: heating gain %v outside (0, 1]", p.HeatingGain)
	}
	if p.CoolingGain <= 0 || p.CoolingGain > 1 {
		return fmt.Errorf("control: cooling gain %v outside (0, 1]", p.CoolingGain)
	}
	if p.VoltageMin >= p.VoltageMax {
		return fmt.Errorf("control: voltage min %v not below max %v", p.VoltageMin, p.VoltageMax)
	}
	if p.HeatingBand < 0 || p.CoolingBand < 0 {
		return fmt.Errorf("control: negative band (heating %v, cooling %v)", p.HeatingBand, p.CoolingBand)
	}
	return nil
}

// Hysteresis is stateless across channels; the mode lives on each channel.
type Hysteresis struct {
	params Params
	table  *calibration.Table
}

func NewHysteresis(params Params, table *calibration.Table) *Hysteresis {
	return &Hysteresis{params: params, table: table}
}

func (h *Hysteresis) Params() Params { return h.params }

// Step advances one channel by one polling period and reports whether the
// heater switched. At most one switch happens per call.
func (h *Hysteresis) Step(s *channel.Sensor) bool {
	p := h.params

	if s.Heating {
		heat(p, s)
		if h.table.VoltageToTemperature(s.Voltage) >= s.Target+p.HeatingBand {
			s.Heating = false
			return true
		}
		return false
	}

	cool(p, s)
	if h.table.VoltageToTemperature(s.Voltage) <= s.Target-p.CoolingBand {
		s.Heating = true
		return true
	}
	return false
}

// heat moves the voltage a HeatingGain fraction of the way to VoltageMax.
func heat(p Params, s *channel.Sensor) {
	s.Voltage += p.HeatingGain * (p.VoltageMax - s.Voltage)
}

// cool moves the voltage a CoolingGain fraction of the way to VoltageMin.
func cool(p Params, s *channel.Sensor) {
	s.Voltage -= p.CoolingGain * (s.Voltage - p.VoltageMin)
}

// UpperSwitch is the temperature at which a heating channel turns off.
func (h *Hysteresis) UpperSwitch(target float64) float64 {
	return target + h.params.HeatingBand
}

// LowerSwitch is the temperature at which a cooling channel turns on.
func (h *Hysteresis) LowerSwitch(target float64) float64 {
	return target - h.params.CoolingBand
}
