// Package adc models the digitizing front end: an N-bit converter over a fixed
// input voltage range.
package adc

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig indicates an unusable converter configuration.
var ErrInvalidConfig = errors.New("adc: invalid configuration")

const maxResolutionBits = 32

// Config describes the converter input range and resolution.
type Config struct {
	VoltageMin     float64 `yaml:"voltage_min" json:"voltage_min"`
	VoltageMax     float64 `yaml:"voltage_max" json:"voltage_max"`
	ResolutionBits int     `yaml:"resolution_bits" json:"resolution_bits"`
}

// DefaultConfig is the 8-bit converter over 0..10 V used by the mold press.
func DefaultConfig() Config {
	return Config{
		VoltageMin:     0.0,
		VoltageMax:     10.0,
		ResolutionBits: 8,
	}
}

// Validate reports whether the range is ordered and the resolution is usable.
func (c Config) Validate() error {
	if math.IsNaN(c.VoltageMin) || math.IsNaN(c.VoltageMax) || c.VoltageMin >= c.VoltageMax {
		return fmt.Errorf("%w: voltage range [%v, %v]", ErrInvalidConfig, c.VoltageMin, c.VoltageMax)
	}
	if c.ResolutionBits < 1 || c.ResolutionBits > maxResolutionBits {
		return fmt.Errorf("%w: resolution %d bits", ErrInvalidConfig, c.ResolutionBits)
	}
	return nil
}

// MaxCode is the largest output code, 2^bits - 1.
func (c Config) MaxCode() int {
	return 1<<uint(c.ResolutionBits) - 1
}

// Step is the voltage width of one code.
func (c Config) Step() float64 {
	return (c.VoltageMax - c.VoltageMin) / float64(c.MaxCode())
}

// Quantize clamps voltage to the input range and returns its code, the
// largest one whose Dequantize value does not exceed the voltage. NaN reads
// as code 0.
func Quantize(voltage float64, cfg Config) int {
	if math.IsNaN(voltage) {
		return 0
	}
	voltage = math.Max(cfg.VoltageMin, math.Min(cfg.VoltageMax, voltage))
	ratio := (voltage - cfg.VoltageMin) / (cfg.VoltageMax - cfg.VoltageMin)
	maxCode := cfg.MaxCode()
	code := min(max(int(math.Floor(ratio*float64(maxCode))), 0), maxCode)

	// floor of the scaled ratio can land one code off at exact boundaries
	if code < maxCode && Dequantize(code+1, cfg) <= voltage {
		code++
	} else if code > 0 && Dequantize(code, cfg) > voltage {
		code--
	}
	return code
}

// Dequantize returns the voltage at the bottom of a code's interval. Codes
// outside [0, MaxCode] are clamped.
func Dequantize(code int, cfg Config) float64 {
	maxCode := cfg.MaxCode()
	if code < 0 {
		code = 0
	} else if code > maxCode {
		code = maxCode
	}
	return float64(code)/float64(maxCode)*(cfg.VoltageMax-cfg.VoltageMin) + cfg.VoltageMin
}
