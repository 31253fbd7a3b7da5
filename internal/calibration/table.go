// Package calibration maps thermocouple output voltage to temperature and back
// using a piecewise-linear reference table.
//
// A [Table] is validated once by [NewTable] and is read-only afterwards, so
// lookups never fail:
//
//	tbl, err := calibration.NewTable(calibration.DefaultPoints())
//	if err != nil {
//	    return err
//	}
//	t := tbl.VoltageToTemperature(11.4) // 160
package calibration

import (
	"fmt"
	"math"
)

// Point is a single reference pair: temperature in degrees Celsius and
// thermocouple voltage in millivolts.
type Point struct {
	Temperature float64 `yaml:"temperature" json:"temperature"`
	Voltage     float64 `yaml:"voltage" json:"voltage"`
}

// Table is an ordered, validated set of reference points.
type Table struct {
	points []Point
}

// NewTable validates points and returns a table over a private copy of them.
// Temperature must be strictly increasing and voltage non-decreasing.
func NewTable(points []Point) (*Table, error) {
	if len(points) < 2 {
		return nil, ErrTooFewPoints
	}

	for i, p := range points {
		if math.IsNaN(p.Temperature) || math.IsNaN(p.Voltage) {
			return nil, &Error{Index: i, Point: p, Reason: "NaN value", Wrapped: ErrMalformed}
		}
		if i == 0 {
			continue
		}
		prev := points[i-1]
		if p.Temperature <= prev.Temperature {
			return nil, &Error{
				Index:   i,
				Point:   p,
				Reason:  fmt.Sprintf("temperature does not increase after %.2f C", prev.Temperature),
				Wrapped: ErrMalformed,
			}
		}
		if p.Voltage < prev.Voltage {
			return nil, &Error{
				Index:   i,
				Point:   p,
				Reason:  fmt.Sprintf("voltage drops below %.3f mV", prev.Voltage),
				Wrapped: ErrMalformed,
			}
		}
	}

	cp := make([]Point, len(points))
	copy(cp, points)
	return &Table{points: cp}, nil
}

// MustTable is NewTable for tables known to be valid at compile time.
func MustTable(points []Point) *Table {
	t, err := NewTable(points)
	if err != nil {
		panic(err)
	}
	return t
}

// Default returns the table built from DefaultPoints.
func Default() *Table {
	return MustTable(DefaultPoints())
}

// Len returns the number of reference points.
func (t *Table) Len() int { return len(t.points) }

// Points returns a copy of the reference points.
func (t *Table) Points() []Point {
	cp := make([]Point, len(t.points))
	copy(cp, t.points)
	return cp
}

// First returns the lowest reference point.
func (t *Table) First() Point { return t.points[0] }

// Last returns the highest reference point.
func (t *Table) Last() Point { return t.points[len(t.points)-1] }

// Range returns the temperature span covered by the table.
func (t *Table) Range() (lo, hi float64) {
	return t.First().Temperature, t.Last().Temperature
}

// VoltageToTemperature converts a voltage in mV to degrees Celsius. Voltages
// outside the table clamp to the end temperatures.
func (t *Table) VoltageToTemperature(voltage float64) float64 {
	return interpolate(t.points, voltage,
		func(p Point) float64 { return p.Voltage },
		func(p Point) float64 { return p.Temperature })
}

// TemperatureToVoltage converts degrees Celsius to the expected thermocouple
// voltage in mV, clamping outside the table.
func (t *Table) TemperatureToVoltage(temperature float64) float64 {
	return interpolate(t.points, temperature,
		func(p Point) float64 { return p.Temperature },
		func(p Point) float64 { return p.Voltage })
}

// interpolate walks the table for the first segment whose keys bracket x.
// Keys are non-decreasing, which NewTable guarantees.
func interpolate(points []Point, x float64, key, val func(Point) float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	first, last := points[0], points[len(points)-1]
	if x <= key(first) {
		return val(first)
	}
	if x >= key(last) {
		return val(last)
	}

	for i := 0; i < len(points)-1; i++ {
		k1, k2 := key(points[i]), key(points[i+1])
		if x < k1 || x > k2 {
			continue
		}
		v1, v2 := val(points[i]), val(points[i+1])
		if k2 == k1 {
			return v1
		}
		return v1 + (x-k1)*(v2-v1)/(k2-k1)
	}

	// unreachable for a validated table
	return val(last)
}
