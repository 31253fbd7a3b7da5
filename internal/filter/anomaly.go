// Package filter rejects implausible sensor readings before they reach the
// controller and classifier.
package filter

import (
	"math"

	"github.com/san-kum/moldtherm/internal/channel"
)

// DefaultAnomalyThreshold is the largest accepted change between two
// consecutive readings, in degrees Celsius.
const DefaultAnomalyThreshold = 20.0

// Anomaly drops single-sample jumps larger than Threshold. The filter itself
// is stateless; history lives in each channel's LastAccepted field.
type Anomaly struct {
	Threshold float64 `yaml:"anomaly_threshold" json:"anomaly_threshold"`
}

func NewAnomaly(threshold float64) Anomaly {
	return Anomaly{Threshold: threshold}
}

// Apply returns the temperature to display for this tick. A rejected reading
// leaves the channel untouched and returns its previous accepted value.
func (a Anomaly) Apply(s *channel.Sensor, reading float64) (accepted float64, rejected bool) {
	if math.IsNaN(reading) || math.Abs(reading-s.LastAccepted) > a.Threshold {
		return s.LastAccepted, true
	}
	s.LastAccepted = reading
	return reading, false
}
