// Package channel holds the per-zone sensor state and the mold-state
// classification derived from it.
package channel

// Sensor is the mutable state of one thermocouple/heater pair. A Sensor is
// owned by a single driver and must not be shared between drivers.
type Sensor struct {
	ID int

	// Voltage is the current thermocouple output in mV.
	Voltage float64
	// Target is the temperature setpoint in degrees Celsius.
	Target float64
	// Heating is true while the heater is on.
	Heating bool

	MatrixOperational bool
	PunchOperational  bool

	// LastAccepted is the most recent temperature that passed anomaly
	// filtering.
	LastAccepted float64
}

// New returns a heating channel with both tool halves operational.
func New(id int, voltage, target, lastAccepted float64) *Sensor {
	return &Sensor{
		ID:                id,
		Voltage:           voltage,
		Target:            target,
		Heating:           true,
		MatrixOperational: true,
		PunchOperational:  true,
		LastAccepted:      lastAccepted,
	}
}

// Operational reports whether both the matrix and the punch are usable.
func (s *Sensor) Operational() bool {
	return s.MatrixOperational && s.PunchOperational
}

// Clone returns an independent copy.
func (s *Sensor) Clone() *Sensor {
	c := *s
	return &c
}
