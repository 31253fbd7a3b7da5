// Package metrics summarises a run of the simulation driver.
package metrics

import "github.com/san-kum/moldtherm/internal/sim"

// DutyCycle is the fraction of channel-ticks with the heater on.
type DutyCycle struct {
	on      int
	samples int
}

func NewDutyCycle() *DutyCycle { return &DutyCycle{} }

func (d *DutyCycle) Name() string { return "duty_cycle" }

func (d *DutyCycle) Observe(statuses []sim.Status) {
	for _, st := range statuses {
		if st.HeaterOn {
			d.on++
		}
		d.samples++
	}
}

func (d *DutyCycle) Value() float64 {
	if d.samples == 0 {
		return 0
	}
	return float64(d.on) / float64(d.samples)
}

func (d *DutyCycle) Reset() {
	d.on = 0
	d.samples = 0
}

// Switches counts heater transitions over all channels.
type Switches struct {
	count int
}

func NewSwitches() *Switches { return &Switches{} }

func (s *Switches) Name() string { return "switches" }

func (s *Switches) Observe(statuses []sim.Status) {
	for _, st := range statuses {
		if st.Switched {
			s.count++
		}
	}
}

func (s *Switches) Value() float64 { return float64(s.count) }

func (s *Switches) Reset() { s.count = 0 }
