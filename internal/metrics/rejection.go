package metrics

import (
	"github.com/san-kum/moldtherm/internal/channel"
	"github.com/san-kum/moldtherm/internal/sim"
)

// Rejections is the fraction of readings dropped by the anomaly filter.
type Rejections struct {
	rejected int
	samples  int
}

func NewRejections() *Rejections { return &Rejections{} }

func (r *Rejections) Name() string { return "rejection_rate" }

func (r *Rejections) Observe(statuses []sim.Status) {
	for _, st := range statuses {
		if st.Rejected {
			r.rejected++
		}
		r.samples++
	}
}

func (r *Rejections) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return float64(r.rejected) / float64(r.samples)
}

func (r *Rejections) Reset() {
	r.rejected = 0
	r.samples = 0
}

// Standard returns the metric set reported by the CLI. band is the
// tabletting band used for the in-band ratio.
func Standard(band float64) []sim.Metric {
	return []sim.Metric{
		NewDutyCycle(),
		NewSwitches(),
		NewRejections(),
		NewInBand(band),
		NewShare(channel.Alarm),
	}
}
