package optim

import "github.com/san-kum/moldtherm/internal/sim"

// BandCost charges the share of channel-ticks outside ±band of the target
// plus switchWeight per heater switch per channel-tick.
func BandCost(band, switchWeight float64) Objective {
	return func(res *sim.Result) float64 {
		var outside, switches, samples int
		for _, tick := range res.Statuses {
			for _, st := range tick {
				samples++
				if st.Temperature < st.Target-band || st.Temperature > st.Target+band {
					outside++
				}
				if st.Switched {
					switches++
				}
			}
		}
		if samples == 0 {
			return 0
		}
		return (float64(outside) + switchWeight*float64(switches)) / float64(samples)
	}
}
