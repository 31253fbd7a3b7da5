package analysis

import (
	"math"

	"github.com/san-kum/moldtherm/internal/sim"
)

type Cycle struct {
	ChannelID int
	Switches  int
	// FirstSwitch is the tick of the first heater switch, -1 if none.
	FirstSwitch int
	// Period is the mean time between heater turn-ons in seconds, 0 with
	// fewer than two turn-ons.
	Period float64
	// Min and Max are filtered temperature extremes from the first switch on.
	Min, Max float64
	// Overshoot and Undershoot measure Max and Min against the target in
	// force at the tick each was reached.
	Overshoot  float64
	Undershoot float64
}

// Settled reports whether the channel completed at least one full cycle.
func (c Cycle) Settled() bool { return c.Period > 0 }

// Cycles returns one entry per channel in the order of the first tick.
func Cycles(res *sim.Result) []Cycle {
	if len(res.Statuses) == 0 {
		return nil
	}

	first := res.Statuses[0]
	out := make([]Cycle, len(first))
	index := make(map[int]int, len(first))
	onTimes := make([][]float64, len(first))
	for i, st := range first {
		out[i] = Cycle{ChannelID: st.ChannelID, FirstSwitch: -1, Min: math.Inf(1), Max: math.Inf(-1)}
		index[st.ChannelID] = i
	}

	for _, tick := range res.Statuses {
		for _, st := range tick {
			i, ok := index[st.ChannelID]
			if !ok {
				continue
			}
			c := &out[i]
			if st.Switched {
				c.Switches++
				if c.FirstSwitch < 0 {
					c.FirstSwitch = st.Tick
				}
				if st.HeaterOn {
					onTimes[i] = append(onTimes[i], st.Time)
				}
			}
			if c.FirstSwitch >= 0 {
				if st.Temperature > c.Max {
					c.Max = st.Temperature
					c.Overshoot = st.Temperature - st.Target
				}
				if st.Temperature < c.Min {
					c.Min = st.Temperature
					c.Undershoot = st.Target - st.Temperature
				}
			}
		}
	}

	for i := range out {
		if on := onTimes[i]; len(on) >= 2 {
			out[i].Period = (on[len(on)-1] - on[0]) / float64(len(on)-1)
		}
		if out[i].FirstSwitch < 0 {
			out[i].Min, out[i].Max = 0, 0
		}
	}
	return out
}
