package sim

import (
	"time"

	"github.com/san-kum/moldtherm/internal/calibration"
	"github.com/san-kum/moldtherm/internal/channel"
	"github.com/san-kum/moldtherm/internal/control"
	"github.com/san-kum/moldtherm/internal/filter"
)

// Status is one channel's outcome for one tick. Voltage and Raw describe the
// sample taken at the start of the tick; HeaterOn is the heater state chosen
// for the next period.
type Status struct {
	Tick           int                    `json:"tick"`
	Time           float64                `json:"time"`
	ChannelID      int                    `json:"channel"`
	Voltage        float64                `json:"voltage"`
	Raw            float64                `json:"raw"`
	Temperature    float64                `json:"temperature"`
	Target         float64                `json:"target"`
	HeaterOn       bool                   `json:"heater_on"`
	Switched       bool                   `json:"switched"`
	Rejected       bool                   `json:"rejected"`
	Classification channel.Classification `json:"classification"`
}

// Controller advances one channel's heater and voltage by one period and
// reports whether the heater switched.
type Controller interface {
	Step(s *channel.Sensor) bool
}

// Components are the stateless stages applied to every channel.
type Components struct {
	Table      *calibration.Table
	Filter     filter.Anomaly
	Controller Controller
	Classifier channel.Classifier
}

var (
	_ Controller = (*control.Hysteresis)(nil)
	_ Controller = (*control.Manual)(nil)
)

type Metric interface {
	Name() string
	Observe(statuses []Status)
	Value() float64
	Reset()
}

type Observer interface {
	OnTick(statuses []Status)
}

type ObserverFunc func(statuses []Status)

func (f ObserverFunc) OnTick(statuses []Status) { f(statuses) }

type Config struct {
	PollingPeriod time.Duration
	Ticks         int
}

type Result struct {
	Statuses   [][]Status
	Times      []float64
	Metrics    map[string]float64
	TicksTaken int
}

// Series extracts one channel's filtered temperature trace.
func (r *Result) Series(channelID int) []float64 {
	out := make([]float64, 0, len(r.Statuses))
	for _, tick := range r.Statuses {
		for _, st := range tick {
			if st.ChannelID == channelID {
				out = append(out, st.Temperature)
				break
			}
		}
	}
	return out
}

// Last returns the statuses of the final tick, or nil for an empty result.
func (r *Result) Last() []Status {
	if len(r.Statuses) == 0 {
		return nil
	}
	return r.Statuses[len(r.Statuses)-1]
}
