// Package sim steps a bank of sensor channels through calibration, anomaly
// filtering, hysteresis control and classification at a fixed polling period.
package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/moldtherm/internal/channel"
)

type Driver struct {
	comps     Components
	channels  []*channel.Sensor
	index     map[int]int
	period    time.Duration
	tick      int
	metrics   []Metric
	observers []Observer
}

// NewDriver takes ownership of channels. Channel ids must be unique.
func NewDriver(comps Components, channels []*channel.Sensor, period time.Duration) (*Driver, error) {
	if comps.Table == nil || comps.Controller == nil {
		return nil, ErrIncomplete
	}
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}
	if period <= 0 {
		return nil, fmt.Errorf("polling period must be positive, got %s", period)
	}

	index := make(map[int]int, len(channels))
	for i, ch := range channels {
		if ch == nil {
			return nil, fmt.Errorf("channel %d is nil", i)
		}
		if _, dup := index[ch.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateChannel, ch.ID)
		}
		index[ch.ID] = i
	}

	return &Driver{
		comps:     comps,
		channels:  channels,
		index:     index,
		period:    period,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}, nil
}

func (d *Driver) AddMetric(m Metric)     { d.metrics = append(d.metrics, m) }
func (d *Driver) AddObserver(o Observer) { d.observers = append(d.observers, o) }

func (d *Driver) Components() Components       { return d.comps }
func (d *Driver) PollingPeriod() time.Duration { return d.period }

// TickCount is the number of ticks performed so far.
func (d *Driver) TickCount() int { return d.tick }

// Elapsed is the simulated time covered by the ticks performed so far.
func (d *Driver) Elapsed() time.Duration { return time.Duration(d.tick) * d.period }

// Tick advances every channel by one polling period and returns their
// statuses in channel order. Metrics and observers see every tick.
func (d *Driver) Tick() []Status {
	now := float64(d.tick) * d.period.Seconds()
	statuses := make([]Status, len(d.channels))
	for i, ch := range d.channels {
		st := d.comps.Step(ch)
		st.Tick = d.tick
		st.Time = now
		statuses[i] = st
	}
	d.tick++

	for _, m := range d.metrics {
		m.Observe(statuses)
	}
	for _, obs := range d.observers {
		obs.OnTick(statuses)
	}
	return statuses
}

// Run performs ticks ticks, checking ctx between them. Metrics are reset at
// the start; a cancelled run returns the partial result with ctx.Err().
func (d *Driver) Run(ctx context.Context, ticks int) (*Result, error) {
	if ticks <= 0 {
		return nil, fmt.Errorf("ticks must be positive, got %d", ticks)
	}

	result := &Result{
		Statuses: make([][]Status, 0, ticks),
		Times:    make([]float64, 0, ticks),
		Metrics:  make(map[string]float64),
	}

	for _, m := range d.metrics {
		m.Reset()
	}

	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			d.collect(result)
			return result, &TickError{Tick: d.tick, Time: d.Elapsed().Seconds(), Wrapped: ctx.Err()}
		default:
		}

		statuses := d.Tick()
		result.Statuses = append(result.Statuses, statuses)
		result.Times = append(result.Times, statuses[0].Time)
		result.TicksTaken++
	}

	d.collect(result)
	return result, nil
}

func (d *Driver) collect(result *Result) {
	for _, m := range d.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// Channels returns copies of the channel states in channel order.
func (d *Driver) Channels() []channel.Sensor {
	out := make([]channel.Sensor, len(d.channels))
	for i, ch := range d.channels {
		out[i] = *ch.Clone()
	}
	return out
}

// Channel returns a copy of one channel's state.
func (d *Driver) Channel(id int) (channel.Sensor, error) {
	ch, err := d.lookup(id)
	if err != nil {
		return channel.Sensor{}, err
	}
	return *ch.Clone(), nil
}

// SetEquipment updates the matrix and punch flags read by the classifier.
func (d *Driver) SetEquipment(id int, matrix, punch bool) error {
	ch, err := d.lookup(id)
	if err != nil {
		return err
	}
	ch.MatrixOperational = matrix
	ch.PunchOperational = punch
	return nil
}

// SetTarget changes a channel's setpoint from the next tick on.
func (d *Driver) SetTarget(id int, target float64) error {
	ch, err := d.lookup(id)
	if err != nil {
		return err
	}
	ch.Target = target
	return nil
}

func (d *Driver) lookup(id int) (*channel.Sensor, error) {
	i, ok := d.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownChannel, id)
	}
	return d.channels[i], nil
}
