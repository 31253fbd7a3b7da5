package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/moldtherm/internal/channel"
)

// Variant is a named set of components to run against the same channel
// layout.
type Variant struct {
	Name       string
	Components Components
}

// Comparison runs several variants over identical starting channels, one
// after another, each on a fresh driver.
type Comparison struct {
	seed       func() []*channel.Sensor
	newMetrics func() []Metric
}

// NewComparison takes a seed that must return freshly allocated channels on
// every call, and an optional metric factory.
func NewComparison(seed func() []*channel.Sensor, newMetrics func() []Metric) *Comparison {
	return &Comparison{seed: seed, newMetrics: newMetrics}
}

func (c *Comparison) Run(ctx context.Context, variants []Variant, cfg Config) ([]*Result, error) {
	results := make([]*Result, 0, len(variants))
	for _, v := range variants {
		d, err := NewDriver(v.Components, c.seed(), cfg.PollingPeriod)
		if err != nil {
			return nil, fmt.Errorf("variant %q: %w", v.Name, err)
		}
		if c.newMetrics != nil {
			for _, m := range c.newMetrics() {
				d.AddMetric(m)
			}
		}

		res, err := d.Run(ctx, cfg.Ticks)
		if err != nil {
			return nil, fmt.Errorf("variant %q: %w", v.Name, err)
		}
		results = append(results, res)
	}
	return results, nil
}
