package automation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/san-kum/moldtherm/internal/channel"
	"github.com/san-kum/moldtherm/internal/config"
	"github.com/san-kum/moldtherm/internal/sim"
)

// MonteCarloConfig defines randomized start-up trials: every channel's initial
// thermocouple voltage is shifted uniformly within +-Perturbation mV.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Ticks        int
	Seed         int64
}

// MonteCarloResult holds the end state of one trial.
type MonteCarloResult struct {
	TrialID      int
	InitVoltages []float64
	Counts       map[channel.Classification]int
	// Settled is true when every channel ended Operational.
	Settled bool
}

// RunMonteCarlo executes the trials sequentially; the same seed reproduces the
// same trials. A zero seed draws one from the clock.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.Base == nil || cfg.NumTrials <= 0 {
		return nil, errors.New("automation: monte carlo needs a base config and at least one trial")
	}
	if err := cfg.Base.Validate(); err != nil {
		return nil, err
	}
	comps, err := cfg.Base.Components()
	if err != nil {
		return nil, err
	}
	ticks := cfg.Ticks
	if ticks <= 0 {
		ticks = cfg.Base.Ticks
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	results := make([]MonteCarloResult, 0, cfg.NumTrials)
	for trial := 0; trial < cfg.NumTrials; trial++ {
		sensors := cfg.Base.Sensors(comps.Table)
		start := make([]float64, len(sensors))
		for i, s := range sensors {
			s.Voltage = max(0, s.Voltage+(rng.Float64()-0.5)*2*cfg.Perturbation)
			start[i] = s.Voltage
		}

		d, err := sim.NewDriver(comps, sensors, cfg.Base.PollingPeriod)
		if err != nil {
			return results, err
		}
		res, err := d.Run(ctx, ticks)
		if err != nil {
			return results, fmt.Errorf("trial %d: %w", trial, err)
		}

		counts := make(map[channel.Classification]int)
		for _, st := range res.Last() {
			counts[st.Classification]++
		}
		results = append(results, MonteCarloResult{
			TrialID:      trial,
			InitVoltages: start,
			Counts:       counts,
			Settled:      counts[channel.Operational] == len(sensors),
		})
	}

	return results, nil
}

// MonteCarloStats counts settled and unsettled trials.
func MonteCarloStats(results []MonteCarloResult) (settled int, unsettled int) {
	for _, r := range results {
		if r.Settled {
			settled++
		} else {
			unsettled++
		}
	}
	return
}
