package sim_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/moldtherm/internal/calibration"
	"github.com/san-kum/moldtherm/internal/channel"
	"github.com/san-kum/moldtherm/internal/control"
	"github.com/san-kum/moldtherm/internal/filter"
	"github.com/san-kum/moldtherm/internal/sim"
)

const period = 810 * time.Millisecond

func components(params control.Params) sim.Components {
	tbl := calibration.Default()
	return sim.Components{
		Table:      tbl,
		Filter:     filter.NewAnomaly(filter.DefaultAnomalyThreshold),
		Controller: control.NewHysteresis(params, tbl),
		Classifier: channel.DefaultClassifier(),
	}
}

func pair() []*channel.Sensor {
	return []*channel.Sensor{
		channel.New(1, 6.9, 140, 100),
		channel.New(2, 11.4, 160, 160),
	}
}

type tickCounter struct {
	ticks    int
	statuses int
	resets   int
}

func (c *tickCounter) Name() string { return "ticks" }
func (c *tickCounter) Observe(statuses []sim.Status) {
	c.ticks++
	c.statuses += len(statuses)
}
func (c *tickCounter) Value() float64 { return float64(c.ticks) }
func (c *tickCounter) Reset()         { c.ticks, c.statuses = 0, 0; c.resets++ }

var _ = Describe("Driver", func() {
	var (
		comps sim.Components
		d     *sim.Driver
	)

	BeforeEach(func() {
		comps = components(control.DefaultParams())
		var err error
		d, err = sim.NewDriver(comps, pair(), period)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("construction", func() {
		It("rejects an empty channel list", func() {
			_, err := sim.NewDriver(comps, nil, period)
			Expect(err).To(MatchError(sim.ErrNoChannels))
		})

		It("rejects duplicate channel ids", func() {
			chans := []*channel.Sensor{channel.New(3, 7, 150, 100), channel.New(3, 8, 150, 110)}
			_, err := sim.NewDriver(comps, chans, period)
			Expect(errors.Is(err, sim.ErrDuplicateChannel)).To(BeTrue())
		})

		It("rejects missing components", func() {
			_, err := sim.NewDriver(sim.Components{}, pair(), period)
			Expect(err).To(MatchError(sim.ErrIncomplete))
		})

		It("rejects a non-positive polling period", func() {
			_, err := sim.NewDriver(comps, pair(), 0)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Tick", func() {
		It("returns one status per channel in channel order", func() {
			statuses := d.Tick()
			Expect(statuses).To(HaveLen(2))
			Expect(statuses[0].ChannelID).To(Equal(1))
			Expect(statuses[1].ChannelID).To(Equal(2))
		})

		It("stamps tick index and simulated time", func() {
			first := d.Tick()
			second := d.Tick()
			Expect(first[0].Tick).To(Equal(0))
			Expect(first[0].Time).To(BeNumerically("==", 0))
			Expect(second[0].Tick).To(Equal(1))
			Expect(second[0].Time).To(BeNumerically("~", 0.81, 1e-9))
			Expect(d.TickCount()).To(Equal(2))
			Expect(d.Elapsed()).To(Equal(2 * period))
		})

		It("converts, filters, steps and classifies each channel", func() {
			st := d.Tick()[0]
			Expect(st.Voltage).To(BeNumerically("==", 6.9))
			Expect(st.Raw).To(BeNumerically("~", 100, 1e-9))
			Expect(st.Temperature).To(BeNumerically("~", 100, 1e-9))
			Expect(st.Rejected).To(BeFalse())
			Expect(st.HeaterOn).To(BeTrue())
			Expect(st.Switched).To(BeFalse())
			Expect(st.Classification).To(Equal(channel.Alarm))

			ch, err := d.Channel(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(ch.Voltage).To(BeNumerically("~", 6.9+0.05*(14.2-6.9), 1e-12))
		})

		It("holds the last accepted temperature across a spike", func() {
			chans := []*channel.Sensor{channel.New(7, 14.2, 160, 100)}
			d, err := sim.NewDriver(comps, chans, period)
			Expect(err).NotTo(HaveOccurred())

			st := d.Tick()[0]
			Expect(st.Raw).To(BeNumerically("~", 195, 1e-9))
			Expect(st.Rejected).To(BeTrue())
			Expect(st.Temperature).To(BeNumerically("==", 100))
			Expect(st.Classification).To(Equal(channel.Alarm))
		})

		It("advances channels independently", func() {
			alone, err := sim.NewDriver(comps, []*channel.Sensor{channel.New(2, 11.4, 160, 160)}, period)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 40; i++ {
				together := d.Tick()[1]
				single := alone.Tick()[0]
				Expect(together).To(Equal(single))
			}
		})

		It("notifies metrics and observers on every tick", func() {
			m := &tickCounter{}
			var seen int
			d.AddMetric(m)
			d.AddObserver(sim.ObserverFunc(func(statuses []sim.Status) { seen += len(statuses) }))

			d.Tick()
			d.Tick()
			Expect(m.ticks).To(Equal(2))
			Expect(seen).To(Equal(4))
		})
	})

	Describe("equipment and setpoints", func() {
		It("classifies a channel with a failed matrix as non-operational", func() {
			Expect(d.SetEquipment(2, false, true)).To(Succeed())
			Expect(d.Tick()[1].Classification).To(Equal(channel.NonOperational))

			Expect(d.SetEquipment(2, true, true)).To(Succeed())
			Expect(d.Tick()[1].Classification).To(Equal(channel.Operational))
		})

		It("applies a new target from the next tick", func() {
			Expect(d.SetTarget(2, 175)).To(Succeed())
			st := d.Tick()[1]
			Expect(st.Target).To(BeNumerically("==", 175))
			Expect(st.Classification).To(Equal(channel.TablettingForbidden))
		})

		It("reports unknown channel ids", func() {
			Expect(d.SetEquipment(99, true, true)).To(MatchError(sim.ErrUnknownChannel))
			Expect(d.SetTarget(99, 150)).To(MatchError(sim.ErrUnknownChannel))
			_, err := d.Channel(99)
			Expect(err).To(MatchError(sim.ErrUnknownChannel))
		})

		It("hands out copies of channel state", func() {
			chans := d.Channels()
			chans[0].Voltage = 0
			chans[0].Heating = false

			again := d.Channels()
			Expect(again[0].Voltage).To(BeNumerically("==", 6.9))
			Expect(again[0].Heating).To(BeTrue())
		})
	})

	Describe("Run", func() {
		It("collects every tick and the metric values", func() {
			m := &tickCounter{}
			d.AddMetric(m)
			d.Tick()

			res, err := d.Run(context.Background(), 25)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.TicksTaken).To(Equal(25))
			Expect(res.Statuses).To(HaveLen(25))
			Expect(res.Times).To(HaveLen(25))
			Expect(res.Times[0]).To(BeNumerically("~", 0.81, 1e-9))
			Expect(res.Metrics).To(HaveKeyWithValue("ticks", 25.0))
			Expect(m.resets).To(Equal(1))
			Expect(res.Series(2)).To(HaveLen(25))
			Expect(res.Last()).To(Equal(res.Statuses[24]))
		})

		It("is deterministic", func() {
			other, err := sim.NewDriver(comps, pair(), period)
			Expect(err).NotTo(HaveOccurred())

			a, err := d.Run(context.Background(), 100)
			Expect(err).NotTo(HaveOccurred())
			b, err := other.Run(context.Background(), 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Statuses).To(Equal(b.Statuses))
		})

		It("stops on a cancelled context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			res, err := d.Run(ctx, 10)
			Expect(err).To(MatchError(context.Canceled))
			var te *sim.TickError
			Expect(errors.As(err, &te)).To(BeTrue())
			Expect(te.Tick).To(Equal(0))
			Expect(res.TicksTaken).To(Equal(0))
		})

		It("rejects a non-positive tick count", func() {
			_, err := d.Run(context.Background(), 0)
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("Comparison", func() {
	It("runs each variant from the same starting layout", func() {
		seed := func() []*channel.Sensor {
			return []*channel.Sensor{channel.New(1, 6.0, 160, 90)}
		}
		variants := []sim.Variant{
			{Name: "symmetric", Components: components(control.ParamsFromAccuracy(4, false))},
			{Name: "full", Components: components(control.ParamsFromAccuracy(4, true))},
		}

		cmp := sim.NewComparison(seed, func() []sim.Metric { return []sim.Metric{&tickCounter{}} })
		results, err := cmp.Run(context.Background(), variants, sim.Config{PollingPeriod: period, Ticks: 80})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))

		for _, r := range results {
			Expect(r.TicksTaken).To(Equal(80))
			Expect(r.Metrics).To(HaveKeyWithValue("ticks", 80.0))
		}
		Expect(results[0].Statuses[0]).To(Equal(results[1].Statuses[0]))
		Expect(results[0].Series(1)).NotTo(Equal(results[1].Series(1)))
	})

	It("accepts an open-loop controller", func() {
		open := components(control.DefaultParams())
		open.Controller = control.NewManual(control.DefaultParams(), true)
		seed := func() []*channel.Sensor { return []*channel.Sensor{channel.New(1, 6.9, 160, 100)} }

		results, err := sim.NewComparison(seed, nil).Run(context.Background(),
			[]sim.Variant{{Name: "open-loop", Components: open}}, sim.Config{PollingPeriod: period, Ticks: 50})
		Expect(err).NotTo(HaveOccurred())
		for _, tick := range results[0].Statuses {
			Expect(tick[0].HeaterOn).To(BeTrue())
			Expect(tick[0].Switched).To(BeFalse())
		}
	})

	It("names the failing variant", func() {
		cmp := sim.NewComparison(func() []*channel.Sensor { return nil }, nil)
		_, err := cmp.Run(context.Background(), []sim.Variant{{Name: "empty", Components: components(control.DefaultParams())}},
			sim.Config{PollingPeriod: period, Ticks: 1})
		Expect(err).To(MatchError(ContainSubstring(`variant "empty"`)))
		Expect(errors.Is(err, sim.ErrNoChannels)).To(BeTrue())
	})
})
