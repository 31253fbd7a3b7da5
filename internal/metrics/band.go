package metrics

import (
	"math"

	"github.com/san-kum/moldtherm/internal/channel"
	"github.com/san-kum/moldtherm/internal/sim"
)

// InBand is the fraction of channel-ticks whose filtered temperature lies
// within Band of the target.
type InBand struct {
	band    float64
	inside  int
	samples int
}

func NewInBand(band float64) *InBand {
	return &InBand{band: band}
}

func (b *InBand) Name() string { return "in_band" }

func (b *InBand) Observe(statuses []sim.Status) {
	for _, st := range statuses {
		b.samples++
		if math.Abs(st.Temperature-st.Target) <= b.band {
			b.inside++
		}
	}
}

func (b *InBand) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return float64(b.inside) / float64(b.samples)
}

func (b *InBand) Reset() {
	b.inside = 0
	b.samples = 0
}

// Share is the fraction of channel-ticks classified as one state.
type Share struct {
	class   channel.Classification
	hits    int
	samples int
}

func NewShare(class channel.Classification) *Share {
	return &Share{class: class}
}

func (s *Share) Name() string { return "share_" + s.class.String() }

func (s *Share) Observe(statuses []sim.Status) {
	for _, st := range statuses {
		s.samples++
		if st.Classification == s.class {
			s.hits++
		}
	}
}

func (s *Share) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.hits) / float64(s.samples)
}

func (s *Share) Reset() {
	s.hits = 0
	s.samples = 0
}
