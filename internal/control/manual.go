package control

import "github.com/san-kum/moldtherm/internal/channel"

// Manual forces every channel into one heater mode and never switches on
// temperature. It gives the open-loop response of the same plant.
type Manual struct {
	params  Params
	Heating bool
}

func NewManual(params Params, heating bool) *Manual {
	return &Manual{params: params, Heating: heating}
}

// Step reports a switch only when the forced mode differs from the channel's
// current one.
func (c *Manual) Step(s *channel.Sensor) bool {
	switched := s.Heating != c.Heating
	s.Heating = c.Heating
	if c.Heating {
		heat(c.params, s)
	} else {
		cool(c.params, s)
	}
	return switched
}
