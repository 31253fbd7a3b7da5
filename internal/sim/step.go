package sim

import "github.com/san-kum/moldtherm/internal/channel"

// Step runs one channel through the pipeline: calibrate, filter, control,
// classify. Only s is mutated.
func (c Components) Step(s *channel.Sensor) Status {
	st := Status{
		ChannelID: s.ID,
		Voltage:   s.Voltage,
		Target:    s.Target,
	}

	st.Raw = c.Table.VoltageToTemperature(s.Voltage)
	st.Temperature, st.Rejected = c.Filter.Apply(s, st.Raw)
	st.Switched = c.Controller.Step(s)
	st.HeaterOn = s.Heating
	st.Classification = c.Classifier.Classify(st.Temperature, s.Target, s.MatrixOperational, s.PunchOperational)

	return st
}
