package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/moldtherm/internal/calibration"
	"github.com/san-kum/moldtherm/internal/sim"
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Cyan, asciigraph.Yellow, asciigraph.Green, asciigraph.Magenta, asciigraph.Blue,
}

type PlotOptions struct {
	Width, Height int
	// ShowTarget adds the first channel's setpoint as a red flat line.
	ShowTarget bool
}

func DefaultPlotOptions() PlotOptions {
	return PlotOptions{Width: 80, Height: 15, ShowTarget: true}
}

// TemperaturePlot charts the filtered temperature of each channel over the
// run.
func TemperaturePlot(result *sim.Result, channelIDs []int, opts PlotOptions) (string, error) {
	if len(channelIDs) == 0 {
		return "", fmt.Errorf("viz: no channels to plot")
	}

	data := make([][]float64, 0, len(channelIDs)+1)
	colors := make([]asciigraph.AnsiColor, 0, len(channelIDs)+1)
	for i, id := range channelIDs {
		s := result.Series(id)
		if len(s) == 0 {
			return "", fmt.Errorf("viz: %w: %d", sim.ErrUnknownChannel, id)
		}
		data = append(data, s)
		colors = append(colors, seriesColors[i%len(seriesColors)])
	}

	if opts.ShowTarget {
		target := make([]float64, len(data[0]))
		for i, tick := range result.Statuses {
			for _, st := range tick {
				if st.ChannelID == channelIDs[0] {
					target[i] = st.Target
				}
			}
		}
		data = append(data, target)
		colors = append(colors, asciigraph.Red)
	}

	caption := fmt.Sprintf("temperature, C (channels %v, %d ticks)", channelIDs, len(result.Statuses))
	return asciigraph.PlotMany(data,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Precision(1),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption(caption),
	), nil
}

// HeaterPlot charts one channel's heater state as a 0/1 trace.
func HeaterPlot(result *sim.Result, channelID int, width int) (string, error) {
	data := make([]float64, 0, len(result.Statuses))
	for _, tick := range result.Statuses {
		for _, st := range tick {
			if st.ChannelID == channelID {
				v := 0.0
				if st.HeaterOn {
					v = 1
				}
				data = append(data, v)
			}
		}
	}
	if len(data) == 0 {
		return "", fmt.Errorf("viz: %w: %d", sim.ErrUnknownChannel, channelID)
	}

	return asciigraph.Plot(data,
		asciigraph.Height(3),
		asciigraph.Width(width),
		asciigraph.Precision(0),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(1),
		asciigraph.Caption(fmt.Sprintf("heater, channel %d", channelID)),
	), nil
}

// CalibrationPlot charts temperature against voltage across the whole
// table, sampled at width points.
func CalibrationPlot(tbl *calibration.Table, width, height int) string {
	lo, hi := tbl.First().Voltage, tbl.Last().Voltage
	width = max(width, 2)
	data := make([]float64, width)
	for i := range data {
		v := lo + (hi-lo)*float64(i)/float64(width-1)
		data[i] = tbl.VoltageToTemperature(v)
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(0),
		asciigraph.Caption(fmt.Sprintf("calibration, C over %.1f..%.1f mV", lo, hi)),
	)
}

// CurvePlot charts the voltage of sampled calibration points in order.
func CurvePlot(points []calibration.Point, width, height int) string {
	if len(points) == 0 {
		return ""
	}
	data := make([]float64, len(points))
	for i, p := range points {
		data[i] = p.Voltage
	}
	first, last := points[0], points[len(points)-1]
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(1),
		asciigraph.Caption(fmt.Sprintf("voltage, mV over %.0f..%.0f C", first.Temperature, last.Temperature)),
	)
}
