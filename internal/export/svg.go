package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/moldtherm/internal/sim"
)

var svgPalette = []string{"#00d7ff", "#ffaf00", "#87ff5f", "#ff5fd7", "#d7d7ff", "#5fafaf"}

type SVGOptions struct {
	Width, Height float64
	// Band is drawn as a shaded zone around the first channel's target.
	Band float64
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Width: 800, Height: 400, Band: 12}
}

// SVG draws the filtered temperature of the given channels as polylines
// with the first channel's target line.
func SVG(w io.Writer, result *sim.Result, channelIDs []int, opts SVGOptions) error {
	if len(result.Statuses) == 0 || len(channelIDs) == 0 {
		return fmt.Errorf("export: nothing to draw")
	}

	series := make([][]float64, len(channelIDs))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, id := range channelIDs {
		series[i] = result.Series(id)
		if len(series[i]) == 0 {
			return fmt.Errorf("export: %w: %d", sim.ErrUnknownChannel, id)
		}
		for _, v := range series[i] {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}

	target := targetOf(result, channelIDs[0])
	lo = math.Min(lo, target-opts.Band)
	hi = math.Max(hi, target+opts.Band)
	if hi == lo {
		hi = lo + 1
	}

	n := len(result.Statuses)
	x := func(i int) float64 {
		if n == 1 {
			return 0
		}
		return float64(i) / float64(n-1) * opts.Width
	}
	y := func(v float64) float64 { return opts.Height - (v-lo)/(hi-lo)*opts.Height }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, opts.Width, opts.Height, opts.Width, opts.Height)

	if opts.Band > 0 {
		fmt.Fprintf(&sb, `<rect x="0" y="%.2f" width="%.0f" height="%.2f" fill="#ffff00" fill-opacity="0.15"/>
`, y(target+opts.Band), opts.Width, y(target-opts.Band)-y(target+opts.Band))
	}
	fmt.Fprintf(&sb, `<line x1="0" y1="%.2f" x2="%.0f" y2="%.2f" stroke="#ff0000" stroke-dasharray="6 4"/>
`, y(target), opts.Width, y(target))

	for i, s := range series {
		pts := make([]string, len(s))
		for j, v := range s {
			pts[j] = fmt.Sprintf("%.2f,%.2f", x(j), y(v))
		}
		fmt.Fprintf(&sb, `<polyline fill="none" stroke="%s" stroke-width="1.5" points="%s"><title>channel %d</title></polyline>
`, svgPalette[i%len(svgPalette)], strings.Join(pts, " "), channelIDs[i])
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func targetOf(result *sim.Result, id int) float64 {
	for _, st := range result.Last() {
		if st.ChannelID == id {
			return st.Target
		}
	}
	return 0
}
