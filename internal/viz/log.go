package viz

import (
	"context"
	"io"
	"log/slog"

	"github.com/san-kum/moldtherm/internal/channel"
	"github.com/san-kum/moldtherm/internal/sim"
)

// LogObserver logs anomaly rejections, heater switches and classification
// changes. The first tick logs every channel's initial classification.
type LogObserver struct {
	log  *slog.Logger
	last map[int]channel.Classification
}

func NewLogObserver(log *slog.Logger) *LogObserver {
	return &LogObserver{
		log:  log.With(slog.String("component", "driver")),
		last: make(map[int]channel.Classification),
	}
}

func (o *LogObserver) OnTick(statuses []sim.Status) {
	ctx := context.Background()
	for _, st := range statuses {
		lg := o.log.With(slog.Int("channel", st.ChannelID), slog.Int("tick", st.Tick))

		if st.Rejected {
			lg.Warn("reading rejected",
				slog.Float64("raw", st.Raw),
				slog.Float64("held", st.Temperature))
		}
		if st.Switched {
			lg.Debug("heater switched",
				slog.Bool("on", st.HeaterOn),
				slog.Float64("voltage", st.Voltage),
				slog.Float64("temperature", st.Temperature))
		}

		prev, seen := o.last[st.ChannelID]
		if seen && prev == st.Classification {
			continue
		}
		o.last[st.ChannelID] = st.Classification

		level := slog.LevelInfo
		if st.Classification == channel.Alarm || st.Classification == channel.NonOperational {
			level = slog.LevelWarn
		}
		attrs := []slog.Attr{
			slog.String("state", st.Classification.String()),
			slog.Float64("temperature", st.Temperature),
			slog.Float64("target", st.Target),
		}
		if seen {
			attrs = append(attrs, slog.String("previous", prev.String()))
		}
		lg.LogAttrs(ctx, level, "classification", attrs...)
	}
}

// NewLogger builds a text logger at the named level ("debug", "info",
// "warn", "error").
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
