// Package export writes simulation results as CSV, JSON or SVG.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/san-kum/moldtherm/internal/sim"
)

var csvHeader = []string{
	"tick", "time", "channel", "voltage", "raw", "temperature", "target",
	"heater_on", "switched", "rejected", "classification",
}

// CSV writes one row per channel per tick.
func CSV(w io.Writer, result *sim.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, tick := range result.Statuses {
		for _, st := range tick {
			row := []string{
				strconv.Itoa(st.Tick),
				strconv.FormatFloat(st.Time, 'f', 3, 64),
				strconv.Itoa(st.ChannelID),
				strconv.FormatFloat(st.Voltage, 'f', 6, 64),
				strconv.FormatFloat(st.Raw, 'f', 4, 64),
				strconv.FormatFloat(st.Temperature, 'f', 4, 64),
				strconv.FormatFloat(st.Target, 'f', 2, 64),
				strconv.FormatBool(st.HeaterOn),
				strconv.FormatBool(st.Switched),
				strconv.FormatBool(st.Rejected),
				st.Classification.String(),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

type Document struct {
	PollingPeriod float64            `json:"polling_period"`
	Ticks         int                `json:"ticks"`
	Channels      []int              `json:"channels"`
	Times         []float64          `json:"times"`
	Statuses      [][]sim.Status     `json:"statuses"`
	Metrics       map[string]float64 `json:"metrics"`
}

func NewDocument(period time.Duration, result *sim.Result) Document {
	doc := Document{
		PollingPeriod: period.Seconds(),
		Ticks:         result.TicksTaken,
		Times:         result.Times,
		Statuses:      result.Statuses,
		Metrics:       result.Metrics,
	}
	if first := firstTick(result); first != nil {
		doc.Channels = make([]int, len(first))
		for i, st := range first {
			doc.Channels[i] = st.ChannelID
		}
	}
	return doc
}

func JSON(w io.Writer, period time.Duration, result *sim.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(period, result))
}

func ReadJSON(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	return &doc, nil
}

func firstTick(result *sim.Result) []sim.Status {
	if len(result.Statuses) == 0 {
		return nil
	}
	return result.Statuses[0]
}
