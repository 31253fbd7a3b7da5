// Package report derives the design figures for the measurement channel:
// the matching amplifier gain, the sensor polling period and the ADC
// conversion samples.
package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"text/tabwriter"
	"time"

	"github.com/san-kum/moldtherm/internal/adc"
	"github.com/san-kum/moldtherm/internal/calibration"
)

var ErrInvalidInput = errors.New("report: invalid input")

// Inputs are the figures the design calculation starts from.
type Inputs struct {
	// OutputMax is the thermocouple output at the top of the working range, mV.
	OutputMax float64 `yaml:"output_max" json:"output_max"`
	// InputMax is the largest amplifier input, mV.
	InputMax float64 `yaml:"input_max" json:"input_max"`
	// MeasurementError in degrees Celsius.
	MeasurementError float64 `yaml:"measurement_error" json:"measurement_error"`
	ControlAccuracy  float64 `yaml:"control_accuracy" json:"control_accuracy"`
	// MaxRate is the fastest expected temperature change, C/s.
	MaxRate float64 `yaml:"max_rate" json:"max_rate"`
	// CurveFrom and CurveTo bound the sampled calibration curve, degrees C.
	CurveFrom float64 `yaml:"curve_from" json:"curve_from"`
	CurveTo   float64 `yaml:"curve_to" json:"curve_to"`
}

func DefaultInputs() Inputs {
	return Inputs{
		OutputMax:        14.2,
		InputMax:         10.0,
		MeasurementError: 0.05,
		ControlAccuracy:  4.0,
		MaxRate:          5,
		CurveFrom:        100,
		CurveTo:          195,
	}
}

// TransferGain is OutputMax / InputMax.
func TransferGain(outputMax, inputMax float64) (float64, error) {
	if inputMax <= 0 || math.IsNaN(outputMax) {
		return 0, fmt.Errorf("%w: input max %v", ErrInvalidInput, inputMax)
	}
	return outputMax / inputMax, nil
}

// PollingPeriod is the time the temperature needs, at maxRate, to move by the
// total error budget (measurement error plus control accuracy).
func PollingPeriod(measurementError, accuracy, maxRate float64) (time.Duration, error) {
	if maxRate <= 0 {
		return 0, fmt.Errorf("%w: max rate %v", ErrInvalidInput, maxRate)
	}
	eps := measurementError + accuracy
	if eps <= 0 {
		return 0, fmt.Errorf("%w: error budget %v", ErrInvalidInput, eps)
	}
	return time.Duration(math.Round(eps / maxRate * float64(time.Second))), nil
}

type Report struct {
	Inputs        Inputs              `json:"inputs"`
	TransferGain  float64             `json:"transfer_gain"`
	PollingPeriod time.Duration       `json:"polling_period"`
	Samples       []adc.Reading       `json:"samples"`
	Curve         []calibration.Point `json:"curve"`
}

// SampleVoltages are the inputs fed through the converter in a report.
var SampleVoltages = []float64{0.0, 2.5, 5.0, 7.5, 10.0}

const curvePoints = 100

func Build(in Inputs, conv *adc.Converter) (*Report, error) {
	gain, err := TransferGain(in.OutputMax, in.InputMax)
	if err != nil {
		return nil, err
	}
	period, err := PollingPeriod(in.MeasurementError, in.ControlAccuracy, in.MaxRate)
	if err != nil {
		return nil, err
	}
	if in.CurveTo <= in.CurveFrom {
		return nil, fmt.Errorf("%w: curve range [%v, %v]", ErrInvalidInput, in.CurveFrom, in.CurveTo)
	}

	r := &Report{
		Inputs:        in,
		TransferGain:  gain,
		PollingPeriod: period,
		Samples:       make([]adc.Reading, len(SampleVoltages)),
		Curve:         make([]calibration.Point, curvePoints),
	}
	for i, v := range SampleVoltages {
		r.Samples[i] = conv.Read(v)
	}

	tbl := conv.Table()
	step := (in.CurveTo - in.CurveFrom) / (curvePoints - 1)
	for i := range r.Curve {
		t := in.CurveFrom + float64(i)*step
		r.Curve[i] = calibration.Point{Temperature: t, Voltage: tbl.TemperatureToVoltage(t)}
	}
	return r, nil
}

// Write prints the report as plain text.
func (r *Report) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Transfer gain:   %.4f\nPolling period:  %.4f s\n\n", r.TransferGain, r.PollingPeriod.Seconds()); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INPUT mV\tCODE\tQUANT mV\tTEMP C")
	for _, s := range r.Samples {
		fmt.Fprintf(tw, "%.1f\t%d\t%.4f\t%.2f\n", s.Voltage, s.Code, s.Quantized, s.Temperature)
	}
	return tw.Flush()
}
