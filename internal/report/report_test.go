package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/moldtherm/internal/adc"
	"github.com/san-kum/moldtherm/internal/calibration"
)

func TestTransferGain(t *testing.T) {
	k, err := TransferGain(14.2, 10)
	require.NoError(t, err)
	assert.InDelta(t, 1.42, k, 1e-12)

	_, err = TransferGain(14.2, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPollingPeriod(t *testing.T) {
	tests := []struct {
		name    string
		q, acc  float64
		rate    float64
		want    time.Duration
		wantErr bool
	}{
		{"defaults", 0.05, 4.0, 5, 810 * time.Millisecond, false},
		{"tight accuracy", 0.05, 1.0, 5, 210 * time.Millisecond, false},
		{"slow process", 0, 4, 1, 4 * time.Second, false},
		{"zero rate", 0.05, 4, 0, 0, true},
		{"empty budget", 0, 0, 5, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PollingPeriod(tt.q, tt.acc, tt.rate)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuild(t *testing.T) {
	conv, err := adc.NewConverter(adc.DefaultConfig(), calibration.Default())
	require.NoError(t, err)

	r, err := Build(DefaultInputs(), conv)
	require.NoError(t, err)

	assert.InDelta(t, 1.42, r.TransferGain, 1e-12)
	assert.Equal(t, 810*time.Millisecond, r.PollingPeriod)

	require.Len(t, r.Samples, len(SampleVoltages))
	codes := make([]int, len(r.Samples))
	for i, s := range r.Samples {
		codes[i] = s.Code
	}
	assert.Equal(t, []int{0, 63, 127, 191, 255}, codes)
	assert.Equal(t, 0.0, r.Samples[0].Temperature)

	require.Len(t, r.Curve, 100)
	assert.Equal(t, 100.0, r.Curve[0].Temperature)
	assert.InDelta(t, 6.9, r.Curve[0].Voltage, 1e-9)
	assert.InDelta(t, 195, r.Curve[99].Temperature, 1e-9)
	assert.InDelta(t, 14.2, r.Curve[99].Voltage, 1e-9)
	for i := 1; i < len(r.Curve); i++ {
		assert.GreaterOrEqual(t, r.Curve[i].Voltage, r.Curve[i-1].Voltage)
	}

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf))
	assert.Contains(t, buf.String(), "Transfer gain:   1.4200")
	assert.Contains(t, buf.String(), "Polling period:  0.8100 s")
	assert.Contains(t, buf.String(), "INPUT mV  CODE  QUANT mV")
	assert.Equal(t, 4+len(r.Samples), strings.Count(buf.String(), "\n"))
}

type failingWriter struct{ after int }

func (f *failingWriter) Write(p []byte) (int, error) {
	if f.after <= 0 {
		return 0, errors.New("disk full")
	}
	f.after--
	return len(p), nil
}

func TestWriteReportsErrors(t *testing.T) {
	conv, err := adc.NewConverter(adc.DefaultConfig(), calibration.Default())
	require.NoError(t, err)
	r, err := Build(DefaultInputs(), conv)
	require.NoError(t, err)

	assert.Error(t, r.Write(&failingWriter{after: 0}), "header write")
	assert.Error(t, r.Write(&failingWriter{after: 1}), "sample table write")
}

func TestBuildInvalid(t *testing.T) {
	conv, err := adc.NewConverter(adc.DefaultConfig(), calibration.Default())
	require.NoError(t, err)

	in := DefaultInputs()
	in.CurveTo = in.CurveFrom
	_, err = Build(in, conv)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = DefaultInputs()
	in.MaxRate = -1
	_, err = Build(in, conv)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
