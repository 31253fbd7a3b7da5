package adc

import "github.com/san-kum/moldtherm/internal/calibration"

// Reading is one pass through the converter and the calibration table.
type Reading struct {
	Voltage     float64 `json:"voltage"`
	Code        int     `json:"code"`
	Quantized   float64 `json:"quantized"`
	Temperature float64 `json:"temperature"`
}

// Converter digitizes a voltage and maps the dequantized value to temperature.
// The dequantized value is looked up in the table as is, without unit scaling.
type Converter struct {
	cfg   Config
	table *calibration.Table
}

func NewConverter(cfg Config, table *calibration.Table) (*Converter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Converter{cfg: cfg, table: table}, nil
}

func (c *Converter) Config() Config { return c.cfg }

func (c *Converter) Table() *calibration.Table { return c.table }

func (c *Converter) Read(voltage float64) Reading {
	code := Quantize(voltage, c.cfg)
	q := Dequantize(code, c.cfg)
	return Reading{
		Voltage:     voltage,
		Code:        code,
		Quantized:   q,
		Temperature: c.table.VoltageToTemperature(q),
	}
}

// Temperature converts an already sampled code.
func (c *Converter) Temperature(code int) float64 {
	return c.table.VoltageToTemperature(Dequantize(code, c.cfg))
}
