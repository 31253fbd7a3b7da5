package channel

import (
	"fmt"
	"strings"
)

// Classification is the mold state of a channel.
type Classification int

const (
	Operational Classification = iota
	TablettingForbidden
	Alarm
	NonOperational
)

var classificationNames = map[Classification]string{
	Operational:         "operational",
	TablettingForbidden: "tabletting_forbidden",
	Alarm:               "alarm",
	NonOperational:      "non_operational",
}

func (c Classification) String() string {
	if name, ok := classificationNames[c]; ok {
		return name
	}
	return fmt.Sprintf("classification(%d)", int(c))
}

func (c Classification) MarshalText() ([]byte, error) {
	if _, ok := classificationNames[c]; !ok {
		return nil, fmt.Errorf("channel: unknown classification %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Classification) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for k, name := range classificationNames {
		if name == s {
			*c = k
			return nil
		}
	}
	return fmt.Errorf("channel: unknown classification %q", s)
}

const (
	DefaultTablettingBand = 12.0
	DefaultAlarmBand      = 30.0
)

// Classifier holds the tolerance bands around the setpoint. Temperatures
// within TablettingBand are operational, beyond AlarmBand raise an alarm.
type Classifier struct {
	TablettingBand float64 `yaml:"tabletting_band" json:"tabletting_band"`
	AlarmBand      float64 `yaml:"alarm_band" json:"alarm_band"`
}

func DefaultClassifier() Classifier {
	return Classifier{
		TablettingBand: DefaultTablettingBand,
		AlarmBand:      DefaultAlarmBand,
	}
}

// Classify evaluates, in order: equipment flags, alarm band, tabletting band.
func (c Classifier) Classify(temperature, target float64, matrixOK, punchOK bool) Classification {
	switch {
	case !matrixOK || !punchOK:
		return NonOperational
	case temperature < target-c.AlarmBand || temperature > target+c.AlarmBand:
		return Alarm
	case temperature < target-c.TablettingBand || temperature > target+c.TablettingBand:
		return TablettingForbidden
	default:
		return Operational
	}
}

// ClassifyChannel classifies a channel by its last accepted temperature.
func (c Classifier) ClassifyChannel(s *Sensor) Classification {
	return c.Classify(s.LastAccepted, s.Target, s.MatrixOperational, s.PunchOperational)
}
