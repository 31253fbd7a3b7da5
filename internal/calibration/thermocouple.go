package calibration

// DefaultPoints returns the mold thermocouple reference table, 0..300 C over
// 0.0..22.6 mV. Steps are 5 C from 90 to 200 C and 10 C elsewhere.
func DefaultPoints() []Point {
	return []Point{
		{0, 0.0}, {10, 0.7}, {20, 1.4}, {30, 2.0}, {40, 2.6},
		{50, 3.2}, {60, 3.8}, {70, 4.4}, {80, 5.0}, {90, 5.6},
		{95, 6.2},

		{100, 6.9}, {105, 7.3}, {110, 7.6}, {115, 8.0}, {120, 8.4},
		{125, 8.7}, {130, 9.1}, {135, 9.5}, {140, 9.9}, {145, 10.2},
		{150, 10.6}, {155, 11.0}, {160, 11.4}, {165, 11.8}, {170, 12.2},
		{175, 12.6}, {180, 13.0}, {185, 13.4}, {190, 13.8}, {195, 14.2},

		{200, 14.6}, {210, 15.4}, {220, 16.2}, {230, 17.0}, {240, 17.8},
		{250, 18.6}, {260, 19.4}, {270, 20.2}, {280, 21.0}, {290, 21.8},
		{300, 22.6},
	}
}
