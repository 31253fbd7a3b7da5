// Package viz renders simulation output in the terminal.
//
//   - [TemperaturePlot], [CalibrationPlot]: asciigraph line charts
//   - [Monitor]: a Bubble Tea live view that pulls one driver tick per
//     polling period
//   - [LogObserver]: structured logging of rejections, heater switches and
//     classification changes
//
// # Key Bindings
//
//	Space      - Pause/Resume
//	Tab/Arrows - Select channel
//	M / P      - Toggle matrix / punch fault on the selected channel
//	+ / -      - Raise / lower the selected target by 5 C
//	F          - Cycle speed (1x, 4x, 16x)
//	T          - Cycle color themes
//	Q          - Quit
package viz
