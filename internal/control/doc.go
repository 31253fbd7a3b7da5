// Package control provides the heater controller for mold heating zones.
//
// [Hysteresis] is a two-state (heat/cool) loop driving a first-order voltage
// model toward fixed asymptotes. It switches direction only after the
// calibrated temperature overshoots a band around the setpoint:
//
//   - Heating: V += HeatingGain * (VoltageMax - V), switch at target + HeatingBand
//   - Cooling: V -= CoolingGain * (V - VoltageMin), switch at target - CoolingBand
//
// [Manual] applies the same voltage model with the heater forced on or off,
// for open-loop comparisons.
//
// # Usage
//
//	ctrl := control.NewHysteresis(control.DefaultParams(), calibration.Default())
//	switched := ctrl.Step(sensor) // called once per polling period
package control
