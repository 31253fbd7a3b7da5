// Package analysis characterizes the heater limit cycle of each channel.
//
// Once the first overshoot has happened a hysteresis loop settles into a
// steady oscillation between its two switch points. [Cycles] reports, per
// channel, when that first switch happened, the mean period of a full
// heat/cool cycle and the temperature extremes reached after it:
//
//	for _, c := range analysis.Cycles(result) {
//	    fmt.Println(c.ChannelID, c.Period, c.Overshoot)
//	}
package analysis
