package monitor

// Remap linearly maps v from [inMin, inMax] onto [outMin, outMax] using
// integer arithmetic. The result is truncated toward zero and is not clamped:
// values outside the input range map outside the output range.
// A degenerate input range maps everything to outMin.
func Remap(v, inMin, inMax, outMin, outMax int) int {
	if inMax == inMin {
		return outMin
	}
	return int(int32(v-inMin)*int32(outMax-outMin)/int32(inMax-inMin)) + outMin
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Actuator converts a smoothed level into the LED output value for cfg.
func Actuator(cfg Config, level int) int {
	return Clamp(Remap(level, cfg.InMin, cfg.InMax, cfg.OutMin, cfg.OutMax), cfg.OutMin, cfg.OutMax)
}
