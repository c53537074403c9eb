package sample

// NewAveragingConverter creates a converter that replaces each sample's Level
// with the mean of the last windowSize levels. This smooths the plotted trace
// across cycles; the on-board smoothing within a cycle is not affected.
// One sample is emitted per input sample and the output closes with the input.
func NewAveragingConverter(windowSize int, bufSize int) func(in <-chan Sample) <-chan Sample {
	if windowSize <= 0 {
		windowSize = 1 // No averaging if invalid
	}
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan Sample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			buffer := make([]int, 0, windowSize)
			sum := 0

			for s := range in {
				buffer = append(buffer, s.Level)
				sum += s.Level
				if len(buffer) > windowSize {
					sum -= buffer[0]
					buffer = buffer[1:]
				}

				avg := s
				avg.Level = roundDiv(sum, len(buffer))
				send(out, avg)
			}
		}()

		return out
	}
}

// roundDiv divides non-negative a by b rounding to nearest.
func roundDiv(a, b int) int {
	return (a + b/2) / b
}
