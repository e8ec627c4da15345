package ionic

// Tolerance band for gating values. Integration schemes may overshoot [0, 1]
// slightly; values are never clipped.
const (
	BandLow  = -0.1
	BandHigh = 1.1
)
