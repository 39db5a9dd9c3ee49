package analysis

// mean returns the arithmetic mean of v. v must not be empty.
func mean(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

// linearFit computes the ordinary least-squares line y = slope·x + intercept.
// Callers must pass at least two points.
func linearFit(x, y []float64) (slope, intercept float64) {
	mx, my := mean(x), mean(y)
	var sxx, sxy float64
	for i := range x {
		dx := x[i] - mx
		sxx += dx * dx
		sxy += dx * (y[i] - my)
	}
	if sxx == 0 {
		// All x identical — no slope information.
		return 0, my
	}
	slope = sxy / sxx
	intercept = my - slope*mx
	return slope, intercept
}

// rSquared returns the coefficient of determination of the fitted line over
// (x, y). A zero-variance y window reports 0, never a division fault.
func rSquared(x, y []float64, slope, intercept float64) float64 {
	my := mean(y)
	var ssRes, ssTot float64
	for i := range y {
		fit := slope*x[i] + intercept
		ssRes += (y[i] - fit) * (y[i] - fit)
		ssTot += (y[i] - my) * (y[i] - my)
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}
