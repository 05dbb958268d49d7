package river

// forecastLevels projects future water levels from recent observations
// using a least-squares linear trend. With fewer than two points the
// current level is held flat. Projected levels never go below zero.
func forecastLevels(history []float64, steps int) []float64 {
	if steps <= 0 {
		return nil
	}

	out := make([]float64, 0, steps)

	if len(history) < 2 {
		level := 0.0
		if len(history) == 1 {
			level = history[0]
		}
		for i := 0; i < steps; i++ {
			out = append(out, level)
		}
		return out
	}

	// Fit level = a + b*i over the observed indices.
	n := float64(len(history))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range history {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	b := 0.0
	if denom != 0 {
		b = (n*sumXY - sumX*sumY) / denom
	}
	a := (sumY - b*sumX) / n

	for i := 0; i < steps; i++ {
		x := float64(len(history) + i)
		level := a + b*x
		if level < 0 {
			level = 0
		}
		out = append(out, level)
	}
	return out
}
