package analyzers

// MaxDrawdown is the largest peak-to-trough decline of a cumulative series:
// max over the series of running_max - value. Never negative.
func MaxDrawdown(cum []float64) float64 {
	maxDD := 0.0
	runMax := 0.0
	for i, v := range cum {
		if i == 0 || v > runMax {
			runMax = v
		}
		if dd := runMax - v; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// PDSummary is the profit/drawdown verdict for one cumulative series.
// Defined is false exactly when the max drawdown is zero, where the ratio
// has no meaning.
type PDSummary struct {
	Final       float64
	MaxDrawdown float64
	Ratio       float64
	Defined     bool
}

func SummarizePD(cum []float64) PDSummary {
	if len(cum) == 0 {
		return PDSummary{}
	}
	s := PDSummary{
		Final:       cum[len(cum)-1],
		MaxDrawdown: MaxDrawdown(cum),
	}
	if s.MaxDrawdown > 0 {
		s.Ratio = s.Final / s.MaxDrawdown
		s.Defined = true
	}
	return s
}
