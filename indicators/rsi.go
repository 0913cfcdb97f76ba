package indicators

import (
	"fmt"

	"github.com/rustyeddy/harness/market"
)

// RSI is a streaming Relative Strength Index using Wilder's smoothing.
type RSI struct {
	period    int
	prevClose float64
	count     int

	sumGain float64
	sumLoss float64
	avgGain float64
	avgLoss float64
}

// NewRSI creates an RSI indicator with the given period.
func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

func (r *RSI) Name() string {
	return fmt.Sprintf("RSI(%d)", r.period)
}

// Warmup needs period changes, which takes period+1 bars.
func (r *RSI) Warmup() int {
	return r.period + 1
}

func (r *RSI) Reset() {
	*r = RSI{period: r.period}
}

func (r *RSI) Update(b market.Bar) {
	if r.count == 0 {
		r.prevClose = b.Close
		r.count++
		return
	}

	change := b.Close - r.prevClose
	r.prevClose = b.Close

	gain, loss := 0.0, 0.0
	if change > 0 {
		gain = change
	} else {
		loss = -change
	}

	if r.count <= r.period {
		r.sumGain += gain
		r.sumLoss += loss
		if r.count == r.period {
			r.avgGain = r.sumGain / float64(r.period)
			r.avgLoss = r.sumLoss / float64(r.period)
		}
	} else {
		// Wilder smoothing
		r.avgGain = (r.avgGain*float64(r.period-1) + gain) / float64(r.period)
		r.avgLoss = (r.avgLoss*float64(r.period-1) + loss) / float64(r.period)
	}
	r.count++
}

func (r *RSI) Ready() bool {
	return r.count > r.period
}

func (r *RSI) Value() float64 {
	if !r.Ready() {
		return 0
	}
	if r.avgLoss == 0 {
		return 100
	}
	rs := r.avgGain / r.avgLoss
	return 100 - 100/(1+rs)
}
