package market

import "time"

// Bar represents one daily OHLCV (Open, High, Low, Close, Volume) record.
type Bar struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Time   time.Time
}

// Gap is the overnight move from a close to the following open.
func Gap(prevClose, open float64) float64 {
	g := open - prevClose
	if g < 0 {
		return -g
	}
	return g
}
