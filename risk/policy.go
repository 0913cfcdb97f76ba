package risk

import "fmt"

// EndPolicy selects what happens to open positions near data exhaustion.
type EndPolicy string

const (
	// EndLiquidate force-closes all positions two bars before the final bar,
	// leaving one bar for the closing orders to fill at the next open.
	EndLiquidate EndPolicy = "liquidate"
	// EndHold leaves positions open; they are valued at the final open for
	// reporting only.
	EndHold EndPolicy = "hold"
)

// Policy is the risk configuration for one run. It is required: a run cannot
// start without a valid policy.
type Policy struct {
	// StartingCash seeds the simulated account.
	StartingCash float64

	// SlippageScale scales the gap slippage model. 0 disables slippage,
	// 1.0 is the reference model.
	SlippageScale float64

	EndPolicy EndPolicy

	// Debug enables per-bar rule tracing. Set once at construction; there is
	// no ambient debug switch.
	Debug bool
}

func (p Policy) Validate() error {
	if p.StartingCash <= 0 {
		return fmt.Errorf("risk: starting cash must be positive, got %v", p.StartingCash)
	}
	if p.SlippageScale < 0 {
		return fmt.Errorf("risk: slippage scale must be >= 0, got %v", p.SlippageScale)
	}
	switch p.EndPolicy {
	case EndLiquidate, EndHold:
	default:
		return fmt.Errorf("risk: end policy must be %q or %q, got %q",
			EndLiquidate, EndHold, p.EndPolicy)
	}
	return nil
}
