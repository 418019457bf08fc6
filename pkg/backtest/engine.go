package backtest

// Run executes one backtest: validates inputs, preallocates output
// buffers, then drives the bar loop described in spec.md §4.8. It is
// single-threaded and deterministic — running it twice on identical
// inputs yields bit-identical outputs, and it performs no I/O. Output
// columns are preallocated once; the resolver's optional price slots
// are heap pointers, so a bar that records or ratchets a price still
// allocates.
func Run(data *PreparedData, params *ParamBundle) (*OutputBuffers, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	kinds := NewRiskKinds(params)
	buf := NewOutputBuffers(data.Len(), kinds, params.usesATR())

	res := newResolver(params, kinds)
	capState := NewCapitalState(params.InitialCapital)

	bars := data.Bars
	for i := range bars {
		var prevPrev, prev Bar
		if i >= 1 {
			prev = bars[i-1]
		}
		if i >= 2 {
			prevPrev = bars[i-2]
		}
		cur := bars[i]

		result := res.step(prevPrev, prev, cur, capState.exhausted())
		capState.settle(result.exits, result.unrealized)

		frame := classifyFrameState(result.frame)
		buf.writeFixed(i, capState, &res.action, &res.risk, frame)
		buf.writeOptional(i, &res.risk, cur.ATR)
	}

	return buf, nil
}
