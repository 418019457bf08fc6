package backtest

// Action is the per-bar record of what the position resolver decided:
// which price slots (if any) were written this bar, and the
// first-entry-side marker consumed by the FrameState classifier.
type Action struct {
	EntryLongPrice  *float64
	EntryShortPrice *float64
	ExitLongPrice   *float64
	ExitShortPrice  *float64

	// FirstEntrySide is reset to 0 at the top of every bar, then set
	// to +1/-1 if a new entry is actually recorded this bar. It is a
	// per-bar marker, not a per-position one (see DESIGN.md Open
	// Question 3).
	FirstEntrySide int8
}

func (a *Action) hasLongPosition() bool {
	return a.EntryLongPrice != nil && a.ExitLongPrice == nil
}

func (a *Action) hasShortPosition() bool {
	return a.EntryShortPrice != nil && a.ExitShortPrice == nil
}

func f64ptr(v float64) *float64 { return &v }
