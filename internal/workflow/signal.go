package workflow

import "sync/atomic"

const (
	signalIdle int32 = iota
	signalPending
	signalInflight
)

// SummarySignal is a one-shot, edge-triggered notification from a chat
// session to the notes panel. Raise marks a freshly generated summary;
// TryBegin claims the single refresh that follows; Acknowledge resets the
// signal once the panel has rendered. Repeated observations while the
// signal is pending claim it only once.
type SummarySignal struct {
	state atomic.Int32
}

// Raise marks a new summary as available. Raising while a refresh is
// already running re-arms the signal so the newer summary is not lost.
func (s *SummarySignal) Raise() {
	s.state.Store(signalPending)
}

// TryBegin reports whether the caller has claimed the pending signal. At
// most one caller wins per Raise.
func (s *SummarySignal) TryBegin() bool {
	return s.state.CompareAndSwap(signalPending, signalInflight)
}

// Acknowledge completes a claimed refresh. If Raise fired again while the
// refresh was running, the signal stays pending.
func (s *SummarySignal) Acknowledge() {
	s.state.CompareAndSwap(signalInflight, signalIdle)
}

// Pending reports whether an unclaimed summary is waiting.
func (s *SummarySignal) Pending() bool {
	return s.state.Load() == signalPending
}
