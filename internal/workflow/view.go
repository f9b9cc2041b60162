package workflow

import (
	"fmt"

	"github.com/kbility/taxassist/internal/document"
)

// View identifies one top-level screen.
type View string

const (
	ViewWelcome  View = "welcome"
	ViewUpload   View = "upload"
	ViewChat     View = "chat"
	ViewIrsQuery View = "irs-query"
	ViewResults  View = "results"
)

// Router is the top-level view state machine. Transitions happen only
// through Activate or the startup handoff consume; entering Welcome
// discards the current results and any conversation state.
type Router struct {
	current View
	results *document.Result
	handoff *Handoff

	// onReset is invoked when returning to Welcome, so the owner can
	// discard chat sessions built on the dropped results.
	onReset func()
}

func NewRouter(handoff *Handoff, onReset func()) *Router {
	return &Router{current: ViewWelcome, handoff: handoff, onReset: onReset}
}

// Start consumes a pending handoff, if any, and reports the initial view.
// With a handoff present the router lands directly on Results; the cell is
// cleared so a later restart starts at Welcome.
func (r *Router) Start() (View, error) {
	res, err := r.handoff.Take()
	if err != nil {
		return r.current, fmt.Errorf("restore results: %w", err)
	}
	if res != nil {
		r.results = res
		r.current = ViewResults
	}
	return r.current, nil
}

// Activate transitions to the given view. Results accepts an optional
// payload; activating Results with no payload and no held results shows
// the empty state rather than failing.
func (r *Router) Activate(v View, payload *document.Result) {
	if v == ViewWelcome {
		r.results = nil
		if r.onReset != nil {
			r.onReset()
		}
	}
	if v == ViewResults && payload != nil {
		r.results = payload
	}
	r.current = v
}

// Current returns the active view.
func (r *Router) Current() View {
	return r.current
}

// Results returns the held extraction result. The boolean is false when
// there is nothing to show and Results must render its empty state.
func (r *Router) Results() (document.Result, bool) {
	if r.results == nil || r.results.Empty() {
		return document.Result{}, false
	}
	return *r.results, true
}

// Title is the heading for the Results view: the extracted subject's name
// when known.
func (r *Router) Title() string {
	if r.results == nil {
		return ""
	}
	return r.results.OwnerKey()
}
