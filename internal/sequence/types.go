package sequence

import (
	"context"
	"time"

	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/lightpaint/internal/led"
)

// State enumerates animator states.
type State string

const (
	Idle        State = "idle"
	Configuring State = "configuring"
	Running     State = "running"
	Blanking    State = "blanking"
	Terminated  State = "terminated"
)

// Timing holds the two fixed suspension points of a run.
type Timing struct {
	// RowDelay follows every frame.
	RowDelay time.Duration
	// BlankDelay follows the blank frame at the end of each pass.
	BlankDelay time.Duration
}

// DefaultTiming is 1ms per row and 500ms between passes.
var DefaultTiming = Timing{
	RowDelay:   time.Millisecond,
	BlankDelay: 500 * time.Millisecond,
}

// Hooks are optional callbacks invoked synchronously from the animation loop.
type Hooks struct {
	// OnState fires on every state transition.
	OnState func(s State)
	// OnFrame receives the RGB frame about to be encoded; row is -1 for the
	// blank frame. rgb is only valid for the duration of the call.
	OnFrame func(pass, row int, rgb []byte)
	// OnPass fires after a pass has been blanked.
	OnPass func(pass int)
}

// Options configures an Animator. A zero Clock or nil Protocol falls back to
// the LPD8806 defaults; Timing is taken as given.
type Options struct {
	Channel  int
	Clock    physic.Frequency
	Protocol led.Protocol
	// Gamma is applied to each frame before encoding; nil disables it.
	Gamma  *led.LUT
	Timing Timing
	Hooks  Hooks
	// BlankOnCancel sends a blank frame when Run is cancelled.
	BlankOnCancel bool
	// Sleep replaces the timed wait, for tests.
	Sleep func(ctx context.Context, d time.Duration) error
}
