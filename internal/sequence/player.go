package sequence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/lightpaint/internal/frames"
	"github.com/coreman2200/lightpaint/internal/led"
)

// StepError names the device step that failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return e.Step + ": " + e.Err.Error() }
func (e *StepError) Unwrap() error { return e.Err }

// Animator streams a frame sequence to a transport, pass after pass.
// It owns its scratch buffer; the sequence is only ever read.
type Animator struct {
	state      State
	configured bool

	seq     *frames.Sequence
	drv     led.Transport
	opts    Options
	scratch []byte
}

// NewAnimator wires seq to drv and allocates the one scratch buffer every
// frame passes through. Configure must succeed before Run.
func NewAnimator(seq *frames.Sequence, drv led.Transport, o Options) *Animator {
	if o.Clock <= 0 {
		o.Clock = led.DefaultClock
	}
	if o.Protocol == nil {
		o.Protocol = led.LPD8806{}
	}
	if o.Sleep == nil {
		o.Sleep = sleep
	}
	return &Animator{
		state:   Idle,
		seq:     seq,
		drv:     drv,
		opts:    o,
		scratch: make([]byte, seq.RowLen()),
	}
}

// State reports the current state.
func (a *Animator) State() State { return a.state }

func (a *Animator) setState(s State) {
	if a.state == s {
		return
	}
	a.state = s
	if a.opts.Hooks.OnState != nil {
		a.opts.Hooks.OnState(s)
	}
}

// Configure sets the channel and clock, then initializes the transport.
func (a *Animator) Configure() error {
	if a.state != Idle {
		return fmt.Errorf("configure in state %s", a.state)
	}
	a.setState(Configuring)
	if err := a.drv.Configure(a.opts.Channel, a.opts.Clock); err != nil {
		a.setState(Terminated)
		return &StepError{Step: "configure", Err: err}
	}
	if err := a.drv.Initialize(); err != nil {
		a.setState(Terminated)
		return &StepError{Step: "initialize", Err: err}
	}
	a.configured = true
	a.setState(Idle)
	log.Debug().
		Int("channel", a.opts.Channel).
		Str("clock", a.opts.Clock.String()).
		Str("protocol", a.opts.Protocol.Name()).
		Msg("transport configured")
	return nil
}

// Run plays repeats passes over the sequence. Each row is shown then
// followed by Timing.RowDelay; each pass ends with a blank frame and
// Timing.BlankDelay. Zero or negative repeats transmit nothing. The
// animator is Terminated when Run returns and cannot be reused.
func (a *Animator) Run(ctx context.Context, repeats int) error {
	if a.state == Terminated {
		return errors.New("animator terminated")
	}
	if !a.configured {
		return errors.New("animator not configured")
	}
	defer a.terminate()

	if repeats <= 0 {
		log.Info().Int("repeats", repeats).Msg("nothing to play")
		return nil
	}

	for pass := 0; pass < repeats; pass++ {
		a.setState(Running)
		for row := 0; row < a.seq.Len(); row++ {
			copy(a.scratch, a.seq.Row(row))
			a.opts.Gamma.Apply(a.scratch)
			if err := a.show(pass, row); err != nil {
				return err
			}
			if err := a.opts.Sleep(ctx, a.opts.Timing.RowDelay); err != nil {
				return a.interrupted(err)
			}
		}

		a.setState(Blanking)
		if err := a.blank(pass); err != nil {
			return err
		}
		if a.opts.Hooks.OnPass != nil {
			a.opts.Hooks.OnPass(pass)
		}
		log.Debug().Int("pass", pass+1).Int("of", repeats).Msg("pass complete")
		if err := a.opts.Sleep(ctx, a.opts.Timing.BlankDelay); err != nil {
			return a.interrupted(err)
		}
	}
	return nil
}

func (a *Animator) show(pass, row int) error {
	if a.opts.Hooks.OnFrame != nil {
		a.opts.Hooks.OnFrame(pass, row, a.scratch)
	}
	if err := led.Show(a.drv, a.opts.Channel, a.opts.Protocol, a.scratch); err != nil {
		step := "write"
		if errors.Is(err, led.ErrLatch) {
			step = "latch"
		}
		return &StepError{Step: step, Err: err}
	}
	log.Trace().Int("pass", pass).Int("row", row).Msg("frame")
	return nil
}

// blank zeroes the scratch buffer and shows it, turning every LED off.
// The hook sees it as row -1.
func (a *Animator) blank(pass int) error {
	for i := range a.scratch {
		a.scratch[i] = 0
	}
	return a.show(pass, -1)
}

func (a *Animator) interrupted(err error) error {
	if a.opts.BlankOnCancel {
		if berr := a.blank(-1); berr != nil {
			return errors.Join(err, berr)
		}
	}
	return err
}

func (a *Animator) terminate() {
	a.scratch = nil
	a.seq = nil
	a.setState(Terminated)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
