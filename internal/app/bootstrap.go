package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"

	"github.com/coreman2200/lightpaint/internal/config"
	diag "github.com/coreman2200/lightpaint/internal/diagnostics"
	"github.com/coreman2200/lightpaint/internal/driver/preview"
	"github.com/coreman2200/lightpaint/internal/frames"
	"github.com/coreman2200/lightpaint/internal/led"
	"github.com/coreman2200/lightpaint/internal/pattern"
	"github.com/coreman2200/lightpaint/internal/ppm"
	"github.com/coreman2200/lightpaint/internal/sequence"
	"github.com/coreman2200/lightpaint/internal/ws"
)

// Options describes one painting run. Exactly one of ImagePath and Pattern
// selects the frames.
type Options struct {
	Config    *config.Config
	Repeats   int
	ImagePath string
	Pattern   pattern.Kind
	Progress  bool

	Fs     afero.Fs
	Stderr io.Writer
	// OpenTransport overrides driver selection.
	OpenTransport func(cfg *config.Config, leds int) led.Transport
	// Sleep replaces the animator's timed wait.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnMonitor is called once the monitor is listening.
	OnMonitor func(m *ws.State, addr string)
}

// Run loads the frames, opens the transport and paints Repeats passes.
// Every returned error carries a diagnostics Kind, except an interrupt,
// which wraps context.Canceled.
func Run(ctx context.Context, o Options) error {
	cfg := o.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return diag.Wrap(diag.Usage, "config", err)
	}
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.OpenTransport == nil {
		o.OpenTransport = OpenTransport
	}

	seq, err := loadFrames(o, cfg)
	if err != nil {
		return err
	}
	log.Info().
		Int("leds", seq.Width()).
		Int("rows", seq.Len()).
		Int("repeats", o.Repeats).
		Str("driver", cfg.Driver).
		Msg("frames ready")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var mon *ws.State
	if cfg.Monitor.Addr != "" {
		mon = ws.NewState(seq.Width(), seq.Len())
		addr, _, err := mon.Serve(ctx, cfg.Monitor.Addr)
		if err != nil {
			return diag.Wrap(diag.Usage, "monitor "+cfg.Monitor.Addr, err)
		}
		if o.OnMonitor != nil {
			o.OnMonitor(mon, addr.String())
		}
	}

	err = paint(ctx, o, cfg, seq, mon)
	if err != nil {
		d := diag.FromError(err)
		if mon != nil {
			mon.PushDiag(d)
		}
	}
	return err
}

func paint(ctx context.Context, o Options, cfg *config.Config, seq *frames.Sequence, mon *ws.State) error {
	drv := o.OpenTransport(cfg, seq.Width())
	defer func() {
		if err := drv.Close(); err != nil {
			log.Warn().Err(err).Msg("close transport")
		}
	}()

	mode, _ := led.ParseGammaMode(cfg.Gamma)
	hooks := sequence.Hooks{}
	var bar *progressbar.ProgressBar
	if o.Progress && o.Repeats > 0 {
		bar = progressbar.NewOptions(o.Repeats*seq.Len(),
			progressbar.OptionSetDescription("painting"),
			progressbar.OptionSetWriter(o.Stderr),
			progressbar.OptionShowCount(),
		)
	}
	hooks.OnFrame = func(pass, row int, rgb []byte) {
		if mon != nil {
			mon.PushFrame(pass, row, rgb)
		}
		if bar != nil && row >= 0 {
			_ = bar.Add(1)
		}
	}
	hooks.OnState = func(s sequence.State) {
		if mon != nil {
			mon.SetState(string(s))
		}
	}

	anim := sequence.NewAnimator(seq, drv, sequence.Options{
		Channel: cfg.SPI.Channel,
		Clock:   cfg.Clock(),
		Gamma:   led.BuildLUT(mode),
		Timing: sequence.Timing{
			RowDelay:   cfg.Timing.RowDelay,
			BlankDelay: cfg.Timing.BlankDelay,
		},
		Hooks:         hooks,
		BlankOnCancel: cfg.BlankOnExit,
		Sleep:         o.Sleep,
	})
	if err := anim.Configure(); err != nil {
		return diag.Wrap(diag.Device, cfg.Driver, err)
	}
	err := anim.Run(ctx, o.Repeats)
	if bar != nil {
		_ = bar.Finish()
	}
	switch {
	case err == nil:
		log.Info().Int("repeats", o.Repeats).Msg("done")
		return nil
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("interrupted: %w", err)
	default:
		return diag.Wrap(diag.Device, cfg.Driver, err)
	}
}

func loadFrames(o Options, cfg *config.Config) (*frames.Sequence, error) {
	if o.ImagePath == "" {
		seq, err := pattern.Generate(o.Pattern, cfg.LEDs)
		if err != nil {
			return nil, diag.Wrap(diag.Usage, "selftest", err)
		}
		return seq, nil
	}

	seq, hdr, err := ppm.DecodeFile(o.Fs, o.ImagePath)
	if err != nil {
		return nil, classifyDecode(err)
	}
	log.Debug().
		Str("path", o.ImagePath).
		Int("width", hdr.Width).
		Int("height", hdr.Height).
		Msg("decoded")

	if cfg.LEDs > 0 && cfg.LEDs != seq.Width() {
		k, err := frames.ParseKernel(cfg.Resample)
		if err != nil {
			return nil, diag.Wrap(diag.Usage, "resample", err)
		}
		seq, err = seq.Resample(cfg.LEDs, k)
		if err != nil {
			return nil, diag.Wrap(diag.Allocation, "resample", err)
		}
		log.Debug().Int("from", hdr.Width).Int("to", cfg.LEDs).Str("kernel", cfg.Resample).Msg("resampled")
	}
	return seq, nil
}

// classifyDecode maps decoder failures onto the diagnostic taxonomy.
func classifyDecode(err error) error {
	switch {
	case errors.Is(err, ppm.ErrFileNotFound), errors.Is(err, ppm.ErrIO):
		return diag.Wrap(diag.File, "", err)
	case errors.Is(err, ppm.ErrTooLarge):
		return diag.Wrap(diag.Allocation, "", err)
	default:
		return diag.Wrap(diag.Format, "", err)
	}
}

// OpenTransport returns the transport named by cfg.Driver.
func OpenTransport(cfg *config.Config, leds int) led.Transport {
	if cfg.Driver == config.DriverSim {
		return preview.New(leds)
	}
	return led.NewSPI(cfg.SPI.Dev)
}
