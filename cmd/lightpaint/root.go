package main

import (
	"errors"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/coreman2200/lightpaint/internal/app"
	"github.com/coreman2200/lightpaint/internal/config"
	diag "github.com/coreman2200/lightpaint/internal/diagnostics"
)

// Version is the application version.
const Version = "0.1.0"

// flags mirrors the config keys a user can override on the command line.
type flags struct {
	configPath  string
	driver      string
	dev         string
	channel     int
	speedHz     int64
	rowDelay    time.Duration
	blankDelay  time.Duration
	gamma       string
	leds        int
	resample    string
	blankOnExit bool
	monitor     string
	progress    bool
	logLevel    string
}

func newRootCmd(fsys afero.Fs) *cobra.Command {
	var f flags
	var cfg *config.Config

	cmd := &cobra.Command{
		Use:   "lightpaint [flags] <repeats> <image.ppm>",
		Short: "Paint a P6 image onto an LPD8806 strip, one row per frame",
		Long: `Streams every row of a binary PPM image to an LPD8806 strip over SPI,
1ms per row, then blanks the strip for 500ms before the next pass.

The image width should match the strip length, or set --leds to resample it.
Zero or negative repeats run no passes and leave the strip untouched.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return diag.Usagef("expected <repeats> <image.ppm>, got %d argument(s)", len(args))
			}
			if len(args) > 2 {
				log.Debug().Strs("ignored", args[2:]).Msg("extra arguments")
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = resolveConfig(cmd.Flags(), fsys, &f)
			if err != nil {
				return err
			}
			lvl, err := zerolog.ParseLevel(cfg.LogLevel)
			if err != nil {
				return diag.Wrap(diag.Usage, "log level", err)
			}
			zerolog.SetGlobalLevel(lvl)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			repeats, err := strconv.Atoi(args[0])
			if err != nil {
				return diag.Usagef("repeats %q is not an integer", args[0])
			}
			return app.Run(cmd.Context(), app.Options{
				Config:    cfg,
				Repeats:   repeats,
				ImagePath: args[1],
				Progress:  f.progress,
				Fs:        fsys,
				Stderr:    cmd.ErrOrStderr(),
			})
		},
	}
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return diag.Wrap(diag.Usage, "", err)
	})
	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	bindFlags(cmd.PersistentFlags(), &f)
	cmd.AddCommand(newSelftestCmd(fsys, &cfg, &f))
	return cmd
}

func bindFlags(pf *pflag.FlagSet, f *flags) {
	def := config.Default()
	pf.StringVar(&f.configPath, "config", config.DefaultPath, "path to the YAML config file")
	pf.StringVar(&f.driver, "driver", def.Driver, "transport: spi | sim")
	pf.StringVar(&f.dev, "dev", def.SPI.Dev, `SPI port name (default "/dev/spidev0.<channel>")`)
	pf.IntVar(&f.channel, "channel", def.SPI.Channel, "SPI chip select")
	pf.Int64Var(&f.speedHz, "speed-hz", def.SPI.SpeedHz, "SPI clock in Hz")
	pf.DurationVar(&f.rowDelay, "row-delay", def.Timing.RowDelay, "wait after each row")
	pf.DurationVar(&f.blankDelay, "blank-delay", def.Timing.BlankDelay, "wait after each pass")
	pf.StringVar(&f.gamma, "gamma", def.Gamma, "gamma correction: off | literal | normalized")
	pf.IntVar(&f.leds, "leds", def.LEDs, "strip length; resamples the image width when set")
	pf.StringVar(&f.resample, "resample", def.Resample, "resample kernel: nearest | bilinear | catmullrom")
	pf.BoolVar(&f.blankOnExit, "blank-on-exit", def.BlankOnExit, "blank the strip when interrupted")
	pf.StringVar(&f.monitor, "monitor", def.Monitor.Addr, "serve the live monitor on this address, e.g. :8080")
	pf.BoolVar(&f.progress, "progress", false, "show a progress bar on stderr")
	pf.StringVar(&f.logLevel, "log-level", def.LogLevel, "trace | debug | info | warn | error")
}

// resolveConfig layers the config file over the defaults and explicitly set
// flags over the file. A missing file is only an error when --config was set.
func resolveConfig(fl *pflag.FlagSet, fsys afero.Fs, f *flags) (*config.Config, error) {
	cfg, err := config.Load(fsys, f.configPath)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && !fl.Changed("config"):
		cfg = config.Default()
	default:
		return nil, diag.Wrap(diag.Usage, "config", err)
	}

	if fl.Changed("driver") {
		cfg.Driver = f.driver
	}
	if fl.Changed("dev") {
		cfg.SPI.Dev = f.dev
	}
	if fl.Changed("channel") {
		cfg.SPI.Channel = f.channel
	}
	if fl.Changed("speed-hz") {
		cfg.SPI.SpeedHz = f.speedHz
	}
	if fl.Changed("row-delay") {
		cfg.Timing.RowDelay = f.rowDelay
	}
	if fl.Changed("blank-delay") {
		cfg.Timing.BlankDelay = f.blankDelay
	}
	if fl.Changed("gamma") {
		cfg.Gamma = f.gamma
	}
	if fl.Changed("leds") {
		cfg.LEDs = f.leds
	}
	if fl.Changed("resample") {
		cfg.Resample = f.resample
	}
	if fl.Changed("blank-on-exit") {
		cfg.BlankOnExit = f.blankOnExit
	}
	if fl.Changed("monitor") {
		cfg.Monitor.Addr = f.monitor
	}
	if fl.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, diag.Wrap(diag.Usage, "config", err)
	}
	return cfg, nil
}

// positionalRepeats rewrites args so a negative repeats count reaches the
// command as a positional argument instead of an unknown shorthand flag.
// Flags keep their place; positionals move behind "--" in order.
func positionalRepeats(fl *pflag.FlagSet, args []string) []string {
	var flagArgs, pos []string
	negative := false
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			pos = append(pos, args[i+1:]...)
			i = len(args)
		case isNegativeInt(a):
			negative = true
			pos = append(pos, a)
		case len(a) < 2 || a[0] != '-':
			pos = append(pos, a)
		default:
			flagArgs = append(flagArgs, a)
			if takesValue(fl, a) && i+1 < len(args) {
				i++
				flagArgs = append(flagArgs, args[i])
			}
		}
	}
	if !negative || len(pos) == 0 || !isNegativeInt(pos[0]) {
		return args
	}
	out := append(flagArgs, "--")
	return append(out, pos...)
}

func isNegativeInt(a string) bool {
	n, err := strconv.Atoi(a)
	return err == nil && n < 0
}

// takesValue reports whether the flag token a consumes the next argument.
func takesValue(fl *pflag.FlagSet, a string) bool {
	if strings.Contains(a, "=") {
		return false
	}
	var f *pflag.Flag
	if strings.HasPrefix(a, "--") {
		f = fl.Lookup(a[2:])
	} else if len(a) == 2 {
		f = fl.ShorthandLookup(a[1:])
	}
	return f != nil && f.NoOptDefVal == ""
}
