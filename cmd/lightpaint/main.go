package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	diag "github.com/coreman2200/lightpaint/internal/diagnostics"
)

func main() {
	os.Exit(execute(os.Args[1:], afero.NewOsFs(), os.Stderr))
}

// execute runs the command line and returns the process exit status.
func execute(args []string, fs afero.Fs, stderr io.Writer) int {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(fs)
	root.SetArgs(positionalRepeats(root.PersistentFlags(), args))
	root.SetErr(stderr)

	c, err := root.ExecuteContextC(ctx)
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		log.Warn().Msg("interrupted; strip left as last frame unless blank_on_exit is set")
		return diag.ExitCode(err)
	}

	d := diag.FromError(err)
	ev := log.Error().Str("code", d.Code).Str("detail", d.Detail)
	if len(d.SuggestedFixes) > 0 {
		ev = ev.Strs("fixes", d.SuggestedFixes)
	}
	ev.Msg(d.Summary)
	if diag.KindOf(err) == diag.Usage {
		fmt.Fprint(stderr, c.UsageString())
	}
	return diag.ExitCode(err)
}
