package main

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/coreman2200/lightpaint/internal/app"
	"github.com/coreman2200/lightpaint/internal/config"
	diag "github.com/coreman2200/lightpaint/internal/diagnostics"
	"github.com/coreman2200/lightpaint/internal/pattern"
)

// newSelftestCmd paints a built-in pattern instead of an image. cfg is
// filled in by the root command's pre-run.
func newSelftestCmd(fsys afero.Fs, cfg **config.Config, f *flags) *cobra.Command {
	var (
		name    string
		repeats int
	)
	cmd := &cobra.Command{
		Use:   "selftest --leds N",
		Short: "Paint a test pattern to check wiring and colour order",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return diag.Usagef("selftest takes no arguments")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := pattern.Parse(name)
			if err != nil {
				return diag.Wrap(diag.Usage, "selftest", err)
			}
			return app.Run(cmd.Context(), app.Options{
				Config:   *cfg,
				Repeats:  repeats,
				Pattern:  k,
				Progress: f.progress,
				Fs:       fsys,
				Stderr:   cmd.ErrOrStderr(),
			})
		},
	}
	cmd.Flags().StringVar(&name, "pattern", string(pattern.IndexSweep), "index_sweep | rgb_channels | white")
	cmd.Flags().IntVar(&repeats, "repeats", 1, "passes to paint")
	return cmd
}
