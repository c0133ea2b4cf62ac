package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/lightpaint/internal/config"
	diag "github.com/coreman2200/lightpaint/internal/diagnostics"
	"github.com/coreman2200/lightpaint/internal/driver/fake"
	"github.com/coreman2200/lightpaint/internal/led"
	"github.com/coreman2200/lightpaint/internal/pattern"
	"github.com/coreman2200/lightpaint/internal/sequence"
	"github.com/coreman2200/lightpaint/internal/ws"
)

func noSleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

func testFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, body := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(body), 0644))
	}
	return fs
}

const twoByOne = "P6\n# two pixels\n2 1\n255\n\x0a\x14\x1e\x28\x32\x3c"

func testOptions(t *testing.T, drv *fake.Driver) Options {
	return Options{
		Config:        config.Default(),
		Repeats:       1,
		ImagePath:     "img.ppm",
		Fs:            testFs(t, map[string]string{"img.ppm": twoByOne}),
		Stderr:        &bytes.Buffer{},
		OpenTransport: func(*config.Config, int) led.Transport { return drv },
		Sleep:         noSleep,
	}
}

func TestRunPaintsImage(t *testing.T) {
	drv := &fake.Driver{}
	require.NoError(t, Run(context.Background(), testOptions(t, drv)))

	w := drv.Recorded()
	require.Len(t, w, 4)
	assert.Equal(t, []byte{0x8A, 0x85, 0x8F, 0x99, 0x94, 0x9E}, w[0].Data)
	assert.Equal(t, []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80}, w[2].Data)
	assert.True(t, drv.Closed)
}

func TestRunErrorKinds(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  diag.Kind
	}{
		{"missing", map[string]string{}, diag.File},
		{"bad magic", map[string]string{"img.ppm": "P3\n2 1\n255\n"}, diag.Format},
		{"depth", map[string]string{"img.ppm": "P6\n2 1\n65535\n"}, diag.Format},
		{"truncated", map[string]string{"img.ppm": "P6\n2 1\n255\n\x01\x02"}, diag.Format},
		{"too large", map[string]string{"img.ppm": "P6\n100000 100000\n255\n"}, diag.Allocation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drv := &fake.Driver{}
			o := testOptions(t, drv)
			o.Fs = testFs(t, tt.files)
			err := Run(context.Background(), o)
			require.Error(t, err)
			assert.Equal(t, tt.want, diag.KindOf(err))
			assert.Equal(t, 1, diag.ExitCode(err))
			assert.Empty(t, drv.Recorded())
		})
	}
}

func TestRunDeviceFailure(t *testing.T) {
	drv := &fake.Driver{FailConfigure: errors.New("no spidev")}
	err := Run(context.Background(), testOptions(t, drv))
	assert.Equal(t, diag.Device, diag.KindOf(err))
	var se *sequence.StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "configure", se.Step)

	drv = &fake.Driver{FailWrite: errors.New("bus"), FailWriteAt: 2}
	err = Run(context.Background(), testOptions(t, drv))
	assert.Equal(t, diag.Device, diag.KindOf(err))
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "latch", se.Step)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	o := testOptions(t, &fake.Driver{})
	o.Config.Timing.RowDelay = -time.Second
	assert.Equal(t, diag.Usage, diag.KindOf(Run(context.Background(), o)))
}

func TestRunResamplesToLEDCount(t *testing.T) {
	drv := &fake.Driver{}
	o := testOptions(t, drv)
	o.Config.LEDs = 4
	require.NoError(t, Run(context.Background(), o))
	assert.Len(t, drv.Recorded()[0].Data, 12)
}

func TestRunPattern(t *testing.T) {
	drv := &fake.Driver{}
	o := testOptions(t, drv)
	o.ImagePath = ""
	o.Pattern = pattern.IndexSweep
	o.Config.LEDs = 3
	o.Repeats = 2
	require.NoError(t, Run(context.Background(), o))
	// (3 rows + blank) * 2 passes, payload and latch each
	assert.Len(t, drv.Recorded(), 16)

	o.Config.LEDs = 0
	assert.Equal(t, diag.Usage, diag.KindOf(Run(context.Background(), o)))
}

func TestRunGamma(t *testing.T) {
	drv := &fake.Driver{}
	o := testOptions(t, drv)
	o.Config.Gamma = string(led.GammaLiteral)
	require.NoError(t, Run(context.Background(), o))
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, drv.Recorded()[0].Data)
}

func TestRunProgress(t *testing.T) {
	o := testOptions(t, &fake.Driver{})
	var stderr bytes.Buffer
	o.Stderr = &stderr
	o.Progress = true
	o.Repeats = 3
	require.NoError(t, Run(context.Background(), o))
	assert.Contains(t, stderr.String(), "painting")
}

func TestRunInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	drv := &fake.Driver{}
	o := testOptions(t, drv)
	o.Repeats = 10
	o.Sleep = func(context.Context, time.Duration) error {
		cancel()
		return ctx.Err()
	}
	err := Run(ctx, o)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, diag.Kind(""), diag.KindOf(err))
	assert.Len(t, drv.Recorded(), 2, "stops after the first frame")
}

func TestRunServesMonitor(t *testing.T) {
	o := testOptions(t, &fake.Driver{})
	o.Config.Monitor.Addr = "127.0.0.1:0"
	var health map[string]any
	o.OnMonitor = func(_ *ws.State, addr string) {
		resp, err := http.Get("http://" + addr + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	}
	require.NoError(t, Run(context.Background(), o))
	assert.Equal(t, float64(2), health["leds"])
	assert.Equal(t, float64(1), health["rows"])
}
