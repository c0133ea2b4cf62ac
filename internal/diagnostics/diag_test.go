package diagnostics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapAndKindOf(t *testing.T) {
	base := errors.New("short read")
	err := fmt.Errorf("run: %w", Wrap(Format, "decode img.ppm", base))

	assert.Equal(t, Format, KindOf(err))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "run: decode img.ppm: short read", err.Error())
	assert.Nil(t, Wrap(Device, "x", nil))
	assert.Equal(t, Kind(""), KindOf(base))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(Usagef("need %d args", 2)))
	assert.Equal(t, 1, ExitCode(errors.New("anything")))
}

func TestFromError(t *testing.T) {
	d := FromError(Wrap(Device, "configure", errors.New("no port")))
	assert.Equal(t, Err, d.Severity)
	assert.Equal(t, "RUN.device", d.Code)
	assert.Equal(t, "configure: no port", d.Detail)
	assert.NotEmpty(t, d.SuggestedFixes)

	d = FromError(errors.New("mystery"))
	assert.Equal(t, "RUN.internal", d.Code)
	assert.Equal(t, "Run failed", d.Summary)
}
