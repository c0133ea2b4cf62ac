package diagnostics

import (
	"errors"
	"fmt"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// Kind classifies a terminal error.
type Kind string

const (
	Usage      Kind = "usage"
	File       Kind = "file"
	Format     Kind = "format"
	Allocation Kind = "allocation"
	Device     Kind = "device"
)

// Error is an error tagged with its Kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap tags err with kind. A nil err stays nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Usagef builds a usage error.
func Usagef(format string, args ...any) error {
	return &Error{Kind: Usage, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the outermost Kind in err's chain, or "" if untagged.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// ExitCode is 0 for success and 1 for any error.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// FromError turns a terminal error into a reportable diagnostic.
func FromError(err error) Diagnostic {
	k := KindOf(err)
	if k == "" {
		k = "internal"
	}
	d := Diagnostic{
		Severity: Err,
		Code:     "RUN." + string(k),
		Summary:  summaries[k],
		Detail:   err.Error(),
	}
	if d.Summary == "" {
		d.Summary = "Run failed"
	}
	d.SuggestedFixes = fixes[k]
	return d
}

var summaries = map[Kind]string{
	Usage:      "Invalid invocation",
	File:       "Image file could not be read",
	Format:     "Image is not a usable P6 pixmap",
	Allocation: "Image buffers could not be allocated",
	Device:     "LED transport failed",
}

var fixes = map[Kind][]string{
	File:       {"check the image path and permissions"},
	Format:     {"convert with: convert in.png -depth 8 out.ppm", "scale the image width to the LED count"},
	Allocation: {"scale the image down"},
	Device:     {"enable SPI and check /dev/spidev0.*", "run with --driver sim to preview without hardware"},
}
