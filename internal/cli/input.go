// Package cli parses lathe invocations and runs the build pipeline.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/chazu/lathe/pkg/engine"
)

const (
	ExitSuccess      = 0
	ExitConfigError  = 1
	ExitBuildFailure = 2
)

// Kernel names.
const (
	KernelSDFX     = "sdfx"
	KernelManifold = "manifold"
)

// Invocation is the parsed command line.
type Invocation struct {
	// Model is the preset name; ignored when ConfigPath is set.
	Model string
	// ConfigPath is a YAML model or a Lisp model script.
	ConfigPath string
	OutputDir  string
	Kernel     string
	// Policy overrides the injector hole-count policy.
	Policy string
	// Cells overrides the mesh resolution when positive.
	Cells      int
	SectionPNG string
	SectionPx  int
	// SaveConfig writes the resolved model as YAML.
	SaveConfig string
	// EvalTimeout bounds script evaluation.
	EvalTimeout time.Duration
	Dump        bool
	List        bool
	Verbose     bool
}

// InvocationError is a parse failure with its exit code.
type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitConfigError, Message: fmt.Sprintf(format, args...)}
}

// ErrHelp is returned when -h or -help is given; usage has been written.
var ErrHelp = flag.ErrHelp

// ParseInvocation parses CLI flags. Usage is written to usage on -help.
func ParseInvocation(args []string, usage io.Writer) (Invocation, error) {
	fs := flag.NewFlagSet("lathe", flag.ContinueOnError)
	fs.SetOutput(io.Discard) // parsing errors are returned, not printed

	var inv Invocation
	fs.StringVar(&inv.Model, "model", "engine", "preset to build (see -list)")
	fs.StringVar(&inv.ConfigPath, "config", "", "model file: .yaml/.yml or a .lisp/.zy script")
	fs.StringVar(&inv.OutputDir, "out", "out", "output directory for STL files")
	fs.StringVar(&inv.Kernel, "kernel", KernelSDFX, "geometry kernel: sdfx or manifold")
	fs.StringVar(&inv.Policy, "policy", "", "override the injector hole-count policy")
	fs.IntVar(&inv.Cells, "cells", 0, "marching-cubes cells along the longest axis")
	fs.StringVar(&inv.SectionPNG, "section-png", "", "also render the section plane to this PNG")
	fs.IntVar(&inv.SectionPx, "section-px", 512, "section PNG size in pixels")
	fs.StringVar(&inv.SaveConfig, "save-config", "", "write the resolved model as YAML")
	fs.DurationVar(&inv.EvalTimeout, "eval-timeout", engine.EvalTimeout, "time limit for a model script")
	fs.BoolVar(&inv.Dump, "dump", false, "print the resolved model and exit")
	fs.BoolVar(&inv.List, "list", false, "list presets and exit")
	fs.BoolVar(&inv.Verbose, "v", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(usage)
			fs.Usage()
			return inv, ErrHelp
		}
		return inv, invalidInvocationf("%v", err)
	}
	if fs.NArg() > 0 {
		return inv, invalidInvocationf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	switch inv.Kernel {
	case KernelSDFX, KernelManifold:
	default:
		return inv, invalidInvocationf("unknown kernel %q (want %s or %s)", inv.Kernel, KernelSDFX, KernelManifold)
	}
	if inv.Cells < 0 {
		return inv, invalidInvocationf("-cells must not be negative")
	}
	if inv.EvalTimeout <= 0 {
		return inv, invalidInvocationf("-eval-timeout must be positive")
	}
	if inv.SectionPx < 2 {
		return inv, invalidInvocationf("-section-px must be at least 2")
	}
	if inv.ConfigPath != "" {
		inv.ConfigPath = filepath.Clean(inv.ConfigPath)
	}
	inv.OutputDir = filepath.Clean(inv.OutputDir)
	return inv, nil
}

// isScript reports whether path names a Lisp model script.
func isScript(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lisp", ".zy", ".lsp":
		return true
	}
	return false
}
