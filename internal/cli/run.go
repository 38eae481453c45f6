package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/gogpu/gg"

	"github.com/chazu/lathe/pkg/assembly"
	"github.com/chazu/lathe/pkg/config"
	"github.com/chazu/lathe/pkg/engine"
	"github.com/chazu/lathe/pkg/export"
	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/kernel/manifold"
	"github.com/chazu/lathe/pkg/kernel/sdfx"
	"github.com/chazu/lathe/pkg/tessellate"
)

// Result reports a run.
type Result struct {
	ExitCode int
	// Files lists everything written, in order.
	Files []string
}

// configError marks failures in the model itself.
type configError struct{ err error }

func (e configError) Error() string { return e.err.Error() }
func (e configError) Unwrap() error { return e.err }

func configErrorf(format string, args ...any) error {
	return configError{fmt.Errorf(format, args...)}
}

// Execute runs inv, writing listings and dumps to stdout and logs to
// stderr.
func Execute(ctx context.Context, inv Invocation, stdout, stderr io.Writer) (Result, error) {
	log := newLogger(stderr, inv.Verbose)
	assembly.SetLogger(log)
	gg.SetLogger(log)
	defer assembly.SetLogger(nil)
	defer gg.SetLogger(nil)

	if inv.List {
		for _, n := range config.Presets() {
			fmt.Fprintln(stdout, n)
		}
		return Result{ExitCode: ExitSuccess}, nil
	}

	files, err := run(ctx, inv, stdout, log)
	res := Result{ExitCode: ExitSuccess, Files: files}
	if err != nil {
		var ce configError
		switch {
		case errors.As(err, &ce), errors.Is(err, config.ErrInvalid):
			res.ExitCode = ExitConfigError
		default:
			res.ExitCode = ExitBuildFailure
		}
	}
	return res, err
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func run(ctx context.Context, inv Invocation, stdout io.Writer, log *slog.Logger) ([]string, error) {
	m, err := loadModel(inv)
	if err != nil {
		return nil, err
	}
	if err := override(m, inv); err != nil {
		return nil, err
	}

	findings := m.Validate()
	for _, w := range findings.Warnings() {
		log.Warn("config", "field", w.Field, "message", w.Message)
	}
	if err := findings.Err(); err != nil {
		return nil, err
	}

	if inv.Dump {
		spew.Fdump(stdout, m)
		return nil, nil
	}

	var files []string
	if inv.SaveConfig != "" {
		if err := config.Save(inv.SaveConfig, m); err != nil {
			return nil, err
		}
		files = append(files, inv.SaveConfig)
	}

	k, err := newKernel(inv.Kernel, m.Resolution.MeshCells)
	if err != nil {
		return files, err
	}

	res, err := assembly.Assemble(ctx, k, m)
	if err != nil {
		return files, err
	}
	meshes, err := tessellate.Tessellate(ctx, k, res)
	if err != nil {
		return files, err
	}
	written, err := export.SaveParts(inv.OutputDir, meshes)
	files = append(files, written...)
	if err != nil {
		return files, err
	}
	for _, mesh := range meshes {
		log.Info("export: wrote", "part", mesh.PartName, "triangles", mesh.TriangleCount())
	}

	if inv.SectionPNG != "" {
		if err := renderSection(inv, res); err != nil {
			return files, err
		}
		files = append(files, inv.SectionPNG)
	}
	return files, nil
}

func loadModel(inv Invocation) (*config.Model, error) {
	if inv.ConfigPath == "" {
		m, err := config.Preset(inv.Model)
		if err != nil {
			return nil, configError{err}
		}
		return m, nil
	}
	if !isScript(inv.ConfigPath) {
		m, err := config.Load(inv.ConfigPath)
		if err != nil {
			return nil, configError{err}
		}
		return m, nil
	}

	eng := engine.NewEngine(engine.WithTimeout(inv.EvalTimeout))
	m, evalErrs, err := eng.EvaluateFile(inv.ConfigPath)
	if err != nil {
		return nil, configErrorf("%s: %w", inv.ConfigPath, err)
	}
	if len(evalErrs) > 0 {
		msgs := make([]string, len(evalErrs))
		for i, e := range evalErrs {
			msgs[i] = e.Error()
		}
		return nil, configErrorf("%s: %s", inv.ConfigPath, strings.Join(msgs, "; "))
	}
	return m, nil
}

func override(m *config.Model, inv Invocation) error {
	if inv.Policy != "" {
		if m.Engine == nil {
			return configErrorf("-policy applies to engine models, %s is a %s", m.Name, m.Kind)
		}
		m.Engine.Injector.Policy = inv.Policy
	}
	if inv.Cells > 0 {
		m.Resolution.MeshCells = inv.Cells
	}
	return nil
}

func newKernel(name string, cells int) (kernel.Kernel, error) {
	if name == KernelManifold {
		return manifold.New()
	}
	return sdfx.New(sdfx.WithMeshCells(cells)), nil
}

// renderSection draws the shell cross-section at the slab plane, with the
// channel solid over it when there is one.
func renderSection(inv Invocation, res *assembly.Result) error {
	shell, err := export.AsLayer(res.Shell, 0.25, 0.25, 0.28)
	if err != nil {
		return err
	}
	layers := []export.Layer{shell}
	if res.Channels != nil {
		ch, err := export.AsLayer(res.Channels, 0.15, 0.45, 0.9)
		if err != nil {
			return err
		}
		layers = append(layers, ch)
	}
	plane := export.Plane{Z: res.Slab.Z, HalfWidth: res.Slab.HalfWidth, Pixels: inv.SectionPx}
	return export.RenderSection(inv.SectionPNG, plane, layers...)
}
