// Package wasmfit runs an optional WASI fit engine for trendline
// computation. The module reads {"points":[[x,y],...]} on stdin and writes
// {"slope":..,"intercept":..} to stdout. When no module is found every
// caller falls back to the pure Go fitter.
package wasmfit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"

	trendline "github.com/vigneshwaranr/highcharts-trendline"
)

var wasmPath string

func init() {
	if p := os.Getenv("TRENDLINE_WASM"); p != "" {
		if _, err := os.Stat(p); err == nil {
			wasmPath = p
		}
		return
	}
	cwd, _ := os.Getwd()
	execPath, _ := os.Executable()
	execDir := filepath.Dir(execPath)
	candidates := []string{
		filepath.Join(execDir, "trendfit.wasm"),
		filepath.Join(cwd, "bin", "trendfit.wasm"),
		filepath.Join(cwd, "trendfit.wasm"),
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			wasmPath = p
			return
		}
	}
}

// Available returns true if a fit engine module was found.
func Available() bool {
	return wasmPath != ""
}

type fitInput struct {
	Points [][2]float64 `json:"points"`
}

type fitOutput struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// engineInput drops missing (NaN) samples: the engine only sees retained
// points, and NaN would not survive JSON encoding anyway.
func engineInput(points []trendline.Point) fitInput {
	in := fitInput{Points: make([][2]float64, 0, len(points))}
	for _, p := range points {
		if p.Missing() {
			continue
		}
		in.Points = append(in.Points, [2]float64{p.X, p.Y})
	}
	return in
}

// Fit runs the WASI module over the given samples and returns the fitted
// slope and intercept.
func Fit(ctx context.Context, points []trendline.Point) (slope, intercept float64, err error) {
	if !Available() {
		return 0, 0, fmt.Errorf("trendfit.wasm not found")
	}
	wasmBytes, err := os.ReadFile(wasmPath)
	if err != nil {
		return 0, 0, err
	}

	body, err := json.Marshal(engineInput(points))
	if err != nil {
		return 0, 0, err
	}

	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, r)

	var out, errBuf bytes.Buffer
	cfg := wazero.NewModuleConfig().
		WithName("trendfit").
		WithStdin(bytes.NewReader(body)).
		WithStdout(&out).
		WithStderr(&errBuf).
		WithArgs("trendfit", "fit")
	if _, err := r.InstantiateWithConfig(ctx, wasmBytes, cfg); err != nil {
		var exitErr *sys.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != 0 {
			return 0, 0, fmt.Errorf("trendfit fit: %w (stderr: %s)", err, errBuf.String())
		}
	}

	var result fitOutput
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		return 0, 0, fmt.Errorf("parse trendfit output: %w", err)
	}
	return result.Slope, result.Intercept, nil
}
