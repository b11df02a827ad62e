package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"

	errs "github.com/matzehuels/skillgraph/pkg/errors"
)

// converter is the external SVG converter used for raster and print output.
const converter = "rsvg-convert"

// ToPDF converts an SVG diagram to PDF.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return convert(ctx, svg, "pdf")
}

// ToPNG converts an SVG diagram to PNG, scaled by scale (2 for high-DPI
// screens).
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "png scale must be positive, got %g", scale)
	}
	return convert(ctx, svg, "png", "--zoom", strconv.FormatFloat(scale, 'f', 2, 64))
}

// Available reports whether PNG and PDF output can be produced here.
func Available() bool {
	_, err := exec.LookPath(converter)
	return err == nil
}

func convert(ctx context.Context, svg []byte, format string, extra ...string) ([]byte, error) {
	if len(svg) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "%s export: empty diagram", format)
	}
	if !Available() {
		return nil, errs.New(errs.ErrCodeUnsupported,
			"%s export needs librsvg (brew install librsvg, apt install librsvg2-bin)", format)
	}

	cmd := exec.CommandContext(ctx, converter, append([]string{"--format", format}, extra...)...)
	cmd.Stdin = bytes.NewReader(svg)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", converter, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return out.Bytes(), nil
}
