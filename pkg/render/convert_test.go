package render

import (
	"context"
	"testing"

	errs "github.com/matzehuels/skillgraph/pkg/errors"
)

func TestToPNGRejectsBadScale(t *testing.T) {
	_, err := ToPNG(context.Background(), []byte("<svg/>"), 0)
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("ToPNG(scale 0) = %v, want INVALID_INPUT", err)
	}
}

func TestConvertEmptyDiagram(t *testing.T) {
	_, err := ToPDF(context.Background(), nil)
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("ToPDF(nil) = %v, want INVALID_INPUT", err)
	}
}

func TestConvertWithoutConverter(t *testing.T) {
	if Available() {
		t.Skip("rsvg-convert installed")
	}
	_, err := ToPDF(context.Background(), []byte("<svg/>"))
	if !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("ToPDF without converter = %v, want UNSUPPORTED", err)
	}
}
