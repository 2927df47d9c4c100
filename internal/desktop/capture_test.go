package desktop

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/1broseidon/system-mcp/internal/platform"
)

func intPtr(v int) *int { return &v }

func region(left, top, width, height int) RegionSpec {
	return RegionSpec{Left: &left, Top: &top, Width: &width, Height: &height}
}

func decodeConfig(t *testing.T, res *ScreenshotResult) image.Config {
	t.Helper()
	var (
		cfg image.Config
		err error
	)
	switch res.Format {
	case FormatPNG:
		cfg, err = png.DecodeConfig(bytes.NewReader(res.Data))
	case FormatJPEG:
		cfg, err = jpeg.DecodeConfig(bytes.NewReader(res.Data))
	default:
		t.Fatalf("unexpected format %q", res.Format)
	}
	if err != nil {
		t.Fatalf("decode %s: %v", res.Format, err)
	}
	return cfg
}

func TestCaptureRegionDimensions(t *testing.T) {
	fake := newFakeBackend()
	svc := New(fake, Config{})

	res, err := svc.Capture(context.Background(), CaptureRequest{Region: region(10, 10, 100, 50)})
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if res.Width != 100 || res.Height != 50 || res.Format != FormatPNG {
		t.Fatalf("Capture() = %dx%d %s, want 100x50 png", res.Width, res.Height, res.Format)
	}
	cfg := decodeConfig(t, res)
	if cfg.Width != 100 || cfg.Height != 50 {
		t.Errorf("encoded image is %dx%d, want 100x50", cfg.Width, cfg.Height)
	}
	if want := (platform.Rect{X: 10, Y: 10, Width: 100, Height: 50}); fake.captures[0] != want {
		t.Errorf("captured %+v, want %+v", fake.captures[0], want)
	}
	if _, err := base64.StdEncoding.DecodeString(res.Base64()); err != nil {
		t.Errorf("Base64() is not valid base64: %v", err)
	}
}

func TestCaptureResamplesHiDPI(t *testing.T) {
	fake := newFakeBackend()
	fake.scale = 2
	svc := New(fake, Config{})

	res, err := svc.Capture(context.Background(), CaptureRequest{Region: region(0, 0, 64, 32)})
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	cfg := decodeConfig(t, res)
	if res.Width != 64 || res.Height != 32 || cfg.Width != 64 || cfg.Height != 32 {
		t.Errorf("Capture() = %dx%d (encoded %dx%d), want 64x32", res.Width, res.Height, cfg.Width, cfg.Height)
	}
}

func TestCaptureMonitorSelection(t *testing.T) {
	tests := []struct {
		name    string
		monitor *int
		want    platform.Rect
	}{
		{"default is virtual screen", nil, platform.Rect{X: 0, Y: 0, Width: 3200, Height: 1080}},
		{"zero is virtual screen", intPtr(0), platform.Rect{X: 0, Y: 0, Width: 3200, Height: 1080}},
		{"first monitor", intPtr(1), platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
		{"second monitor", intPtr(2), platform.Rect{X: 1920, Y: 0, Width: 1280, Height: 1024}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeBackend()
			svc := New(fake, Config{})
			res, err := svc.Capture(context.Background(), CaptureRequest{Monitor: tt.monitor})
			if err != nil {
				t.Fatalf("Capture: %v", err)
			}
			if fake.captures[0] != tt.want {
				t.Errorf("captured %+v, want %+v", fake.captures[0], tt.want)
			}
			if res.Width != tt.want.Width || res.Height != tt.want.Height {
				t.Errorf("result %dx%d, want %dx%d", res.Width, res.Height, tt.want.Width, tt.want.Height)
			}
		})
	}
}

func TestCaptureRegionTakesPrecedence(t *testing.T) {
	fake := newFakeBackend()
	svc := New(fake, Config{})
	_, err := svc.Capture(context.Background(), CaptureRequest{Monitor: intPtr(2), Region: region(5, 6, 7, 8)})
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if want := (platform.Rect{X: 5, Y: 6, Width: 7, Height: 8}); fake.captures[0] != want {
		t.Errorf("captured %+v, want %+v", fake.captures[0], want)
	}
}

func TestCaptureJPEG(t *testing.T) {
	svc := New(newFakeBackend(), Config{JPEGQuality: 75})
	res, err := svc.Capture(context.Background(), CaptureRequest{
		Region:  region(0, 0, 40, 30),
		Format:  FormatJPEG,
		Quality: intPtr(50),
	})
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	cfg := decodeConfig(t, res)
	if cfg.Width != 40 || cfg.Height != 30 {
		t.Errorf("encoded jpeg is %dx%d, want 40x30", cfg.Width, cfg.Height)
	}
}

func TestCaptureQualityIgnoredForPNG(t *testing.T) {
	svc := New(newFakeBackend(), Config{})
	_, err := svc.Capture(context.Background(), CaptureRequest{
		Region:  region(0, 0, 4, 4),
		Format:  FormatPNG,
		Quality: intPtr(500),
	})
	if err != nil {
		t.Fatalf("Capture(png, quality=500): %v", err)
	}
}

func TestCaptureInvalidArguments(t *testing.T) {
	left, top, width := 1, 2, 3
	tests := []struct {
		name string
		req  CaptureRequest
	}{
		{"zero width", CaptureRequest{Region: region(10, 10, 0, 50)}},
		{"negative height", CaptureRequest{Region: region(10, 10, 50, -1)}},
		{"partial region", CaptureRequest{Region: RegionSpec{Left: &left, Top: &top, Width: &width}}},
		{"unknown monitor", CaptureRequest{Monitor: intPtr(3)}},
		{"negative monitor", CaptureRequest{Monitor: intPtr(-1)}},
		{"unknown format", CaptureRequest{Format: "gif"}},
		{"jpeg quality too high", CaptureRequest{Format: FormatJPEG, Quality: intPtr(101)}},
		{"jpeg quality zero", CaptureRequest{Format: FormatJPEG, Quality: intPtr(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeBackend()
			svc := New(fake, Config{})
			_, err := svc.Capture(context.Background(), tt.req)
			if !errors.Is(err, platform.ErrInvalidArgument) {
				t.Fatalf("Capture() error = %v, want invalid argument", err)
			}
			if len(fake.captures) != 0 {
				t.Fatalf("screen was read despite invalid arguments: %v", fake.captures)
			}
		})
	}
}

func TestCaptureDefaultFormatFromConfig(t *testing.T) {
	svc := New(newFakeBackend(), Config{DefaultFormat: FormatJPEG})
	res, err := svc.Capture(context.Background(), CaptureRequest{Region: region(0, 0, 8, 8)})
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if res.Format != FormatJPEG {
		t.Errorf("Format = %q, want jpeg", res.Format)
	}
}
