package desktop

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"

	"github.com/1broseidon/system-mcp/internal/platform"
)

// Image formats accepted by Capture.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// RegionSpec is a caller-supplied capture rectangle. Either all four
// fields are set or none is.
type RegionSpec struct {
	Left   *int
	Top    *int
	Width  *int
	Height *int
}

// CaptureRequest selects what to capture and how to encode it.
type CaptureRequest struct {
	// Monitor 0 is the virtual screen spanning every monitor; 1..N pick a
	// single monitor in left-to-right order. Nil means 0. Ignored when a
	// region is given.
	Monitor *int
	Region  RegionSpec
	Format  string
	// Quality is the JPEG quality (1-100). Ignored for PNG.
	Quality *int
}

// ScreenshotResult is an encoded capture. Width and Height always equal
// the requested area.
type ScreenshotResult struct {
	Width  int
	Height int
	Format string
	Data   []byte
}

// Base64 returns Data in standard base64 encoding.
func (r ScreenshotResult) Base64() string {
	return base64.StdEncoding.EncodeToString(r.Data)
}

type encodeOptions struct {
	format  string
	quality int
}

// Capture grabs a region or monitor and encodes it. All arguments are
// checked before the screen is read.
func (s *Service) Capture(ctx context.Context, req CaptureRequest) (*ScreenshotResult, error) {
	enc, err := s.encodeOptions(req)
	if err != nil {
		return nil, err
	}
	area, err := s.captureArea(ctx, req)
	if err != nil {
		return nil, err
	}

	img, err := s.backend.Capture(ctx, area)
	if err != nil {
		return nil, err
	}
	img = fitImage(img, area.Width, area.Height)

	data, err := encodeImage(img, enc)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", enc.format, err)
	}
	b := img.Bounds()
	return &ScreenshotResult{
		Width:  b.Dx(),
		Height: b.Dy(),
		Format: enc.format,
		Data:   data,
	}, nil
}

func (s *Service) encodeOptions(req CaptureRequest) (encodeOptions, error) {
	format := req.Format
	if format == "" {
		format = s.defaultFormat
	}
	switch format {
	case FormatPNG:
		return encodeOptions{format: FormatPNG}, nil
	case FormatJPEG:
		quality := s.jpegQuality
		if req.Quality != nil {
			quality = *req.Quality
			if quality < 1 || quality > 100 {
				return encodeOptions{}, platform.InvalidArgumentf("quality must be between 1 and 100, got %d", quality)
			}
		}
		return encodeOptions{format: FormatJPEG, quality: quality}, nil
	default:
		return encodeOptions{}, platform.InvalidArgumentf("unsupported format %q (want png or jpeg)", format)
	}
}

// captureArea resolves the request to a screen-absolute rectangle.
func (s *Service) captureArea(ctx context.Context, req CaptureRequest) (platform.Rect, error) {
	region, ok, err := req.Region.resolve()
	if err != nil {
		return platform.Rect{}, err
	}
	if ok {
		return region, nil
	}

	monitor := 0
	if req.Monitor != nil {
		monitor = *req.Monitor
	}
	if monitor < 0 {
		return platform.Rect{}, platform.InvalidArgumentf("monitor must not be negative, got %d", monitor)
	}
	if monitor == 0 {
		return s.backend.VirtualScreen(ctx)
	}

	displays, err := s.backend.Displays(ctx)
	if err != nil {
		return platform.Rect{}, err
	}
	if monitor > len(displays) {
		return platform.Rect{}, platform.InvalidArgumentf("monitor %d does not exist (have %d)", monitor, len(displays))
	}
	return displays[monitor-1].Bounds, nil
}

func (r RegionSpec) resolve() (platform.Rect, bool, error) {
	set := 0
	for _, f := range []*int{r.Left, r.Top, r.Width, r.Height} {
		if f != nil {
			set++
		}
	}
	switch set {
	case 0:
		return platform.Rect{}, false, nil
	case 4:
	default:
		return platform.Rect{}, false, platform.InvalidArgumentf("region needs left, top, width and height together")
	}
	if *r.Width <= 0 || *r.Height <= 0 {
		return platform.Rect{}, false, platform.InvalidArgumentf("region size %dx%d must be positive", *r.Width, *r.Height)
	}
	return platform.Rect{X: *r.Left, Y: *r.Top, Width: *r.Width, Height: *r.Height}, true, nil
}

// fitImage scales img to exactly width x height when the platform returned
// a different pixel size (HiDPI capture).
func fitImage(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func encodeImage(img image.Image, opts encodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	switch opts.format {
	case FormatJPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.quality}); err != nil {
			return nil, err
		}
	default:
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
