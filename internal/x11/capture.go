package x11

import (
	"fmt"
	"image"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xgraphics"
)

// CaptureRoot reads the given root-window rectangle into an opaque image.
func (c *Connection) CaptureRoot(x, y, width, height int) (*xgraphics.Image, error) {
	reply, err := xproto.GetImage(
		c.XUtil.Conn(),
		xproto.ImageFormatZPixmap,
		xproto.Drawable(c.Root),
		int16(x), int16(y), uint16(width), uint16(height),
		(1<<32)-1,
	).Reply()
	if err != nil {
		return nil, err
	}

	format := xgraphics.GetFormat(c.XUtil, reply.Depth)
	if format == nil {
		return nil, fmt.Errorf("no pixmap format for depth %d", reply.Depth)
	}

	bytesPer := int(format.BitsPerPixel) / 8
	if bytesPer != 3 && bytesPer != 4 {
		return nil, fmt.Errorf("unsupported bits-per-pixel %d", format.BitsPerPixel)
	}
	stride := scanlineStride(width, int(format.BitsPerPixel), int(format.ScanlinePad))
	if need := stride * height; len(reply.Data) < need {
		return nil, fmt.Errorf("short image reply: got %d bytes, want %d", len(reply.Data), need)
	}

	img := xgraphics.New(c.XUtil, image.Rect(0, 0, width, height))
	img.For(func(px, py int) xgraphics.BGRA {
		i := py*stride + px*bytesPer
		return xgraphics.BGRA{
			B: reply.Data[i],
			G: reply.Data[i+1],
			R: reply.Data[i+2],
			A: 0xff,
		}
	})
	return img, nil
}

// scanlineStride returns the byte length of one ZPixmap scanline.
func scanlineStride(width, bitsPerPixel, pad int) int {
	if pad <= 0 {
		pad = 32
	}
	bits := width * bitsPerPixel
	if rem := bits % pad; rem != 0 {
		bits += pad - rem
	}
	return bits / 8
}
