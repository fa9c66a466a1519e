// Package transcode re-encodes accepted images into the WebP delivery
// envelope: longest side at most 1920 px and roughly 1 MB on the wire.
package transcode

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/dmitrijs2005/memoria/internal/logging"
	"github.com/dmitrijs2005/memoria/internal/media"
	"github.com/gen2brain/webp"

	_ "golang.org/x/image/webp"
)

const (
	// OutputType is the declared type of every transcoded file.
	OutputType = "image/webp"
	outputExt  = ".webp"
)

// Encoder writes img in the target format at the given quality (1..100).
type Encoder interface {
	Encode(w io.Writer, img image.Image, quality int) error
}

// WebPEncoder is the production Encoder.
type WebPEncoder struct {
	// Method trades speed for size, 0 (fast) .. 6 (slow).
	Method int
}

func (e WebPEncoder) Encode(w io.Writer, img image.Image, quality int) error {
	return webp.Encode(w, img, webp.Options{Quality: quality, Method: e.Method})
}

// Options bound the size search.
type Options struct {
	MaxDimension int
	TargetBytes  int64
	Quality      int
	MinQuality   int
	QualityStep  int
	// ScaleStep shrinks both dimensions once quality bottoms out.
	ScaleStep float64
	MaxPasses int
}

func DefaultOptions() Options {
	return Options{
		MaxDimension: media.TranscodeMaxDimension,
		TargetBytes:  media.TranscodeTargetBytes,
		Quality:      media.TranscodeQuality,
		MinQuality:   40,
		QualityStep:  10,
		ScaleStep:    0.8,
		MaxPasses:    12,
	}
}

type Transcoder struct {
	enc    Encoder
	opts   Options
	msgs   media.Messages
	logger logging.Logger
}

func New(enc Encoder, opts Options, msgs media.Messages, logger logging.Logger) *Transcoder {
	if enc == nil {
		enc = WebPEncoder{Method: 4}
	}
	return &Transcoder{enc: enc, opts: opts, msgs: msgs, logger: logger.With("module", "transcode")}
}

// Transcode decodes f, fits it into the dimension bound and re-encodes it
// until the output fits TargetBytes or the search is exhausted, in which
// case the smallest attempt is returned. Any failure is a TranscodeError;
// the original bytes are never handed back.
func (t *Transcoder) Transcode(ctx context.Context, f media.File) (media.File, error) {
	if k := f.Kind(); k != media.KindImage {
		return media.File{}, media.NewError(media.ErrTranscode, t.msgs.TranscodeFailed(),
			fmt.Errorf("not an image: %s", f.Type))
	}

	rc, err := f.Open()
	if err != nil {
		return media.File{}, t.fail(err)
	}
	defer rc.Close()

	img, err := imaging.Decode(rc, imaging.AutoOrientation(true))
	if err != nil {
		return media.File{}, t.fail(fmt.Errorf("decode %s: %w", f.Name, err))
	}

	out, err := t.encode(ctx, img)
	if err != nil {
		return media.File{}, t.fail(err)
	}

	name := media.ReplaceExt(f.Name, outputExt)
	t.logger.Debug(ctx, "image transcoded", "name", name, "in", f.Size, "out", len(out))

	return media.NewFile(name, OutputType, out), nil
}

func (t *Transcoder) encode(ctx context.Context, src image.Image) ([]byte, error) {
	img := fit(src, t.opts.MaxDimension)
	quality := t.opts.Quality

	var best []byte
	for pass := 0; pass < max(t.opts.MaxPasses, 1); pass++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var buf bytes.Buffer
		if err := t.enc.Encode(&buf, img, quality); err != nil {
			return nil, fmt.Errorf("encode at quality %d: %w", quality, err)
		}
		if best == nil || buf.Len() < len(best) {
			best = buf.Bytes()
		}
		if int64(buf.Len()) <= t.opts.TargetBytes {
			return buf.Bytes(), nil
		}

		if quality-t.opts.QualityStep >= t.opts.MinQuality {
			quality -= t.opts.QualityStep
			continue
		}

		b := img.Bounds()
		w := int(float64(b.Dx()) * t.opts.ScaleStep)
		h := int(float64(b.Dy()) * t.opts.ScaleStep)
		if w < 1 || h < 1 {
			break
		}
		img = imaging.Resize(img, w, h, imaging.Lanczos)
		quality = t.opts.Quality
	}

	return best, nil
}

// fit downsizes img so neither side exceeds bound, keeping aspect ratio.
// Smaller images are left untouched.
func fit(img image.Image, bound int) image.Image {
	if bound <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= bound && b.Dy() <= bound {
		return img
	}
	return imaging.Fit(img, bound, bound, imaging.Lanczos)
}

func (t *Transcoder) fail(err error) error {
	return media.NewError(media.ErrTranscode, t.msgs.TranscodeFailed(), err)
}
