package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"imovel-backend/internal/metrics"

	"github.com/go-pdf/fpdf"
	"golang.org/x/sync/errgroup"
)

// fpdf image types
const (
	formatJPEG = "JPG"
	formatPNG  = "PNG"
)

// ProgressFunc is called after page (1-based) of total has been placed.
// Calls happen in page order on the goroutine running Generate.
type ProgressFunc func(page, total int, url string)

type DocumentOptions struct {
	// Concurrency bounds parallel image fetches. 1 fetches, decodes and
	// places one image at a time.
	Concurrency int
	// MaxImages caps the selection size; 0 means no limit.
	MaxImages int
}

type DocumentService struct {
	fetcher ImageFetcher
	opts    DocumentOptions
	metrics *metrics.Metrics
}

func NewDocumentService(fetcher ImageFetcher, opts DocumentOptions, m *metrics.Metrics) *DocumentService {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &DocumentService{fetcher: fetcher, opts: opts, metrics: m}
}

type pageImage struct {
	url    string
	format string
	data   []byte
	width  int
	height int
}

// Generate builds a PDF with one page per URL, in input order. Each page has
// the pixel size of its image and the image fills it at the origin. Any
// failing URL aborts the whole document: no partial output is returned.
func (s *DocumentService) Generate(ctx context.Context, urls []string, progress ProgressFunc) ([]byte, error) {
	if len(urls) == 0 {
		s.metrics.Document(metrics.ResultInvalid, 0)
		return nil, ErrEmptySelection
	}
	if s.opts.MaxImages > 0 && len(urls) > s.opts.MaxImages {
		s.metrics.Document(metrics.ResultInvalid, 0)
		return nil, fmt.Errorf("%w: %d > %d", ErrSelectionTooLarge, len(urls), s.opts.MaxImages)
	}

	formats := make([]string, len(urls))
	for i, u := range urls {
		format, err := formatFromURL(u)
		if err != nil {
			s.metrics.Document(metrics.ResultInvalid, 0)
			return nil, imageError(u, err, nil)
		}
		formats[i] = format
	}

	out, err := s.assemble(ctx, urls, formats, progress)
	if err != nil {
		s.metrics.Document(metrics.ResultError, 0)
		return nil, err
	}
	s.metrics.Document(metrics.ResultOK, len(urls))
	return out, nil
}

func (s *DocumentService) assemble(ctx context.Context, urls, formats []string, progress ProgressFunc) ([]byte, error) {
	pdf := newDocument()

	if s.opts.Concurrency == 1 || len(urls) == 1 {
		for i, u := range urls {
			img, err := s.load(ctx, u, formats[i])
			if err != nil {
				return nil, err
			}
			if err := addPage(pdf, i, img); err != nil {
				return nil, err
			}
			if progress != nil {
				progress(i+1, len(urls), u)
			}
		}
		return render(pdf)
	}

	images := make([]*pageImage, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			img, err := s.load(gctx, u, formats[i])
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, img := range images {
		if err := addPage(pdf, i, img); err != nil {
			return nil, err
		}
		if progress != nil {
			progress(i+1, len(urls), img.url)
		}
	}
	return render(pdf)
}

// load fetches one image and reads its pixel size with the decoder matching
// the URL suffix.
func (s *DocumentService) load(ctx context.Context, u, format string) (*pageImage, error) {
	start := time.Now()
	data, err := s.fetcher.Fetch(ctx, u)
	s.metrics.ImageFetch(time.Since(start))
	if err != nil {
		return nil, imageError(u, ErrImageFetchFailed, err)
	}

	var cfg image.Config
	switch format {
	case formatJPEG:
		cfg, err = jpeg.DecodeConfig(bytes.NewReader(data))
	case formatPNG:
		cfg, err = png.DecodeConfig(bytes.NewReader(data))
	}
	if err != nil {
		return nil, imageError(u, ErrImageDecodeFailed, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, imageError(u, ErrImageDecodeFailed, fmt.Errorf("empty image %dx%d", cfg.Width, cfg.Height))
	}
	if format == formatPNG && !pdfReadablePNG(data) {
		if data, err = flattenPNG(data); err != nil {
			return nil, imageError(u, ErrImageDecodeFailed, err)
		}
	}

	slog.DebugContext(ctx, "image loaded", "url", u, "width", cfg.Width, "height", cfg.Height, "bytes", len(data))
	return &pageImage{url: u, format: format, data: data, width: cfg.Width, height: cfg.Height}, nil
}

func formatFromURL(raw string) (string, error) {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".jpg", ".jpeg":
		return formatJPEG, nil
	case ".png":
		return formatPNG, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// PNG header layout: 8 byte signature, IHDR length and type, then width,
// height, bit depth, color type, compression, filter and interlace method.
const (
	pngBitDepthOffset  = 24
	pngInterlaceOffset = 28
)

// pdfReadablePNG reports whether fpdf can embed data as is. It rejects Adam7
// interlacing and 16-bit channels.
func pdfReadablePNG(data []byte) bool {
	if len(data) <= pngInterlaceOffset {
		return false
	}
	return data[pngInterlaceOffset] == 0 && data[pngBitDepthOffset] <= 8
}

// flattenPNG re-encodes data as a non-interlaced 8-bit PNG.
func flattenPNG(data []byte) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	dst := image.NewNRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("re-encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// newDocument uses points as the unit so one image pixel maps to one point.
func newDocument() *fpdf.Fpdf {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("imovel-backend", true)
	return pdf
}

func addPage(pdf *fpdf.Fpdf, index int, img *pageImage) error {
	w, h := float64(img.width), float64(img.height)
	name := fmt.Sprintf("page-%d", index+1)
	opts := fpdf.ImageOptions{ImageType: img.format}

	pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.data))
	if err := pdf.Error(); err != nil {
		return imageError(img.url, ErrImageDecodeFailed, err)
	}
	pdf.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")
	if err := pdf.Error(); err != nil {
		return imageError(img.url, ErrImageDecodeFailed, err)
	}
	return nil
}

func render(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
