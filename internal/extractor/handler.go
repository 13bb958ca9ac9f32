package extractor

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/teamcutter/fetchr/internal/domain"
	"github.com/teamcutter/fetchr/internal/format"
)

// extractedSuffix is appended to sources that carry none of a handler's suffixes.
const extractedSuffix = ".extracted"

type unpackFunc func(ctx context.Context, src, dst string) error

// Handler extracts a single format. Caching, cleanup and naming are shared by
// all formats; only the format tag, the suffixes and the unpack step differ.
type Handler struct {
	format   format.Format
	suffixes []string
	unpack   unpackFunc
	remove   func(string) error
	opts     Options
}

func newHandler(f format.Format, suffixes []string, unpack unpackFunc, opts Options) *Handler {
	return &Handler{format: f, suffixes: suffixes, unpack: unpack, remove: os.Remove, opts: opts}
}

func (h *Handler) Format() format.Format {
	return h.format
}

func (h *Handler) CanHandle(src string) bool {
	return format.Is(src, h.format)
}

// MatchesName reports whether src ends with one of the handler's suffixes.
func (h *Handler) MatchesName(src string) bool {
	_, ok := h.trimSuffix(src)
	return ok
}

// DestinationPath strips the handler's suffix from src, or appends
// ".extracted" when src has none.
func (h *Handler) DestinationPath(src string) string {
	if dst, ok := h.trimSuffix(src); ok {
		return dst
	}
	return src + extractedSuffix
}

func (h *Handler) trimSuffix(src string) (string, bool) {
	base := filepath.Base(src)
	for _, ext := range h.suffixes {
		if len(base) > len(ext) && strings.HasSuffix(base, ext) {
			return src[:len(src)-len(ext)], true
		}
	}
	return "", false
}

func (h *Handler) IsCached(dst string) bool {
	return h.opts.Cache && exists(dst)
}

// Extract unpacks src into dst. An empty dst is derived with DestinationPath.
// On failure nothing is left at dst.
func (h *Handler) Extract(ctx context.Context, src, dst string) (*domain.ExtractionOutcome, error) {
	if dst == "" {
		dst = h.DestinationPath(src)
	}

	if h.IsCached(dst) {
		size, err := diskUsage(dst)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtraction, dst, err)
		}
		return &domain.ExtractionOutcome{FileSize: size, Destination: dst, Cached: true, Success: true}, nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}

	if err := h.unpack(ctx, src, dst); err != nil {
		os.RemoveAll(dst)
		return nil, fmt.Errorf("%w: %s %s: %w", domain.ErrExtraction, h.format, src, err)
	}

	// A source that cannot be removed is logged and left in place.
	if h.opts.DeleteOriginal {
		if err := h.remove(src); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("source", src).Msg("failed to remove original after extraction")
		}
	}

	size, err := diskUsage(dst)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtraction, dst, err)
	}

	return &domain.ExtractionOutcome{FileSize: size, Destination: dst, Success: true}, nil
}

// diskUsage returns the size of a file, or the total size of the regular
// files below a directory.
func diskUsage(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return info.Size(), nil
	}

	var size int64
	err = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		size += fi.Size()
		return nil
	})
	return size, err
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
