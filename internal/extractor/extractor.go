package extractor

import (
	"context"
	"fmt"

	"github.com/teamcutter/fetchr/internal/domain"
	"github.com/teamcutter/fetchr/internal/format"
)

type Options struct {
	// Cache skips extraction when the destination already exists.
	Cache bool
	// DeleteOriginal removes the source after a successful extraction.
	DeleteOriginal bool
}

// Extractor selects the first handler, in priority order, that recognizes a
// source and delegates to it.
type Extractor struct {
	handlers []*Handler
	opts     Options
}

var _ domain.Extractor = (*Extractor)(nil)

func New(opts Options) *Extractor {
	return &Extractor{
		opts: opts,
		// Compound formats come before the formats they are built from.
		handlers: []*Handler{
			newHandler(format.TarGz, []string{".tar.gz", ".tgz"}, unpackTarGz, opts),
			newHandler(format.Tar, []string{".tar"}, unpackTar, opts),
			newHandler(format.Gzip, []string{".gz"}, unpackGzip, opts),
			newHandler(format.Xz, []string{".xz"}, unpackXz, opts),
			newHandler(format.Bzip2, []string{".bz2"}, unpackBzip2, opts),
			newHandler(format.Zstd, []string{".zst"}, unpackZstd, opts),
			newHandler(format.Zip, []string{".zip"}, unpackZip, opts),
		},
	}
}

// Handlers returns the handlers in priority order.
func (e *Extractor) Handlers() []*Handler {
	return e.handlers
}

// Handler returns the first handler whose content sniffing accepts src, or nil.
func (e *Extractor) Handler(src string) *Handler {
	for _, h := range e.handlers {
		if h.CanHandle(src) {
			return h
		}
	}
	return nil
}

// HandlerForName returns the first handler whose suffix matches src, or nil.
// It is only meaningful for sources that no longer exist on disk and so
// cannot be sniffed.
func (e *Extractor) HandlerForName(src string) *Handler {
	for _, h := range e.handlers {
		if h.MatchesName(src) {
			return h
		}
	}
	return nil
}

func (e *Extractor) resolve(src string) *Handler {
	if h := e.Handler(src); h != nil {
		return h
	}
	if !exists(src) {
		return e.HandlerForName(src)
	}
	return nil
}

func (e *Extractor) CanExtract(src string) bool {
	return e.Handler(src) != nil
}

// DestinationPath returns where src would be extracted to, or "" when no
// handler applies. A missing src is matched by suffix.
func (e *Extractor) DestinationPath(src string) string {
	h := e.resolve(src)
	if h == nil {
		return ""
	}
	return h.DestinationPath(src)
}

func (e *Extractor) IsCached(dst string) bool {
	return e.opts.Cache && exists(dst)
}

// Extract unpacks src with the selected handler. Callers check CanExtract
// first; a source no handler accepts is reported as an extraction error.
func (e *Extractor) Extract(ctx context.Context, src, dst string) (*domain.ExtractionOutcome, error) {
	h := e.resolve(src)
	if h == nil {
		return nil, fmt.Errorf("%w: unsupported archive format: %s", domain.ErrExtraction, src)
	}
	return h.Extract(ctx, src, dst)
}
