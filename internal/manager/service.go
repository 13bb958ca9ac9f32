package manager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"go.mau.fi/util/ptr"

	"github.com/teamcutter/fetchr/internal/cache"
	"github.com/teamcutter/fetchr/internal/domain"
	"github.com/teamcutter/fetchr/internal/extractor"
	"github.com/teamcutter/fetchr/internal/fetcher"
	"github.com/teamcutter/fetchr/internal/progress"
)

type Manager struct {
	fetcher   domain.Fetcher
	cache     domain.Cache
	extractor domain.Extractor
	items     progress.Reporter
	batches   progress.Reporter
	opts      Options
}

// New validates opts and wires the HTTP fetcher, the extractor and the disk
// cache they describe.
func New(opts Options) (*Manager, error) {
	opts, err := opts.resolve()
	if err != nil {
		return nil, err
	}

	ext := extractor.New(extractor.Options{
		Cache:          opts.Cache,
		DeleteOriginal: opts.DeleteOriginal,
	})

	return newManager(
		fetcher.New(opts.Timeout),
		cache.New(opts.TargetDir, opts.Cache, ext),
		ext,
		progress.NewTerminal(opts.Output),
		opts,
	), nil
}

// NewWith validates opts and uses the given collaborators instead of the
// defaults.
func NewWith(
	f domain.Fetcher,
	c domain.Cache,
	e domain.Extractor,
	r progress.Reporter,
	opts Options,
) (*Manager, error) {
	opts, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	return newManager(f, c, e, r, opts), nil
}

func newManager(f domain.Fetcher, c domain.Cache, e domain.Extractor, r progress.Reporter, opts Options) *Manager {
	m := &Manager{
		fetcher:   f,
		cache:     c,
		extractor: e,
		items:     progress.Nop{},
		batches:   progress.Nop{},
		opts:      opts,
	}
	if opts.Verbose >= BatchProgress {
		m.batches = r
	}
	if opts.Verbose >= ItemProgress {
		m.items = r
	}
	return m
}

// Options returns the resolved options.
func (m *Manager) Options() Options {
	return m.opts
}

// Fetch downloads one request and extracts it when possible.
//
// With FailFast set, any failure is returned as an error. Otherwise failures
// are recorded in the outcome's ErrorMessage and the error is nil. Context
// cancellation is always returned as an error wrapping domain.ErrInterrupted.
// Whatever the policy, a failed item leaves no file at its destination.
func (m *Manager) Fetch(ctx context.Context, req domain.DownloadRequest) (*domain.Outcome, error) {
	out := &domain.Outcome{URL: req.URL, Destination: req.Destination}

	err := m.fetch(ctx, req, out)
	log := m.logger(ctx).With().
		Str("url", req.URL).
		Str("destination", out.Destination).
		Logger()

	if err == nil {
		out.Success = true
		log.Debug().
			Bool("cached", out.Cached).
			Int64("bytes", out.DownloadedBytes).
			Fields(out.ExtractionFields()).
			Msg("download finished")
		return out, nil
	}

	if ctx.Err() != nil && !errors.Is(err, domain.ErrInterrupted) {
		err = fmt.Errorf("%w: %w", domain.ErrInterrupted, err)
	}

	out.Success = false
	out.Cached = false
	out.Extraction = nil

	if m.opts.FailFast || errors.Is(err, domain.ErrInterrupted) {
		log.Error().Err(err).Msg("download failed")
		return nil, err
	}

	log.Warn().Err(err).Msg("download failed, continuing")
	out.ErrorMessage = err.Error()
	return out, nil
}

func (m *Manager) fetch(ctx context.Context, req domain.DownloadRequest, out *domain.Outcome) (err error) {
	var resp *domain.Response
	defer func() {
		if resp != nil {
			resp.Body.Close()
		}
	}()

	dst := req.Destination
	if dst == "" {
		resp, err = m.fetcher.Get(ctx, req.URL)
		if err != nil {
			out.Destination = filepath.Join(m.opts.TargetDir, fetcher.FilenameFromURL(req.URL))
			return fmt.Errorf("%w: %s: %w", domain.ErrTransfer, req.URL, err)
		}
		dst = filepath.Join(m.opts.TargetDir, fetcher.Filename(resp, req.URL))
	}
	out.Destination = dst

	defer func() {
		if err != nil {
			os.Remove(dst)
		}
	}()

	if m.cache.IsCached(dst) {
		// A cached file was produced by a successful transfer.
		out.StatusCode = ptr.Ptr(http.StatusOK)
		if info, statErr := os.Stat(dst); statErr == nil {
			out.FileSize = ptr.Ptr(info.Size())
			out.DownloadedBytes = info.Size()
		}
		out.Cached = true
	} else {
		if resp == nil {
			resp, err = m.fetcher.Get(ctx, req.URL)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", domain.ErrTransfer, req.URL, err)
			}
		}
		if err := m.transfer(resp, dst, out); err != nil {
			return err
		}
	}

	if m.opts.AutoExtract && m.extractable(dst) {
		extraction, err := m.extractor.Extract(ctx, dst, "")
		if err != nil {
			return err
		}
		out.Extraction = extraction
	}

	return nil
}

// transfer streams the response body into dst. The status is checked only
// after the body has been consumed.
func (m *Manager) transfer(resp *domain.Response, dst string, out *domain.Outcome) error {
	out.StatusCode = ptr.Ptr(resp.StatusCode)
	if resp.ContentLength >= 0 {
		out.FileSize = ptr.Ptr(resp.ContentLength)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransfer, err)
	}

	file, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransfer, err)
	}

	bar := m.items.Bytes(resp.ContentLength, progress.Describe(dst))
	n, err := fetcher.Stream(io.MultiWriter(file, bar), resp.Body, m.opts.ChunkSize)
	out.DownloadedBytes = n
	bar.Finish()

	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrTransfer, out.URL, err)
	}

	if resp.StatusCode != http.StatusOK {
		return &domain.StatusError{URL: out.URL, StatusCode: resp.StatusCode}
	}
	return nil
}

// extractable reports whether dst goes to the extractor. A raw file that is
// gone still qualifies when its extracted form is cached, so the outcome
// reports that extraction.
func (m *Manager) extractable(dst string) bool {
	if m.extractor.CanExtract(dst) {
		return true
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		return false
	}
	extracted := m.extractor.DestinationPath(dst)
	return extracted != "" && m.extractor.IsCached(extracted)
}

func (m *Manager) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &m.opts.Logger
}
