package manager

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/teamcutter/fetchr/internal/domain"
	"github.com/teamcutter/fetchr/internal/progress"
	"github.com/teamcutter/fetchr/internal/report"
)

const batchDescription = "Downloading files"

// Download fetches every url. When paths is non-nil it must have one entry
// per url, used as that url's destination.
func (m *Manager) Download(ctx context.Context, urls, paths []string) (*report.Report, error) {
	if paths != nil && len(paths) != len(urls) {
		return nil, fmt.Errorf("%w: the urls and paths lists must have the same length, got %d and %d",
			domain.ErrConfiguration, len(urls), len(paths))
	}

	reqs := make([]domain.DownloadRequest, len(urls))
	for i, u := range urls {
		reqs[i] = domain.DownloadRequest{URL: u}
		if paths != nil {
			reqs[i].Destination = paths[i]
		}
	}

	return m.DownloadAll(ctx, reqs)
}

// DownloadAll runs the requests on at most Options.Workers goroutines and
// returns their outcomes in request order. With a single worker the requests
// run one after another on the calling goroutine.
func (m *Manager) DownloadAll(ctx context.Context, reqs []domain.DownloadRequest) (*report.Report, error) {
	batch := uuid.NewString()
	if len(reqs) == 0 {
		return report.New(batch, nil), nil
	}

	log := m.opts.Logger.With().Str("batch", batch).Logger()
	ctx = log.WithContext(ctx)

	workers := min(m.opts.Workers, len(reqs))
	log.Debug().Int("items", len(reqs)).Int("workers", workers).Msg("starting batch")

	bar := m.batchBar(len(reqs), workers)
	defer bar.Finish()

	rows := make([]domain.Outcome, len(reqs))

	var err error
	if workers <= 1 {
		err = m.runSequential(ctx, reqs, rows, bar)
	} else {
		err = m.runParallel(ctx, reqs, rows, workers, bar)
	}
	if err != nil {
		return nil, err
	}

	log.Debug().Int("items", len(reqs)).Msg("batch finished")
	return report.New(batch, rows), nil
}

func (m *Manager) runSequential(ctx context.Context, reqs []domain.DownloadRequest, rows []domain.Outcome, bar progress.Bar) error {
	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInterrupted, err)
		}

		out, err := m.Fetch(ctx, req)
		if err != nil {
			return err
		}
		rows[i] = *out
		bar.Add(1)
	}
	return nil
}

// runParallel stores each outcome at its request's index, so completion
// order does not matter.
func (m *Manager) runParallel(ctx context.Context, reqs []domain.DownloadRequest, rows []domain.Outcome, workers int, bar progress.Bar) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, req := range reqs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			out, err := m.Fetch(gctx, req)
			if err != nil {
				return err
			}
			rows[i] = *out
			bar.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInterrupted, err)
	}
	return nil
}

func (m *Manager) batchBar(items, workers int) progress.Bar {
	if workers <= 1 && items == 1 {
		return progress.Nop{}.Items(items, batchDescription)
	}
	return m.batches.Items(items, batchDescription)
}
