package domain

import (
	"context"
)

type Fetcher interface {
	Get(ctx context.Context, url string) (*Response, error)
}

type Cache interface {
	IsCached(dst string) bool
}

type Extractor interface {
	CanExtract(src string) bool
	DestinationPath(src string) string
	IsCached(dst string) bool
	Extract(ctx context.Context, src, dst string) (*ExtractionOutcome, error)
}
