package extractor

import (
	"compress/bzip2"
	"context"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

type openFunc func(io.Reader) (io.ReadCloser, error)

func openGzip(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

func openXz(r io.Reader) (io.ReadCloser, error) {
	xzr, err := xz.NewReader(r)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(xzr), nil
}

func openBzip2(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(bzip2.NewReader(r)), nil
}

func openZstd(r io.Reader) (io.ReadCloser, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return zr.IOReadCloser(), nil
}

func openPlain(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

func unpackGzip(ctx context.Context, src, dst string) error {
	return decompress(ctx, src, dst, openGzip)
}

func unpackXz(ctx context.Context, src, dst string) error {
	return decompress(ctx, src, dst, openXz)
}

func unpackBzip2(ctx context.Context, src, dst string) error {
	return decompress(ctx, src, dst, openBzip2)
}

func unpackZstd(ctx context.Context, src, dst string) error {
	return decompress(ctx, src, dst, openZstd)
}

// decompress writes the decoded single-stream content of src to the file dst.
func decompress(ctx context.Context, src, dst string, open openFunc) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	r, err := open(in)
	if err != nil {
		return err
	}
	defer r.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, &ctxReader{ctx: ctx, r: r}); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
