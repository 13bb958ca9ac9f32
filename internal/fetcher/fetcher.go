package fetcher

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/teamcutter/fetchr/internal/domain"
)

// fallbackFilename is used when neither the response nor the URL names the file.
const fallbackFilename = "download"

type HTTPFetcher struct {
	client *http.Client
}

var _ domain.Fetcher = (*HTTPFetcher)(nil)

func New(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Get issues a streamed GET. The response is returned whatever its status;
// callers own the body.
func (f *HTTPFetcher) Get(ctx context.Context, rawURL string) (*domain.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}

	return &domain.Response{
		StatusCode:    resp.StatusCode,
		ContentLength: resp.ContentLength,
		Filename:      FilenameFromHeader(resp.Header.Get("Content-Disposition")),
		Body:          resp.Body,
	}, nil
}

// Stream copies body to dst in chunkSize reads and returns the number of
// bytes written.
func Stream(dst io.Writer, body io.Reader, chunkSize int) (int64, error) {
	buf := make([]byte, chunkSize)
	var written int64
	for {
		n, err := body.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			written += int64(w)
			if werr != nil {
				return written, werr
			}
			if w != n {
				return written, io.ErrShortWrite
			}
		}
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}
}

// FilenameFromHeader returns the base name carried by a Content-Disposition
// header, or "" if there is none.
func FilenameFromHeader(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return safeBase(params["filename"])
}

// FilenameFromURL returns the last path segment of rawURL with the query
// string removed.
func FilenameFromURL(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		if name := safeBase(path.Base(u.Path)); name != "" {
			return name
		}
		return fallbackFilename
	}

	name := rawURL[strings.LastIndex(rawURL, "/")+1:]
	if i := strings.IndexAny(name, "?#"); i != -1 {
		name = name[:i]
	}
	if name = safeBase(name); name == "" {
		return fallbackFilename
	}
	return name
}

// Filename picks the header-suggested name when present, otherwise the URL tail.
func Filename(resp *domain.Response, rawURL string) string {
	if resp != nil && resp.Filename != "" {
		return resp.Filename
	}
	return FilenameFromURL(rawURL)
}

func safeBase(name string) string {
	name = filepath.Base(filepath.FromSlash(name))
	switch name {
	case ".", "..", string(filepath.Separator):
		return ""
	}
	return name
}
