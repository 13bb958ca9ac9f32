package fetcher

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/teamcutter/fetchr/internal/domain"
)

func TestFilenameFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/files/archive.tar.gz", "archive.tar.gz"},
		{"https://example.com/files/archive.zip?token=abc&x=1", "archive.zip"},
		{"https://example.com/files/data.csv#section", "data.csv"},
		{"https://example.com/", "download"},
		{"https://example.com", "download"},
		{"https://example.com/a/b/", "b"},
	}

	for _, tc := range tests {
		t.Run(tc.url, func(t *testing.T) {
			if got := FilenameFromURL(tc.url); got != tc.want {
				t.Errorf("FilenameFromURL(%q) = %q, want %q", tc.url, got, tc.want)
			}
		})
	}
}

func TestFilenameFromHeader(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{`attachment; filename="report.pdf"`, "report.pdf"},
		{`attachment; filename=plain.txt`, "plain.txt"},
		{`attachment; filename="../../etc/passwd"`, "passwd"},
		{`attachment`, ""},
		{`attachment; filename=".."`, ""},
		{`;;;`, ""},
	}

	for _, tc := range tests {
		t.Run(tc.header, func(t *testing.T) {
			if got := FilenameFromHeader(tc.header); got != tc.want {
				t.Errorf("FilenameFromHeader(%q) = %q, want %q", tc.header, got, tc.want)
			}
		})
	}
}

func TestFilenamePrefersHeader(t *testing.T) {
	resp := &domain.Response{Filename: "from-header.bin"}
	if got := Filename(resp, "https://example.com/from-url.bin"); got != "from-header.bin" {
		t.Errorf("Filename = %q, want from-header.bin", got)
	}
	if got := Filename(&domain.Response{}, "https://example.com/from-url.bin"); got != "from-url.bin" {
		t.Errorf("Filename = %q, want from-url.bin", got)
	}
}

// shortReader returns at most n bytes per Read.
type shortReader struct {
	r io.Reader
	n int
}

func (s *shortReader) Read(p []byte) (int, error) {
	if len(p) > s.n {
		p = p[:s.n]
	}
	return s.r.Read(p)
}

// countingWriter records the size of each Write.
type countingWriter struct {
	bytes.Buffer
	writes []int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.writes = append(c.writes, len(p))
	return c.Buffer.Write(p)
}

func TestStreamUsesChunks(t *testing.T) {
	payload := strings.Repeat("x", 100)
	var w countingWriter

	n, err := Stream(&w, strings.NewReader(payload), 32)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if n != 100 || w.String() != payload {
		t.Fatalf("Stream wrote %d bytes, content match %v", n, w.String() == payload)
	}
	for _, size := range w.writes {
		if size > 32 {
			t.Errorf("write of %d bytes exceeds chunk size", size)
		}
	}
}

func TestStreamShortReads(t *testing.T) {
	payload := strings.Repeat("abc", 50)
	var buf bytes.Buffer

	n, err := Stream(&buf, &shortReader{r: strings.NewReader(payload), n: 7}, 64)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if n != int64(len(payload)) || buf.String() != payload {
		t.Errorf("got %d bytes %q", n, buf.String())
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestStreamReadError(t *testing.T) {
	if _, err := Stream(io.Discard, failingReader{}, 16); err == nil {
		t.Fatal("expected read error")
	}
}

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/named":
			w.Header().Set("Content-Disposition", `attachment; filename="named.txt"`)
			w.Write([]byte("hello"))
		case "/missing":
			http.Error(w, "not here", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	f := New(time.Minute)

	resp, err := f.Get(context.Background(), srv.URL+"/named")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK || resp.Filename != "named.txt" || string(body) != "hello" {
		t.Errorf("got status %d filename %q body %q", resp.StatusCode, resp.Filename, body)
	}
	if resp.ContentLength != 5 {
		t.Errorf("content length = %d, want 5", resp.ContentLength)
	}

	resp, err = f.Get(context.Background(), srv.URL+"/missing")
	if err != nil {
		t.Fatalf("Get: non-200 must not be an error here: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGetCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(time.Minute).Get(ctx, srv.URL); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
